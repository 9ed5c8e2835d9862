package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ferreirogomes/assetledger/models"

	"github.com/gagliardetto/solana-go"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// uniqueViolation é o código SQLSTATE do PostgreSQL para chave duplicada.
const uniqueViolation = "23505"

// DB representa a conexão com o banco de dados PostgreSQL.
type DB struct {
	*sqlx.DB
}

// NewDB conecta-se ao PostgreSQL e executa as migrações.
func NewDB(dataSourceName string) (*DB, error) {
	db, err := sqlx.Connect("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar ao banco de dados: %w", err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("falha ao pingar o banco de dados: %w", err)
	}
	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso.")

	if _, err := RunMigrations(db.DB, migrate.Up); err != nil {
		db.Close()
		return nil, fmt.Errorf("falha ao executar migrações: %w", err)
	}

	return &DB{db}, nil
}

// RunMigrations aplica (ou reverte) as migrações embutidas no binário.
func RunMigrations(db *sql.DB, dir migrate.MigrationDirection) (int, error) {
	migrations := &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationFiles,
		Root:       "migrations",
	}

	n, err := migrate.Exec(db, "postgres", migrations, dir)
	if err != nil {
		return 0, fmt.Errorf("erro ao aplicar migrações: %w", err)
	}
	if n > 0 {
		logrus.Infof("Aplicadas %d migrações ao banco de dados.", n)
	} else {
		logrus.Info("Nenhuma migração nova para aplicar.")
	}
	return n, nil
}

// As colunas NUMERIC(20,0) guardam u64 inteiros; database/sql não aceita uint64 com o bit alto ligado,
// então os valores trafegam como texto.
func u64(v uint64) string { return strconv.FormatUint(v, 10) }

type assetRow struct {
	ID              uint64    `db:"asset_id"`
	Creator         string    `db:"creator"`
	MetadataURI     string    `db:"metadata_uri"`
	TotalSupply     uint64    `db:"total_supply"`
	RemainingSupply uint64    `db:"remaining_supply"`
	Address         string    `db:"address"`
	Bump            uint8     `db:"bump"`
	CreatedAt       time.Time `db:"created_at"`
}

func (r assetRow) model() (models.Asset, error) {
	creator, err := solana.PublicKeyFromBase58(r.Creator)
	if err != nil {
		return models.Asset{}, fmt.Errorf("criador inválido no ativo %d: %w", r.ID, err)
	}
	address, err := solana.PublicKeyFromBase58(r.Address)
	if err != nil {
		return models.Asset{}, fmt.Errorf("endereço inválido no ativo %d: %w", r.ID, err)
	}
	return models.Asset{
		ID:              r.ID,
		Creator:         creator,
		MetadataURI:     r.MetadataURI,
		TotalSupply:     r.TotalSupply,
		RemainingSupply: r.RemainingSupply,
		Address:         address,
		Bump:            r.Bump,
		CreatedAt:       r.CreatedAt,
	}, nil
}

type escrowRow struct {
	AssetID      uint64 `db:"asset_id"`
	AssetAddress string `db:"asset_address"`
	Address      string `db:"address"`
	Amount       uint64 `db:"amount"`
}

func (r escrowRow) model() (models.Escrow, error) {
	assetAddr, err := solana.PublicKeyFromBase58(r.AssetAddress)
	if err != nil {
		return models.Escrow{}, fmt.Errorf("endereço do ativo inválido no escrow %d: %w", r.AssetID, err)
	}
	address, err := solana.PublicKeyFromBase58(r.Address)
	if err != nil {
		return models.Escrow{}, fmt.Errorf("endereço inválido no escrow %d: %w", r.AssetID, err)
	}
	return models.Escrow{AssetID: r.AssetID, AssetAddress: assetAddr, Address: address, Amount: r.Amount}, nil
}

type poolRow struct {
	AssetID            uint64 `db:"asset_id"`
	AssetAddress       string `db:"asset_address"`
	Address            string `db:"address"`
	TotalRevenue       uint64 `db:"total_revenue"`
	DistributedRevenue uint64 `db:"distributed_revenue"`
}

func (r poolRow) model() (models.RevenuePool, error) {
	assetAddr, err := solana.PublicKeyFromBase58(r.AssetAddress)
	if err != nil {
		return models.RevenuePool{}, fmt.Errorf("endereço do ativo inválido no pool %d: %w", r.AssetID, err)
	}
	address, err := solana.PublicKeyFromBase58(r.Address)
	if err != nil {
		return models.RevenuePool{}, fmt.Errorf("endereço inválido no pool %d: %w", r.AssetID, err)
	}
	return models.RevenuePool{
		AssetID:            r.AssetID,
		AssetAddress:       assetAddr,
		Address:            address,
		TotalRevenue:       r.TotalRevenue,
		DistributedRevenue: r.DistributedRevenue,
	}, nil
}

const (
	selectAsset  = `SELECT asset_id, creator, metadata_uri, total_supply, remaining_supply, address, bump, created_at FROM assets`
	selectEscrow = `SELECT asset_id, asset_address, address, amount FROM escrows`
	selectPool   = `SELECT asset_id, asset_address, address, total_revenue, distributed_revenue FROM revenue_pools`
)

// CreateAsset grava o ativo, o escrow, o pool de receita e a entrada do diário numa única transação.
func (d *DB) CreateAsset(ctx context.Context, rec Records, entry models.Transaction) error {
	tx, err := d.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("falha ao iniciar transação: %w", err)
	}
	defer tx.Rollback()

	a := rec.Asset
	_, err = tx.ExecContext(ctx,
		`INSERT INTO assets (asset_id, creator, metadata_uri, total_supply, remaining_supply, address, bump, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u64(a.ID), a.Creator.String(), a.MetadataURI, u64(a.TotalSupply), u64(a.RemainingSupply),
		a.Address.String(), int16(a.Bump), a.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("ativo %d: %w", a.ID, ErrAlreadyExists)
		}
		return fmt.Errorf("falha ao salvar ativo: %w", err)
	}

	e := rec.Escrow
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO escrows (asset_id, asset_address, address, amount) VALUES ($1, $2, $3, $4)`,
		u64(e.AssetID), e.AssetAddress.String(), e.Address.String(), u64(e.Amount)); err != nil {
		return fmt.Errorf("falha ao salvar escrow: %w", err)
	}

	p := rec.Pool
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO revenue_pools (asset_id, asset_address, address, total_revenue, distributed_revenue)
		 VALUES ($1, $2, $3, $4, $5)`,
		u64(p.AssetID), p.AssetAddress.String(), p.Address.String(), u64(p.TotalRevenue), u64(p.DistributedRevenue)); err != nil {
		return fmt.Errorf("falha ao salvar pool de receita: %w", err)
	}

	if err := insertTransaction(ctx, tx, entry); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("falha ao confirmar criação do ativo: %w", err)
	}
	return nil
}

// Update bloqueia as linhas do ativo (SELECT ... FOR UPDATE), aplica fn e grava tudo na mesma transação.
func (d *DB) Update(ctx context.Context, assetID uint64, entry models.Transaction, fn func(*Records) error) error {
	tx, err := d.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("falha ao iniciar transação: %w", err)
	}
	defer tx.Rollback()

	var ar assetRow
	if err := tx.GetContext(ctx, &ar, selectAsset+` WHERE asset_id = $1 FOR UPDATE`, u64(assetID)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("ativo %d: %w", assetID, ErrNotFound)
		}
		return fmt.Errorf("falha ao buscar ativo: %w", err)
	}
	var er escrowRow
	if err := tx.GetContext(ctx, &er, selectEscrow+` WHERE asset_id = $1 FOR UPDATE`, u64(assetID)); err != nil {
		return fmt.Errorf("falha ao buscar escrow: %w", err)
	}
	var pr poolRow
	if err := tx.GetContext(ctx, &pr, selectPool+` WHERE asset_id = $1 FOR UPDATE`, u64(assetID)); err != nil {
		return fmt.Errorf("falha ao buscar pool de receita: %w", err)
	}

	var rec Records
	if rec.Asset, err = ar.model(); err != nil {
		return err
	}
	if rec.Escrow, err = er.model(); err != nil {
		return err
	}
	if rec.Pool, err = pr.model(); err != nil {
		return err
	}

	if err := fn(&rec); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE assets SET remaining_supply = $1 WHERE asset_id = $2`,
		u64(rec.Asset.RemainingSupply), u64(assetID)); err != nil {
		return fmt.Errorf("falha ao atualizar ativo: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE escrows SET amount = $1 WHERE asset_id = $2`,
		u64(rec.Escrow.Amount), u64(assetID)); err != nil {
		return fmt.Errorf("falha ao atualizar escrow: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE revenue_pools SET total_revenue = $1, distributed_revenue = $2 WHERE asset_id = $3`,
		u64(rec.Pool.TotalRevenue), u64(rec.Pool.DistributedRevenue), u64(assetID)); err != nil {
		return fmt.Errorf("falha ao atualizar pool de receita: %w", err)
	}
	if err := insertTransaction(ctx, tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("falha ao confirmar atualização do ativo %d: %w", assetID, err)
	}
	return nil
}

func insertTransaction(ctx context.Context, tx *sqlx.Tx, t models.Transaction) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO ledger_transactions (id, asset_id, kind, amount, actor, signature, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, u64(t.AssetID), string(t.Kind), u64(t.Amount), t.Actor, t.Signature, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("falha ao registrar transação no diário: %w", err)
	}
	return nil
}

func (d *DB) GetAsset(ctx context.Context, assetID uint64) (models.Asset, bool, error) {
	return d.getAsset(ctx, selectAsset+` WHERE asset_id = $1`, u64(assetID))
}

// GetAssetByAddress busca o ativo pelo endereço derivado (usado pelo listener da blockchain).
func (d *DB) GetAssetByAddress(ctx context.Context, address string) (models.Asset, bool, error) {
	return d.getAsset(ctx, selectAsset+` WHERE address = $1`, address)
}

func (d *DB) getAsset(ctx context.Context, query string, arg interface{}) (models.Asset, bool, error) {
	var row assetRow
	if err := d.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Asset{}, false, nil
		}
		return models.Asset{}, false, fmt.Errorf("falha ao buscar ativo: %w", err)
	}
	asset, err := row.model()
	if err != nil {
		return models.Asset{}, false, err
	}
	return asset, true, nil
}

func (d *DB) ListAssets(ctx context.Context) ([]models.Asset, error) {
	var rows []assetRow
	if err := d.SelectContext(ctx, &rows, selectAsset+` ORDER BY asset_id`); err != nil {
		return nil, fmt.Errorf("falha ao listar ativos: %w", err)
	}
	assets := make([]models.Asset, 0, len(rows))
	for _, row := range rows {
		asset, err := row.model()
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, nil
}

func (d *DB) GetEscrow(ctx context.Context, assetID uint64) (models.Escrow, bool, error) {
	var row escrowRow
	if err := d.GetContext(ctx, &row, selectEscrow+` WHERE asset_id = $1`, u64(assetID)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Escrow{}, false, nil
		}
		return models.Escrow{}, false, fmt.Errorf("falha ao buscar escrow: %w", err)
	}
	escrow, err := row.model()
	if err != nil {
		return models.Escrow{}, false, err
	}
	return escrow, true, nil
}

func (d *DB) GetRevenuePool(ctx context.Context, assetID uint64) (models.RevenuePool, bool, error) {
	var row poolRow
	if err := d.GetContext(ctx, &row, selectPool+` WHERE asset_id = $1`, u64(assetID)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.RevenuePool{}, false, nil
		}
		return models.RevenuePool{}, false, fmt.Errorf("falha ao buscar pool de receita: %w", err)
	}
	pool, err := row.model()
	if err != nil {
		return models.RevenuePool{}, false, err
	}
	return pool, true, nil
}

func (d *DB) ListTransactions(ctx context.Context, assetID uint64) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := d.SelectContext(ctx, &txs,
		`SELECT id, asset_id, kind, amount, actor, signature, created_at
		 FROM ledger_transactions WHERE asset_id = $1 ORDER BY seq`, u64(assetID))
	if err != nil {
		return nil, fmt.Errorf("falha ao listar transações: %w", err)
	}
	return txs, nil
}
