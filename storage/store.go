package storage

import (
	"context"
	"errors"

	"github.com/ferreirogomes/assetledger/models"
)

var (
	// ErrAlreadyExists é retornado quando o asset_id já possui registros.
	ErrAlreadyExists = errors.New("registro já existe")
	// ErrNotFound é retornado quando não há registros para o asset_id.
	ErrNotFound = errors.New("registro não encontrado")
)

// Records agrupa os três registros pertencentes a um ativo.
type Records struct {
	Asset  models.Asset
	Escrow models.Escrow
	Pool   models.RevenuePool
}

// Store é a tabela chaveada por asset_id com os registros Asset, Escrow e RevenuePool.
//
// Update executa fn sobre uma cópia dos registros com acesso exclusivo ao ativo;
// os registros e a entrada do diário só são gravados se fn retornar nil.
type Store interface {
	CreateAsset(ctx context.Context, rec Records, entry models.Transaction) error
	Update(ctx context.Context, assetID uint64, entry models.Transaction, fn func(*Records) error) error

	GetAsset(ctx context.Context, assetID uint64) (models.Asset, bool, error)
	GetAssetByAddress(ctx context.Context, address string) (models.Asset, bool, error)
	ListAssets(ctx context.Context) ([]models.Asset, error)
	GetEscrow(ctx context.Context, assetID uint64) (models.Escrow, bool, error)
	GetRevenuePool(ctx context.Context, assetID uint64) (models.RevenuePool, bool, error)
	ListTransactions(ctx context.Context, assetID uint64) ([]models.Transaction, error)

	Close() error
}
