package services

import (
	"context"
	"fmt"

	"github.com/ferreirogomes/assetledger/models"
	"github.com/ferreirogomes/assetledger/storage"

	"github.com/sirupsen/logrus"
)

// Policy liga verificações que o programa on-chain declara mas não aplica.
// O valor zero reproduz o comportamento on-chain.
type Policy struct {
	// StrictAuthorization exige que quem emite ou distribui seja o criador do ativo.
	StrictAuthorization bool
	// RejectZeroAmount rejeita quantidades zero com InvalidAmount.
	RejectZeroAmount bool
	// FundEscrowOnMint credita no escrow as frações emitidas.
	FundEscrowOnMint bool
}

// Ledger é o contrato consumido pelos handlers HTTP e pelo listener da blockchain.
type Ledger interface {
	CreateAsset(ctx context.Context, assetID uint64, metadataURI string, totalSupply uint64, creator Caller) (models.Asset, error)
	MintFractionTokens(ctx context.Context, assetID, amount uint64, signer Caller) (models.Asset, error)
	BuyFractions(ctx context.Context, assetID, amount uint64, buyer Caller) (models.Escrow, error)
	DistributeRevenue(ctx context.Context, assetID, amount uint64, creator Caller) (models.RevenuePool, error)

	GetAsset(ctx context.Context, assetID uint64) (models.Asset, error)
	GetAssetByAddress(ctx context.Context, address string) (models.Asset, error)
	ListAssets(ctx context.Context) ([]models.Asset, error)
	GetEscrow(ctx context.Context, assetID uint64) (models.Escrow, error)
	GetRevenuePool(ctx context.Context, assetID uint64) (models.RevenuePool, error)
	ListTransactions(ctx context.Context, assetID uint64) ([]models.Transaction, error)
}

// TransactionGateway é o ponto de entrada das quatro operações: valida o assinante,
// aplica a Policy e encaminha para o componente dono do registro.
type TransactionGateway struct {
	Assets  *AssetRegistry
	Escrows *EscrowLedger
	Revenue *RevenuePoolService
	Policy  Policy
	Log     logrus.FieldLogger

	store storage.Store
}

var _ Ledger = (*TransactionGateway)(nil)

// NewTransactionGateway monta os três componentes sobre o mesmo store.
func NewTransactionGateway(store storage.Store, deriver *AddressDeriver, policy Policy) *TransactionGateway {
	return &TransactionGateway{
		Assets:  NewAssetRegistry(store, deriver, policy.FundEscrowOnMint),
		Escrows: NewEscrowLedger(store),
		Revenue: NewRevenuePoolService(store),
		Policy:  policy,
		Log:     logrus.StandardLogger(),
		store:   store,
	}
}

// NewMirrorGateway monta um gateway sem Policy sobre o mesmo store, para reaplicar
// instruções que o programa on-chain já aceitou. A Policy do serviço HTTP não vale aqui.
func NewMirrorGateway(store storage.Store, deriver *AddressDeriver) *TransactionGateway {
	return NewTransactionGateway(store, deriver, Policy{})
}

func (g *TransactionGateway) requireSigner(op string, caller Caller) error {
	if caller.Key.IsZero() {
		return fmt.Errorf("%s sem assinante: %w", op, ErrUnauthorized)
	}
	return nil
}

func (g *TransactionGateway) checkAmount(op string, amount uint64) error {
	if g.Policy.RejectZeroAmount && amount == 0 {
		return fmt.Errorf("%s com quantidade zero: %w", op, ErrInvalidAmount)
	}
	return nil
}

// requireCreator compara o assinante com o criador. O criador é imutável,
// então a leitura fora do Update não abre janela de corrida.
func (g *TransactionGateway) requireCreator(ctx context.Context, op string, assetID uint64, caller Caller) error {
	if !g.Policy.StrictAuthorization {
		return nil
	}
	asset, err := g.Assets.GetAsset(ctx, assetID)
	if err != nil {
		return err
	}
	if !asset.Creator.Equals(caller.Key) {
		return fmt.Errorf("%s no ativo %d por %s: %w", op, assetID, caller.Key, ErrUnauthorized)
	}
	return nil
}

func (g *TransactionGateway) CreateAsset(ctx context.Context, assetID uint64, metadataURI string, totalSupply uint64, creator Caller) (models.Asset, error) {
	if err := g.requireSigner("create_asset", creator); err != nil {
		return models.Asset{}, err
	}
	if err := g.checkAmount("create_asset", totalSupply); err != nil {
		return models.Asset{}, err
	}

	asset, err := g.Assets.CreateAsset(ctx, assetID, metadataURI, totalSupply, creator)
	if err != nil {
		return models.Asset{}, err
	}

	g.Log.WithFields(logrus.Fields{
		"asset_id":     asset.ID,
		"creator":      asset.Creator.String(),
		"total_supply": asset.TotalSupply,
		"address":      asset.Address.String(),
	}).Info("Ativo criado")
	return asset, nil
}

func (g *TransactionGateway) MintFractionTokens(ctx context.Context, assetID, amount uint64, signer Caller) (models.Asset, error) {
	if err := g.requireSigner("mint_fraction_tokens", signer); err != nil {
		return models.Asset{}, err
	}
	if err := g.checkAmount("mint_fraction_tokens", amount); err != nil {
		return models.Asset{}, err
	}
	if err := g.requireCreator(ctx, "mint_fraction_tokens", assetID, signer); err != nil {
		return models.Asset{}, err
	}

	asset, err := g.Assets.MintFractionTokens(ctx, assetID, amount, signer)
	if err != nil {
		return models.Asset{}, err
	}

	g.Log.WithFields(logrus.Fields{
		"asset_id":         asset.ID,
		"amount":           amount,
		"remaining_supply": asset.RemainingSupply,
		"state":            asset.State(),
	}).Info("Tokens fracionários emitidos")
	return asset, nil
}

func (g *TransactionGateway) BuyFractions(ctx context.Context, assetID, amount uint64, buyer Caller) (models.Escrow, error) {
	if err := g.requireSigner("buy_fractions", buyer); err != nil {
		return models.Escrow{}, err
	}
	if err := g.checkAmount("buy_fractions", amount); err != nil {
		return models.Escrow{}, err
	}

	escrow, err := g.Escrows.BuyFractions(ctx, assetID, amount, buyer)
	if err != nil {
		return models.Escrow{}, err
	}

	g.Log.WithFields(logrus.Fields{
		"asset_id": assetID,
		"amount":   amount,
		"buyer":    buyer.Key.String(),
		"escrow":   escrow.Amount,
	}).Info("Frações compradas")
	return escrow, nil
}

func (g *TransactionGateway) DistributeRevenue(ctx context.Context, assetID, amount uint64, creator Caller) (models.RevenuePool, error) {
	if err := g.requireSigner("distribute_revenue", creator); err != nil {
		return models.RevenuePool{}, err
	}
	if err := g.checkAmount("distribute_revenue", amount); err != nil {
		return models.RevenuePool{}, err
	}
	if err := g.requireCreator(ctx, "distribute_revenue", assetID, creator); err != nil {
		return models.RevenuePool{}, err
	}

	pool, err := g.Revenue.DistributeRevenue(ctx, assetID, amount, creator)
	if err != nil {
		return models.RevenuePool{}, err
	}

	g.Log.WithFields(logrus.Fields{
		"asset_id":      assetID,
		"amount":        amount,
		"total_revenue": pool.TotalRevenue,
	}).Info("Receita distribuída")
	return pool, nil
}

func (g *TransactionGateway) GetAsset(ctx context.Context, assetID uint64) (models.Asset, error) {
	return g.Assets.GetAsset(ctx, assetID)
}

func (g *TransactionGateway) GetAssetByAddress(ctx context.Context, address string) (models.Asset, error) {
	return g.Assets.GetAssetByAddress(ctx, address)
}

func (g *TransactionGateway) ListAssets(ctx context.Context) ([]models.Asset, error) {
	return g.Assets.ListAssets(ctx)
}

func (g *TransactionGateway) GetEscrow(ctx context.Context, assetID uint64) (models.Escrow, error) {
	return g.Escrows.GetEscrow(ctx, assetID)
}

func (g *TransactionGateway) GetRevenuePool(ctx context.Context, assetID uint64) (models.RevenuePool, error) {
	return g.Revenue.GetRevenuePool(ctx, assetID)
}

// ListTransactions retorna o diário do ativo em ordem de aplicação.
func (g *TransactionGateway) ListTransactions(ctx context.Context, assetID uint64) ([]models.Transaction, error) {
	if _, err := g.Assets.GetAsset(ctx, assetID); err != nil {
		return nil, err
	}
	return g.store.ListTransactions(ctx, assetID)
}
