package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ferreirogomes/assetledger/models"
	"github.com/ferreirogomes/assetledger/storage"
)

// AssetRegistry cria ativos e controla a oferta restante de frações.
type AssetRegistry struct {
	Store   storage.Store
	Deriver *AddressDeriver

	// FundEscrowOnMint credita no escrow as frações emitidas.
	// Desligado, reproduz o programa on-chain, que nunca abastece o escrow.
	FundEscrowOnMint bool

	now func() time.Time
}

// NewAssetRegistry cria uma nova instância do registro de ativos.
func NewAssetRegistry(store storage.Store, deriver *AddressDeriver, fundEscrowOnMint bool) *AssetRegistry {
	return &AssetRegistry{Store: store, Deriver: deriver, FundEscrowOnMint: fundEscrowOnMint, now: time.Now}
}

// CreateAsset registra o ativo junto com o escrow (saldo zero) e o pool de receita.
func (r *AssetRegistry) CreateAsset(ctx context.Context, assetID uint64, metadataURI string, totalSupply uint64, creator Caller) (models.Asset, error) {
	if len(metadataURI) > models.MaxMetadataURILen {
		return models.Asset{}, fmt.Errorf("ativo %d (%d bytes): %w", assetID, len(metadataURI), ErrMetadataTooLong)
	}

	addrs, err := r.Deriver.Derive(assetID)
	if err != nil {
		return models.Asset{}, err
	}

	now := r.now()
	asset := models.Asset{
		ID:              assetID,
		Creator:         creator.Key,
		MetadataURI:     metadataURI,
		TotalSupply:     totalSupply,
		RemainingSupply: totalSupply,
		Address:         addrs.Asset,
		Bump:            addrs.AssetBump,
		CreatedAt:       now.UTC(),
	}
	rec := storage.Records{
		Asset:  asset,
		Escrow: models.Escrow{AssetID: assetID, AssetAddress: addrs.Asset, Address: addrs.Escrow},
		Pool:   models.RevenuePool{AssetID: assetID, AssetAddress: addrs.Asset, Address: addrs.RevenuePool},
	}

	entry := newEntry(now, assetID, models.KindCreateAsset, totalSupply, creator)
	if err := r.Store.CreateAsset(ctx, rec, entry); err != nil {
		return models.Asset{}, storeError(assetID, err)
	}
	return asset, nil
}

// MintFractionTokens reduz a oferta restante em amount.
func (r *AssetRegistry) MintFractionTokens(ctx context.Context, assetID, amount uint64, caller Caller) (models.Asset, error) {
	var out models.Asset
	entry := newEntry(r.now(), assetID, models.KindMintFraction, amount, caller)
	err := r.Store.Update(ctx, assetID, entry, func(rec *storage.Records) error {
		if amount > rec.Asset.RemainingSupply {
			return fmt.Errorf("ativo %d: pedido %d, restante %d: %w",
				assetID, amount, rec.Asset.RemainingSupply, ErrInsufficientSupply)
		}
		rec.Asset.RemainingSupply -= amount
		if r.FundEscrowOnMint {
			rec.Escrow.Amount += amount
		}
		out = rec.Asset
		return nil
	})
	if err != nil {
		return models.Asset{}, storeError(assetID, err)
	}
	return out, nil
}

func (r *AssetRegistry) GetAsset(ctx context.Context, assetID uint64) (models.Asset, error) {
	asset, found, err := r.Store.GetAsset(ctx, assetID)
	if err != nil {
		return models.Asset{}, fmt.Errorf("erro ao buscar ativo: %w", err)
	}
	if !found {
		return models.Asset{}, fmt.Errorf("ativo %d: %w", assetID, ErrAssetNotFound)
	}
	return asset, nil
}

// GetAssetByAddress busca o ativo pelo endereço derivado on-chain.
func (r *AssetRegistry) GetAssetByAddress(ctx context.Context, address string) (models.Asset, error) {
	asset, found, err := r.Store.GetAssetByAddress(ctx, address)
	if err != nil {
		return models.Asset{}, fmt.Errorf("erro ao buscar ativo por endereço: %w", err)
	}
	if !found {
		return models.Asset{}, fmt.Errorf("endereço %s: %w", address, ErrAssetNotFound)
	}
	return asset, nil
}

func (r *AssetRegistry) ListAssets(ctx context.Context) ([]models.Asset, error) {
	return r.Store.ListAssets(ctx)
}
