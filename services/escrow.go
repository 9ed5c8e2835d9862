package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ferreirogomes/assetledger/models"
	"github.com/ferreirogomes/assetledger/storage"
)

// EscrowLedger debita do escrow as frações compradas.
// Não há saldo do comprador nem pagamento: a compra só reduz o escrow.
type EscrowLedger struct {
	Store storage.Store
	now   func() time.Time
}

func NewEscrowLedger(store storage.Store) *EscrowLedger {
	return &EscrowLedger{Store: store, now: time.Now}
}

// BuyFractions debita amount do escrow do ativo.
func (l *EscrowLedger) BuyFractions(ctx context.Context, assetID, amount uint64, buyer Caller) (models.Escrow, error) {
	var out models.Escrow
	entry := newEntry(l.now(), assetID, models.KindBuyFractions, amount, buyer)
	err := l.Store.Update(ctx, assetID, entry, func(rec *storage.Records) error {
		if amount > rec.Escrow.Amount {
			return fmt.Errorf("ativo %d: pedido %d, escrow %d: %w",
				assetID, amount, rec.Escrow.Amount, ErrInsufficientTokenBalance)
		}
		rec.Escrow.Amount -= amount
		out = rec.Escrow
		return nil
	})
	if err != nil {
		return models.Escrow{}, storeError(assetID, err)
	}
	return out, nil
}

func (l *EscrowLedger) GetEscrow(ctx context.Context, assetID uint64) (models.Escrow, error) {
	escrow, found, err := l.Store.GetEscrow(ctx, assetID)
	if err != nil {
		return models.Escrow{}, fmt.Errorf("erro ao buscar escrow: %w", err)
	}
	if !found {
		return models.Escrow{}, fmt.Errorf("escrow do ativo %d: %w", assetID, ErrAssetNotFound)
	}
	return escrow, nil
}
