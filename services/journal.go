package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/ferreirogomes/assetledger/models"
	"github.com/ferreirogomes/assetledger/storage"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
)

// Caller identifica quem assinou a operação.
// Signature é preenchida quando a operação é espelhada de uma transação on-chain.
type Caller struct {
	Key       solana.PublicKey
	Signature string
}

// Signer cria um Caller sem assinatura on-chain.
func Signer(key solana.PublicKey) Caller {
	return Caller{Key: key}
}

func newEntry(now time.Time, assetID uint64, kind models.TransactionKind, amount uint64, caller Caller) models.Transaction {
	return models.Transaction{
		ID:        uuid.New().String(),
		AssetID:   assetID,
		Kind:      kind,
		Amount:    amount,
		Actor:     caller.Key.String(),
		Signature: caller.Signature,
		CreatedAt: now.UTC(),
	}
}

// storeError traduz os erros do storage para os códigos do ledger.
func storeError(assetID uint64, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("ativo %d: %w", assetID, ErrAssetNotFound)
	case errors.Is(err, storage.ErrAlreadyExists):
		return fmt.Errorf("ativo %d: %w", assetID, ErrDuplicateAsset)
	default:
		return err
	}
}
