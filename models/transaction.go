package models

import "time"

// TransactionKind identifica a operação registrada no diário.
type TransactionKind string

const (
	KindCreateAsset       TransactionKind = "create_asset"
	KindMintFraction      TransactionKind = "mint_fraction_tokens"
	KindBuyFractions      TransactionKind = "buy_fractions"
	KindDistributeRevenue TransactionKind = "distribute_revenue"
)

// Transaction é uma entrada do diário, gravada junto com a mudança de estado que descreve.
type Transaction struct {
	ID        string          `json:"id" db:"id"`
	AssetID   uint64          `json:"asset_id" db:"asset_id"`
	Kind      TransactionKind `json:"kind" db:"kind"`
	Amount    uint64          `json:"amount" db:"amount"`
	Actor     string          `json:"actor" db:"actor"`         // Chave pública de quem assinou
	Signature string          `json:"signature" db:"signature"` // Assinatura on-chain, quando espelhada da rede
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}
