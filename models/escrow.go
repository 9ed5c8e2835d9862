package models

import "github.com/gagliardetto/solana-go"

// Escrow guarda as frações de um ativo que aguardam venda.
type Escrow struct {
	AssetID      uint64           `json:"asset_id"`
	AssetAddress solana.PublicKey `json:"asset_address"`
	Address      solana.PublicKey `json:"address"` // seeds "escrow" + endereço do ativo
	Amount       uint64           `json:"amount"`
}
