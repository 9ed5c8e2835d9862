package models

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// MaxMetadataURILen é a capacidade reservada para o URI de metadados na conta do ativo.
const MaxMetadataURILen = 256

// AssetState é o pseudo-estado de um ativo em função da oferta restante.
type AssetState string

const (
	AssetActive   AssetState = "active"
	AssetDepleted AssetState = "depleted"
)

// Asset representa um item tokenizado com oferta total e oferta restante de frações.
type Asset struct {
	ID              uint64           `json:"id"`
	Creator         solana.PublicKey `json:"creator"`
	MetadataURI     string           `json:"metadata_uri"`
	TotalSupply     uint64           `json:"total_supply"`
	RemainingSupply uint64           `json:"remaining_supply"`
	Address         solana.PublicKey `json:"address"` // Endereço derivado (seeds "asset" + id)
	Bump            uint8            `json:"bump"`
	CreatedAt       time.Time        `json:"created_at"`
}

// State retorna Active enquanto ainda houver oferta a emitir.
func (a Asset) State() AssetState {
	if a.RemainingSupply == 0 {
		return AssetDepleted
	}
	return AssetActive
}

// Minted retorna quantas frações já foram emitidas.
func (a Asset) Minted() uint64 {
	return a.TotalSupply - a.RemainingSupply
}
