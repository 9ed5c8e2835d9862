package models

import "github.com/gagliardetto/solana-go"

// RevenuePool acumula a receita de um ativo e a parcela já distribuída.
type RevenuePool struct {
	AssetID            uint64           `json:"asset_id"`
	AssetAddress       solana.PublicKey `json:"asset_address"`
	Address            solana.PublicKey `json:"address"` // seeds "revenue_pool" + endereço do ativo
	TotalRevenue       uint64           `json:"total_revenue"`
	DistributedRevenue uint64           `json:"distributed_revenue"`
}

// Undistributed retorna a receita ainda não distribuída.
func (p RevenuePool) Undistributed() uint64 {
	if p.DistributedRevenue >= p.TotalRevenue {
		return 0
	}
	return p.TotalRevenue - p.DistributedRevenue
}
