package services

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// DefaultProgramID é o endereço do programa de tokenização implantado.
var DefaultProgramID = solana.MustPublicKeyFromBase58("FuAVoPCtaJWnJZVxE2ii4CtiqPwgvmxLE7gkGv5udmjQ")

var (
	seedAsset       = []byte("asset")
	seedEscrow      = []byte("escrow")
	seedRevenuePool = []byte("revenue_pool")
)

// Addresses reúne os endereços derivados dos três registros de um ativo.
type Addresses struct {
	Asset       solana.PublicKey
	AssetBump   uint8
	Escrow      solana.PublicKey
	RevenuePool solana.PublicKey
}

// AddressDeriver calcula os mesmos endereços (PDAs) que o programa on-chain usa,
// o que permite casar contas observadas na rede com registros do ledger.
type AddressDeriver struct {
	ProgramID solana.PublicKey
}

// NewAddressDeriver cria um derivador para o programa informado.
func NewAddressDeriver(programID solana.PublicKey) *AddressDeriver {
	return &AddressDeriver{ProgramID: programID}
}

// Derive retorna os endereços do ativo, do escrow e do pool de receita.
func (d *AddressDeriver) Derive(assetID uint64) (Addresses, error) {
	var idLE [8]byte
	binary.LittleEndian.PutUint64(idLE[:], assetID)

	asset, bump, err := solana.FindProgramAddress([][]byte{seedAsset, idLE[:]}, d.ProgramID)
	if err != nil {
		return Addresses{}, fmt.Errorf("falha ao derivar endereço do ativo %d: %w", assetID, err)
	}
	escrow, _, err := solana.FindProgramAddress([][]byte{seedEscrow, asset.Bytes()}, d.ProgramID)
	if err != nil {
		return Addresses{}, fmt.Errorf("falha ao derivar endereço do escrow %d: %w", assetID, err)
	}
	pool, _, err := solana.FindProgramAddress([][]byte{seedRevenuePool, asset.Bytes()}, d.ProgramID)
	if err != nil {
		return Addresses{}, fmt.Errorf("falha ao derivar endereço do pool de receita %d: %w", assetID, err)
	}

	return Addresses{Asset: asset, AssetBump: bump, Escrow: escrow, RevenuePool: pool}, nil
}
