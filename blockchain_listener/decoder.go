package blockchain_listener

import (
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// InstructionKind identifica uma instrução do programa de tokenização.
type InstructionKind string

const (
	InstructionCreateAsset       InstructionKind = "create_asset"
	InstructionMintFraction      InstructionKind = "mint_fraction_tokens"
	InstructionBuyFractions      InstructionKind = "buy_fractions"
	InstructionDistributeRevenue InstructionKind = "distribute_revenue"
)

// ErrUnknownInstruction indica um discriminador que não pertence ao programa.
var ErrUnknownInstruction = errors.New("instrução desconhecida")

const discriminatorSize = 8

// Discriminadores Anchor: os 8 primeiros bytes de sha256("global:<nome>").
var discriminators = map[bin.TypeID]InstructionKind{
	bin.SighashTypeID(bin.SIGHASH_GLOBAL_NAMESPACE, string(InstructionCreateAsset)):       InstructionCreateAsset,
	bin.SighashTypeID(bin.SIGHASH_GLOBAL_NAMESPACE, string(InstructionMintFraction)):      InstructionMintFraction,
	bin.SighashTypeID(bin.SIGHASH_GLOBAL_NAMESPACE, string(InstructionBuyFractions)):      InstructionBuyFractions,
	bin.SighashTypeID(bin.SIGHASH_GLOBAL_NAMESPACE, string(InstructionDistributeRevenue)): InstructionDistributeRevenue,
}

// Discriminator retorna o discriminador Anchor da instrução.
func Discriminator(kind InstructionKind) bin.TypeID {
	return bin.SighashTypeID(bin.SIGHASH_GLOBAL_NAMESPACE, string(kind))
}

// CreateAssetArgs são os argumentos borsh de create_asset.
type CreateAssetArgs struct {
	AssetID     uint64
	MetadataURI string
	TotalSupply uint64
}

// AmountArgs são os argumentos borsh de mint_fraction_tokens, buy_fractions e distribute_revenue.
type AmountArgs struct {
	Amount uint64
}

// Instruction é uma instrução decodificada, com as contas relevantes já resolvidas.
type Instruction struct {
	Kind InstructionKind

	// Preenchidos por create_asset.
	AssetID     uint64
	MetadataURI string
	TotalSupply uint64

	// Preenchido pelas demais instruções.
	Amount uint64

	// AssetAddress é a conta do ativo; Signer é o criador ou comprador, quando a instrução o declara.
	AssetAddress solana.PublicKey
	Signer       solana.PublicKey
}

// Posições das contas em cada instrução, na ordem declarada pelo programa:
//
//	create_asset:         asset, escrow, revenue_pool, creator, system_program
//	mint_fraction_tokens: asset, escrow
//	buy_fractions:        asset, escrow, buyer
//	distribute_revenue:   revenue_pool, asset, creator
type accountLayout struct {
	minAccounts int
	asset       int
	signer      int // -1 quando a instrução não tem assinante próprio
}

var layouts = map[InstructionKind]accountLayout{
	InstructionCreateAsset:       {minAccounts: 4, asset: 0, signer: 3},
	InstructionMintFraction:      {minAccounts: 2, asset: 0, signer: -1},
	InstructionBuyFractions:      {minAccounts: 3, asset: 0, signer: 2},
	InstructionDistributeRevenue: {minAccounts: 3, asset: 1, signer: 2},
}

// DecodeInstruction interpreta os dados de uma instrução do programa.
func DecodeInstruction(accounts []solana.PublicKey, data []byte) (Instruction, error) {
	if len(data) < discriminatorSize {
		return Instruction{}, fmt.Errorf("dados curtos demais (%d bytes): %w", len(data), ErrUnknownInstruction)
	}
	var id bin.TypeID
	copy(id[:], data[:discriminatorSize])
	kind, ok := discriminators[id]
	if !ok {
		return Instruction{}, fmt.Errorf("discriminador %x: %w", id[:], ErrUnknownInstruction)
	}

	layout := layouts[kind]
	if len(accounts) < layout.minAccounts {
		return Instruction{}, fmt.Errorf("%s espera %d contas, recebeu %d", kind, layout.minAccounts, len(accounts))
	}

	ix := Instruction{Kind: kind, AssetAddress: accounts[layout.asset]}
	if layout.signer >= 0 {
		ix.Signer = accounts[layout.signer]
	}

	dec := bin.NewBorshDecoder(data[discriminatorSize:])
	if kind == InstructionCreateAsset {
		var args CreateAssetArgs
		if err := dec.Decode(&args); err != nil {
			return Instruction{}, fmt.Errorf("falha ao decodificar argumentos de %s: %w", kind, err)
		}
		ix.AssetID = args.AssetID
		ix.MetadataURI = args.MetadataURI
		ix.TotalSupply = args.TotalSupply
		return ix, nil
	}

	var args AmountArgs
	if err := dec.Decode(&args); err != nil {
		return Instruction{}, fmt.Errorf("falha ao decodificar argumentos de %s: %w", kind, err)
	}
	ix.Amount = args.Amount
	return ix, nil
}
