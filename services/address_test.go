package services_test

import (
	"testing"

	"github.com/ferreirogomes/assetledger/services"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveAddresses(t *testing.T) {
	d := services.NewAddressDeriver(services.DefaultProgramID)

	a1, err := d.Derive(1)
	require.NoError(t, err)
	again, err := d.Derive(1)
	require.NoError(t, err)
	assert.Equal(t, a1, again)

	assert.NotEqual(t, a1.Asset, a1.Escrow)
	assert.NotEqual(t, a1.Asset, a1.RevenuePool)
	assert.NotEqual(t, a1.Escrow, a1.RevenuePool)

	a2, err := d.Derive(2)
	require.NoError(t, err)
	assert.NotEqual(t, a1.Asset, a2.Asset)

	// O endereço do ativo usa o id em little-endian, como o programa on-chain
	expected, bump, err := solana.FindProgramAddress(
		[][]byte{[]byte("asset"), {1, 0, 0, 0, 0, 0, 0, 0}},
		services.DefaultProgramID,
	)
	require.NoError(t, err)
	assert.Equal(t, expected, a1.Asset)
	assert.Equal(t, bump, a1.AssetBump)

	escrow, _, err := solana.FindProgramAddress([][]byte{[]byte("escrow"), a1.Asset.Bytes()}, services.DefaultProgramID)
	require.NoError(t, err)
	assert.Equal(t, escrow, a1.Escrow)
}

func TestDeriveDependsOnProgram(t *testing.T) {
	other := solana.NewWallet().PublicKey()

	a, err := services.NewAddressDeriver(services.DefaultProgramID).Derive(5)
	require.NoError(t, err)
	b, err := services.NewAddressDeriver(other).Derive(5)
	require.NoError(t, err)

	assert.NotEqual(t, a.Asset, b.Asset)
}
