package blockchain_listener_test

import (
	"crypto/sha256"
	"testing"

	"github.com/ferreirogomes/assetledger/blockchain_listener"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keys(n int) []solana.PublicKey {
	out := make([]solana.PublicKey, n)
	for i := range out {
		out[i] = solana.NewWallet().PublicKey()
	}
	return out
}

func TestDiscriminatorMatchesAnchor(t *testing.T) {
	sum := sha256.Sum256([]byte("global:buy_fractions"))
	disc := blockchain_listener.Discriminator(blockchain_listener.InstructionBuyFractions)
	assert.Equal(t, sum[:8], disc[:])
}

func TestDecodeCreateAsset(t *testing.T) {
	accounts := keys(5)
	data := encode(t, blockchain_listener.InstructionCreateAsset, blockchain_listener.CreateAssetArgs{
		AssetID:     77,
		MetadataURI: "https://api.example.com/metadata/77",
		TotalSupply: 1_000_000,
	})

	got, err := blockchain_listener.DecodeInstruction(accounts, data)
	require.NoError(t, err)
	assert.Equal(t, blockchain_listener.InstructionCreateAsset, got.Kind)
	assert.Equal(t, uint64(77), got.AssetID)
	assert.Equal(t, "https://api.example.com/metadata/77", got.MetadataURI)
	assert.Equal(t, uint64(1_000_000), got.TotalSupply)
	assert.Equal(t, accounts[0], got.AssetAddress)
	assert.Equal(t, accounts[3], got.Signer)
}

func TestDecodeAmountInstructions(t *testing.T) {
	accounts := keys(3)

	got, err := blockchain_listener.DecodeInstruction(accounts[:2],
		encode(t, blockchain_listener.InstructionMintFraction, blockchain_listener.AmountArgs{Amount: 400}))
	require.NoError(t, err)
	assert.Equal(t, uint64(400), got.Amount)
	assert.True(t, got.Signer.IsZero())

	got, err = blockchain_listener.DecodeInstruction(accounts,
		encode(t, blockchain_listener.InstructionDistributeRevenue, blockchain_listener.AmountArgs{Amount: 9}))
	require.NoError(t, err)
	assert.Equal(t, accounts[1], got.AssetAddress)
	assert.Equal(t, accounts[2], got.Signer)
}

func TestDecodeRejectsMalformed(t *testing.T) {
	_, err := blockchain_listener.DecodeInstruction(keys(3), []byte{1, 2, 3})
	assert.ErrorIs(t, err, blockchain_listener.ErrUnknownInstruction)

	_, err = blockchain_listener.DecodeInstruction(keys(3), []byte{0, 0, 0, 0, 0, 0, 0, 0, 1})
	assert.ErrorIs(t, err, blockchain_listener.ErrUnknownInstruction)

	// buy_fractions precisa de três contas
	_, err = blockchain_listener.DecodeInstruction(keys(2),
		encode(t, blockchain_listener.InstructionBuyFractions, blockchain_listener.AmountArgs{Amount: 1}))
	assert.Error(t, err)

	// argumentos truncados
	data := encode(t, blockchain_listener.InstructionMintFraction, blockchain_listener.AmountArgs{Amount: 1})
	_, err = blockchain_listener.DecodeInstruction(keys(2), data[:10])
	assert.Error(t, err)
}
