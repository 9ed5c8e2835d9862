package storage_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ferreirogomes/assetledger/models"
	"github.com/ferreirogomes/assetledger/storage"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords(id uint64) storage.Records {
	addr := solana.NewWallet().PublicKey()
	return storage.Records{
		Asset: models.Asset{
			ID:              id,
			Creator:         solana.NewWallet().PublicKey(),
			MetadataURI:     "uri",
			TotalSupply:     100,
			RemainingSupply: 100,
			Address:         addr,
		},
		Escrow: models.Escrow{AssetID: id, AssetAddress: addr},
		Pool:   models.RevenuePool{AssetID: id, AssetAddress: addr},
	}
}

func entry(id uint64, kind models.TransactionKind) models.Transaction {
	return models.Transaction{ID: string(kind), AssetID: id, Kind: kind}
}

func TestMemoryStoreCreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStore()
	rec := sampleRecords(1)

	require.NoError(t, s.CreateAsset(ctx, rec, entry(1, models.KindCreateAsset)))

	asset, found, err := s.GetAsset(ctx, 1)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, rec.Asset, asset)

	byAddr, found, err := s.GetAssetByAddress(ctx, rec.Asset.Address.String())
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, uint64(1), byAddr.ID)

	_, found, err = s.GetAsset(ctx, 2)
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = s.GetEscrow(ctx, 2)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStoreDuplicate(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStore()

	require.NoError(t, s.CreateAsset(ctx, sampleRecords(1), entry(1, models.KindCreateAsset)))
	err := s.CreateAsset(ctx, sampleRecords(1), entry(1, models.KindCreateAsset))
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)
}

// TestMemoryStoreUpdateIsAllOrNothing verifica que um erro em fn descarta todas as alterações
func TestMemoryStoreUpdateIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStore()
	require.NoError(t, s.CreateAsset(ctx, sampleRecords(1), entry(1, models.KindCreateAsset)))

	boom := errors.New("boom")
	err := s.Update(ctx, 1, entry(1, models.KindMintFraction), func(rec *storage.Records) error {
		rec.Asset.RemainingSupply = 10
		rec.Escrow.Amount = 90
		rec.Pool.TotalRevenue = 5
		return boom
	})
	assert.ErrorIs(t, err, boom)

	asset, _, _ := s.GetAsset(ctx, 1)
	escrow, _, _ := s.GetEscrow(ctx, 1)
	pool, _, _ := s.GetRevenuePool(ctx, 1)
	assert.Equal(t, uint64(100), asset.RemainingSupply)
	assert.Equal(t, uint64(0), escrow.Amount)
	assert.Equal(t, uint64(0), pool.TotalRevenue)

	txs, err := s.ListTransactions(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, txs, 1)

	err = s.Update(ctx, 1, entry(1, models.KindMintFraction), func(rec *storage.Records) error {
		rec.Asset.RemainingSupply = 10
		rec.Escrow.Amount = 90
		return nil
	})
	require.NoError(t, err)

	asset, _, _ = s.GetAsset(ctx, 1)
	escrow, _, _ = s.GetEscrow(ctx, 1)
	assert.Equal(t, uint64(10), asset.RemainingSupply)
	assert.Equal(t, uint64(90), escrow.Amount)

	txs, err = s.ListTransactions(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, txs, 2)
}

func TestMemoryStoreUpdateUnknown(t *testing.T) {
	s := storage.NewMemoryStore()
	err := s.Update(context.Background(), 9, entry(9, models.KindBuyFractions), func(*storage.Records) error { return nil })
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

// TestMemoryStoreReadersSeeConsistentRecords garante que leitores nunca observam atualização parcial
func TestMemoryStoreReadersSeeConsistentRecords(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStore()
	require.NoError(t, s.CreateAsset(ctx, sampleRecords(1), entry(1, models.KindCreateAsset)))

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Update(ctx, 1, entry(1, models.KindMintFraction), func(rec *storage.Records) error {
				if rec.Asset.RemainingSupply == 0 {
					return errors.New("esgotado")
				}
				rec.Asset.RemainingSupply--
				rec.Escrow.Amount++
				return nil
			})
		}()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			asset, _, _ := s.GetAsset(ctx, 1)
			assert.LessOrEqual(t, asset.RemainingSupply, asset.TotalSupply)
		}
	}()

	wg.Wait()
	<-done

	asset, _, _ := s.GetAsset(ctx, 1)
	escrow, _, _ := s.GetEscrow(ctx, 1)
	assert.Equal(t, uint64(0), asset.RemainingSupply)
	assert.Equal(t, uint64(100), escrow.Amount)
}

func TestMemoryStoreListAssets(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStore()
	for _, id := range []uint64{3, 1, 2} {
		require.NoError(t, s.CreateAsset(ctx, sampleRecords(id), entry(id, models.KindCreateAsset)))
	}

	assets, err := s.ListAssets(ctx)
	require.NoError(t, err)
	require.Len(t, assets, 3)
	assert.Equal(t, []uint64{1, 2, 3}, []uint64{assets[0].ID, assets[1].ID, assets[2].ID})
}
