package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ferreirogomes/assetledger/models"
	"github.com/ferreirogomes/assetledger/storage"
)

// RevenuePoolService faz a contabilidade da receita de cada ativo.
// Nenhum valor é de fato transferido aos detentores de frações.
type RevenuePoolService struct {
	Store storage.Store
	now   func() time.Time
}

func NewRevenuePoolService(store storage.Store) *RevenuePoolService {
	return &RevenuePoolService{Store: store, now: time.Now}
}

// DistributeRevenue soma amount à receita total e à receita distribuída.
func (s *RevenuePoolService) DistributeRevenue(ctx context.Context, assetID, amount uint64, creator Caller) (models.RevenuePool, error) {
	var out models.RevenuePool
	entry := newEntry(s.now(), assetID, models.KindDistributeRevenue, amount, creator)
	err := s.Store.Update(ctx, assetID, entry, func(rec *storage.Records) error {
		p := &rec.Pool
		if amount > math.MaxUint64-p.TotalRevenue || amount > math.MaxUint64-p.DistributedRevenue {
			return fmt.Errorf("ativo %d: receita excederia 64 bits: %w", assetID, ErrInvalidAmount)
		}
		p.TotalRevenue += amount
		p.DistributedRevenue += amount
		out = *p
		return nil
	})
	if err != nil {
		return models.RevenuePool{}, storeError(assetID, err)
	}
	return out, nil
}

func (s *RevenuePoolService) GetRevenuePool(ctx context.Context, assetID uint64) (models.RevenuePool, error) {
	pool, found, err := s.Store.GetRevenuePool(ctx, assetID)
	if err != nil {
		return models.RevenuePool{}, fmt.Errorf("erro ao buscar pool de receita: %w", err)
	}
	if !found {
		return models.RevenuePool{}, fmt.Errorf("pool de receita do ativo %d: %w", assetID, ErrAssetNotFound)
	}
	return pool, nil
}
