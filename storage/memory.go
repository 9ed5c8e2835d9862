package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ferreirogomes/assetledger/models"
)

type memoryEntry struct {
	mu      sync.Mutex
	rec     Records
	journal []models.Transaction
}

// MemoryStore mantém os registros em memória, com um mutex por ativo.
type MemoryStore struct {
	mu        sync.RWMutex
	entries   map[uint64]*memoryEntry
	byAddress map[string]uint64
}

// NewMemoryStore cria um store em memória vazio.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:   make(map[uint64]*memoryEntry),
		byAddress: make(map[string]uint64),
	}
}

func (s *MemoryStore) entry(assetID uint64) (*memoryEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[assetID]
	return e, ok
}

func (s *MemoryStore) CreateAsset(ctx context.Context, rec Records, entry models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[rec.Asset.ID]; exists {
		return fmt.Errorf("ativo %d: %w", rec.Asset.ID, ErrAlreadyExists)
	}
	s.entries[rec.Asset.ID] = &memoryEntry{rec: rec, journal: []models.Transaction{entry}}
	if !rec.Asset.Address.IsZero() {
		s.byAddress[rec.Asset.Address.String()] = rec.Asset.ID
	}
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, assetID uint64, entry models.Transaction, fn func(*Records) error) error {
	e, ok := s.entry(assetID)
	if !ok {
		return fmt.Errorf("ativo %d: %w", assetID, ErrNotFound)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.rec
	if err := fn(&next); err != nil {
		return err
	}
	e.rec = next
	e.journal = append(e.journal, entry)
	return nil
}

func (s *MemoryStore) GetAsset(ctx context.Context, assetID uint64) (models.Asset, bool, error) {
	rec, ok := s.snapshot(assetID)
	return rec.Asset, ok, nil
}

func (s *MemoryStore) GetAssetByAddress(ctx context.Context, address string) (models.Asset, bool, error) {
	s.mu.RLock()
	id, ok := s.byAddress[address]
	s.mu.RUnlock()
	if !ok {
		return models.Asset{}, false, nil
	}
	return s.GetAsset(ctx, id)
}

func (s *MemoryStore) ListAssets(ctx context.Context) ([]models.Asset, error) {
	s.mu.RLock()
	ids := make([]uint64, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	assets := make([]models.Asset, 0, len(ids))
	for _, id := range ids {
		if rec, ok := s.snapshot(id); ok {
			assets = append(assets, rec.Asset)
		}
	}
	return assets, nil
}

func (s *MemoryStore) GetEscrow(ctx context.Context, assetID uint64) (models.Escrow, bool, error) {
	rec, ok := s.snapshot(assetID)
	return rec.Escrow, ok, nil
}

func (s *MemoryStore) GetRevenuePool(ctx context.Context, assetID uint64) (models.RevenuePool, bool, error) {
	rec, ok := s.snapshot(assetID)
	return rec.Pool, ok, nil
}

func (s *MemoryStore) ListTransactions(ctx context.Context, assetID uint64) ([]models.Transaction, error) {
	e, ok := s.entry(assetID)
	if !ok {
		return nil, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.Transaction, len(e.journal))
	copy(out, e.journal)
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }

// snapshot copia os registros sob o mutex do ativo, para que leitores nunca vejam uma atualização parcial.
func (s *MemoryStore) snapshot(assetID uint64) (Records, bool) {
	e, ok := s.entry(assetID)
	if !ok {
		return Records{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rec, true
}
