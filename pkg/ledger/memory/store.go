package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/code-payments/code-multisig/pkg/ledger"
)

type store struct {
	mu      sync.Mutex
	records map[string]*ledger.Record
	last    uint64
}

func New() ledger.Store {
	return &store{
		records: make(map[string]*ledger.Record),
	}
}

func (s *store) reset() {
	s.mu.Lock()
	s.records = make(map[string]*ledger.Record)
	s.last = 0
	s.mu.Unlock()
}

func (s *store) Get(_ context.Context, address string) (*ledger.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.records[address]
	if !ok {
		return nil, ledger.ErrAccountNotFound
	}

	cloned := item.Clone()
	return &cloned, nil
}

func (s *store) GetBatch(_ context.Context, addresses ...string) ([]*ledger.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := make([]*ledger.Record, 0, len(addresses))
	for _, address := range addresses {
		if item, ok := s.records[address]; ok {
			cloned := item.Clone()
			res = append(res, &cloned)
		}
	}
	return res, nil
}

func (s *store) GetAllByOwner(_ context.Context, owner string) ([]*ledger.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res []*ledger.Record
	for _, item := range s.records {
		if item.Owner == owner {
			cloned := item.Clone()
			res = append(res, &cloned)
		}
	}

	if len(res) == 0 {
		return nil, ledger.ErrAccountNotFound
	}

	sort.Slice(res, func(i, j int) bool { return res[i].Id < res[j].Id })
	return res, nil
}

func (s *store) Commit(_ context.Context, records ...*ledger.Record) error {
	for _, record := range records {
		if err := record.Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(records))
	for _, record := range records {
		if _, ok := seen[record.Address]; ok {
			return ledger.ErrStaleVersion
		}
		seen[record.Address] = struct{}{}

		var current uint64
		if item, ok := s.records[record.Address]; ok {
			current = item.Version
		}
		if current != record.Version {
			return ledger.ErrStaleVersion
		}
	}

	now := time.Now()
	for _, record := range records {
		if item, ok := s.records[record.Address]; ok {
			record.Id = item.Id
		} else {
			s.last++
			record.Id = s.last
		}
		record.Version++
		record.LastUpdatedAt = now

		cloned := record.Clone()
		s.records[record.Address] = &cloned
	}

	return nil
}
