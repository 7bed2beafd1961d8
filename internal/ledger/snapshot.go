// internal/ledger/snapshot.go
package ledger

import (
	"dinero/internal/domain"
)

// Snapshot is a point-in-time, read-only copy of all committed records.
// Lookup is indexed by the identity key, which is behaviorally identical to
// a pairwise SameIdentity scan because the key is exact, not fuzzy.
type Snapshot struct {
	records []domain.Transaction
	index   map[string]struct{}
}

// NewSnapshot builds a snapshot from committed records.
func NewSnapshot(records []domain.Transaction) *Snapshot {
	s := &Snapshot{
		records: records,
		index:   make(map[string]struct{}, len(records)),
	}
	for i := range records {
		s.index[records[i].Key()] = struct{}{}
	}
	return s
}

// Contains reports whether a record with the same identity key is already
// committed.
func (s *Snapshot) Contains(t *domain.Transaction) bool {
	_, ok := s.index[t.Key()]
	return ok
}

// Records returns the committed records in load order. Callers must not
// mutate them.
func (s *Snapshot) Records() []domain.Transaction {
	return s.records
}

// Len returns the number of committed records.
func (s *Snapshot) Len() int {
	return len(s.records)
}
