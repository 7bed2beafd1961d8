// internal/reconcile/reconciler.go

// Package reconcile partitions candidate transactions against a ledger
// snapshot into the records to insert, the records already committed, and
// the records a scoped backend cannot accept.
package reconcile

import (
	"fmt"
	"log/slog"

	"dinero/internal/domain"
	"dinero/internal/ledger"
	"dinero/internal/rules"
	"dinero/internal/util"
)

// Partition is the result of one reconciliation pass. The three buckets are
// disjoint and together cover the candidate list exactly; each bucket keeps
// the candidates' input order.
type Partition struct {
	New      []*domain.Transaction
	Existing []*domain.Transaction
	Errored  []*domain.Transaction
}

// Len returns the total number of partitioned records.
func (p Partition) Len() int {
	return len(p.New) + len(p.Existing) + len(p.Errored)
}

// Run reconciles candidates against the snapshot. A candidate whose identity
// key is already in the snapshot goes to Existing. Otherwise, if the store
// is scoped to a year and the candidate's date falls outside it, the record
// goes to Errored; else it goes to New and, when its category is still
// empty, the categorizer fills category and subcategory in place.
//
// Candidates are mutated (categorization), so a candidate slice must not be
// shared across concurrent calls. Run is otherwise deterministic and
// side-effect-free. The returned error is the programming-error class only:
// a partition that fails to cover the input exactly.
func Run(candidates []*domain.Transaction, snapshot *ledger.Snapshot, store ledger.Store, categorizer rules.Categorizer, logger *slog.Logger) (Partition, error) {
	var partition Partition
	scopeYear, scoped := 0, false
	if store != nil {
		scopeYear, scoped = store.Scope()
	}

	for _, candidate := range candidates {
		if snapshot.Contains(candidate) {
			partition.Existing = append(partition.Existing, candidate)
			continue
		}
		if scoped && candidate.Date.Year() != scopeYear {
			logger.Warn("Transaction date not valid for year",
				"year", scopeYear, "record", candidate.String())
			partition.Errored = append(partition.Errored, candidate)
			continue
		}
		if candidate.Category == "" && categorizer != nil {
			candidate.Category, candidate.Subcategory = categorizer.Categorize(candidate.Description)
		}
		partition.New = append(partition.New, candidate)
	}

	if partition.Len() != len(candidates) {
		// Cannot happen with correct adapter output; indicates a bug, not
		// bad user input.
		return Partition{}, fmt.Errorf("%w: %d candidates, %d partitioned",
			util.ErrPartitionInvariant, len(candidates), partition.Len())
	}
	return partition, nil
}
