package models

import "time"

// Block is a single owned content record. OwnerID is set at creation and
// never changes.
type Block struct {
	ID        string
	OwnerID   string
	Label     string
	Content   string
	GroupKey  int64
	SeqNum    int64
	CreatedAt time.Time
}

// ConsistencyReport describes how far a user's owned-block set has drifted
// from the blocks table.
type ConsistencyReport struct {
	// Dangling ids are in the owned set but have no block row.
	Dangling []string
	// Orphaned ids are block rows owned by the user but missing from the set.
	Orphaned []string
	Repaired bool
}

// Consistent reports whether both sides agree.
func (r *ConsistencyReport) Consistent() bool {
	return len(r.Dangling) == 0 && len(r.Orphaned) == 0
}
