package record

import "time"

// Record carries the persistence identity shared by every entity: id,
// creation/update timestamps and an optimistic-lock version. Entities embed
// it by composition and reference each other by id only.
type Record struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
}

// New returns a fresh Record at version 1.
func New(id string, now time.Time) Record {
	now = now.UTC()
	return Record{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
}

// Touch bumps UpdatedAt and Version. Storage adapters compare the previous
// version in their WHERE clause so concurrent writers fail instead of
// overwriting each other.
func (r *Record) Touch(now time.Time) {
	r.UpdatedAt = now.UTC()
	r.Version++
}

// PreviousVersion is the version a compare-and-swap update must match.
func (r Record) PreviousVersion() int64 {
	if r.Version <= 1 {
		return 1
	}
	return r.Version - 1
}
