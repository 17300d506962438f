// Package claim holds the read-only records a claim packet is built from and
// the interfaces used to fetch them.
package claim

import (
	"context"
	"strings"
	"time"
)

// UnknownArea is rendered for damage items whose area is missing from the lookup
const UnknownArea = "Unknown"

// Claim is the claim header record
type Claim struct {
	ID        string
	OwnerID   string
	Title     string
	LossDate  time.Time
	LossCause string
	Location  string
	Narrative string
	CreatedAt time.Time
}

// AreaLookup maps area identifiers to display names
type AreaLookup map[string]string

// Name returns the display name for an area, or UnknownArea
func (a AreaLookup) Name(id string) string {
	if name, ok := a[id]; ok && name != "" {
		return name
	}
	return UnknownArea
}

// DamageItem is one row of the damage inventory
type DamageItem struct {
	ID                 string
	ClaimID            string
	AreaID             string
	Category           string
	Description        string
	Quantity           float64
	Unit               string
	ConditionNotes     string
	EstReplacementCost *float64
	CreatedAt          time.Time
}

// Cost returns the estimated replacement cost, zero when absent
func (d DamageItem) Cost() float64 {
	if d.EstReplacementCost == nil {
		return 0
	}
	return *d.EstReplacementCost
}

// Evidence is an uploaded attachment row
type Evidence struct {
	ID           string
	ClaimID      string
	DamageItemID *string
	Path         string
	MIMEType     string
	Caption      string
	CreatedAt    time.Time
}

// IsImage reports whether the evidence belongs to the image MIME family
func (e Evidence) IsImage() bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(e.MIMEType)), "image/")
}

// Snapshot is the immutable set of records one document is built from
type Snapshot struct {
	Claim    Claim
	Areas    AreaLookup
	Items    []DamageItem
	Evidence []Evidence
}

// RecordStore reads claim records. Implementations must return ErrNotFound
// from GetClaim when the claim is absent or owned by someone else, and must
// return items and evidence ordered by creation time ascending.
type RecordStore interface {
	GetClaim(ctx context.Context, id, ownerID string) (*Claim, error)
	ListAreas(ctx context.Context, claimID string) (AreaLookup, error)
	ListDamageItems(ctx context.Context, claimID string) ([]DamageItem, error)
	ListEvidence(ctx context.Context, claimID string) ([]Evidence, error)
}

// ResourceStore fetches the stored bytes behind an evidence path
type ResourceStore interface {
	FetchResource(ctx context.Context, path string) ([]byte, error)
}

// Fetcher is the full data boundary consumed by the generator
type Fetcher interface {
	RecordStore
	ResourceStore
}

// Combine joins a record store and a resource store into a Fetcher
func Combine(records RecordStore, resources ResourceStore) Fetcher {
	return combined{records, resources}
}

type combined struct {
	RecordStore
	ResourceStore
}

// FetchSnapshot reads everything a packet needs in one pass
func FetchSnapshot(ctx context.Context, rs RecordStore, id, ownerID string) (*Snapshot, error) {
	if ownerID == "" {
		return nil, ErrUnauthorized
	}
	c, err := rs.GetClaim(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	areas, err := rs.ListAreas(ctx, c.ID)
	if err != nil {
		return nil, wrap("list areas", err)
	}
	items, err := rs.ListDamageItems(ctx, c.ID)
	if err != nil {
		return nil, wrap("list damage items", err)
	}
	evidence, err := rs.ListEvidence(ctx, c.ID)
	if err != nil {
		return nil, wrap("list evidence", err)
	}
	if areas == nil {
		areas = AreaLookup{}
	}
	return &Snapshot{Claim: *c, Areas: areas, Items: items, Evidence: evidence}, nil
}
