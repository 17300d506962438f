// Package memstore is an in-process claim.Fetcher, for examples, tests and
// the render command's fixtures.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/gompdf/claimpacket/pkg/claim"
)

// Store keeps records and resource bytes in maps. It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	claims    map[string]claim.Claim
	areas     map[string]claim.AreaLookup
	items     map[string][]claim.DamageItem
	evidence  map[string][]claim.Evidence
	resources map[string][]byte
}

// Ensure Store implements claim.Fetcher
var _ claim.Fetcher = (*Store)(nil)

// New creates an empty store
func New() *Store {
	return &Store{
		claims:    make(map[string]claim.Claim),
		areas:     make(map[string]claim.AreaLookup),
		items:     make(map[string][]claim.DamageItem),
		evidence:  make(map[string][]claim.Evidence),
		resources: make(map[string][]byte),
	}
}

func (s *Store) AddClaim(c claim.Claim) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.claims[c.ID] = c
}

func (s *Store) AddArea(claimID, areaID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.areas[claimID] == nil {
		s.areas[claimID] = claim.AreaLookup{}
	}
	s.areas[claimID][areaID] = name
}

func (s *Store) AddDamageItem(item claim.DamageItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ClaimID] = append(s.items[item.ClaimID], item)
}

func (s *Store) AddEvidence(ev claim.Evidence) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evidence[ev.ClaimID] = append(s.evidence[ev.ClaimID], ev)
}

// PutResource stores the bytes behind an evidence path
func (s *Store) PutResource(path string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources[path] = data
}

func (s *Store) GetClaim(ctx context.Context, id, ownerID string) (*claim.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.claims[id]
	if !ok || c.OwnerID != ownerID {
		return nil, claim.ErrNotFound
	}
	return &c, nil
}

func (s *Store) ListAreas(ctx context.Context, claimID string) (claim.AreaLookup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(claim.AreaLookup, len(s.areas[claimID]))
	for id, name := range s.areas[claimID] {
		out[id] = name
	}
	return out, nil
}

// ListDamageItems returns items ordered by creation time, insertion order
// breaking ties
func (s *Store) ListDamageItems(ctx context.Context, claimID string) ([]claim.DamageItem, error) {
	s.mu.RLock()
	items := append([]claim.DamageItem(nil), s.items[claimID]...)
	s.mu.RUnlock()
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

// ListEvidence returns evidence ordered by creation time, insertion order
// breaking ties
func (s *Store) ListEvidence(ctx context.Context, claimID string) ([]claim.Evidence, error) {
	s.mu.RLock()
	evidence := append([]claim.Evidence(nil), s.evidence[claimID]...)
	s.mu.RUnlock()
	sort.SliceStable(evidence, func(i, j int) bool {
		return evidence[i].CreatedAt.Before(evidence[j].CreatedAt)
	})
	return evidence, nil
}

func (s *Store) FetchResource(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.resources[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s: no such object", claim.ErrResourceFetch, path)
	}
	return data, nil
}
