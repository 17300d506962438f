// Package sqlstore reads claim records through database/sql. Queries use
// "?" placeholders and portable SQL so the same store serves the embedded
// SQLite driver and MySQL.
//
// Usage:
//
//	import _ "modernc.org/sqlite"
//	st, err := sqlstore.Open(ctx, "sqlite", "claims.db")
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gompdf/claimpacket/internal/store"
	"github.com/gompdf/claimpacket/pkg/claim"
)

// Store implements claim.RecordStore over a *sql.DB
type Store struct {
	db *sql.DB
}

// Ensure Store implements claim.RecordStore
var _ claim.RecordStore = (*Store)(nil)

// New wraps an open database
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens driver/dsn, applies SQLite pragmas when relevant and pings
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open: %w", err)
	}
	if driver == "sqlite" {
		for _, pragma := range []string{
			"PRAGMA foreign_keys = ON",
			"PRAGMA journal_mode = WAL",
			"PRAGMA busy_timeout = 10000",
		} {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				db.Close()
				return nil, fmt.Errorf("sqlstore: %s: %w", pragma, err)
			}
		}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlstore: ping: %w", err)
	}
	return New(db), nil
}

// DB exposes the underlying handle
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the database
func (s *Store) Close() error { return s.db.Close() }

// Migrate applies the SQLite schema
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("sqlstore: migrate: %w", err)
	}
	return nil
}

// GetClaim returns the claim only when it belongs to ownerID
func (s *Store) GetClaim(ctx context.Context, id, ownerID string) (*claim.Claim, error) {
	var c claim.Claim
	var lossDate, createdAt sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, coalesce(title, ''), loss_date, coalesce(loss_cause, ''),
		        coalesce(location, ''), coalesce(narrative, ''), created_at
		 FROM claims WHERE id = ? AND user_id = ?`, id, ownerID,
	).Scan(&c.ID, &c.OwnerID, &c.Title, &lossDate, &c.LossCause, &c.Location, &c.Narrative, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, claim.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: get claim: %w", err)
	}
	if c.LossDate, err = store.ParseTime(lossDate.String); err != nil {
		return nil, fmt.Errorf("sqlstore: claim %s loss_date: %w", id, err)
	}
	if c.CreatedAt, err = store.ParseTime(createdAt.String); err != nil {
		return nil, fmt.Errorf("sqlstore: claim %s created_at: %w", id, err)
	}
	return &c, nil
}

// ListAreas returns the area id to name mapping of a claim
func (s *Store) ListAreas(ctx context.Context, claimID string) (claim.AreaLookup, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, coalesce(name, '') FROM areas WHERE claim_id = ?`, claimID)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: list areas: %w", err)
	}
	defer rows.Close()

	areas := claim.AreaLookup{}
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("sqlstore: scan area: %w", err)
		}
		areas[id] = name
	}
	return areas, rows.Err()
}

// ListDamageItems returns damage items ordered by creation time
func (s *Store) ListDamageItems(ctx context.Context, claimID string) ([]claim.DamageItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, claim_id, coalesce(area_id, ''), coalesce(category, ''), coalesce(description, ''),
		        qty, coalesce(unit, ''), condition_notes,
		        est_replacement_cost, created_at
		 FROM damage_items WHERE claim_id = ? ORDER BY created_at, id`, claimID)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: list damage items: %w", err)
	}
	defer rows.Close()

	var items []claim.DamageItem
	for rows.Next() {
		var it claim.DamageItem
		var cost sql.NullFloat64
		var notes, createdAt sql.NullString
		if err := rows.Scan(&it.ID, &it.ClaimID, &it.AreaID, &it.Category, &it.Description,
			&it.Quantity, &it.Unit, &notes, &cost, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlstore: scan damage item: %w", err)
		}
		it.ConditionNotes = notes.String
		if cost.Valid {
			v := cost.Float64
			it.EstReplacementCost = &v
		}
		if it.CreatedAt, err = store.ParseTime(createdAt.String); err != nil {
			return nil, fmt.Errorf("sqlstore: damage item %s: %w", it.ID, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListEvidence returns evidence rows ordered by creation time
func (s *Store) ListEvidence(ctx context.Context, claimID string) ([]claim.Evidence, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, claim_id, damage_item_id, file_path, file_type, caption, created_at
		 FROM evidence WHERE claim_id = ? ORDER BY created_at, id`, claimID)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: list evidence: %w", err)
	}
	defer rows.Close()

	var out []claim.Evidence
	for rows.Next() {
		var ev claim.Evidence
		var itemID, caption, createdAt sql.NullString
		if err := rows.Scan(&ev.ID, &ev.ClaimID, &itemID, &ev.Path, &ev.MIMEType, &caption, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlstore: scan evidence: %w", err)
		}
		if itemID.Valid {
			v := itemID.String
			ev.DamageItemID = &v
		}
		ev.Caption = caption.String
		if ev.CreatedAt, err = store.ParseTime(createdAt.String); err != nil {
			return nil, fmt.Errorf("sqlstore: evidence %s: %w", ev.ID, err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
