// Package pgstore reads claim records from PostgreSQL through a pgx pool.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gompdf/claimpacket/pkg/claim"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Conf holds pool settings
type Conf struct {
	DSN             string        `mapstructure:"dsn" yaml:"dsn"`
	MaxConns        int32         `mapstructure:"max_conns" yaml:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns" yaml:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime" yaml:"max_conn_lifetime"`
}

// Store implements claim.RecordStore over PostgreSQL
type Store struct {
	Pool *pgxpool.Pool
}

// Ensure Store implements claim.RecordStore
var _ claim.RecordStore = (*Store)(nil)

// Open creates the pool and pings the server
func Open(ctx context.Context, conf Conf, logger *slog.Logger) (*Store, error) {
	config, err := pgxpool.ParseConfig(conf.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx config: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 3 * time.Minute
	if conf.MaxConns > 0 {
		config.MaxConns = conf.MaxConns
	}
	if conf.MinConns > 0 {
		config.MinConns = conf.MinConns
	}
	if conf.MaxConnLifetime > 0 {
		config.MaxConnLifetime = conf.MaxConnLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	if logger != nil {
		logger.Info("pgsql store initialized", "max_conns", config.MaxConns)
	}
	return &Store{Pool: pool}, nil
}

// Close closes the pool
func (s *Store) Close() {
	s.Pool.Close()
}

// GetClaim returns the claim only when it belongs to ownerID
func (s *Store) GetClaim(ctx context.Context, id, ownerID string) (*claim.Claim, error) {
	var c claim.Claim
	err := s.Pool.QueryRow(ctx,
		`SELECT id::text, user_id::text, coalesce(title, ''), loss_date,
		        coalesce(loss_cause, ''), coalesce(location, ''), coalesce(narrative, ''), created_at
		 FROM claims WHERE id::text = $1 AND user_id::text = $2`, id, ownerID,
	).Scan(&c.ID, &c.OwnerID, &c.Title, &c.LossDate, &c.LossCause, &c.Location, &c.Narrative, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, claim.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pgstore: get claim: %w", err)
	}
	return &c, nil
}

// ListAreas returns the area id to name mapping of a claim
func (s *Store) ListAreas(ctx context.Context, claimID string) (claim.AreaLookup, error) {
	rows, err := s.Pool.Query(ctx, `SELECT id::text, coalesce(name, '') FROM areas WHERE claim_id::text = $1`, claimID)
	if err != nil {
		return nil, fmt.Errorf("pgstore: list areas: %w", err)
	}
	defer rows.Close()

	areas := claim.AreaLookup{}
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("pgstore: scan area: %w", err)
		}
		areas[id] = name
	}
	return areas, rows.Err()
}

// ListDamageItems returns damage items ordered by creation time
func (s *Store) ListDamageItems(ctx context.Context, claimID string) ([]claim.DamageItem, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT id::text, claim_id::text, coalesce(area_id::text, ''), coalesce(category, ''),
		        coalesce(description, ''), qty::float8, coalesce(unit, ''), coalesce(condition_notes, ''), est_replacement_cost::float8, created_at
		 FROM damage_items WHERE claim_id::text = $1 ORDER BY created_at, id`, claimID)
	if err != nil {
		return nil, fmt.Errorf("pgstore: list damage items: %w", err)
	}
	defer rows.Close()

	var items []claim.DamageItem
	for rows.Next() {
		var it claim.DamageItem
		if err := rows.Scan(&it.ID, &it.ClaimID, &it.AreaID, &it.Category, &it.Description,
			&it.Quantity, &it.Unit, &it.ConditionNotes, &it.EstReplacementCost, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgstore: scan damage item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListEvidence returns evidence rows ordered by creation time
func (s *Store) ListEvidence(ctx context.Context, claimID string) ([]claim.Evidence, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT id::text, claim_id::text, damage_item_id::text, file_path, file_type,
		        coalesce(caption, ''), created_at
		 FROM evidence WHERE claim_id::text = $1 ORDER BY created_at, id`, claimID)
	if err != nil {
		return nil, fmt.Errorf("pgstore: list evidence: %w", err)
	}
	defer rows.Close()

	var out []claim.Evidence
	for rows.Next() {
		var ev claim.Evidence
		if err := rows.Scan(&ev.ID, &ev.ClaimID, &ev.DamageItemID, &ev.Path, &ev.MIMEType, &ev.Caption, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgstore: scan evidence: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
