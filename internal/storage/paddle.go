package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/sol1corejz/pledgetracker/internal/apperr"
	"github.com/sol1corejz/pledgetracker/internal/models"
)

// PaddleStorage reads and updates tier pledges in the primary database.
type PaddleStorage struct {
	db      *sql.DB
	timeout time.Duration
}

func NewPaddleStorage(db *sql.DB, timeout time.Duration) *PaddleStorage {
	return &PaddleStorage{db: db, timeout: timeout}
}

func OpenPaddleStorage(dsn string, timeout time.Duration) (*PaddleStorage, error) {
	db, err := open("primary", primaryDriver, dsn, timeout)
	if err != nil {
		return nil, err
	}
	return NewPaddleStorage(db, timeout), nil
}

// EnsureSchema creates the paddle_pledges table and one row per tier.
// total_cents is computed by the database so it always equals tier_cents * count.
func (s *PaddleStorage) EnsureSchema(ctx context.Context, tiers []int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS paddle_pledges (
			tier_cents BIGINT PRIMARY KEY CHECK (tier_cents > 0),
			count BIGINT NOT NULL DEFAULT 0 CHECK (count >= 0),
			total_cents BIGINT GENERATED ALWAYS AS (tier_cents * count) STORED,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`); err != nil {
		return errors.Wrap(err, "failed to create paddle_pledges table")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin tier seeding")
	}

	for _, tier := range tiers {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO paddle_pledges (tier_cents) VALUES ($1) ON CONFLICT (tier_cents) DO NOTHING;
		`, tier); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "failed to seed tier %d", tier)
		}
	}

	return errors.Wrap(tx.Commit(), "failed to commit tier seeding")
}

func (s *PaddleStorage) ListPaddlePledges(ctx context.Context) ([]models.PaddlePledge, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT tier_cents, count, total_cents, updated_at FROM paddle_pledges ORDER BY tier_cents DESC;
	`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query paddle pledges")
	}
	defer rows.Close()

	pledges := make([]models.PaddlePledge, 0)
	for rows.Next() {
		var p models.PaddlePledge
		if err := rows.Scan(&p.TierCents, &p.Count, &p.TotalCents, &p.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan paddle pledge")
		}
		pledges = append(pledges, p)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read paddle pledges")
	}

	return pledges, nil
}

// UpdatePaddleCount sets the count of one tier and returns the stored row.
func (s *PaddleStorage) UpdatePaddleCount(ctx context.Context, tierCents, count int64) (models.PaddlePledge, error) {
	if count < 0 {
		return models.PaddlePledge{}, apperr.Validation("Count must be a non-negative number")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var p models.PaddlePledge
	err := s.db.QueryRowContext(ctx, `
		UPDATE paddle_pledges SET count = $1, updated_at = NOW()
		WHERE tier_cents = $2
		RETURNING tier_cents, count, total_cents, updated_at;
	`, count, tierCents).Scan(&p.TierCents, &p.Count, &p.TotalCents, &p.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.PaddlePledge{}, apperr.NotFound("Paddle pledge tier not found", err)
		}
		return models.PaddlePledge{}, errors.Wrapf(err, "failed to update paddle tier %d", tierCents)
	}

	return p, nil
}

func (s *PaddleStorage) PaddleTotal(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var total int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_cents), 0)::BIGINT FROM paddle_pledges;
	`).Scan(&total)
	if err != nil {
		return 0, errors.Wrap(err, "failed to sum paddle pledges")
	}

	return total, nil
}

// ResetPaddlePledges zeroes every tier count. Tier rows are kept.
func (s *PaddleStorage) ResetPaddlePledges(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `
		UPDATE paddle_pledges SET count = 0, updated_at = NOW();
	`); err != nil {
		return errors.Wrap(err, "failed to reset paddle pledges")
	}

	return nil
}

func (s *PaddleStorage) Ping(ctx context.Context) error {
	return ping(ctx, s.db, s.timeout)
}

func (s *PaddleStorage) Close() error {
	return s.db.Close()
}
