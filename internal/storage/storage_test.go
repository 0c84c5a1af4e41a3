package storage

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sol1corejz/pledgetracker/internal/apperr"
)

const testTimeout = 5 * time.Second

var testTiers = []int64{10000, 5000, 2500}

// Both stores run against the same database in tests; production uses two.
func testDatabaseURI(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping storage test in short mode")
	}

	uri := os.Getenv("PLEDGE_TEST_DATABASE_URI")
	if uri == "" {
		t.Skip("PLEDGE_TEST_DATABASE_URI is not set")
	}
	return uri
}

func newPaddleStorage(t *testing.T) *PaddleStorage {
	t.Helper()

	s, err := OpenPaddleStorage(testDatabaseURI(t), testTimeout)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	_, err = s.db.ExecContext(ctx, `DROP TABLE IF EXISTS paddle_pledges;`)
	require.NoError(t, err)
	require.NoError(t, s.EnsureSchema(ctx, testTiers))

	return s
}

func newSMSStorage(t *testing.T) *SMSStorage {
	t.Helper()

	s, err := OpenSMSStorage(testDatabaseURI(t), testTimeout)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	for _, stmt := range []string{
		`DROP TABLE IF EXISTS sms_pledges;`,
		`CREATE TABLE sms_pledges (
			id BIGSERIAL PRIMARY KEY,
			pledge_amount NUMERIC(12, 3),
			phone_number TEXT,
			message_text TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
	} {
		_, err := s.db.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}

	return s
}

func insertTextPledge(t *testing.T, db *sql.DB, amount string, createdAt time.Time) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO sms_pledges (pledge_amount, phone_number, message_text, created_at) VALUES ($1, $2, $3, $4);
	`, amount, "+15555550100", "PLEDGE "+amount, createdAt)
	require.NoError(t, err)
}

func TestOpenRejectsEmptyDSN(t *testing.T) {
	_, err := OpenSMSStorage("", testTimeout)
	require.ErrorIs(t, err, ErrConnectionFailed)
}

func TestPaddleStorage(t *testing.T) {
	s := newPaddleStorage(t)
	ctx := context.Background()

	t.Run("ListOrderedByTierDesc", func(t *testing.T) {
		pledges, err := s.ListPaddlePledges(ctx)
		require.NoError(t, err)
		require.Len(t, pledges, 3)
		assert.Equal(t, int64(10000), pledges[0].TierCents)
		assert.Equal(t, int64(2500), pledges[2].TierCents)
		for _, p := range pledges {
			assert.Zero(t, p.Count)
			assert.Zero(t, p.TotalCents)
		}
	})

	t.Run("SeedingIsIdempotent", func(t *testing.T) {
		require.NoError(t, s.EnsureSchema(ctx, testTiers))
		pledges, err := s.ListPaddlePledges(ctx)
		require.NoError(t, err)
		assert.Len(t, pledges, 3)
	})

	t.Run("UpdateKeepsTotalConsistent", func(t *testing.T) {
		for _, count := range []int64{0, 1, 3, 10, 250} {
			p, err := s.UpdatePaddleCount(ctx, 2500, count)
			require.NoError(t, err)
			assert.Equal(t, count, p.Count)
			assert.Equal(t, 2500*count, p.TotalCents)
		}

		p, err := s.UpdatePaddleCount(ctx, 2500, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(25000), p.TotalCents)

		total, err := s.PaddleTotal(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(25000), total)
	})

	t.Run("UpdateUnknownTier", func(t *testing.T) {
		_, err := s.UpdatePaddleCount(ctx, 123, 1)
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.CodeNotFound))
	})

	t.Run("UpdateNegativeCount", func(t *testing.T) {
		_, err := s.UpdatePaddleCount(ctx, 2500, -1)
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.CodeValidation))

		total, err := s.PaddleTotal(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(25000), total)
	})

	t.Run("Reset", func(t *testing.T) {
		require.NoError(t, s.ResetPaddlePledges(ctx))

		total, err := s.PaddleTotal(ctx)
		require.NoError(t, err)
		assert.Zero(t, total)

		pledges, err := s.ListPaddlePledges(ctx)
		require.NoError(t, err)
		assert.Len(t, pledges, 3)
	})

	require.NoError(t, s.Ping(ctx))
}

func TestSMSStorage(t *testing.T) {
	s := newSMSStorage(t)
	ctx := context.Background()

	total, err := s.TextTotal(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)

	count, err := s.CountTextPledges(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	base := time.Date(2025, 5, 1, 20, 0, 0, 0, time.UTC)
	insertTextPledge(t, s.db, "25", base)
	insertTextPledge(t, s.db, "12.345", base.Add(time.Minute))
	insertTextPledge(t, s.db, "100.50", base.Add(2*time.Minute))

	total, err = s.TextTotal(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2500+1235+10050), total)

	count, err = s.CountTextPledges(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	recent, err := s.RecentTextPledges(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.True(t, recent[0].PledgeAmount.Equal(decimal.RequireFromString("100.50")))
	assert.Equal(t, int64(10050), recent[0].AmountCents())
	assert.Equal(t, int64(1235), recent[1].AmountCents())
	assert.Equal(t, time.UTC, recent[0].CreatedAt.Location())

	deleted, err := s.DeleteTextPledges(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	count, err = s.CountTextPledges(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
