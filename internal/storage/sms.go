package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/sol1corejz/pledgetracker/internal/models"
)

// SMSStorage reads pledges written to the secondary database by the SMS
// ingestion channel. It never creates or edits rows.
type SMSStorage struct {
	db      *sql.DB
	timeout time.Duration
}

func NewSMSStorage(db *sql.DB, timeout time.Duration) *SMSStorage {
	return &SMSStorage{db: db, timeout: timeout}
}

func OpenSMSStorage(url string, timeout time.Duration) (*SMSStorage, error) {
	db, err := open("sms", smsDriver, url, timeout)
	if err != nil {
		return nil, err
	}
	return NewSMSStorage(db, timeout), nil
}

// RecentTextPledges returns at most limit pledges, newest first.
func (s *SMSStorage) RecentTextPledges(ctx context.Context, limit int) ([]models.TextPledge, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, pledge_amount, phone_number, message_text, created_at
		FROM sms_pledges
		ORDER BY created_at DESC, id DESC
		LIMIT $1;
	`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query text pledges")
	}
	defer rows.Close()

	pledges := make([]models.TextPledge, 0, limit)
	for rows.Next() {
		var (
			p       models.TextPledge
			amount  decimal.NullDecimal
			phone   sql.NullString
			message sql.NullString
		)
		if err := rows.Scan(&p.ID, &amount, &phone, &message, &p.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan text pledge")
		}
		p.PledgeAmount = amount.Decimal
		p.PhoneNumber = phone.String
		p.MessageText = message.String
		p.CreatedAt = p.CreatedAt.UTC()
		pledges = append(pledges, p)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read text pledges")
	}

	return pledges, nil
}

// TextTotal converts every pledge to cents before summing so the total equals
// the sum of the amounts shown per pledge.
func (s *SMSStorage) TextTotal(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT pledge_amount FROM sms_pledges WHERE pledge_amount IS NOT NULL;
	`)
	if err != nil {
		return 0, errors.Wrap(err, "failed to query text pledge amounts")
	}
	defer rows.Close()

	var total int64
	for rows.Next() {
		var amount decimal.Decimal
		if err := rows.Scan(&amount); err != nil {
			return 0, errors.Wrap(err, "failed to scan text pledge amount")
		}
		total += models.TextPledge{PledgeAmount: amount}.AmountCents()
	}

	if err := rows.Err(); err != nil {
		return 0, errors.Wrap(err, "failed to read text pledge amounts")
	}

	return total, nil
}

func (s *SMSStorage) CountTextPledges(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sms_pledges;`).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count text pledges")
	}

	return count, nil
}

// DeleteTextPledges removes every SMS pledge and reports how many were removed.
func (s *SMSStorage) DeleteTextPledges(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `DELETE FROM sms_pledges;`)
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete text pledges")
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to read deleted text pledge count")
	}

	return deleted, nil
}

func (s *SMSStorage) Ping(ctx context.Context) error {
	return ping(ctx, s.db, s.timeout)
}

func (s *SMSStorage) Close() error {
	return s.db.Close()
}
