package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sol1corejz/pledgetracker/internal/money"
)

const EventTotalsUpdated = "totals_updated"

// PaddlePledge is the count of pledges made at one fixed tier.
type PaddlePledge struct {
	TierCents  int64     `db:"tier_cents"`
	Count      int64     `db:"count"`
	TotalCents int64     `db:"total_cents"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// TextPledge is a single pledge received over SMS. PledgeAmount is in dollars.
type TextPledge struct {
	ID           int64           `db:"id"`
	PledgeAmount decimal.Decimal `db:"pledge_amount"`
	PhoneNumber  string          `db:"phone_number"`
	MessageText  string          `db:"message_text"`
	CreatedAt    time.Time       `db:"created_at"`
}

func (p TextPledge) AmountCents() int64 {
	return money.FromDollars(p.PledgeAmount)
}

type Totals struct {
	GrandTotal     int64
	PaddleTotal    int64
	TextTotal      int64
	GoalCents      int64
	GoalPercentage float64
}

// TotalsView is the payload of GET /api/totals and of totals_updated events.
type TotalsView struct {
	GrandTotal           int64   `json:"grandTotal"`
	PaddleTotal          int64   `json:"paddleTotal"`
	TextTotal            int64   `json:"textTotal"`
	GrandTotalFormatted  string  `json:"grandTotalFormatted"`
	PaddleTotalFormatted string  `json:"paddleTotalFormatted"`
	TextTotalFormatted   string  `json:"textTotalFormatted"`
	GoalPercentage       float64 `json:"goalPercentage"`
	GoalAmount           int64   `json:"goalAmount"`
	GoalFormatted        string  `json:"goalFormatted"`
}

func (t Totals) View() TotalsView {
	return TotalsView{
		GrandTotal:           t.GrandTotal,
		PaddleTotal:          t.PaddleTotal,
		TextTotal:            t.TextTotal,
		GrandTotalFormatted:  money.Format(t.GrandTotal),
		PaddleTotalFormatted: money.Format(t.PaddleTotal),
		TextTotalFormatted:   money.Format(t.TextTotal),
		GoalPercentage:       t.GoalPercentage,
		GoalAmount:           t.GoalCents,
		GoalFormatted:        money.Format(t.GoalCents),
	}
}
