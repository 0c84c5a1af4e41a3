package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromDollars(t *testing.T) {
	tests := []struct {
		dollars string
		cents   int64
	}{
		{"0", 0},
		{"25", 2500},
		{"25.00", 2500},
		{"19.99", 1999},
		{"12.345", 1235},
		{"12.344", 1234},
		{"0.005", 1},
		{"0.0049", 0},
		{"2.675", 268},
		{"1000000", 100000000},
		{"-0.005", -1},
	}

	for _, tt := range tests {
		t.Run(tt.dollars, func(t *testing.T) {
			d, err := decimal.NewFromString(tt.dollars)
			require.NoError(t, err)
			assert.Equal(t, tt.cents, FromDollars(d))
		})
	}
}

func TestFromDollarsIsStable(t *testing.T) {
	d := decimal.RequireFromString("12.345")

	first := FromDollars(d)
	for i := 0; i < 100; i++ {
		require.Equal(t, first, FromDollars(d))
	}

	// Converting back and forth never drifts once the amount is in cents.
	cents := first
	for i := 0; i < 100; i++ {
		cents = FromDollars(ToDollars(cents))
	}
	assert.Equal(t, first, cents)
}

func TestToDollars(t *testing.T) {
	assert.Equal(t, "25.00", ToDollars(2500).StringFixed(2))
	assert.Equal(t, "12.35", ToDollars(1235).StringFixed(2))
	assert.Equal(t, "0.05", ToDollars(5).StringFixed(2))
}

func TestFormat(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "$0"},
		{49, "$0"},
		{50, "$1"},
		{2500, "$25"},
		{123456, "$1,235"},
		{100000000, "$1,000,000"},
		{-2500, "-$25"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Format(tt.cents), "cents=%d", tt.cents)
	}
}

func TestGoalPercentage(t *testing.T) {
	const goal = 100000000

	assert.Equal(t, 0.0, GoalPercentage(0, goal))
	assert.Equal(t, 0.0, GoalPercentage(-500, goal))
	assert.Equal(t, 25.0, GoalPercentage(goal/4, goal))
	assert.Equal(t, 100.0, GoalPercentage(goal, goal))
	assert.Equal(t, 100.0, GoalPercentage(2*goal, goal))
	assert.Equal(t, 0.0, GoalPercentage(2500, 0))

	for _, total := range []int64{1, 2500, goal - 1, goal + 1, 7 * goal} {
		p := GoalPercentage(total, goal)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 100.0)
	}
}
