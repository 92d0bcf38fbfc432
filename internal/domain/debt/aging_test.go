package debt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func daysAgo(now time.Time, days int) *time.Time {
	d := now.Add(-time.Duration(days) * 24 * time.Hour)
	return &d
}

func daysAhead(now time.Time, days int) *time.Time {
	d := now.Add(time.Duration(days) * 24 * time.Hour)
	return &d
}

func TestOutstandingRecord_Overdue(t *testing.T) {
	now := time.Now()

	rec := OutstandingRecord{DueDate: daysAgo(now, 10), RemainingAmount: decimal.NewFromInt(200000)}
	assert.True(t, rec.IsOverdue(now))
	assert.Equal(t, 10, rec.DaysOverdue(now))

	rec = OutstandingRecord{DueDate: daysAhead(now, 5)}
	assert.False(t, rec.IsOverdue(now))
	assert.Equal(t, 0, rec.DaysOverdue(now))

	rec = OutstandingRecord{DueDate: nil}
	assert.False(t, rec.IsOverdue(now))
	assert.Equal(t, 0, rec.DaysOverdue(now))
}

func TestRollup_PartitionsCurrentAndOverdue(t *testing.T) {
	now := time.Now()
	customer := uuid.New()

	records := []OutstandingRecord{
		{
			CounterpartyID:   customer,
			CounterpartyName: "Xuong In Gia Dinh",
			DocumentNumber:   "INV-202608-0001",
			RemainingAmount:  decimal.NewFromInt(200000),
			DueDate:          daysAgo(now, 10),
		},
		{
			CounterpartyID:   customer,
			CounterpartyName: "Xuong In Gia Dinh",
			DocumentNumber:   "INV-202608-0002",
			RemainingAmount:  decimal.NewFromInt(300000),
			DueDate:          daysAhead(now, 5),
		},
	}

	positions := Rollup(records, now)
	require.Len(t, positions, 1)

	pos := positions[0]
	assert.True(t, pos.OverdueDebt.Equal(decimal.NewFromInt(200000)))
	assert.True(t, pos.CurrentDebt.Equal(decimal.NewFromInt(300000)))
	assert.True(t, pos.TotalDebt.Equal(decimal.NewFromInt(500000)))
	assert.Equal(t, 2, pos.DocumentCount)
	assert.Equal(t, 10, pos.MaxDaysOverdue)
}

func TestRollup_TotalEqualsCurrentPlusOverdue(t *testing.T) {
	now := time.Now()
	records := []OutstandingRecord{
		{CounterpartyID: uuid.New(), RemainingAmount: decimal.NewFromInt(120000), DueDate: daysAgo(now, 1)},
		{CounterpartyID: uuid.New(), RemainingAmount: decimal.NewFromInt(340000), DueDate: daysAhead(now, 1)},
		{CounterpartyID: uuid.New(), RemainingAmount: decimal.NewFromInt(560000), DueDate: nil},
	}

	for _, pos := range Rollup(records, now) {
		assert.True(t, pos.TotalDebt.Equal(pos.CurrentDebt.Add(pos.OverdueDebt)),
			"every record must land in exactly one bucket")
	}
}

func TestRollup_NoDueDateIsCurrent(t *testing.T) {
	now := time.Now()
	records := []OutstandingRecord{
		{CounterpartyID: uuid.New(), RemainingAmount: decimal.NewFromInt(100000)},
	}

	positions := Rollup(records, now)
	require.Len(t, positions, 1)
	assert.True(t, positions[0].CurrentDebt.Equal(decimal.NewFromInt(100000)))
	assert.True(t, positions[0].OverdueDebt.IsZero())
}

func TestRollup_GroupsByCounterpartyInFirstAppearanceOrder(t *testing.T) {
	now := time.Now()
	first, second := uuid.New(), uuid.New()

	records := []OutstandingRecord{
		{CounterpartyID: first, CounterpartyName: "A", RemainingAmount: decimal.NewFromInt(1)},
		{CounterpartyID: second, CounterpartyName: "B", RemainingAmount: decimal.NewFromInt(2)},
		{CounterpartyID: first, CounterpartyName: "A", RemainingAmount: decimal.NewFromInt(3)},
	}

	positions := Rollup(records, now)
	require.Len(t, positions, 2)
	assert.Equal(t, first, positions[0].CounterpartyID)
	assert.True(t, positions[0].TotalDebt.Equal(decimal.NewFromInt(4)))
	assert.Equal(t, second, positions[1].CounterpartyID)
}

func TestRollup_TracksLatestPayment(t *testing.T) {
	now := time.Now()
	customer := uuid.New()
	older := now.Add(-48 * time.Hour)
	newer := now.Add(-24 * time.Hour)

	records := []OutstandingRecord{
		{CounterpartyID: customer, RemainingAmount: decimal.NewFromInt(1), LastPaymentDate: &older, LastPaymentAmt: decimal.NewFromInt(100)},
		{CounterpartyID: customer, RemainingAmount: decimal.NewFromInt(1), LastPaymentDate: &newer, LastPaymentAmt: decimal.NewFromInt(200)},
	}

	positions := Rollup(records, now)
	require.Len(t, positions, 1)
	require.NotNil(t, positions[0].LastPaymentDate)
	assert.True(t, positions[0].LastPaymentDate.Equal(newer))
	assert.True(t, positions[0].LastPaymentAmt.Equal(decimal.NewFromInt(200)))
}

func TestRollup_EmptyWindow(t *testing.T) {
	positions := Rollup(nil, time.Now())
	assert.Empty(t, positions)
}
