package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	m, err := NewMoney(decimal.NewFromInt(100000), VND)
	require.NoError(t, err)
	assert.True(t, m.Amount().Equal(decimal.NewFromInt(100000)))
	assert.Equal(t, VND, m.Currency())

	_, err = NewMoney(decimal.NewFromInt(1), "")
	assert.Error(t, err)
}

func TestMoney_Arithmetic(t *testing.T) {
	a := NewMoneyVNDFromInt(500000)
	b := NewMoneyVNDFromInt(300000)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Equals(NewMoneyVNDFromInt(800000)))

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.True(t, diff.Equals(NewMoneyVNDFromInt(200000)))

	product := a.MultiplyByInt(3)
	assert.True(t, product.Equals(NewMoneyVNDFromInt(1500000)))

	neg := a.Negate()
	assert.True(t, neg.IsNegative())
	assert.True(t, neg.Abs().Equals(a))
}

func TestMoney_CurrencyMismatch(t *testing.T) {
	vnd := NewMoneyVNDFromInt(100)
	usd, err := NewMoney(decimal.NewFromInt(100), USD)
	require.NoError(t, err)

	_, err = vnd.Add(usd)
	assert.Error(t, err)
	_, err = vnd.Subtract(usd)
	assert.Error(t, err)
	_, err = vnd.LessThanOrEqual(usd)
	assert.Error(t, err)
	_, err = vnd.GreaterThan(usd)
	assert.Error(t, err)

	assert.Panics(t, func() { vnd.MustAdd(usd) })
	assert.Panics(t, func() { vnd.MustSubtract(usd) })
}

func TestMoney_Comparisons(t *testing.T) {
	small := NewMoneyVNDFromInt(100)
	large := NewMoneyVNDFromInt(200)

	le, err := small.LessThanOrEqual(large)
	require.NoError(t, err)
	assert.True(t, le)

	le, err = small.LessThanOrEqual(small)
	require.NoError(t, err)
	assert.True(t, le)

	gt, err := large.GreaterThan(small)
	require.NoError(t, err)
	assert.True(t, gt)

	assert.True(t, small.IsPositive())
	assert.True(t, ZeroVND().IsZero())
	assert.True(t, small.Negate().IsNegative())
}

func TestMoney_ClampNonNegative(t *testing.T) {
	assert.True(t, NewMoneyVNDFromInt(-500).ClampNonNegative().IsZero())

	positive := NewMoneyVNDFromInt(500)
	assert.True(t, positive.ClampNonNegative().Equals(positive))
}

func TestMoney_PercentageAndRate(t *testing.T) {
	base := NewMoneyVNDFromInt(1000000)

	// 10% of 1,000,000 = 100,000
	pct := base.CalculatePercentage(decimal.NewFromInt(10))
	assert.True(t, pct.Equals(NewMoneyVNDFromInt(100000)))

	// 10% discount leaves 900,000
	discounted := base.ApplyDiscount(decimal.NewFromInt(10))
	assert.True(t, discounted.Equals(NewMoneyVNDFromInt(900000)))

	// 0.1 tax rate on 900,000 = 90,000
	tax := discounted.ApplyRate(decimal.NewFromFloat(0.1))
	assert.True(t, tax.Equals(NewMoneyVNDFromInt(90000)))
}

func TestMoney_Rounding(t *testing.T) {
	m := NewMoneyVNDFromFloat(1234.567)
	assert.Equal(t, "1234.57", m.StringFixed(2))
	assert.True(t, m.Round(0).Equals(NewMoneyVNDFromInt(1235)))
	assert.Equal(t, "1235 VND", m.Round(0).String())
}

func TestMoney_FromString(t *testing.T) {
	m, err := NewMoneyVNDFromString("990000")
	require.NoError(t, err)
	assert.True(t, m.Equals(NewMoneyVNDFromInt(990000)))

	_, err = NewMoneyVNDFromString("not-a-number")
	assert.Error(t, err)
}

func TestMoney_JSONRoundTrip(t *testing.T) {
	original := NewMoneyVNDFromInt(990000)

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"990000","currency":"VND"}`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Equals(original))
}

func TestMoney_Scan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("123456.78"))
	assert.True(t, m.Amount().Equal(decimal.RequireFromString("123456.78")))
	assert.Equal(t, DefaultCurrency, m.Currency())

	require.NoError(t, m.Scan([]byte("500")))
	assert.True(t, m.Amount().Equal(decimal.NewFromInt(500)))

	require.NoError(t, m.Scan(nil))
	assert.True(t, m.IsZero())

	assert.Error(t, m.Scan(42))

	val, err := NewMoneyVNDFromInt(750).Value()
	require.NoError(t, err)
	assert.Equal(t, "750", val)
}
