package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid inputs", func(t *testing.T) {
		m, err := NewMoney(1099, USD)
		require.NoError(t, err)
		assert.Equal(t, int64(1099), m.Amount())
		assert.Equal(t, USD, m.Currency())
	})

	t.Run("fails with empty currency", func(t *testing.T) {
		_, err := NewMoney(100, "")
		require.Error(t, err)
	})
}

func TestCurrency_String(t *testing.T) {
	assert.Equal(t, "USD", USD.String())
	assert.Equal(t, "EUR/JPY", EUR.String()+"/"+JPY.String())
}

func TestNewMoneyFromFloat(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		cents  int64
	}{
		{"exact", 10.99, 1099},
		{"rounds half up", 10.005, 1001},
		{"rounds down below half", 10.004, 1000},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMoneyFromFloat(tt.amount, USD)
			require.NoError(t, err)
			assert.Equal(t, tt.cents, m.Amount())
		})
	}
}

func TestNewMoneyFromDecimal(t *testing.T) {
	d := decimal.RequireFromString("10.995")
	m, err := NewMoneyFromDecimal(d, EUR)
	require.NoError(t, err)
	assert.Equal(t, int64(1100), m.Amount())
	assert.Equal(t, EUR, m.Currency())
}

func TestMoney_Add(t *testing.T) {
	t.Run("adds same currency", func(t *testing.T) {
		a := MustNewMoney(700, USD)
		b := MustNewMoney(300, USD)
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), sum.Amount())
	})

	t.Run("fails with different currencies", func(t *testing.T) {
		a := MustNewMoney(700, USD)
		b := MustNewMoney(300, EUR)
		_, err := a.Add(b)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "different currencies")
	})

	t.Run("original values unchanged", func(t *testing.T) {
		a := MustNewMoney(700, USD)
		b := MustNewMoney(300, USD)
		_, err := a.Add(b)
		require.NoError(t, err)
		assert.Equal(t, int64(700), a.Amount())
		assert.Equal(t, int64(300), b.Amount())
	})
}

func TestMoney_Subtract(t *testing.T) {
	t.Run("subtracts same currency", func(t *testing.T) {
		a := MustNewMoney(1000, USD)
		b := MustNewMoney(301, USD)
		diff, err := a.Subtract(b)
		require.NoError(t, err)
		assert.Equal(t, int64(699), diff.Amount())
	})

	t.Run("can go negative", func(t *testing.T) {
		a := MustNewMoney(100, USD)
		b := MustNewMoney(300, USD)
		diff, err := a.Subtract(b)
		require.NoError(t, err)
		assert.Equal(t, int64(-200), diff.Amount())
		assert.True(t, diff.IsNegative())
	})

	t.Run("fails with different currencies", func(t *testing.T) {
		a := MustNewMoney(1000, USD)
		b := MustNewMoney(300, JPY)
		_, err := a.Subtract(b)
		require.Error(t, err)
	})
}

func TestMoney_MultiplyByRate(t *testing.T) {
	t.Run("percentage rate", func(t *testing.T) {
		m := MustNewMoney(3000, USD)
		tax := m.MultiplyByRate(NewPercentageRate(10 * RateScale))
		assert.Equal(t, int64(300), tax.Amount())
		assert.Equal(t, USD, tax.Currency())
	})

	t.Run("fixed rate ignores base amount", func(t *testing.T) {
		m := MustNewMoney(3000, USD)
		fee := m.MultiplyByRate(NewFixedRate(250))
		assert.Equal(t, int64(250), fee.Amount())
	})
}

func TestMoney_Cmp(t *testing.T) {
	a := MustNewMoney(500, USD)
	b := MustNewMoney(700, USD)

	c, err := a.Cmp(b)
	require.NoError(t, err)
	assert.Equal(t, -1, c)

	gt, err := b.GreaterThan(a)
	require.NoError(t, err)
	assert.True(t, gt)

	lt, err := a.LessThan(b)
	require.NoError(t, err)
	assert.True(t, lt)

	_, err = a.Cmp(MustNewMoney(500, EUR))
	require.Error(t, err)
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "10.99 USD", MustNewMoney(1099, USD).String())
	assert.Equal(t, "-0.05 EUR", MustNewMoney(-5, EUR).String())
}

func TestMoney_JSON(t *testing.T) {
	m := MustNewMoney(1099, USD)
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":1099,"currency":"USD"}`, string(data))

	var back Money
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, m.Equals(back))
}

func TestMoney_Scan(t *testing.T) {
	t.Run("scans int64 cents", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan(int64(4200)))
		assert.Equal(t, int64(4200), m.Amount())
		assert.Equal(t, DefaultCurrency, m.Currency())
	})

	t.Run("nil scans to zero", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan(nil))
		assert.True(t, m.IsZero())
	})
}
