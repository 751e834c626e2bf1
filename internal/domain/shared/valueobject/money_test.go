package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(d("100.50"), USD)
		require.NoError(t, err)
		assert.Equal(t, USD, m.Currency())
		assert.True(t, m.Amount().Equal(d("100.5")))
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(d("100"), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})

	t.Run("string constructor defaults to ARS", func(t *testing.T) {
		m, err := NewMoneyFromString("123.45")
		require.NoError(t, err)
		assert.Equal(t, ARS, m.Currency())

		_, err = NewMoneyFromString("abc")
		assert.Error(t, err)
	})
}

func TestRoundCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.005", "1.01"},
		{"1.004", "1.00"},
		{"2.675", "2.68"},
		{"-1.005", "-1.01"},
		{"10", "10.00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, RoundCurrency(d(tt.in)).StringFixed(2))
		})
	}
}

func TestHasCurrencyPrecision(t *testing.T) {
	for in, want := range map[string]bool{
		"10":     true,
		"0.01":   true,
		"1.500":  true,
		"-3.20":  true,
		"0.004":  false,
		"12.345": false,
		"-0.001": false,
	} {
		assert.Equal(t, want, HasCurrencyPrecision(d(in)), in)
	}
}

func TestMoney_Arithmetic(t *testing.T) {
	a := MustMoney("10.10")
	b := MustMoney("0.20")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "10.30", sum.Amount().StringFixed(2))

	diff, err := b.Subtract(a)
	require.NoError(t, err)
	assert.True(t, diff.IsNegative())
	assert.Equal(t, "9.90", diff.Abs().Amount().StringFixed(2))

	usd, _ := NewMoney(d("1"), USD)
	_, err = a.Add(usd)
	assert.Error(t, err)

	cmp, err := a.Compare(b)
	require.NoError(t, err)
	assert.Equal(t, 1, cmp)
}

func TestMoney_Installments(t *testing.T) {
	t.Run("remainder goes to last installment", func(t *testing.T) {
		parts, err := MustMoney("100.00").Installments(3)
		require.NoError(t, err)
		require.Len(t, parts, 3)
		assert.Equal(t, "33.33", parts[0].Amount().StringFixed(2))
		assert.Equal(t, "33.33", parts[1].Amount().StringFixed(2))
		assert.Equal(t, "33.34", parts[2].Amount().StringFixed(2))
	})

	t.Run("sum is exact for many splits", func(t *testing.T) {
		totals := []string{"0.01", "0.05", "1.00", "99.99", "1000.00", "12345.67", "7.77"}
		for _, total := range totals {
			for count := 1; count <= 12; count++ {
				parts, err := MustMoney(total).Installments(count)
				require.NoError(t, err)
				require.Len(t, parts, count)

				sum := decimal.Zero
				for i, p := range parts {
					sum = sum.Add(p.Amount())
					if i < count-1 {
						assert.True(t, p.Amount().Equal(parts[0].Amount()), "only the last installment differs")
					}
				}
				assert.True(t, sum.Equal(d(total)), "total=%s count=%d sum=%s", total, count, sum)
			}
		}
	})

	t.Run("invalid count", func(t *testing.T) {
		_, err := MustMoney("10").Installments(0)
		assert.Error(t, err)
	})
}

func TestComputeVATLine(t *testing.T) {
	t.Run("rounds each figure independently", func(t *testing.T) {
		// net 1.0045 at 21%: VAT 0.210945, total 1.215445
		line := ComputeVATLine(d("1.0045"), d("21"))
		assert.Equal(t, "1.00", line.Net.StringFixed(2))
		assert.Equal(t, "0.21", line.VAT.StringFixed(2))
		assert.Equal(t, "1.22", line.Total.StringFixed(2))
		// adding the rounded parts would have lost a cent
		assert.False(t, line.Net.Add(line.VAT).Equal(line.Total))
	})

	t.Run("exact amounts", func(t *testing.T) {
		line := ComputeVATLine(d("100"), d("10.5"))
		assert.Equal(t, "100.00", line.Net.StringFixed(2))
		assert.Equal(t, "10.50", line.VAT.StringFixed(2))
		assert.Equal(t, "110.50", line.Total.StringFixed(2))
	})
}

func TestMoney_Percentage(t *testing.T) {
	assert.Equal(t, "0.67", MustMoney("3.33").Percentage(d("20")).Amount().StringFixed(2))
}

func TestMoney_JSON(t *testing.T) {
	m := MustMoney("12.5")
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"12.50","currency":"ARS"}`, string(data))

	var back Money
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Equals(m))
}

func TestMoney_ValueScan(t *testing.T) {
	v, err := MustMoney("1.5").Value()
	require.NoError(t, err)
	assert.Equal(t, "1.50", v)

	var m Money
	require.NoError(t, m.Scan("42.10"))
	assert.Equal(t, "42.10", m.Amount().StringFixed(2))
	assert.Equal(t, ARS, m.Currency())
}

func TestSumDecimals(t *testing.T) {
	assert.Equal(t, "0.30", SumDecimals(d("0.1"), d("0.2")).StringFixed(2))
	assert.True(t, SumDecimals().IsZero())
	assert.Equal(t, "0.01", OneCent().StringFixed(2))
}
