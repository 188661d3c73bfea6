package tax

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func rate(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		in     Classification
		rate   string
		code   string
		source Source
	}{
		{"nothing linked", Classification{}, "0", "", SourceNone},
		{"category only", Classification{Category: &HSNRef{Code: "0910", Rate: rate("5")}}, "5", "0910", SourceCategory},
		{"product overrides category",
			Classification{Product: &HSNRef{Code: "3004", Rate: rate("12")}, Category: &HSNRef{Code: "0910", Rate: rate("5")}},
			"12", "3004", SourceProduct},
		{"product code without rate falls back",
			Classification{Product: &HSNRef{Code: "3004"}, Category: &HSNRef{Code: "0910", Rate: rate("5")}},
			"5", "0910", SourceCategory},
		{"codes without rates", Classification{Product: &HSNRef{Code: "3004"}, Category: &HSNRef{Code: "0910"}}, "0", "3004", SourceNone},
		{"zero rate is a real rate", Classification{Product: &HSNRef{Code: "1001", Rate: rate("0")}, Category: &HSNRef{Code: "0910", Rate: rate("5")}},
			"0", "1001", SourceProduct},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.in)
			assert.True(t, got.Rate.Equal(decimal.RequireFromString(tt.rate)), "rate %s", got.Rate)
			assert.Equal(t, tt.code, got.HSNCode)
			assert.Equal(t, tt.source, got.Source)
		})
	}
}

func TestAmount_RoundsHalfUp(t *testing.T) {
	assert.Equal(t, "36", Amount(decimal.NewFromInt(200), decimal.NewFromInt(18)).String())
	// 10.25 * 5% = 0.5125 -> 0.51
	assert.Equal(t, "0.51", Amount(decimal.RequireFromString("10.25"), decimal.NewFromInt(5)).String())
	// 0.30 * 5% = 0.015 -> 0.02
	assert.Equal(t, "0.02", Amount(decimal.RequireFromString("0.30"), decimal.NewFromInt(5)).String())
	assert.Equal(t, "0", Amount(decimal.NewFromInt(50), decimal.Zero).String())
}

func TestPriceWithTax(t *testing.T) {
	q := PriceWithTax(decimal.NewFromInt(100), 2, decimal.NewFromInt(18))
	assert.Equal(t, "200", q.Taxable.String())
	assert.Equal(t, "36", q.Tax.String())
	assert.Equal(t, "236", q.Total.String())
}

type fakeSource struct {
	classes map[string]Classification
	err     error
}

func (f fakeSource) Classifications(context.Context, []string) (map[string]Classification, error) {
	return f.classes, f.err
}

func TestResolver_ForProducts(t *testing.T) {
	r := &Resolver{Source: fakeSource{classes: map[string]Classification{
		"a": {Product: &HSNRef{Code: "3004", Rate: rate("18")}},
	}}}

	got := r.ForProducts(context.Background(), []string{"a", "b"})
	assert.True(t, got["a"].Rate.Equal(decimal.NewFromInt(18)))
	assert.Equal(t, SourceNone, got["b"].Source)
	assert.True(t, got["b"].Rate.IsZero())
}

func TestResolver_LookupFailureDegradesToZero(t *testing.T) {
	r := &Resolver{Source: fakeSource{err: errors.New("db down")}}

	got := r.ForProduct(context.Background(), "a")
	assert.True(t, got.Rate.IsZero())
	assert.Equal(t, SourceNone, got.Source)
}

func TestValidPercentage(t *testing.T) {
	assert.True(t, ValidPercentage(decimal.Zero))
	assert.True(t, ValidPercentage(decimal.NewFromInt(100)))
	assert.False(t, ValidPercentage(decimal.NewFromInt(-1)))
	assert.False(t, ValidPercentage(decimal.RequireFromString("100.01")))
}
