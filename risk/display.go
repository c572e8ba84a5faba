package risk

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// Display holds the presentation strings of a result. Rounding happens
// here only; Result keeps full precision.
type Display struct {
	InvestmentAmount string `json:"investment_amount"`
	TakeProfitPrice  string `json:"take_profit_price"`
	FeeCost          string `json:"fee_cost"`
}

func (r Result) Display() Display {
	return Display{
		InvestmentAmount: Format2(r.InvestmentAmount),
		TakeProfitPrice:  Format2(r.TakeProfitPrice),
		FeeCost:          Format2(r.FeeCost()),
	}
}

// Format2 rounds half away from zero to two decimals.
func Format2(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return strconv.FormatFloat(x, 'f', 2, 64)
	}
	return decimal.NewFromFloat(x).StringFixed(2)
}
