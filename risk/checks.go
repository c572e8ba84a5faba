package risk

import "fmt"

// Violation is an advisory finding about a result. Calculate accepts
// a non-positive stop-loss amount and a negative fee rate, Review is where
// callers find out about them.
type Violation struct {
	Code string `json:"code"`
	Msg  string `json:"message"`
}

func Review(r Result) []Violation {
	var out []Violation
	add := func(code, msg string) {
		out = append(out, Violation{Code: code, Msg: msg})
	}

	if r.StopLossAmount <= 0 {
		add("NON_POSITIVE_AMOUNT",
			fmt.Sprintf("stop-loss amount %.2f is not positive", r.StopLossAmount))
	}
	if r.Fee < 0 {
		add("NEGATIVE_FEE",
			fmt.Sprintf("fee rate %.4f%% is negative", 100*r.Fee))
	}
	if r.InvestmentAmount <= 0 {
		add("NON_POSITIVE_INVESTMENT",
			fmt.Sprintf("investment amount %.2f is not positive", r.InvestmentAmount))
	}
	if r.TakeProfitPrice <= 0 {
		add("NON_POSITIVE_TAKE_PROFIT",
			fmt.Sprintf("take-profit price %.2f is not positive", r.TakeProfitPrice))
	}
	if r.EntryPrice == r.StopLossPrice {
		add("NO_STOP_DISTANCE", "stop-loss equals entry, size is bounded by fees only")
	}

	return out
}
