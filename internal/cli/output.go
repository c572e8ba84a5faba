package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rustyeddy/poscalc/risk"
)

type resultJSON struct {
	Result   risk.Result      `json:"result"`
	FeeCost  float64          `json:"fee_cost"`
	Display  risk.Display     `json:"display"`
	Warnings []risk.Violation `json:"warnings,omitempty"`
	ID       string           `json:"id,omitempty"`
}

func printResult(w io.Writer, r risk.Result) {
	d := r.Display()
	fmt.Fprintf(w, "Investment amount  %12s\n", d.InvestmentAmount)
	fmt.Fprintf(w, "Take-profit price  %12s\n", d.TakeProfitPrice)
	fmt.Fprintf(w, "Fee cost           %12s\n", d.FeeCost)
	for _, v := range risk.Review(r) {
		fmt.Fprintf(w, "! %s: %s\n", v.Code, v.Msg)
	}
}

func printResultJSON(w io.Writer, r risk.Result, id string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resultJSON{
		Result:   r,
		FeeCost:  r.FeeCost(),
		Display:  r.Display(),
		Warnings: risk.Review(r),
		ID:       id,
	})
}
