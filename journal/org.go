package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/poscalc/risk"
)

// FormatRecordOrg renders a Record as an Org-mode block. Structured facts
// go in a PROPERTIES drawer; Plan/Review are left for the trader to fill.
func FormatRecordOrg(r Record) string {
	res := r.Result()
	heading := fmt.Sprintf("** Position: %s %s -> %s (%s)",
		risk.Side(r.EntryPrice, r.StopLossPrice),
		risk.Format2(r.EntryPrice), risk.Format2(r.StopLossPrice), shortID(r.ID))

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":ID: %s\n", r.ID))
	b.WriteString(fmt.Sprintf(":TIME: %s\n", r.Time.UTC().Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf(":ENTRY_PRICE: %s\n", f(r.EntryPrice)))
	b.WriteString(fmt.Sprintf(":STOP_LOSS_PRICE: %s\n", f(r.StopLossPrice)))
	b.WriteString(fmt.Sprintf(":STOP_LOSS_AMOUNT: %s\n", risk.Format2(r.StopLossAmount)))
	b.WriteString(fmt.Sprintf(":FEE_RATE_PCT: %s\n", f(100*r.Fee)))
	b.WriteString(fmt.Sprintf(":INVESTMENT_AMOUNT: %s\n", risk.Format2(res.InvestmentAmount)))
	b.WriteString(fmt.Sprintf(":TAKE_PROFIT_PRICE: %s\n", risk.Format2(res.TakeProfitPrice)))
	b.WriteString(fmt.Sprintf(":FEE_COST: %s\n", risk.Format2(res.FeeCost())))
	if r.Note != "" {
		b.WriteString(fmt.Sprintf(":NOTE: %s\n", r.Note))
	}
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Plan\n- \n\n")
	b.WriteString("*** Review\n- \n")

	return b.String()
}

// FormatRecordsOrg renders multiple records separated by blank lines.
func FormatRecordsOrg(recs []Record) string {
	var b strings.Builder
	for i, r := range recs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatRecordOrg(r))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
