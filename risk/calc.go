package risk

import "math"

// LossAtStop is what the position loses if the stop is hit, counting the
// fee on the notional. For a result from Compute it equals StopLossAmount
// up to rounding.
func LossAtStop(r Result) float64 {
	if r.EntryPrice == 0 {
		return 0
	}
	move := math.Abs(r.EntryPrice - r.StopLossPrice)
	return r.Units()*move + r.FeeCost()
}

// RewardAtTarget is the gross gain if the take-profit is hit, net of the
// entry fee.
func RewardAtTarget(r Result) float64 {
	if r.EntryPrice == 0 {
		return 0
	}
	move := math.Abs(r.TakeProfitPrice - r.EntryPrice)
	return r.Units()*move - r.FeeCost()
}

func RR(entry, stop, takeProfit float64) float64 {
	risk := math.Abs(entry - stop)
	reward := math.Abs(takeProfit - entry)
	if risk == 0 {
		return 0
	}
	return reward / risk
}

// Side reports whether the stop implies a long or short position.
func Side(entry, stop float64) string {
	switch {
	case stop < entry:
		return "long"
	case stop > entry:
		return "short"
	default:
		return "flat"
	}
}
