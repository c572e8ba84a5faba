package risk

// Position sizing against a fixed loss budget. The whole stop distance plus
// the fee charged on the position notional has to fit inside StopLossAmount.

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Defaults used when no preference has been stored.
const (
	DefaultStopLossAmount = 10.0
	DefaultFeeRate        = 0.1 // percent
)

var (
	// ErrInvalidInput is returned when a field is empty, not a number, or
	// when entry / stop-loss is not positive.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidResult is returned when the inputs parse but the formula
	// has no finite answer (zero denominator or overflow).
	ErrInvalidResult = errors.New("invalid result")
)

// InputError identifies the field that failed validation.
type InputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

// TextInputs are the raw values as typed by a user.
type TextInputs struct {
	EntryPrice     string `json:"entry_price"`
	StopLossPrice  string `json:"stop_loss_price"`
	StopLossAmount string `json:"stop_loss_amount"`
	FeeRate        string `json:"fee_rate"` // percent, "0.1" is 0.1%
}

// Inputs are parsed values. FeeRate is a percentage.
type Inputs struct {
	EntryPrice     float64
	StopLossPrice  float64
	StopLossAmount float64
	FeeRate        float64
}

// Result is an immutable sizing outcome. Two results compare equal with ==.
type Result struct {
	EntryPrice       float64 `json:"entry_price"`
	StopLossPrice    float64 `json:"stop_loss_price"`
	StopLossAmount   float64 `json:"stop_loss_amount"`
	InvestmentAmount float64 `json:"investment_amount"`
	TakeProfitPrice  float64 `json:"take_profit_price"`
	Fee              float64 `json:"fee"` // fraction, 0.001 is 0.1%
}

// FeeCost is the fee paid on InvestmentAmount.
func (r Result) FeeCost() float64 {
	return r.InvestmentAmount * r.Fee
}

// Units is the position quantity in the traded asset.
func (r Result) Units() float64 {
	return r.InvestmentAmount / r.EntryPrice
}

// RR is the reward/risk ratio of the take-profit target.
func (r Result) RR() float64 {
	return RR(r.EntryPrice, r.StopLossPrice, r.TakeProfitPrice)
}

// Parse validates and converts user text. Entry and stop-loss must be
// positive; amount and fee only have to be finite numbers.
func Parse(in TextInputs) (Inputs, error) {
	entry, err := parseField("entry_price", in.EntryPrice, true)
	if err != nil {
		return Inputs{}, err
	}
	stop, err := parseField("stop_loss_price", in.StopLossPrice, true)
	if err != nil {
		return Inputs{}, err
	}
	amount, err := parseField("stop_loss_amount", in.StopLossAmount, false)
	if err != nil {
		return Inputs{}, err
	}
	fee, err := parseField("fee_rate", in.FeeRate, false)
	if err != nil {
		return Inputs{}, err
	}

	return Inputs{
		EntryPrice:     entry,
		StopLossPrice:  stop,
		StopLossAmount: amount,
		FeeRate:        fee,
	}, nil
}

func parseField(field, text string, positive bool) (float64, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, &InputError{Field: field, Value: text, Reason: "required"}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &InputError{Field: field, Value: text, Reason: "not a number"}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &InputError{Field: field, Value: text, Reason: "not finite"}
	}
	if positive && v <= 0 {
		return 0, &InputError{Field: field, Value: text, Reason: "must be positive"}
	}
	return v, nil
}

// Calculate parses the four text fields and sizes the position.
func Calculate(in TextInputs) (Result, error) {
	parsed, err := Parse(in)
	if err != nil {
		return Result{}, err
	}
	return Compute(parsed)
}

// Compute sizes the position from parsed inputs:
//
//	fee        = feeRate / 100
//	priceDiff  = |entry - stop|
//	investment = (amount * entry) / (priceDiff + fee * entry)
//	takeProfit = 2 * entry - stop
func Compute(in Inputs) (Result, error) {
	if !(in.EntryPrice > 0) || math.IsInf(in.EntryPrice, 0) {
		return Result{}, &InputError{Field: "entry_price", Value: fmtFloat(in.EntryPrice), Reason: "must be positive"}
	}
	if !(in.StopLossPrice > 0) || math.IsInf(in.StopLossPrice, 0) {
		return Result{}, &InputError{Field: "stop_loss_price", Value: fmtFloat(in.StopLossPrice), Reason: "must be positive"}
	}
	if !finite(in.StopLossAmount) {
		return Result{}, &InputError{Field: "stop_loss_amount", Value: fmtFloat(in.StopLossAmount), Reason: "not finite"}
	}
	if !finite(in.FeeRate) {
		return Result{}, &InputError{Field: "fee_rate", Value: fmtFloat(in.FeeRate), Reason: "not finite"}
	}

	fee := in.FeeRate / 100
	priceDiff := math.Abs(in.EntryPrice - in.StopLossPrice)
	denom := priceDiff + fee*in.EntryPrice
	if denom == 0 {
		return Result{}, fmt.Errorf("%w: zero stop distance and zero fee", ErrInvalidResult)
	}

	investment := (in.StopLossAmount * in.EntryPrice) / denom
	takeProfit := 2*in.EntryPrice - in.StopLossPrice
	if !finite(investment) || !finite(takeProfit) {
		return Result{}, fmt.Errorf("%w: result is not finite", ErrInvalidResult)
	}

	return Result{
		EntryPrice:       in.EntryPrice,
		StopLossPrice:    in.StopLossPrice,
		StopLossAmount:   in.StopLossAmount,
		InvestmentAmount: investment,
		TakeProfitPrice:  takeProfit,
		Fee:              fee,
	}, nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}
