// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package finance

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is wrapped by every validation failure in this package.
var ErrInvalidInput = errors.New("invalid input")

// maxTermYears bounds loan terms so schedules stay a sensible size.
const maxTermYears = 100

// balanceEpsilon is the residual balance treated as fully repaid.
const balanceEpsilon = 0.005

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// =============================================================================
// ANNUITY PAYMENT
// =============================================================================

// MonthlyPayment returns the fixed monthly payment that repays principal at
// annualRatePct over years using M = P*r(1+r)^n / ((1+r)^n - 1).
func MonthlyPayment(principal, annualRatePct float64, years int) (float64, error) {
	if !finite(principal, annualRatePct) {
		return 0, invalid("principal and rate must be finite numbers")
	}
	if principal <= 0 {
		return 0, invalid("principal must be greater than zero, got %.2f", principal)
	}
	if annualRatePct <= 0 {
		return 0, invalid("interest rate must be greater than zero, got %.3f", annualRatePct)
	}
	if years <= 0 || years > maxTermYears {
		return 0, invalid("term must be between 1 and %d years, got %d", maxTermYears, years)
	}

	r := annualRatePct / 100 / 12
	n := float64(years * 12)
	growth := math.Pow(1+r, n)
	payment := principal * r * growth / (growth - 1)
	if !finite(payment) || payment <= 0 {
		return 0, invalid("rate %.3f%% over %d years has no finite payment", annualRatePct, years)
	}
	return payment, nil
}

// =============================================================================
// LOAN
// =============================================================================

// LoanInput holds the loan calculator form.
type LoanInput struct {
	Principal    float64 `json:"principal" yaml:"principal"`
	AnnualRate   float64 `json:"annual_rate" yaml:"annual_rate"` // percent, e.g. 6.5
	Years        int     `json:"years" yaml:"years"`
	ExtraMonthly float64 `json:"extra_monthly,omitempty" yaml:"extra_monthly,omitempty"`
}

// LoanResult is the derived output of Loan.
type LoanResult struct {
	MonthlyPayment float64       `json:"monthly_payment" yaml:"monthly_payment"`
	TotalPayment   float64       `json:"total_payment" yaml:"total_payment"`
	TotalInterest  float64       `json:"total_interest" yaml:"total_interest"`
	Payments       int           `json:"payments" yaml:"payments"`
	InterestSaved  float64       `json:"interest_saved,omitempty" yaml:"interest_saved,omitempty"`
	Schedule       []Installment `json:"schedule,omitempty" yaml:"schedule,omitempty"`
}

// Installment is one row of an amortization schedule.
type Installment struct {
	Month     int     `json:"month" yaml:"month"`
	Payment   float64 `json:"payment" yaml:"payment"`
	Principal float64 `json:"principal" yaml:"principal"`
	Interest  float64 `json:"interest" yaml:"interest"`
	Extra     float64 `json:"extra,omitempty" yaml:"extra,omitempty"`
	Balance   float64 `json:"balance" yaml:"balance"`
}

// Loan computes the payment, totals and full schedule for a fixed-rate loan.
// TotalPayment reflects the schedule actually paid, so extra payments lower
// both the payment count and the interest.
func Loan(in LoanInput) (*LoanResult, error) {
	if in.ExtraMonthly < 0 || !finite(in.ExtraMonthly) {
		return nil, invalid("extra monthly payment cannot be negative")
	}
	payment, err := MonthlyPayment(in.Principal, in.AnnualRate, in.Years)
	if err != nil {
		return nil, err
	}

	schedule, err := Amortize(in.Principal, in.AnnualRate, in.Years, in.ExtraMonthly)
	if err != nil {
		return nil, err
	}

	res := &LoanResult{
		MonthlyPayment: payment,
		Payments:       len(schedule),
		Schedule:       schedule,
	}
	for _, row := range schedule {
		res.TotalPayment += row.Payment + row.Extra
		res.TotalInterest += row.Interest
	}
	if in.ExtraMonthly > 0 {
		baseline := payment*float64(in.Years*12) - in.Principal
		res.InterestSaved = math.Max(0, baseline-res.TotalInterest)
	}
	return res, nil
}

// Amortize builds the month-by-month schedule. Extra is applied to principal
// every month and the final installment is trimmed so the balance ends at zero.
func Amortize(principal, annualRatePct float64, years int, extra float64) ([]Installment, error) {
	payment, err := MonthlyPayment(principal, annualRatePct, years)
	if err != nil {
		return nil, err
	}
	if extra < 0 {
		return nil, invalid("extra monthly payment cannot be negative")
	}

	r := annualRatePct / 100 / 12
	n := years * 12
	balance := principal
	schedule := make([]Installment, 0, n)

	for month := 1; month <= n && balance > balanceEpsilon; month++ {
		interest := balance * r
		principalPart := payment - interest
		row := Installment{Month: month, Payment: payment, Interest: interest}

		if principalPart >= balance || month == n {
			// Final installment pays exactly what is left.
			row.Payment = balance + interest
			row.Principal = balance
			balance = 0
		} else {
			row.Principal = principalPart
			balance -= principalPart
			if extra > 0 {
				row.Extra = math.Min(extra, balance)
				balance -= row.Extra
			}
		}
		row.Balance = balance
		schedule = append(schedule, row)
	}
	return schedule, nil
}

// YearSummary aggregates a schedule by loan year.
type YearSummary struct {
	Year      int     `json:"year" yaml:"year"`
	Principal float64 `json:"principal" yaml:"principal"`
	Interest  float64 `json:"interest" yaml:"interest"`
	Balance   float64 `json:"balance" yaml:"balance"`
}

// YearlySummary folds monthly installments into per-year totals.
func YearlySummary(schedule []Installment) []YearSummary {
	var years []YearSummary
	for _, row := range schedule {
		year := (row.Month-1)/12 + 1
		if len(years) == 0 || years[len(years)-1].Year != year {
			years = append(years, YearSummary{Year: year})
		}
		cur := &years[len(years)-1]
		cur.Principal += row.Principal + row.Extra
		cur.Interest += row.Interest
		cur.Balance = row.Balance
	}
	return years
}
