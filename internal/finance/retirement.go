// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package finance

import "math"

const (
	// DefaultWithdrawalRate is the classic 4% sustainable withdrawal rule.
	DefaultWithdrawalRate = 4.0
	maxRetirementAge      = 120
)

// RetirementInput holds the retirement projection form.
type RetirementInput struct {
	CurrentAge          int     `json:"current_age" yaml:"current_age"`
	RetirementAge       int     `json:"retirement_age" yaml:"retirement_age"`
	CurrentSavings      float64 `json:"current_savings" yaml:"current_savings"`
	MonthlyContribution float64 `json:"monthly_contribution" yaml:"monthly_contribution"`
	AnnualReturn        float64 `json:"annual_return" yaml:"annual_return"`                                 // percent
	ContributionGrowth  float64 `json:"contribution_growth,omitempty" yaml:"contribution_growth,omitempty"` // percent per year
	Inflation           float64 `json:"inflation,omitempty" yaml:"inflation,omitempty"`                     // percent per year
	WithdrawalRate      float64 `json:"withdrawal_rate,omitempty" yaml:"withdrawal_rate,omitempty"`         // percent, default 4
}

// YearProjection is the balance at the end of one projected year.
type YearProjection struct {
	Age           int     `json:"age" yaml:"age"`
	Contributions float64 `json:"contributions" yaml:"contributions"`
	Growth        float64 `json:"growth" yaml:"growth"`
	Balance       float64 `json:"balance" yaml:"balance"`
}

// RetirementResult is the derived output of Retirement.
type RetirementResult struct {
	Years              int              `json:"years" yaml:"years"`
	FinalBalance       float64          `json:"final_balance" yaml:"final_balance"`
	TotalContributions float64          `json:"total_contributions" yaml:"total_contributions"`
	InterestEarned     float64          `json:"interest_earned" yaml:"interest_earned"`
	InflationAdjusted  float64          `json:"inflation_adjusted" yaml:"inflation_adjusted"`
	MonthlyIncome      float64          `json:"monthly_income" yaml:"monthly_income"`
	Projection         []YearProjection `json:"projection" yaml:"projection"`
}

// Retirement projects savings growth with monthly compounding and
// contributions deposited at the end of each month. A zero return is allowed
// and yields plain accumulation.
func Retirement(in RetirementInput) (*RetirementResult, error) {
	if !finite(in.CurrentSavings, in.MonthlyContribution, in.AnnualReturn, in.ContributionGrowth, in.Inflation, in.WithdrawalRate) {
		return nil, invalid("retirement inputs must be finite numbers")
	}
	if in.CurrentAge < 0 || in.CurrentAge >= maxRetirementAge {
		return nil, invalid("current age must be between 0 and %d", maxRetirementAge-1)
	}
	if in.RetirementAge <= in.CurrentAge || in.RetirementAge > maxRetirementAge {
		return nil, invalid("retirement age %d must be after current age %d", in.RetirementAge, in.CurrentAge)
	}
	if in.CurrentSavings < 0 || in.MonthlyContribution < 0 {
		return nil, invalid("savings and contributions cannot be negative")
	}
	if in.AnnualReturn < 0 || in.ContributionGrowth < 0 || in.Inflation < 0 || in.WithdrawalRate < 0 {
		return nil, invalid("rates cannot be negative")
	}
	if in.CurrentSavings == 0 && in.MonthlyContribution == 0 {
		return nil, invalid("either current savings or a monthly contribution is required")
	}

	withdrawal := in.WithdrawalRate
	if withdrawal == 0 {
		withdrawal = DefaultWithdrawalRate
	}

	years := in.RetirementAge - in.CurrentAge
	r := in.AnnualReturn / 100 / 12
	balance := in.CurrentSavings
	contribution := in.MonthlyContribution

	res := &RetirementResult{
		Years:      years,
		Projection: make([]YearProjection, 0, years),
	}

	for y := 1; y <= years; y++ {
		row := YearProjection{Age: in.CurrentAge + y}
		for m := 0; m < 12; m++ {
			growth := balance * r
			balance += growth + contribution
			row.Growth += growth
			row.Contributions += contribution
		}
		row.Balance = balance
		res.TotalContributions += row.Contributions
		res.Projection = append(res.Projection, row)
		contribution *= 1 + in.ContributionGrowth/100
	}

	res.FinalBalance = balance
	res.InterestEarned = balance - in.CurrentSavings - res.TotalContributions
	res.InflationAdjusted = balance / math.Pow(1+in.Inflation/100, float64(years))
	res.MonthlyIncome = balance * withdrawal / 100 / 12
	return res, nil
}
