// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package finance

import "time"

// pmiThreshold is the down payment share below which PMI applies.
const pmiThreshold = 0.20

// MortgageInput holds the mortgage calculator form. Annual amounts are
// spread evenly across twelve months.
type MortgageInput struct {
	HomePrice         float64   `json:"home_price" yaml:"home_price"`
	DownPayment       float64   `json:"down_payment" yaml:"down_payment"`
	AnnualRate        float64   `json:"annual_rate" yaml:"annual_rate"`
	Years             int       `json:"years" yaml:"years"`
	AnnualPropertyTax float64   `json:"annual_property_tax,omitempty" yaml:"annual_property_tax,omitempty"`
	AnnualInsurance   float64   `json:"annual_insurance,omitempty" yaml:"annual_insurance,omitempty"`
	MonthlyHOA        float64   `json:"monthly_hoa,omitempty" yaml:"monthly_hoa,omitempty"`
	PMIRate           float64   `json:"pmi_rate,omitempty" yaml:"pmi_rate,omitempty"` // annual percent of loan amount
	StartDate         time.Time `json:"start_date,omitempty" yaml:"start_date,omitempty"`
}

// MortgageResult is the derived output of Mortgage.
type MortgageResult struct {
	LoanAmount       float64       `json:"loan_amount" yaml:"loan_amount"`
	DownPercent      float64       `json:"down_percent" yaml:"down_percent"`
	MonthlyPI        float64       `json:"monthly_pi" yaml:"monthly_pi"`
	MonthlyTax       float64       `json:"monthly_tax" yaml:"monthly_tax"`
	MonthlyInsurance float64       `json:"monthly_insurance" yaml:"monthly_insurance"`
	MonthlyHOA       float64       `json:"monthly_hoa" yaml:"monthly_hoa"`
	MonthlyPMI       float64       `json:"monthly_pmi" yaml:"monthly_pmi"`
	MonthlyTotal     float64       `json:"monthly_total" yaml:"monthly_total"`
	TotalInterest    float64       `json:"total_interest" yaml:"total_interest"`
	TotalCost        float64       `json:"total_cost" yaml:"total_cost"`
	PayoffDate       time.Time     `json:"payoff_date" yaml:"payoff_date"`
	Schedule         []Installment `json:"-" yaml:"-"`
}

// Mortgage computes the full monthly housing cost for a home purchase.
// The principal-and-interest part uses the annuity formula on
// HomePrice - DownPayment.
func Mortgage(in MortgageInput) (*MortgageResult, error) {
	if !finite(in.HomePrice, in.DownPayment, in.AnnualPropertyTax, in.AnnualInsurance, in.MonthlyHOA, in.PMIRate) {
		return nil, invalid("mortgage inputs must be finite numbers")
	}
	if in.HomePrice <= 0 {
		return nil, invalid("home price must be greater than zero")
	}
	if in.DownPayment < 0 {
		return nil, invalid("down payment cannot be negative")
	}
	if in.DownPayment >= in.HomePrice {
		return nil, invalid("down payment %.2f must be less than home price %.2f", in.DownPayment, in.HomePrice)
	}
	if in.AnnualPropertyTax < 0 || in.AnnualInsurance < 0 || in.MonthlyHOA < 0 || in.PMIRate < 0 {
		return nil, invalid("taxes, insurance, HOA and PMI cannot be negative")
	}

	loan := in.HomePrice - in.DownPayment
	payment, err := MonthlyPayment(loan, in.AnnualRate, in.Years)
	if err != nil {
		return nil, err
	}
	schedule, err := Amortize(loan, in.AnnualRate, in.Years, 0)
	if err != nil {
		return nil, err
	}

	res := &MortgageResult{
		LoanAmount:       loan,
		DownPercent:      in.DownPayment / in.HomePrice * 100,
		MonthlyPI:        payment,
		MonthlyTax:       in.AnnualPropertyTax / 12,
		MonthlyInsurance: in.AnnualInsurance / 12,
		MonthlyHOA:       in.MonthlyHOA,
		Schedule:         schedule,
	}
	if in.DownPayment/in.HomePrice < pmiThreshold && in.PMIRate > 0 {
		res.MonthlyPMI = loan * in.PMIRate / 100 / 12
	}
	res.MonthlyTotal = res.MonthlyPI + res.MonthlyTax + res.MonthlyInsurance + res.MonthlyHOA + res.MonthlyPMI

	for _, row := range schedule {
		res.TotalInterest += row.Interest
	}
	res.TotalCost = in.HomePrice + res.TotalInterest

	start := in.StartDate
	if start.IsZero() {
		start = time.Now()
	}
	res.PayoffDate = firstOfMonth(start).AddDate(0, len(schedule), 0)
	return res, nil
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
