// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package finance

import (
	"math"
	"sort"
	"strings"
)

// =============================================================================
// TIP
// =============================================================================

// TipInput holds the tip calculator form.
type TipInput struct {
	Bill    float64 `json:"bill" yaml:"bill"`
	Percent float64 `json:"percent" yaml:"percent"`
	People  int     `json:"people" yaml:"people"`
	RoundUp bool    `json:"round_up,omitempty" yaml:"round_up,omitempty"`
}

// TipResult is the derived output of Tip.
type TipResult struct {
	TipAmount    float64 `json:"tip_amount" yaml:"tip_amount"`
	Total        float64 `json:"total" yaml:"total"`
	PerPerson    float64 `json:"per_person" yaml:"per_person"`
	TipPerPerson float64 `json:"tip_per_person" yaml:"tip_per_person"`
}

// Tip splits a bill plus tip between people. With RoundUp the per-person
// share is rounded up to a whole unit and the tip absorbs the difference.
func Tip(in TipInput) (*TipResult, error) {
	if !finite(in.Bill, in.Percent) {
		return nil, invalid("bill and percent must be finite numbers")
	}
	if in.Bill <= 0 {
		return nil, invalid("bill must be greater than zero")
	}
	if in.Percent < 0 || in.Percent > 100 {
		return nil, invalid("tip percent must be between 0 and 100, got %.2f", in.Percent)
	}
	people := in.People
	if people == 0 {
		people = 1
	}
	if people < 0 {
		return nil, invalid("number of people must be positive")
	}

	tip := in.Bill * in.Percent / 100
	total := in.Bill + tip
	per := total / float64(people)
	if in.RoundUp {
		per = math.Ceil(per)
		total = per * float64(people)
		tip = total - in.Bill
	}
	return &TipResult{
		TipAmount:    tip,
		Total:        total,
		PerPerson:    per,
		TipPerPerson: tip / float64(people),
	}, nil
}

// =============================================================================
// PERCENTAGE ALLOCATION
// =============================================================================

// Category is a named share of income in percent.
type Category struct {
	Name    string  `json:"name" yaml:"name"`
	Percent float64 `json:"percent" yaml:"percent"`
}

// AllocationLine is one category with its computed amount.
type AllocationLine struct {
	Name    string  `json:"name" yaml:"name"`
	Percent float64 `json:"percent" yaml:"percent"`
	Amount  float64 `json:"amount" yaml:"amount"`
}

// Allocation is the result of splitting income by percentages.
type Allocation struct {
	Income      float64          `json:"income" yaml:"income"`
	Lines       []AllocationLine `json:"lines" yaml:"lines"`
	Allocated   float64          `json:"allocated" yaml:"allocated"`
	Unallocated float64          `json:"unallocated" yaml:"unallocated"`
}

// Allocate splits income across categories. Percentages must be
// non-negative and sum to at most 100.
func Allocate(income float64, categories []Category) (*Allocation, error) {
	if !finite(income) || income <= 0 {
		return nil, invalid("income must be greater than zero")
	}
	if len(categories) == 0 {
		return nil, invalid("at least one category is required")
	}

	var sum float64
	res := &Allocation{Income: income, Lines: make([]AllocationLine, 0, len(categories))}
	for _, c := range categories {
		if strings.TrimSpace(c.Name) == "" {
			return nil, invalid("category name cannot be empty")
		}
		if !finite(c.Percent) || c.Percent < 0 {
			return nil, invalid("category %q has a negative percentage", c.Name)
		}
		sum += c.Percent
		amount := income * c.Percent / 100
		res.Lines = append(res.Lines, AllocationLine{Name: c.Name, Percent: c.Percent, Amount: amount})
		res.Allocated += amount
	}
	if sum > 100+1e-9 {
		return nil, invalid("category percentages sum to %.2f, which exceeds 100", sum)
	}
	res.Unallocated = income - res.Allocated
	return res, nil
}

// FiftyThirtyTwenty applies the needs/wants/savings rule of thumb.
func FiftyThirtyTwenty(income float64) (*Allocation, error) {
	return Allocate(income, []Category{
		{Name: "Needs", Percent: 50},
		{Name: "Wants", Percent: 30},
		{Name: "Savings", Percent: 20},
	})
}

// =============================================================================
// BUDGET
// =============================================================================

// BudgetInput holds monthly income and expenses keyed by category name.
type BudgetInput struct {
	Income   float64            `json:"income" yaml:"income"`
	Expenses map[string]float64 `json:"expenses" yaml:"expenses"`
}

// BudgetLine is one expense category with its share of income.
type BudgetLine struct {
	Name    string  `json:"name" yaml:"name"`
	Amount  float64 `json:"amount" yaml:"amount"`
	Percent float64 `json:"percent" yaml:"percent"`
}

// BudgetResult is the derived output of Budget.
type BudgetResult struct {
	Income        float64      `json:"income" yaml:"income"`
	TotalExpenses float64      `json:"total_expenses" yaml:"total_expenses"`
	Remaining     float64      `json:"remaining" yaml:"remaining"`
	SavingsRate   float64      `json:"savings_rate" yaml:"savings_rate"`
	OverBudget    bool         `json:"over_budget" yaml:"over_budget"`
	Lines         []BudgetLine `json:"lines" yaml:"lines"`
}

// Budget totals expenses against income. Lines are ordered by amount,
// largest first, then by name.
func Budget(in BudgetInput) (*BudgetResult, error) {
	if !finite(in.Income) || in.Income <= 0 {
		return nil, invalid("income must be greater than zero")
	}

	res := &BudgetResult{Income: in.Income, Lines: make([]BudgetLine, 0, len(in.Expenses))}
	for name, amount := range in.Expenses {
		if !finite(amount) || amount < 0 {
			return nil, invalid("expense %q cannot be negative", name)
		}
		res.TotalExpenses += amount
		res.Lines = append(res.Lines, BudgetLine{Name: name, Amount: amount, Percent: amount / in.Income * 100})
	}
	sort.Slice(res.Lines, func(i, j int) bool {
		if res.Lines[i].Amount != res.Lines[j].Amount {
			return res.Lines[i].Amount > res.Lines[j].Amount
		}
		return res.Lines[i].Name < res.Lines[j].Name
	})

	res.Remaining = in.Income - res.TotalExpenses
	res.SavingsRate = res.Remaining / in.Income * 100
	res.OverBudget = res.Remaining < 0
	return res, nil
}
