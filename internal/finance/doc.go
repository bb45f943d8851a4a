// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package finance provides the calculators behind the finance tools.
//
// Every calculator is a pure function over a flat input record. Invalid
// inputs are rejected with an error wrapping ErrInvalidInput and a nil
// result, so callers never see NaN or Inf values.
//
// # Key Types
//
//   - LoanInput / LoanResult: annuity payment plus amortization schedule
//   - MortgageInput / MortgageResult: loan plus taxes, insurance, HOA and PMI
//   - RetirementInput / RetirementResult: compound growth projection
//   - TipInput / TipResult: tip and bill split
//   - BudgetInput / BudgetResult: expense breakdown against income
//   - Converter: currency conversion over a units-per-USD rate table
//
// # Usage
//
//	res, err := finance.Mortgage(finance.MortgageInput{
//		HomePrice:   300000,
//		DownPayment: 60000,
//		AnnualRate:  6.5,
//		Years:       30,
//	})
//	if err != nil {
//		return err
//	}
//	fmt.Printf("%.2f\n", res.MonthlyPI) // 1516.96
package finance
