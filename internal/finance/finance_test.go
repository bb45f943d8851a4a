// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package finance

import (
	"bytes"
	"encoding/csv"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// LOAN TESTS
// =============================================================================

func TestMonthlyPayment_KnownValue(t *testing.T) {
	m, err := MonthlyPayment(240000, 6.5, 30)
	require.NoError(t, err)
	assert.InDelta(t, 1516.96, m, 0.01)
}

func TestMonthlyPayment_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		years     int
	}{
		{"zero principal", 0, 5, 30},
		{"negative principal", -1000, 5, 30},
		{"zero rate", 100000, 0, 30},
		{"negative rate", 100000, -1, 30},
		{"zero term", 100000, 5, 0},
		{"huge term", 100000, 5, 500},
		{"nan principal", math.NaN(), 5, 30},
		{"inf rate", 100000, math.Inf(1), 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := MonthlyPayment(tt.principal, tt.rate, tt.years)
			require.ErrorIs(t, err, ErrInvalidInput)
			assert.Zero(t, m)
		})
	}
}

func TestLoan_PaymentsCoverPrincipalAndInterest(t *testing.T) {
	cases := []LoanInput{
		{Principal: 240000, AnnualRate: 6.5, Years: 30},
		{Principal: 15000, AnnualRate: 3.9, Years: 5},
		{Principal: 1, AnnualRate: 0.01, Years: 1},
		{Principal: 500000, AnnualRate: 12, Years: 15},
	}
	for _, in := range cases {
		res, err := Loan(in)
		require.NoError(t, err)
		require.NotNil(t, res)

		n := float64(in.Years * 12)
		assert.Greater(t, res.MonthlyPayment, 0.0)
		assert.InDelta(t, in.Principal+res.TotalInterest, res.MonthlyPayment*n, 0.01*n)
		assert.Equal(t, in.Years*12, res.Payments)

		last := res.Schedule[len(res.Schedule)-1]
		assert.InDelta(t, 0, last.Balance, balanceEpsilon)

		var principal float64
		for _, row := range res.Schedule {
			principal += row.Principal + row.Extra
		}
		assert.InDelta(t, in.Principal, principal, 0.01)
	}
}

func TestLoan_InvalidReturnsNilResult(t *testing.T) {
	res, err := Loan(LoanInput{Principal: 1000, AnnualRate: 0, Years: 10})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Nil(t, res)

	res, err = Loan(LoanInput{Principal: 1000, AnnualRate: 5, Years: 10, ExtraMonthly: -5})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Nil(t, res)
}

func TestLoan_ExtraPaymentsShortenSchedule(t *testing.T) {
	base, err := Loan(LoanInput{Principal: 200000, AnnualRate: 6, Years: 30})
	require.NoError(t, err)
	extra, err := Loan(LoanInput{Principal: 200000, AnnualRate: 6, Years: 30, ExtraMonthly: 300})
	require.NoError(t, err)

	assert.Less(t, extra.Payments, base.Payments)
	assert.Less(t, extra.TotalInterest, base.TotalInterest)
	assert.Greater(t, extra.InterestSaved, 0.0)
	assert.InDelta(t, 0, extra.Schedule[len(extra.Schedule)-1].Balance, balanceEpsilon)
}

func TestYearlySummary(t *testing.T) {
	schedule, err := Amortize(12000, 5, 2, 0)
	require.NoError(t, err)

	years := YearlySummary(schedule)
	require.Len(t, years, 2)
	assert.Equal(t, 1, years[0].Year)
	assert.InDelta(t, 0, years[1].Balance, balanceEpsilon)
	assert.InDelta(t, 12000, years[0].Principal+years[1].Principal, 0.01)
}

// =============================================================================
// MORTGAGE TESTS
// =============================================================================

func TestMortgage_Example(t *testing.T) {
	res, err := Mortgage(MortgageInput{
		HomePrice:   300000,
		DownPayment: 60000,
		AnnualRate:  6.5,
		Years:       30,
		StartDate:   time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, 240000.0, res.LoanAmount)
	assert.InDelta(t, 1516.96, res.MonthlyPI, 0.01)
	assert.InDelta(t, 20, res.DownPercent, 1e-9)
	assert.Zero(t, res.MonthlyPMI)
	assert.InDelta(t, res.MonthlyPI, res.MonthlyTotal, 1e-9)
	assert.Equal(t, time.Date(2055, 1, 1, 0, 0, 0, 0, time.UTC), res.PayoffDate)
}

func TestMortgage_ExtrasAndPMI(t *testing.T) {
	res, err := Mortgage(MortgageInput{
		HomePrice:         400000,
		DownPayment:       20000,
		AnnualRate:        7,
		Years:             30,
		AnnualPropertyTax: 4800,
		AnnualInsurance:   1200,
		MonthlyHOA:        50,
		PMIRate:           0.5,
	})
	require.NoError(t, err)

	assert.InDelta(t, 400, res.MonthlyTax, 1e-9)
	assert.InDelta(t, 100, res.MonthlyInsurance, 1e-9)
	assert.InDelta(t, 380000*0.005/12, res.MonthlyPMI, 1e-9)
	assert.InDelta(t, res.MonthlyPI+400+100+50+res.MonthlyPMI, res.MonthlyTotal, 1e-9)
	assert.InDelta(t, 400000+res.TotalInterest, res.TotalCost, 1e-6)
}

func TestMortgage_Rejects(t *testing.T) {
	bad := []MortgageInput{
		{HomePrice: 0, DownPayment: 0, AnnualRate: 5, Years: 30},
		{HomePrice: 100000, DownPayment: 100000, AnnualRate: 5, Years: 30},
		{HomePrice: 100000, DownPayment: -1, AnnualRate: 5, Years: 30},
		{HomePrice: 100000, DownPayment: 10000, AnnualRate: 0, Years: 30},
		{HomePrice: 100000, DownPayment: 10000, AnnualRate: 5, Years: 30, MonthlyHOA: -1},
	}
	for _, in := range bad {
		res, err := Mortgage(in)
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Nil(t, res)
	}
}

// =============================================================================
// RETIREMENT TESTS
// =============================================================================

func TestRetirement_ZeroReturnAccumulates(t *testing.T) {
	res, err := Retirement(RetirementInput{
		CurrentAge:          30,
		RetirementAge:       40,
		CurrentSavings:      1000,
		MonthlyContribution: 100,
	})
	require.NoError(t, err)

	assert.Equal(t, 10, res.Years)
	assert.InDelta(t, 1000+100*12*10, res.FinalBalance, 1e-6)
	assert.InDelta(t, 0, res.InterestEarned, 1e-6)
	assert.Len(t, res.Projection, 10)
	assert.InDelta(t, res.FinalBalance*0.04/12, res.MonthlyIncome, 1e-6)
}

func TestRetirement_CompoundGrowth(t *testing.T) {
	res, err := Retirement(RetirementInput{
		CurrentAge:     40,
		RetirementAge:  50,
		CurrentSavings: 10000,
		AnnualReturn:   12,
		Inflation:      3,
	})
	require.NoError(t, err)

	want := 10000 * math.Pow(1.01, 120)
	assert.InDelta(t, want, res.FinalBalance, 0.01)
	assert.InDelta(t, want-10000, res.InterestEarned, 0.01)
	assert.InDelta(t, want/math.Pow(1.03, 10), res.InflationAdjusted, 0.01)
	assert.Greater(t, res.FinalBalance, res.InflationAdjusted)
}

func TestRetirement_ContributionGrowth(t *testing.T) {
	res, err := Retirement(RetirementInput{
		CurrentAge:          30,
		RetirementAge:       32,
		MonthlyContribution: 100,
		ContributionGrowth:  10,
	})
	require.NoError(t, err)
	assert.InDelta(t, 1200, res.Projection[0].Contributions, 1e-9)
	assert.InDelta(t, 1320, res.Projection[1].Contributions, 1e-9)
}

func TestRetirement_Rejects(t *testing.T) {
	bad := []RetirementInput{
		{CurrentAge: 40, RetirementAge: 40, CurrentSavings: 1},
		{CurrentAge: 40, RetirementAge: 30, CurrentSavings: 1},
		{CurrentAge: 30, RetirementAge: 60, CurrentSavings: -1},
		{CurrentAge: 30, RetirementAge: 60, CurrentSavings: 1, AnnualReturn: -2},
		{CurrentAge: 30, RetirementAge: 60},
	}
	for _, in := range bad {
		res, err := Retirement(in)
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Nil(t, res)
	}
}

// =============================================================================
// TIP / BUDGET TESTS
// =============================================================================

func TestTip(t *testing.T) {
	res, err := Tip(TipInput{Bill: 100, Percent: 18, People: 4})
	require.NoError(t, err)
	assert.InDelta(t, 18, res.TipAmount, 1e-9)
	assert.InDelta(t, 118, res.Total, 1e-9)
	assert.InDelta(t, 29.5, res.PerPerson, 1e-9)
	assert.InDelta(t, 4.5, res.TipPerPerson, 1e-9)
}

func TestTip_RoundUp(t *testing.T) {
	res, err := Tip(TipInput{Bill: 100, Percent: 18, People: 4, RoundUp: true})
	require.NoError(t, err)
	assert.Equal(t, 30.0, res.PerPerson)
	assert.Equal(t, 120.0, res.Total)
	assert.InDelta(t, 20, res.TipAmount, 1e-9)
}

func TestTip_Rejects(t *testing.T) {
	for _, in := range []TipInput{{Bill: 0, Percent: 10}, {Bill: 10, Percent: -1}, {Bill: 10, Percent: 10, People: -2}} {
		_, err := Tip(in)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestAllocate(t *testing.T) {
	res, err := FiftyThirtyTwenty(5000)
	require.NoError(t, err)
	require.Len(t, res.Lines, 3)
	assert.InDelta(t, 2500, res.Lines[0].Amount, 1e-9)
	assert.InDelta(t, 1500, res.Lines[1].Amount, 1e-9)
	assert.InDelta(t, 1000, res.Lines[2].Amount, 1e-9)
	assert.InDelta(t, 0, res.Unallocated, 1e-9)

	_, err = Allocate(1000, []Category{{Name: "a", Percent: 60}, {Name: "b", Percent: 50}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	partial, err := Allocate(1000, []Category{{Name: "rent", Percent: 30}})
	require.NoError(t, err)
	assert.InDelta(t, 700, partial.Unallocated, 1e-9)
}

func TestBudget(t *testing.T) {
	res, err := Budget(BudgetInput{
		Income:   4000,
		Expenses: map[string]float64{"rent": 1500, "food": 600, "fun": 600},
	})
	require.NoError(t, err)
	assert.InDelta(t, 2700, res.TotalExpenses, 1e-9)
	assert.InDelta(t, 1300, res.Remaining, 1e-9)
	assert.InDelta(t, 32.5, res.SavingsRate, 1e-9)
	assert.False(t, res.OverBudget)
	assert.Equal(t, []string{"rent", "food", "fun"}, []string{res.Lines[0].Name, res.Lines[1].Name, res.Lines[2].Name})

	over, err := Budget(BudgetInput{Income: 100, Expenses: map[string]float64{"x": 150}})
	require.NoError(t, err)
	assert.True(t, over.OverBudget)
}

// =============================================================================
// CURRENCY TESTS
// =============================================================================

func TestConverter(t *testing.T) {
	c, err := NewConverter(map[string]float64{"EUR": 0.5, "GBP": 0.25})
	require.NoError(t, err)

	conv, err := c.Convert(10, "eur", "GBP")
	require.NoError(t, err)
	assert.Equal(t, "EUR", conv.From)
	assert.InDelta(t, 0.5, conv.Rate, 1e-12)
	assert.InDelta(t, 5, conv.Result, 1e-12)

	usd, err := c.Convert(10, "USD", "EUR")
	require.NoError(t, err)
	assert.InDelta(t, 5, usd.Result, 1e-12)

	assert.Equal(t, []string{"EUR", "GBP", "USD"}, c.Currencies())

	_, err = c.Convert(10, "USD", "XYZ")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = c.Convert(-1, "USD", "EUR")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = c.Convert(1, "US", "EUR")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNewConverter_Defaults(t *testing.T) {
	c, err := NewConverter(nil)
	require.NoError(t, err)
	assert.Len(t, c.Currencies(), len(DefaultRates))

	_, err = NewConverter(map[string]float64{"EUR": 0})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

// =============================================================================
// EXPORT TESTS
// =============================================================================

func TestWriteScheduleCSV(t *testing.T) {
	schedule, err := Amortize(1200, 12, 1, 0)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteScheduleCSV(&buf, schedule))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 13)
	assert.Equal(t, scheduleHeader, records[0])
	assert.Equal(t, "0.00", records[12][5])
}

func TestWriteScheduleXLSX(t *testing.T) {
	schedule, err := Amortize(1200, 12, 1, 0)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteScheduleXLSX(&buf, schedule))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(scheduleSheet)
	require.NoError(t, err)
	require.Len(t, rows, 13)
	assert.Equal(t, "Month", rows[0][0])
	assert.Equal(t, "12", rows[12][0])
}
