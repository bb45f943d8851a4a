// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jeranaias/toolverse/internal/finance"
	"github.com/jeranaias/toolverse/internal/util"
)

// =============================================================================
// FINANCE TOOLS
// =============================================================================

// Schedule export formats accepted by the loan and mortgage tools.
const (
	ScheduleCSV  = "csv"
	ScheduleXLSX = "xlsx"
)

const (
	contentTypeCSV  = "text/csv"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var scheduleParam = Parameter{
	Name:        "schedule",
	Type:        TypeString,
	Description: "Attach the amortization schedule as csv or xlsx",
	Enum:        []string{ScheduleCSV, ScheduleXLSX},
}

func money(v float64) string { return util.FormatMoney(v) }

func pct(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) + "%" }

func financeTools(s Settings) []*Tool {
	conv := newConverter(s)
	return []*Tool{
		{
			Name:        "mortgage",
			Aliases:     []string{"home-loan"},
			Category:    CategoryFinance,
			Description: "Monthly mortgage payment with taxes, insurance, HOA and PMI",
			Usage:       "toolverse run mortgage --home_price 300000 --down_payment 60000 --rate 6.5 --years 30",
			Schema: Schema{Parameters: []Parameter{
				{Name: "home_price", Type: TypeNumber, Required: true, Description: "Purchase price", Min: bound(0)},
				{Name: "down_payment", Type: TypeNumber, Required: true, Description: "Down payment amount", Min: bound(0)},
				{Name: "rate", Type: TypeNumber, Required: true, Description: "Annual interest rate in percent", Min: bound(0), Max: bound(100)},
				{Name: "years", Type: TypeInteger, Description: "Loan term in years", Default: 30, Min: bound(1), Max: bound(100)},
				{Name: "property_tax", Type: TypeNumber, Description: "Annual property tax", Default: 0.0, Min: bound(0)},
				{Name: "insurance", Type: TypeNumber, Description: "Annual homeowners insurance", Default: 0.0, Min: bound(0)},
				{Name: "hoa", Type: TypeNumber, Description: "Monthly HOA dues", Default: 0.0, Min: bound(0)},
				{Name: "pmi_rate", Type: TypeNumber, Description: "Annual PMI rate in percent, applied below 20% down", Default: 0.0, Min: bound(0), Max: bound(10)},
				scheduleParam,
			}},
			Executor: ExecutorFunc(runMortgage),
		},
		{
			Name:        "loan",
			Aliases:     []string{"amortization"},
			Category:    CategoryFinance,
			Description: "Fixed-rate loan payment, total interest and amortization schedule",
			Usage:       "toolverse run loan --principal 25000 --rate 7 --years 5 --extra 100 --schedule xlsx",
			Schema: Schema{Parameters: []Parameter{
				{Name: "principal", Type: TypeNumber, Required: true, Description: "Amount borrowed", Min: bound(0)},
				{Name: "rate", Type: TypeNumber, Required: true, Description: "Annual interest rate in percent", Min: bound(0), Max: bound(100)},
				{Name: "years", Type: TypeInteger, Required: true, Description: "Loan term in years", Min: bound(1), Max: bound(100)},
				{Name: "extra", Type: TypeNumber, Description: "Extra principal paid each month", Default: 0.0, Min: bound(0)},
				scheduleParam,
			}},
			Executor: ExecutorFunc(runLoan),
		},
		{
			Name:        "retirement",
			Category:    CategoryFinance,
			Description: "Project retirement savings with monthly compounding",
			Usage:       "toolverse run retirement --current_age 30 --retirement_age 65 --savings 20000 --monthly 500 --return 7",
			Schema: Schema{Parameters: []Parameter{
				{Name: "current_age", Type: TypeInteger, Required: true, Description: "Age today", Min: bound(0), Max: bound(120)},
				{Name: "retirement_age", Type: TypeInteger, Required: true, Description: "Age at retirement", Min: bound(1), Max: bound(120)},
				{Name: "savings", Type: TypeNumber, Description: "Current savings", Default: 0.0, Min: bound(0)},
				{Name: "monthly", Type: TypeNumber, Description: "Monthly contribution", Default: 0.0, Min: bound(0)},
				{Name: "return", Type: TypeNumber, Description: "Expected annual return in percent", Default: 7.0, Min: bound(-50), Max: bound(100)},
				{Name: "contribution_growth", Type: TypeNumber, Description: "Yearly contribution increase in percent", Default: 0.0, Min: bound(0), Max: bound(100)},
				{Name: "inflation", Type: TypeNumber, Description: "Annual inflation in percent", Default: 0.0, Min: bound(0), Max: bound(100)},
				{Name: "withdrawal_rate", Type: TypeNumber, Description: "Safe withdrawal rate in percent", Default: finance.DefaultWithdrawalRate, Min: bound(0), Max: bound(100)},
			}},
			Executor: ExecutorFunc(runRetirement),
		},
		{
			Name:        "tip",
			Category:    CategoryFinance,
			Description: "Tip amount and per-person split",
			Usage:       "toolverse run tip --bill 84.50 --percent 18 --people 3",
			Schema: Schema{Parameters: []Parameter{
				{Name: "bill", Type: TypeNumber, Required: true, Description: "Bill amount before tip", Min: bound(0)},
				{Name: "percent", Type: TypeNumber, Description: "Tip percentage", Default: 15.0, Min: bound(0), Max: bound(100)},
				{Name: "people", Type: TypeInteger, Description: "Number of people splitting", Default: 1, Min: bound(1), Max: bound(1000)},
				{Name: "round_up", Type: TypeBoolean, Description: "Round each share up to a whole unit", Default: false},
			}},
			Executor: ExecutorFunc(runTip),
		},
		{
			Name:        "budget",
			Category:    CategoryFinance,
			Description: "Monthly budget breakdown against income",
			Usage:       "toolverse run budget --income 5000 --expenses rent=1500,food=600,transport=200",
			Schema: Schema{Parameters: []Parameter{
				{Name: "income", Type: TypeNumber, Required: true, Description: "Monthly income", Min: bound(0)},
				{Name: "expenses", Type: TypeArray, Required: true, Description: "Expenses as name=amount"},
			}},
			Executor: ExecutorFunc(runBudget),
		},
		{
			Name:        "allocate",
			Aliases:     []string{"50-30-20"},
			Category:    CategoryFinance,
			Description: "Split income by percentages (50/30/20 when no categories are given)",
			Usage:       "toolverse run allocate --income 4000 --categories needs=50,wants=30,savings=20",
			Schema: Schema{Parameters: []Parameter{
				{Name: "income", Type: TypeNumber, Required: true, Description: "Income to split", Min: bound(0)},
				{Name: "categories", Type: TypeArray, Description: "Categories as name=percent"},
			}},
			Executor: ExecutorFunc(runAllocate),
		},
		{
			Name:        "currency",
			Aliases:     []string{"convert-currency"},
			Category:    CategoryFinance,
			Description: "Convert an amount between currencies",
			Usage:       "toolverse run currency --amount 100 --from USD --to EUR",
			Schema: Schema{Parameters: []Parameter{
				{Name: "amount", Type: TypeNumber, Required: true, Description: "Amount to convert", Min: bound(0)},
				{Name: "from", Type: TypeString, Description: "Source currency code", Default: s.DefaultCurrency},
				{Name: "to", Type: TypeString, Required: true, Description: "Target currency code"},
			}},
			Executor: &currencyExecutor{conv: conv},
		},
	}
}

func newConverter(s Settings) *finance.Converter {
	conv, _ := finance.NewConverter(nil)
	for code, rate := range s.Rates {
		// Config validation already rejected bad entries.
		_ = conv.SetRate(code, rate)
	}
	return conv
}

// =============================================================================
// EXECUTORS
// =============================================================================

func runMortgage(ctx context.Context, call Call) (Result, error) {
	res, err := finance.Mortgage(finance.MortgageInput{
		HomePrice:         call.GetFloat("home_price", 0),
		DownPayment:       call.GetFloat("down_payment", 0),
		AnnualRate:        call.GetFloat("rate", 0),
		Years:             call.GetInt("years", 30),
		AnnualPropertyTax: call.GetFloat("property_tax", 0),
		AnnualInsurance:   call.GetFloat("insurance", 0),
		MonthlyHOA:        call.GetFloat("hoa", 0),
		PMIRate:           call.GetFloat("pmi_rate", 0),
	})
	if err != nil {
		return Result{}, err
	}

	rows := table{
		{"Loan amount", money(res.LoanAmount)},
		{"Down payment", pct(res.DownPercent)},
		{"Principal & interest", money(res.MonthlyPI)},
	}
	for _, extra := range []struct {
		label string
		v     float64
	}{
		{"Property tax", res.MonthlyTax},
		{"Insurance", res.MonthlyInsurance},
		{"HOA", res.MonthlyHOA},
		{"PMI", res.MonthlyPMI},
	} {
		if extra.v > 0 {
			rows = append(rows, [2]string{extra.label, money(extra.v)})
		}
	}
	rows = append(rows,
		[2]string{"Monthly total", money(res.MonthlyTotal)},
		[2]string{"Total interest", money(res.TotalInterest)},
		[2]string{"Total cost", money(res.TotalCost)},
		[2]string{"Payoff date", res.PayoffDate.Format("January 2006")},
	)

	result := textResult(rows.String(), res)
	return withSchedule(result, call, "mortgage", res.Schedule)
}

func runLoan(ctx context.Context, call Call) (Result, error) {
	res, err := finance.Loan(finance.LoanInput{
		Principal:    call.GetFloat("principal", 0),
		AnnualRate:   call.GetFloat("rate", 0),
		Years:        call.GetInt("years", 0),
		ExtraMonthly: call.GetFloat("extra", 0),
	})
	if err != nil {
		return Result{}, err
	}

	rows := table{
		{"Monthly payment", money(res.MonthlyPayment)},
		{"Payments", strconv.Itoa(res.Payments)},
		{"Total paid", money(res.TotalPayment)},
		{"Total interest", money(res.TotalInterest)},
	}
	if res.InterestSaved > 0 {
		rows = append(rows, [2]string{"Interest saved", money(res.InterestSaved)})
	}

	summary := *res
	summary.Schedule = nil
	data := struct {
		finance.LoanResult `yaml:",inline"`
		Yearly             []finance.YearSummary `json:"yearly" yaml:"yearly"`
	}{LoanResult: summary, Yearly: finance.YearlySummary(res.Schedule)}

	result := textResult(rows.String(), data)
	return withSchedule(result, call, "loan", res.Schedule)
}

// withSchedule attaches the schedule export requested by the schedule
// parameter.
func withSchedule(result Result, call Call, name string, schedule []finance.Installment) (Result, error) {
	format := call.GetString("schedule", "")
	if format == "" {
		return result, nil
	}

	var buf bytes.Buffer
	art := Artifact{Name: name + "_schedule." + format}
	switch format {
	case ScheduleCSV:
		art.ContentType = contentTypeCSV
		if err := finance.WriteScheduleCSV(&buf, schedule); err != nil {
			return Result{}, err
		}
	case ScheduleXLSX:
		art.ContentType = contentTypeXLSX
		if err := finance.WriteScheduleXLSX(&buf, schedule); err != nil {
			return Result{}, err
		}
	default:
		return Result{}, &ValidationError{Param: "schedule", Message: "must be csv or xlsx"}
	}
	art.Data = buf.Bytes()
	result.Artifacts = append(result.Artifacts, art)
	return result, nil
}

func runRetirement(ctx context.Context, call Call) (Result, error) {
	res, err := finance.Retirement(finance.RetirementInput{
		CurrentAge:          call.GetInt("current_age", 0),
		RetirementAge:       call.GetInt("retirement_age", 0),
		CurrentSavings:      call.GetFloat("savings", 0),
		MonthlyContribution: call.GetFloat("monthly", 0),
		AnnualReturn:        call.GetFloat("return", 7),
		ContributionGrowth:  call.GetFloat("contribution_growth", 0),
		Inflation:           call.GetFloat("inflation", 0),
		WithdrawalRate:      call.GetFloat("withdrawal_rate", finance.DefaultWithdrawalRate),
	})
	if err != nil {
		return Result{}, err
	}

	rows := table{
		{"Years to retirement", strconv.Itoa(res.Years)},
		{"Final balance", money(res.FinalBalance)},
		{"Total contributions", money(res.TotalContributions)},
		{"Interest earned", money(res.InterestEarned)},
		{"In today's money", money(res.InflationAdjusted)},
		{"Monthly income", money(res.MonthlyIncome)},
	}
	return textResult(rows.String(), res), nil
}

func runTip(ctx context.Context, call Call) (Result, error) {
	res, err := finance.Tip(finance.TipInput{
		Bill:    call.GetFloat("bill", 0),
		Percent: call.GetFloat("percent", 15),
		People:  call.GetInt("people", 1),
		RoundUp: call.GetBool("round_up", false),
	})
	if err != nil {
		return Result{}, err
	}

	rows := table{
		{"Tip", money(res.TipAmount)},
		{"Total", money(res.Total)},
	}
	if call.GetInt("people", 1) > 1 {
		rows = append(rows,
			[2]string{"Per person", money(res.PerPerson)},
			[2]string{"Tip per person", money(res.TipPerPerson)},
		)
	}
	return textResult(rows.String(), res), nil
}

// parsePairs reads "name=value" items.
func parsePairs(param string, items []string) ([]string, []float64, error) {
	names := make([]string, 0, len(items))
	values := make([]float64, 0, len(items))
	for _, item := range items {
		name, raw, ok := strings.Cut(item, "=")
		if !ok {
			name, raw, ok = strings.Cut(item, ":")
		}
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, nil, &ValidationError{Param: param, Message: fmt.Sprintf("%q must look like name=value", item)}
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, nil, &ValidationError{Param: param, Message: fmt.Sprintf("%q has no numeric value", item)}
		}
		names = append(names, name)
		values = append(values, v)
	}
	return names, values, nil
}

func runBudget(ctx context.Context, call Call) (Result, error) {
	names, amounts, err := parsePairs("expenses", call.GetStrings("expenses"))
	if err != nil {
		return Result{}, err
	}
	expenses := make(map[string]float64, len(names))
	for i, name := range names {
		expenses[name] += amounts[i]
	}

	res, err := finance.Budget(finance.BudgetInput{Income: call.GetFloat("income", 0), Expenses: expenses})
	if err != nil {
		return Result{}, err
	}

	rows := table{}
	for _, line := range res.Lines {
		rows = append(rows, [2]string{line.Name, fmt.Sprintf("%s (%s)", money(line.Amount), pct(line.Percent))})
	}
	rows = append(rows,
		[2]string{"Total expenses", money(res.TotalExpenses)},
		[2]string{"Remaining", money(res.Remaining)},
		[2]string{"Savings rate", pct(res.SavingsRate)},
	)
	if res.OverBudget {
		rows = append(rows, [2]string{"", "Over budget"})
	}
	return textResult(rows.String(), res), nil
}

func runAllocate(ctx context.Context, call Call) (Result, error) {
	income := call.GetFloat("income", 0)

	var res *finance.Allocation
	var err error
	if items := call.GetStrings("categories"); len(items) > 0 {
		names, percents, perr := parsePairs("categories", items)
		if perr != nil {
			return Result{}, perr
		}
		cats := make([]finance.Category, len(names))
		for i := range names {
			cats[i] = finance.Category{Name: names[i], Percent: percents[i]}
		}
		res, err = finance.Allocate(income, cats)
	} else {
		res, err = finance.FiftyThirtyTwenty(income)
	}
	if err != nil {
		return Result{}, err
	}

	rows := table{}
	for _, line := range res.Lines {
		rows = append(rows, [2]string{line.Name, fmt.Sprintf("%s (%s)", money(line.Amount), pct(line.Percent))})
	}
	if res.Unallocated > 0.005 {
		rows = append(rows, [2]string{"Unallocated", money(res.Unallocated)})
	}
	return textResult(rows.String(), res), nil
}

type currencyExecutor struct {
	conv *finance.Converter
}

func (e *currencyExecutor) Execute(ctx context.Context, call Call) (Result, error) {
	res, err := e.conv.Convert(call.GetFloat("amount", 0), call.GetString("from", finance.BaseCurrency), call.GetString("to", ""))
	if err != nil {
		return Result{}, err
	}
	out := fmt.Sprintf("%s %s = %s %s\n1 %s = %.6g %s",
		money(res.Amount), res.From, money(res.Result), res.To,
		res.From, res.Rate, res.To)
	return textResult(out, res), nil
}
