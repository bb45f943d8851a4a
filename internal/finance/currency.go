// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package finance

import (
	"sort"
	"strings"
	"sync"
)

// BaseCurrency is the unit every rate in a Converter is expressed against.
const BaseCurrency = "USD"

// DefaultRates is a static units-per-USD table used when no configuration
// overrides it.
var DefaultRates = map[string]float64{
	"USD": 1,
	"EUR": 0.92,
	"GBP": 0.79,
	"JPY": 149.5,
	"CAD": 1.36,
	"AUD": 1.52,
	"CHF": 0.88,
	"CNY": 7.24,
	"INR": 83.1,
	"MXN": 17.1,
	"BRL": 4.97,
	"KRW": 1330,
	"SEK": 10.4,
	"NZD": 1.63,
	"SGD": 1.34,
}

// Conversion is the result of converting an amount between currencies.
type Conversion struct {
	Amount float64 `json:"amount" yaml:"amount"`
	From   string  `json:"from" yaml:"from"`
	To     string  `json:"to" yaml:"to"`
	Rate   float64 `json:"rate" yaml:"rate"`
	Result float64 `json:"result" yaml:"result"`
}

// Converter converts between currencies using cross rates through USD.
type Converter struct {
	mu    sync.RWMutex
	rates map[string]float64
}

// NewConverter builds a converter from a units-per-USD table. A nil or
// empty table falls back to DefaultRates.
func NewConverter(rates map[string]float64) (*Converter, error) {
	if len(rates) == 0 {
		rates = DefaultRates
	}
	c := &Converter{rates: make(map[string]float64, len(rates)+1)}
	for code, rate := range rates {
		if err := c.SetRate(code, rate); err != nil {
			return nil, err
		}
	}
	if _, ok := c.rates[BaseCurrency]; !ok {
		c.rates[BaseCurrency] = 1
	}
	return c, nil
}

// SetRate updates one currency's units-per-USD rate.
func (c *Converter) SetRate(code string, rate float64) error {
	code, err := normalizeCode(code)
	if err != nil {
		return err
	}
	if !finite(rate) || rate <= 0 {
		return invalid("rate for %s must be greater than zero", code)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rates[code] = rate
	return nil
}

// Rate returns how many units of to one unit of from buys.
func (c *Converter) Rate(from, to string) (float64, error) {
	from, err := normalizeCode(from)
	if err != nil {
		return 0, err
	}
	to, err = normalizeCode(to)
	if err != nil {
		return 0, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	fromRate, ok := c.rates[from]
	if !ok {
		return 0, invalid("unsupported currency %s", from)
	}
	toRate, ok := c.rates[to]
	if !ok {
		return 0, invalid("unsupported currency %s", to)
	}
	return toRate / fromRate, nil
}

// Convert converts amount from one currency into another.
func (c *Converter) Convert(amount float64, from, to string) (*Conversion, error) {
	if !finite(amount) || amount < 0 {
		return nil, invalid("amount must be zero or positive")
	}
	rate, err := c.Rate(from, to)
	if err != nil {
		return nil, err
	}
	return &Conversion{
		Amount: amount,
		From:   strings.ToUpper(strings.TrimSpace(from)),
		To:     strings.ToUpper(strings.TrimSpace(to)),
		Rate:   rate,
		Result: amount * rate,
	}, nil
}

// Currencies lists the supported ISO codes in alphabetical order.
func (c *Converter) Currencies() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	codes := make([]string, 0, len(c.rates))
	for code := range c.rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func normalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", invalid("currency code %q must be three letters", code)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", invalid("currency code %q must be three letters", code)
		}
	}
	return code, nil
}
