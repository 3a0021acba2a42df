// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "fmt"

// monthIndex counts months since year zero so dates compare as integers.
func (d SimDate) monthIndex() int {
	return d.Year*12 + d.Month - 1
}

// AddMonths returns the date n simulated months later (n may be negative).
func (d SimDate) AddMonths(n int) SimDate {
	idx := d.monthIndex() + n
	return SimDate{Month: idx%12 + 1, Year: idx / 12}
}

// After reports whether d is strictly later than o.
func (d SimDate) After(o SimDate) bool {
	return d.monthIndex() > o.monthIndex()
}

// Valid reports whether the month is in 1..12.
func (d SimDate) Valid() bool {
	return d.Month >= 1 && d.Month <= 12
}

func (d SimDate) String() string {
	return fmt.Sprintf("%02d/%d", d.Month, d.Year)
}

// Add credits weight to the total for choice.
func (t *Tally) Add(c Choice, weight int) {
	switch c {
	case ChoiceAye:
		t.Aye += weight
	case ChoiceNo:
		t.No += weight
	case ChoiceAbstain:
		t.Abstain += weight
	}
}
