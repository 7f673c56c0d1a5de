package models

import "math"

// ConstructionPeriod is one of the registry's construction-date buckets.
// The empty value means the period is unknown.
type ConstructionPeriod string

const (
	PeriodUnknown    ConstructionPeriod = ""
	PeriodBefore1949 ConstructionPeriod = "before1949"
	Period1949To1960 ConstructionPeriod = "1949-1960"
	Period1961To1974 ConstructionPeriod = "1961-1974"
	Period1975To1993 ConstructionPeriod = "1975-1993"
	Period1994To2000 ConstructionPeriod = "1994-2000"
	Period2001To2010 ConstructionPeriod = "2001-2010"
	Period2011Onward ConstructionPeriod = "2011-onward"
)

// Periods lists the buckets from oldest to most recent.
var Periods = [...]ConstructionPeriod{
	PeriodBefore1949,
	Period1949To1960,
	Period1961To1974,
	Period1975To1993,
	Period1994To2000,
	Period2001To2010,
	Period2011Onward,
}

var periodLastYear = [...]int{1948, 1960, 1974, 1993, 2000, 2010, math.MaxInt32}

// anchor years are representative, not real construction dates
var periodAnchorYear = [...]int{1940, 1955, 1968, 1985, 1997, 2005, 2015}

// Rank returns the bucket position (0 = oldest) or -1 when unknown.
func (p ConstructionPeriod) Rank() int {
	for i, candidate := range Periods {
		if candidate == p {
			return i
		}
	}
	return -1
}

func (p ConstructionPeriod) Known() bool { return p.Rank() >= 0 }

// EndsBy reports whether every year of a known bucket is <= year.
func (p ConstructionPeriod) EndsBy(year int) bool {
	r := p.Rank()
	if r < 0 {
		return false
	}
	return periodLastYear[r] <= year
}

// AnchorYear returns the representative year used to place the bucket on a
// timeline, or 0 when unknown.
func (p ConstructionPeriod) AnchorYear() int {
	r := p.Rank()
	if r < 0 {
		return 0
	}
	return periodAnchorYear[r]
}

// ParsePeriod maps a raw registry label onto a bucket; anything
// unrecognised becomes PeriodUnknown.
func ParsePeriod(raw string) ConstructionPeriod {
	p := ConstructionPeriod(raw)
	if p.Known() {
		return p
	}
	return PeriodUnknown
}
