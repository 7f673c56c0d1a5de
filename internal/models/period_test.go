package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		raw      string
		expected ConstructionPeriod
	}{
		{"before1949", PeriodBefore1949},
		{"1975-1993", Period1975To1993},
		{"2011-onward", Period2011Onward},
		{"", PeriodUnknown},
		{"1975 - 1993", PeriodUnknown},
		{"after2011", PeriodUnknown},
		{"BEFORE1949", PeriodUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			p := ParsePeriod(tt.raw)
			assert.Equal(t, tt.expected, p)
			assert.Equal(t, tt.expected != PeriodUnknown, p.Known())
		})
	}
}

func TestConstructionPeriod_EndsBy(t *testing.T) {
	tests := []struct {
		period   ConstructionPeriod
		year     int
		expected bool
	}{
		{PeriodBefore1949, 1948, true},
		{Period1949To1960, 1959, false},
		{Period1961To1974, 1974, true},
		{Period1961To1974, 1973, false},
		{Period1975To1993, 1993, true},
		{Period1975To1993, 1992, false},
		{Period1994To2000, 2000, true},
		{Period1994To2000, 1999, false},
		{Period2001To2010, 2010, true},
		{Period2001To2010, 2009, false},
		{Period2011Onward, 3000, false},
		{PeriodUnknown, 3000, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.period.EndsBy(tt.year), "%q ends by %d", tt.period, tt.year)
	}
}

func TestConstructionPeriod_RankAndAnchor(t *testing.T) {
	for i, p := range Periods {
		assert.Equal(t, i, p.Rank())
		assert.Positive(t, p.AnchorYear())
	}
	assert.Equal(t, -1, PeriodUnknown.Rank())
	assert.Zero(t, PeriodUnknown.AnchorYear())
}
