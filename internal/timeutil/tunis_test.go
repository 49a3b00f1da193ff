package timeutil_test

import (
	"testing"
	"time"

	"megacrm-backend/internal/timeutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate_DayFirst(t *testing.T) {
	got, ok := timeutil.ParseDate("03/04/2026")
	require.True(t, ok)
	assert.Equal(t, 3, got.Day())
	assert.Equal(t, time.April, got.Month())
	assert.Equal(t, 2026, got.Year())
}

func TestParseDate_Fallbacks(t *testing.T) {
	cases := map[string]time.Month{
		"2026-05-07": time.May,
		"07-05-2026": time.May,
		"7/5/2026":   time.May,
		"12/25/2026": time.December,
	}
	for in, month := range cases {
		got, ok := timeutil.ParseDate(in)
		require.True(t, ok, in)
		assert.Equal(t, month, got.Month(), in)
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "  ", "yesterday", "32/13/2026"} {
		_, ok := timeutil.ParseDate(in)
		assert.False(t, ok, in)
	}
}

func TestFormatAndMonthKey(t *testing.T) {
	d := time.Date(2026, time.October, 9, 15, 30, 0, 0, timeutil.Business)
	assert.Equal(t, "09/10/2026", timeutil.FormatDate(d))
	assert.Equal(t, "10-2026", timeutil.MonthKey(d))
	assert.Equal(t, "[09/10/2026 15:30]", timeutil.Stamp(d))
	assert.Equal(t, "", timeutil.FormatOptionalDate(nil))

	m, ok := timeutil.ParseMonthKey("10-2026")
	require.True(t, ok)
	assert.Equal(t, time.October, m.Month())
}
