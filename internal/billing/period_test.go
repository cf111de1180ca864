package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolvePeriodDefaultRule(t *testing.T) {
	cases := []struct {
		name      string
		start     time.Time
		frequency int
		want      time.Time
	}{
		{"weekly", date(2024, time.March, 4), 7, date(2024, time.March, 10)},
		{"fortnightly", date(2024, time.March, 4), 14, date(2024, time.March, 17)},
		{"single day", date(2024, time.March, 4), 1, date(2024, time.March, 4)},
		{"thirty days mid-month", date(2024, time.March, 15), 30, date(2024, time.April, 13)},
		{"crosses year end", date(2024, time.December, 20), 14, date(2025, time.January, 2)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			end, err := ResolvePeriod(tc.start, tc.frequency)
			require.NoError(t, err)
			require.Equal(t, tc.want, end)
		})
	}
}

func TestResolvePeriodCalendarMonthRule(t *testing.T) {
	cases := []struct {
		name  string
		start time.Time
		want  time.Time
	}{
		{"march", date(2024, time.March, 1), date(2024, time.March, 31)},
		{"april", date(2024, time.April, 1), date(2024, time.April, 30)},
		{"february leap year", date(2024, time.February, 1), date(2024, time.February, 29)},
		{"february non-leap year", date(2023, time.February, 1), date(2023, time.February, 28)},
		{"december", date(2024, time.December, 1), date(2024, time.December, 31)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			end, err := ResolvePeriod(tc.start, 30)
			require.NoError(t, err)
			require.Equal(t, tc.want, end)
		})
	}
}

func TestResolvePeriodMonthRuleOnlyOnFirstDay(t *testing.T) {
	// A 30-day cycle anchored off the first of the month stays plain day
	// arithmetic: start + 29 days.
	end, err := ResolvePeriod(date(2024, time.February, 15), 30)
	require.NoError(t, err)
	require.Equal(t, date(2024, time.March, 15), end)
}

func TestResolvePeriodRejectsNonPositiveFrequency(t *testing.T) {
	for _, freq := range []int{0, -1, -30} {
		_, err := ResolvePeriod(date(2024, time.March, 1), freq)
		var invalid *InvalidPeriodError
		require.ErrorAs(t, err, &invalid)
		require.Equal(t, freq, invalid.FrequencyDays)
	}
}

func TestResolvePeriodEndNeverBeforeStart(t *testing.T) {
	starts := []time.Time{
		date(2023, time.February, 1),
		date(2024, time.February, 29),
		date(2024, time.June, 17),
		date(2024, time.December, 31),
	}
	for _, start := range starts {
		for freq := 1; freq <= 60; freq++ {
			end, err := ResolvePeriod(start, freq)
			require.NoError(t, err)
			require.False(t, end.Before(start), "start %s frequency %d", start, freq)
		}
	}
}

func TestResolvePeriodNormalizesTimestamps(t *testing.T) {
	start := time.Date(2024, time.March, 1, 17, 45, 12, 0, time.UTC)
	end, err := ResolvePeriod(start, 30)
	require.NoError(t, err)
	require.Equal(t, date(2024, time.March, 31), end)
}

func TestPeriodContains(t *testing.T) {
	period, err := NewPeriod("C2201", date(2024, time.March, 1), 30)
	require.NoError(t, err)
	require.Equal(t, date(2024, time.March, 31), period.EndDate)

	require.True(t, period.Contains(date(2024, time.March, 1)))
	require.True(t, period.Contains(date(2024, time.March, 31)))
	require.True(t, period.Contains(time.Date(2024, time.March, 31, 23, 59, 0, 0, time.UTC)))
	require.False(t, period.Contains(date(2024, time.February, 29)))
	require.False(t, period.Contains(date(2024, time.April, 1)))
}
