package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gdate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFromGregorian(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want Date
	}{
		{name: "epoch", in: gdate(622, time.July, 19), want: Date{1, 1, 1}},
		{name: "unix epoch", in: gdate(1970, time.January, 1), want: Date{1389, 10, 22}},
		{name: "y2k", in: gdate(2000, time.January, 1), want: Date{1420, 9, 24}},
		{name: "ramadan 1444", in: gdate(2023, time.March, 23), want: Date{1444, 9, 1}},
		{name: "ramadan 1445", in: gdate(2024, time.March, 11), want: Date{1445, 9, 1}},
		{name: "last day of leap year", in: gdate(2024, time.July, 7), want: Date{1445, 12, 30}},
		{name: "new year 1446", in: gdate(2024, time.July, 8), want: Date{1446, 1, 1}},
		{name: "ramadan 1446", in: gdate(2025, time.March, 1), want: Date{1446, 9, 1}},
		{name: "end of ramadan 1446", in: gdate(2025, time.March, 30), want: Date{1446, 9, 30}},
		{name: "arafah 1446", in: gdate(2025, time.June, 6), want: Date{1446, 12, 9}},
		{name: "last day of common year", in: gdate(2025, time.June, 26), want: Date{1446, 12, 29}},
		{name: "new year 1447", in: gdate(2025, time.June, 27), want: Date{1447, 1, 1}},
		{name: "time of day ignored", in: time.Date(2026, time.October, 19, 23, 59, 0, 0, time.UTC), want: Date{1448, 5, 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromGregorian(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromGregorian_beforeEpoch(t *testing.T) {
	_, err := FromGregorian(gdate(622, time.July, 18))
	assert.Equal(t, ErrBeforeEpoch, err)
}

func TestToGregorian(t *testing.T) {
	got, err := ToGregorian(Date{1446, 12, 10})
	require.NoError(t, err)
	assert.Equal(t, gdate(2025, time.June, 7), got)
	assert.Equal(t, time.UTC, got.Location())

	tests := []struct {
		name string
		in   Date
	}{
		{name: "month 0", in: Date{1446, 0, 1}},
		{name: "month 13", in: Date{1446, 13, 1}},
		{name: "day 0", in: Date{1446, 1, 0}},
		{name: "day 30 of even month", in: Date{1446, 2, 30}},
		{name: "day 30 of dhu al-hijjah in common year", in: Date{1446, 12, 30}},
		{name: "year 0", in: Date{0, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToGregorian(tt.in)
			assert.ErrorIs(t, err, ErrInvalidDate)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	start := gdate(622, time.July, 19)
	for day := start; day.Year() < 2200; day = day.AddDate(0, 0, 97) {
		h, err := FromGregorian(day)
		require.NoError(t, err)
		require.NoError(t, h.Validate(), day)
		back, err := ToGregorian(h)
		require.NoError(t, err)
		require.True(t, day.Equal(back), "%v -> %v -> %v", day, h, back)
	}
}

func TestLeapYearsAndMonthLengths(t *testing.T) {
	var leaps []int
	for y := 1440; y <= 1450; y++ {
		if IsLeapYear(y) {
			leaps = append(leaps, y)
		}
	}
	assert.Equal(t, []int{1442, 1445, 1447, 1450}, leaps)

	lengths := func(y int) []int {
		l := make([]int, 0, 12)
		for m := 1; m <= 12; m++ {
			l = append(l, DaysInMonth(y, m))
		}
		return l
	}
	assert.Equal(t, []int{30, 29, 30, 29, 30, 29, 30, 29, 30, 29, 30, 30}, lengths(1445))
	assert.Equal(t, []int{30, 29, 30, 29, 30, 29, 30, 29, 30, 29, 30, 29}, lengths(1446))
}

func TestDate_formatting(t *testing.T) {
	d := Date{1448, 5, 7}
	assert.Equal(t, "7 جمادى الأولى 1448 هـ", d.String())
	assert.Equal(t, "1448-05-07", d.Format())
	assert.Equal(t, "Jumada al-Ula", d.MonthNameEn())
	assert.Equal(t, "", Date{1448, 13, 1}.MonthName())

	parsed, err := ParseDate("1448-05-07")
	require.NoError(t, err)
	assert.Equal(t, d, parsed)

	for _, s := range []string{"", "1448-05", "1448-xx-07", "1448-02-30"} {
		_, err := ParseDate(s)
		assert.ErrorIs(t, err, ErrInvalidDate, s)
	}
}

func TestConverter_Adjustment(t *testing.T) {
	c := Converter{Adjustment: 1}
	h, err := c.FromGregorian(gdate(2025, time.February, 28))
	require.NoError(t, err)
	assert.Equal(t, Date{1446, 9, 1}, h)

	g, err := c.ToGregorian(Date{1446, 9, 1})
	require.NoError(t, err)
	assert.Equal(t, gdate(2025, time.February, 28), g)

	c = Converter{Adjustment: -1}
	h, err = c.FromGregorian(gdate(2025, time.March, 2))
	require.NoError(t, err)
	assert.Equal(t, Date{1446, 9, 1}, h)
}

func TestMonthGrid(t *testing.T) {
	days, err := MonthGrid(1446, 9)
	require.NoError(t, err)
	require.Len(t, days, 30)
	assert.Equal(t, gdate(2025, time.March, 1), days[0].Gregorian)
	assert.Equal(t, "Saturday", days[0].Weekday)
	assert.Equal(t, Date{1446, 9, 30}, days[29].Hijri)
	assert.Equal(t, gdate(2025, time.March, 30), days[29].Gregorian)

	_, err = MonthGrid(1446, 13)
	assert.Error(t, err)
}

func TestUpcomingOccasions(t *testing.T) {
	got, err := UpcomingOccasions(gdate(2026, time.October, 19), 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "isra_miraj", got[0].Key)
	assert.Equal(t, gdate(2027, time.January, 6), got[0].Gregorian)
	assert.Equal(t, "mid_shaban", got[1].Key)
	assert.Equal(t, gdate(2027, time.January, 24), got[1].Gregorian)
	assert.Equal(t, "ramadan_start", got[2].Key)
	assert.Equal(t, Date{1448, 9, 1}, got[2].Hijri)

	// the day itself is included and results cross into the next year
	got, err = UpcomingOccasions(gdate(2026, time.May, 27), 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "eid_al_adha", got[0].Key)
	assert.Equal(t, Date{1447, 12, 10}, got[0].Hijri)
	assert.Equal(t, "islamic_new_year", got[1].Key)
	assert.Equal(t, Date{1448, 1, 1}, got[1].Hijri)
	assert.Equal(t, gdate(2026, time.June, 17), got[1].Gregorian)

	got, err = UpcomingOccasions(gdate(2026, time.May, 27), 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}
