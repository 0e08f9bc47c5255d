// Package calendar converts between Gregorian and Hijri dates using the
// tabular (arithmetical) Islamic calendar with the civil epoch.
//
// Results are approximate: the observed calendar depends on moon sighting and
// can differ by one or two days. Converter.Adjustment compensates for that.
package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// islamicEpoch is the Julian Day Number preceding 1 Muharram 1 AH (civil epoch, 16 July 622 Julian).
const islamicEpoch = 1948439

var (
	ErrBeforeEpoch = errors.New("date is before the start of the Hijri calendar")
	ErrInvalidDate = errors.New("invalid hijri date")
)

var monthNames = [12]string{
	"محرم",
	"صفر",
	"ربيع الأول",
	"ربيع الآخر",
	"جمادى الأولى",
	"جمادى الآخرة",
	"رجب",
	"شعبان",
	"رمضان",
	"شوال",
	"ذو القعدة",
	"ذو الحجة",
}

var monthNamesEn = [12]string{
	"Muharram",
	"Safar",
	"Rabi al-Awwal",
	"Rabi al-Thani",
	"Jumada al-Ula",
	"Jumada al-Akhirah",
	"Rajab",
	"Shaban",
	"Ramadan",
	"Shawwal",
	"Dhu al-Qadah",
	"Dhu al-Hijjah",
}

// Date is a day of the Hijri calendar.
type Date struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

func (d Date) MonthName() string {
	if d.Month < 1 || d.Month > 12 {
		return ""
	}
	return monthNames[d.Month-1]
}

func (d Date) MonthNameEn() string {
	if d.Month < 1 || d.Month > 12 {
		return ""
	}
	return monthNamesEn[d.Month-1]
}

// String renders the date the way it is read in Arabic, e.g. "7 جمادى الأولى 1448 هـ".
func (d Date) String() string {
	return fmt.Sprintf("%d %s %d هـ", d.Day, d.MonthName(), d.Year)
}

// Format renders the date as YYYY-MM-DD.
func (d Date) Format() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func (d Date) Validate() error {
	if d.Year < 1 || d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Day > DaysInMonth(d.Year, d.Month) {
		return errors.Wrap(ErrInvalidDate, d.Format())
	}
	return nil
}

func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// ParseDate parses a YYYY-MM-DD Hijri date.
func ParseDate(s string) (Date, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return Date{}, errors.Wrap(ErrInvalidDate, s)
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Date{}, errors.Wrap(ErrInvalidDate, s)
		}
		nums[i] = n
	}
	d := Date{Year: nums[0], Month: nums[1], Day: nums[2]}
	if err := d.Validate(); err != nil {
		return Date{}, err
	}
	return d, nil
}

// IsLeapYear reports whether Dhu al-Hijjah has 30 days in year y (11 leap years per 30-year cycle).
func IsLeapYear(y int) bool {
	return mod(14+11*y, 30) < 11
}

// DaysInMonth returns 30 for odd months and 29 for even ones, except Dhu al-Hijjah in leap years.
func DaysInMonth(y, m int) int {
	if m == 12 && IsLeapYear(y) {
		return 30
	}
	if m%2 == 1 {
		return 30
	}
	return 29
}

// Converter converts dates, shifting Hijri results by Adjustment days.
type Converter struct {
	Adjustment int
}

var defaultConverter Converter

func (c Converter) FromGregorian(t time.Time) (Date, error) {
	jd := gregorianToJD(t.Year(), int(t.Month()), t.Day())
	if jd < hijriToJD(1, 1, 1) {
		return Date{}, ErrBeforeEpoch
	}
	jd += c.Adjustment
	if jd < hijriToJD(1, 1, 1) {
		return Date{}, ErrBeforeEpoch
	}
	return jdToHijri(jd), nil
}

// ToGregorian returns the Gregorian day of d at UTC midnight.
func (c Converter) ToGregorian(d Date) (time.Time, error) {
	if err := d.Validate(); err != nil {
		return time.Time{}, err
	}
	y, m, day := jdToGregorian(hijriToJD(d.Year, d.Month, d.Day) - c.Adjustment)
	return time.Date(y, time.Month(m), day, 0, 0, 0, 0, time.UTC), nil
}

func FromGregorian(t time.Time) (Date, error) { return defaultConverter.FromGregorian(t) }

func ToGregorian(d Date) (time.Time, error) { return defaultConverter.ToGregorian(d) }

// GridDay is a day of a Hijri month together with its Gregorian counterpart.
type GridDay struct {
	Hijri     Date      `json:"hijri"`
	Gregorian time.Time `json:"gregorian"`
	Weekday   string    `json:"weekday"`
}

// MonthGrid lists every day of the Hijri month y/m.
func (c Converter) MonthGrid(y, m int) ([]GridDay, error) {
	first := Date{Year: y, Month: m, Day: 1}
	start, err := c.ToGregorian(first)
	if err != nil {
		return nil, err
	}
	n := DaysInMonth(y, m)
	days := make([]GridDay, 0, n)
	for i := 0; i < n; i++ {
		g := start.AddDate(0, 0, i)
		days = append(days, GridDay{
			Hijri:     Date{Year: y, Month: m, Day: i + 1},
			Gregorian: g,
			Weekday:   g.Weekday().String(),
		})
	}
	return days, nil
}

func MonthGrid(y, m int) ([]GridDay, error) { return defaultConverter.MonthGrid(y, m) }

func hijriToJD(y, m, d int) int {
	return d + (59*(m-1)+1)/2 + (y-1)*354 + (3+11*y)/30 + islamicEpoch
}

func jdToHijri(jd int) Date {
	y := (30*(jd-islamicEpoch) + 10646) / 10631
	if jd < hijriToJD(y, 1, 1) {
		y--
	} else if jd >= hijriToJD(y+1, 1, 1) {
		y++
	}
	m := 1
	for m < 12 && jd >= hijriToJD(y, m+1, 1) {
		m++
	}
	return Date{Year: y, Month: m, Day: jd - hijriToJD(y, m, 1) + 1}
}

func gregorianToJD(y, m, d int) int {
	a := (14 - m) / 12
	y2 := y + 4800 - a
	m2 := m + 12*a - 3
	return d + (153*m2+2)/5 + 365*y2 + y2/4 - y2/100 + y2/400 - 32045
}

func jdToGregorian(jd int) (int, int, int) {
	a := jd + 32044
	b := (4*a + 3) / 146097
	c := a - 146097*b/4
	d := (4*c + 3) / 1461
	e := c - 1461*d/4
	m := (5*e + 2) / 153
	day := e - (153*m+2)/5 + 1
	month := m + 3 - 12*(m/10)
	year := 100*b + d - 4800 + m/10
	return year, month, day
}

func mod(a, b int) int {
	r := a % b
	if r < 0 {
		r += b
	}
	return r
}
