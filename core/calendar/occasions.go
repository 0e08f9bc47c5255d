package calendar

import (
	"time"
)

// Occasion is an annual Islamic occasion falling on a fixed Hijri day.
type Occasion struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	NameEn string `json:"name_en"`
	Month  int    `json:"month"`
	Day    int    `json:"day"`
}

// Occasions are ordered by their place in the Hijri year.
var Occasions = []Occasion{
	{Key: "islamic_new_year", Name: "رأس السنة الهجرية", NameEn: "Islamic New Year", Month: 1, Day: 1},
	{Key: "ashura", Name: "يوم عاشوراء", NameEn: "Day of Ashura", Month: 1, Day: 10},
	{Key: "mawlid", Name: "المولد النبوي", NameEn: "Mawlid an-Nabi", Month: 3, Day: 12},
	{Key: "isra_miraj", Name: "الإسراء والمعراج", NameEn: "Isra and Mi'raj", Month: 7, Day: 27},
	{Key: "mid_shaban", Name: "ليلة النصف من شعبان", NameEn: "Mid-Sha'ban", Month: 8, Day: 15},
	{Key: "ramadan_start", Name: "بداية رمضان", NameEn: "Start of Ramadan", Month: 9, Day: 1},
	{Key: "laylat_al_qadr", Name: "ليلة القدر", NameEn: "Laylat al-Qadr", Month: 9, Day: 27},
	{Key: "eid_al_fitr", Name: "عيد الفطر", NameEn: "Eid al-Fitr", Month: 10, Day: 1},
	{Key: "arafah", Name: "يوم عرفة", NameEn: "Day of Arafah", Month: 12, Day: 9},
	{Key: "eid_al_adha", Name: "عيد الأضحى", NameEn: "Eid al-Adha", Month: 12, Day: 10},
}

// OccasionDate is an Occasion resolved for a given Hijri year.
type OccasionDate struct {
	Occasion
	Hijri     Date      `json:"hijri"`
	Gregorian time.Time `json:"gregorian"`
}

// OccasionsInYear resolves every occasion of Hijri year y.
func (c Converter) OccasionsInYear(y int) ([]OccasionDate, error) {
	dates := make([]OccasionDate, 0, len(Occasions))
	for _, occ := range Occasions {
		hd := Date{Year: y, Month: occ.Month, Day: occ.Day}
		g, err := c.ToGregorian(hd)
		if err != nil {
			return nil, err
		}
		dates = append(dates, OccasionDate{Occasion: occ, Hijri: hd, Gregorian: g})
	}
	return dates, nil
}

// UpcomingOccasions returns the next n occasions falling on or after the day of `from`, in chronological order.
func (c Converter) UpcomingOccasions(from time.Time, n int) ([]OccasionDate, error) {
	if n <= 0 {
		return []OccasionDate{}, nil
	}
	today, err := c.FromGregorian(from)
	if err != nil {
		return nil, err
	}
	fromDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)

	upcoming := make([]OccasionDate, 0, n)
	for y := today.Year; len(upcoming) < n; y++ {
		dates, err := c.OccasionsInYear(y)
		if err != nil {
			return nil, err
		}
		for _, od := range dates {
			if od.Gregorian.Before(fromDay) {
				continue
			}
			upcoming = append(upcoming, od)
			if len(upcoming) == n {
				break
			}
		}
	}
	return upcoming, nil
}

func UpcomingOccasions(from time.Time, n int) ([]OccasionDate, error) {
	return defaultConverter.UpcomingOccasions(from, n)
}
