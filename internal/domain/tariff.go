package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Price is an amount in the base currency unit.
type Price float64

const (
	DaysInWeek    = 7
	MinutesPerDay = 24 * 60
)

// TimeOfDay is a wall-clock mark within one day, without a date.
// 24:00 is accepted as the end of an interval.
type TimeOfDay struct {
	Hour   uint8 `json:"hour" yaml:"hour"`
	Minute uint8 `json:"minute" yaml:"minute"`
}

func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: uint8(t.Hour()), Minute: uint8(t.Minute())}
}

// Minutes returns the number of minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return int(t.Hour)*60 + int(t.Minute)
}

func (t TimeOfDay) Valid() bool {
	if t.Hour == 24 {
		return t.Minute == 0
	}
	return t.Hour < 24 && t.Minute < 60
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(text []byte) error {
	parsed, err := ParseTimeOfDay(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseTimeOfDay reads "HH:MM". The hour may have one digit; nothing may
// follow the minutes.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	hs, ms, ok := strings.Cut(s, ":")
	if !ok || len(hs) < 1 || len(hs) > 2 || len(ms) != 2 || !allDigits(hs) || !allDigits(ms) {
		return TimeOfDay{}, fmt.Errorf("%w: bad time of day %q", ErrInvalidTariff, s)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: bad time of day %q", ErrInvalidTariff, s)
	}
	m, err := strconv.Atoi(ms)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: bad time of day %q", ErrInvalidTariff, s)
	}
	if h < 0 || m < 0 || h > 24 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: time of day %q out of range", ErrInvalidTariff, s)
	}
	t := TimeOfDay{Hour: uint8(h), Minute: uint8(m)}
	if !t.Valid() {
		return TimeOfDay{}, fmt.Errorf("%w: time of day %q out of range", ErrInvalidTariff, s)
	}
	return t, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

type TimeInterval struct {
	From TimeOfDay `json:"from" yaml:"from"`
	To   TimeOfDay `json:"to" yaml:"to"`
}

// TariffEntry prices every minute that falls inside Interval.
type TariffEntry struct {
	Interval TimeInterval `json:"interval" yaml:"interval"`
	Price    Price        `json:"price" yaml:"price"` // per minute
}

// TariffDuringDay is scanned in order. Intervals are expected not to overlap,
// but overlapping entries are not rejected: each one is charged on its own.
type TariffDuringDay []TariffEntry

// Tariff is a weekly schedule, index 0 is Monday. An empty day costs nothing.
type Tariff [DaysInWeek]TariffDuringDay

// WeekdayIndex maps time.Weekday (Sunday = 0) onto the tariff index (Monday = 0).
func WeekdayIndex(d time.Weekday) int {
	return (int(d) + 6) % DaysInWeek
}

// UniformTariff charges the same price per minute around the clock, every day.
func UniformTariff(price Price) Tariff {
	var t Tariff
	for i := range t {
		t[i] = TariffDuringDay{{
			Interval: TimeInterval{From: TimeOfDay{0, 0}, To: TimeOfDay{24, 0}},
			Price:    price,
		}}
	}
	return t
}

func (t Tariff) Validate() error {
	for day, entries := range t {
		for i, e := range entries {
			if !e.Interval.From.Valid() || !e.Interval.To.Valid() {
				return fmt.Errorf("%w: day %d entry %d has an invalid time", ErrInvalidTariff, day, i)
			}
			if e.Interval.From.Minutes() > e.Interval.To.Minutes() {
				return fmt.Errorf("%w: day %d entry %d ends (%s) before it starts (%s)",
					ErrInvalidTariff, day, i, e.Interval.To, e.Interval.From)
			}
			p := float64(e.Price)
			if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
				return fmt.Errorf("%w: day %d entry %d has price %v", ErrInvalidTariff, day, i, e.Price)
			}
		}
	}
	return nil
}

// Clone returns a deep copy; the day slices of the copy share nothing with t.
func (t Tariff) Clone() Tariff {
	var out Tariff
	for i, day := range t {
		if day == nil {
			continue
		}
		out[i] = append(TariffDuringDay(nil), day...)
	}
	return out
}
