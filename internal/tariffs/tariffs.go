// Package tariffs reads and writes weekly tariffs as YAML:
//
//	unit: hour            # price unit, "minute" (default) or "hour"
//	default:              # every day not listed below
//	  - {from: "00:00", to: "24:00", price: 10}
//	weekend:              # saturday and sunday unless listed below
//	  - {from: "00:00", to: "24:00", price: 5}
//	days:
//	  friday:
//	    - {from: "08:00", to: "20:00", price: 12}
//
// Precedence is days, then weekdays/weekend, then default.
package tariffs

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/greenvvay/Parking/internal/domain"
)

const (
	UnitMinute = "minute"
	UnitHour   = "hour"
)

var dayNames = [domain.DaysInWeek]string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

type Entry struct {
	From  string  `yaml:"from"`
	To    string  `yaml:"to"`
	Price float64 `yaml:"price"`
}

type File struct {
	Unit     string             `yaml:"unit,omitempty"`
	Default  []Entry            `yaml:"default,omitempty"`
	Weekdays []Entry            `yaml:"weekdays,omitempty"`
	Weekend  []Entry            `yaml:"weekend,omitempty"`
	Days     map[string][]Entry `yaml:"days,omitempty"`
}

// Load reads and validates a tariff file.
func Load(path string) (domain.Tariff, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Tariff{}, fmt.Errorf("failed to read tariff file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, rejecting unknown fields, and returns a validated tariff.
func Parse(data []byte) (domain.Tariff, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return domain.Tariff{}, fmt.Errorf("%w: failed to parse YAML: %v", domain.ErrInvalidTariff, err)
	}
	return f.Tariff()
}

// Tariff resolves the file into a weekly tariff and validates it.
func (f File) Tariff() (domain.Tariff, error) {
	var factor float64
	switch strings.ToLower(f.Unit) {
	case "", UnitMinute:
		factor = 1
	case UnitHour:
		factor = 1.0 / 60
	default:
		return domain.Tariff{}, fmt.Errorf("%w: unknown unit %q", domain.ErrInvalidTariff, f.Unit)
	}

	seen := make(map[int]string, len(f.Days))
	for name := range f.Days {
		i := dayIndex(name)
		if i < 0 {
			return domain.Tariff{}, fmt.Errorf("%w: unknown day %q", domain.ErrInvalidTariff, name)
		}
		if other, dup := seen[i]; dup {
			return domain.Tariff{}, fmt.Errorf("%w: days %q and %q name the same day", domain.ErrInvalidTariff, other, name)
		}
		seen[i] = name
	}

	var t domain.Tariff
	for i, name := range dayNames {
		src := f.Default
		if i < 5 && f.Weekdays != nil {
			src = f.Weekdays
		}
		if i >= 5 && f.Weekend != nil {
			src = f.Weekend
		}
		for key, entries := range f.Days {
			if dayIndex(key) == i {
				src = entries
			}
		}

		day, err := convert(src, factor)
		if err != nil {
			return domain.Tariff{}, fmt.Errorf("%s: %w", name, err)
		}
		t[i] = day
	}

	if err := t.Validate(); err != nil {
		return domain.Tariff{}, err
	}
	return t, nil
}

// Encode writes t as a File with one list per day, prices per minute.
func Encode(w io.Writer, t domain.Tariff) error {
	f := File{Unit: UnitMinute, Days: make(map[string][]Entry, domain.DaysInWeek)}
	for i, day := range t {
		entries := make([]Entry, 0, len(day))
		for _, e := range day {
			entries = append(entries, Entry{
				From:  e.Interval.From.String(),
				To:    e.Interval.To.String(),
				Price: float64(e.Price),
			})
		}
		f.Days[dayNames[i]] = entries
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return err
	}
	return enc.Close()
}

func dayIndex(name string) int {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, d := range dayNames {
		if d == name || d[:3] == name {
			return i
		}
	}
	return -1
}

func convert(entries []Entry, factor float64) (domain.TariffDuringDay, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	out := make(domain.TariffDuringDay, 0, len(entries))
	for i, e := range entries {
		from, err := domain.ParseTimeOfDay(e.From)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		to, err := domain.ParseTimeOfDay(e.To)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out = append(out, domain.TariffEntry{
			Interval: domain.TimeInterval{From: from, To: to},
			Price:    domain.Price(e.Price * factor),
		})
	}
	return out, nil
}
