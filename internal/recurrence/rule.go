// Package recurrence parses repeat rules for reminders and computes follow-up
// occurrences. Rules use a compact RRULE-style syntax, e.g.
// "FREQ=WEEKLY;BYDAY=SA" for a saturday shopping reminder.
package recurrence

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

type Freq int

const (
	Daily Freq = iota
	Weekly
	Monthly
)

var freqNames = map[Freq]string{
	Daily:   "DAILY",
	Weekly:  "WEEKLY",
	Monthly: "MONTHLY",
}

var freqFromName = map[string]Freq{
	"DAILY":   Daily,
	"WEEKLY":  Weekly,
	"MONTHLY": Monthly,
}

var dayNames = map[string]time.Weekday{
	"SU": time.Sunday,
	"MO": time.Monday,
	"TU": time.Tuesday,
	"WE": time.Wednesday,
	"TH": time.Thursday,
	"FR": time.Friday,
	"SA": time.Saturday,
}

var dayAbbrev = map[time.Weekday]string{
	time.Sunday:    "SU",
	time.Monday:    "MO",
	time.Tuesday:   "TU",
	time.Wednesday: "WE",
	time.Thursday:  "TH",
	time.Friday:    "FR",
	time.Saturday:  "SA",
}

// Rule describes how a reminder repeats. The zero value is not valid; build
// rules through Parse.
type Rule struct {
	Freq     Freq
	Interval int            // default 1; 2 = every other day/week/month
	ByDay    []time.Weekday // weekly only: which weekdays (empty = weekday of the base date)
	Until    *time.Time     // no occurrence after this instant (nil = forever)
}

// Parse parses a rule string like "FREQ=WEEKLY;BYDAY=MO,SA;INTERVAL=2".
// FREQ is mandatory; supported keys are FREQ, INTERVAL, BYDAY and UNTIL.
func Parse(s string) (Rule, error) {
	if s == "" {
		return Rule{}, fmt.Errorf("empty rule")
	}

	r := Rule{Interval: 1}
	var hasFreq bool

	for _, part := range strings.Split(s, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return Rule{}, fmt.Errorf("invalid rule part: %q", part)
		}
		key, val := kv[0], kv[1]

		switch key {
		case "FREQ":
			f, ok := freqFromName[val]
			if !ok {
				return Rule{}, fmt.Errorf("unknown frequency: %q", val)
			}
			r.Freq = f
			hasFreq = true

		case "INTERVAL":
			n, err := strconv.Atoi(val)
			if err != nil || n < 1 {
				return Rule{}, fmt.Errorf("invalid interval: %q", val)
			}
			r.Interval = n

		case "BYDAY":
			for _, d := range strings.Split(val, ",") {
				wd, ok := dayNames[strings.TrimSpace(d)]
				if !ok {
					return Rule{}, fmt.Errorf("unknown day: %q", d)
				}
				r.ByDay = append(r.ByDay, wd)
			}

		case "UNTIL":
			t, err := time.Parse("20060102T150405Z", val)
			if err != nil {
				t, err = time.Parse("20060102", val)
				if err != nil {
					return Rule{}, fmt.Errorf("invalid UNTIL: %q", val)
				}
			}
			r.Until = &t

		default:
			return Rule{}, fmt.Errorf("unsupported rule key: %q", key)
		}
	}

	if !hasFreq {
		return Rule{}, fmt.Errorf("FREQ is required")
	}
	if len(r.ByDay) > 0 && r.Freq != Weekly {
		return Rule{}, fmt.Errorf("BYDAY only applies to FREQ=WEEKLY")
	}

	return r, nil
}

// String serializes the rule back to its rule-string form.
func (r Rule) String() string {
	parts := []string{"FREQ=" + freqNames[r.Freq]}

	if r.Interval > 1 {
		parts = append(parts, fmt.Sprintf("INTERVAL=%d", r.Interval))
	}
	if len(r.ByDay) > 0 {
		days := make([]string, len(r.ByDay))
		for i, d := range r.ByDay {
			days[i] = dayAbbrev[d]
		}
		parts = append(parts, "BYDAY="+strings.Join(days, ","))
	}
	if r.Until != nil {
		parts = append(parts, "UNTIL="+r.Until.Format("20060102T150405Z"))
	}

	return strings.Join(parts, ";")
}

// Describe renders the rule for the reminder editing screen.
func (r Rule) Describe() string {
	var s string
	switch r.Freq {
	case Daily:
		s = "Tous les jours"
		if r.Interval > 1 {
			s = fmt.Sprintf("Tous les %d jours", r.Interval)
		}
	case Weekly:
		s = "Toutes les semaines"
		if r.Interval > 1 {
			s = fmt.Sprintf("Toutes les %d semaines", r.Interval)
		}
		if len(r.ByDay) > 0 {
			names := make([]string, len(r.ByDay))
			for i, d := range r.ByDay {
				names[i] = frenchDays[d]
			}
			s += " le " + strings.Join(names, ", ")
		}
	case Monthly:
		s = "Tous les mois"
		if r.Interval > 1 {
			s = fmt.Sprintf("Tous les %d mois", r.Interval)
		}
	}
	return s
}

var frenchDays = map[time.Weekday]string{
	time.Sunday:    "dimanche",
	time.Monday:    "lundi",
	time.Tuesday:   "mardi",
	time.Wednesday: "mercredi",
	time.Thursday:  "jeudi",
	time.Friday:    "vendredi",
	time.Saturday:  "samedi",
}

// Next returns the first occurrence strictly after the given instant, seeded
// from base (the reminder's original date, which fixes the time of day). The
// zero time means the rule has run out.
func (r Rule) Next(base, after time.Time) time.Time {
	if r.Interval < 1 {
		r.Interval = 1
	}

	var candidate time.Time
	switch r.Freq {
	case Weekly:
		if len(r.ByDay) > 0 {
			candidate = r.nextByDay(base, after)
			break
		}
		candidate = advance(base, after, func(t time.Time) time.Time {
			return t.AddDate(0, 0, 7*r.Interval)
		})
	case Monthly:
		candidate = r.nextMonthly(base, after)
	default:
		candidate = advance(base, after, func(t time.Time) time.Time {
			return t.AddDate(0, 0, r.Interval)
		})
	}

	if r.Until != nil && candidate.After(*r.Until) {
		return time.Time{}
	}
	return candidate
}

// advance steps from base until it passes after.
func advance(base, after time.Time, step func(time.Time) time.Time) time.Time {
	t := base
	for !t.After(after) {
		t = step(t)
	}
	return t
}

// nextByDay walks the selected weekdays week by week, at the base time of
// day, starting from the week of the base date.
func (r Rule) nextByDay(base, after time.Time) time.Time {
	offsets := make([]int, len(r.ByDay))
	for i, wd := range r.ByDay {
		offsets[i] = (int(wd) - int(time.Monday) + 7) % 7
	}
	sort.Ints(offsets)

	week := startOfWeek(base)
	for {
		for _, offset := range offsets {
			day := week.AddDate(0, 0, offset)
			candidate := time.Date(day.Year(), day.Month(), day.Day(),
				base.Hour(), base.Minute(), base.Second(), 0, base.Location())
			if candidate.After(after) && !candidate.Before(base) {
				return candidate
			}
		}
		week = week.AddDate(0, 0, 7*r.Interval)
	}
}

// nextMonthly repeats on the base's day of month, clamped to shorter months.
func (r Rule) nextMonthly(base, after time.Time) time.Time {
	day := base.Day()
	t := base
	for !t.After(after) {
		first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, r.Interval, 0)
		d := day
		if last := daysInMonth(first.Year(), first.Month()); d > last {
			d = last
		}
		t = time.Date(first.Year(), first.Month(), d,
			base.Hour(), base.Minute(), base.Second(), 0, base.Location())
	}
	return t
}

func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	day := t.AddDate(0, 0, -offset)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, t.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
