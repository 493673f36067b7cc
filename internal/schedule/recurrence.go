// Package schedule expands recurring workout requests into concrete occurrences.
package schedule

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Frequency of a recurring workout.
type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

const (
	// DefaultOccurrences caps a rule that names neither a count nor an end date.
	DefaultOccurrences = 52
	// MaxOccurrences is the largest count a caller may ask for.
	MaxOccurrences = 365
)

var ErrInvalidRule = errors.New("invalid recurrence rule")

// Rule describes how a workout repeats. Weekdays use the 0=Sunday..6=Saturday
// convention of browser clients; 7 is accepted as Sunday too.
type Rule struct {
	Frequency   Frequency
	Interval    int
	DaysOfWeek  []int
	Until       *time.Time
	Occurrences *int
}

// Occurrence is one concrete session produced by a rule.
type Occurrence struct {
	Start time.Time
	End   time.Time
}

// Expander holds the occurrence limits. The zero value uses the package defaults.
type Expander struct {
	DefaultOccurrences int
	MaxOccurrences     int
}

// Expand materialises every occurrence of rule for a session spanning start..end.
// The first occurrence is always start..end as given, even when Until falls
// before it; Until only bounds the repeats.
func Expand(start, end time.Time, rule Rule) ([]Occurrence, error) {
	return Expander{}.Expand(start, end, rule)
}

func (e Expander) Expand(start, end time.Time, rule Rule) ([]Occurrence, error) {
	limit, err := e.validate(start, end, &rule)
	if err != nil {
		return nil, err
	}

	duration := end.Sub(start)
	next := e.stepper(start, rule)

	out := make([]Occurrence, 0, limit)
	out = append(out, Occurrence{Start: start, End: end})
	current := start
	for len(out) < limit {
		current = next(current, len(out))
		if rule.Until != nil && current.After(*rule.Until) {
			break
		}
		out = append(out, Occurrence{Start: current, End: current.Add(duration)})
	}
	return out, nil
}

func (e Expander) validate(start, end time.Time, rule *Rule) (int, error) {
	if !end.After(start) {
		return 0, fmt.Errorf("%w: end must be after start", ErrInvalidRule)
	}
	switch rule.Frequency {
	case Daily, Weekly, Monthly:
	default:
		return 0, fmt.Errorf("%w: unknown frequency %q", ErrInvalidRule, rule.Frequency)
	}
	if rule.Interval < 0 {
		return 0, fmt.Errorf("%w: interval must be positive", ErrInvalidRule)
	}
	if rule.Interval == 0 {
		rule.Interval = 1
	}
	for _, d := range rule.DaysOfWeek {
		if d < 0 || d > 7 {
			return 0, fmt.Errorf("%w: weekday %d out of range", ErrInvalidRule, d)
		}
	}
	ceiling := e.MaxOccurrences
	if ceiling <= 0 {
		ceiling = MaxOccurrences
	}
	if rule.Occurrences == nil {
		def := e.DefaultOccurrences
		if def <= 0 {
			def = DefaultOccurrences
		}
		if def > ceiling {
			def = ceiling
		}
		return def, nil
	}
	n := *rule.Occurrences
	if n < 1 || n > ceiling {
		return 0, fmt.Errorf("%w: occurrences must be between 1 and %d", ErrInvalidRule, ceiling)
	}
	return n, nil
}

// stepper returns the function producing occurrence n from occurrence n-1.
// All arithmetic goes through AddDate so wall-clock time survives DST shifts.
func (e Expander) stepper(start time.Time, rule Rule) func(prev time.Time, n int) time.Time {
	interval := rule.Interval
	switch rule.Frequency {
	case Daily:
		return func(prev time.Time, _ int) time.Time {
			return prev.AddDate(0, 0, interval)
		}
	case Monthly:
		return func(_ time.Time, n int) time.Time {
			return addMonthsClamped(start, n*interval)
		}
	}

	days := isoWeekdays(rule.DaysOfWeek)
	if len(days) == 0 {
		return func(prev time.Time, _ int) time.Time {
			return prev.AddDate(0, 0, 7*interval)
		}
	}
	return func(prev time.Time, _ int) time.Time {
		cur := isoWeekday(prev.Weekday())
		for _, d := range days {
			if d > cur {
				return prev.AddDate(0, 0, d-cur)
			}
		}
		// Wrap to the first allowed day of the week `interval` weeks ahead.
		return prev.AddDate(0, 0, (7-cur)+days[0]+7*(interval-1))
	}
}

// addMonthsClamped moves t forward by months keeping its day of month,
// or the last day of the target month when that day does not exist.
func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first.Year(), first.Month(), t.Location()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// isoWeekday maps Sunday-first weekdays to Monday=0..Sunday=6 so a week runs Mon..Sun.
func isoWeekday(d time.Weekday) int {
	return (int(d) + 6) % 7
}

func isoWeekdays(in []int) []int {
	seen := make(map[int]bool, len(in))
	out := make([]int, 0, len(in))
	for _, d := range in {
		iso := isoWeekday(time.Weekday(d % 7))
		if !seen[iso] {
			seen[iso] = true
			out = append(out, iso)
		}
	}
	sort.Ints(out)
	return out
}
