// Package timeslot normalises the wall-clock strings lawyers publish and
// clients book ("6:30 am", "06:30", "18:00:00") into a single canonical
// half-hour slot representation.
//
// A Slot is the number of minutes since midnight.  Its textual form is
// always the 12-hour "H:MM AM" rendering, which is what availability rows
// and meetings store, so two spellings of the same time compare equal both
// as strings and as integers.
package timeslot

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Slot is a time of day expressed in minutes since midnight (0..1439).
type Slot int

const (
	// Step is the width of a bookable slot in minutes.
	Step = 30
	// PerDay is the number of Step-wide slots between 00:00 and 23:30.
	PerDay = 24 * 60 / Step

	minutesPerDay = 24 * 60
)

// ErrInvalidTime is returned by Parse when the text matches neither the
// 12-hour nor the 24-hour format, or carries an out of range component.
var ErrInvalidTime = errors.New("invalid time of day")

var (
	twelveHour = regexp.MustCompile(`(?i)^(\d{1,2})(:\d{2})?\s*(am|pm)$`)
	twentyFour = regexp.MustCompile(`^(\d{1,2}):(\d{2})(:\d{2})?$`)
)

// Parse converts text to a Slot and reports malformed input.  Accepted
// forms are "H[:MM] am|pm" (case-insensitive, optional space) and
// "HH:MM[:SS]".  Seconds are accepted but discarded.
func Parse(text string) (Slot, error) {
	s := strings.TrimSpace(text)
	if m := twelveHour.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2][1:])
		}
		if hour < 1 || hour > 12 || minute > 59 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, text)
		}
		pm := strings.EqualFold(m[3], "pm")
		switch {
		case hour == 12 && !pm:
			hour = 0
		case hour < 12 && pm:
			hour += 12
		}
		return Slot(hour*60 + minute), nil
	}
	if m := twentyFour.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour > 23 || minute > 59 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, text)
		}
		if m[3] != "" {
			if sec, _ := strconv.Atoi(m[3][1:]); sec > 59 {
				return 0, fmt.Errorf("%w: %q", ErrInvalidTime, text)
			}
		}
		return Slot(hour*60 + minute), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidTime, text)
}

// Normalize is the lenient form of Parse: anything it cannot read becomes
// midnight.  Callers that must not store a wrong slot use Parse instead.
func Normalize(text string) Slot {
	s, err := Parse(text)
	if err != nil {
		return 0
	}
	return s
}

// Canonical returns the canonical string for text, using Normalize.
func Canonical(text string) string { return Normalize(text).String() }

// Minutes returns the number of minutes since midnight.
func (s Slot) Minutes() int { return int(s) }

// Valid reports whether s lies within a single day.
func (s Slot) Valid() bool { return s >= 0 && int(s) < minutesPerDay }

// String renders s as "H:MM AM" with an unpadded hour and upper-case suffix.
func (s Slot) String() string {
	h, m := int(s)/60, int(s)%60
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h %= 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, m, suffix)
}

// NormalizeSet canonicalises every entry, drops duplicates and returns the
// slots in ascending order.
func NormalizeSet(texts []string) []Slot {
	seen := make(map[Slot]struct{}, len(texts))
	out := make([]Slot, 0, len(texts))
	for _, t := range texts {
		s := Normalize(t)
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	Sort(out)
	return out
}

// Sort orders slots ascending in place.
func Sort(slots []Slot) {
	sort.Slice(slots, func(i, j int) bool { return slots[i] < slots[j] })
}

// Strings renders each slot canonically, preserving order.
func Strings(slots []Slot) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.String()
	}
	return out
}

// Day returns the 48 half-hour slots of a day, 12:00 AM through 11:30 PM.
func Day() []Slot {
	out := make([]Slot, PerDay)
	for i := range out {
		out[i] = Slot(i * Step)
	}
	return out
}

// Next returns the slot that follows s in the half-hour universe.  It
// reports false when s is the last slot of the day or is not itself on a
// half-hour boundary.
func Next(s Slot) (Slot, bool) {
	if !s.Valid() || int(s)%Step != 0 {
		return 0, false
	}
	n := s + Step
	if int(n) >= minutesPerDay {
		return 0, false
	}
	return n, true
}
