package appointment

import (
	"fmt"
	"time"
)

const SlotInterval = 30 * time.Minute

// defaultGrid is the fixed morning and afternoon booking grid used when a
// doctor has no configured availability window.
var defaultGrid = []string{
	"09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
	"14:00", "14:30", "15:00", "15:30", "16:00", "16:30", "17:00",
}

// DefaultSlots returns a copy of the fixed half-hour grid.
func DefaultSlots() []string {
	out := make([]string, len(defaultGrid))
	copy(out, defaultGrid)
	return out
}

// WindowSlots walks from the doctor's start clock to the end clock in
// half-hour steps. The end clock is inclusive as a slot start: a window of
// 09:00-10:00 yields 09:00, 09:30, 10:00.
func WindowSlots(from, to string) ([]string, error) {
	start, err := parseClock(from)
	if err != nil {
		return nil, fmt.Errorf("invalid window start %q: %w", from, err)
	}
	end, err := parseClock(to)
	if err != nil {
		return nil, fmt.Errorf("invalid window end %q: %w", to, err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("window end %q must not be before start %q", to, from)
	}

	var slots []string
	for t := start; !t.After(end); t = t.Add(SlotInterval) {
		slots = append(slots, t.Format("15:04"))
	}
	return slots, nil
}

// NormalizeClock reduces a stored time-of-day to its "HH:MM" slot key.
// Accepts "14:00:00", "14:00" and "9:00" forms; anything unparseable is
// returned trimmed to the first five characters as a last resort so the
// comparison still matches what the row actually holds.
func NormalizeClock(raw string) string {
	if t, err := parseClock(raw); err == nil {
		return t.Format("15:04")
	}
	if len(raw) > 5 {
		return raw[:5]
	}
	return raw
}

func parseClock(raw string) (time.Time, error) {
	for _, layout := range []string{"15:04:05", "15:04", "3:04"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized clock value")
}
