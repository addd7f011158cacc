package booking

import "time"

// The bookable day runs in fixed thirty-minute slots from 10:00 AM through
// 6:30 PM. Labels are the wire format for slot times.
const (
	slotLabelLayout  = "3:04 PM"
	firstSlotMinute  = 10 * 60
	lastSlotMinute   = 18*60 + 30
	slotStrideMinute = 30
)

var slotLabels = buildSlotLabels()

func buildSlotLabels() []string {
	labels := make([]string, 0, (lastSlotMinute-firstSlotMinute)/slotStrideMinute+1)
	for m := firstSlotMinute; m <= lastSlotMinute; m += slotStrideMinute {
		t := time.Date(0, time.January, 1, m/60, m%60, 0, 0, time.UTC)
		labels = append(labels, t.Format(slotLabelLayout))
	}
	return labels
}

// SlotLabels returns the ordered slot label sequence for one business day.
func SlotLabels() []string {
	out := make([]string, len(slotLabels))
	copy(out, slotLabels)
	return out
}

func isSlotLabel(label string) bool {
	for _, l := range slotLabels {
		if l == label {
			return true
		}
	}
	return false
}

const dateLayout = "2006-01-02"

// dateBeforeDay reports whether date (YYYY-MM-DD) falls strictly before the
// day containing now.
func dateBeforeDay(date string, now time.Time) (bool, error) {
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return false, err
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return d.Before(today), nil
}
