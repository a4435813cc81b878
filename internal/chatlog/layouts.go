package chatlog

import (
	"strconv"
	"strings"
)

// Go's non-padded elements ("1", "2", "3", "15") accept one or two digits, so a
// single layout covers both 1/2/24 and 01/02/24. "06" takes exactly two year
// digits and "2006" exactly four, so the year width picks the layout.
var (
	dmyDates = []string{"2/1/06", "2/1/2006"}
	mdyDates = []string{"1/2/06", "1/2/2006"}

	clockLayouts = []string{"15:04", "15:04:05", "3:04 PM", "3:04:05 PM"}
)

// layout is a candidate time.Parse layout with the textual features it expects.
type layout struct {
	value   string
	seconds bool
	ampm    bool
}

// accepts reports whether the time text has the shape this layout expects.
func (l layout) accepts(clock string) bool {
	hasSeconds := strings.Count(clock, ":") >= 2
	hasAMPM := strings.HasSuffix(clock, " AM") || strings.HasSuffix(clock, " PM")
	return l.seconds == hasSeconds && l.ampm == hasAMPM
}

// layoutsFor returns the ordered candidates for the primary date order, followed
// by the fallback order's candidates when one is given.
func layoutsFor(primary DateOrder, fallback DateOrder) []layout {
	var out []layout
	for _, order := range []DateOrder{primary, fallback} {
		var dates []string
		switch order {
		case DateOrderDMY:
			dates = dmyDates
		case DateOrderMDY:
			dates = mdyDates
		default:
			continue
		}
		for _, d := range dates {
			for _, c := range clockLayouts {
				out = append(out, layout{
					value:   d + " " + c,
					seconds: strings.Count(c, ":") == 2,
					ampm:    strings.HasSuffix(c, "PM"),
				})
			}
		}
	}
	return out
}

// orderEvidence tallies dates whose first or second field can only be a day.
type orderEvidence struct {
	dayFirst   int
	monthFirst int
}

func (e *orderEvidence) observe(date string) {
	parts := strings.SplitN(date, "/", 3)
	if len(parts) != 3 {
		return
	}
	first, err1 := strconv.Atoi(parts[0])
	second, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return
	}
	switch {
	case first > 12 && second <= 12:
		e.dayFirst++
	case second > 12 && first <= 12:
		e.monthFirst++
	}
}

// resolve picks the primary order and the fallback for a configured hint. An
// explicit hint has no fallback. Auto prefers day-first unless the dates prove
// otherwise, and keeps the other order as fallback for lines the primary rejects.
func (e orderEvidence) resolve(hint DateOrder) (primary, fallback DateOrder) {
	switch hint {
	case DateOrderDMY, DateOrderMDY:
		return hint, ""
	}
	if e.monthFirst > e.dayFirst {
		return DateOrderMDY, DateOrderDMY
	}
	return DateOrderDMY, DateOrderMDY
}
