package chatlog

import (
	"fmt"
	"strings"
	"time"
)

// Message is one accepted chat line. Messages are not modified after parsing.
type Message struct {
	Timestamp   time.Time
	DateKey     string // calendar date, YYYY-MM-DD
	Sender      string
	RawText     string
	CleanedText string
}

// Transcript is the parser output: the chronologically sorted messages plus
// counters describing how much of the input was usable.
type Transcript struct {
	Messages        []Message
	Lines           int // non-blank input lines
	Matched         int // lines with a timestamp/sender shape
	Dropped         int // matched lines filtered as notices or with nothing left after cleaning
	TimestampErrors int // matched lines whose timestamp no layout accepted
	DateOrder       DateOrder
}

// Senders returns the distinct senders in sorted order.
func (t *Transcript) Senders() []string {
	return Senders(t.Messages)
}

// DateOrder selects how numeric dates like 01/02/24 are read.
type DateOrder string

const (
	DateOrderAuto DateOrder = "auto"
	DateOrderDMY  DateOrder = "dmy"
	DateOrderMDY  DateOrder = "mdy"
)

// ParseDateOrder validates a configured date-order hint. An empty string means auto.
func ParseDateOrder(s string) (DateOrder, error) {
	switch DateOrder(strings.ToLower(strings.TrimSpace(s))) {
	case "", DateOrderAuto:
		return DateOrderAuto, nil
	case DateOrderDMY:
		return DateOrderDMY, nil
	case DateOrderMDY:
		return DateOrderMDY, nil
	}
	return "", fmt.Errorf("unknown date order %q (want auto, dmy or mdy)", s)
}
