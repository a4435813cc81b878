package segment

import (
	"math"
	"sort"
	"time"

	"github.com/MikeSquared-Agency/bloop/internal/chatlog"
)

const (
	DefaultBreakMinutes = 120
	MinBreakMinutes     = 30
	MaxBreakMinutes     = 300

	minResponseSamples  = 20
	breakPercentile     = 85.0
	breakPaddingMinutes = 30

	minResponseGap = 5 * time.Second
	maxResponseGap = 12 * time.Hour
)

// ResponseGaps returns, in minutes, the gaps between consecutive messages where
// the sender changed and the gap lies strictly between 5 seconds and 12 hours.
// Burst typing and overnight silence fall outside that band.
func ResponseGaps(msgs []chatlog.Message) []float64 {
	var gaps []float64
	for i := 1; i < len(msgs); i++ {
		prev, cur := msgs[i-1], msgs[i]
		if prev.Sender == cur.Sender {
			continue
		}
		gap := cur.Timestamp.Sub(prev.Timestamp)
		if gap > minResponseGap && gap < maxResponseGap {
			gaps = append(gaps, gap.Minutes())
		}
	}
	return gaps
}

// DynamicBreak derives the inactivity threshold, in minutes, after which a
// message starts a new conversation. With fewer than 20 response gaps it returns
// DefaultBreakMinutes; otherwise the 85th percentile gap plus 30 minutes,
// clamped to [MinBreakMinutes, MaxBreakMinutes]. msgs must be sorted.
func DynamicBreak(msgs []chatlog.Message) int {
	gaps := ResponseGaps(msgs)
	if len(gaps) < minResponseSamples {
		return DefaultBreakMinutes
	}
	sort.Float64s(gaps)

	threshold := Percentile(gaps, breakPercentile) + breakPaddingMinutes
	threshold = math.Max(MinBreakMinutes, math.Min(threshold, MaxBreakMinutes))
	return int(math.Round(threshold))
}

// Percentile returns the p-th percentile of sorted using rank p/100*(n+1) and
// linear interpolation between the neighbouring values. Ranks outside the data
// clamp to the first or last value; empty input yields 0.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[n-1]
	}

	rank := p / 100 * float64(n+1)
	k := int(rank)
	d := rank - float64(k)

	if k < 1 {
		return sorted[0]
	}
	if k >= n {
		return sorted[n-1]
	}
	lo, hi := sorted[k-1], sorted[k]
	return lo + d*(hi-lo)
}

// StartsNew reports whether a message at cur begins a new unit after a message
// at prev, given the inactivity threshold.
func StartsNew(prev, cur time.Time, gap time.Duration) bool {
	return cur.Sub(prev) > gap
}

// Boundaries flags, per message, whether it starts a new conversation. The
// first message always does.
func Boundaries(msgs []chatlog.Message, gap time.Duration) []bool {
	flags := make([]bool, len(msgs))
	for i := range msgs {
		flags[i] = i == 0 || StartsNew(msgs[i-1].Timestamp, msgs[i].Timestamp, gap)
	}
	return flags
}

// Topics splits sorted messages into runs separated by silences of at least
// topicGap. Unlike conversations, topics only drive sampling.
func Topics(msgs []chatlog.Message, topicGap time.Duration) [][]chatlog.Message {
	if len(msgs) == 0 {
		return nil
	}

	var topics [][]chatlog.Message
	start := 0
	for i := 1; i < len(msgs); i++ {
		if msgs[i].Timestamp.Sub(msgs[i-1].Timestamp) >= topicGap {
			topics = append(topics, msgs[start:i])
			start = i
		}
	}
	return append(topics, msgs[start:])
}

// Minutes converts a whole-minute threshold into a duration.
func Minutes(m int) time.Duration {
	return time.Duration(m) * time.Minute
}
