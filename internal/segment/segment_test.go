package segment

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/bloop/internal/chatlog"
)

var base = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

// alternating builds messages from two senders taking turns, one per gap.
func alternating(gaps ...time.Duration) []chatlog.Message {
	msgs := []chatlog.Message{{Timestamp: base, Sender: "Alice"}}
	ts := base
	for i, g := range gaps {
		ts = ts.Add(g)
		sender := "Bob"
		if i%2 == 1 {
			sender = "Alice"
		}
		msgs = append(msgs, chatlog.Message{Timestamp: ts, Sender: sender})
	}
	return msgs
}

func repeat(d time.Duration, n int) []time.Duration {
	out := make([]time.Duration, n)
	for i := range out {
		out[i] = d
	}
	return out
}

func TestDynamicBreak_DefaultUnderTwentyGaps(t *testing.T) {
	assert.Equal(t, DefaultBreakMinutes, DynamicBreak(nil))
	assert.Equal(t, DefaultBreakMinutes, DynamicBreak(alternating(repeat(10*time.Minute, 19)...)))
}

func TestDynamicBreak_IgnoresOutOfBandGaps(t *testing.T) {
	gaps := append(repeat(3*time.Second, 15), repeat(13*time.Hour, 10)...)
	gaps = append(gaps, repeat(10*time.Minute, 5)...)
	assert.Len(t, ResponseGaps(alternating(gaps...)), 5)
	assert.Equal(t, DefaultBreakMinutes, DynamicBreak(alternating(gaps...)))
}

func TestDynamicBreak_SameSenderGapsIgnored(t *testing.T) {
	var msgs []chatlog.Message
	for i := 0; i < 40; i++ {
		msgs = append(msgs, chatlog.Message{Timestamp: base.Add(time.Duration(i) * time.Hour), Sender: "Alice"})
	}
	assert.Empty(t, ResponseGaps(msgs))
	assert.Equal(t, DefaultBreakMinutes, DynamicBreak(msgs))
}

func TestDynamicBreak_Percentile(t *testing.T) {
	// Constant 10 minute replies: p85 = 10, +30 = 40.
	assert.Equal(t, 40, DynamicBreak(alternating(repeat(10*time.Minute, 30)...)))
}

func TestDynamicBreak_Clamped(t *testing.T) {
	assert.Equal(t, MinBreakMinutes, DynamicBreak(alternating(repeat(10*time.Second, 25)...)))
	assert.Equal(t, MaxBreakMinutes, DynamicBreak(alternating(repeat(11*time.Hour, 25)...)))
}

func TestDynamicBreak_AlwaysInBounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 200; i++ {
		n := rng.IntN(80)
		gaps := make([]time.Duration, n)
		for j := range gaps {
			gaps[j] = time.Duration(rng.Int64N(int64(24 * time.Hour)))
		}
		got := DynamicBreak(alternating(gaps...))
		if len(ResponseGaps(alternating(gaps...))) < 20 {
			assert.Equal(t, DefaultBreakMinutes, got)
			continue
		}
		assert.GreaterOrEqual(t, got, MinBreakMinutes)
		assert.LessOrEqual(t, got, MaxBreakMinutes)
	}
}

func TestPercentile(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	assert.Equal(t, 0.0, Percentile(nil, 50))
	assert.Equal(t, 1.0, Percentile(data, 0))
	assert.Equal(t, 10.0, Percentile(data, 100))
	// rank = 0.5 * 11 = 5.5 -> halfway between 5 and 6
	assert.InDelta(t, 5.5, Percentile(data, 50), 1e-9)
	// rank = 0.85 * 11 = 9.35 -> 9 + 0.35
	assert.InDelta(t, 9.35, Percentile(data, 85), 1e-9)
	// rank below 1 clamps to the first value
	assert.Equal(t, 1.0, Percentile(data, 5))
	// rank beyond n clamps to the last value
	assert.Equal(t, 10.0, Percentile(data, 95))
	assert.Equal(t, 7.0, Percentile([]float64{7}, 85))
}

func TestBoundaries(t *testing.T) {
	msgs := alternating(10*time.Minute, 3*time.Hour, time.Minute, 2*time.Hour)
	flags := Boundaries(msgs, Minutes(120))
	require.Len(t, flags, 5)
	// exactly 120 minutes does not exceed the threshold
	assert.Equal(t, []bool{true, false, true, false, false}, flags)
	assert.Empty(t, Boundaries(nil, time.Hour))
}

func TestStartsNew(t *testing.T) {
	assert.True(t, StartsNew(base, base.Add(31*time.Minute), 30*time.Minute))
	assert.False(t, StartsNew(base, base.Add(30*time.Minute), 30*time.Minute))
}

func TestTopics(t *testing.T) {
	msgs := alternating(time.Hour, 6*time.Hour, 5*time.Hour, 7*time.Hour)
	topics := Topics(msgs, 6*time.Hour)
	require.Len(t, topics, 3)
	assert.Len(t, topics[0], 2)
	assert.Len(t, topics[1], 2)
	assert.Len(t, topics[2], 1)

	assert.Nil(t, Topics(nil, time.Hour))
	assert.Len(t, Topics(msgs[:1], time.Hour), 1)
}

func TestTopicsIndependentOfBreak(t *testing.T) {
	msgs := alternating(repeat(10*time.Minute, 30)...)
	require.Equal(t, 40, DynamicBreak(msgs))
	assert.Len(t, Topics(msgs, 6*time.Hour), 1)
}
