package stats

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/bloop/internal/chatlog"
)

var base = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC) // a Monday

func msg(offset time.Duration, sender, cleaned, raw string) chatlog.Message {
	ts := base.Add(offset)
	return chatlog.Message{
		Timestamp:   ts,
		DateKey:     ts.Format("2006-01-02"),
		Sender:      sender,
		RawText:     raw,
		CleanedText: cleaned,
	}
}

func sequence(senders ...string) []chatlog.Message {
	out := make([]chatlog.Message, len(senders))
	for i, s := range senders {
		out[i] = msg(time.Duration(i)*time.Minute, s, "some words here", "some words here")
	}
	return out
}

func sumShares(m map[string]float64) float64 {
	total := 0.0
	for _, v := range m {
		total += v
	}
	return total
}

func TestCompute_TwoLineScenario(t *testing.T) {
	msgs := []chatlog.Message{
		msg(0, "Alice", "hello friend", "hello there friend"),
		msg(5*time.Minute, "Bob", "hey alice", "hey Alice how are you"),
	}
	r := Compute(msgs, 120)

	assert.Equal(t, 2, r.TotalMessages)
	assert.Equal(t, map[string]float64{"Alice": 50, "Bob": 50}, r.MostActiveUsers)
	assert.InDelta(t, 5.0, r.AverageResponseTimeMinutes, 1e-9)
	require.NotNil(t, r.InteractionMatrix)
	assert.Equal(t, 1, r.InteractionMatrix["Alice"]["Bob"])
	assert.Equal(t, 0, r.InteractionMatrix["Bob"]["Alice"])
	assert.Equal(t, 0, r.InteractionMatrix["Alice"]["Alice"])
	assert.Equal(t, map[string]float64{"Alice": 100, "Bob": 0}, r.ConversationStarters)
	assert.Equal(t, map[string]float64{"Alice": 0, "Bob": 0}, r.MostIgnoredUsers)
	assert.Equal(t, FirstTextChampion{User: "Alice", Count: 1, Percentage: 100}, r.FirstTextChampion)
	assert.Equal(t, 1, r.DaysActive)
	require.NotNil(t, r.PeakHour)
	assert.Equal(t, 9, *r.PeakHour)
	assert.Equal(t, 120, r.ConversationBreakMinutes)
}

func TestCompute_MonologueAndIgnored(t *testing.T) {
	r := Compute(sequence("A", "A", "A", "B", "B", "A"), 120)

	assert.Equal(t, Monologue{User: "A", Count: 3}, r.LongestMonologue)
	// A: two A->A repeats, B: one B->B repeat.
	assert.InDelta(t, 66.67, r.MostIgnoredUsers["A"], 1e-9)
	assert.InDelta(t, 33.33, r.MostIgnoredUsers["B"], 1e-9)
}

func TestAggregator_IgnoredCounts(t *testing.T) {
	agg := NewAggregator(120)
	for _, m := range sequence("A", "A", "A", "B", "B", "A") {
		agg.Add(m)
	}
	assert.Equal(t, map[string]int{"A": 2, "B": 1}, agg.ignored)
}

func TestCompute_FinalStreakChecked(t *testing.T) {
	r := Compute(sequence("A", "B", "B", "B", "B"), 120)
	assert.Equal(t, Monologue{User: "B", Count: 4}, r.LongestMonologue)
}

func TestCompute_ConversationStartsUseBreak(t *testing.T) {
	msgs := []chatlog.Message{
		msg(0, "Alice", "morning", "morning"),
		msg(10*time.Minute, "Bob", "morning", "morning"),
		msg(3*time.Hour, "Bob", "lunch plans", "lunch plans"),
		msg(3*time.Hour+time.Minute, "Alice", "sure thing", "sure thing"),
		msg(10*time.Hour, "Carol", "evening", "evening"),
	}

	r := Compute(msgs, 120)
	assert.Equal(t, map[string]float64{"Alice": 33.33, "Bob": 33.33, "Carol": 33.33}, r.ConversationStarters)

	r = Compute(msgs, 300)
	assert.Equal(t, map[string]float64{"Alice": 50, "Bob": 0, "Carol": 50}, r.ConversationStarters)
}

func TestCompute_ResponseLatency(t *testing.T) {
	msgs := []chatlog.Message{
		msg(0, "Alice", "one", "one"),
		msg(2*time.Minute, "Bob", "two", "two"),
		msg(3*time.Minute, "Bob", "three", "three"), // same sender, no latency
		msg(7*time.Minute, "Alice", "four", "four"),  // 4 minutes
		msg(20*time.Hour, "Bob", "five", "five"),     // over 12h, ignored for latency
	}
	r := Compute(msgs, 120)

	assert.InDelta(t, 3.0, r.AverageResponseTimeMinutes, 1e-9)
	// Transitions are counted even across long silences.
	assert.Equal(t, 2, r.InteractionMatrix["Alice"]["Bob"])
	assert.Equal(t, 1, r.InteractionMatrix["Bob"]["Alice"])
}

func TestCompute_PercentagesSumToHundred(t *testing.T) {
	r := Compute(sequence("A", "B", "C", "A", "B", "A", "A", "C", "C"), 120)
	assert.InDelta(t, 100, sumShares(r.MostActiveUsers), 0.05)
	assert.InDelta(t, 100, sumShares(r.MostIgnoredUsers), 0.05)
	assert.InDelta(t, 100, sumShares(r.ConversationStarters), 0.05)
}

func TestCompute_WordsAndEmojis(t *testing.T) {
	msgs := []chatlog.Message{
		msg(0, "Alice", "pizza tonight pizza", "pizza tonight? pizza 🍕🍕"),
		msg(time.Minute, "Bob", "pizza yes", "pizza yes 👍🏽"),
		msg(2*time.Minute, "Alice", "great", "great ❤️ ❤"),
	}
	r := Compute(msgs, 120)

	assert.Equal(t, 3, r.CommonWords["pizza"])
	assert.Equal(t, 1, r.CommonWords["tonight"])
	assert.Equal(t, 2, r.CommonEmojis["🍕"])
	assert.Equal(t, 1, r.CommonEmojis["👍🏽"])
	assert.Equal(t, 2, r.CommonEmojis["❤"])
}

func TestCompute_TopNLimits(t *testing.T) {
	words := "alpha bravo charlie delta echo foxtrot golf hotel india juliet kilo lima"
	msgs := []chatlog.Message{msg(0, "A", words, words), msg(time.Minute, "A", "alpha bravo", "alpha bravo")}
	r := Compute(msgs, 120)

	require.Len(t, r.CommonWords, 10)
	assert.Equal(t, 2, r.CommonWords["alpha"])
	assert.Equal(t, 2, r.CommonWords["bravo"])
	assert.NotContains(t, r.CommonWords, "lima")
}

func TestCompute_TemporalHistograms(t *testing.T) {
	msgs := []chatlog.Message{
		msg(0, "A", "monday text", "monday text"),                             // Mon 09:00
		msg(time.Hour, "B", "monday later", "monday later"),                    // Mon 10:00
		msg(5*24*time.Hour, "A", "saturday text", "saturday text"),             // Sat 09:00
		msg(31*24*time.Hour+time.Hour, "B", "february text", "february text"), // Thu Feb 1 10:00
	}
	r := Compute(msgs, 120)

	assert.Equal(t, 2, r.HourlyActivity[9])
	assert.Equal(t, 2, r.HourlyActivity[10])
	require.NotNil(t, r.PeakHour)
	assert.Equal(t, 9, *r.PeakHour, "ties resolve to the earliest hour")
	assert.Equal(t, 2, r.WeekdayActivity[time.Monday])
	assert.Equal(t, 1, r.WeekdayActivity[time.Saturday])
	assert.Equal(t, 1, r.WeekdayActivity[time.Thursday])
	assert.Equal(t, map[string]int{"2024-01-01": 2, "2024-01-06": 1, "2024-02-01": 1}, r.DailyMessageCount)
	assert.Equal(t, 32, r.DaysActive)

	assert.Equal(t, []MonthlySeries{
		{ID: "A", Data: []MonthPoint{{X: "2024-01", Y: 2}, {X: "2024-02", Y: 0}}},
		{ID: "B", Data: []MonthPoint{{X: "2024-01", Y: 1}, {X: "2024-02", Y: 1}}},
	}, r.MonthlyActivity)

	assert.Equal(t, WeekdayWeekendAverage{
		AverageWeekdayMessages: 0.6,
		AverageWeekendMessages: 0.5,
		Difference:             0.1,
		PercentageDifference:   16.67,
	}, r.WeekdayVsWeekendAvg)
}

func TestCompute_ZeroDenominatorSharesListEverySender(t *testing.T) {
	r := Compute(sequence("A", "B", "A", "B"), 120)

	assert.Equal(t, map[string]float64{"A": 0, "B": 0}, r.MostIgnoredUsers)
	assert.Equal(t, map[string]float64{"A": 100, "B": 0}, r.ConversationStarters)
	assert.Equal(t, map[string]float64{"A": 50, "B": 50}, r.MostActiveUsers)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"most_ignored_users":{"A":0,"B":0}`)
}

func TestCompute_DaysActiveCountsCalendarDates(t *testing.T) {
	msgs := []chatlog.Message{
		msg(14*time.Hour, "A", "late night", "late night"),    // 23:00
		msg(16*time.Hour, "B", "still awake", "still awake"), // 01:00 next day
	}
	assert.Equal(t, 2, Compute(msgs, 120).DaysActive)
}

func TestCompute_SingleSenderHasNoMatrix(t *testing.T) {
	r := Compute(sequence("A", "A"), 120)
	assert.Nil(t, r.InteractionMatrix)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "interaction_matrix")
}

func TestCompute_Empty(t *testing.T) {
	r := Compute(nil, 120)

	assert.Zero(t, r.TotalMessages)
	assert.Zero(t, r.DaysActive)
	assert.Nil(t, r.PeakHour)
	assert.Zero(t, r.AverageResponseTimeMinutes)
	assert.Empty(t, r.MostActiveUsers)
	assert.NotNil(t, r.MostActiveUsers)
	// No senders, so no per-sender entries.
	assert.Empty(t, r.ConversationStarters)
	assert.NotNil(t, r.ConversationStarters)
	assert.Empty(t, r.MostIgnoredUsers)
	assert.NotNil(t, r.MostIgnoredUsers)
	assert.Equal(t, FirstTextChampion{}, r.FirstTextChampion)
	assert.Equal(t, Monologue{}, r.LongestMonologue)
	assert.Equal(t, WeekdayWeekendAverage{}, r.WeekdayVsWeekendAvg)
	assert.Nil(t, r.InteractionMatrix)
	assert.NotNil(t, r.MonthlyActivity)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"peak_hour":null`)
	assert.Contains(t, string(data), `"user_monthly_activity":[]`)
}

func TestCompute_JSONKeys(t *testing.T) {
	data, err := json.Marshal(Compute(sequence("A", "B"), 120))
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"total_messages", "most_active_users", "average_response_time_minutes", "interaction_matrix", "conversation_break_minutes"} {
		assert.Contains(t, raw, key)
	}
}
