package stats

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/MikeSquared-Agency/bloop/internal/chatlog"
	"github.com/MikeSquared-Agency/bloop/internal/segment"
	"github.com/MikeSquared-Agency/bloop/internal/textclean"
)

const (
	topWords       = 10
	topEmojis      = 6
	minWordLen     = 3
	maxResponseGap = 12 * time.Hour
)

// Aggregator accumulates every statistic in one ordered pass. Messages must be
// added in chronological order. An Aggregator is used for a single Finish.
type Aggregator struct {
	breakMinutes int
	breakGap     time.Duration

	total    int
	prev     *chatlog.Message
	lastDate string
	first    time.Time
	last     time.Time

	messages     map[string]int
	starts       map[string]int
	firstTexts   map[string]int
	ignored      map[string]int
	interactions map[string]map[string]int

	responseSum   time.Duration
	responseCount int

	streakUser string
	streakLen  int
	bestUser   string
	bestLen    int

	words  map[string]int
	emojis map[string]int

	daily   map[string]int
	hourly  [24]int
	weekday [7]int
	monthly map[string]map[string]int
	months  map[string]struct{}
}

// NewAggregator starts a pass using the given conversation break threshold.
func NewAggregator(breakMinutes int) *Aggregator {
	return &Aggregator{
		breakMinutes: breakMinutes,
		breakGap:     segment.Minutes(breakMinutes),
		messages:     make(map[string]int),
		starts:       make(map[string]int),
		firstTexts:   make(map[string]int),
		ignored:      make(map[string]int),
		interactions: make(map[string]map[string]int),
		words:        make(map[string]int),
		emojis:       make(map[string]int),
		daily:        make(map[string]int),
		monthly:      make(map[string]map[string]int),
		months:       make(map[string]struct{}),
	}
}

// Add folds one message into the running aggregates.
func (a *Aggregator) Add(m chatlog.Message) {
	a.total++
	a.messages[m.Sender]++

	if a.prev == nil {
		a.first = m.Timestamp
		a.starts[m.Sender]++
	} else {
		prev := a.prev
		if segment.StartsNew(prev.Timestamp, m.Timestamp, a.breakGap) {
			a.starts[m.Sender]++
		}

		if prev.Sender != m.Sender {
			gap := m.Timestamp.Sub(prev.Timestamp)
			if gap > 0 && gap < maxResponseGap {
				a.responseSum += gap
				a.responseCount++
			}
			row, ok := a.interactions[prev.Sender]
			if !ok {
				row = make(map[string]int)
				a.interactions[prev.Sender] = row
			}
			row[m.Sender]++
		} else {
			// The previous message went unanswered before its sender spoke again.
			a.ignored[prev.Sender]++
		}
	}
	a.last = m.Timestamp

	dateKey := m.DateKey
	if dateKey == "" {
		dateKey = m.Timestamp.Format("2006-01-02")
	}
	if dateKey != a.lastDate {
		a.firstTexts[m.Sender]++
		a.lastDate = dateKey
	}

	if m.Sender == a.streakUser {
		a.streakLen++
	} else {
		a.closeStreak()
		a.streakUser = m.Sender
		a.streakLen = 1
	}

	for _, w := range strings.Fields(m.CleanedText) {
		if utf8.RuneCountInString(w) >= minWordLen {
			a.words[w]++
		}
	}
	for _, e := range textclean.Emojis(m.RawText) {
		a.emojis[e]++
	}

	a.daily[dateKey]++
	a.hourly[m.Timestamp.Hour()]++
	a.weekday[m.Timestamp.Weekday()]++

	month := m.Timestamp.Format("2006-01")
	byMonth, ok := a.monthly[m.Sender]
	if !ok {
		byMonth = make(map[string]int)
		a.monthly[m.Sender] = byMonth
	}
	byMonth[month]++
	a.months[month] = struct{}{}

	msg := m
	a.prev = &msg
}

func (a *Aggregator) closeStreak() {
	if a.streakUser != "" && a.streakLen > a.bestLen {
		a.bestUser = a.streakUser
		a.bestLen = a.streakLen
	}
}

// Finish derives the final record. Every ratio with an empty denominator is 0.
func (a *Aggregator) Finish() *Record {
	a.closeStreak()

	senders := make([]string, 0, len(a.messages))
	for s := range a.messages {
		senders = append(senders, s)
	}
	sort.Strings(senders)

	r := &Record{
		TotalMessages:            a.total,
		UserMessageCount:         a.messages,
		MostActiveUsers:          shares(senders, a.messages),
		ConversationStarters:     shares(senders, a.starts),
		MostIgnoredUsers:         shares(senders, a.ignored),
		FirstTextChampion:        a.firstTextChampion(),
		LongestMonologue:         Monologue{User: a.bestUser, Count: a.bestLen},
		CommonWords:              topN(a.words, topWords),
		CommonEmojis:             topN(a.emojis, topEmojis),
		HourlyActivity:           a.hourly,
		WeekdayActivity:          a.weekday,
		DailyMessageCount:        a.daily,
		MonthlyActivity:          a.monthlySeries(senders),
		WeekdayVsWeekendAvg:      weekdayWeekend(a.weekday),
		ConversationBreakMinutes: a.breakMinutes,
	}

	if a.responseCount > 0 {
		avg := a.responseSum.Minutes() / float64(a.responseCount)
		r.AverageResponseTimeMinutes = round2(avg)
	}

	if a.total > 0 {
		peak := 0
		for h := 1; h < len(a.hourly); h++ {
			if a.hourly[h] > a.hourly[peak] {
				peak = h
			}
		}
		r.PeakHour = &peak

		firstDay := truncateDay(a.first)
		lastDay := truncateDay(a.last)
		r.DaysActive = int(lastDay.Sub(firstDay).Hours()/24) + 1
	}

	if len(senders) >= 2 {
		r.InteractionMatrix = make(map[string]map[string]int, len(senders))
		for _, from := range senders {
			row := make(map[string]int, len(senders))
			for _, to := range senders {
				row[to] = a.interactions[from][to]
			}
			r.InteractionMatrix[from] = row
		}
	}

	return r
}

func (a *Aggregator) firstTextChampion() FirstTextChampion {
	var champ FirstTextChampion
	days := 0
	for user, n := range a.firstTexts {
		days += n
		if n > champ.Count || (n == champ.Count && user < champ.User) {
			champ.User = user
			champ.Count = n
		}
	}
	if days > 0 {
		champ.Percentage = round2(float64(champ.Count) * 100 / float64(days))
	}
	return champ
}

func (a *Aggregator) monthlySeries(senders []string) []MonthlySeries {
	months := make([]string, 0, len(a.months))
	for m := range a.months {
		months = append(months, m)
	}
	sort.Strings(months)

	series := make([]MonthlySeries, 0, len(senders))
	for _, s := range senders {
		points := make([]MonthPoint, 0, len(months))
		for _, m := range months {
			points = append(points, MonthPoint{X: m, Y: a.monthly[s][m]})
		}
		series = append(series, MonthlySeries{ID: s, Data: points})
	}
	return series
}

// Compute runs a full pass over sorted messages.
func Compute(msgs []chatlog.Message, breakMinutes int) *Record {
	agg := NewAggregator(breakMinutes)
	for _, m := range msgs {
		agg.Add(m)
	}
	return agg.Finish()
}

// shares converts counts into percentages of their sum, rounded to 2 decimals.
// Every sender gets an entry; all are 0 when the sum is 0.
func shares(senders []string, counts map[string]int) map[string]float64 {
	total := 0
	for _, n := range counts {
		total += n
	}
	out := make(map[string]float64, len(senders))
	for _, s := range senders {
		if total == 0 {
			out[s] = 0
			continue
		}
		out[s] = round2(float64(counts[s]) * 100 / float64(total))
	}
	return out
}

// topN keeps the n highest counts. Ties go to the lexically smaller key so the
// selection is stable across runs.
func topN(counts map[string]int, n int) map[string]int {
	type kv struct {
		key   string
		count int
	}
	all := make([]kv, 0, len(counts))
	for k, c := range counts {
		all = append(all, kv{k, c})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return all[i].key < all[j].key
	})
	if len(all) > n {
		all = all[:n]
	}

	out := make(map[string]int, len(all))
	for _, e := range all {
		out[e.key] = e.count
	}
	return out
}

// weekdayWeekend divides by 5 and 2 regardless of how many such days the chat
// actually spans.
func weekdayWeekend(byDay [7]int) WeekdayWeekendAverage {
	weekday := 0
	for d := time.Monday; d <= time.Friday; d++ {
		weekday += byDay[d]
	}
	weekend := byDay[time.Saturday] + byDay[time.Sunday]

	avgWeekday := round2(float64(weekday) / 5)
	avgWeekend := round2(float64(weekend) / 2)
	diff := round2(avgWeekday - avgWeekend)

	out := WeekdayWeekendAverage{
		AverageWeekdayMessages: avgWeekday,
		AverageWeekendMessages: avgWeekend,
		Difference:             diff,
	}
	if avgWeekday > 0 {
		out.PercentageDifference = round2(diff / avgWeekday * 100)
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
