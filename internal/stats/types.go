package stats

// Record is the statistical profile of one conversation. It is built once per
// analysis and not modified afterwards.
type Record struct {
	TotalMessages              int                       `json:"total_messages"`
	DaysActive                 int                       `json:"days_active"`
	UserMessageCount           map[string]int            `json:"user_message_count"`
	MostActiveUsers            map[string]float64        `json:"most_active_users"`
	ConversationStarters       map[string]float64        `json:"conversation_starters"`
	MostIgnoredUsers           map[string]float64        `json:"most_ignored_users"`
	FirstTextChampion          FirstTextChampion         `json:"first_text_champion"`
	LongestMonologue           Monologue                 `json:"longest_monologue"`
	CommonWords                map[string]int            `json:"common_words"`
	CommonEmojis               map[string]int            `json:"common_emojis"`
	AverageResponseTimeMinutes float64                   `json:"average_response_time_minutes"`
	PeakHour                   *int                      `json:"peak_hour"`
	HourlyActivity             [24]int                   `json:"hourly_activity"`
	WeekdayActivity            [7]int                    `json:"weekday_activity"` // Sunday first
	DailyMessageCount          map[string]int            `json:"daily_message_count"`
	MonthlyActivity            []MonthlySeries           `json:"user_monthly_activity"`
	WeekdayVsWeekendAvg        WeekdayWeekendAverage     `json:"weekday_vs_weekend_avg"`
	InteractionMatrix          map[string]map[string]int `json:"interaction_matrix,omitempty"`
	ConversationBreakMinutes   int                       `json:"conversation_break_minutes"`
}

// FirstTextChampion is the sender who most often opened the day.
type FirstTextChampion struct {
	User       string  `json:"user"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Monologue is the longest run of consecutive messages from one sender.
type Monologue struct {
	User  string `json:"user"`
	Count int    `json:"count"`
}

// MonthlySeries is one sender's message count per calendar month, shaped for
// line-chart front ends.
type MonthlySeries struct {
	ID   string       `json:"id"`
	Data []MonthPoint `json:"data"`
}

type MonthPoint struct {
	X string `json:"x"` // YYYY-MM
	Y int    `json:"y"`
}

type WeekdayWeekendAverage struct {
	AverageWeekdayMessages float64 `json:"average_weekday_messages"`
	AverageWeekendMessages float64 `json:"average_weekend_messages"`
	Difference             float64 `json:"difference"`
	PercentageDifference   float64 `json:"percentage_difference"`
}
