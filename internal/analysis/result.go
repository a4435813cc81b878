package analysis

import (
	"encoding/json"

	"github.com/MikeSquared-Agency/bloop/internal/chatlog"
	"github.com/MikeSquared-Agency/bloop/internal/stats"
)

// Result is everything one analysis produces.
type Result struct {
	ID            string          `json:"id"`
	ChatName      string          `json:"chat_name"`
	TotalMessages int             `json:"total_messages"`
	Participants  int             `json:"participants"`
	BreakMinutes  int             `json:"conversation_break_minutes"`
	Stats         *stats.Record   `json:"stats"`
	AIAnalysis    json.RawMessage `json:"ai_analysis,omitempty"`
	Error         string          `json:"error,omitempty"`
	Empty         bool            `json:"empty"`
	Ingest        Ingest          `json:"ingest"`
}

// Ingest reports how much of the uploaded file was usable.
type Ingest struct {
	Lines           int               `json:"lines"`
	Matched         int               `json:"matched"`
	Dropped         int               `json:"dropped"`
	TimestampErrors int               `json:"timestamp_errors"`
	DateOrder       chatlog.DateOrder `json:"date_order"`
}

func ingestFrom(t *chatlog.Transcript) Ingest {
	return Ingest{
		Lines:           t.Lines,
		Matched:         t.Matched,
		Dropped:         t.Dropped,
		TimestampErrors: t.TimestampErrors,
		DateOrder:       t.DateOrder,
	}
}
