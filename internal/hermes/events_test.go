package hermes

import (
	"encoding/json"
	"testing"
	"time"
)

func TestAnalysisCompletedParsing(t *testing.T) {
	raw := `{
		"analysis_id": "3f8c1e52-0b7a-4f55-9d0e-6a1f0c2b9e11",
		"chat_name": "Alice & Bob",
		"total_messages": 1200,
		"participants": 2,
		"break_minutes": 95,
		"summarized": true,
		"empty": false,
		"duration_ms": 842,
		"timestamp": "2024-06-01T12:00:00Z"
	}`

	var evt AnalysisCompleted
	if err := json.Unmarshal([]byte(raw), &evt); err != nil {
		t.Fatalf("failed to parse AnalysisCompleted: %v", err)
	}

	if evt.ChatName != "Alice & Bob" {
		t.Errorf("expected chat_name 'Alice & Bob', got '%s'", evt.ChatName)
	}
	if evt.TotalMessages != 1200 {
		t.Errorf("expected total_messages 1200, got %d", evt.TotalMessages)
	}
	if evt.BreakMinutes != 95 {
		t.Errorf("expected break_minutes 95, got %d", evt.BreakMinutes)
	}
	if !evt.Summarized {
		t.Error("expected summarized true")
	}
	if evt.DurationMS != 842 {
		t.Errorf("expected duration_ms 842, got %d", evt.DurationMS)
	}
	if !evt.Timestamp.Equal(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected timestamp %v", evt.Timestamp)
	}
}

func TestAnalysisCompletedCarriesNoContent(t *testing.T) {
	data, err := json.Marshal(AnalysisCompleted{AnalysisID: "a", ChatName: "c"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, forbidden := range []string{"messages", "stats", "ai_analysis", "sample"} {
		if _, ok := fields[forbidden]; ok {
			t.Errorf("event must not carry %q", forbidden)
		}
	}
	if len(fields) != 9 {
		t.Errorf("expected 9 fields, got %d", len(fields))
	}
}

func TestSubjects(t *testing.T) {
	if SubjectAnalysisCompleted != "bloop.analysis.completed" {
		t.Errorf("unexpected subject %q", SubjectAnalysisCompleted)
	}
	if SubjectAgentRegistered != "bloop.agent.registered" {
		t.Errorf("unexpected subject %q", SubjectAgentRegistered)
	}
}
