package hermes

import "time"

const (
	// SubjectAnalysisCompleted carries one AnalysisCompleted per finished analysis.
	SubjectAnalysisCompleted = "bloop.analysis.completed"
	// SubjectAgentRegistered is announced once at startup.
	SubjectAgentRegistered = "bloop.agent.registered"
)

// AnalysisCompleted describes a finished analysis. It carries counts only,
// never message content.
type AnalysisCompleted struct {
	AnalysisID    string    `json:"analysis_id"`
	ChatName      string    `json:"chat_name"`
	TotalMessages int       `json:"total_messages"`
	Participants  int       `json:"participants"`
	BreakMinutes  int       `json:"break_minutes"`
	Summarized    bool      `json:"summarized"`
	Empty         bool      `json:"empty"`
	DurationMS    int64     `json:"duration_ms"`
	Timestamp     time.Time `json:"timestamp"`
}

// AgentRegistered announces a running bloop instance.
type AgentRegistered struct {
	AgentID      string    `json:"agent_id"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Capabilities []string  `json:"capabilities"`
	Timestamp    time.Time `json:"timestamp"`
}
