package event

import "time"

const EvaluationQueue = "evaluation_events"

type EvaluationEventType string

const (
	EvaluationCreated EvaluationEventType = "evaluation_created"
	EvaluationDeleted EvaluationEventType = "evaluation_deleted"
)

// EvaluationEvent is published after an evaluation is stored or deleted so
// that other services (notifications, dashboards) can react.
type EvaluationEvent struct {
	ID           string              `json:"id"`
	EventType    EvaluationEventType `json:"event_type"`
	AreaID       string              `json:"area_id"`
	EvaluationID string              `json:"evaluation_id"`
	EvaluatorID  string              `json:"evaluator_id"`
	CUC          float64             `json:"cuc"`
	CUD          float64             `json:"cud"`
	CUCStatus    string              `json:"cuc_status"`
	CUDStatus    string              `json:"cud_status"`
	OccurredAt   time.Time           `json:"occurred_at"`
	Additional   map[string]any      `json:"additional,omitempty"`
}

type PublisherHealthStatus struct {
	IsHealthy         bool      `json:"is_healthy"`
	MessagesPublished int64     `json:"messages_published"`
	MessagesFailed    int64     `json:"messages_failed"`
	LastPublishTime   time.Time `json:"last_publish_time"`
	Queue             string    `json:"queue"`
}
