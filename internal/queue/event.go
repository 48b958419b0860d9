// Package queue defines message payloads exchanged over the message broker.
package queue

// TaskRecordedEvent is published when a daily task is successfully added to
// a weekly timesheet. It carries enough information for downstream consumers
// to log or aggregate activity without querying the primary database.
type TaskRecordedEvent struct {
    TimesheetID uint64  `json:"timesheet_id"`
    TaskID      uint64  `json:"task_id"`
    UserID      uint64  `json:"user_id"`
    Project     string  `json:"project"`
    TypeOfWork  string  `json:"type_of_work"`
    TaskDate    string  `json:"task_date"`
    Hours       float64 `json:"hours"`
    TotalHours  float64 `json:"total_hours"`
    RecordedAt  string  `json:"recorded_at"`
}
