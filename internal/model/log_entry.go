package model

import "time"

// LogAction 操作日志类型
type LogAction string

const (
	ActionNoShow                LogAction = "no_show"
	ActionNoShowRemoved         LogAction = "noshow_removed"
	ActionSlotCancelled         LogAction = "slot_cancelled"
	ActionRegistrationCancelled LogAction = "registration_cancelled"
	ActionLessonCompleted       LogAction = "lesson_completed"
	ActionAccountFrozen         LogAction = "account_frozen"
)

// LogEntry 只追加的操作日志 — 对应 logs
type LogEntry struct {
	ID        string    `json:"id"`
	UserID    *string   `json:"user_id"`
	Action    LogAction `json:"action"`
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}
