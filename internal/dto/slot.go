package dto

import "github.com/barak121-cloud/sim-management-bh/internal/model"

// ── 时段模块 DTO ──

// CreateTrainingDayRequest 管理员创建训练日
type CreateTrainingDayRequest struct {
	Date       string             `json:"date"        binding:"required"` // YYYY-MM-DD
	DayType    string             `json:"day_type"    binding:"required,oneof=normal independent instructor_training"`
	Windows    []model.TimeWindow `json:"windows"     binding:"required,min=1,dive"`
	Recurrence string             `json:"recurrence"  binding:"omitempty,oneof=none weekly biweekly"`
	Notes      string             `json:"notes"       binding:"omitempty,max=2000"`
}

// SlotListRequest 时段列表查询参数（date 与 month 二选一，都为空时返回全部）
type SlotListRequest struct {
	Date  string `form:"date"`  // YYYY-MM-DD
	Month string `form:"month"` // YYYY-MM
}

// CancelRegistrationRequest 取消登记
type CancelRegistrationRequest struct {
	Seat    string `json:"seat"    binding:"required,oneof=lead second trainee"`
	Confirm bool   `json:"confirm"`
}

// FastTrackRequest 管理员直接为学员登记
type FastTrackRequest struct {
	TraineeID string `json:"trainee_id" binding:"required"`
}

// UpdateNotesRequest 课程备注
type UpdateNotesRequest struct {
	Notes string `json:"notes" binding:"max=2000"`
}

// MarkAttendanceRequest 记录学员出勤
type MarkAttendanceRequest struct {
	Attended *bool `json:"attended" binding:"required"`
}
