package dto

// UpdateInstructorStatsRequest 为教练累计时长
type UpdateInstructorStatsRequest struct {
	InstructorID string  `json:"instructor_id" binding:"required"`
	LessonType   string  `json:"lesson_type"   binding:"required,max=100"`
	Hours        float64 `json:"hours"         binding:"required,gt=0,lte=24"`
}

// LogListRequest 日志查询参数
type LogListRequest struct {
	Limit  int    `form:"limit"   binding:"omitempty,min=1,max=1000"`
	UserID string `form:"user_id"`
}
