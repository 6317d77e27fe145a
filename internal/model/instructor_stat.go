package model

// InstructorStat 教练按课程类型累计的时长 — 对应 instructor_stats
type InstructorStat struct {
	ID           string  `json:"id"`
	InstructorID string  `json:"instructor_id"`
	LessonType   string  `json:"lesson_type"`
	Hours        float64 `json:"hours"`
}
