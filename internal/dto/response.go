package dto

import "github.com/barak121-cloud/sim-management-bh/internal/model"

// ── 认证模块响应 ──

// TokenResponse 登录 / 注册成功响应
type TokenResponse struct {
	AccessToken string     `json:"access_token"`
	ExpiresIn   int        `json:"expires_in"` // 秒
	User        model.User `json:"user"`
}

// ── 公告模块响应 ──

// NoticeResponse 公告（含渲染后的 HTML）
type NoticeResponse struct {
	model.Notice
	ContentHTML string `json:"content_html"`
	AuthorName  string `json:"author_name,omitempty"`
}

// ── 统计模块响应 ──

// InstructorReport 单个教练的活跃度与课程统计
type InstructorReport struct {
	InstructorID string                 `json:"instructor_id"`
	Name         string                 `json:"name"`
	Role         model.Role             `json:"role"`
	TotalHours   float64                `json:"total_hours"`
	LastActivity *string                `json:"last_activity"` // YYYY-MM-DD，从未带课时为 null
	Inactive     bool                   `json:"inactive"`
	Alert        bool                   `json:"alert"` // 初级教练超过 14 天未带课
	LessonCounts []LessonCount          `json:"lesson_counts"`
	Stats        []model.InstructorStat `json:"stats"`
}

// LessonCount 某一课已完成的次数
type LessonCount struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
	Count  int    `json:"count"`
}

// SlotView 时段及其展示状态
type SlotView struct {
	model.Slot
	State model.SlotState `json:"state"`
}
