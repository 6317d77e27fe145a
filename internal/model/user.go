package model

import "time"

// Role 用户角色
type Role string

const (
	RoleAdmin            Role = "admin"
	RoleStaff            Role = "staff"
	RoleInstructorSenior Role = "instructor_senior"
	RoleInstructorJunior Role = "instructor_junior"
	RoleTrainee          Role = "trainee"
)

// Valid 是否为已知角色
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleInstructorSenior, RoleInstructorJunior, RoleTrainee:
		return true
	}
	return false
}

// IsInstructor 是否为教练（资深或初级）
func (r Role) IsInstructor() bool {
	return r == RoleInstructorSenior || r == RoleInstructorJunior
}

// IsManagement 管理员或职员
func (r Role) IsManagement() bool {
	return r == RoleAdmin || r == RoleStaff
}

// UserStatus 用户状态
type UserStatus string

const (
	StatusActive     UserStatus = "active"
	StatusInTraining UserStatus = "in_training"
	StatusSolo       UserStatus = "solo"
	StatusGraduate   UserStatus = "graduate"
	StatusFrozen     UserStatus = "frozen"
)

// Valid 是否为已知状态
func (s UserStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInTraining, StatusSolo, StatusGraduate, StatusFrozen:
		return true
	}
	return false
}

// DefaultStatus 新用户的初始状态由角色决定
func DefaultStatus(role Role) UserStatus {
	if role == RoleTrainee {
		return StatusInTraining
	}
	return StatusActive
}

// FreezeThreshold 缺席次数达到该值自动冻结
const FreezeThreshold = 3

// User 用户 — 对应 users
type User struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	Age           *int       `json:"age,omitempty"`
	Role          Role       `json:"role"`
	Status        UserStatus `json:"status"`
	Background    string     `json:"background,omitempty"`
	PasswordHash  string     `json:"-"`
	NoShowCount   int        `json:"no_show_count"`
	TotalHours    float64    `json:"total_hours"`
	CurrentLesson int        `json:"current_lesson"`
	CreatedAt     time.Time  `json:"created_at"`
}

// IsFrozen 账户是否被冻结
func (u *User) IsFrozen() bool {
	return u.Status == StatusFrozen
}

// UserPatch 用户部分更新
type UserPatch struct {
	Name          Set[string]
	Email         Set[string]
	Phone         Set[string]
	Age           Set[*int]
	Role          Set[Role]
	Status        Set[UserStatus]
	Background    Set[string]
	PasswordHash  Set[string]
	NoShowCount   Set[int]
	TotalHours    Set[float64]
	CurrentLesson Set[int]
}
