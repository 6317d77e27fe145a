package model

import (
	"fmt"
	"time"
)

// DayType 训练日类型
type DayType string

const (
	DayNormal             DayType = "normal"
	DayIndependent        DayType = "independent"
	DayInstructorTraining DayType = "instructor_training"
)

// Valid 是否为已知类型
func (d DayType) Valid() bool {
	return d == DayNormal || d == DayIndependent || d == DayInstructorTraining
}

// Seat 时段上的席位
type Seat string

const (
	SeatLead    Seat = "lead"
	SeatSecond  Seat = "second"
	SeatTrainee Seat = "trainee"
)

// Valid 是否为已知席位
func (s Seat) Valid() bool {
	return s == SeatLead || s == SeatSecond || s == SeatTrainee
}

// Recurrence 训练日重复方式
type Recurrence string

const (
	RecurrenceNone     Recurrence = "none"
	RecurrenceWeekly   Recurrence = "weekly"
	RecurrenceBiweekly Recurrence = "biweekly"
)

// Occurrences 除首日外额外生成的次数与间隔天数
func (r Recurrence) Occurrences() (extra int, intervalDays int) {
	switch r {
	case RecurrenceWeekly:
		return 4, 7
	case RecurrenceBiweekly:
		return 2, 14
	}
	return 0, 0
}

// Valid 是否为已知重复方式（空值等同 none）
func (r Recurrence) Valid() bool {
	return r == "" || r == RecurrenceNone || r == RecurrenceWeekly || r == RecurrenceBiweekly
}

// DateLayout 时段日期格式
const DateLayout = "2006-01-02"

// ClockLayout 时段起止时间格式
const ClockLayout = "15:04"

// Slot 训练时段 — 对应 schedule
type Slot struct {
	ID                 string    `json:"id"`
	Date               string    `json:"date"`       // YYYY-MM-DD
	TimeStart          string    `json:"time_start"` // HH:MM
	TimeEnd            string    `json:"time_end"`
	DayType            DayType   `json:"day_type"`
	LeadInstructorID   *string   `json:"lead_instructor_id"`
	SecondInstructorID *string   `json:"second_instructor_id"`
	TraineeID          *string   `json:"trainee_id"`
	LessonNumber       *int      `json:"lesson_number"`
	Notes              string    `json:"notes"`
	Completed          bool      `json:"completed"`
	AttendanceMarked   bool      `json:"attendance_marked"`
	CreatedAt          time.Time `json:"created_at"`
}

// SlotState 时段在日历上的展示状态
type SlotState string

const (
	SlotIndependent SlotState = "independent"
	SlotEmpty       SlotState = "empty"   // 无主教练
	SlotPartial     SlotState = "partial" // 有主教练、无学员
	SlotFull        SlotState = "full"
)

// State 计算展示状态
func (s *Slot) State() SlotState {
	switch {
	case s.DayType == DayIndependent:
		return SlotIndependent
	case s.LeadInstructorID == nil:
		return SlotEmpty
	case s.TraineeID == nil:
		return SlotPartial
	}
	return SlotFull
}

// Occupant 返回席位上的用户 ID，空席返回 nil
func (s *Slot) Occupant(seat Seat) *string {
	switch seat {
	case SeatLead:
		return s.LeadInstructorID
	case SeatSecond:
		return s.SecondInstructorID
	case SeatTrainee:
		return s.TraineeID
	}
	return nil
}

// Occupies 用户是否在该时段的任一席位上
func (s *Slot) Occupies(userID string) bool {
	for _, seat := range []Seat{SeatLead, SeatSecond, SeatTrainee} {
		if id := s.Occupant(seat); id != nil && *id == userID {
			return true
		}
	}
	return false
}

// StartAt 时段开始时间（按 loc 解释日期与时刻）
func (s *Slot) StartAt(loc *time.Location) (time.Time, error) {
	return parseSlotTime(s.Date, s.TimeStart, loc)
}

// EndAt 时段结束时间
func (s *Slot) EndAt(loc *time.Location) (time.Time, error) {
	return parseSlotTime(s.Date, s.TimeEnd, loc)
}

func parseSlotTime(date, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+ClockLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("时段时间格式错误 %s %s: %w", date, clock, err)
	}
	return t, nil
}

// TimeWindow 一个时间窗口
type TimeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// SlotPatch 时段部分更新
type SlotPatch struct {
	LeadInstructorID   Set[*string]
	SecondInstructorID Set[*string]
	TraineeID          Set[*string]
	LessonNumber       Set[*int]
	Notes              Set[string]
	Completed          Set[bool]
	AttendanceMarked   Set[bool]
}

// SeatPatch 为指定席位生成写入补丁（userID 为 nil 表示清空）
func SeatPatch(seat Seat, userID *string) SlotPatch {
	var p SlotPatch
	switch seat {
	case SeatLead:
		p.LeadInstructorID = Val(userID)
	case SeatSecond:
		p.SecondInstructorID = Val(userID)
	case SeatTrainee:
		p.TraineeID = Val(userID)
	}
	return p
}
