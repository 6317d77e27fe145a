package repository

import (
	"fmt"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/barak121-cloud/sim-management-bh/internal/model"
	"github.com/barak121-cloud/sim-management-bh/pkg/tablestore"
)

// 本文件是唯一了解表名与列名（snake_case）的地方，领域模型只使用 Go 命名。

const (
	tableUsers           = "users"
	tableSchedule        = "schedule"
	tableNotices         = "notices"
	tableLogs            = "logs"
	tableInstructorStats = "instructor_stats"
	tableJoinRequests    = "join_requests"
)

const (
	colEmail        = "email"
	colDate         = "date"
	colCreatedAt    = "created_at"
	colTimestamp    = "timestamp"
	colUserID       = "user_id"
	colInstructorID = "instructor_id"
	colLessonType   = "lesson_type"
	colHours        = "hours"
)

// ────── 行结构 ──────

type userRow struct {
	ID            string    `mapstructure:"id"`
	Name          string    `mapstructure:"name"`
	Email         string    `mapstructure:"email"`
	Phone         string    `mapstructure:"phone"`
	Age           *int      `mapstructure:"age"`
	Role          string    `mapstructure:"role"`
	Status        string    `mapstructure:"status"`
	Background    string    `mapstructure:"background"`
	PasswordHash  string    `mapstructure:"password_hash"`
	NoShowCount   int       `mapstructure:"no_show_count"`
	TotalHours    float64   `mapstructure:"total_hours"`
	CurrentLesson int       `mapstructure:"current_lesson"`
	CreatedAt     time.Time `mapstructure:"created_at"`
}

type slotRow struct {
	ID                 string    `mapstructure:"id"`
	Date               string    `mapstructure:"date"`
	TimeStart          string    `mapstructure:"time_start"`
	TimeEnd            string    `mapstructure:"time_end"`
	DayType            string    `mapstructure:"day_type"`
	LeadInstructorID   *string   `mapstructure:"lead_instructor_id"`
	SecondInstructorID *string   `mapstructure:"second_instructor_id"`
	TraineeID          *string   `mapstructure:"trainee_id"`
	LessonNumber       *int      `mapstructure:"lesson_number"`
	Notes              string    `mapstructure:"notes"`
	Completed          bool      `mapstructure:"completed"`
	AttendanceMarked   bool      `mapstructure:"attendance_marked"`
	CreatedAt          time.Time `mapstructure:"created_at"`
}

type noticeRow struct {
	ID        string    `mapstructure:"id"`
	Content   string    `mapstructure:"content"`
	CreatedBy *string   `mapstructure:"created_by"`
	CreatedAt time.Time `mapstructure:"created_at"`
}

type logRow struct {
	ID        string    `mapstructure:"id"`
	UserID    *string   `mapstructure:"user_id"`
	Action    string    `mapstructure:"action"`
	Details   string    `mapstructure:"details"`
	Timestamp time.Time `mapstructure:"timestamp"`
}

type statRow struct {
	ID           string  `mapstructure:"id"`
	InstructorID string  `mapstructure:"instructor_id"`
	LessonType   string  `mapstructure:"lesson_type"`
	Hours        float64 `mapstructure:"hours"`
}

type joinRequestRow struct {
	ID        string    `mapstructure:"id"`
	Name      string    `mapstructure:"name"`
	Email     string    `mapstructure:"email"`
	Phone     string    `mapstructure:"phone"`
	Message   string    `mapstructure:"message"`
	Status    string    `mapstructure:"status"`
	CreatedAt time.Time `mapstructure:"created_at"`
}

// ────── 解码 ──────

var timeType = reflect.TypeOf(time.Time{})

// 远程服务返回的时间戳可能带或不带时区
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	model.DateLayout,
}

// timeHook 字符串 → time.Time；DATE 列在 PostgreSQL 驱动下是 time.Time，写回 string 字段时只保留日期
func timeHook(from, to reflect.Type, data any) (any, error) {
	switch {
	case to == timeType && from.Kind() == reflect.String:
		s := reflect.ValueOf(data).String()
		if s == "" {
			return time.Time{}, nil
		}
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return nil, fmt.Errorf("无法解析时间 %q", s)
	case from == timeType && to.Kind() == reflect.String:
		return data.(time.Time).Format(model.DateLayout), nil
	}
	return data, nil
}

func decodeRow(row tablestore.Row, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       timeHook,
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(map[string]any(row)); err != nil {
		return fmt.Errorf("解析记录失败: %w", err)
	}
	return nil
}

func decodeUser(row tablestore.Row) (*model.User, error) {
	var r userRow
	if err := decodeRow(row, &r); err != nil {
		return nil, err
	}
	return &model.User{
		ID:            r.ID,
		Name:          r.Name,
		Email:         r.Email,
		Phone:         r.Phone,
		Age:           r.Age,
		Role:          model.Role(r.Role),
		Status:        model.UserStatus(r.Status),
		Background:    r.Background,
		PasswordHash:  r.PasswordHash,
		NoShowCount:   r.NoShowCount,
		TotalHours:    r.TotalHours,
		CurrentLesson: r.CurrentLesson,
		CreatedAt:     r.CreatedAt,
	}, nil
}

func decodeSlot(row tablestore.Row) (*model.Slot, error) {
	var r slotRow
	if err := decodeRow(row, &r); err != nil {
		return nil, err
	}
	return &model.Slot{
		ID:                 r.ID,
		Date:               r.Date,
		TimeStart:          r.TimeStart,
		TimeEnd:            r.TimeEnd,
		DayType:            model.DayType(r.DayType),
		LeadInstructorID:   emptyToNil(r.LeadInstructorID),
		SecondInstructorID: emptyToNil(r.SecondInstructorID),
		TraineeID:          emptyToNil(r.TraineeID),
		LessonNumber:       r.LessonNumber,
		Notes:              r.Notes,
		Completed:          r.Completed,
		AttendanceMarked:   r.AttendanceMarked,
		CreatedAt:          r.CreatedAt,
	}, nil
}

func decodeNotice(row tablestore.Row) (*model.Notice, error) {
	var r noticeRow
	if err := decodeRow(row, &r); err != nil {
		return nil, err
	}
	return &model.Notice{ID: r.ID, Content: r.Content, CreatedBy: r.CreatedBy, CreatedAt: r.CreatedAt}, nil
}

func decodeLog(row tablestore.Row) (*model.LogEntry, error) {
	var r logRow
	if err := decodeRow(row, &r); err != nil {
		return nil, err
	}
	return &model.LogEntry{
		ID:        r.ID,
		UserID:    r.UserID,
		Action:    model.LogAction(r.Action),
		Details:   r.Details,
		Timestamp: r.Timestamp,
	}, nil
}

func decodeStat(row tablestore.Row) (*model.InstructorStat, error) {
	var r statRow
	if err := decodeRow(row, &r); err != nil {
		return nil, err
	}
	return &model.InstructorStat{ID: r.ID, InstructorID: r.InstructorID, LessonType: r.LessonType, Hours: r.Hours}, nil
}

func decodeJoinRequest(row tablestore.Row) (*model.JoinRequest, error) {
	var r joinRequestRow
	if err := decodeRow(row, &r); err != nil {
		return nil, err
	}
	return &model.JoinRequest{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone,
		Message:   r.Message,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
	}, nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// ────── 编码 ──────
// 写入的值只使用基础类型或 nil，三种后端都能直接处理。

func nullableString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullableInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func encodeUser(u *model.User) tablestore.Row {
	return tablestore.Row{
		"id":             u.ID,
		"name":           u.Name,
		"email":          u.Email,
		"phone":          u.Phone,
		"age":            nullableInt(u.Age),
		"role":           string(u.Role),
		"status":         string(u.Status),
		"background":     u.Background,
		"password_hash":  u.PasswordHash,
		"no_show_count":  u.NoShowCount,
		"total_hours":    u.TotalHours,
		"current_lesson": u.CurrentLesson,
		"created_at":     u.CreatedAt.UTC(),
	}
}

func encodeUserPatch(p model.UserPatch) tablestore.Row {
	row := tablestore.Row{}
	if p.Name.Valid {
		row["name"] = p.Name.Value
	}
	if p.Email.Valid {
		row["email"] = p.Email.Value
	}
	if p.Phone.Valid {
		row["phone"] = p.Phone.Value
	}
	if p.Age.Valid {
		row["age"] = nullableInt(p.Age.Value)
	}
	if p.Role.Valid {
		row["role"] = string(p.Role.Value)
	}
	if p.Status.Valid {
		row["status"] = string(p.Status.Value)
	}
	if p.Background.Valid {
		row["background"] = p.Background.Value
	}
	if p.PasswordHash.Valid {
		row["password_hash"] = p.PasswordHash.Value
	}
	if p.NoShowCount.Valid {
		row["no_show_count"] = p.NoShowCount.Value
	}
	if p.TotalHours.Valid {
		row["total_hours"] = p.TotalHours.Value
	}
	if p.CurrentLesson.Valid {
		row["current_lesson"] = p.CurrentLesson.Value
	}
	return row
}

func encodeSlot(s *model.Slot) tablestore.Row {
	return tablestore.Row{
		"id":                   s.ID,
		"date":                 s.Date,
		"time_start":           s.TimeStart,
		"time_end":             s.TimeEnd,
		"day_type":             string(s.DayType),
		"lead_instructor_id":   nullableString(s.LeadInstructorID),
		"second_instructor_id": nullableString(s.SecondInstructorID),
		"trainee_id":           nullableString(s.TraineeID),
		"lesson_number":        nullableInt(s.LessonNumber),
		"notes":                s.Notes,
		"completed":            s.Completed,
		"attendance_marked":    s.AttendanceMarked,
		"created_at":           s.CreatedAt.UTC(),
	}
}

func encodeSlotPatch(p model.SlotPatch) tablestore.Row {
	row := tablestore.Row{}
	if p.LeadInstructorID.Valid {
		row["lead_instructor_id"] = nullableString(p.LeadInstructorID.Value)
	}
	if p.SecondInstructorID.Valid {
		row["second_instructor_id"] = nullableString(p.SecondInstructorID.Value)
	}
	if p.TraineeID.Valid {
		row["trainee_id"] = nullableString(p.TraineeID.Value)
	}
	if p.LessonNumber.Valid {
		row["lesson_number"] = nullableInt(p.LessonNumber.Value)
	}
	if p.Notes.Valid {
		row["notes"] = p.Notes.Value
	}
	if p.Completed.Valid {
		row["completed"] = p.Completed.Value
	}
	if p.AttendanceMarked.Valid {
		row["attendance_marked"] = p.AttendanceMarked.Value
	}
	return row
}

func encodeNotice(n *model.Notice) tablestore.Row {
	return tablestore.Row{
		"id":         n.ID,
		"content":    n.Content,
		"created_by": nullableString(n.CreatedBy),
		"created_at": n.CreatedAt.UTC(),
	}
}

func encodeLog(l *model.LogEntry) tablestore.Row {
	return tablestore.Row{
		"id":        l.ID,
		"user_id":   nullableString(l.UserID),
		"action":    string(l.Action),
		"details":   l.Details,
		"timestamp": l.Timestamp.UTC(),
	}
}

func encodeStat(s *model.InstructorStat) tablestore.Row {
	return tablestore.Row{
		"id":            s.ID,
		"instructor_id": s.InstructorID,
		"lesson_type":   s.LessonType,
		"hours":         s.Hours,
	}
}

func encodeJoinRequest(j *model.JoinRequest) tablestore.Row {
	return tablestore.Row{
		"id":         j.ID,
		"name":       j.Name,
		"email":      j.Email,
		"phone":      j.Phone,
		"message":    j.Message,
		"status":     j.Status,
		"created_at": j.CreatedAt.UTC(),
	}
}

// decodeAll 批量解码
func decodeAll[T any](rows []tablestore.Row, fn func(tablestore.Row) (*T, error)) ([]T, error) {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		v, err := fn(row)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}
