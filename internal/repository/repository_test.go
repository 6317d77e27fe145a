package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/barak121-cloud/sim-management-bh/internal/model"
	pkgerrors "github.com/barak121-cloud/sim-management-bh/pkg/errors"
	"github.com/barak121-cloud/sim-management-bh/pkg/kv"
	"github.com/barak121-cloud/sim-management-bh/pkg/tablestore"
)

// newTestRepo 基于内存镜像的仓库，时钟每次调用前进一秒
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	clock := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	seq := 0
	return NewRepository(
		tablestore.NewMirror(kv.NewMemory(), "test"),
		WithClock(func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		}),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		}),
	)
}

func TestUserRepo_CreateDefaults(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	trainee := &model.User{Name: "Noa", Email: " Noa@Example.com ", Role: model.RoleTrainee}
	if err := repo.User.Create(ctx, trainee); err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if trainee.ID == "" || trainee.CreatedAt.IsZero() {
		t.Error("应分配 ID 与创建时间")
	}
	if trainee.Status != model.StatusInTraining {
		t.Errorf("学员初始状态应为 in_training，实际 %s", trainee.Status)
	}
	if trainee.NoShowCount != 0 || trainee.TotalHours != 0 || trainee.CurrentLesson != 1 {
		t.Errorf("默认值不符: %+v", trainee)
	}
	if trainee.Email != "noa@example.com" {
		t.Errorf("邮箱应规范化，实际 %q", trainee.Email)
	}

	instructor := &model.User{Name: "Avi", Email: "avi@example.com", Role: model.RoleInstructorSenior}
	_ = repo.User.Create(ctx, instructor)
	if instructor.Status != model.StatusActive {
		t.Errorf("非学员初始状态应为 active，实际 %s", instructor.Status)
	}

	got, err := repo.User.GetByEmail(ctx, "NOA@example.com")
	if err != nil {
		t.Fatalf("GetByEmail 应成功: %v", err)
	}
	if got.ID != trainee.ID {
		t.Errorf("查到的用户不符")
	}
}

func TestUserRepo_UpdatePartial(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	u := &model.User{Name: "Dana", Email: "dana@example.com", Phone: "050", Age: model.Ptr(40), Role: model.RoleTrainee}
	_ = repo.User.Create(ctx, u)

	updated, err := repo.User.Update(ctx, u.ID, model.UserPatch{
		NoShowCount: model.Val(2),
		Age:         model.Null[int](),
	})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if updated.NoShowCount != 2 || updated.Age != nil {
		t.Errorf("补丁字段未生效: %+v", updated)
	}
	if updated.Name != "Dana" || updated.Phone != "050" || updated.Role != model.RoleTrainee {
		t.Errorf("未提供的字段不应变化: %+v", updated)
	}

	if _, err := repo.User.Update(ctx, "missing", model.UserPatch{Name: model.Val("x")}); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Errorf("不存在的用户应返回 ErrNotFound，实际 %v", err)
	}
	if _, err := repo.User.GetByID(ctx, "missing"); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Errorf("不存在的用户应返回 ErrNotFound，实际 %v", err)
	}
}

func TestSlotRepo_RoundTripAndOrder(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for _, s := range []model.Slot{
		{Date: "2024-01-08", TimeStart: "10:00", TimeEnd: "11:00", DayType: model.DayNormal},
		{Date: "2024-01-01", TimeStart: "12:00", TimeEnd: "13:00", DayType: model.DayNormal},
		{Date: "2024-01-01", TimeStart: "09:00", TimeEnd: "10:00", DayType: model.DayIndependent},
	} {
		slot := s
		slot.Completed = true // Create 必须重置
		if err := repo.Slot.Create(ctx, &slot); err != nil {
			t.Fatalf("Create 应成功: %v", err)
		}
		if slot.Completed || slot.AttendanceMarked {
			t.Error("新时段的 completed / attendance_marked 应为 false")
		}
	}

	slots, err := repo.Slot.List(ctx)
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(slots) != 3 {
		t.Fatalf("期望 3 个时段，实际 %d", len(slots))
	}
	if slots[0].TimeStart != "09:00" || slots[1].TimeStart != "12:00" || slots[2].Date != "2024-01-08" {
		t.Errorf("排序不符: %v %v %v", slots[0], slots[1], slots[2])
	}

	byDate, _ := repo.Slot.ListByDate(ctx, "2024-01-01")
	if len(byDate) != 2 {
		t.Errorf("2024-01-01 应有 2 个时段，实际 %d", len(byDate))
	}
}

func TestSlotRepo_SeatSetAndClear(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	slot := &model.Slot{Date: "2024-01-01", TimeStart: "09:00", TimeEnd: "10:00", DayType: model.DayNormal}
	_ = repo.Slot.Create(ctx, slot)

	lead := "instructor-1"
	updated, err := repo.Slot.Update(ctx, slot.ID, model.SlotPatch{
		LeadInstructorID: model.Val(&lead),
		LessonNumber:     model.Val(model.Ptr(3)),
	})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if updated.LeadInstructorID == nil || *updated.LeadInstructorID != lead {
		t.Errorf("主教练未写入: %+v", updated)
	}
	if updated.LessonNumber == nil || *updated.LessonNumber != 3 {
		t.Errorf("课程编号未写入: %+v", updated.LessonNumber)
	}

	cleared, err := repo.Slot.Update(ctx, slot.ID, model.SeatPatch(model.SeatLead, nil))
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if cleared.LeadInstructorID != nil {
		t.Error("主教练应被清空")
	}
	if cleared.LessonNumber == nil {
		t.Error("未提供的字段不应变化")
	}

	if err := repo.Slot.Delete(ctx, slot.ID); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if _, err := repo.Slot.GetByID(ctx, slot.ID); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Errorf("删除后应返回 ErrNotFound，实际 %v", err)
	}
}

func TestNoticeAndLogRepo_NewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for _, content := range []string{"first", "second", "third"} {
		if err := repo.Notice.Create(ctx, &model.Notice{Content: content}); err != nil {
			t.Fatalf("Create 应成功: %v", err)
		}
	}
	notices, _ := repo.Notice.List(ctx)
	if len(notices) != 3 || notices[0].Content != "third" || notices[2].Content != "first" {
		t.Errorf("公告应按时间倒序: %+v", notices)
	}

	uid := "u1"
	for _, a := range []model.LogAction{model.ActionNoShow, model.ActionNoShowRemoved} {
		if err := repo.Log.Append(ctx, &model.LogEntry{UserID: &uid, Action: a}); err != nil {
			t.Fatalf("Append 应成功: %v", err)
		}
	}
	_ = repo.Log.Append(ctx, &model.LogEntry{Action: model.ActionSlotCancelled})

	logs, _ := repo.Log.List(ctx)
	if len(logs) != 3 || logs[0].Action != model.ActionSlotCancelled {
		t.Errorf("日志应按时间倒序: %+v", logs)
	}
	mine, _ := repo.Log.ListByUser(ctx, uid)
	if len(mine) != 2 || mine[0].Action != model.ActionNoShowRemoved {
		t.Errorf("按用户过滤结果不符: %+v", mine)
	}
}

func TestInstructorStatRepo_Find(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if _, err := repo.InstructorStat.Find(ctx, "i1", "lesson_1"); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("期望 ErrNotFound，实际 %v", err)
	}

	stat := &model.InstructorStat{InstructorID: "i1", LessonType: "lesson_1", Hours: 1.5}
	_ = repo.InstructorStat.Create(ctx, stat)
	_ = repo.InstructorStat.Create(ctx, &model.InstructorStat{InstructorID: "i1", LessonType: "lesson_2", Hours: 1})
	_ = repo.InstructorStat.Create(ctx, &model.InstructorStat{InstructorID: "i2", LessonType: "lesson_1", Hours: 2})

	found, err := repo.InstructorStat.Find(ctx, "i1", "lesson_1")
	if err != nil || found.ID != stat.ID {
		t.Fatalf("Find 结果不符: %+v err=%v", found, err)
	}

	updated, err := repo.InstructorStat.SetHours(ctx, stat.ID, 3)
	if err != nil || updated.Hours != 3 {
		t.Fatalf("SetHours 结果不符: %+v err=%v", updated, err)
	}

	mine, _ := repo.InstructorStat.ListByInstructor(ctx, "i1")
	if len(mine) != 2 {
		t.Errorf("i1 应有 2 条统计，实际 %d", len(mine))
	}
}

func TestJoinRequestRepo_PendingByDefault(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	req := &model.JoinRequest{Name: "Yael", Email: "yael@example.com"}
	if err := repo.JoinRequest.Create(ctx, req); err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if req.Status != model.JoinRequestPending {
		t.Errorf("默认状态应为 pending，实际 %s", req.Status)
	}
	list, _ := repo.JoinRequest.List(ctx)
	if len(list) != 1 {
		t.Errorf("期望 1 条申请，实际 %d", len(list))
	}
}

func TestDecodeSlot_PostgresDateColumn(t *testing.T) {
	// PostgreSQL 驱动把 DATE 列扫描为 time.Time，时间戳可能是字符串
	row := tablestore.Row{
		"id":                 "s1",
		"date":               time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		"time_start":         "09:00",
		"time_end":           "10:00",
		"day_type":           "normal",
		"lead_instructor_id": nil,
		"trainee_id":         "",
		"lesson_number":      int64(4),
		"completed":          true,
		"created_at":         "2024-01-01T10:00:00.123456+00:00",
	}
	slot, err := decodeSlot(row)
	if err != nil {
		t.Fatalf("decodeSlot 失败: %v", err)
	}
	if slot.Date != "2024-01-15" {
		t.Errorf("日期应格式化为 YYYY-MM-DD，实际 %s", slot.Date)
	}
	if slot.TraineeID != nil || slot.LeadInstructorID != nil {
		t.Error("空字符串与 nil 都应视为空席")
	}
	if slot.LessonNumber == nil || *slot.LessonNumber != 4 {
		t.Errorf("lesson_number 解码不符: %v", slot.LessonNumber)
	}
	if slot.CreatedAt.Year() != 2024 || slot.CreatedAt.Nanosecond() != 123456000 {
		t.Errorf("created_at 解码不符: %v", slot.CreatedAt)
	}
}
