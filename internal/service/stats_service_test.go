package service

import (
	"context"
	"errors"
	"testing"

	"github.com/barak121-cloud/sim-management-bh/internal/dto"
	"github.com/barak121-cloud/sim-management-bh/internal/model"
)

func TestStatsService_UpdateInstructorStats_Accumulates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.createUser(t, "A", "a@test.com", model.RoleInstructorSenior, "")

	if _, err := env.svc.Stats.UpdateInstructorStats(ctx, &dto.UpdateInstructorStatsRequest{
		InstructorID: a.ID, LessonType: "basic", Hours: 2,
	}); err != nil {
		t.Fatalf("第一次更新应成功: %v", err)
	}
	stat, err := env.svc.Stats.UpdateInstructorStats(ctx, &dto.UpdateInstructorStatsRequest{
		InstructorID: a.ID, LessonType: "basic", Hours: 1.5,
	})
	if err != nil {
		t.Fatalf("第二次更新应成功: %v", err)
	}
	if stat.Hours != 3.5 {
		t.Errorf("期望累计 3.5 小时，实际 %v", stat.Hours)
	}

	stats, _ := env.svc.Stats.List(ctx, a.ID)
	if len(stats) != 1 {
		t.Errorf("同一 (教练, 类型) 只应有一行，实际 %d", len(stats))
	}
	if u := env.user(t, a.ID); u.TotalHours != 3.5 {
		t.Errorf("教练总时长期望 3.5，实际 %v", u.TotalHours)
	}
}

func TestStatsService_UpdateInstructorStats_NotInstructor(t *testing.T) {
	env := newTestEnv(t)
	tr := env.createUser(t, "T", "t@test.com", model.RoleTrainee, "")

	_, err := env.svc.Stats.UpdateInstructorStats(context.Background(), &dto.UpdateInstructorStatsRequest{
		InstructorID: tr.ID, LessonType: "basic", Hours: 1,
	})
	if !errors.Is(err, ErrNotInstructor) {
		t.Errorf("期望 ErrNotInstructor，实际: %v", err)
	}
}

func TestStatsService_InstructorReport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	active := env.createUser(t, "A", "a@test.com", model.RoleInstructorSenior, "")
	idle := env.createUser(t, "J", "j@test.com", model.RoleInstructorJunior, "")
	env.createUser(t, "T", "t@test.com", model.RoleTrainee, "")

	slot := env.createSlot(t, "2025-01-08", model.DayNormal, &active.ID)
	lesson := 2
	if _, err := env.repo.Slot.Update(ctx, slot.ID, model.SlotPatch{
		LessonNumber: model.Val(&lesson),
		Completed:    model.Val(true),
	}); err != nil {
		t.Fatalf("更新时段失败: %v", err)
	}
	// 较早的时段，超过 14 天
	env.createSlot(t, "2024-12-01", model.DayNormal, &idle.ID)

	reports, err := env.svc.Stats.InstructorReport(ctx)
	if err != nil {
		t.Fatalf("InstructorReport 应成功: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("期望 2 个教练，实际 %d", len(reports))
	}

	byID := map[string]dto.InstructorReport{}
	for _, r := range reports {
		byID[r.InstructorID] = r
	}
	ra := byID[active.ID]
	if ra.Inactive || ra.Alert {
		t.Error("近期带课的教练不应标记为不活跃")
	}
	if ra.LastActivity == nil || *ra.LastActivity != "2025-01-08" {
		t.Errorf("期望最后活动 2025-01-08，实际 %v", ra.LastActivity)
	}
	if len(ra.LessonCounts) != model.LastLesson || ra.LessonCounts[1].Count != 1 {
		t.Errorf("期望第 2 课完成 1 次，实际 %+v", ra.LessonCounts)
	}

	rj := byID[idle.ID]
	if !rj.Inactive || !rj.Alert {
		t.Error("初级教练超过 14 天未带课应告警")
	}
}
