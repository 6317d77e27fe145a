package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/barak121-cloud/sim-management-bh/internal/dto"
	"github.com/barak121-cloud/sim-management-bh/internal/model"
)

// ── 缺席与冻结测试 ──

func TestUserService_IncrementNoShow_ThreeTimesFreezes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.createUser(t, "T", "t@test.com", model.RoleTrainee, "")

	for i := 1; i <= 3; i++ {
		got, err := env.svc.User.IncrementNoShow(ctx, u.ID)
		if err != nil {
			t.Fatalf("第 %d 次 IncrementNoShow 应成功: %v", i, err)
		}
		if got.NoShowCount != i {
			t.Errorf("期望缺席次数 %d，实际 %d", i, got.NoShowCount)
		}
		if frozen := got.IsFrozen(); frozen != (i >= 3) {
			t.Errorf("第 %d 次后冻结状态错误: %v", i, frozen)
		}
	}

	logs := env.logs(t)
	if len(logs) != 3 {
		t.Fatalf("期望 3 条日志，实际 %d", len(logs))
	}
	for _, l := range logs {
		if l.Action != model.ActionNoShow {
			t.Errorf("期望 no_show 日志，实际 %s", l.Action)
		}
	}
	// 最新的在前
	if !strings.Contains(logs[0].Details, "הוקפא") {
		t.Errorf("第三条日志应说明冻结，实际 %q", logs[0].Details)
	}
	if strings.Contains(logs[1].Details, "הוקפא") || strings.Contains(logs[2].Details, "הוקפא") {
		t.Error("前两条日志不应说明冻结")
	}
}

func TestUserService_RemoveNoShowStrike_ZeroIsNoop(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "T", "t@test.com", model.RoleTrainee, "")

	got, err := env.svc.User.RemoveNoShowStrike(context.Background(), u.ID, "טעות", "", true)
	if err != nil {
		t.Fatalf("RemoveNoShowStrike 应成功: %v", err)
	}
	if got.NoShowCount != 0 || got.Status != model.StatusInTraining {
		t.Errorf("用户不应被修改: %+v", got)
	}
	if len(env.logs(t)) != 0 {
		t.Error("次数为 0 时不应写入日志")
	}
}

func TestUserService_RemoveNoShowStrike_Unfreezes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.createUser(t, "T", "t@test.com", model.RoleTrainee, "")
	for i := 0; i < 3; i++ {
		_, _ = env.svc.User.IncrementNoShow(ctx, u.ID)
	}

	if _, err := env.svc.User.RemoveNoShowStrike(ctx, u.ID, "מחלה", "", false); !errors.Is(err, ErrConfirmationRequired) {
		t.Fatalf("期望 ErrConfirmationRequired，实际: %v", err)
	}

	got, err := env.svc.User.RemoveNoShowStrike(ctx, u.ID, "מחלה", "אישור רפואי", true)
	if err != nil {
		t.Fatalf("RemoveNoShowStrike 应成功: %v", err)
	}
	if got.NoShowCount != 2 || got.Status != model.StatusActive {
		t.Errorf("期望次数 2 且状态 active，实际 %d %s", got.NoShowCount, got.Status)
	}

	logs := env.logs(t)
	if logs[0].Action != model.ActionNoShowRemoved || !strings.Contains(logs[0].Details, "מחלה") {
		t.Errorf("期望 noshow_removed 日志包含原因，实际 %+v", logs[0])
	}
}

func TestUserService_RemoveNoShowStrike_StaysFrozenAboveThreshold(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.createUser(t, "T", "t@test.com", model.RoleTrainee, "")
	for i := 0; i < 4; i++ {
		_, _ = env.svc.User.IncrementNoShow(ctx, u.ID)
	}

	got, err := env.svc.User.RemoveNoShowStrike(ctx, u.ID, "טעות", "", true)
	if err != nil {
		t.Fatalf("RemoveNoShowStrike 应成功: %v", err)
	}
	if got.NoShowCount != 3 || !got.IsFrozen() {
		t.Errorf("次数仍为 3 时应保持冻结，实际 %d %s", got.NoShowCount, got.Status)
	}
}

func TestUserService_Unfreeze_Override(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.createUser(t, "T", "t@test.com", model.RoleTrainee, "")
	for i := 0; i < 5; i++ {
		_, _ = env.svc.User.IncrementNoShow(ctx, u.ID)
	}

	if _, err := env.svc.User.Unfreeze(ctx, u.ID, false); !errors.Is(err, ErrConfirmationRequired) {
		t.Fatalf("期望 ErrConfirmationRequired，实际: %v", err)
	}
	got, err := env.svc.User.Unfreeze(ctx, u.ID, true)
	if err != nil {
		t.Fatalf("Unfreeze 应成功: %v", err)
	}
	if got.Status != model.StatusActive || got.NoShowCount != 0 {
		t.Errorf("期望 active 且次数清零，实际 %s %d", got.Status, got.NoShowCount)
	}
}

func TestUserService_Freeze(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "T", "t@test.com", model.RoleTrainee, "")

	got, err := env.svc.User.Freeze(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("Freeze 应成功: %v", err)
	}
	if !got.IsFrozen() {
		t.Error("期望状态为 frozen")
	}
	logs := env.logs(t)
	if len(logs) != 1 || logs[0].Action != model.ActionAccountFrozen {
		t.Errorf("期望 1 条 account_frozen 日志，实际 %+v", logs)
	}
}

func TestUserService_IncrementNoShow_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.User.IncrementNoShow(context.Background(), "missing")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}

// ── 资料修改测试 ──

func TestUserService_UpdateProfile_RefreshesSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.createUser(t, "T", "t@test.com", model.RoleTrainee, "")
	sess, _, err := env.sessions.Open(ctx, *u)
	if err != nil {
		t.Fatalf("建立会话失败: %v", err)
	}

	name := "שם חדש"
	got, err := env.svc.User.UpdateProfile(ctx, sess.ID, u.ID, &dto.UpdateProfileRequest{Name: &name})
	if err != nil {
		t.Fatalf("UpdateProfile 应成功: %v", err)
	}
	if got.Name != name {
		t.Errorf("期望名字已更新，实际 %q", got.Name)
	}

	loaded, err := env.sessions.Load(ctx, sess.ID)
	if err != nil {
		t.Fatalf("读取会话失败: %v", err)
	}
	if loaded.User.Name != name {
		t.Errorf("会话快照应同步更新，实际 %q", loaded.User.Name)
	}
}

func TestUserService_UpdateProfile_EmailTaken(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "T", "t@test.com", model.RoleTrainee, "")
	env.createUser(t, "O", "other@test.com", model.RoleTrainee, "")

	email := "OTHER@test.com"
	_, err := env.svc.User.UpdateProfile(context.Background(), "no-session", u.ID, &dto.UpdateProfileRequest{Email: &email})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("期望 ErrEmailTaken，实际: %v", err)
	}
}

func TestUserService_AdminUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.createUser(t, "T", "t@test.com", model.RoleTrainee, "")

	status := string(model.StatusSolo)
	lesson := 7
	got, err := env.svc.User.AdminUpdate(ctx, u.ID, &dto.AdminUpdateUserRequest{Status: &status, CurrentLesson: &lesson})
	if err != nil {
		t.Fatalf("AdminUpdate 应成功: %v", err)
	}
	if got.Status != model.StatusSolo || got.CurrentLesson != 7 {
		t.Errorf("期望 solo 与第 7 课，实际 %s %d", got.Status, got.CurrentLesson)
	}

	frozen := string(model.StatusFrozen)
	if _, err := env.svc.User.AdminUpdate(ctx, u.ID, &dto.AdminUpdateUserRequest{Status: &frozen}); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("期望 ErrInvalidStatus，实际: %v", err)
	}

	bad := 11
	if _, err := env.svc.User.AdminUpdate(ctx, u.ID, &dto.AdminUpdateUserRequest{CurrentLesson: &bad}); !errors.Is(err, ErrInvalidLesson) {
		t.Errorf("期望 ErrInvalidLesson，实际: %v", err)
	}
}

func TestUserService_AdminUpdate_DemotionReachesOpenSessions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.createUser(t, "A", "a2@test.com", model.RoleAdmin, "")
	_, token, err := env.sessions.Open(ctx, *u)
	if err != nil {
		t.Fatalf("建立会话失败: %v", err)
	}

	role := string(model.RoleStaff)
	if _, err := env.svc.User.AdminUpdate(ctx, u.ID, &dto.AdminUpdateUserRequest{Role: &role}); err != nil {
		t.Fatalf("AdminUpdate 应成功: %v", err)
	}

	sess, err := env.sessions.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("令牌应仍然有效: %v", err)
	}
	if sess.User.Role != model.RoleStaff {
		t.Errorf("降级后会话角色应为 staff，实际 %s", sess.User.Role)
	}

	if _, err := env.svc.User.Freeze(ctx, u.ID); err != nil {
		t.Fatalf("Freeze 应成功: %v", err)
	}
	sess, _ = env.sessions.Authenticate(ctx, token)
	if sess.User.Status != model.StatusFrozen {
		t.Errorf("冻结后会话状态应为 frozen，实际 %s", sess.User.Status)
	}
}
