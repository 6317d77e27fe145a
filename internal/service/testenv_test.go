package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/barak121-cloud/sim-management-bh/config"
	"github.com/barak121-cloud/sim-management-bh/internal/model"
	"github.com/barak121-cloud/sim-management-bh/internal/repository"
	"github.com/barak121-cloud/sim-management-bh/internal/session"
	"github.com/barak121-cloud/sim-management-bh/pkg/jwt"
	"github.com/barak121-cloud/sim-management-bh/pkg/kv"
	"github.com/barak121-cloud/sim-management-bh/pkg/tablestore"
)

// ── 测试辅助 ──
// 服务测试直接使用真实的 Repository，底层为内存 KV 上的镜像表服务。

const testPassword = "password123"

// testToday 测试中的"今天"
var testToday = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	repo     *repository.Repository
	sessions *session.Manager
	svc      *Service
	seq      int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{}
	store := kv.NewMemory()
	// 每次取时间前进一秒，保证创建时间严格递增
	clock := func() time.Time {
		env.seq++
		return testToday.Add(time.Duration(env.seq) * time.Second)
	}
	env.repo = repository.NewRepository(tablestore.NewMirror(store, "test"), repository.WithClock(clock))

	cfg := &config.Config{
		Auth: config.AuthConfig{JWTSecret: "test-secret-at-least-16", AccessTokenTTL: time.Hour},
		Seed: config.SeedConfig{
			AdminName:     "מנהל",
			AdminEmail:    "admin@test.com",
			AdminPassword: "admin-password",
			WelcomeNotice: "ברוכים הבאים",
		},
	}
	env.sessions = session.NewManager(store, jwt.NewManager(&cfg.Auth), "test")
	env.svc = NewService(cfg, env.repo, env.sessions, zap.NewNop())

	fixed := func() time.Time { return testToday }
	env.svc.Slot.(*slotService).now = fixed
	env.svc.Stats.(*statsService).now = fixed
	env.svc.Export.(*exportService).now = fixed
	env.svc.Calendar.(*calendarService).now = fixed
	return env
}

// createUser 直接写入一个用户（密码为 testPassword）
func (e *testEnv) createUser(t *testing.T, name, email string, role model.Role, status model.UserStatus) *model.User {
	t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	u := &model.User{
		Name:         name,
		Email:        email,
		Role:         role,
		Status:       status,
		PasswordHash: string(hash),
	}
	if err := e.repo.User.Create(context.Background(), u); err != nil {
		t.Fatalf("创建测试用户失败: %v", err)
	}
	return u
}

// createSlot 直接写入一个时段
func (e *testEnv) createSlot(t *testing.T, date string, dayType model.DayType, lead *string) *model.Slot {
	t.Helper()
	s := &model.Slot{
		Date:             date,
		TimeStart:        "10:00",
		TimeEnd:          "11:00",
		DayType:          dayType,
		LeadInstructorID: lead,
	}
	if err := e.repo.Slot.Create(context.Background(), s); err != nil {
		t.Fatalf("创建测试时段失败: %v", err)
	}
	return s
}

func (e *testEnv) logs(t *testing.T) []model.LogEntry {
	t.Helper()
	entries, err := e.repo.Log.List(context.Background())
	if err != nil {
		t.Fatalf("读取日志失败: %v", err)
	}
	return entries
}

func (e *testEnv) user(t *testing.T, id string) *model.User {
	t.Helper()
	u, err := e.repo.User.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("读取用户失败: %v", err)
	}
	return u
}
