package repository

import (
	"time"

	"github.com/google/uuid"

	"github.com/barak121-cloud/sim-management-bh/pkg/tablestore"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User           UserRepository
	Slot           SlotRepository
	Notice         NoticeRepository
	Log            LogRepository
	InstructorStat InstructorStatRepository
	JoinRequest    JoinRequestRepository
}

// Option 聚合构造选项
type Option func(*store)

// WithClock 替换时间来源（测试使用）
func WithClock(now func() time.Time) Option {
	return func(s *store) { s.now = now }
}

// WithIDGenerator 替换 ID 生成方式（测试使用）
func WithIDGenerator(newID func() string) Option {
	return func(s *store) { s.newID = newID }
}

// store 各实体仓库共享的表服务与 ID/时间来源
type store struct {
	backend tablestore.Backend
	now     func() time.Time
	newID   func() string
}

// NewRepository 创建 Repository 聚合，所有实体共用同一个表服务
func NewRepository(backend tablestore.Backend, opts ...Option) *Repository {
	s := &store{
		backend: backend,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	return &Repository{
		User:           &userRepo{s},
		Slot:           &slotRepo{s},
		Notice:         &noticeRepo{s},
		Log:            &logRepo{s},
		InstructorStat: &instructorStatRepo{s},
		JoinRequest:    &joinRequestRepo{s},
	}
}
