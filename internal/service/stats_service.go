package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/barak121-cloud/sim-management-bh/internal/dto"
	"github.com/barak121-cloud/sim-management-bh/internal/model"
	"github.com/barak121-cloud/sim-management-bh/internal/repository"
	pkgerrors "github.com/barak121-cloud/sim-management-bh/pkg/errors"
)

// inactivityWindow 超过该天数没有带课视为不活跃
const inactivityWindow = 14

// StatsService 教练时长统计接口
type StatsService interface {
	// UpdateInstructorStats 累加 (教练, 课程类型) 的时长，同时累加到教练的总时长
	UpdateInstructorStats(ctx context.Context, req *dto.UpdateInstructorStatsRequest) (*model.InstructorStat, error)
	List(ctx context.Context, instructorID string) ([]model.InstructorStat, error)
	InstructorReport(ctx context.Context) ([]dto.InstructorReport, error)
}

type statsService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewStatsService 创建 StatsService 实例
func NewStatsService(repo *repository.Repository, logger *zap.Logger) StatsService {
	return &statsService{repo: repo, logger: logger, now: time.Now}
}

func (s *statsService) UpdateInstructorStats(ctx context.Context, req *dto.UpdateInstructorStatsRequest) (*model.InstructorStat, error) {
	instructor, err := loadUser(ctx, s.repo, s.logger, req.InstructorID)
	if err != nil {
		return nil, err
	}
	if !instructor.Role.IsInstructor() {
		return nil, ErrNotInstructor
	}

	stat, err := s.repo.InstructorStat.Find(ctx, req.InstructorID, req.LessonType)
	switch {
	case err == nil:
		stat, err = s.repo.InstructorStat.SetHours(ctx, stat.ID, stat.Hours+req.Hours)
	case errors.Is(err, pkgerrors.ErrNotFound):
		stat = &model.InstructorStat{
			InstructorID: req.InstructorID,
			LessonType:   req.LessonType,
			Hours:        req.Hours,
		}
		err = s.repo.InstructorStat.Create(ctx, stat)
	}
	if err != nil {
		s.logger.Error("更新教练统计失败", zap.String("instructor_id", req.InstructorID), zap.Error(err))
		return nil, err
	}

	if _, err := s.repo.User.Update(ctx, instructor.ID, model.UserPatch{
		TotalHours: model.Val(instructor.TotalHours + req.Hours),
	}); err != nil {
		s.logger.Error("更新教练总时长失败", zap.String("instructor_id", instructor.ID), zap.Error(err))
		return nil, err
	}

	return stat, nil
}

func (s *statsService) List(ctx context.Context, instructorID string) ([]model.InstructorStat, error) {
	var (
		stats []model.InstructorStat
		err   error
	)
	if instructorID != "" {
		stats, err = s.repo.InstructorStat.ListByInstructor(ctx, instructorID)
	} else {
		stats, err = s.repo.InstructorStat.List(ctx)
	}
	if err != nil {
		s.logger.Error("列出教练统计失败", zap.Error(err))
		return nil, err
	}
	return stats, nil
}

func (s *statsService) InstructorReport(ctx context.Context) ([]dto.InstructorReport, error) {
	users, err := s.repo.User.List(ctx)
	if err != nil {
		s.logger.Error("列出用户失败", zap.Error(err))
		return nil, err
	}
	slots, err := s.repo.Slot.List(ctx)
	if err != nil {
		s.logger.Error("列出时段失败", zap.Error(err))
		return nil, err
	}
	stats, err := s.repo.InstructorStat.List(ctx)
	if err != nil {
		s.logger.Error("列出教练统计失败", zap.Error(err))
		return nil, err
	}

	now := s.now()
	today := now.Format(model.DateLayout)
	cutoff := now.AddDate(0, 0, -inactivityWindow).Format(model.DateLayout)

	reports := make([]dto.InstructorReport, 0)
	for _, u := range users {
		if !u.Role.IsInstructor() {
			continue
		}

		report := dto.InstructorReport{
			InstructorID: u.ID,
			Name:         u.Name,
			Role:         u.Role,
			TotalHours:   u.TotalHours,
			Stats:        make([]model.InstructorStat, 0),
		}

		counts := make([]int, model.LastLesson+1)
		var last string
		for i := range slots {
			sl := &slots[i]
			if !teaches(sl, u.ID) {
				continue
			}
			if sl.Date <= today && sl.Date > last {
				last = sl.Date
			}
			if sl.Completed && sl.LessonNumber != nil && model.ValidLesson(*sl.LessonNumber) {
				counts[*sl.LessonNumber]++
			}
		}
		if last != "" {
			report.LastActivity = &last
		}
		report.Inactive = last == "" || last < cutoff
		report.Alert = report.Inactive && u.Role == model.RoleInstructorJunior

		for _, lesson := range model.Syllabus {
			report.LessonCounts = append(report.LessonCounts, dto.LessonCount{
				Number: lesson.Number,
				Name:   model.LessonName(lesson.Number),
				Count:  counts[lesson.Number],
			})
		}
		for _, st := range stats {
			if st.InstructorID == u.ID {
				report.Stats = append(report.Stats, st)
			}
		}

		reports = append(reports, report)
	}
	return reports, nil
}

// teaches 用户是否为该时段的主教练或副教练
func teaches(slot *model.Slot, userID string) bool {
	return (slot.LeadInstructorID != nil && *slot.LeadInstructorID == userID) ||
		(slot.SecondInstructorID != nil && *slot.SecondInstructorID == userID)
}
