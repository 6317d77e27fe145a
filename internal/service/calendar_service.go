package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/barak121-cloud/sim-management-bh/internal/model"
	"github.com/barak121-cloud/sim-management-bh/internal/repository"
)

// ── 日历订阅 ──────────────────────────────────────────────
//
// 把用户占用的每个时段输出为一个 VEVENT。
// 时段日期与时刻按训练中心所在时区（Asia/Jerusalem）解释，时区数据随二进制一起嵌入。
// ─────────────────────────────────────────────────────────────

const (
	jerusalemTimezone = "Asia/Jerusalem"
	calendarProductID = "-//Beit HaLohem//Simulator Schedule//HE"
)

var seatSummary = map[model.Seat]string{
	model.SeatLead:    "סימולטור - מדריך מוביל",
	model.SeatSecond:  "סימולטור - מדריך משני",
	model.SeatTrainee: "סימולטור - שיעור",
}

// CalendarService 日历订阅业务接口
type CalendarService interface {
	UserFeed(ctx context.Context, userID string) (string, error)
}

type calendarService struct {
	repo   *repository.Repository
	logger *zap.Logger
	loc    *time.Location
	now    func() time.Time
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(repo *repository.Repository, logger *zap.Logger) CalendarService {
	loc, err := time.LoadLocation(jerusalemTimezone)
	if err != nil {
		logger.Warn("加载时区失败，日历使用 UTC", zap.String("tz", jerusalemTimezone), zap.Error(err))
		loc = time.UTC
	}
	return &calendarService{repo: repo, logger: logger, loc: loc, now: time.Now}
}

func (s *calendarService) UserFeed(ctx context.Context, userID string) (string, error) {
	slots, err := s.repo.Slot.List(ctx)
	if err != nil {
		s.logger.Error("生成日历时读取时段失败", zap.String("user_id", userID), zap.Error(err))
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetXWRCalName("בית הלוחם - סימולטור")
	cal.SetXWRTimezone(s.loc.String())

	stamp := s.now().UTC()
	for i := range slots {
		slot := &slots[i]
		seat, ok := seatOf(slot, userID)
		if !ok {
			continue
		}
		start, err := slot.StartAt(s.loc)
		if err != nil {
			s.logger.Warn("跳过时间格式错误的时段", zap.String("slot_id", slot.ID), zap.Error(err))
			continue
		}
		end, err := slot.EndAt(s.loc)
		if err != nil {
			s.logger.Warn("跳过时间格式错误的时段", zap.String("slot_id", slot.ID), zap.Error(err))
			continue
		}

		evt := cal.AddEvent(fmt.Sprintf("%s-%s@beit-halohem", slot.ID, seat))
		evt.SetDtStampTime(stamp)
		evt.SetStartAt(start)
		evt.SetEndAt(end)
		evt.SetSummary(seatSummary[seat])
		evt.SetDescription(eventDescription(slot))
	}

	return cal.Serialize(), nil
}

// seatOf 返回用户在时段上占用的席位
func seatOf(slot *model.Slot, userID string) (model.Seat, bool) {
	for _, seat := range []model.Seat{model.SeatLead, model.SeatSecond, model.SeatTrainee} {
		if id := slot.Occupant(seat); id != nil && *id == userID {
			return seat, true
		}
	}
	return "", false
}

func eventDescription(slot *model.Slot) string {
	var lines []string
	if slot.LessonNumber != nil {
		lines = append(lines, model.LessonName(*slot.LessonNumber))
	}
	if slot.Notes != "" {
		lines = append(lines, slot.Notes)
	}
	return strings.Join(lines, "\n")
}
