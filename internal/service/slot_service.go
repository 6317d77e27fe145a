package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/barak121-cloud/sim-management-bh/internal/dto"
	"github.com/barak121-cloud/sim-management-bh/internal/model"
	"github.com/barak121-cloud/sim-management-bh/internal/repository"
	pkgerrors "github.com/barak121-cloud/sim-management-bh/pkg/errors"
)

// ── 时段模块业务错误 ──

var (
	ErrSlotNotFound          = errors.New("时段不存在")
	ErrInvalidDate           = errors.New("日期格式必须为 YYYY-MM-DD")
	ErrInvalidMonth          = errors.New("月份格式必须为 YYYY-MM")
	ErrInvalidTimeWindow     = errors.New("时间窗口格式必须为 HH:MM，且结束晚于开始")
	ErrNoTimeWindows         = errors.New("至少需要一个时间窗口")
	ErrInvalidDayType        = errors.New("无效的训练日类型")
	ErrInvalidRecurrence     = errors.New("无效的重复方式")
	ErrInvalidSeat           = errors.New("无效的席位")
	ErrSeatTaken             = errors.New("该席位已被占用")
	ErrLeadRequired          = errors.New("该时段还没有主教练")
	ErrNotInstructor         = errors.New("只有教练可以登记教练席位")
	ErrAlreadyLead           = errors.New("你已是该时段的主教练")
	ErrNotTrainee            = errors.New("只有学员可以登记学员席位")
	ErrTrainingDayNoTrainee  = errors.New("教练培训日不接受学员登记")
	ErrIndependentNotAllowed = errors.New("独立练习时段仅限单飞或结业学员")
	ErrNotSeatOccupant       = errors.New("你没有登记该席位")
	ErrSlotInPast            = errors.New("时段已过期")
	ErrNotSlotInstructor     = errors.New("只有该时段的教练或管理员可以操作")
	ErrNoTraineeOnSlot       = errors.New("该时段没有学员")
	ErrAttendanceMarked      = errors.New("该时段已记录出勤")
)

// SlotService 训练时段与登记业务接口
type SlotService interface {
	// CreateTrainingDay 为每个时间窗口创建时段，按重复方式复制到之后的日期
	CreateTrainingDay(ctx context.Context, req *dto.CreateTrainingDayRequest) ([]model.Slot, error)
	List(ctx context.Context, req *dto.SlotListRequest) ([]dto.SlotView, error)
	// ListAvailable 今天及以后、有主教练、没有学员的非教练培训时段
	ListAvailable(ctx context.Context) ([]model.Slot, error)
	GetByID(ctx context.Context, id string) (*model.Slot, error)
	Delete(ctx context.Context, id, actorID string, confirmed bool) error

	RegisterAsLead(ctx context.Context, slotID, actorID string) (*model.Slot, error)
	RegisterAsSecond(ctx context.Context, slotID, actorID string) (*model.Slot, error)
	RegisterAsTrainee(ctx context.Context, slotID, actorID string) (*model.Slot, error)
	CancelRegistration(ctx context.Context, slotID string, seat model.Seat, actorID string, confirmed bool) (*model.Slot, error)
	// FastTrackRegister 管理员把学员直接登记到时段，对该学员执行同样的校验
	FastTrackRegister(ctx context.Context, slotID, traineeID string) (*model.Slot, error)

	UpdateNotes(ctx context.Context, slotID, actorID, notes string) (*model.Slot, error)
	MarkAttendance(ctx context.Context, slotID, actorID string, attended bool) (*model.Slot, error)
}

// noShowRecorder 缺席记录（由 UserService 实现）
type noShowRecorder interface {
	IncrementNoShow(ctx context.Context, id string) (*model.User, error)
}

type slotService struct {
	repo    *repository.Repository
	noShows noShowRecorder
	logger  *zap.Logger
	now     func() time.Time
}

// NewSlotService 创建 SlotService 实例
func NewSlotService(repo *repository.Repository, noShows noShowRecorder, logger *zap.Logger) SlotService {
	return &slotService{repo: repo, noShows: noShows, logger: logger, now: time.Now}
}

// ────────────────────── 创建训练日 ──────────────────────

func (s *slotService) CreateTrainingDay(ctx context.Context, req *dto.CreateTrainingDayRequest) ([]model.Slot, error) {
	first, err := time.Parse(model.DateLayout, req.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	dayType := model.DayType(req.DayType)
	if !dayType.Valid() {
		return nil, ErrInvalidDayType
	}
	recurrence := model.Recurrence(req.Recurrence)
	if !recurrence.Valid() {
		return nil, ErrInvalidRecurrence
	}
	if len(req.Windows) == 0 {
		return nil, ErrNoTimeWindows
	}
	for _, w := range req.Windows {
		if err := validateWindow(w); err != nil {
			return nil, err
		}
	}

	extra, interval := recurrence.Occurrences()
	created := make([]model.Slot, 0, (extra+1)*len(req.Windows))
	for i := 0; i <= extra; i++ {
		date := first.AddDate(0, 0, i*interval).Format(model.DateLayout)
		for _, w := range req.Windows {
			slot := &model.Slot{
				Date:      date,
				TimeStart: w.Start,
				TimeEnd:   w.End,
				DayType:   dayType,
				Notes:     req.Notes,
			}
			if err := s.repo.Slot.Create(ctx, slot); err != nil {
				s.logger.Error("创建时段失败",
					zap.String("date", date),
					zap.Int("created", len(created)),
					zap.Error(err),
				)
				return created, err
			}
			created = append(created, *slot)
		}
	}

	s.logger.Info("创建训练日",
		zap.String("date", req.Date),
		zap.String("day_type", req.DayType),
		zap.String("recurrence", req.Recurrence),
		zap.Int("slots", len(created)),
	)
	return created, nil
}

func validateWindow(w model.TimeWindow) error {
	start, err := time.Parse(model.ClockLayout, w.Start)
	if err != nil {
		return ErrInvalidTimeWindow
	}
	end, err := time.Parse(model.ClockLayout, w.End)
	if err != nil {
		return ErrInvalidTimeWindow
	}
	if !end.After(start) {
		return ErrInvalidTimeWindow
	}
	return nil
}

// ────────────────────── 查询 ──────────────────────

func (s *slotService) List(ctx context.Context, req *dto.SlotListRequest) ([]dto.SlotView, error) {
	var (
		slots []model.Slot
		err   error
	)
	switch {
	case req.Date != "":
		if _, perr := time.Parse(model.DateLayout, req.Date); perr != nil {
			return nil, ErrInvalidDate
		}
		slots, err = s.repo.Slot.ListByDate(ctx, req.Date)
	case req.Month != "":
		if _, perr := time.Parse("2006-01", req.Month); perr != nil {
			return nil, ErrInvalidMonth
		}
		slots, err = s.repo.Slot.List(ctx)
		slots = filterSlots(slots, func(sl *model.Slot) bool {
			return strings.HasPrefix(sl.Date, req.Month+"-")
		})
	default:
		slots, err = s.repo.Slot.List(ctx)
	}
	if err != nil {
		s.logger.Error("列出时段失败", zap.Error(err))
		return nil, err
	}

	views := make([]dto.SlotView, 0, len(slots))
	for i := range slots {
		views = append(views, dto.SlotView{Slot: slots[i], State: slots[i].State()})
	}
	return views, nil
}

func (s *slotService) ListAvailable(ctx context.Context) ([]model.Slot, error) {
	slots, err := s.repo.Slot.List(ctx)
	if err != nil {
		s.logger.Error("列出时段失败", zap.Error(err))
		return nil, err
	}
	today := s.today()
	return filterSlots(slots, func(sl *model.Slot) bool {
		return sl.Date >= today &&
			sl.LeadInstructorID != nil &&
			sl.TraineeID == nil &&
			sl.DayType != model.DayInstructorTraining
	}), nil
}

func (s *slotService) GetByID(ctx context.Context, id string) (*model.Slot, error) {
	slot, err := s.repo.Slot.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, ErrSlotNotFound
		}
		s.logger.Error("查询时段失败", zap.String("slot_id", id), zap.Error(err))
		return nil, err
	}
	return slot, nil
}

func filterSlots(slots []model.Slot, keep func(*model.Slot) bool) []model.Slot {
	out := make([]model.Slot, 0, len(slots))
	for i := range slots {
		if keep(&slots[i]) {
			out = append(out, slots[i])
		}
	}
	return out
}

func (s *slotService) today() string {
	return s.now().Format(model.DateLayout)
}

// ────────────────────── 删除 ──────────────────────

func (s *slotService) Delete(ctx context.Context, id, actorID string, confirmed bool) error {
	slot, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !confirmed {
		return ErrConfirmationRequired
	}

	if err := s.repo.Slot.Delete(ctx, id); err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return ErrSlotNotFound
		}
		s.logger.Error("删除时段失败", zap.String("slot_id", id), zap.Error(err))
		return err
	}

	appendLog(ctx, s.repo, s.logger, &actorID, model.ActionSlotCancelled,
		fmt.Sprintf("בוטלה משבצת בתאריך %s בשעה %s", slot.Date, slot.TimeStart))
	return nil
}

// ────────────────────── 登记 ──────────────────────

func (s *slotService) RegisterAsLead(ctx context.Context, slotID, actorID string) (*model.Slot, error) {
	slot, actor, err := s.loadForRegistration(ctx, slotID, actorID)
	if err != nil {
		return nil, err
	}
	if err := checkLead(slot, actor); err != nil {
		return nil, err
	}
	return s.updateSlot(ctx, slotID, model.SeatPatch(model.SeatLead, &actor.ID))
}

func (s *slotService) RegisterAsSecond(ctx context.Context, slotID, actorID string) (*model.Slot, error) {
	slot, actor, err := s.loadForRegistration(ctx, slotID, actorID)
	if err != nil {
		return nil, err
	}
	if err := checkSecond(slot, actor); err != nil {
		return nil, err
	}
	return s.updateSlot(ctx, slotID, model.SeatPatch(model.SeatSecond, &actor.ID))
}

func (s *slotService) RegisterAsTrainee(ctx context.Context, slotID, actorID string) (*model.Slot, error) {
	slot, actor, err := s.loadForRegistration(ctx, slotID, actorID)
	if err != nil {
		return nil, err
	}
	if err := checkTrainee(slot, actor); err != nil {
		return nil, err
	}
	return s.updateSlot(ctx, slotID, traineePatch(actor))
}

func (s *slotService) FastTrackRegister(ctx context.Context, slotID, traineeID string) (*model.Slot, error) {
	slot, trainee, err := s.loadForRegistration(ctx, slotID, traineeID)
	if err != nil {
		return nil, err
	}
	if slot.Date < s.today() {
		return nil, ErrSlotInPast
	}
	if err := checkTrainee(slot, trainee); err != nil {
		return nil, err
	}

	updated, err := s.updateSlot(ctx, slotID, traineePatch(trainee))
	if err != nil {
		return nil, err
	}
	s.logger.Info("管理员直接登记学员", zap.String("slot_id", slotID), zap.String("trainee_id", traineeID))
	return updated, nil
}

func (s *slotService) CancelRegistration(ctx context.Context, slotID string, seat model.Seat, actorID string, confirmed bool) (*model.Slot, error) {
	if !seat.Valid() {
		return nil, ErrInvalidSeat
	}
	slot, err := s.GetByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	occupant := slot.Occupant(seat)
	if occupant == nil || *occupant != actorID {
		return nil, ErrNotSeatOccupant
	}
	if !confirmed {
		return nil, ErrConfirmationRequired
	}

	updated, err := s.updateSlot(ctx, slotID, model.SeatPatch(seat, nil))
	if err != nil {
		return nil, err
	}

	appendLog(ctx, s.repo, s.logger, &actorID, model.ActionRegistrationCancelled,
		fmt.Sprintf("ביטול רישום (%s) למשבצת %s", seat, slotID))
	return updated, nil
}

// loadForRegistration 读取时段与最新的用户记录（不使用会话快照），冻结用户不能登记
func (s *slotService) loadForRegistration(ctx context.Context, slotID, userID string) (*model.Slot, *model.User, error) {
	slot, err := s.GetByID(ctx, slotID)
	if err != nil {
		return nil, nil, err
	}
	user, err := loadUser(ctx, s.repo, s.logger, userID)
	if err != nil {
		return nil, nil, err
	}
	if user.IsFrozen() {
		return nil, nil, ErrAccountFrozen
	}
	return slot, user, nil
}

func checkLead(slot *model.Slot, actor *model.User) error {
	if slot.LeadInstructorID != nil {
		return ErrSeatTaken
	}
	if !actor.Role.IsInstructor() {
		return ErrNotInstructor
	}
	return nil
}

func checkSecond(slot *model.Slot, actor *model.User) error {
	if slot.LeadInstructorID == nil {
		return ErrLeadRequired
	}
	if *slot.LeadInstructorID == actor.ID {
		return ErrAlreadyLead
	}
	if slot.SecondInstructorID != nil {
		return ErrSeatTaken
	}
	if !actor.Role.IsInstructor() {
		return ErrNotInstructor
	}
	return nil
}

func checkTrainee(slot *model.Slot, trainee *model.User) error {
	if slot.DayType == model.DayInstructorTraining {
		return ErrTrainingDayNoTrainee
	}
	if slot.LeadInstructorID == nil {
		return ErrLeadRequired
	}
	if slot.TraineeID != nil {
		return ErrSeatTaken
	}
	if trainee.Role != model.RoleTrainee {
		return ErrNotTrainee
	}
	if slot.DayType == model.DayIndependent &&
		trainee.Status != model.StatusSolo && trainee.Status != model.StatusGraduate {
		return ErrIndependentNotAllowed
	}
	return nil
}

// traineePatch 占用学员席位，课程编号取学员当前课程
func traineePatch(trainee *model.User) model.SlotPatch {
	lesson := trainee.CurrentLesson
	if lesson == 0 {
		lesson = model.FirstLesson
	}
	patch := model.SeatPatch(model.SeatTrainee, &trainee.ID)
	patch.LessonNumber = model.Val(&lesson)
	return patch
}

// ────────────────────── 备注与出勤 ──────────────────────

func (s *slotService) UpdateNotes(ctx context.Context, slotID, actorID, notes string) (*model.Slot, error) {
	if _, err := s.loadForStaff(ctx, slotID, actorID); err != nil {
		return nil, err
	}
	return s.updateSlot(ctx, slotID, model.SlotPatch{Notes: model.Val(notes)})
}

func (s *slotService) MarkAttendance(ctx context.Context, slotID, actorID string, attended bool) (*model.Slot, error) {
	slot, err := s.loadForStaff(ctx, slotID, actorID)
	if err != nil {
		return nil, err
	}
	if slot.TraineeID == nil {
		return nil, ErrNoTraineeOnSlot
	}
	if slot.AttendanceMarked {
		return nil, ErrAttendanceMarked
	}
	traineeID := *slot.TraineeID

	if !attended {
		updated, err := s.updateSlot(ctx, slotID, model.SlotPatch{AttendanceMarked: model.Val(true)})
		if err != nil {
			return nil, err
		}
		if _, err := s.noShows.IncrementNoShow(ctx, traineeID); err != nil {
			return nil, err
		}
		return updated, nil
	}

	updated, err := s.updateSlot(ctx, slotID, model.SlotPatch{
		Completed:        model.Val(true),
		AttendanceMarked: model.Val(true),
	})
	if err != nil {
		return nil, err
	}

	lesson := model.FirstLesson
	if slot.LessonNumber != nil {
		lesson = *slot.LessonNumber
	}
	appendLog(ctx, s.repo, s.logger, &traineeID, model.ActionLessonCompleted,
		fmt.Sprintf("הושלם %s (%s %s)", model.LessonName(lesson), slot.Date, slot.TimeStart))
	return updated, nil
}

// loadForStaff 只有该时段的主教练、副教练或管理员可以操作
func (s *slotService) loadForStaff(ctx context.Context, slotID, actorID string) (*model.Slot, error) {
	slot, err := s.GetByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	actor, err := loadUser(ctx, s.repo, s.logger, actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role == model.RoleAdmin {
		return slot, nil
	}
	if !teaches(slot, actorID) {
		return nil, ErrNotSlotInstructor
	}
	return slot, nil
}

func (s *slotService) updateSlot(ctx context.Context, id string, patch model.SlotPatch) (*model.Slot, error) {
	updated, err := s.repo.Slot.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, ErrSlotNotFound
		}
		s.logger.Error("更新时段失败", zap.String("slot_id", id), zap.Error(err))
		return nil, err
	}
	return updated, nil
}
