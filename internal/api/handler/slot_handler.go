package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/barak121-cloud/sim-management-bh/internal/dto"
	"github.com/barak121-cloud/sim-management-bh/internal/model"
	"github.com/barak121-cloud/sim-management-bh/internal/service"
	"github.com/barak121-cloud/sim-management-bh/pkg/response"
)

// SlotHandler 训练时段 HTTP 处理器
type SlotHandler struct {
	slotSvc service.SlotService
}

// NewSlotHandler 创建 SlotHandler
func NewSlotHandler(slotSvc service.SlotService) *SlotHandler {
	return &SlotHandler{slotSvc: slotSvc}
}

// CreateTrainingDay 创建训练日（管理员）
// POST /api/v1/slots
func (h *SlotHandler) CreateTrainingDay(c *gin.Context) {
	var req dto.CreateTrainingDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	slots, err := h.slotSvc.CreateTrainingDay(c.Request.Context(), &req)
	if err != nil {
		h.handleSlotError(c, err)
		return
	}

	response.Created(c, slots)
}

// ListSlots 时段列表
// GET /api/v1/slots?date=YYYY-MM-DD 或 ?month=YYYY-MM
func (h *SlotHandler) ListSlots(c *gin.Context) {
	var req dto.SlotListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	views, err := h.slotSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleSlotError(c, err)
		return
	}

	response.OK(c, views)
}

// ListAvailable 可直接登记学员的时段（管理员快速登记使用）
// GET /api/v1/slots/available
func (h *SlotHandler) ListAvailable(c *gin.Context) {
	slots, err := h.slotSvc.ListAvailable(c.Request.Context())
	if err != nil {
		handleInternal(c, err)
		return
	}

	response.OK(c, slots)
}

// GetSlot 时段详情
// GET /api/v1/slots/:id
func (h *SlotHandler) GetSlot(c *gin.Context) {
	slot, err := h.slotSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleSlotError(c, err)
		return
	}

	response.OK(c, dto.SlotView{Slot: *slot, State: slot.State()})
}

// DeleteSlot 删除时段（管理员）
// DELETE /api/v1/slots/:id
func (h *SlotHandler) DeleteSlot(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	confirmed, ok := bindConfirm(c)
	if !ok {
		return
	}

	if err := h.slotSvc.Delete(c.Request.Context(), c.Param("id"), userID, confirmed); err != nil {
		h.handleSlotError(c, err)
		return
	}

	response.OK(c, nil)
}

// Register 登记席位
// POST /api/v1/slots/:id/register/:seat
func (h *SlotHandler) Register(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var (
		slot *model.Slot
		err  error
	)
	ctx := c.Request.Context()
	switch model.Seat(c.Param("seat")) {
	case model.SeatLead:
		slot, err = h.slotSvc.RegisterAsLead(ctx, c.Param("id"), userID)
	case model.SeatSecond:
		slot, err = h.slotSvc.RegisterAsSecond(ctx, c.Param("id"), userID)
	case model.SeatTrainee:
		slot, err = h.slotSvc.RegisterAsTrainee(ctx, c.Param("id"), userID)
	default:
		err = service.ErrInvalidSeat
	}
	if err != nil {
		h.handleSlotError(c, err)
		return
	}

	response.OK(c, slot)
}

// CancelRegistration 取消自己的登记
// POST /api/v1/slots/:id/cancel
func (h *SlotHandler) CancelRegistration(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CancelRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	slot, err := h.slotSvc.CancelRegistration(c.Request.Context(), c.Param("id"), model.Seat(req.Seat), userID, req.Confirm)
	if err != nil {
		h.handleSlotError(c, err)
		return
	}

	response.OK(c, slot)
}

// FastTrack 管理员为学员直接登记
// POST /api/v1/slots/:id/fast-track
func (h *SlotHandler) FastTrack(c *gin.Context) {
	var req dto.FastTrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	slot, err := h.slotSvc.FastTrackRegister(c.Request.Context(), c.Param("id"), req.TraineeID)
	if err != nil {
		h.handleSlotError(c, err)
		return
	}

	response.OK(c, slot)
}

// UpdateNotes 课程备注
// PUT /api/v1/slots/:id/notes
func (h *SlotHandler) UpdateNotes(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	slot, err := h.slotSvc.UpdateNotes(c.Request.Context(), c.Param("id"), userID, req.Notes)
	if err != nil {
		h.handleSlotError(c, err)
		return
	}

	response.OK(c, slot)
}

// MarkAttendance 记录学员出勤
// POST /api/v1/slots/:id/attendance
func (h *SlotHandler) MarkAttendance(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	slot, err := h.slotSvc.MarkAttendance(c.Request.Context(), c.Param("id"), userID, *req.Attended)
	if err != nil {
		h.handleSlotError(c, err)
		return
	}

	response.OK(c, slot)
}

func (h *SlotHandler) handleSlotError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSlotNotFound):
		response.NotFound(c, 13001, "时段不存在")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 13002, "日期格式必须为 YYYY-MM-DD")
	case errors.Is(err, service.ErrInvalidMonth):
		response.BadRequest(c, 13003, "月份格式必须为 YYYY-MM")
	case errors.Is(err, service.ErrInvalidTimeWindow):
		response.BadRequest(c, 13004, "时间窗口格式必须为 HH:MM，且结束晚于开始")
	case errors.Is(err, service.ErrNoTimeWindows):
		response.BadRequest(c, 13005, "至少需要一个时间窗口")
	case errors.Is(err, service.ErrInvalidDayType):
		response.BadRequest(c, 13006, "无效的训练日类型")
	case errors.Is(err, service.ErrInvalidRecurrence):
		response.BadRequest(c, 13007, "无效的重复方式")
	case errors.Is(err, service.ErrInvalidSeat):
		response.BadRequest(c, 13008, "无效的席位")
	case errors.Is(err, service.ErrSeatTaken):
		response.Conflict(c, 13009, "该席位已被占用")
	case errors.Is(err, service.ErrLeadRequired):
		response.Conflict(c, 13010, "该时段还没有主教练")
	case errors.Is(err, service.ErrNotInstructor):
		response.Forbidden(c, 13011, "只有教练可以登记教练席位")
	case errors.Is(err, service.ErrAlreadyLead):
		response.Conflict(c, 13012, "你已是该时段的主教练")
	case errors.Is(err, service.ErrNotTrainee):
		response.Forbidden(c, 13013, "只有学员可以登记学员席位")
	case errors.Is(err, service.ErrTrainingDayNoTrainee):
		response.Conflict(c, 13014, "教练培训日不接受学员登记")
	case errors.Is(err, service.ErrIndependentNotAllowed):
		response.Forbidden(c, 13015, "独立练习时段仅限单飞或结业学员")
	case errors.Is(err, service.ErrNotSeatOccupant):
		response.Forbidden(c, 13016, "你没有登记该席位")
	case errors.Is(err, service.ErrSlotInPast):
		response.BadRequest(c, 13017, "时段已过期")
	case errors.Is(err, service.ErrNotSlotInstructor):
		response.Forbidden(c, 13018, "只有该时段的教练或管理员可以操作")
	case errors.Is(err, service.ErrNoTraineeOnSlot):
		response.BadRequest(c, 13019, "该时段没有学员")
	case errors.Is(err, service.ErrAttendanceMarked):
		response.Conflict(c, 13020, "该时段已记录出勤")
	default:
		handleInternal(c, err)
	}
}
