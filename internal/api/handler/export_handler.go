package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/barak121-cloud/sim-management-bh/internal/service"
	"github.com/barak121-cloud/sim-management-bh/pkg/response"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出与日历订阅 HTTP 处理器
type ExportHandler struct {
	exportSvc   service.ExportService
	calendarSvc service.CalendarService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService, calendarSvc service.CalendarService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc, calendarSvc: calendarSvc}
}

// ExportCSV 导出用户、时段与日志（CSV）
// GET /api/v1/export/csv
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportCSV(c.Request.Context())
	if err != nil {
		handleInternal(c, err)
		return
	}

	response.Attachment(c, filename, contentTypeCSV, buf.Bytes())
}

// ExportXLSX 导出用户、时段与日志（Excel）
// GET /api/v1/export/xlsx
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportXLSX(c.Request.Context())
	if err != nil {
		handleInternal(c, err)
		return
	}

	response.Attachment(c, filename, contentTypeXLSX, buf.Bytes())
}

// MyCalendar 当前用户占用的时段（iCalendar）
// GET /api/v1/calendar/me.ics
func (h *ExportHandler) MyCalendar(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	feed, err := h.calendarSvc.UserFeed(c.Request.Context(), userID)
	if err != nil {
		handleInternal(c, err)
		return
	}

	response.Attachment(c, "beit_halohem.ics", contentTypeICS, []byte(feed))
}
