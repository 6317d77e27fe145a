package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/barak121-cloud/sim-management-bh/internal/model"
	"github.com/barak121-cloud/sim-management-bh/internal/repository"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("生成导出文件失败")

// 三个分区的标题与表头（希伯来语，与前端一致）
var (
	usersSection    = "=== משתמשים ==="
	usersHeader     = []string{"שם", "אימייל", "טלפון", "תפקיד", "סטטוס", "פסילות", "שעות"}
	scheduleSection = "=== לוח שיבוצים ==="
	scheduleHeader  = []string{"תאריך", "שעת התחלה", "שעת סיום", "סוג", "מדריך מוביל", "מדריך משני", "מתאמן", "שיעור"}
	logsSection     = "=== לוג פעילות ==="
	logsHeader      = []string{"תאריך", "משתמש", "פעולה", "פרטים"}
	unknownUser     = "לא ידוע"
)

// utf8BOM 让 Excel 以 UTF-8 打开 CSV
const utf8BOM = "\ufeff"

// ExportService 导出业务接口
//
// 导出内容分三部分：用户、时段、操作日志。
// CSV 为单文件三个分区；Excel 为三个 Sheet。
type ExportService interface {
	ExportCSV(ctx context.Context) (*bytes.Buffer, string, error)
	ExportXLSX(ctx context.Context) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger, now: time.Now}
}

// exportTables 三个分区的表格内容（不含表头）
type exportTables struct {
	users    [][]string
	schedule [][]string
	logs     [][]string
}

func (s *exportService) collect(ctx context.Context) (*exportTables, error) {
	users, err := s.repo.User.List(ctx)
	if err != nil {
		s.logger.Error("导出时读取用户失败", zap.Error(err))
		return nil, err
	}
	slots, err := s.repo.Slot.List(ctx)
	if err != nil {
		s.logger.Error("导出时读取时段失败", zap.Error(err))
		return nil, err
	}
	logs, err := s.repo.Log.List(ctx)
	if err != nil {
		s.logger.Error("导出时读取日志失败", zap.Error(err))
		return nil, err
	}

	names := make(map[string]string, len(users))
	t := &exportTables{}
	for _, u := range users {
		names[u.ID] = u.Name
		t.users = append(t.users, []string{
			u.Name, u.Email, u.Phone, string(u.Role), string(u.Status),
			strconv.Itoa(u.NoShowCount), strconv.FormatFloat(u.TotalHours, 'f', -1, 64),
		})
	}

	nameOf := func(id *string) string {
		if id == nil {
			return ""
		}
		return names[*id]
	}
	for _, sl := range slots {
		lesson := ""
		if sl.LessonNumber != nil {
			lesson = strconv.Itoa(*sl.LessonNumber)
		}
		t.schedule = append(t.schedule, []string{
			sl.Date, sl.TimeStart, sl.TimeEnd, string(sl.DayType),
			nameOf(sl.LeadInstructorID), nameOf(sl.SecondInstructorID), nameOf(sl.TraineeID), lesson,
		})
	}

	for _, l := range logs {
		user := unknownUser
		if l.UserID != nil {
			if name, ok := names[*l.UserID]; ok {
				user = name
			}
		}
		t.logs = append(t.logs, []string{
			l.Timestamp.UTC().Format(time.RFC3339), user, string(l.Action), l.Details,
		})
	}
	return t, nil
}

func (s *exportService) filename(ext string) string {
	return fmt.Sprintf("beit_halohem_export_%s.%s", s.now().Format(model.DateLayout), ext)
}

// ────────────────────── CSV ──────────────────────

func (s *exportService) ExportCSV(ctx context.Context) (*bytes.Buffer, string, error) {
	t, err := s.collect(ctx)
	if err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	buf.WriteString(utf8BOM)

	sections := []struct {
		title  string
		header []string
		rows   [][]string
	}{
		{usersSection, usersHeader, t.users},
		{scheduleSection, scheduleHeader, t.schedule},
		{logsSection, logsHeader, t.logs},
	}
	for i, sec := range sections {
		if i > 0 {
			buf.WriteString("\n")
		}
		w := csv.NewWriter(buf)
		_ = w.Write([]string{sec.title})
		_ = w.Write(sec.header)
		_ = w.WriteAll(sec.rows)
		if err := w.Error(); err != nil {
			s.logger.Error("写入 CSV 失败", zap.Error(err))
			return nil, "", ErrExportGenerateFail
		}
	}

	return buf, s.filename("csv"), nil
}

// ────────────────────── Excel ──────────────────────

func (s *exportService) ExportXLSX(ctx context.Context) (*bytes.Buffer, string, error) {
	t, err := s.collect(ctx)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	sheets := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{"משתמשים", usersHeader, t.users},
		{"לוח שיבוצים", scheduleHeader, t.schedule},
		{"לוג פעילות", logsHeader, t.logs},
	}
	for i, sh := range sheets {
		// 第一个分区复用默认的 Sheet1
		if i == 0 {
			err = f.SetSheetName("Sheet1", sh.name)
		} else {
			_, err = f.NewSheet(sh.name)
		}
		if err != nil {
			s.logger.Error("创建 Sheet 失败", zap.String("sheet", sh.name), zap.Error(err))
			return nil, "", ErrExportGenerateFail
		}
		_ = f.SetSheetView(sh.name, 0, &excelize.ViewOptions{RightToLeft: boolPtr(true)})

		for c, h := range sh.header {
			_ = f.SetCellValue(sh.name, cell(colName(c), 1), h)
			_ = f.SetColWidth(sh.name, colName(c), colName(c), 18)
		}
		_ = f.SetCellStyle(sh.name, "A1", cell(colName(len(sh.header)-1), 1), headerStyle)

		for r, row := range sh.rows {
			for c, v := range row {
				_ = f.SetCellValue(sh.name, cell(colName(c), r+2), v)
			}
		}
	}
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, s.filename("xlsx"), nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func boolPtr(b bool) *bool {
	return &b
}
