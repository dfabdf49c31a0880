package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"guidance-planner/internal/model"
	"guidance-planner/internal/planner"
	"guidance-planner/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoSlots      = errors.New("该学生暂无学习时间块")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 周计划导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// WeeklyPlanXLSX 7 列（周一~周日）× 每个时间粒度一行，时间块按时长纵向合并
	WeeklyPlanXLSX(ctx context.Context, studentID uint) (*bytes.Buffer, string, error)
	// WeeklyPlanICS 每个时间块一个按周重复的 VEVENT
	WeeklyPlanICS(ctx context.Context, studentID uint) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo     *repository.Repository
	settings *Settings
	logger   *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, settings *Settings, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, settings: settings, logger: logger}
}

var dayNames = [7]string{"周一", "周二", "周三", "周四", "周五", "周六", "周日"}

// ════════════════════════════════════════════════════════════
// WeeklyPlanXLSX
// ════════════════════════════════════════════════════════════
//
// 输出格式：
//   - A 列：时间（窗口起点起每个粒度一行）
//   - B~H 列：周一 ~ 周日
//   - 时间块占据的行合并为一个单元格："课程名\n09:00-10:00"
//   - 末行：周总时长与提示级别

func (s *exportService) WeeklyPlanXLSX(ctx context.Context, studentID uint) (*bytes.Buffer, string, error) {
	student, slots, err := s.load(ctx, studentID)
	if err != nil {
		return nil, "", err
	}

	w := s.settings.Window
	g := planner.Clock(w.Granule)
	rowOf := func(c planner.Clock) int { return int((c-w.Open)/g) + 3 } // 第 3 行为窗口起点

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "周计划"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 10)
	f.SetColWidth(sheetName, "B", "H", 20)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	slotStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border: []excelize.Border{
			{Type: "left", Color: "#8EA9DB", Style: 1},
			{Type: "right", Color: "#8EA9DB", Style: 1},
			{Type: "top", Color: "#8EA9DB", Style: 1},
			{Type: "bottom", Color: "#8EA9DB", Style: 1},
		},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s 每周学习计划", student.FullName))
	f.MergeCell(sheetName, "A1", "H1")
	f.SetCellStyle(sheetName, "A1", "H1", headerStyle)

	// 表头
	f.SetCellValue(sheetName, "A2", "时间")
	for d := 0; d < 7; d++ {
		f.SetCellValue(sheetName, cell(colName(d+1), 2), dayNames[d])
	}
	f.SetCellStyle(sheetName, "A2", "H2", headerStyle)

	// 时间列
	lastRow := rowOf(w.Close - 1)
	for c := w.Open; c < w.Close; c += g {
		f.SetCellValue(sheetName, cell("A", rowOf(c)), c.String())
	}

	// 时间块
	for i := range slots {
		iv, err := slots[i].Interval()
		if err != nil {
			continue
		}
		col := colName(slots[i].DayOfWeek)
		top := cell(col, rowOf(iv.Start))
		bottom := cell(col, rowOf(iv.End-1))

		title := fmt.Sprintf("课程 #%d", slots[i].CourseID)
		if slots[i].Course != nil {
			title = slots[i].Course.Name
		}
		f.SetCellValue(sheetName, top, fmt.Sprintf("%s\n%s-%s", title, slots[i].StartTime, slots[i].EndTime))
		if top != bottom {
			f.MergeCell(sheetName, top, bottom)
		}
		f.SetCellStyle(sheetName, top, bottom, slotStyle)
	}

	// 汇总行
	total := planner.TotalMinutes(model.ToBlocks(slots))
	summaryRow := lastRow + 2
	f.SetCellValue(sheetName, cell("A", summaryRow), "周总时长")
	f.SetCellValue(sheetName, cell("B", summaryRow), fmt.Sprintf("%d 分钟", total))
	f.SetCellValue(sheetName, cell("C", summaryRow), string(s.settings.Thresholds.Classify(total)))

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Uint("student_id", studentID), zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	return buf, fmt.Sprintf("weekly-plan-%d.xlsx", studentID), nil
}

// ════════════════════════════════════════════════════════════
// WeeklyPlanICS
// ════════════════════════════════════════════════════════════
//
// DTSTART 取本周（按配置时区）对应星期的日期，RRULE 每周重复；
// UID 由时间块 ID 派生，重复导出时日历客户端会更新而不是新增事件。

var icsNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("guidance-planner/study-slot"))

var icsWeekdays = [7]string{"MO", "TU", "WE", "TH", "FR", "SA", "SU"}

func (s *exportService) WeeklyPlanICS(ctx context.Context, studentID uint) (*bytes.Buffer, string, error) {
	student, slots, err := s.load(ctx, studentID)
	if err != nil {
		return nil, "", err
	}

	now := s.settings.now()
	monday := now.AddDate(0, 0, 1-planner.ISOWeekday(now))
	monday = time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, s.settings.Location)

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//guidance-planner//weekly study plan//TR")
	cal.SetName(fmt.Sprintf("%s 学习计划", student.FullName))

	for i := range slots {
		iv, err := slots[i].Interval()
		if err != nil {
			continue
		}
		day := monday.AddDate(0, 0, slots[i].DayOfWeek-1)
		uid := uuid.NewSHA1(icsNamespace, []byte(fmt.Sprintf("%d", slots[i].StudySlotID)))

		event := cal.AddEvent(uid.String() + "@guidance-planner")
		event.SetDtStampTime(now)
		event.SetStartAt(iv.Start.On(day))
		event.SetEndAt(iv.End.On(day))
		summary := fmt.Sprintf("课程 #%d", slots[i].CourseID)
		if slots[i].Course != nil {
			summary = slots[i].Course.Name
		}
		event.SetSummary(summary)
		if slots[i].Notes != nil {
			event.SetDescription(*slots[i].Notes)
		}
		event.AddProperty(ics.ComponentPropertyRrule, "FREQ=WEEKLY;BYDAY="+icsWeekdays[slots[i].DayOfWeek-1])
	}

	buf := bytes.NewBufferString(cal.Serialize())
	return buf, fmt.Sprintf("weekly-plan-%d.ics", studentID), nil
}

// ── 辅助函数 ──

func (s *exportService) load(ctx context.Context, studentID uint) (*model.Student, []model.StudySlot, error) {
	student, err := s.repo.Student.GetByID(ctx, studentID)
	if err != nil {
		return nil, nil, mapNotFound(err, ErrStudentNotFound)
	}
	slots, err := s.repo.StudySlot.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("查询时间块失败", zap.Uint("student_id", studentID), zap.Error(err))
		return nil, nil, err
	}
	if len(slots) == 0 {
		return nil, nil, ErrExportNoSlots
	}
	return student, slots, nil
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
