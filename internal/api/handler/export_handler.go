package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"guidance-planner/internal/service"
	"guidance-planner/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportWeeklyPlanXLSX 导出周计划 Excel
// GET /api/v1/students/:id/export/weekly-plan.xlsx
func (h *ExportHandler) ExportWeeklyPlanXLSX(c *gin.Context) {
	studentID, ok := MustGetUintParam(c, "id", "学生ID")
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.WeeklyPlanXLSX(c.Request.Context(), studentID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	attachment(c, filename, contentTypeXLSX, buf.Bytes())
}

// ExportWeeklyPlanICS 导出周计划 iCalendar
// GET /api/v1/students/:id/export/weekly-plan.ics
func (h *ExportHandler) ExportWeeklyPlanICS(c *gin.Context) {
	studentID, ok := MustGetUintParam(c, "id", "学生ID")
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.WeeklyPlanICS(c.Request.Context(), studentID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	attachment(c, filename, contentTypeICS, buf.Bytes())
}

// attachment 设置下载响应头并写入文件内容
func attachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, contentType, data)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 20002, "学生不存在")
	case errors.Is(err, service.ErrExportNoSlots):
		response.NotFound(c, 24001, "该学生暂无学习时间块")
	default:
		response.InternalError(c)
	}
}
