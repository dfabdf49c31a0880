package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"guidance-planner/internal/dto"
	"guidance-planner/internal/service"
	"guidance-planner/pkg/response"
)

// AutoFillHandler 自动填充 HTTP 处理器
type AutoFillHandler struct {
	autoFillSvc service.AutoFillService
}

// NewAutoFillHandler 创建 AutoFillHandler
func NewAutoFillHandler(autoFillSvc service.AutoFillService) *AutoFillHandler {
	return &AutoFillHandler{autoFillSvc: autoFillSvc}
}

// RunAutoFill 预览或应用自动填充
// POST /api/v1/students/:id/auto-fill
func (h *AutoFillHandler) RunAutoFill(c *gin.Context) {
	studentID, ok := MustGetUintParam(c, "id", "学生ID")
	if !ok {
		return
	}

	var req dto.AutoFillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	resp, err := h.autoFillSvc.Run(c.Request.Context(), studentID, &req)
	if err != nil {
		h.handleAutoFillError(c, err)
		return
	}

	response.OK(c, resp)
}

// ListStudyPlan 日期范围内的学习计划
// GET /api/v1/students/:id/study-plan?start_date=2026-10-12&end_date=2026-10-18
func (h *AutoFillHandler) ListStudyPlan(c *gin.Context) {
	studentID, ok := MustGetUintParam(c, "id", "学生ID")
	if !ok {
		return
	}

	var q dto.StudyPlanQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	entries, err := h.autoFillSvc.ListPlan(c.Request.Context(), studentID, &q)
	if err != nil {
		h.handleAutoFillError(c, err)
		return
	}

	response.OK(c, gin.H{"list": entries})
}

// handleAutoFillError 统一处理自动填充模块业务错误
func (h *AutoFillHandler) handleAutoFillError(c *gin.Context, err error) {
	if handlePlannerError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 21001, service.ErrInvalidDateRange.Error())
	case errors.Is(err, service.ErrDateRangeTooLong):
		response.BadRequest(c, 21002, err.Error())
	case errors.Is(err, service.ErrAutoFillApplyFailed):
		response.Error(c, http.StatusInternalServerError, 21003, service.ErrAutoFillApplyFailed.Error())
	default:
		response.InternalError(c)
	}
}
