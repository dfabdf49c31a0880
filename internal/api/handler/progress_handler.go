package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"guidance-planner/internal/dto"
	"guidance-planner/internal/service"
	pkgerrors "guidance-planner/pkg/errors"
	"guidance-planner/pkg/response"
)

// ProgressHandler 主题进度 HTTP 处理器
type ProgressHandler struct {
	progressSvc service.ProgressService
}

// NewProgressHandler 创建 ProgressHandler
func NewProgressHandler(progressSvc service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressSvc: progressSvc}
}

// ListProgress 学生的主题进度
// GET /api/v1/students/:id/progress
func (h *ProgressHandler) ListProgress(c *gin.Context) {
	studentID, ok := MustGetUintParam(c, "id", "学生ID")
	if !ok {
		return
	}

	list, err := h.progressSvc.List(c.Request.Context(), studentID)
	if err != nil {
		h.handleProgressError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// AssignCourse 为学生分配课程
// POST /api/v1/students/:id/progress/assign
func (h *ProgressHandler) AssignCourse(c *gin.Context) {
	studentID, ok := MustGetUintParam(c, "id", "学生ID")
	if !ok {
		return
	}

	var req dto.AssignCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	resp, err := h.progressSvc.AssignCourse(c.Request.Context(), studentID, &req)
	if err != nil {
		h.handleProgressError(c, err)
		return
	}

	response.OK(c, resp)
}

// ResetProgress 重置主题进度
// POST /api/v1/progress/:id/reset
func (h *ProgressHandler) ResetProgress(c *gin.Context) {
	id, ok := MustGetUintParam(c, "id", "进度ID")
	if !ok {
		return
	}

	resp, err := h.progressSvc.Reset(c.Request.Context(), id)
	if err != nil {
		h.handleProgressError(c, err)
		return
	}

	response.OK(c, resp)
}

// handleProgressError 统一处理进度模块业务错误
func (h *ProgressHandler) handleProgressError(c *gin.Context, err error) {
	if handlePlannerError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrProgressNotFound):
		response.NotFound(c, 22001, "学习进度不存在")
	case errors.Is(err, service.ErrCourseHasNoTopic):
		response.BadRequest(c, 22002, "该课程没有主题")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 22003, "进度已被其他操作修改，请刷新后重试", nil)
	default:
		response.InternalError(c)
	}
}
