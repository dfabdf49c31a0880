package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"guidance-planner/internal/dto"
	"guidance-planner/internal/service"
	"guidance-planner/pkg/response"
)

// StudySlotHandler 周学习时间块 HTTP 处理器
type StudySlotHandler struct {
	slotSvc service.StudySlotService
}

// NewStudySlotHandler 创建 StudySlotHandler
func NewStudySlotHandler(slotSvc service.StudySlotService) *StudySlotHandler {
	return &StudySlotHandler{slotSvc: slotSvc}
}

// CreateStudySlot 放置时间块
// POST /api/v1/students/:id/study-slots
func (h *StudySlotHandler) CreateStudySlot(c *gin.Context) {
	studentID, ok := MustGetUintParam(c, "id", "学生ID")
	if !ok {
		return
	}

	var req dto.CreateStudySlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	resp, err := h.slotSvc.Create(c.Request.Context(), studentID, &req)
	if err != nil {
		h.handleStudySlotError(c, err)
		return
	}

	response.Created(c, resp)
}

// ListStudySlots 学生的全部时间块
// GET /api/v1/students/:id/study-slots
func (h *StudySlotHandler) ListStudySlots(c *gin.Context) {
	studentID, ok := MustGetUintParam(c, "id", "学生ID")
	if !ok {
		return
	}

	slots, err := h.slotSvc.List(c.Request.Context(), studentID)
	if err != nil {
		h.handleStudySlotError(c, err)
		return
	}

	response.OK(c, gin.H{"list": slots})
}

// GetWeeklyTotal 周总时长与提示级别
// GET /api/v1/students/:id/study-slots/weekly-total
func (h *StudySlotHandler) GetWeeklyTotal(c *gin.Context) {
	studentID, ok := MustGetUintParam(c, "id", "学生ID")
	if !ok {
		return
	}

	total, err := h.slotSvc.WeeklyTotal(c.Request.Context(), studentID)
	if err != nil {
		h.handleStudySlotError(c, err)
		return
	}

	response.OK(c, total)
}

// GetStudySlot 时间块详情
// GET /api/v1/study-slots/:id
func (h *StudySlotHandler) GetStudySlot(c *gin.Context) {
	id, ok := MustGetUintParam(c, "id", "时间块ID")
	if !ok {
		return
	}

	slot, err := h.slotSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleStudySlotError(c, err)
		return
	}

	response.OK(c, slot)
}

// UpdateStudySlot 拖放提交
// PUT /api/v1/study-slots/:id
func (h *StudySlotHandler) UpdateStudySlot(c *gin.Context) {
	id, ok := MustGetUintParam(c, "id", "时间块ID")
	if !ok {
		return
	}

	var req dto.UpdateStudySlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	resp, err := h.slotSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleStudySlotError(c, err)
		return
	}

	response.OK(c, resp)
}

// MoveStudySlot 移动时间块（保持时长）
// POST /api/v1/study-slots/:id/move
func (h *StudySlotHandler) MoveStudySlot(c *gin.Context) {
	id, ok := MustGetUintParam(c, "id", "时间块ID")
	if !ok {
		return
	}

	var req dto.MoveStudySlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	resp, err := h.slotSvc.Move(c.Request.Context(), id, &req)
	if err != nil {
		h.handleStudySlotError(c, err)
		return
	}

	response.OK(c, resp)
}

// ResizeStudySlot 提交一次拖动调整
// POST /api/v1/study-slots/:id/resize
func (h *StudySlotHandler) ResizeStudySlot(c *gin.Context) {
	id, ok := MustGetUintParam(c, "id", "时间块ID")
	if !ok {
		return
	}

	var req dto.ResizeStudySlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	resp, err := h.slotSvc.Resize(c.Request.Context(), id, &req)
	if err != nil {
		h.handleStudySlotError(c, err)
		return
	}

	response.OK(c, resp)
}

// DeleteStudySlot 删除时间块，返回删除后的周总时长
// DELETE /api/v1/study-slots/:id
func (h *StudySlotHandler) DeleteStudySlot(c *gin.Context) {
	id, ok := MustGetUintParam(c, "id", "时间块ID")
	if !ok {
		return
	}

	total, err := h.slotSvc.Delete(c.Request.Context(), id)
	if err != nil {
		h.handleStudySlotError(c, err)
		return
	}

	response.OK(c, total)
}

// handleStudySlotError 统一处理时间块模块业务错误
func (h *StudySlotHandler) handleStudySlotError(c *gin.Context, err error) {
	if handlePlannerError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrStudySlotNotFound):
		response.NotFound(c, 20001, "学习时间块不存在")
	case errors.Is(err, service.ErrSlotDurationRequired):
		response.BadRequest(c, 20007, err.Error())
	default:
		response.InternalError(c)
	}
}
