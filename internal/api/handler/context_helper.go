package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"guidance-planner/internal/api/middleware"
	"guidance-planner/internal/dto"
	"guidance-planner/internal/planner"
	"guidance-planner/internal/service"
	"guidance-planner/pkg/response"
)

// MustGetUintParam 解析路径中的正整数 ID；非法时写入 400 响应并返回 false
func MustGetUintParam(c *gin.Context, name, label string) (uint, bool) {
	raw := c.Param(name)
	if raw == "" {
		response.BadRequest(c, 10001, label+"不能为空")
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, 10001, label+"无效")
		return 0, false
	}
	return uint(id), true
}

// bindFailed 请求绑定失败：请求体超限返回 413，其余返回 400
func bindFailed(c *gin.Context, err error) {
	if middleware.IsBodyTooLarge(err) {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
		return
	}
	response.BadRequest(c, 10001, "参数校验失败")
}

// handlePlannerError 处理各模块共用的排布类错误；已写入响应时返回 true
func handlePlannerError(c *gin.Context, err error) bool {
	var overlap *planner.OverlapError
	switch {
	case errors.As(err, &overlap):
		response.Conflict(c, 20004, planner.ErrOverlap.Error(), dto.SlotConflictResponse{
			ProposedStart: overlap.Proposed.Start.String(),
			ProposedEnd:   overlap.Proposed.End.String(),
			Conflict: dto.StudySlotBrief{
				ID:        overlap.Conflict.ID,
				DayOfWeek: overlap.Conflict.Day,
				StartTime: overlap.Conflict.Start.String(),
				EndTime:   overlap.Conflict.End.String(),
			},
		})
	case errors.Is(err, planner.ErrOutOfBounds):
		response.Unprocessable(c, 20005, err.Error())
	case planner.IsValidation(err):
		response.BadRequest(c, 20006, err.Error())
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 20002, "学生不存在")
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 20003, "课程不存在")
	default:
		return false
	}
	return true
}
