package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"guidance-planner/internal/dto"
	"guidance-planner/internal/service"
	"guidance-planner/pkg/response"
)

// CourseHandler 课程目录 HTTP 处理器（只读）
type CourseHandler struct {
	courseSvc service.CourseService
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(courseSvc service.CourseService) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc}
}

// ListCourses 课程列表（分页，可按类别与关键字筛选）
// GET /api/v1/courses?category=TYT&keyword=fizik&page=1&page_size=20
func (h *CourseHandler) ListCourses(c *gin.Context) {
	var req dto.CourseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, total, err := h.courseSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetCourse 课程详情（含主题）
// GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id, ok := MustGetUintParam(c, "id", "课程ID")
	if !ok {
		return
	}

	course, err := h.courseSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			response.NotFound(c, 23001, "课程不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, course)
}

// ListCategories 可用的考试类别
// GET /api/v1/courses/categories
func (h *CourseHandler) ListCategories(c *gin.Context) {
	response.OK(c, gin.H{"list": h.courseSvc.Categories()})
}
