package dto

// ── 课程目录 DTO ──

// CourseListRequest 课程列表查询参数
type CourseListRequest struct {
	Category string `form:"category" binding:"omitempty,max=20"`
	Keyword  string `form:"keyword"  binding:"omitempty,max=50"`
	PaginationRequest
}

// CourseResponse 课程
type CourseResponse struct {
	ID       uint            `json:"course_id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Topics   []TopicResponse `json:"topics,omitempty"`
}

// TopicResponse 课程主题
type TopicResponse struct {
	ID              uint   `json:"topic_id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	OrderIndex      int    `json:"order_index"`
}
