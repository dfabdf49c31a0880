package dto

// ── 主题进度 DTO ──

// AssignCourseRequest 为学生分配课程（为课程全部主题建立进度）
type AssignCourseRequest struct {
	CourseID uint `json:"course_id" binding:"required,min=1"`
}

// AssignCourseResponse 分配结果
type AssignCourseResponse struct {
	CourseID     uint  `json:"course_id"`
	TopicCount   int   `json:"topic_count"`
	CreatedCount int64 `json:"created_count"` // 已存在的主题不会重复创建
}

// TopicProgressResponse 主题进度
type TopicProgressResponse struct {
	ID            uint    `json:"progress_id"`
	StudentID     uint    `json:"student_id"`
	TopicID       uint    `json:"topic_id"`
	TopicName     string  `json:"topic_name,omitempty"`
	CourseID      uint    `json:"course_id,omitempty"`
	TotalTime     int     `json:"total_time"`
	CompletedTime int     `json:"completed_time"`
	RemainingTime int     `json:"remaining_time"`
	IsCompleted   bool    `json:"is_completed"`
	LastStudiedAt *string `json:"last_studied_at,omitempty"`
	Version       int     `json:"version"`
}
