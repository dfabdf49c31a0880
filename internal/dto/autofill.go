package dto

// ── 自动填充 DTO ──

// AutoFillRequest 自动填充请求
// dry_run 缺省为 true，只有显式传 false 才会写入
type AutoFillRequest struct {
	StartDate string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date"   binding:"required,datetime=2006-01-02"`
	DryRun    *bool  `json:"dry_run"`
}

// IsDryRun 解析 dry_run 缺省值
func (r *AutoFillRequest) IsDryRun() bool {
	return r.DryRun == nil || *r.DryRun
}

// FilledSlot 一条分配
type FilledSlot struct {
	StudySlotID      uint   `json:"study_slot_id"`
	TopicID          uint   `json:"topic_id"`
	TopicName        string `json:"topic_name,omitempty"`
	CourseID         uint   `json:"course_id"`
	Date             string `json:"date"` // 2006-01-02
	StartTime        string `json:"start_time"`
	EndTime          string `json:"end_time"`
	AllocatedMinutes int    `json:"allocated_minutes"`
}

// AutoFillResponse 自动填充结果
type AutoFillResponse struct {
	Success      bool         `json:"success"`
	Message      string       `json:"message"`
	DryRun       bool         `json:"dry_run"`
	TotalMinutes int          `json:"total_minutes"`
	FilledSlots  []FilledSlot `json:"filled_slots"`
}

// StudyPlanQuery 学习计划查询参数
type StudyPlanQuery struct {
	StartDate string `form:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string `form:"end_date"   binding:"required,datetime=2006-01-02"`
}

// StudyPlanEntryResponse 学习计划条目
type StudyPlanEntryResponse struct {
	ID               uint   `json:"entry_id"`
	StudySlotID      uint   `json:"study_slot_id"`
	TopicID          uint   `json:"topic_id"`
	TopicName        string `json:"topic_name,omitempty"`
	Date             string `json:"date"`
	StartTime        string `json:"start_time"`
	EndTime          string `json:"end_time"`
	AllocatedMinutes int    `json:"allocated_minutes"`
}
