package dto

// ── 周学习时间块 DTO ──

// CreateStudySlotRequest 放置时间块请求
// duration_minutes 与 end_time 二选一；同时给出时以 duration_minutes 为准
type CreateStudySlotRequest struct {
	CourseID        uint    `json:"course_id"        binding:"required,min=1"`
	DayOfWeek       int     `json:"day_of_week"      binding:"required,weekday"`
	StartTime       string  `json:"start_time"       binding:"required,hhmm"` // "09:00"
	DurationMinutes *int    `json:"duration_minutes" binding:"omitempty,min=1,max=1440"`
	EndTime         *string `json:"end_time"         binding:"omitempty,hhmm"`
	Notes           *string `json:"notes"            binding:"omitempty,max=500"`
}

// UpdateStudySlotRequest 整体更新时间块（拖放提交）
type UpdateStudySlotRequest struct {
	CourseID  *uint   `json:"course_id"   binding:"omitempty,min=1"`
	DayOfWeek *int    `json:"day_of_week" binding:"omitempty,weekday"`
	StartTime *string `json:"start_time"  binding:"omitempty,hhmm"`
	EndTime   *string `json:"end_time"    binding:"omitempty,hhmm"`
	Notes     *string `json:"notes"       binding:"omitempty,max=500"`
}

// MoveStudySlotRequest 移动时间块（保持时长）
type MoveStudySlotRequest struct {
	DayOfWeek int    `json:"day_of_week" binding:"required,weekday"`
	StartTime string `json:"start_time"  binding:"required,hhmm"`
}

// ResizeStudySlotRequest 调整时间块的一条边
// delta_minutes 为整个拖动手势的累计偏移，按粒度向零截断
type ResizeStudySlotRequest struct {
	Edge         string `json:"edge"          binding:"required,oneof=start end"`
	DeltaMinutes int    `json:"delta_minutes" binding:"min=-1440,max=1440"`
}

// ── 响应 ──

// StudySlotResponse 时间块响应
type StudySlotResponse struct {
	ID              uint    `json:"study_slot_id"`
	StudentID       uint    `json:"student_id"`
	CourseID        uint    `json:"course_id"`
	CourseName      string  `json:"course_name,omitempty"`
	Category        string  `json:"category,omitempty"`
	DayOfWeek       int     `json:"day_of_week"`
	StartTime       string  `json:"start_time"`
	EndTime         string  `json:"end_time"`
	DurationMinutes int     `json:"duration_minutes"`
	Notes           *string `json:"notes,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

// WeeklyTotalResponse 周总时长与提示级别
type WeeklyTotalResponse struct {
	TotalMinutes int     `json:"total_minutes"`
	TotalHours   float64 `json:"total_hours"`
	Signal       string  `json:"signal"` // low | ok | dense
	ByDay        [7]int  `json:"by_day"` // 周一..周日
	SlotCount    int     `json:"slot_count"`
}

// StudySlotMutationResponse 放置/移动/调整成功后的响应
type StudySlotMutationResponse struct {
	Slot        StudySlotResponse   `json:"slot"`
	WeeklyTotal WeeklyTotalResponse `json:"weekly_total"`
	Changed     bool                `json:"changed"`
}

// SlotConflictResponse 重叠冲突时返回的数据
type SlotConflictResponse struct {
	ProposedStart string         `json:"proposed_start"`
	ProposedEnd   string         `json:"proposed_end"`
	Conflict      StudySlotBrief `json:"conflicting_slot"`
}

// StudySlotBrief 时间块简要信息
type StudySlotBrief struct {
	ID        uint   `json:"study_slot_id"`
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}
