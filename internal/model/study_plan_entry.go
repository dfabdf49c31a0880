package model

import (
	"time"

	"gorm.io/datatypes"
)

// StudyPlanEntry 自动填充确认后生成的学习计划条目，对应 study_plan_entries
type StudyPlanEntry struct {
	EntryID          uint           `gorm:"primaryKey;autoIncrement"             json:"entry_id"`
	StudentID        uint           `gorm:"not null;index"                       json:"student_id"`
	StudySlotID      uint           `gorm:"not null"                             json:"study_slot_id"`
	TopicID          uint           `gorm:"not null"                             json:"topic_id"`
	PlanDate         datatypes.Date `gorm:"type:date;not null"                   json:"plan_date"`
	StartTime        string         `gorm:"type:varchar(5);not null"             json:"start_time"`
	EndTime          string         `gorm:"type:varchar(5);not null"             json:"end_time"`
	AllocatedMinutes int            `gorm:"not null"                             json:"allocated_minutes"`
	CreatedAt        time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"   json:"created_at"`

	// 关联
	Topic *StudyTopic `gorm:"foreignKey:TopicID;references:TopicID" json:"topic,omitempty"`
}

// TableName 指定表名
func (StudyPlanEntry) TableName() string { return "study_plan_entries" }

// Date 计划日期（time.Time）
func (e *StudyPlanEntry) Date() time.Time { return time.Time(e.PlanDate) }
