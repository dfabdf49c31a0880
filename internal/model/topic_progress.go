package model

import "time"

// TopicProgress 学生主题进度，对应 topic_progress
// RemainingTime 恒等于 TotalTime - CompletedTime（分钟）
type TopicProgress struct {
	ProgressID    uint       `gorm:"primaryKey;autoIncrement"                                json:"progress_id"`
	StudentID     uint       `gorm:"not null;uniqueIndex:uk_topic_progress_student_topic"    json:"student_id"`
	TopicID       uint       `gorm:"not null;uniqueIndex:uk_topic_progress_student_topic"    json:"topic_id"`
	TotalTime     int        `gorm:"not null;default:0"                                      json:"total_time"`
	CompletedTime int        `gorm:"not null;default:0"                                      json:"completed_time"`
	RemainingTime int        `gorm:"not null;default:0"                                      json:"remaining_time"`
	IsCompleted   bool       `gorm:"not null;default:false"                                  json:"is_completed"`
	LastStudiedAt *time.Time `                                                               json:"last_studied_at,omitempty"`
	VersionedModel

	// 关联
	Topic *StudyTopic `gorm:"foreignKey:TopicID;references:TopicID" json:"topic,omitempty"`
}

// TableName 指定表名
func (TopicProgress) TableName() string { return "topic_progress" }

// Reset 清空已完成时长
func (p *TopicProgress) Reset() {
	p.CompletedTime = 0
	p.RemainingTime = p.TotalTime
	p.IsCompleted = false
}

// Consume 记入 minutes 分钟的学习计划，剩余不会小于 0
func (p *TopicProgress) Consume(minutes int, at time.Time) {
	p.CompletedTime += minutes
	if p.CompletedTime > p.TotalTime {
		p.CompletedTime = p.TotalTime
	}
	p.RemainingTime = p.TotalTime - p.CompletedTime
	p.IsCompleted = p.RemainingTime == 0
	p.LastStudiedAt = &at
}
