package model

// Course 课程表，对应 courses
type Course struct {
	CourseID uint   `gorm:"primaryKey;autoIncrement"   json:"course_id"`
	Name     string `gorm:"type:varchar(100);not null" json:"name"`
	SoftDeleteModel

	// 关联
	Topics []StudyTopic `gorm:"foreignKey:CourseID;references:CourseID" json:"topics,omitempty"`
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }

// StudyTopic 课程主题，对应 study_topics
type StudyTopic struct {
	TopicID         uint   `gorm:"primaryKey;autoIncrement"   json:"topic_id"`
	CourseID        uint   `gorm:"not null;index"             json:"course_id"`
	Name            string `gorm:"type:varchar(150);not null" json:"name"`
	DurationMinutes int    `gorm:"not null"                   json:"duration_minutes"`
	OrderIndex      int    `gorm:"not null;default:0"         json:"order_index"`
	BaseModel
}

// TableName 指定表名
func (StudyTopic) TableName() string { return "study_topics" }
