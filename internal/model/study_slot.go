package model

import "guidance-planner/internal/planner"

// StudySlot 周学习时间块，对应 study_slots
// StartTime / EndTime 以 "HH:MM" 保存
type StudySlot struct {
	StudySlotID uint    `gorm:"primaryKey;autoIncrement"  json:"study_slot_id"`
	StudentID   uint    `gorm:"not null;index"            json:"student_id"`
	CourseID    uint    `gorm:"not null"                  json:"course_id"`
	DayOfWeek   int     `gorm:"type:smallint;not null"    json:"day_of_week"` // 1-7，周一=1
	StartTime   string  `gorm:"type:varchar(5);not null"  json:"start_time"`
	EndTime     string  `gorm:"type:varchar(5);not null"  json:"end_time"`
	Notes       *string `gorm:"type:text"                 json:"notes,omitempty"`
	SoftDeleteModel

	// 关联
	Course *Course `gorm:"foreignKey:CourseID;references:CourseID" json:"course,omitempty"`
}

// TableName 指定表名
func (StudySlot) TableName() string { return "study_slots" }

// Interval 解析出的时间区间
func (s *StudySlot) Interval() (planner.Interval, error) {
	return planner.ParseInterval(s.StartTime, s.EndTime)
}

// SetInterval 写回 "HH:MM"
func (s *StudySlot) SetInterval(iv planner.Interval) {
	s.StartTime = iv.Start.String()
	s.EndTime = iv.End.String()
}

// ToBlocks 转换为排布计算使用的时间块；无法解析的脏数据跳过
func ToBlocks(slots []StudySlot) []planner.Block {
	blocks := make([]planner.Block, 0, len(slots))
	for i := range slots {
		iv, err := slots[i].Interval()
		if err != nil {
			continue
		}
		blocks = append(blocks, planner.Block{ID: slots[i].StudySlotID, Day: slots[i].DayOfWeek, Interval: iv})
	}
	return blocks
}

// ToCourseBlocks 同 ToBlocks，附带课程
func ToCourseBlocks(slots []StudySlot) []planner.CourseBlock {
	blocks := make([]planner.CourseBlock, 0, len(slots))
	for i := range slots {
		iv, err := slots[i].Interval()
		if err != nil {
			continue
		}
		blocks = append(blocks, planner.CourseBlock{
			Block:    planner.Block{ID: slots[i].StudySlotID, Day: slots[i].DayOfWeek, Interval: iv},
			CourseID: slots[i].CourseID,
		})
	}
	return blocks
}
