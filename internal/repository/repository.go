package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Student       StudentRepository
	Course        CourseRepository
	StudySlot     StudySlotRepository
	TopicProgress TopicProgressRepository
	StudyPlan     StudyPlanRepository
	Tx            TxManager
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Student:       NewStudentRepo(db),
		Course:        NewCourseRepo(db),
		StudySlot:     NewStudySlotRepo(db),
		TopicProgress: NewTopicProgressRepo(db),
		StudyPlan:     NewStudyPlanRepo(db),
		Tx:            NewTxManager(db),
	}
}
