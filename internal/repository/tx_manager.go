package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"guidance-planner/internal/model"
)

// TxRepositories 事务内可用的 Repository
type TxRepositories struct {
	StudySlot     StudySlotRepository
	TopicProgress TopicProgressRepository
	StudyPlan     StudyPlanRepository
}

// TxManager 按学生串行化的事务入口
type TxManager interface {
	// WithStudentLock 开启事务并对学生行加 FOR UPDATE 锁；fn 返回错误时整体回滚。
	// 学生不存在时返回 gorm.ErrRecordNotFound。
	WithStudentLock(ctx context.Context, studentID uint, fn func(ctx context.Context, repos TxRepositories) error) error
}

type gormTxManager struct {
	db *gorm.DB
}

// NewTxManager 创建 TxManager 实例
func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db: db}
}

func (m *gormTxManager) WithStudentLock(ctx context.Context, studentID uint, fn func(ctx context.Context, repos TxRepositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var student model.Student
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("student_id").
			Where("student_id = ?", studentID).
			First(&student).Error; err != nil {
			return err
		}

		return fn(ctx, TxRepositories{
			StudySlot:     NewStudySlotRepo(tx),
			TopicProgress: NewTopicProgressRepo(tx),
			StudyPlan:     NewStudyPlanRepo(tx),
		})
	})
}
