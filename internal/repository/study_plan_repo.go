package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"guidance-planner/internal/model"
	"guidance-planner/pkg/database"
	pkgerrors "guidance-planner/pkg/errors"
)

// StudyPlanRepository 学习计划条目数据访问接口
type StudyPlanRepository interface {
	BatchCreate(ctx context.Context, entries []model.StudyPlanEntry) error
	// ListByStudent 列出 [from, to] 日期内的条目（含两端）
	ListByStudent(ctx context.Context, studentID uint, from, to time.Time) ([]model.StudyPlanEntry, error)
}

type studyPlanRepo struct {
	db *gorm.DB
}

// NewStudyPlanRepo 创建 StudyPlanRepository 实例
func NewStudyPlanRepo(db *gorm.DB) StudyPlanRepository {
	return &studyPlanRepo{db: db}
}

func (r *studyPlanRepo) BatchCreate(ctx context.Context, entries []model.StudyPlanEntry) error {
	if len(entries) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Omit("Topic").CreateInBatches(&entries, 200).Error
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %v", pkgerrors.ErrDuplicate, err)
	}
	return err
}

func (r *studyPlanRepo) ListByStudent(ctx context.Context, studentID uint, from, to time.Time) ([]model.StudyPlanEntry, error) {
	var entries []model.StudyPlanEntry
	err := r.db.WithContext(ctx).
		Preload("Topic").
		Where("student_id = ? AND plan_date BETWEEN ? AND ?",
			studentID, from.Format(time.DateOnly), to.Format(time.DateOnly)).
		Order("plan_date ASC, start_time ASC, entry_id ASC").
		Find(&entries).Error
	return entries, err
}
