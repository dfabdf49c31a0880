package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"guidance-planner/internal/model"
)

// StudySlotRepository 周时间块数据访问接口
type StudySlotRepository interface {
	Create(ctx context.Context, slot *model.StudySlot) error
	GetByID(ctx context.Context, id uint) (*model.StudySlot, error)
	ListByStudent(ctx context.Context, studentID uint) ([]model.StudySlot, error)
	Update(ctx context.Context, slot *model.StudySlot) error
	Delete(ctx context.Context, id uint) error
	// PurgeDeleted 硬删除软删除时间早于 before 的时间块，返回删除条数
	PurgeDeleted(ctx context.Context, before time.Time) (int64, error)
}

type studySlotRepo struct {
	db *gorm.DB
}

// NewStudySlotRepo 创建 StudySlotRepository 实例
func NewStudySlotRepo(db *gorm.DB) StudySlotRepository {
	return &studySlotRepo{db: db}
}

func (r *studySlotRepo) Create(ctx context.Context, slot *model.StudySlot) error {
	return r.db.WithContext(ctx).Omit("Course").Create(slot).Error
}

func (r *studySlotRepo) GetByID(ctx context.Context, id uint) (*model.StudySlot, error) {
	var slot model.StudySlot
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("study_slot_id = ?", id).
		First(&slot).Error
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *studySlotRepo) ListByStudent(ctx context.Context, studentID uint) ([]model.StudySlot, error) {
	var slots []model.StudySlot
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("student_id = ?", studentID).
		Order("day_of_week ASC, start_time ASC, study_slot_id ASC").
		Find(&slots).Error
	return slots, err
}

func (r *studySlotRepo) Update(ctx context.Context, slot *model.StudySlot) error {
	return r.db.WithContext(ctx).
		Model(&model.StudySlot{}).
		Where("study_slot_id = ?", slot.StudySlotID).
		Updates(map[string]interface{}{
			"course_id":   slot.CourseID,
			"day_of_week": slot.DayOfWeek,
			"start_time":  slot.StartTime,
			"end_time":    slot.EndTime,
			"notes":       slot.Notes,
			"updated_at":  gorm.Expr("NOW()"),
		}).Error
}

func (r *studySlotRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Where("study_slot_id = ?", id).
		Delete(&model.StudySlot{}).Error
}

func (r *studySlotRepo) PurgeDeleted(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Unscoped().
		Where("deleted_at IS NOT NULL AND deleted_at < ?", before).
		Delete(&model.StudySlot{})
	return result.RowsAffected, result.Error
}
