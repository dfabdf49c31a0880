package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"guidance-planner/internal/model"
	pkgerrors "guidance-planner/pkg/errors"
)

// TopicProgressRepository 主题进度数据访问接口
type TopicProgressRepository interface {
	GetByID(ctx context.Context, id uint) (*model.TopicProgress, error)
	ListByStudent(ctx context.Context, studentID uint) ([]model.TopicProgress, error)
	// ListOutstanding 剩余时长 > 0 的进度，预加载主题（课程、顺序）
	ListOutstanding(ctx context.Context, studentID uint) ([]model.TopicProgress, error)
	// CreateMissing 批量创建，(student_id, topic_id) 已存在的行跳过；返回实际新增条数
	CreateMissing(ctx context.Context, rows []model.TopicProgress) (int64, error)
	// Update 乐观锁更新，版本不符返回 ErrOptimisticLock
	Update(ctx context.Context, p *model.TopicProgress) error
}

type topicProgressRepo struct {
	db *gorm.DB
}

// NewTopicProgressRepo 创建 TopicProgressRepository 实例
func NewTopicProgressRepo(db *gorm.DB) TopicProgressRepository {
	return &topicProgressRepo{db: db}
}

func (r *topicProgressRepo) GetByID(ctx context.Context, id uint) (*model.TopicProgress, error) {
	var p model.TopicProgress
	err := r.db.WithContext(ctx).
		Preload("Topic").
		Where("progress_id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *topicProgressRepo) ListByStudent(ctx context.Context, studentID uint) ([]model.TopicProgress, error) {
	var rows []model.TopicProgress
	err := r.db.WithContext(ctx).
		Preload("Topic").
		Where("student_id = ?", studentID).
		Order("topic_id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *topicProgressRepo) ListOutstanding(ctx context.Context, studentID uint) ([]model.TopicProgress, error) {
	var rows []model.TopicProgress
	err := r.db.WithContext(ctx).
		Preload("Topic").
		Where("student_id = ? AND remaining_time > 0", studentID).
		Order("topic_id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *topicProgressRepo) CreateMissing(ctx context.Context, rows []model.TopicProgress) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Omit("Topic").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "topic_id"}},
			DoNothing: true,
		}).
		Create(&rows)
	return result.RowsAffected, result.Error
}

func (r *topicProgressRepo) Update(ctx context.Context, p *model.TopicProgress) error {
	oldVersion := p.Version
	result := r.db.WithContext(ctx).
		Model(&model.TopicProgress{}).
		Where("progress_id = ? AND version = ?", p.ProgressID, oldVersion).
		Updates(map[string]interface{}{
			"completed_time":  p.CompletedTime,
			"remaining_time":  p.RemainingTime,
			"is_completed":    p.IsCompleted,
			"last_studied_at": p.LastStudiedAt,
			"version":         oldVersion + 1,
			"updated_at":      gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	p.Version = oldVersion + 1
	return nil
}
