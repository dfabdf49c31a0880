package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"guidance-planner/internal/dto"
	"guidance-planner/internal/model"
	"guidance-planner/internal/repository"
	pkgerrors "guidance-planner/pkg/errors"
)

// ── 学习进度模块业务错误 ──

var (
	ErrProgressNotFound = errors.New("学习进度不存在")
	ErrCourseHasNoTopic = errors.New("该课程没有主题")
)

// ProgressService 主题进度业务接口
type ProgressService interface {
	List(ctx context.Context, studentID uint) ([]dto.TopicProgressResponse, error)
	AssignCourse(ctx context.Context, studentID uint, req *dto.AssignCourseRequest) (*dto.AssignCourseResponse, error)
	// Reset 已完成时长清零；幂等
	Reset(ctx context.Context, progressID uint) (*dto.TopicProgressResponse, error)
}

type progressService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewProgressService 创建 ProgressService 实例
func NewProgressService(repo *repository.Repository, logger *zap.Logger) ProgressService {
	return &progressService{repo: repo, logger: logger}
}

func (s *progressService) List(ctx context.Context, studentID uint) ([]dto.TopicProgressResponse, error) {
	if _, err := s.repo.Student.GetByID(ctx, studentID); err != nil {
		return nil, mapNotFound(err, ErrStudentNotFound)
	}
	rows, err := s.repo.TopicProgress.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("查询学习进度失败", zap.Uint("student_id", studentID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.TopicProgressResponse, 0, len(rows))
	for i := range rows {
		result = append(result, toProgressResponse(&rows[i]))
	}
	return result, nil
}

func (s *progressService) AssignCourse(ctx context.Context, studentID uint, req *dto.AssignCourseRequest) (*dto.AssignCourseResponse, error) {
	if _, err := s.repo.Student.GetByID(ctx, studentID); err != nil {
		return nil, mapNotFound(err, ErrStudentNotFound)
	}
	if _, err := s.repo.Course.GetByID(ctx, req.CourseID); err != nil {
		return nil, mapNotFound(err, ErrCourseNotFound)
	}

	topics, err := s.repo.Course.ListTopics(ctx, req.CourseID)
	if err != nil {
		s.logger.Error("查询课程主题失败", zap.Uint("course_id", req.CourseID), zap.Error(err))
		return nil, err
	}
	if len(topics) == 0 {
		return nil, ErrCourseHasNoTopic
	}

	rows := make([]model.TopicProgress, 0, len(topics))
	for _, t := range topics {
		rows = append(rows, model.TopicProgress{
			StudentID:     studentID,
			TopicID:       t.TopicID,
			TotalTime:     t.DurationMinutes,
			RemainingTime: t.DurationMinutes,
			IsCompleted:   t.DurationMinutes == 0,
		})
	}
	created, err := s.repo.TopicProgress.CreateMissing(ctx, rows)
	if err != nil {
		s.logger.Error("创建学习进度失败", zap.Uint("student_id", studentID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("课程已分配",
		zap.Uint("student_id", studentID),
		zap.Uint("course_id", req.CourseID),
		zap.Int64("created", created),
	)
	return &dto.AssignCourseResponse{CourseID: req.CourseID, TopicCount: len(topics), CreatedCount: created}, nil
}

func (s *progressService) Reset(ctx context.Context, progressID uint) (*dto.TopicProgressResponse, error) {
	p, err := s.repo.TopicProgress.GetByID(ctx, progressID)
	if err != nil {
		return nil, mapNotFound(err, ErrProgressNotFound)
	}

	p.Reset()
	if err := s.repo.TopicProgress.Update(ctx, p); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("重置学习进度失败", zap.Uint("progress_id", progressID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("学习进度已重置", zap.Uint("progress_id", progressID), zap.Uint("student_id", p.StudentID))
	resp := toProgressResponse(p)
	return &resp, nil
}

func toProgressResponse(p *model.TopicProgress) dto.TopicProgressResponse {
	resp := dto.TopicProgressResponse{
		ID:            p.ProgressID,
		StudentID:     p.StudentID,
		TopicID:       p.TopicID,
		TotalTime:     p.TotalTime,
		CompletedTime: p.CompletedTime,
		RemainingTime: p.RemainingTime,
		IsCompleted:   p.IsCompleted,
		Version:       p.Version,
	}
	if p.Topic != nil {
		resp.TopicName = p.Topic.Name
		resp.CourseID = p.Topic.CourseID
	}
	if p.LastStudiedAt != nil {
		ts := p.LastStudiedAt.Format(dto.TimeFormat)
		resp.LastStudiedAt = &ts
	}
	return resp
}
