package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"guidance-planner/internal/dto"
	"guidance-planner/internal/model"
	"guidance-planner/internal/repository"
)

// CourseService 课程目录业务接口（只读）
type CourseService interface {
	List(ctx context.Context, req *dto.CourseListRequest) ([]dto.CourseResponse, int64, error)
	GetByID(ctx context.Context, id uint) (*dto.CourseResponse, error)
	Categories() []string
}

type courseService struct {
	repo     *repository.Repository
	settings *Settings
	logger   *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(repo *repository.Repository, settings *Settings, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, settings: settings, logger: logger}
}

// List 类别由课程名称派生，因此筛选与分页在内存中完成
func (s *courseService) List(ctx context.Context, req *dto.CourseListRequest) ([]dto.CourseResponse, int64, error) {
	courses, err := s.repo.Course.List(ctx)
	if err != nil {
		s.logger.Error("查询课程列表失败", zap.Error(err))
		return nil, 0, err
	}

	keyword := strings.ToLower(strings.TrimSpace(req.Keyword))
	filtered := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		item := s.toResponse(&courses[i], false)
		if req.Category != "" && !strings.EqualFold(item.Category, req.Category) {
			continue
		}
		if keyword != "" && !strings.Contains(strings.ToLower(item.Name), keyword) {
			continue
		}
		filtered = append(filtered, item)
	}

	total := int64(len(filtered))
	offset := req.GetOffset()
	if offset >= len(filtered) {
		return []dto.CourseResponse{}, total, nil
	}
	end := offset + req.GetPageSize()
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[offset:end], total, nil
}

func (s *courseService) GetByID(ctx context.Context, id uint) (*dto.CourseResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		err = mapNotFound(err, ErrCourseNotFound)
		if err != ErrCourseNotFound {
			s.logger.Error("查询课程失败", zap.Uint("course_id", id), zap.Error(err))
		}
		return nil, err
	}
	resp := s.toResponse(course, true)
	return &resp, nil
}

func (s *courseService) Categories() []string {
	return s.settings.Classifier.Labels()
}

func (s *courseService) toResponse(c *model.Course, withTopics bool) dto.CourseResponse {
	resp := dto.CourseResponse{
		ID:       c.CourseID,
		Name:     c.Name,
		Category: s.settings.Classifier.Classify(c.Name),
	}
	if withTopics {
		resp.Topics = make([]dto.TopicResponse, 0, len(c.Topics))
		for _, t := range c.Topics {
			resp.Topics = append(resp.Topics, dto.TopicResponse{
				ID:              t.TopicID,
				Name:            t.Name,
				DurationMinutes: t.DurationMinutes,
				OrderIndex:      t.OrderIndex,
			})
		}
	}
	return resp
}
