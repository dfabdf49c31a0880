package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"guidance-planner/config"
	"guidance-planner/internal/catalog"
	"guidance-planner/internal/planner"
	"guidance-planner/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	StudySlot StudySlotService
	AutoFill  AutoFillService
	Progress  ProgressService
	Course    CourseService
	Export    ExportService
}

// Settings 排布参数（由配置派生）
type Settings struct {
	Window          planner.Window
	Thresholds      planner.Thresholds
	Location        *time.Location
	MaxAutoFillDays int
	Classifier      *catalog.Classifier
	Now             func() time.Time
}

// NewSettings 从配置构建排布参数
func NewSettings(cfg *config.PlannerConfig) (*Settings, error) {
	w, err := planner.NewWindow(cfg.WindowOpen, cfg.WindowClose, cfg.GranuleMinutes)
	if err != nil {
		return nil, fmt.Errorf("每日可排窗口配置无效: %w", err)
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("时区配置无效: %w", err)
	}
	return &Settings{
		Window:          w,
		Thresholds:      planner.Thresholds{LowMinutes: cfg.LowWeeklyMinutes, HighMinutes: cfg.HighWeeklyMinutes},
		Location:        loc,
		MaxAutoFillDays: cfg.MaxAutoFillDays,
		Classifier:      catalog.NewClassifier(cfg.CategoryLabels, cfg.DefaultCategory),
		Now:             time.Now,
	}, nil
}

// DefaultSettings 默认窗口与阈值，UTC
func DefaultSettings() *Settings {
	return &Settings{
		Window:          planner.DefaultWindow(),
		Thresholds:      planner.DefaultThresholds(),
		Location:        time.UTC,
		MaxAutoFillDays: 366,
		Classifier:      catalog.NewClassifier([]string{"LGS", "TYT", "AYT", "YDT"}, "GENEL"),
		Now:             time.Now,
	}
}

// NewService 创建 Service 聚合
func NewService(repo *repository.Repository, settings *Settings, logger *zap.Logger) *Service {
	return &Service{
		StudySlot: NewStudySlotService(repo, settings, logger),
		AutoFill:  NewAutoFillService(repo, settings, logger),
		Progress:  NewProgressService(repo, logger),
		Course:    NewCourseService(repo, settings, logger),
		Export:    NewExportService(repo, settings, logger),
	}
}

// ── 通用业务错误 ──

var (
	ErrStudentNotFound = errors.New("学生不存在")
	ErrCourseNotFound  = errors.New("课程不存在")
)

// withStudentLock 按学生串行化执行 fn；加锁时学生不存在映射为 ErrStudentNotFound。
// fn 内部的"记录不存在"须自行转换为业务错误后返回。
func withStudentLock(ctx context.Context, repo *repository.Repository, studentID uint,
	fn func(ctx context.Context, tx repository.TxRepositories) error) error {
	err := repo.Tx.WithStudentLock(ctx, studentID, fn)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrStudentNotFound
	}
	return err
}

func (s *Settings) now() time.Time {
	if s.Now == nil {
		return time.Now().In(s.Location)
	}
	return s.Now().In(s.Location)
}

// mapNotFound 记录不存在映射为业务错误，其余错误原样返回
func mapNotFound(err, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}
