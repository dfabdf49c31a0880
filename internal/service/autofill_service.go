package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"guidance-planner/internal/dto"
	"guidance-planner/internal/model"
	"guidance-planner/internal/planner"
	"guidance-planner/internal/repository"
)

// ── 自动填充模块业务错误 ──

var (
	ErrInvalidDateRange    = errors.New("日期范围无效，开始日期不能晚于结束日期")
	ErrDateRangeTooLong    = errors.New("日期范围超过允许的最大天数")
	ErrAutoFillApplyFailed = errors.New("自动填充写入失败，已全部回滚")
)

// AutoFillService 自动填充业务接口
type AutoFillService interface {
	// Run dry_run 时只计算不写入；否则在学生锁内重新计算并整体写入
	Run(ctx context.Context, studentID uint, req *dto.AutoFillRequest) (*dto.AutoFillResponse, error)
	// ListPlan 列出日期范围内已确认的学习计划
	ListPlan(ctx context.Context, studentID uint, q *dto.StudyPlanQuery) ([]dto.StudyPlanEntryResponse, error)
}

type autoFillService struct {
	repo     *repository.Repository
	settings *Settings
	logger   *zap.Logger
}

// NewAutoFillService 创建 AutoFillService 实例
func NewAutoFillService(repo *repository.Repository, settings *Settings, logger *zap.Logger) AutoFillService {
	return &autoFillService{repo: repo, settings: settings, logger: logger}
}

// fillPlan 一次计算的结果
type fillPlan struct {
	allocs     []planner.Allocation
	progress   map[uint]*model.TopicProgress // topic_id → 进度
	topicNames map[uint]string
	slotCount  int
}

// ════════════════════════════════════════════════════════════
// Run：预览或应用
// ════════════════════════════════════════════════════════════

func (s *autoFillService) Run(ctx context.Context, studentID uint, req *dto.AutoFillRequest) (*dto.AutoFillResponse, error) {
	from, to, err := s.parseRange(req.StartDate, req.EndDate, true)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.Student.GetByID(ctx, studentID); err != nil {
		return nil, mapNotFound(err, ErrStudentNotFound)
	}

	dryRun := req.IsDryRun()
	if dryRun {
		plan, err := s.compute(ctx, s.repo.StudySlot, s.repo.TopicProgress, s.repo.StudyPlan, studentID, from, to)
		if err != nil {
			s.logger.Error("自动填充预览失败", zap.Uint("student_id", studentID), zap.Error(err))
			return nil, err
		}
		return s.toResponse(plan, true), nil
	}

	var plan *fillPlan
	err = withStudentLock(ctx, s.repo, studentID, func(ctx context.Context, tx repository.TxRepositories) error {
		var err error
		plan, err = s.compute(ctx, tx.StudySlot, tx.TopicProgress, tx.StudyPlan, studentID, from, to)
		if err != nil {
			return err
		}
		return s.apply(ctx, tx, studentID, plan)
	})
	if err != nil {
		if errors.Is(err, ErrStudentNotFound) {
			return nil, err
		}
		s.logger.Error("自动填充写入失败，事务已回滚",
			zap.Uint("student_id", studentID),
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrAutoFillApplyFailed, err)
	}

	s.logger.Info("自动填充已写入",
		zap.Uint("student_id", studentID),
		zap.Int("entries", len(plan.allocs)),
		zap.Int("minutes", planner.TotalAllocated(plan.allocs)),
	)
	return s.toResponse(plan, false), nil
}

// compute 读取时间块、未完成主题与已有计划，计算分配；不写入
func (s *autoFillService) compute(
	ctx context.Context,
	slots repository.StudySlotRepository,
	progress repository.TopicProgressRepository,
	plans repository.StudyPlanRepository,
	studentID uint, from, to time.Time,
) (*fillPlan, error) {
	slotRows, err := slots.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("查询时间块: %w", err)
	}
	outstanding, err := progress.ListOutstanding(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("查询主题进度: %w", err)
	}

	plan := &fillPlan{
		progress:   make(map[uint]*model.TopicProgress, len(outstanding)),
		topicNames: make(map[uint]string, len(outstanding)),
		slotCount:  len(slotRows),
	}

	topics := make([]planner.TopicBalance, 0, len(outstanding))
	for i := range outstanding {
		p := &outstanding[i]
		if p.Topic == nil || p.RemainingTime <= 0 {
			continue
		}
		plan.progress[p.TopicID] = p
		plan.topicNames[p.TopicID] = p.Topic.Name
		topics = append(topics, planner.TopicBalance{
			TopicID:   p.TopicID,
			CourseID:  p.Topic.CourseID,
			Priority:  p.Topic.OrderIndex,
			Remaining: p.RemainingTime,
		})
	}
	if len(slotRows) == 0 || len(topics) == 0 {
		return plan, nil
	}

	existing, err := plans.ListByStudent(ctx, studentID, from, to)
	if err != nil {
		return nil, fmt.Errorf("查询已有学习计划: %w", err)
	}

	occurrences := planner.Expand(model.ToCourseBlocks(slotRows), from, to)
	booked := bookedIntervals(existing)
	for i := range occurrences {
		occurrences[i].Booked = booked[occurrenceKey{occurrences[i].SlotID, occurrences[i].Date.Format(time.DateOnly)}]
	}

	plan.allocs = planner.Allocate(occurrences, topics)
	return plan, nil
}

// apply 更新进度（乐观锁）并批量写入学习计划；任一步失败由调用方回滚
func (s *autoFillService) apply(ctx context.Context, tx repository.TxRepositories, studentID uint, plan *fillPlan) error {
	if len(plan.allocs) == 0 {
		return nil
	}

	now := s.settings.now()
	byTopic := planner.MinutesByTopic(plan.allocs)
	topicIDs := make([]uint, 0, len(byTopic))
	for id := range byTopic {
		topicIDs = append(topicIDs, id)
	}
	sort.Slice(topicIDs, func(i, j int) bool { return topicIDs[i] < topicIDs[j] })

	for _, id := range topicIDs {
		p, ok := plan.progress[id]
		if !ok {
			return fmt.Errorf("主题 %d 缺少进度记录", id)
		}
		p.Consume(byTopic[id], now)
		if err := tx.TopicProgress.Update(ctx, p); err != nil {
			return fmt.Errorf("更新主题 %d 进度: %w", id, err)
		}
	}

	entries := make([]model.StudyPlanEntry, 0, len(plan.allocs))
	for _, a := range plan.allocs {
		entries = append(entries, model.StudyPlanEntry{
			StudentID:        studentID,
			StudySlotID:      a.SlotID,
			TopicID:          a.TopicID,
			PlanDate:         datatypes.Date(a.Date),
			StartTime:        a.Interval.Start.String(),
			EndTime:          a.Interval.End.String(),
			AllocatedMinutes: a.Minutes,
		})
	}
	if err := tx.StudyPlan.BatchCreate(ctx, entries); err != nil {
		return fmt.Errorf("写入学习计划: %w", err)
	}
	return nil
}

// ════════════════════════════════════════════════════════════
// ListPlan
// ════════════════════════════════════════════════════════════

func (s *autoFillService) ListPlan(ctx context.Context, studentID uint, q *dto.StudyPlanQuery) ([]dto.StudyPlanEntryResponse, error) {
	from, to, err := s.parseRange(q.StartDate, q.EndDate, false)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.Student.GetByID(ctx, studentID); err != nil {
		return nil, mapNotFound(err, ErrStudentNotFound)
	}

	entries, err := s.repo.StudyPlan.ListByStudent(ctx, studentID, from, to)
	if err != nil {
		s.logger.Error("查询学习计划失败", zap.Uint("student_id", studentID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.StudyPlanEntryResponse, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		item := dto.StudyPlanEntryResponse{
			ID:               e.EntryID,
			StudySlotID:      e.StudySlotID,
			TopicID:          e.TopicID,
			Date:             e.Date().Format(time.DateOnly),
			StartTime:        e.StartTime,
			EndTime:          e.EndTime,
			AllocatedMinutes: e.AllocatedMinutes,
		}
		if e.Topic != nil {
			item.TopicName = e.Topic.Name
		}
		result = append(result, item)
	}
	return result, nil
}

// ── 内部辅助方法 ──

// parseRange 解析 [start, end]；capped 时限制最大天数
func (s *autoFillService) parseRange(start, end string, capped bool) (time.Time, time.Time, error) {
	from, err := time.ParseInLocation(time.DateOnly, start, s.settings.Location)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start_date %q", ErrInvalidDateRange, start)
	}
	to, err := time.ParseInLocation(time.DateOnly, end, s.settings.Location)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end_date %q", ErrInvalidDateRange, end)
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	if capped && s.settings.MaxAutoFillDays > 0 {
		days := int(math.Round(to.Sub(from).Hours()/24)) + 1
		if days > s.settings.MaxAutoFillDays {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: %d > %d", ErrDateRangeTooLong, days, s.settings.MaxAutoFillDays)
		}
	}
	return from, to, nil
}

func (s *autoFillService) toResponse(plan *fillPlan, dryRun bool) *dto.AutoFillResponse {
	total := planner.TotalAllocated(plan.allocs)
	resp := &dto.AutoFillResponse{
		Success:      true,
		DryRun:       dryRun,
		TotalMinutes: total,
		FilledSlots:  make([]dto.FilledSlot, 0, len(plan.allocs)),
	}

	switch {
	case plan.slotCount == 0:
		resp.Message = "该学生没有学习时间块，无可分配容量"
	case len(plan.progress) == 0:
		resp.Message = "没有剩余学习时长的主题"
	case len(plan.allocs) == 0:
		resp.Message = "所选日期内没有可用的空闲容量"
	case dryRun:
		resp.Message = fmt.Sprintf("预览：可分配 %d 条，共 %d 分钟", len(plan.allocs), total)
	default:
		resp.Message = fmt.Sprintf("已写入 %d 条学习计划，共 %d 分钟", len(plan.allocs), total)
	}

	for _, a := range plan.allocs {
		resp.FilledSlots = append(resp.FilledSlots, dto.FilledSlot{
			StudySlotID:      a.SlotID,
			TopicID:          a.TopicID,
			TopicName:        plan.topicNames[a.TopicID],
			CourseID:         a.CourseID,
			Date:             a.Date.Format(time.DateOnly),
			StartTime:        a.Interval.Start.String(),
			EndTime:          a.Interval.End.String(),
			AllocatedMinutes: a.Minutes,
		})
	}
	return resp
}

type occurrenceKey struct {
	slotID uint
	date   string
}

// bookedIntervals 每个 (时间块, 日期) 上已有学习计划占用的区间。
// 时间块调整后条目可能只部分落在块内，由 Occurrence.Gaps 负责裁剪。
func bookedIntervals(entries []model.StudyPlanEntry) map[occurrenceKey][]planner.Interval {
	booked := make(map[occurrenceKey][]planner.Interval)
	for i := range entries {
		e := &entries[i]
		iv, err := planner.ParseInterval(e.StartTime, e.EndTime)
		if err != nil {
			continue
		}
		key := occurrenceKey{e.StudySlotID, e.Date().Format(time.DateOnly)}
		booked[key] = append(booked[key], iv)
	}
	return booked
}
