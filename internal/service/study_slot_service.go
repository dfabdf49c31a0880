package service

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"guidance-planner/internal/dto"
	"guidance-planner/internal/model"
	"guidance-planner/internal/planner"
	"guidance-planner/internal/repository"
)

// ── 学习时间块模块业务错误 ──

var (
	ErrStudySlotNotFound    = errors.New("学习时间块不存在")
	ErrSlotDurationRequired = errors.New("必须提供 duration_minutes 或 end_time")
)

// StudySlotService 周学习时间块业务接口
type StudySlotService interface {
	Create(ctx context.Context, studentID uint, req *dto.CreateStudySlotRequest) (*dto.StudySlotMutationResponse, error)
	GetByID(ctx context.Context, id uint) (*dto.StudySlotResponse, error)
	List(ctx context.Context, studentID uint) ([]dto.StudySlotResponse, error)
	Update(ctx context.Context, id uint, req *dto.UpdateStudySlotRequest) (*dto.StudySlotMutationResponse, error)
	Move(ctx context.Context, id uint, req *dto.MoveStudySlotRequest) (*dto.StudySlotMutationResponse, error)
	Resize(ctx context.Context, id uint, req *dto.ResizeStudySlotRequest) (*dto.StudySlotMutationResponse, error)
	Delete(ctx context.Context, id uint) (*dto.WeeklyTotalResponse, error)
	WeeklyTotal(ctx context.Context, studentID uint) (*dto.WeeklyTotalResponse, error)
}

type studySlotService struct {
	repo     *repository.Repository
	settings *Settings
	logger   *zap.Logger
}

// NewStudySlotService 创建 StudySlotService 实例
func NewStudySlotService(repo *repository.Repository, settings *Settings, logger *zap.Logger) StudySlotService {
	return &studySlotService{repo: repo, settings: settings, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *studySlotService) Create(ctx context.Context, studentID uint, req *dto.CreateStudySlotRequest) (*dto.StudySlotMutationResponse, error) {
	if err := planner.ValidateDay(req.DayOfWeek); err != nil {
		return nil, err
	}
	iv, err := s.placement(req)
	if err != nil {
		return nil, err
	}

	course, err := s.getCourse(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}

	slot := &model.StudySlot{
		StudentID: studentID,
		CourseID:  req.CourseID,
		DayOfWeek: req.DayOfWeek,
		Notes:     req.Notes,
	}
	slot.SetInterval(iv)

	var total dto.WeeklyTotalResponse
	err = withStudentLock(ctx, s.repo, studentID, func(ctx context.Context, tx repository.TxRepositories) error {
		existing, err := tx.StudySlot.ListByStudent(ctx, studentID)
		if err != nil {
			return err
		}
		if err := planner.EnsureFree(model.ToBlocks(existing), slot.DayOfWeek, iv, 0); err != nil {
			return err
		}
		if err := tx.StudySlot.Create(ctx, slot); err != nil {
			return err
		}
		total = s.weeklyTotal(append(existing, *slot))
		return nil
	})
	if err != nil {
		return nil, s.logUnexpected("放置时间块失败", err, zap.Uint("student_id", studentID))
	}

	s.logger.Info("时间块已放置",
		zap.Uint("student_id", studentID),
		zap.Uint("study_slot_id", slot.StudySlotID),
		zap.Int("day_of_week", slot.DayOfWeek),
		zap.Stringer("interval", iv),
	)

	slot.Course = course
	return &dto.StudySlotMutationResponse{Slot: s.toResponse(slot), WeeklyTotal: total, Changed: true}, nil
}

// placement 计算新时间块区间：给出时长时按 Place 裁剪到窗口上界，只给结束时间时严格校验
func (s *studySlotService) placement(req *dto.CreateStudySlotRequest) (planner.Interval, error) {
	start, err := planner.ParseClock(req.StartTime)
	if err != nil {
		return planner.Interval{}, err
	}
	switch {
	case req.DurationMinutes != nil:
		return s.settings.Window.Place(start, *req.DurationMinutes)
	case req.EndTime != nil:
		end, err := planner.ParseClock(*req.EndTime)
		if err != nil {
			return planner.Interval{}, err
		}
		iv := planner.Interval{Start: start, End: end}
		if err := s.settings.Window.ValidateInterval(iv); err != nil {
			return planner.Interval{}, err
		}
		return iv, nil
	default:
		return planner.Interval{}, ErrSlotDurationRequired
	}
}

// ────────────────────── GetByID / List ──────────────────────

func (s *studySlotService) GetByID(ctx context.Context, id uint) (*dto.StudySlotResponse, error) {
	slot, err := s.getSlot(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(slot)
	return &resp, nil
}

func (s *studySlotService) List(ctx context.Context, studentID uint) ([]dto.StudySlotResponse, error) {
	if err := s.ensureStudent(ctx, studentID); err != nil {
		return nil, err
	}
	slots, err := s.repo.StudySlot.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("列出时间块失败", zap.Uint("student_id", studentID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.StudySlotResponse, 0, len(slots))
	for i := range slots {
		result = append(result, s.toResponse(&slots[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

// Update 拖放提交：未给出的字段保持原值，最终区间严格校验（不裁剪）
func (s *studySlotService) Update(ctx context.Context, id uint, req *dto.UpdateStudySlotRequest) (*dto.StudySlotMutationResponse, error) {
	slot, err := s.getSlot(ctx, id)
	if err != nil {
		return nil, err
	}

	day := slot.DayOfWeek
	if req.DayOfWeek != nil {
		day = *req.DayOfWeek
	}
	if err := planner.ValidateDay(day); err != nil {
		return nil, err
	}
	startText, endText := slot.StartTime, slot.EndTime
	if req.StartTime != nil {
		startText = *req.StartTime
	}
	if req.EndTime != nil {
		endText = *req.EndTime
	}
	iv, err := planner.ParseInterval(startText, endText)
	if err != nil {
		return nil, err
	}
	if err := s.settings.Window.ValidateInterval(iv); err != nil {
		return nil, err
	}

	course := slot.Course
	if req.CourseID != nil && *req.CourseID != slot.CourseID {
		if course, err = s.getCourse(ctx, *req.CourseID); err != nil {
			return nil, err
		}
	}

	return s.commit(ctx, slot, "时间块已更新", func(cur *model.StudySlot) (planner.Interval, error) {
		cur.DayOfWeek = day
		if course != nil {
			cur.CourseID = course.CourseID
			cur.Course = course
		}
		if req.Notes != nil {
			cur.Notes = req.Notes
		}
		return iv, nil
	})
}

// ────────────────────── Move ──────────────────────

func (s *studySlotService) Move(ctx context.Context, id uint, req *dto.MoveStudySlotRequest) (*dto.StudySlotMutationResponse, error) {
	if err := planner.ValidateDay(req.DayOfWeek); err != nil {
		return nil, err
	}
	start, err := planner.ParseClock(req.StartTime)
	if err != nil {
		return nil, err
	}

	slot, err := s.getSlot(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.commit(ctx, slot, "时间块已移动", func(cur *model.StudySlot) (planner.Interval, error) {
		iv, err := cur.Interval()
		if err != nil {
			return planner.Interval{}, err
		}
		cur.DayOfWeek = req.DayOfWeek
		return s.settings.Window.Move(iv, start)
	})
}

// ────────────────────── Resize ──────────────────────

// Resize 提交一次拖动调整。越界裁剪而不报错；提交区间与其它时间块重叠时
// 返回 *planner.OverlapError，时间块保持调整前的区间。
func (s *studySlotService) Resize(ctx context.Context, id uint, req *dto.ResizeStudySlotRequest) (*dto.StudySlotMutationResponse, error) {
	edge, err := planner.ParseEdge(req.Edge)
	if err != nil {
		return nil, err
	}

	slot, err := s.getSlot(ctx, id)
	if err != nil {
		return nil, err
	}

	// 不足一步的拖动不落库
	if s.settings.Window.Quantize(req.DeltaMinutes) == 0 {
		return s.unchanged(ctx, slot)
	}

	resp, err := s.commit(ctx, slot, "时间块已调整", func(cur *model.StudySlot) (planner.Interval, error) {
		iv, err := cur.Interval()
		if err != nil {
			return planner.Interval{}, err
		}
		gesture := s.settings.Window.BeginResize(iv, edge)
		gesture.Step(req.DeltaMinutes)
		final, changed := gesture.Commit()
		if !changed {
			return iv, errUnchanged
		}
		return final, nil
	})
	if errors.Is(err, errUnchanged) {
		return s.unchanged(ctx, slot)
	}
	return resp, err
}

// errUnchanged 调整被裁剪后与原区间相同，不写入
var errUnchanged = errors.New("区间未变化")

func (s *studySlotService) unchanged(ctx context.Context, slot *model.StudySlot) (*dto.StudySlotMutationResponse, error) {
	total, err := s.WeeklyTotal(ctx, slot.StudentID)
	if err != nil {
		return nil, err
	}
	return &dto.StudySlotMutationResponse{Slot: s.toResponse(slot), WeeklyTotal: *total, Changed: false}, nil
}

// commit 在学生锁内重新读取时间块，由 apply 基于最新状态给出目标区间，
// 校验重叠后写入。apply 可修改时间块的其它字段（星期、课程、备注）。
func (s *studySlotService) commit(ctx context.Context, slot *model.StudySlot, msg string,
	apply func(cur *model.StudySlot) (planner.Interval, error)) (*dto.StudySlotMutationResponse, error) {
	var (
		total   dto.WeeklyTotalResponse
		updated model.StudySlot
	)
	err := withStudentLock(ctx, s.repo, slot.StudentID, func(ctx context.Context, tx repository.TxRepositories) error {
		existing, err := tx.StudySlot.ListByStudent(ctx, slot.StudentID)
		if err != nil {
			return err
		}
		idx := -1
		for i := range existing {
			if existing[i].StudySlotID == slot.StudySlotID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ErrStudySlotNotFound
		}

		updated = existing[idx]
		iv, err := apply(&updated)
		if err != nil {
			return err
		}
		if err := planner.ValidateDay(updated.DayOfWeek); err != nil {
			return err
		}
		if err := planner.EnsureFree(model.ToBlocks(existing), updated.DayOfWeek, iv, updated.StudySlotID); err != nil {
			return err
		}

		updated.SetInterval(iv)
		if err := tx.StudySlot.Update(ctx, &updated); err != nil {
			return err
		}
		existing[idx] = updated
		total = s.weeklyTotal(existing)
		return nil
	})
	if err != nil {
		return nil, s.logUnexpected("写入时间块失败", err, zap.Uint("study_slot_id", slot.StudySlotID))
	}

	s.logger.Info(msg,
		zap.Uint("student_id", updated.StudentID),
		zap.Uint("study_slot_id", updated.StudySlotID),
		zap.Int("day_of_week", updated.DayOfWeek),
		zap.String("start_time", updated.StartTime),
		zap.String("end_time", updated.EndTime),
	)
	return &dto.StudySlotMutationResponse{Slot: s.toResponse(&updated), WeeklyTotal: total, Changed: true}, nil
}

// ────────────────────── Delete ──────────────────────

func (s *studySlotService) Delete(ctx context.Context, id uint) (*dto.WeeklyTotalResponse, error) {
	slot, err := s.getSlot(ctx, id)
	if err != nil {
		return nil, err
	}

	var total dto.WeeklyTotalResponse
	err = withStudentLock(ctx, s.repo, slot.StudentID, func(ctx context.Context, tx repository.TxRepositories) error {
		if err := tx.StudySlot.Delete(ctx, id); err != nil {
			return err
		}
		remaining, err := tx.StudySlot.ListByStudent(ctx, slot.StudentID)
		if err != nil {
			return err
		}
		total = s.weeklyTotal(remaining)
		return nil
	})
	if err != nil {
		return nil, s.logUnexpected("删除时间块失败", err, zap.Uint("study_slot_id", id))
	}
	return &total, nil
}

// ────────────────────── WeeklyTotal ──────────────────────

func (s *studySlotService) WeeklyTotal(ctx context.Context, studentID uint) (*dto.WeeklyTotalResponse, error) {
	if err := s.ensureStudent(ctx, studentID); err != nil {
		return nil, err
	}
	slots, err := s.repo.StudySlot.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("列出时间块失败", zap.Uint("student_id", studentID), zap.Error(err))
		return nil, err
	}
	total := s.weeklyTotal(slots)
	return &total, nil
}

// ── 内部辅助方法 ──

func (s *studySlotService) weeklyTotal(slots []model.StudySlot) dto.WeeklyTotalResponse {
	blocks := model.ToBlocks(slots)
	resp := dto.WeeklyTotalResponse{SlotCount: len(blocks)}
	for _, b := range blocks {
		resp.ByDay[b.Day-1] += b.Minutes()
	}
	resp.TotalMinutes = planner.TotalMinutes(blocks)
	resp.TotalHours = math.Round(float64(resp.TotalMinutes)/60*100) / 100
	resp.Signal = string(s.settings.Thresholds.Classify(resp.TotalMinutes))
	return resp
}

func (s *studySlotService) getSlot(ctx context.Context, id uint) (*model.StudySlot, error) {
	slot, err := s.repo.StudySlot.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudySlotNotFound
		}
		s.logger.Error("查询时间块失败", zap.Uint("study_slot_id", id), zap.Error(err))
		return nil, err
	}
	return slot, nil
}

func (s *studySlotService) getCourse(ctx context.Context, id uint) (*model.Course, error) {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.Uint("course_id", id), zap.Error(err))
		return nil, err
	}
	return course, nil
}

func (s *studySlotService) ensureStudent(ctx context.Context, id uint) error {
	if _, err := s.repo.Student.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.Uint("student_id", id), zap.Error(err))
		return err
	}
	return nil
}

// logUnexpected 业务错误原样返回，其余错误记录日志
func (s *studySlotService) logUnexpected(msg string, err error, fields ...zap.Field) error {
	if errors.Is(err, planner.ErrOverlap) || errors.Is(err, planner.ErrOutOfBounds) ||
		errors.Is(err, ErrStudentNotFound) || errors.Is(err, ErrStudySlotNotFound) ||
		errors.Is(err, errUnchanged) || planner.IsValidation(err) {
		return err
	}
	s.logger.Error(msg, append(fields, zap.Error(err))...)
	return err
}

func (s *studySlotService) toResponse(slot *model.StudySlot) dto.StudySlotResponse {
	resp := dto.StudySlotResponse{
		ID:        slot.StudySlotID,
		StudentID: slot.StudentID,
		CourseID:  slot.CourseID,
		DayOfWeek: slot.DayOfWeek,
		StartTime: slot.StartTime,
		EndTime:   slot.EndTime,
		Notes:     slot.Notes,
		CreatedAt: slot.CreatedAt.Format(dto.TimeFormat),
		UpdatedAt: slot.UpdatedAt.Format(dto.TimeFormat),
	}
	if iv, err := slot.Interval(); err == nil {
		resp.DurationMinutes = iv.Minutes()
	}
	if slot.Course != nil {
		resp.CourseName = slot.Course.Name
		resp.Category = s.settings.Classifier.Classify(slot.Course.Name)
	}
	return resp
}
