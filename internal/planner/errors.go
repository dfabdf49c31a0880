package planner

import (
	"errors"
	"fmt"
)

// ── 校验类错误（请求参数本身不合法）──

var (
	ErrInvalidTime     = errors.New("时间格式无效，应为 HH:MM")
	ErrMisaligned      = errors.New("时间未对齐到时间粒度")
	ErrInvalidDay      = errors.New("星期必须在 1-7 之间")
	ErrInvalidDuration = errors.New("时长必须为时间粒度的正整数倍")
	ErrInvalidInterval = errors.New("开始时间必须早于结束时间")
	ErrInvalidEdge     = errors.New("调整边必须为 start 或 end")
)

// ── 约束类错误 ──

var (
	ErrOutOfBounds = errors.New("时间超出每日可排范围")
	ErrOverlap     = errors.New("与已有学习时间块重叠")
)

// OverlapError 候选区间与同一天已有时间块冲突。
// errors.Is(err, ErrOverlap) 为 true；Conflict 为按开始时间最早的冲突块。
type OverlapError struct {
	Proposed Interval
	Conflict Block
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("%s: 候选 %s 与时间块 #%d (星期%d %s) 冲突",
		ErrOverlap.Error(), e.Proposed, e.Conflict.ID, e.Conflict.Day, e.Conflict.Interval)
}

func (e *OverlapError) Is(target error) bool { return target == ErrOverlap }

// BoundsError 区间落在 [Open, Close] 之外，或收缩后不足一个粒度。
type BoundsError struct {
	Proposed Interval
	Window   Window
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("%s: %s 不在 %s-%s 内",
		ErrOutOfBounds.Error(), e.Proposed, e.Window.Open, e.Window.Close)
}

func (e *BoundsError) Is(target error) bool { return target == ErrOutOfBounds }

// IsValidation 判断是否为参数校验类错误
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidTime) ||
		errors.Is(err, ErrMisaligned) ||
		errors.Is(err, ErrInvalidDay) ||
		errors.Is(err, ErrInvalidDuration) ||
		errors.Is(err, ErrInvalidInterval) ||
		errors.Is(err, ErrInvalidEdge)
}
