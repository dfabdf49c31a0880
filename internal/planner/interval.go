package planner

import (
	"fmt"
	"sort"
)

// Interval 半开区间 [Start, End)
type Interval struct {
	Start Clock
	End   Clock
}

// ParseInterval 解析一对 "HH:MM"
func ParseInterval(start, end string) (Interval, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Interval{}, err
	}
	return Interval{Start: s, End: e}, nil
}

// Minutes 区间时长
func (iv Interval) Minutes() int { return int(iv.End - iv.Start) }

// Overlaps [a1,a2) 与 [b1,b2) 重叠当且仅当 a1 < b2 且 b1 < a2
func (iv Interval) Overlaps(o Interval) bool {
	return iv.Start < o.End && o.Start < iv.End
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%s,%s)", iv.Start, iv.End)
}

// Block 某学生某一天上的一个已存在时间块
type Block struct {
	ID  uint
	Day int
	Interval
}

// FindConflict 在 day 当天查找与 iv 重叠的时间块，忽略 excludeID（移动/调整自身时使用）。
// 有多个冲突时返回开始时间最早的一个。
func FindConflict(blocks []Block, day int, iv Interval, excludeID uint) (Block, bool) {
	var (
		found Block
		ok    bool
	)
	for _, b := range blocks {
		if b.Day != day || (excludeID != 0 && b.ID == excludeID) {
			continue
		}
		if !b.Overlaps(iv) {
			continue
		}
		if !ok || b.Start < found.Start || (b.Start == found.Start && b.ID < found.ID) {
			found, ok = b, true
		}
	}
	return found, ok
}

// EnsureFree 无冲突返回 nil，否则返回 *OverlapError
func EnsureFree(blocks []Block, day int, iv Interval, excludeID uint) error {
	if b, ok := FindConflict(blocks, day, iv, excludeID); ok {
		return &OverlapError{Proposed: iv, Conflict: b}
	}
	return nil
}

// SortBlocks 按星期、开始时间排序
func SortBlocks(blocks []Block) {
	sort.SliceStable(blocks, func(i, j int) bool {
		if blocks[i].Day != blocks[j].Day {
			return blocks[i].Day < blocks[j].Day
		}
		return blocks[i].Start < blocks[j].Start
	})
}

// ── 放置与移动 ──

// Place 计算新时间块区间：end = start + duration，超出窗口上界时裁剪到 Close。
// 裁剪后区间为空则返回 *BoundsError。
func (w Window) Place(start Clock, durationMinutes int) (Interval, error) {
	if durationMinutes <= 0 || durationMinutes%w.Granule != 0 {
		return Interval{}, fmt.Errorf("%w: %d 分钟", ErrInvalidDuration, durationMinutes)
	}
	if err := w.ValidateStart(start); err != nil {
		return Interval{}, err
	}
	iv := Interval{Start: start, End: start + Clock(durationMinutes)}
	if iv.End > w.Close {
		iv.End = w.Close
	}
	if iv.End <= iv.Start {
		return Interval{}, &BoundsError{Proposed: iv, Window: w}
	}
	return iv, nil
}

// Move 保持时长不变，把区间平移到 newStart；越过 Close 直接拒绝（不裁剪）。
// 贴 Close 的不足粒度尾块只能留在原位，移到别处结束时间会落在粒度之间。
func (w Window) Move(cur Interval, newStart Clock) (Interval, error) {
	if err := w.ValidateStart(newStart); err != nil {
		return Interval{}, err
	}
	iv := Interval{Start: newStart, End: newStart + Clock(cur.Minutes())}
	if iv.End > w.Close {
		return Interval{}, &BoundsError{Proposed: iv, Window: w}
	}
	if err := w.ValidateInterval(iv); err != nil {
		return Interval{}, err
	}
	return iv, nil
}
