package planner

import (
	"fmt"
	"time"
)

// Clock 一天内的时刻，单位为自 00:00 起的分钟数
type Clock int

// ParseClock 解析 "HH:MM"（两位小时、两位分钟）
func ParseClock(s string) (Clock, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	h, okH := twoDigits(s[0], s[1])
	m, okM := twoDigits(s[3], s[4])
	if !okH || !okM || h > 23 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return Clock(h*60 + m), nil
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}

// String 格式化为 "HH:MM"；24:00 只会作为内部对齐上界出现
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// On 将时刻落到指定日期上
func (c Clock) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, int(c)/60, int(c)%60, 0, 0, date.Location())
}

// ISOWeekday 周一=1 … 周日=7
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// ValidateDay 校验 day_of_week
func ValidateDay(day int) error {
	if day < 1 || day > 7 {
		return fmt.Errorf("%w: %d", ErrInvalidDay, day)
	}
	return nil
}

// ── 每日可排窗口 ──

// Window 每日可排范围与时间粒度。
// Open 必须对齐粒度；Close 可以不对齐（默认 23:59），仅允许作为结束时间。
type Window struct {
	Open    Clock
	Close   Clock
	Granule int
}

// DefaultWindow 07:00-23:59，30 分钟粒度
func DefaultWindow() Window {
	return Window{Open: 7 * 60, Close: 23*60 + 59, Granule: 30}
}

// NewWindow 从配置字符串构建窗口
func NewWindow(open, close string, granule int) (Window, error) {
	o, err := ParseClock(open)
	if err != nil {
		return Window{}, err
	}
	c, err := ParseClock(close)
	if err != nil {
		return Window{}, err
	}
	if granule <= 0 {
		return Window{}, fmt.Errorf("%w: 粒度 %d", ErrInvalidDuration, granule)
	}
	w := Window{Open: o, Close: c, Granule: granule}
	if !w.Aligned(o) {
		return Window{}, fmt.Errorf("%w: 窗口起点 %s", ErrMisaligned, o)
	}
	if c-o < Clock(granule) {
		return Window{}, fmt.Errorf("%w: 窗口 %s-%s 不足一个粒度", ErrInvalidInterval, o, c)
	}
	return w, nil
}

// Aligned 是否落在粒度边界上
func (w Window) Aligned(c Clock) bool { return int(c)%w.Granule == 0 }

func (w Window) alignDown(c Clock) Clock { return c - c%Clock(w.Granule) }

func (w Window) alignUp(c Clock) Clock {
	if w.Aligned(c) {
		return c
	}
	return w.alignDown(c) + Clock(w.Granule)
}

// Quantize 将拖动偏移量按粒度向零截断（+45 → +30，-45 → -30）
func (w Window) Quantize(deltaMinutes int) int {
	return deltaMinutes / w.Granule * w.Granule
}

// ValidateStart 开始时间必须对齐且位于 [Open, Close)
func (w Window) ValidateStart(start Clock) error {
	if !w.Aligned(start) {
		return fmt.Errorf("%w: %s", ErrMisaligned, start)
	}
	if start < w.Open || start >= w.Close {
		return &BoundsError{Proposed: Interval{Start: start, End: start}, Window: w}
	}
	return nil
}

// ValidateInterval 严格校验一个完整区间（不做裁剪）
func (w Window) ValidateInterval(iv Interval) error {
	if err := w.ValidateStart(iv.Start); err != nil {
		return err
	}
	if iv.End <= iv.Start {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, iv)
	}
	if iv.End > w.Close {
		return &BoundsError{Proposed: iv, Window: w}
	}
	if !w.Aligned(iv.End) && iv.End != w.Close {
		return fmt.Errorf("%w: %s", ErrMisaligned, iv.End)
	}
	return nil
}
