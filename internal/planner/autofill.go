package planner

import (
	"sort"
	"time"
)

// ════════════════════════════════════════════════════════════
// 自动填充：把课程主题的剩余学习时长分配进时间块的空闲容量
// ════════════════════════════════════════════════════════════
//
// 纯计算，无副作用。同样的输入总是得到同样的分配结果，
// 因此预览（dry run）与正式应用可以各自重新计算。

// CourseBlock 绑定了课程的周时间块
type CourseBlock struct {
	Block
	CourseID uint
}

// Occurrence 周时间块落在某个具体日期上的一次出现
type Occurrence struct {
	SlotID   uint
	CourseID uint
	Date     time.Time
	Interval Interval
	Booked   []Interval // 该日期上已有学习计划占用的区间，可无序，可越出块范围
}

// Gaps 块区间扣除已占用区间后剩下的空闲片段，按时间顺序
func (o Occurrence) Gaps() []Interval {
	booked := make([]Interval, len(o.Booked))
	copy(booked, o.Booked)
	sort.Slice(booked, func(i, j int) bool { return booked[i].Start < booked[j].Start })

	var gaps []Interval
	cursor := o.Interval.Start
	for _, b := range booked {
		if b.Start >= o.Interval.End {
			break
		}
		if b.Start > cursor {
			gaps = append(gaps, Interval{Start: cursor, End: b.Start})
		}
		if b.End > cursor {
			cursor = b.End
		}
	}
	if cursor < o.Interval.End {
		gaps = append(gaps, Interval{Start: cursor, End: o.Interval.End})
	}
	return gaps
}

// Free 剩余可分配分钟数
func (o Occurrence) Free() int {
	free := 0
	for _, g := range o.Gaps() {
		free += g.Minutes()
	}
	return free
}

// TopicBalance 某主题在本次运行开始时的剩余时长
type TopicBalance struct {
	TopicID   uint
	CourseID  uint
	Priority  int
	Remaining int
}

// Allocation 一条分配结果
type Allocation struct {
	SlotID   uint
	TopicID  uint
	CourseID uint
	Date     time.Time
	Interval Interval
	Minutes  int
}

// Expand 把周时间块展开到 [from, to] 的每一天上（含两端），按日期、开始时间排序。
// 跨度不限于 7 天，超过一周时每周重复出现。
func Expand(blocks []CourseBlock, from, to time.Time) []Occurrence {
	byDay := make(map[int][]CourseBlock, 7)
	for _, b := range blocks {
		byDay[b.Day] = append(byDay[b.Day], b)
	}
	for d := range byDay {
		list := byDay[d]
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].Start != list[j].Start {
				return list[i].Start < list[j].Start
			}
			return list[i].ID < list[j].ID
		})
	}

	from = truncateDate(from)
	to = truncateDate(to)

	var out []Occurrence
	for date := from; !date.After(to); date = date.AddDate(0, 0, 1) {
		for _, b := range byDay[ISOWeekday(date)] {
			out = append(out, Occurrence{
				SlotID:   b.ID,
				CourseID: b.CourseID,
				Date:     date,
				Interval: b.Interval,
			})
		}
	}
	return out
}

// Allocate 按时间顺序遍历 occurrences，依次把课程下仍有剩余时长的主题填入空闲片段。
// 一个块可以被拆给多个主题，一个主题也可以跨越多个片段；分配从不与已占用区间重叠。
// 主题剩余归零后本次运行内不再参与分配。
// 输入的 topics 不会被修改。
func Allocate(occurrences []Occurrence, topics []TopicBalance) []Allocation {
	ordered := make([]TopicBalance, len(topics))
	copy(ordered, topics)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority < ordered[j].Priority
		}
		return ordered[i].TopicID < ordered[j].TopicID
	})

	byCourse := make(map[uint][]*TopicBalance)
	for i := range ordered {
		t := &ordered[i]
		byCourse[t.CourseID] = append(byCourse[t.CourseID], t)
	}

	var out []Allocation
	for _, occ := range occurrences {
		gaps := occ.Gaps()
		gi := 0
		for _, t := range byCourse[occ.CourseID] {
			for t.Remaining > 0 && gi < len(gaps) {
				g := &gaps[gi]
				take := min(g.Minutes(), t.Remaining)
				out = append(out, Allocation{
					SlotID:   occ.SlotID,
					TopicID:  t.TopicID,
					CourseID: occ.CourseID,
					Date:     occ.Date,
					Interval: Interval{Start: g.Start, End: g.Start + Clock(take)},
					Minutes:  take,
				})
				g.Start += Clock(take)
				t.Remaining -= take
				if g.Minutes() == 0 {
					gi++
				}
			}
			if gi == len(gaps) {
				break
			}
		}
	}
	return out
}

// MinutesByTopic 汇总每个主题分到的分钟数
func MinutesByTopic(allocs []Allocation) map[uint]int {
	sum := make(map[uint]int)
	for _, a := range allocs {
		sum[a.TopicID] += a.Minutes
	}
	return sum
}

// TotalAllocated 全部分配分钟数
func TotalAllocated(allocs []Allocation) int {
	total := 0
	for _, a := range allocs {
		total += a.Minutes
	}
	return total
}

func truncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
