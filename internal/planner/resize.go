package planner

import "fmt"

// Edge 被拖动的边
type Edge string

const (
	EdgeStart Edge = "start"
	EdgeEnd   Edge = "end"
)

// ParseEdge 解析 "start" / "end"
func ParseEdge(s string) (Edge, error) {
	switch Edge(s) {
	case EdgeStart, EdgeEnd:
		return Edge(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidEdge, s)
}

// Resize 计算调整后的区间。
//
// 越界不报错而是裁剪到最近的合法边界：
//   - start 边：Open ≤ newStart ≤ End - 粒度
//   - end 边：Start + 粒度 ≤ newEnd ≤ Close
//
// 不检查重叠，重叠只在提交时校验。
func (w Window) Resize(cur Interval, edge Edge, deltaMinutes int) Interval {
	step := Clock(w.Quantize(deltaMinutes))
	g := Clock(w.Granule)

	switch edge {
	case EdgeStart:
		lo := w.Open
		hi := w.alignDown(cur.End - g)
		if hi < cur.Start {
			// 已不足一个粒度（贴着 Close 放置的末尾块），不再收缩
			hi = cur.Start
		}
		if lo > hi {
			lo = hi
		}
		return Interval{Start: clampClock(cur.Start+step, lo, hi), End: cur.End}

	case EdgeEnd:
		base := w.alignUp(cur.End)
		lo := cur.Start + g
		hi := w.Close
		if lo > hi {
			lo = hi
		}
		return Interval{Start: cur.Start, End: clampClock(base+step, lo, hi)}
	}
	return cur
}

func clampClock(v, lo, hi Clock) Clock {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ── 交互式调整手势 ──

// ResizeGesture 一次拖动调整的本地预览状态。
// 预览从不写入存储；Commit 只给出最终区间，由调用方做重叠校验后落库。
type ResizeGesture struct {
	window  Window
	origin  Interval
	edge    Edge
	preview Interval
	done    bool
}

// BeginResize 以当前区间为起点开始一次调整
func (w Window) BeginResize(origin Interval, edge Edge) *ResizeGesture {
	return &ResizeGesture{window: w, origin: origin, edge: edge, preview: origin}
}

// Step 更新预览。delta 为相对手势起点的累计偏移（分钟）
func (g *ResizeGesture) Step(deltaMinutes int) Interval {
	if g.done {
		return g.preview
	}
	g.preview = g.window.Resize(g.origin, g.edge, deltaMinutes)
	return g.preview
}

// Preview 当前预览区间
func (g *ResizeGesture) Preview() Interval { return g.preview }

// Origin 手势开始前的区间（提交失败时回退到此）
func (g *ResizeGesture) Origin() Interval { return g.origin }

// Cancel 放弃手势，预览回到起点
func (g *ResizeGesture) Cancel() Interval {
	g.preview = g.origin
	g.done = true
	return g.origin
}

// Commit 结束手势，返回最终区间以及是否发生变化
func (g *ResizeGesture) Commit() (Interval, bool) {
	g.done = true
	return g.preview, g.preview != g.origin
}
