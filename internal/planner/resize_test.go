package planner

import (
	"errors"
	"testing"
)

func TestResize(t *testing.T) {
	w := DefaultWindow()
	base := Interval{mustClock("09:00"), mustClock("10:00")}

	cases := []struct {
		name  string
		cur   Interval
		edge  Edge
		delta int
		want  string
	}{
		{"场景C 结束边 +45 截断为 +30", base, EdgeEnd, 45, "[09:00,10:30)"},
		{"结束边 +20 不足一步", base, EdgeEnd, 20, "[09:00,10:00)"},
		{"结束边收缩到最小粒度", base, EdgeEnd, -120, "[09:00,09:30)"},
		{"结束边扩展到窗口上界", base, EdgeEnd, 1000, "[09:00,23:59)"},
		{"开始边收缩到最小粒度", base, EdgeStart, 120, "[09:30,10:00)"},
		{"开始边扩展到窗口下界", base, EdgeStart, -600, "[07:00,10:00)"},
		{"开始边 -45 截断为 -30", base, EdgeStart, -45, "[08:30,10:00)"},
		{"贴 Close 的块结束边回收", Interval{mustClock("22:00"), mustClock("23:59")}, EdgeEnd, -30, "[22:00,23:30)"},
		{"不足粒度的尾块不再收缩", Interval{mustClock("23:30"), mustClock("23:59")}, EdgeStart, 30, "[23:30,23:59)"},
		{"不足粒度的尾块结束边不变", Interval{mustClock("23:30"), mustClock("23:59")}, EdgeEnd, -30, "[23:30,23:59)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := w.Resize(tc.cur, tc.edge, tc.delta)
			if got.String() != tc.want {
				t.Errorf("期望 %s，实际 %s", tc.want, got)
			}
		})
	}
}

// 任意调整序列都不会让时间块短于一个粒度
func TestResize_NeverBelowGranule(t *testing.T) {
	w := DefaultWindow()
	deltas := []int{-95, 400, -30, 61, -1000, 15, 30, -59, 720, -720, 45, -45, 1439, -1439}

	for _, start := range []string{"07:00", "09:00", "12:30", "22:00"} {
		cur, err := w.Place(mustClock(start), 60)
		if err != nil {
			t.Fatalf("Place: %v", err)
		}
		for i, d := range deltas {
			edge := EdgeStart
			if i%2 == 1 {
				edge = EdgeEnd
			}
			cur = w.Resize(cur, edge, d)
			if cur.Minutes() < w.Granule {
				t.Fatalf("第 %d 步后时长 %d < %d: %s", i, cur.Minutes(), w.Granule, cur)
			}
			if cur.Start < w.Open || cur.End > w.Close {
				t.Fatalf("第 %d 步后越出窗口: %s", i, cur)
			}
			if !w.Aligned(cur.Start) {
				t.Fatalf("第 %d 步后开始未对齐: %s", i, cur)
			}
		}
	}
}

func TestResizeGesture(t *testing.T) {
	w := DefaultWindow()
	origin := Interval{mustClock("09:00"), mustClock("10:00")}

	g := w.BeginResize(origin, EdgeEnd)
	if p := g.Step(45); p.String() != "[09:00,10:30)" {
		t.Errorf("预览期望 [09:00,10:30)，实际 %s", p)
	}
	// delta 为相对起点的累计量，不是增量
	if p := g.Step(90); p.String() != "[09:00,11:30)" {
		t.Errorf("预览期望 [09:00,11:30)，实际 %s", p)
	}
	final, changed := g.Commit()
	if !changed || final.String() != "[09:00,11:30)" {
		t.Errorf("提交结果 %s changed=%v", final, changed)
	}
	// 提交后继续拖动无效
	if p := g.Step(300); p != final {
		t.Errorf("提交后预览不应变化，实际 %s", p)
	}

	g2 := w.BeginResize(origin, EdgeStart)
	g2.Step(30)
	if back := g2.Cancel(); back != origin {
		t.Errorf("取消后应回到起点，实际 %s", back)
	}
	if g2.Preview() != origin {
		t.Errorf("取消后预览应为起点")
	}

	g3 := w.BeginResize(origin, EdgeEnd)
	g3.Step(10)
	if _, changed := g3.Commit(); changed {
		t.Errorf("不足一步的拖动不应产生变化")
	}
}

func TestParseEdge(t *testing.T) {
	if e, err := ParseEdge("start"); err != nil || e != EdgeStart {
		t.Errorf("start 应合法")
	}
	if _, err := ParseEdge("middle"); !errors.Is(err, ErrInvalidEdge) {
		t.Errorf("期望 ErrInvalidEdge，实际: %v", err)
	}
}
