package service

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"testing"
	"time"

	"go.uber.org/zap"

	"guidance-planner/internal/dto"
	"guidance-planner/internal/planner"
)

// ── 测试辅助 ──

// 2026-10-14 为周三
var fixedNow = time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)

func testSettings() *Settings {
	s := DefaultSettings()
	s.Now = func() time.Time { return fixedNow }
	return s
}

func intPtr(v int) *int { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool { return &v }
func uintPtr(v uint) *uint { return &v }

func setupStudySlotService() (StudySlotService, *memStore) {
	store := newMemStore()
	store.addStudent(1, "Ayşe Yılmaz")
	store.addCourse(5, "TYT Matematik")
	store.addCourse(6, "AYT Fizik")
	return NewStudySlotService(store.toRepository(), testSettings(), zap.NewNop()), store
}

func place(t *testing.T, svc StudySlotService, day int, start string, minutes int) dto.StudySlotResponse {
	t.Helper()
	resp, err := svc.Create(context.Background(), 1, &dto.CreateStudySlotRequest{
		CourseID: 5, DayOfWeek: day, StartTime: start, DurationMinutes: intPtr(minutes),
	})
	if err != nil {
		t.Fatalf("放置 %d %s 失败: %v", day, start, err)
	}
	return resp.Slot
}

// ── Create ──

// 场景 A：周一 09:00 放 60 分钟，再放周一 [09:30,10:30) 应冲突并指出第一个块
func TestCreate_ScenarioA(t *testing.T) {
	svc, store := setupStudySlotService()
	ctx := context.Background()

	first := place(t, svc, 1, "09:00", 60)
	if first.StartTime != "09:00" || first.EndTime != "10:00" || first.DurationMinutes != 60 {
		t.Fatalf("期望 [09:00,10:00)，实际 %+v", first)
	}
	if first.CourseName != "TYT Matematik" || first.Category != "TYT" {
		t.Errorf("课程信息错误: %+v", first)
	}

	_, err := svc.Create(ctx, 1, &dto.CreateStudySlotRequest{
		CourseID: 5, DayOfWeek: 1, StartTime: "09:30", EndTime: strPtr("10:30"),
	})
	var oe *planner.OverlapError
	if !errors.As(err, &oe) {
		t.Fatalf("期望 *planner.OverlapError，实际: %v", err)
	}
	if oe.Conflict.ID != first.ID {
		t.Errorf("冲突块应为 #%d，实际 #%d", first.ID, oe.Conflict.ID)
	}
	if len(store.slots) != 1 {
		t.Errorf("冲突时不应写入，实际 %d 个时间块", len(store.slots))
	}
}

func TestCreate_WeeklyTotalSignal(t *testing.T) {
	svc, _ := setupStudySlotService()
	ctx := context.Background()

	place(t, svc, 1, "09:00", 120)
	resp, err := svc.Create(ctx, 1, &dto.CreateStudySlotRequest{
		CourseID: 6, DayOfWeek: 3, StartTime: "14:00", DurationMinutes: intPtr(180),
	})
	if err != nil {
		t.Fatalf("Create 失败: %v", err)
	}
	wt := resp.WeeklyTotal
	if wt.TotalMinutes != 300 || wt.Signal != "ok" || wt.SlotCount != 2 {
		t.Errorf("期望 300 分钟 ok 2 块，实际 %+v", wt)
	}
	if wt.ByDay[0] != 120 || wt.ByDay[2] != 180 {
		t.Errorf("按天汇总错误: %v", wt.ByDay)
	}
	if wt.TotalHours != 5 {
		t.Errorf("期望 5 小时，实际 %v", wt.TotalHours)
	}
}

func TestCreate_ClampsDurationToWindowClose(t *testing.T) {
	svc, _ := setupStudySlotService()
	slot := place(t, svc, 7, "23:00", 90)
	if slot.EndTime != "23:59" || slot.DurationMinutes != 59 {
		t.Errorf("期望裁剪为 [23:00,23:59)，实际 %+v", slot)
	}
}

func TestCreate_Rejections(t *testing.T) {
	svc, store := setupStudySlotService()
	ctx := context.Background()

	cases := []struct {
		name      string
		studentID uint
		req       dto.CreateStudySlotRequest
		want      error
	}{
		{"缺少时长与结束时间", 1, dto.CreateStudySlotRequest{CourseID: 5, DayOfWeek: 1, StartTime: "09:00"}, ErrSlotDurationRequired},
		{"结束时间未对齐", 1, dto.CreateStudySlotRequest{CourseID: 5, DayOfWeek: 1, StartTime: "09:00", EndTime: strPtr("09:45")}, planner.ErrMisaligned},
		{"早于窗口", 1, dto.CreateStudySlotRequest{CourseID: 5, DayOfWeek: 1, StartTime: "06:00", DurationMinutes: intPtr(60)}, planner.ErrOutOfBounds},
		{"非法星期", 1, dto.CreateStudySlotRequest{CourseID: 5, DayOfWeek: 8, StartTime: "09:00", DurationMinutes: intPtr(60)}, planner.ErrInvalidDay},
		{"课程不存在", 1, dto.CreateStudySlotRequest{CourseID: 99, DayOfWeek: 1, StartTime: "09:00", DurationMinutes: intPtr(60)}, ErrCourseNotFound},
		{"学生不存在", 42, dto.CreateStudySlotRequest{CourseID: 5, DayOfWeek: 1, StartTime: "09:00", DurationMinutes: intPtr(60)}, ErrStudentNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := tc.req
			_, err := svc.Create(ctx, tc.studentID, &req)
			if !errors.Is(err, tc.want) {
				t.Errorf("期望 %v，实际: %v", tc.want, err)
			}
		})
	}
	if len(store.slots) != 0 {
		t.Errorf("失败的放置不应写入")
	}
}

// ── Move ──

// 场景 B：周一 [09:00,10:00) 移到周二 09:00，时长保持 60 分钟
func TestMove_ScenarioB(t *testing.T) {
	svc, _ := setupStudySlotService()
	ctx := context.Background()
	slot := place(t, svc, 1, "09:00", 60)

	resp, err := svc.Move(ctx, slot.ID, &dto.MoveStudySlotRequest{DayOfWeek: 2, StartTime: "09:00"})
	if err != nil {
		t.Fatalf("Move 失败: %v", err)
	}
	if resp.Slot.DayOfWeek != 2 || resp.Slot.StartTime != "09:00" || resp.Slot.EndTime != "10:00" {
		t.Errorf("移动结果错误: %+v", resp.Slot)
	}

	list, _ := svc.List(ctx, 1)
	if len(list) != 1 || list[0].DayOfWeek != 2 || list[0].DurationMinutes != 60 {
		t.Errorf("期望仅周二一个 60 分钟块，实际 %+v", list)
	}
	if resp.WeeklyTotal.ByDay[0] != 0 || resp.WeeklyTotal.ByDay[1] != 60 {
		t.Errorf("按天汇总错误: %v", resp.WeeklyTotal.ByDay)
	}
}

func TestMove_RejectsPastCloseAndOverlap(t *testing.T) {
	svc, store := setupStudySlotService()
	ctx := context.Background()
	a := place(t, svc, 1, "09:00", 60)
	place(t, svc, 2, "14:00", 60)

	_, err := svc.Move(ctx, a.ID, &dto.MoveStudySlotRequest{DayOfWeek: 1, StartTime: "23:30"})
	if !errors.Is(err, planner.ErrOutOfBounds) {
		t.Errorf("期望 ErrOutOfBounds，实际: %v", err)
	}

	_, err = svc.Move(ctx, a.ID, &dto.MoveStudySlotRequest{DayOfWeek: 2, StartTime: "13:30"})
	if !errors.Is(err, planner.ErrOverlap) {
		t.Errorf("期望 ErrOverlap，实际: %v", err)
	}

	// 自身所在位置不算冲突
	if _, err := svc.Move(ctx, a.ID, &dto.MoveStudySlotRequest{DayOfWeek: 1, StartTime: "09:30"}); err != nil {
		t.Errorf("与自身旧位置重叠不应报错: %v", err)
	}
	if got := store.slots[a.ID]; got.DayOfWeek != 1 || got.StartTime != "09:30" || got.EndTime != "10:30" {
		t.Errorf("存储结果错误: %+v", got)
	}
}

func TestMove_NotFound(t *testing.T) {
	svc, _ := setupStudySlotService()
	_, err := svc.Move(context.Background(), 777, &dto.MoveStudySlotRequest{DayOfWeek: 1, StartTime: "09:00"})
	if !errors.Is(err, ErrStudySlotNotFound) {
		t.Errorf("期望 ErrStudySlotNotFound，实际: %v", err)
	}
}

// ── Resize ──

// 场景 C：结束边拖动 +45 分钟，按 30 分钟截断为 +30
func TestResize_ScenarioC(t *testing.T) {
	svc, _ := setupStudySlotService()
	slot := place(t, svc, 1, "09:00", 60)

	resp, err := svc.Resize(context.Background(), slot.ID, &dto.ResizeStudySlotRequest{Edge: "end", DeltaMinutes: 45})
	if err != nil {
		t.Fatalf("Resize 失败: %v", err)
	}
	if !resp.Changed || resp.Slot.EndTime != "10:30" {
		t.Errorf("期望 [09:00,10:30)，实际 %+v", resp.Slot)
	}
}

func TestResize_ClampsSilently(t *testing.T) {
	svc, _ := setupStudySlotService()
	ctx := context.Background()
	slot := place(t, svc, 1, "22:00", 60)

	resp, err := svc.Resize(ctx, slot.ID, &dto.ResizeStudySlotRequest{Edge: "end", DeltaMinutes: 300})
	if err != nil {
		t.Fatalf("越界调整应裁剪而不报错: %v", err)
	}
	if resp.Slot.EndTime != "23:59" {
		t.Errorf("期望裁剪到 23:59，实际 %s", resp.Slot.EndTime)
	}

	resp, err = svc.Resize(ctx, slot.ID, &dto.ResizeStudySlotRequest{Edge: "start", DeltaMinutes: 600})
	if err != nil {
		t.Fatalf("收缩应裁剪而不报错: %v", err)
	}
	if resp.Slot.DurationMinutes < 30 {
		t.Errorf("收缩后不应短于一个粒度: %+v", resp.Slot)
	}
}

func TestResize_ConflictKeepsOriginal(t *testing.T) {
	svc, store := setupStudySlotService()
	a := place(t, svc, 1, "09:00", 60)
	b := place(t, svc, 1, "10:30", 60)

	_, err := svc.Resize(context.Background(), a.ID, &dto.ResizeStudySlotRequest{Edge: "end", DeltaMinutes: 90})
	var oe *planner.OverlapError
	if !errors.As(err, &oe) {
		t.Fatalf("期望 *planner.OverlapError，实际: %v", err)
	}
	if oe.Conflict.ID != b.ID {
		t.Errorf("冲突块应为 #%d，实际 #%d", b.ID, oe.Conflict.ID)
	}
	if got := store.slots[a.ID]; got.StartTime != "09:00" || got.EndTime != "10:00" {
		t.Errorf("冲突后应保持原区间，实际 [%s,%s)", got.StartTime, got.EndTime)
	}
}

func TestResize_BelowOneStepIsNoop(t *testing.T) {
	svc, _ := setupStudySlotService()
	slot := place(t, svc, 1, "09:00", 60)

	resp, err := svc.Resize(context.Background(), slot.ID, &dto.ResizeStudySlotRequest{Edge: "start", DeltaMinutes: -20})
	if err != nil {
		t.Fatalf("Resize 失败: %v", err)
	}
	if resp.Changed {
		t.Errorf("不足一步的拖动不应产生变化")
	}
	if resp.Slot.StartTime != "09:00" || resp.WeeklyTotal.TotalMinutes != 60 {
		t.Errorf("结果错误: %+v", resp)
	}
}

func TestResize_InvalidEdge(t *testing.T) {
	svc, _ := setupStudySlotService()
	slot := place(t, svc, 1, "09:00", 60)
	_, err := svc.Resize(context.Background(), slot.ID, &dto.ResizeStudySlotRequest{Edge: "middle", DeltaMinutes: 30})
	if !errors.Is(err, planner.ErrInvalidEdge) {
		t.Errorf("期望 ErrInvalidEdge，实际: %v", err)
	}
}

// ── Update ──

func TestUpdate_StrictValidation(t *testing.T) {
	svc, store := setupStudySlotService()
	ctx := context.Background()
	slot := place(t, svc, 1, "09:00", 60)

	resp, err := svc.Update(ctx, slot.ID, &dto.UpdateStudySlotRequest{
		CourseID: uintPtr(6), EndTime: strPtr("11:00"), Notes: strPtr("deneme sınavı"),
	})
	if err != nil {
		t.Fatalf("Update 失败: %v", err)
	}
	if resp.Slot.CourseID != 6 || resp.Slot.CourseName != "AYT Fizik" || resp.Slot.EndTime != "11:00" {
		t.Errorf("更新结果错误: %+v", resp.Slot)
	}
	if resp.Slot.Notes == nil || *resp.Slot.Notes != "deneme sınavı" {
		t.Errorf("备注未更新")
	}

	// 结束时间超出窗口不裁剪
	_, err = svc.Update(ctx, slot.ID, &dto.UpdateStudySlotRequest{StartTime: strPtr("06:30")})
	if !errors.Is(err, planner.ErrOutOfBounds) {
		t.Errorf("期望 ErrOutOfBounds，实际: %v", err)
	}
	if got := store.slots[slot.ID]; got.StartTime != "09:00" {
		t.Errorf("失败的更新不应写入: %+v", got)
	}

	_, err = svc.Update(ctx, slot.ID, &dto.UpdateStudySlotRequest{CourseID: uintPtr(99)})
	if !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("期望 ErrCourseNotFound，实际: %v", err)
	}
}

// ── Delete / WeeklyTotal ──

func TestDelete_UpdatesWeeklyTotal(t *testing.T) {
	svc, store := setupStudySlotService()
	ctx := context.Background()
	a := place(t, svc, 1, "09:00", 60)
	place(t, svc, 2, "09:00", 90)

	total, err := svc.Delete(ctx, a.ID)
	if err != nil {
		t.Fatalf("Delete 失败: %v", err)
	}
	if total.TotalMinutes != 90 || total.SlotCount != 1 || total.Signal != "low" {
		t.Errorf("删除后汇总错误: %+v", total)
	}
	if _, ok := store.deleted[a.ID]; !ok {
		t.Errorf("应为软删除")
	}

	if _, err := svc.GetByID(ctx, a.ID); !errors.Is(err, ErrStudySlotNotFound) {
		t.Errorf("删除后查询应返回 ErrStudySlotNotFound，实际: %v", err)
	}
	if _, err := svc.Delete(ctx, a.ID); !errors.Is(err, ErrStudySlotNotFound) {
		t.Errorf("重复删除应返回 ErrStudySlotNotFound，实际: %v", err)
	}
}

func TestWeeklyTotal_Dense(t *testing.T) {
	svc, _ := setupStudySlotService()
	for day := 1; day <= 7; day++ {
		place(t, svc, day, "18:00", 120)
	}
	total, err := svc.WeeklyTotal(context.Background(), 1)
	if err != nil {
		t.Fatalf("WeeklyTotal 失败: %v", err)
	}
	if total.TotalMinutes != 840 || total.Signal != "dense" {
		t.Errorf("期望 840 分钟 dense，实际 %+v", total)
	}

	if _, err := svc.WeeklyTotal(context.Background(), 42); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("期望 ErrStudentNotFound，实际: %v", err)
	}
}

// 贴 Close 裁剪出的 29 分钟尾块不能移到白天，否则结束时间落在粒度之间
func TestMove_ClampedTailSlot(t *testing.T) {
	svc, store := setupStudySlotService()
	ctx := context.Background()

	tail := place(t, svc, 1, "23:30", 60)
	if tail.EndTime != "23:59" || tail.DurationMinutes != 29 {
		t.Fatalf("期望裁剪为 [23:30,23:59)，实际 %+v", tail)
	}

	_, err := svc.Move(ctx, tail.ID, &dto.MoveStudySlotRequest{DayOfWeek: 2, StartTime: "09:00"})
	if !errors.Is(err, planner.ErrMisaligned) {
		t.Fatalf("期望 ErrMisaligned，实际: %v", err)
	}
	if got := store.slots[tail.ID]; got.DayOfWeek != 1 || got.StartTime != "23:30" || got.EndTime != "23:59" {
		t.Errorf("被拒绝的移动不应修改时间块: %+v", got)
	}

	// 换到另一天的同一位置仍然合法
	moved, err := svc.Move(ctx, tail.ID, &dto.MoveStudySlotRequest{DayOfWeek: 2, StartTime: "23:30"})
	if err != nil || moved.Slot.DayOfWeek != 2 || moved.Slot.EndTime != "23:59" {
		t.Fatalf("移到周二 23:30 应成功: %+v err=%v", moved, err)
	}

	// 之后仍可以只改备注
	if _, err := svc.Update(ctx, tail.ID, &dto.UpdateStudySlotRequest{Notes: strPtr("复习错题")}); err != nil {
		t.Errorf("只改备注应成功: %v", err)
	}
}

// 任意放置、移动、调整、删除序列之后，同一天的时间块两两不重叠且都落在窗口内、对齐粒度
func TestStudySlot_RandomSequenceKeepsInvariants(t *testing.T) {
	svc, _ := setupStudySlotService()
	ctx := context.Background()
	w := planner.DefaultWindow()
	rng := rand.New(rand.NewSource(20261014))

	randomStart := func() string {
		steps := (int(w.Close) - int(w.Open)) / w.Granule
		return (w.Open + planner.Clock(rng.Intn(steps+1)*w.Granule)).String()
	}
	expected := func(err error) bool {
		return errors.Is(err, planner.ErrOverlap) || errors.Is(err, planner.ErrOutOfBounds) || planner.IsValidation(err)
	}

	for step := 0; step < 400; step++ {
		slots, err := svc.List(ctx, 1)
		if err != nil {
			t.Fatalf("List 失败: %v", err)
		}
		var ids []uint
		for _, sl := range slots {
			ids = append(ids, sl.ID)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		op := rng.Intn(10)
		if len(ids) == 0 {
			op = 0
		}
		switch {
		case op < 4:
			_, err = svc.Create(ctx, 1, &dto.CreateStudySlotRequest{
				CourseID:        5,
				DayOfWeek:       rng.Intn(7) + 1,
				StartTime:       randomStart(),
				DurationMinutes: intPtr((rng.Intn(6) + 1) * w.Granule),
			})
		case op < 7:
			_, err = svc.Move(ctx, ids[rng.Intn(len(ids))], &dto.MoveStudySlotRequest{
				DayOfWeek: rng.Intn(7) + 1,
				StartTime: randomStart(),
			})
		case op < 9:
			edge := "start"
			if rng.Intn(2) == 1 {
				edge = "end"
			}
			_, err = svc.Resize(ctx, ids[rng.Intn(len(ids))], &dto.ResizeStudySlotRequest{
				Edge:         edge,
				DeltaMinutes: rng.Intn(361) - 180,
			})
		default:
			_, err = svc.Delete(ctx, ids[rng.Intn(len(ids))])
		}
		if err != nil && !expected(err) {
			t.Fatalf("第 %d 步非预期错误: %v", step, err)
		}

		assertSlotInvariants(t, svc, w, step)
	}
}

func assertSlotInvariants(t *testing.T, svc StudySlotService, w planner.Window, step int) {
	t.Helper()
	slots, err := svc.List(context.Background(), 1)
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}

	byDay := make(map[int][]planner.Block)
	total := 0
	for _, sl := range slots {
		iv, err := planner.ParseInterval(sl.StartTime, sl.EndTime)
		if err != nil {
			t.Fatalf("第 %d 步存储了无法解析的时间: %+v", step, sl)
		}
		if err := w.ValidateInterval(iv); err != nil {
			t.Fatalf("第 %d 步时间块 #%d 不合法 %s: %v", step, sl.ID, iv, err)
		}
		for _, other := range byDay[sl.DayOfWeek] {
			if other.Overlaps(iv) {
				t.Fatalf("第 %d 步周%d 时间块 #%d %s 与 #%d %s 重叠",
					step, sl.DayOfWeek, sl.ID, iv, other.ID, other.Interval)
			}
		}
		byDay[sl.DayOfWeek] = append(byDay[sl.DayOfWeek], planner.Block{ID: sl.ID, Day: sl.DayOfWeek, Interval: iv})
		total += iv.Minutes()
	}

	wt, err := svc.WeeklyTotal(context.Background(), 1)
	if err != nil {
		t.Fatalf("WeeklyTotal 失败: %v", err)
	}
	if wt.TotalMinutes != total {
		t.Fatalf("第 %d 步周总时长 %d，逐块求和 %d", step, wt.TotalMinutes, total)
	}
}
