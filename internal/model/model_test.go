package model

import (
	"testing"
	"time"
)

func TestTopicProgress_ConsumeAndReset(t *testing.T) {
	p := TopicProgress{TotalTime: 90, RemainingTime: 90}
	now := time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC)

	p.Consume(60, now)
	if p.CompletedTime != 60 || p.RemainingTime != 30 || p.IsCompleted {
		t.Fatalf("消耗 60 分钟后状态错误: %+v", p)
	}
	p.Consume(60, now)
	if p.CompletedTime != 90 || p.RemainingTime != 0 || !p.IsCompleted {
		t.Fatalf("超额消耗应封顶: %+v", p)
	}
	if p.LastStudiedAt == nil || !p.LastStudiedAt.Equal(now) {
		t.Errorf("LastStudiedAt 未记录")
	}

	p.Reset()
	first := p
	p.Reset()
	if p.CompletedTime != 0 || p.RemainingTime != 90 || p.IsCompleted {
		t.Errorf("重置后状态错误: %+v", p)
	}
	if p.CompletedTime != first.CompletedTime || p.RemainingTime != first.RemainingTime || p.IsCompleted != first.IsCompleted {
		t.Errorf("重复重置结果应一致")
	}
}

func TestToBlocks_SkipsMalformed(t *testing.T) {
	slots := []StudySlot{
		{StudySlotID: 1, DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00", CourseID: 3},
		{StudySlotID: 2, DayOfWeek: 1, StartTime: "9:00", EndTime: "10:00", CourseID: 3},
	}
	blocks := ToBlocks(slots)
	if len(blocks) != 1 || blocks[0].ID != 1 || blocks[0].Minutes() != 60 {
		t.Errorf("期望仅保留 #1，实际 %+v", blocks)
	}
	cb := ToCourseBlocks(slots)
	if len(cb) != 1 || cb[0].CourseID != 3 {
		t.Errorf("ToCourseBlocks 结果错误: %+v", cb)
	}
}
