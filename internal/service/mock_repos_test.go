package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"guidance-planner/internal/model"
	"guidance-planner/internal/repository"
	pkgerrors "guidance-planner/pkg/errors"
)

// ── 内存数据集 ──
//
// 所有 mock repo 共享同一个 memStore；mockTxManager 在 fn 失败时整体恢复快照，
// 以此模拟事务回滚。返回值均为副本，调用方修改不会影响存储。

type memStore struct {
	mu sync.Mutex

	students map[uint]model.Student
	courses  map[uint]model.Course
	topics   map[uint]model.StudyTopic
	slots    map[uint]model.StudySlot
	deleted  map[uint]time.Time // study_slot_id → 软删除时间
	progress map[uint]model.TopicProgress
	entries  map[uint]model.StudyPlanEntry

	nextID uint

	// 故障注入
	failProgressUpdate error
	failPlanCreate     error
}

func newMemStore() *memStore {
	return &memStore{
		students: make(map[uint]model.Student),
		courses:  make(map[uint]model.Course),
		topics:   make(map[uint]model.StudyTopic),
		slots:    make(map[uint]model.StudySlot),
		deleted:  make(map[uint]time.Time),
		progress: make(map[uint]model.TopicProgress),
		entries:  make(map[uint]model.StudyPlanEntry),
		nextID:   1000,
	}
}

func (s *memStore) id() uint {
	s.nextID++
	return s.nextID
}

func (s *memStore) toRepository() *repository.Repository {
	return &repository.Repository{
		Student:       &mockStudentRepo{s},
		Course:        &mockCourseRepo{s},
		StudySlot:     &mockStudySlotRepo{s},
		TopicProgress: &mockTopicProgressRepo{s},
		StudyPlan:     &mockStudyPlanRepo{s},
		Tx:            &mockTxManager{s},
	}
}

type memSnapshot struct {
	slots    map[uint]model.StudySlot
	deleted  map[uint]time.Time
	progress map[uint]model.TopicProgress
	entries  map[uint]model.StudyPlanEntry
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memSnapshot{
		slots:    cloneMap(s.slots),
		deleted:  cloneMap(s.deleted),
		progress: cloneMap(s.progress),
		entries:  cloneMap(s.entries),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots = snap.slots
	s.deleted = snap.deleted
	s.progress = snap.progress
	s.entries = snap.entries
}

// ── 种子数据辅助 ──

func (s *memStore) addStudent(id uint, name string) {
	s.students[id] = model.Student{StudentID: id, FullName: name}
}

func (s *memStore) addCourse(id uint, name string, topics ...model.StudyTopic) {
	s.courses[id] = model.Course{CourseID: id, Name: name}
	for _, t := range topics {
		t.CourseID = id
		s.topics[t.TopicID] = t
	}
}

func (s *memStore) addSlot(id, studentID, courseID uint, day int, start, end string) {
	s.slots[id] = model.StudySlot{
		StudySlotID: id, StudentID: studentID, CourseID: courseID,
		DayOfWeek: day, StartTime: start, EndTime: end,
	}
}

func (s *memStore) addProgress(id, studentID, topicID uint, total, completed int) {
	s.progress[id] = model.TopicProgress{
		ProgressID: id, StudentID: studentID, TopicID: topicID,
		TotalTime: total, CompletedTime: completed, RemainingTime: total - completed,
		IsCompleted:    total == completed,
		VersionedModel: model.VersionedModel{Version: 1},
	}
}

func (s *memStore) entryList() []model.StudyPlanEntry {
	out := make([]model.StudyPlanEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntryID < out[j].EntryID })
	return out
}

func (s *memStore) withCourse(slot model.StudySlot) model.StudySlot {
	if c, ok := s.courses[slot.CourseID]; ok {
		slot.Course = &c
	}
	return slot
}

func (s *memStore) withTopic(p model.TopicProgress) model.TopicProgress {
	if t, ok := s.topics[p.TopicID]; ok {
		p.Topic = &t
	}
	return p
}

// ── Mock StudentRepository ──

type mockStudentRepo struct{ s *memStore }

func (m *mockStudentRepo) GetByID(_ context.Context, id uint) (*model.Student, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if st, ok := m.s.students[id]; ok {
		return &st, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock CourseRepository ──

type mockCourseRepo struct{ s *memStore }

func (m *mockCourseRepo) List(_ context.Context) ([]model.Course, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := make([]model.Course, 0, len(m.s.courses))
	for _, c := range m.s.courses {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].CourseID < out[j].CourseID
	})
	return out, nil
}

func (m *mockCourseRepo) GetByID(ctx context.Context, id uint) (*model.Course, error) {
	m.s.mu.Lock()
	c, ok := m.s.courses[id]
	m.s.mu.Unlock()
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	topics, _ := m.ListTopics(ctx, id)
	c.Topics = topics
	return &c, nil
}

func (m *mockCourseRepo) ListTopics(_ context.Context, courseID uint) ([]model.StudyTopic, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []model.StudyTopic
	for _, t := range m.s.topics {
		if t.CourseID == courseID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderIndex != out[j].OrderIndex {
			return out[i].OrderIndex < out[j].OrderIndex
		}
		return out[i].TopicID < out[j].TopicID
	})
	return out, nil
}

// ── Mock StudySlotRepository ──

type mockStudySlotRepo struct{ s *memStore }

func (m *mockStudySlotRepo) Create(_ context.Context, slot *model.StudySlot) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	slot.StudySlotID = m.s.id()
	stored := *slot
	stored.Course = nil
	m.s.slots[slot.StudySlotID] = stored
	return nil
}

func (m *mockStudySlotRepo) GetByID(_ context.Context, id uint) (*model.StudySlot, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	slot, ok := m.s.slots[id]
	if _, gone := m.s.deleted[id]; !ok || gone {
		return nil, gorm.ErrRecordNotFound
	}
	slot = m.s.withCourse(slot)
	return &slot, nil
}

func (m *mockStudySlotRepo) ListByStudent(_ context.Context, studentID uint) ([]model.StudySlot, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []model.StudySlot
	for id, slot := range m.s.slots {
		if _, gone := m.s.deleted[id]; gone || slot.StudentID != studentID {
			continue
		}
		out = append(out, m.s.withCourse(slot))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek < out[j].DayOfWeek
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].StudySlotID < out[j].StudySlotID
	})
	return out, nil
}

func (m *mockStudySlotRepo) Update(_ context.Context, slot *model.StudySlot) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.slots[slot.StudySlotID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *slot
	stored.Course = nil
	m.s.slots[slot.StudySlotID] = stored
	return nil
}

func (m *mockStudySlotRepo) Delete(_ context.Context, id uint) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.slots[id]; ok {
		m.s.deleted[id] = time.Now()
	}
	return nil
}

func (m *mockStudySlotRepo) PurgeDeleted(_ context.Context, before time.Time) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var n int64
	for id, at := range m.s.deleted {
		if at.Before(before) {
			delete(m.s.slots, id)
			delete(m.s.deleted, id)
			n++
		}
	}
	return n, nil
}

// ── Mock TopicProgressRepository ──

type mockTopicProgressRepo struct{ s *memStore }

func (m *mockTopicProgressRepo) GetByID(_ context.Context, id uint) (*model.TopicProgress, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.progress[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	p = m.s.withTopic(p)
	return &p, nil
}

func (m *mockTopicProgressRepo) list(studentID uint, outstanding bool) []model.TopicProgress {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []model.TopicProgress
	for _, p := range m.s.progress {
		if p.StudentID != studentID || (outstanding && p.RemainingTime <= 0) {
			continue
		}
		out = append(out, m.s.withTopic(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TopicID < out[j].TopicID })
	return out
}

func (m *mockTopicProgressRepo) ListByStudent(_ context.Context, studentID uint) ([]model.TopicProgress, error) {
	return m.list(studentID, false), nil
}

func (m *mockTopicProgressRepo) ListOutstanding(_ context.Context, studentID uint) ([]model.TopicProgress, error) {
	return m.list(studentID, true), nil
}

func (m *mockTopicProgressRepo) CreateMissing(_ context.Context, rows []model.TopicProgress) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var created int64
	for _, row := range rows {
		exists := false
		for _, p := range m.s.progress {
			if p.StudentID == row.StudentID && p.TopicID == row.TopicID {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		row.ProgressID = m.s.id()
		row.Version = 1
		row.Topic = nil
		m.s.progress[row.ProgressID] = row
		created++
	}
	return created, nil
}

func (m *mockTopicProgressRepo) Update(_ context.Context, p *model.TopicProgress) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.failProgressUpdate != nil {
		return m.s.failProgressUpdate
	}
	cur, ok := m.s.progress[p.ProgressID]
	if !ok || cur.Version != p.Version {
		return pkgerrors.ErrOptimisticLock
	}
	p.Version++
	stored := *p
	stored.Topic = nil
	m.s.progress[p.ProgressID] = stored
	return nil
}

// ── Mock StudyPlanRepository ──

type mockStudyPlanRepo struct{ s *memStore }

func (m *mockStudyPlanRepo) BatchCreate(_ context.Context, entries []model.StudyPlanEntry) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.failPlanCreate != nil {
		return m.s.failPlanCreate
	}
	for _, e := range entries {
		for _, old := range m.s.entries {
			if old.StudySlotID == e.StudySlotID && old.StartTime == e.StartTime &&
				old.Date().Equal(e.Date()) {
				return fmt.Errorf("%w: slot %d %s %s", pkgerrors.ErrDuplicate,
					e.StudySlotID, e.Date().Format(time.DateOnly), e.StartTime)
			}
		}
		e.EntryID = m.s.id()
		m.s.entries[e.EntryID] = e
	}
	return nil
}

func (m *mockStudyPlanRepo) ListByStudent(_ context.Context, studentID uint, from, to time.Time) ([]model.StudyPlanEntry, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	lo, hi := from.Format(time.DateOnly), to.Format(time.DateOnly)
	var out []model.StudyPlanEntry
	for _, e := range m.s.entries {
		d := e.Date().Format(time.DateOnly)
		if e.StudentID != studentID || d < lo || d > hi {
			continue
		}
		if t, ok := m.s.topics[e.TopicID]; ok {
			e.Topic = &t
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := out[i].Date(), out[j].Date()
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].EntryID < out[j].EntryID
	})
	return out, nil
}

// ── Mock TxManager ──

type mockTxManager struct{ s *memStore }

func (m *mockTxManager) WithStudentLock(ctx context.Context, studentID uint, fn func(ctx context.Context, repos repository.TxRepositories) error) error {
	m.s.mu.Lock()
	_, ok := m.s.students[studentID]
	m.s.mu.Unlock()
	if !ok {
		return gorm.ErrRecordNotFound
	}

	snap := m.s.snapshot()
	err := fn(ctx, repository.TxRepositories{
		StudySlot:     &mockStudySlotRepo{m.s},
		TopicProgress: &mockTopicProgressRepo{m.s},
		StudyPlan:     &mockStudyPlanRepo{m.s},
	})
	if err != nil {
		m.s.restore(snap)
	}
	return err
}
