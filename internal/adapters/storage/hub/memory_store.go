package hub

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"activityhub/internal/adapters/storage/seed"
	"activityhub/internal/domain/activity"
	"activityhub/internal/domain/participation"
	"activityhub/internal/domain/student"
)

// MemoryStore keeps all collections in process memory. Nothing survives a
// restart. A single RWMutex guards the collections; ids come from per-store
// atomic counters and are never reused after a delete.
type MemoryStore struct {
	mu            sync.RWMutex
	students      []student.Student
	activities    []activity.Activity
	participation []participation.Participation

	nextStudentID       atomic.Int64
	nextActivityID      atomic.Int64
	nextParticipationID atomic.Int64
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore builds a store preloaded with fixtures. Fixture ids are
// assigned sequentially from 1.
// PRE: fixtures have been validated
// POST: Returns a ready store
func NewMemoryStore(fixtures seed.Fixtures) *MemoryStore {
	m := &MemoryStore{}
	for _, s := range fixtures.Students {
		s.ID = m.nextStudentID.Add(1)
		m.students = append(m.students, s)
	}
	for _, a := range fixtures.Activities {
		a.ID = m.nextActivityID.Add(1)
		m.activities = append(m.activities, a)
	}
	return m
}

// Backend implements Store.
func (m *MemoryStore) Backend() Backend { return BackendMemory }

// Close implements Store.
func (m *MemoryStore) Close() error { return nil }

// ListStudents implements Store.
func (m *MemoryStore) ListStudents(_ context.Context) ([]student.Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]student.Summary, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, s.Summary())
	}
	return out, nil
}

// GetStudent implements Store.
func (m *MemoryStore) GetStudent(_ context.Context, id int64) (student.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.studentLocked(id)
}

// ListActivities implements Store.
func (m *MemoryStore) ListActivities(_ context.Context) ([]activity.Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]activity.Activity, len(m.activities))
	copy(out, m.activities)
	return out, nil
}

// GetActivity implements Store.
func (m *MemoryStore) GetActivity(_ context.Context, id int64) (activity.Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activityLocked(id)
}

// ListActivitiesWithParticipantCounts implements Store.
func (m *MemoryStore) ListActivitiesWithParticipantCounts(_ context.Context) ([]activity.WithCount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[int64]int, len(m.activities))
	for _, p := range m.participation {
		counts[p.ActivityID]++
	}
	out := make([]activity.WithCount, 0, len(m.activities))
	for _, a := range m.activities {
		out = append(out, activity.WithCount{Activity: a, ParticipantCount: counts[a.ID]})
	}
	slices.SortFunc(out, activity.CompareNewestFirst)
	return out, nil
}

// ListParticipants implements Store.
func (m *MemoryStore) ListParticipants(_ context.Context, activityID int64) ([]participation.Participant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []participation.Participant{}
	for _, p := range m.participation {
		if p.ActivityID != activityID {
			continue
		}
		s, err := m.studentLocked(p.StudentID)
		if err != nil {
			continue
		}
		out = append(out, participation.Participant{
			ID:              s.ID,
			Name:            s.Name,
			Email:           s.Email,
			ParticipationID: p.ID,
		})
	}
	slices.SortFunc(out, participation.CompareByName)
	return out, nil
}

// CreateActivity implements Store.
func (m *MemoryStore) CreateActivity(_ context.Context, a activity.Activity) (activity.Activity, error) {
	a.Normalize()
	if err := a.Validate(); err != nil {
		return activity.Activity{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = m.nextActivityID.Add(1)
	m.activities = append(m.activities, a)
	return a, nil
}

// CreateParticipation implements Store. Existence checks, the duplicate
// check and the insert all happen under one write lock.
func (m *MemoryStore) CreateParticipation(_ context.Context, studentID, activityID int64) (participation.Participation, error) {
	if err := checkPair(studentID, activityID); err != nil {
		return participation.Participation{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.studentLocked(studentID); err != nil {
		return participation.Participation{}, err
	}
	if _, err := m.activityLocked(activityID); err != nil {
		return participation.Participation{}, err
	}
	for _, p := range m.participation {
		if p.SamePair(studentID, activityID) {
			return participation.Participation{}, participation.ErrDuplicate
		}
	}

	p := participation.Participation{
		ID:         m.nextParticipationID.Add(1),
		StudentID:  studentID,
		ActivityID: activityID,
	}
	m.participation = append(m.participation, p)
	return p, nil
}

// DeleteParticipation implements Store.
func (m *MemoryStore) DeleteParticipation(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := slices.IndexFunc(m.participation, func(p participation.Participation) bool { return p.ID == id })
	if idx == -1 {
		return participation.ErrNotFound
	}
	m.participation = slices.Delete(m.participation, idx, idx+1)
	return nil
}

// Stats implements Store.
func (m *MemoryStore) Stats(_ context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{
		TotalStudents:       len(m.students),
		TotalActivities:     len(m.activities),
		TotalParticipations: len(m.participation),
	}, nil
}

func (m *MemoryStore) studentLocked(id int64) (student.Student, error) {
	for _, s := range m.students {
		if s.ID == id {
			return s, nil
		}
	}
	return student.Student{}, participation.ErrUnknownStudent
}

func (m *MemoryStore) activityLocked(id int64) (activity.Activity, error) {
	for _, a := range m.activities {
		if a.ID == id {
			return a, nil
		}
	}
	return activity.Activity{}, participation.ErrUnknownActivity
}
