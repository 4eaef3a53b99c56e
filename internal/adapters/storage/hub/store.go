// Package hub is the data layer for students, activities and participation.
//
// Two backends implement Store: SQLiteStore (persistent) and MemoryStore
// (process-local fallback). Open picks one at startup. Both backends enforce
// the same invariants:
//   - at most one participation row per (student, activity) pair; the
//     check and the insert are one atomic step
//   - participant counts and stats are computed per call, never cached
//   - activity dates are YYYY-MM-DD, so lexical and date order agree
package hub

import (
	"context"
	"errors"
	"fmt"

	"activityhub/internal/domain/activity"
	"activityhub/internal/domain/participation"
	"activityhub/internal/domain/student"
)

// Backend names the physical store in use.
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendMemory Backend = "memory"
)

var (
	// ErrStoreUnavailable means the relational backend could not be opened.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrBackend wraps driver-level failures on the relational path.
	ErrBackend = errors.New("backend error")
)

// Stats holds collection cardinalities at call time.
type Stats struct {
	TotalStudents       int `json:"totalStudents"`
	TotalActivities     int `json:"totalActivities"`
	TotalParticipations int `json:"totalParticipations"`
}

// Store is the backend-agnostic data layer.
type Store interface {
	// ListStudents returns every student without passwords, by id.
	ListStudents(ctx context.Context) ([]student.Summary, error)
	// GetStudent returns one student.
	// Fails with participation.ErrUnknownStudent when absent.
	GetStudent(ctx context.Context, id int64) (student.Student, error)
	// ListActivities returns every activity by id.
	ListActivities(ctx context.Context) ([]activity.Activity, error)
	// GetActivity returns one activity.
	// Fails with participation.ErrUnknownActivity when absent.
	GetActivity(ctx context.Context, id int64) (activity.Activity, error)
	// ListActivitiesWithParticipantCounts returns every activity with its
	// participation count, newest date first (ties by id descending).
	ListActivitiesWithParticipantCounts(ctx context.Context) ([]activity.WithCount, error)
	// ListParticipants returns students registered for activityID, by name
	// (case-sensitive), ties by participation id. Unknown activity -> empty.
	ListParticipants(ctx context.Context, activityID int64) ([]participation.Participant, error)
	// CreateActivity validates and stores a new activity, assigning its id.
	// Fails with activity.ErrInvalidInput.
	CreateActivity(ctx context.Context, a activity.Activity) (activity.Activity, error)
	// CreateParticipation registers a student for an activity. Fails with
	// participation.ErrDuplicate, ErrUnknownStudent or ErrUnknownActivity.
	CreateParticipation(ctx context.Context, studentID, activityID int64) (participation.Participation, error)
	// DeleteParticipation removes one row. Fails with participation.ErrNotFound.
	DeleteParticipation(ctx context.Context, id int64) error
	// Stats counts each collection.
	Stats(ctx context.Context) (Stats, error)
	// Backend reports which implementation is active.
	Backend() Backend
	// Close releases backend resources.
	Close() error
}

// backendErr tags a driver failure with ErrBackend and the operation name.
func backendErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrBackend, err)
}

// checkPair validates ids before any backend access.
func checkPair(studentID, activityID int64) error {
	p := participation.Participation{StudentID: studentID, ActivityID: activityID}
	return p.Validate()
}
