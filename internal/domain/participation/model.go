package participation

import (
	"cmp"
	"errors"
	"strings"
)

// Domain errors
var (
	ErrDuplicate       = errors.New("student already participating in this activity")
	ErrNotFound        = errors.New("participation not found")
	ErrUnknownStudent  = errors.New("student not found")
	ErrUnknownActivity = errors.New("activity not found")
	ErrInvalidID       = errors.New("ids must be positive integers")
)

// Participation links one student to one activity. At most one row exists
// per (StudentID, ActivityID) pair.
type Participation struct {
	ID         int64 `json:"id"`
	StudentID  int64 `json:"studentId"`
	ActivityID int64 `json:"activityId"`
}

// Participant is a student registered for an activity, with the id of the
// participation row that links them.
type Participant struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	ParticipationID int64  `json:"participationId"`
}

// Validate checks the referenced ids.
// PRE: Participation struct is populated
// POST: Returns nil if both ids are positive
func (p *Participation) Validate() error {
	if p.StudentID <= 0 || p.ActivityID <= 0 {
		return ErrInvalidID
	}
	return nil
}

// SamePair reports whether both rows link the same student and activity.
func (p Participation) SamePair(studentID, activityID int64) bool {
	return p.StudentID == studentID && p.ActivityID == activityID
}

// CompareByName orders participants by name (byte-wise, case-sensitive),
// ties by participation id. Matches SQLite's BINARY collation.
func CompareByName(a, b Participant) int {
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return cmp.Compare(a.ParticipationID, b.ParticipationID)
}
