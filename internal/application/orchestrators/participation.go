package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"activityhub/internal/adapters/email"
	"activityhub/internal/domain/activity"
	"activityhub/internal/domain/participation"
	"activityhub/internal/domain/student"
)

// noticeTimeout bounds one confirmation send.
const noticeTimeout = 10 * time.Second

// ParticipationStore defines the store interface needed by the participation orchestrators.
type ParticipationStore interface {
	GetStudent(ctx context.Context, id int64) (student.Student, error)
	GetActivity(ctx context.Context, id int64) (activity.Activity, error)
	CreateParticipation(ctx context.Context, studentID, activityID int64) (participation.Participation, error)
	DeleteParticipation(ctx context.Context, id int64) error
}

// RecordParticipationInput carries input for the record participation orchestrator.
type RecordParticipationInput struct {
	StudentID  int64
	ActivityID int64
}

// RecordParticipationDeps holds dependencies for RecordParticipation.
type RecordParticipationDeps struct {
	Store  ParticipationStore
	Sender email.Sender // nil disables confirmation notices
	From   string
	// Dispatch runs the notice send. nil runs it inline; the server passes
	// a goroutine launcher so the response does not wait on the provider.
	Dispatch func(func())
}

// ExecuteRecordParticipation registers a student for an activity and sends
// a best-effort confirmation notice.
// PRE: none
// POST: Returns the new participation, or participation.ErrDuplicate,
// ErrUnknownStudent, ErrUnknownActivity, ErrInvalidID
// INVARIANT: a failed notice never changes the result
func ExecuteRecordParticipation(ctx context.Context, input RecordParticipationInput, deps RecordParticipationDeps) (participation.Participation, error) {
	p, err := deps.Store.CreateParticipation(ctx, input.StudentID, input.ActivityID)
	if err != nil {
		slog.Info("participation_event", "event", "rejected",
			"student_id", input.StudentID, "activity_id", input.ActivityID, "error", err)
		return participation.Participation{}, err
	}
	slog.Info("participation_event", "event", "recorded",
		"participation_id", p.ID, "student_id", p.StudentID, "activity_id", p.ActivityID)

	if deps.Sender != nil {
		dispatch := deps.Dispatch
		if dispatch == nil {
			dispatch = func(f func()) { f() }
		}
		noticeCtx := context.WithoutCancel(ctx)
		dispatch(func() { sendJoinNotice(noticeCtx, p, deps) })
	}
	return p, nil
}

func sendJoinNotice(ctx context.Context, p participation.Participation, deps RecordParticipationDeps) {
	ctx, cancel := context.WithTimeout(ctx, noticeTimeout)
	defer cancel()

	st, err := deps.Store.GetStudent(ctx, p.StudentID)
	if err != nil {
		slog.Warn("join_notice_skipped", "participation_id", p.ID, "error", err)
		return
	}
	act, err := deps.Store.GetActivity(ctx, p.ActivityID)
	if err != nil {
		slog.Warn("join_notice_skipped", "participation_id", p.ID, "error", err)
		return
	}

	msg, err := RenderJoinNotice(st, act)
	if err != nil {
		slog.Error("join_notice_render_failed", "participation_id", p.ID, "error", err)
		return
	}
	msg.From = deps.From

	if _, err := deps.Sender.Send(ctx, msg); err != nil {
		slog.Warn("join_notice_failed", "participation_id", p.ID, "to", st.Email, "error", err)
		return
	}
	slog.Info("join_notice_sent", "participation_id", p.ID, "to", st.Email)
}

// RemoveParticipationInput carries input for the remove participation orchestrator.
type RemoveParticipationInput struct {
	ParticipationID int64
}

// RemoveParticipationDeps holds dependencies for RemoveParticipation.
type RemoveParticipationDeps struct {
	Store ParticipationStore
}

// ExecuteRemoveParticipation deletes one participation row.
// PRE: none
// POST: The row is gone, or participation.ErrNotFound / ErrInvalidID
func ExecuteRemoveParticipation(ctx context.Context, input RemoveParticipationInput, deps RemoveParticipationDeps) error {
	if input.ParticipationID <= 0 {
		return participation.ErrInvalidID
	}
	if err := deps.Store.DeleteParticipation(ctx, input.ParticipationID); err != nil {
		return err
	}
	slog.Info("participation_event", "event", "removed", "participation_id", input.ParticipationID)
	return nil
}
