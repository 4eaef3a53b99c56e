package hub

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"activityhub/internal/adapters/storage"
	"activityhub/internal/adapters/storage/seed"
	"activityhub/internal/domain/activity"
	"activityhub/internal/domain/participation"
	"activityhub/internal/domain/student"
)

// SQLiteStore implements Store on a relational database. The pool is
// limited to one connection, so statements and transactions are serialized.
type SQLiteStore struct {
	db     storage.SQLDB
	closer func() error
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a store over an initialized database.
// PRE: storage.InitDB has run on db
// POST: Returns a store; closer (may be nil) runs on Close
func NewSQLiteStore(db storage.SQLDB, closer func() error) *SQLiteStore {
	return &SQLiteStore{db: db, closer: closer}
}

// Backend implements Store.
func (s *SQLiteStore) Backend() Backend { return BackendSQLite }

// Close implements Store.
func (s *SQLiteStore) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// Seed inserts fixtures into empty tables. Students and activities are
// checked independently, so an existing roster is never duplicated.
// PRE: fixtures have been validated
// POST: Returns the number of students and activities inserted
func (s *SQLiteStore) Seed(ctx context.Context, fixtures seed.Fixtures) (int, int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, backendErr("seed", err)
	}
	defer tx.Rollback()

	var students, activities int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM students").Scan(&students); err != nil {
		return 0, 0, backendErr("seed", err)
	}
	insertedStudents := 0
	if students == 0 {
		for _, st := range fixtures.Students {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO students (name, email, password) VALUES (?, ?, ?)",
				st.Name, st.Email, st.Password); err != nil {
				return 0, 0, backendErr("seed students", err)
			}
			insertedStudents++
		}
	}

	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM activities").Scan(&activities); err != nil {
		return 0, 0, backendErr("seed", err)
	}
	insertedActivities := 0
	if activities == 0 {
		for _, a := range fixtures.Activities {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO activities (name, type, subcategory, date) VALUES (?, ?, ?, ?)",
				a.Name, a.Type, a.Subcategory, a.Date); err != nil {
				return 0, 0, backendErr("seed activities", err)
			}
			insertedActivities++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, backendErr("seed", err)
	}
	return insertedStudents, insertedActivities, nil
}

// ListStudents implements Store.
func (s *SQLiteStore) ListStudents(ctx context.Context) ([]student.Summary, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, email FROM students ORDER BY id")
	if err != nil {
		return nil, backendErr("list students", err)
	}
	defer rows.Close()

	results := []student.Summary{}
	for rows.Next() {
		var sum student.Summary
		var name, email sql.NullString
		if err := rows.Scan(&sum.ID, &name, &email); err != nil {
			return nil, backendErr("list students", err)
		}
		sum.Name, sum.Email = name.String, email.String
		results = append(results, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, backendErr("list students", err)
	}
	return results, nil
}

// GetStudent implements Store.
func (s *SQLiteStore) GetStudent(ctx context.Context, id int64) (student.Student, error) {
	var st student.Student
	var name, email, password sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT id, name, email, password FROM students WHERE id = ?", id).
		Scan(&st.ID, &name, &email, &password)
	if errors.Is(err, sql.ErrNoRows) {
		return student.Student{}, participation.ErrUnknownStudent
	}
	if err != nil {
		return student.Student{}, backendErr("get student", err)
	}
	st.Name, st.Email, st.Password = name.String, email.String, password.String
	return st, nil
}

// ListActivities implements Store.
func (s *SQLiteStore) ListActivities(ctx context.Context) ([]activity.Activity, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, type, subcategory, date FROM activities ORDER BY id")
	if err != nil {
		return nil, backendErr("list activities", err)
	}
	defer rows.Close()

	results := []activity.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, backendErr("list activities", err)
		}
		results = append(results, a)
	}
	if err := rows.Err(); err != nil {
		return nil, backendErr("list activities", err)
	}
	return results, nil
}

// GetActivity implements Store.
func (s *SQLiteStore) GetActivity(ctx context.Context, id int64) (activity.Activity, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, name, type, subcategory, date FROM activities WHERE id = ?", id)
	a, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return activity.Activity{}, participation.ErrUnknownActivity
	}
	if err != nil {
		return activity.Activity{}, backendErr("get activity", err)
	}
	return a, nil
}

// ListActivitiesWithParticipantCounts implements Store.
func (s *SQLiteStore) ListActivitiesWithParticipantCounts(ctx context.Context) ([]activity.WithCount, error) {
	query := `
		SELECT a.id, a.name, a.type, a.subcategory, a.date, COUNT(p.id) AS participantCount
		FROM activities a
		LEFT JOIN participation p ON a.id = p.activityId
		GROUP BY a.id, a.name, a.type, a.subcategory, a.date
		ORDER BY a.date DESC, a.id DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, backendErr("list activity counts", err)
	}
	defer rows.Close()

	results := []activity.WithCount{}
	for rows.Next() {
		var wc activity.WithCount
		var name, typ, sub, date sql.NullString
		if err := rows.Scan(&wc.ID, &name, &typ, &sub, &date, &wc.ParticipantCount); err != nil {
			return nil, backendErr("list activity counts", err)
		}
		wc.Name, wc.Type, wc.Subcategory, wc.Date = name.String, typ.String, sub.String, date.String
		results = append(results, wc)
	}
	if err := rows.Err(); err != nil {
		return nil, backendErr("list activity counts", err)
	}
	return results, nil
}

// ListParticipants implements Store.
func (s *SQLiteStore) ListParticipants(ctx context.Context, activityID int64) ([]participation.Participant, error) {
	query := `
		SELECT s.id, s.name, s.email, p.id AS participationId
		FROM students s
		JOIN participation p ON s.id = p.studentId
		WHERE p.activityId = ?
		ORDER BY s.name COLLATE BINARY, p.id`

	rows, err := s.db.QueryContext(ctx, query, activityID)
	if err != nil {
		return nil, backendErr("list participants", err)
	}
	defer rows.Close()

	results := []participation.Participant{}
	for rows.Next() {
		var p participation.Participant
		var name, email sql.NullString
		if err := rows.Scan(&p.ID, &name, &email, &p.ParticipationID); err != nil {
			return nil, backendErr("list participants", err)
		}
		p.Name, p.Email = name.String, email.String
		results = append(results, p)
	}
	if err := rows.Err(); err != nil {
		return nil, backendErr("list participants", err)
	}
	return results, nil
}

// CreateActivity implements Store.
func (s *SQLiteStore) CreateActivity(ctx context.Context, a activity.Activity) (activity.Activity, error) {
	a.Normalize()
	if err := a.Validate(); err != nil {
		return activity.Activity{}, err
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO activities (name, type, subcategory, date) VALUES (?, ?, ?, ?)",
		a.Name, a.Type, a.Subcategory, a.Date)
	if err != nil {
		return activity.Activity{}, backendErr("create activity", err)
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return activity.Activity{}, backendErr("create activity", err)
	}
	return a, nil
}

// CreateParticipation implements Store. The existence checks, the duplicate
// check and the insert run in one transaction; the unique index on
// (studentId, activityId) backs the check if another writer slips in.
func (s *SQLiteStore) CreateParticipation(ctx context.Context, studentID, activityID int64) (participation.Participation, error) {
	if err := checkPair(studentID, activityID); err != nil {
		return participation.Participation{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return participation.Participation{}, backendErr("create participation", err)
	}
	defer tx.Rollback()

	var found int64
	if err := tx.QueryRowContext(ctx, "SELECT id FROM students WHERE id = ?", studentID).Scan(&found); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return participation.Participation{}, participation.ErrUnknownStudent
		}
		return participation.Participation{}, backendErr("create participation", err)
	}
	if err := tx.QueryRowContext(ctx, "SELECT id FROM activities WHERE id = ?", activityID).Scan(&found); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return participation.Participation{}, participation.ErrUnknownActivity
		}
		return participation.Participation{}, backendErr("create participation", err)
	}

	err = tx.QueryRowContext(ctx,
		"SELECT id FROM participation WHERE studentId = ? AND activityId = ?",
		studentID, activityID).Scan(&found)
	switch {
	case err == nil:
		return participation.Participation{}, participation.ErrDuplicate
	case !errors.Is(err, sql.ErrNoRows):
		return participation.Participation{}, backendErr("create participation", err)
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO participation (studentId, activityId) VALUES (?, ?)",
		studentID, activityID)
	if err != nil {
		if isUniqueViolation(err) {
			return participation.Participation{}, participation.ErrDuplicate
		}
		return participation.Participation{}, backendErr("create participation", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return participation.Participation{}, backendErr("create participation", err)
	}
	if err := tx.Commit(); err != nil {
		return participation.Participation{}, backendErr("create participation", err)
	}

	return participation.Participation{ID: id, StudentID: studentID, ActivityID: activityID}, nil
}

// DeleteParticipation implements Store.
func (s *SQLiteStore) DeleteParticipation(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM participation WHERE id = ?", id)
	if err != nil {
		return backendErr("delete participation", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return backendErr("delete participation", err)
	}
	if n == 0 {
		return participation.ErrNotFound
	}
	return nil
}

// Stats implements Store. One statement, so the three counts come from the
// same snapshot.
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM students),
			(SELECT COUNT(*) FROM activities),
			(SELECT COUNT(*) FROM participation)`).
		Scan(&st.TotalStudents, &st.TotalActivities, &st.TotalParticipations)
	if err != nil {
		return Stats{}, backendErr("stats", err)
	}
	return st, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanActivity(row scanner) (activity.Activity, error) {
	var a activity.Activity
	var name, typ, sub, date sql.NullString
	if err := row.Scan(&a.ID, &name, &typ, &sub, &date); err != nil {
		return activity.Activity{}, err
	}
	a.Name, a.Type, a.Subcategory, a.Date = name.String, typ.String, sub.String, date.String
	return a, nil
}

// isUniqueViolation matches the constraint message shared by the modernc
// and mattn drivers.
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
