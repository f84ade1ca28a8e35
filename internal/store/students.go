package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/raphaelgruber/sayar/internal/models"
)

const studentColumns = `id, name, roll_number, grade, parent_contact, notes, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStudent(row rowScanner) (models.Student, error) {
	var (
		st            models.Student
		parentContact sql.NullString
		notes         sql.NullString
		createdAt     int64
	)
	if err := row.Scan(&st.ID, &st.Name, &st.RollNumber, &st.Grade, &parentContact, &notes, &createdAt); err != nil {
		return models.Student{}, err
	}
	if parentContact.Valid {
		st.ParentContact = &parentContact.String
	}
	if notes.Valid {
		st.Notes = &notes.String
	}
	st.CreatedAt = fromMillis(createdAt)
	return st, nil
}

func nullable(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

// normalizeStudent puts text fields into NFC so that names typed with
// different Myanmar code point orderings compare equal.
func normalizeStudent(st models.Student) models.Student {
	st.Name = norm.NFC.String(strings.TrimSpace(st.Name))
	st.RollNumber = strings.TrimSpace(st.RollNumber)
	st.Grade = norm.NFC.String(strings.TrimSpace(st.Grade))
	return st
}

func validateStudent(st models.Student) error {
	if strings.TrimSpace(st.ID) == "" {
		return fmt.Errorf("%w: student id is required", ErrInvalid)
	}
	if strings.TrimSpace(st.Name) == "" {
		return fmt.Errorf("%w: student name is required", ErrInvalid)
	}
	if strings.TrimSpace(st.RollNumber) == "" {
		return fmt.Errorf("%w: roll number is required", ErrInvalid)
	}
	if strings.TrimSpace(st.Grade) == "" {
		return fmt.Errorf("%w: grade is required", ErrInvalid)
	}
	return nil
}

func (s *Store) queryStudents(ctx context.Context, query string, args ...any) (_ []models.Student, err error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	defer func(start time.Time) { s.timed(start, err) }(time.Now())

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query students: %w", err)
	}
	defer rows.Close()

	var students []models.Student
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate students: %w", err)
	}
	return students, nil
}

// ListStudents returns all students ordered by grade and roll number.
func (s *Store) ListStudents(ctx context.Context) ([]models.Student, error) {
	return s.queryStudents(ctx, `SELECT `+studentColumns+` FROM students ORDER BY grade, roll_number`)
}

// ListStudentsByGrade returns the students of one grade ordered by roll number.
func (s *Store) ListStudentsByGrade(ctx context.Context, grade string) ([]models.Student, error) {
	return s.queryStudents(ctx, `SELECT `+studentColumns+` FROM students WHERE grade = ? ORDER BY roll_number`,
		norm.NFC.String(strings.TrimSpace(grade)))
}

// SearchStudents matches query as a substring of the name or roll number.
func (s *Store) SearchStudents(ctx context.Context, query string) ([]models.Student, error) {
	pattern := "%" + escapeLike(norm.NFC.String(strings.TrimSpace(query))) + "%"
	return s.queryStudents(ctx, `SELECT `+studentColumns+` FROM students
WHERE name LIKE ? ESCAPE '\' OR roll_number LIKE ? ESCAPE '\'
ORDER BY grade, roll_number`, pattern, pattern)
}

func escapeLike(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(v)
}

// GetStudent fetches a student by ID.
func (s *Store) GetStudent(ctx context.Context, id string) (models.Student, error) {
	if err := s.check(ctx); err != nil {
		return models.Student{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+studentColumns+` FROM students WHERE id = ?`, id)
	st, err := scanStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Student{}, ErrNotFound
	}
	if err != nil {
		return models.Student{}, fmt.Errorf("get student: %w", err)
	}
	return st, nil
}

// PutStudent inserts a student or replaces the one with the same ID.
func (s *Store) PutStudent(ctx context.Context, st models.Student) (err error) {
	if err := s.check(ctx); err != nil {
		return err
	}
	st = normalizeStudent(st)
	if err := validateStudent(st); err != nil {
		return err
	}
	defer func(start time.Time) { s.timed(start, err) }(time.Now())

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO students (`+studentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	roll_number = excluded.roll_number,
	grade = excluded.grade,
	parent_contact = excluded.parent_contact,
	notes = excluded.notes
`,
		st.ID, st.Name, st.RollNumber, st.Grade,
		nullable(st.ParentContact), nullable(st.Notes), toMillis(st.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put student: %w", err)
	}
	return nil
}

// UpdateStudent overwrites an existing student. Returns ErrNotFound when absent.
func (s *Store) UpdateStudent(ctx context.Context, st models.Student) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	st = normalizeStudent(st)
	if err := validateStudent(st); err != nil {
		return err
	}
	res, err := s.sqlDB.ExecContext(ctx, `
UPDATE students SET name = ?, roll_number = ?, grade = ?, parent_contact = ?, notes = ?
WHERE id = ?`,
		st.Name, st.RollNumber, st.Grade, nullable(st.ParentContact), nullable(st.Notes), st.ID,
	)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return requireAffected(res)
}

// DeleteStudent removes a student. Returns ErrNotFound when absent.
func (s *Store) DeleteStudent(ctx context.Context, id string) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM students WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return requireAffected(res)
}

// DeleteAllStudents removes every student and returns how many were deleted.
func (s *Store) DeleteAllStudents(ctx context.Context) (int64, error) {
	if err := s.check(ctx); err != nil {
		return 0, err
	}
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM students`)
	if err != nil {
		return 0, fmt.Errorf("delete students: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
