package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/raphaelgruber/sayar/internal/metrics"
	"github.com/raphaelgruber/sayar/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sayar.db"), metrics.NewCollector())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func ptr(s string) *string { return &s }

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ", nil)
	require.Error(t, err)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sayar.db")
	s, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.PutStudent(context.Background(), models.NewStudent("Aung", "1", "Grade 5")))
	require.NoError(t, s.Close())

	s, err = Open(path, nil)
	require.NoError(t, err)
	defer s.Close()
	students, err := s.ListStudents(context.Background())
	require.NoError(t, err)
	assert.Len(t, students, 1)
}

func TestStudentsCRUD(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	created := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	st := models.NewStudent("Mya Mya", "12", "Grade 6")
	st.CreatedAt = created
	st.ParentContact = ptr("09-123456")
	require.NoError(t, s.PutStudent(ctx, st))

	got, err := s.GetStudent(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mya Mya", got.Name)
	require.NotNil(t, got.ParentContact)
	assert.Equal(t, "09-123456", *got.ParentContact)
	assert.Nil(t, got.Notes)
	assert.True(t, created.Equal(got.CreatedAt))

	got.Notes = ptr("Good at maths")
	got.Grade = "Grade 7"
	require.NoError(t, s.UpdateStudent(ctx, got))

	got, err = s.GetStudent(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grade 7", got.Grade)
	require.NotNil(t, got.Notes)

	require.NoError(t, s.DeleteStudent(ctx, st.ID))
	_, err = s.GetStudent(ctx, st.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteStudent(ctx, st.ID), ErrNotFound)
}

func TestUpdateMissingStudent(t *testing.T) {
	s := openTestStore(t)
	err := s.UpdateStudent(context.Background(), models.NewStudent("Ghost", "99", "Grade 1"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPutStudentValidation(t *testing.T) {
	s := openTestStore(t)
	err := s.PutStudent(context.Background(), models.Student{ID: "x", Name: "", RollNumber: "1", Grade: "1"})
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "name is required")
}

func TestListAndSearchStudents(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	for _, st := range []models.Student{
		models.NewStudent("Kyaw Kyaw", "2", "Grade 5"),
		models.NewStudent("Aye Aye", "1", "Grade 5"),
		models.NewStudent("Zaw Min", "1", "Grade 4"),
		models.NewStudent("Hla 100%", "3", "Grade 5"),
	} {
		require.NoError(t, s.PutStudent(ctx, st))
	}

	all, err := s.ListStudents(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "Zaw Min", all[0].Name)
	assert.Equal(t, "Aye Aye", all[1].Name)
	assert.Equal(t, "Kyaw Kyaw", all[2].Name)

	grade5, err := s.ListStudentsByGrade(ctx, "Grade 5")
	require.NoError(t, err)
	assert.Len(t, grade5, 3)

	found, err := s.SearchStudents(ctx, "kyaw")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Kyaw Kyaw", found[0].Name)

	byRoll, err := s.SearchStudents(ctx, "1")
	require.NoError(t, err)
	assert.Len(t, byRoll, 3)

	literal, err := s.SearchStudents(ctx, "%")
	require.NoError(t, err)
	require.Len(t, literal, 1)
	assert.Equal(t, "Hla 100%", literal[0].Name)

	n, err := s.DeleteAllStudents(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestStudentTextIsNormalized(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	st := models.NewStudent(" Rene\u0301 ", "7", "Grade 6")
	require.NoError(t, s.PutStudent(ctx, st))

	got, err := s.GetStudent(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ren\u00e9", got.Name)

	found, err := s.SearchStudents(ctx, "Ren\u00e9")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = s.SearchStudents(ctx, "Rene\u0301")
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestKeyValue(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.GetValue(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SetValue(ctx, "drive.folders.a@example.com", []byte(`{"a":1}`)))
	require.NoError(t, s.SetValue(ctx, "drive.folders.b@example.com", []byte(`{"b":2}`)))
	require.NoError(t, s.SetValue(ctx, "auth.user", []byte(`{}`)))
	require.NoError(t, s.SetValue(ctx, "drive.folders.a@example.com", []byte(`{"a":3}`)))

	v, err := s.GetValue(ctx, "drive.folders.a@example.com")
	require.NoError(t, err)
	assert.Equal(t, `{"a":3}`, string(v))

	require.NoError(t, s.DeleteValue(ctx, "drive.folders.b@example.com"))
	require.NoError(t, s.DeleteValue(ctx, "drive.folders.b@example.com"))

	n, err := s.DeletePrefix(ctx, "drive.folders.")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = s.GetValue(ctx, "auth.user")
	assert.NoError(t, err)
}

func TestCanceledContext(t *testing.T) {
	s := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.ListStudents(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUpMigration(t *testing.T) {
	assert.Equal(t, "\nCREATE x;\n", upMigration("-- +migrate Up\nCREATE x;\n-- +migrate Down\nDROP x;"))
	assert.Equal(t, "plain", upMigration("plain"))
}
