package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/recruit/model"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seededDB(t *testing.T) *sql.DB {
	t.Helper()
	db := openTestDB(t)
	seeded, err := Seed(context.Background(), db)
	require.NoError(t, err)
	require.True(t, seeded)
	return db
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.sqlite")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM form`).Scan(&n))
	assert.Zero(t, n)
}

func TestSeedOnlyOnce(t *testing.T) {
	db := seededDB(t)

	seeded, err := Seed(context.Background(), db)
	require.NoError(t, err)
	assert.False(t, seeded)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	u, err := CreateUser(ctx, db, model.User{Name: "Ann", Email: " Ann@College.edu ", Role: model.RoleStudent}, "secret1")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, "ann@college.edu", u.Email)

	_, err = CreateUser(ctx, db, model.User{Name: "Ann 2", Email: "ann@college.edu", Role: model.RoleStudent}, "secret2")
	assert.True(t, IsConflict(err), "got %v", err)

	assert.NoError(t, CheckPassword(ctx, db, "ANN@college.edu", "secret1"))
	assert.Error(t, CheckPassword(ctx, db, "ann@college.edu", "wrong"))
	assert.True(t, IsNotFound(CheckPassword(ctx, db, "nobody@college.edu", "x")))

	got, err := UserByEmail(ctx, db, "ann@college.edu")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = UserByID(ctx, db, 999)
	assert.True(t, IsNotFound(err))
}

func TestListUsersByRole(t *testing.T) {
	db := seededDB(t)

	users, p, err := ListUsers(context.Background(), db, model.RoleSocietyHead, 1, 1)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, model.Pagination{Page: 1, PerPage: 1, Total: 2, Pages: 2}, p)
}

func TestSocieties(t *testing.T) {
	ctx := context.Background()
	db := seededDB(t)

	open := true
	list, p, err := ListSocieties(ctx, db, SocietyFilter{AdmissionOpen: &open}, 1, 12)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, p.Total)
	assert.Equal(t, "Tech Club", list[0].Name)
	assert.Equal(t, "tech.head@college.edu", list[0].HeadEmail)
	require.NotNil(t, list[0].AdmissionDeadline)

	list, _, err = ListSocieties(ctx, db, SocietyFilter{Category: "cultural"}, 1, 12)
	require.NoError(t, err)
	require.Len(t, list, 1)
	drama := list[0]

	head, err := UserByEmail(ctx, db, "drama.head@college.edu")
	require.NoError(t, err)
	mine, err := SocietyByHead(ctx, db, head.ID)
	require.NoError(t, err)
	assert.Equal(t, drama.ID, mine.ID)

	require.NoError(t, SetAdmissionOpen(ctx, db, drama.ID, true))
	got, err := SocietyByID(ctx, db, drama.ID)
	require.NoError(t, err)
	assert.True(t, got.AdmissionOpen)

	assert.True(t, IsNotFound(SetAdmissionOpen(ctx, db, 999, true)))
}

func techForm(t *testing.T, db *sql.DB) model.Form {
	t.Helper()
	forms, _, err := ListPublishedForms(context.Background(), db, 1, 10)
	require.NoError(t, err)
	require.Len(t, forms, 1)
	f, err := FormByID(context.Background(), db, forms[0].ID)
	require.NoError(t, err)
	return f
}

func TestFormsRoundTrip(t *testing.T) {
	db := seededDB(t)
	f := techForm(t, db)

	assert.Equal(t, "Tech Club Recruitment", f.Title)
	assert.Equal(t, "Tech Club", f.SocietyName)
	assert.NotNil(t, f.PublishedAt)
	require.Len(t, f.Questions, 6)
	assert.Equal(t, "what_is_your_full_name", f.Questions[0].Name)
	assert.Equal(t, "select", f.Questions[2].Type)
	assert.Equal(t, "First Year,Second Year,Third Year,Fourth Year", f.Questions[2].Options)
	assert.Empty(t, f.Questions[0].Options)
	for i, q := range f.Questions {
		assert.Equal(t, i, q.OrderIndex)
	}
}

func TestDraftsAreNotListed(t *testing.T) {
	ctx := context.Background()
	db := seededDB(t)
	f := techForm(t, db)

	draft, err := CreateForm(ctx, db, model.Form{SocietyID: f.SocietyID, Title: "Later"})
	require.NoError(t, err)
	assert.Equal(t, model.FormDraft, draft.Status)
	assert.Nil(t, draft.PublishedAt)

	forms, p, err := ListPublishedForms(ctx, db, 1, 10)
	require.NoError(t, err)
	assert.Len(t, forms, 1)
	assert.Equal(t, 1, p.Total)

	all, err := FormsBySociety(ctx, db, f.SocietyID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateFormOptimisticLock(t *testing.T) {
	ctx := context.Background()
	db := seededDB(t)
	f := techForm(t, db)

	title := "Tech Club Recruitment 2"
	version, err := UpdateForm(ctx, db, FormUpdate{ID: f.ID, Version: f.Version, Title: &title})
	require.NoError(t, err)
	assert.Equal(t, f.Version+1, version)

	_, err = UpdateForm(ctx, db, FormUpdate{ID: f.ID, Version: f.Version, Title: &title})
	assert.True(t, IsConflict(err))

	_, err = UpdateForm(ctx, db, FormUpdate{ID: 999, Version: 1})
	assert.True(t, IsNotFound(err))

	questions := []model.Question{{Name: "why", Text: "Why?", Type: "textarea", IsRequired: true}}
	version, err = UpdateForm(ctx, db, FormUpdate{ID: f.ID, Version: version, Questions: questions})
	require.NoError(t, err)

	got, err := FormByID(ctx, db, f.ID)
	require.NoError(t, err)
	assert.Equal(t, version, got.Version)
	assert.Equal(t, title, got.Title)
	require.Len(t, got.Questions, 1)
	assert.Equal(t, "Why?", got.Questions[0].Text)
}

func TestApplications(t *testing.T) {
	ctx := context.Background()
	db := seededDB(t)
	f := techForm(t, db)
	student, err := UserByEmail(ctx, db, "student@college.edu")
	require.NoError(t, err)

	responses := model.Responses{}
	for _, q := range f.Questions {
		responses[q.ID] = "answer " + q.Name
	}
	a, err := CreateApplication(ctx, db, model.Application{UserID: student.ID, SocietyID: f.SocietyID, FormID: f.ID}, responses)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, a.Status)

	_, err = CreateApplication(ctx, db, model.Application{UserID: student.ID, SocietyID: f.SocietyID, FormID: f.ID}, nil)
	assert.True(t, IsConflict(err))

	got, err := ApplicationByID(ctx, db, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sam Student", got.UserName)
	assert.Equal(t, "Tech Club Recruitment", got.FormTitle)
	require.Len(t, got.Answers, len(f.Questions))
	assert.Equal(t, f.Questions[0].Text, got.Answers[0].QuestionText)
	assert.Equal(t, "answer what_is_your_full_name", got.Answers[0].Value)

	_, err = UpdateForm(ctx, db, FormUpdate{ID: f.ID, Version: f.Version, Questions: []model.Question{}})
	assert.ErrorIs(t, err, ErrFormHasApplications)

	require.NoError(t, UpdateApplicationStatus(ctx, db, a.ID, model.StatusShortlisted))

	mine, p, err := ListApplications(ctx, db, ApplicationFilter{UserID: student.ID}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Total)
	assert.Equal(t, model.StatusShortlisted, mine[0].Status)

	none, _, err := ListApplications(ctx, db, ApplicationFilter{SocietyID: f.SocietyID, Status: model.StatusPending}, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, none)

	st, err := SocietyStatistics(ctx, db, f.SocietyID)
	require.NoError(t, err)
	assert.Equal(t, model.Statistics{Total: 1, Shortlisted: 1}, st)

	dash, err := Dashboard(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, model.DashboardStats{
		TotalUsers:        4,
		TotalStudents:     1,
		TotalSocieties:    2,
		PublishedForms:    1,
		TotalApplications: 1,
	}, dash)

	require.NoError(t, DeleteForm(ctx, db, f.ID))
	_, err = ApplicationByID(ctx, db, a.ID)
	assert.True(t, IsNotFound(err))
}
