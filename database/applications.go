package database

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/mbolis/recruit/model"
)

// ApplicationFilter selects applications for listing. Zero fields match all.
type ApplicationFilter struct {
	UserID    int
	SocietyID int
	FormID    int
	Status    model.Status
}

func (f ApplicationFilter) where() (string, []any) {
	var conds []string
	var args []any
	if f.UserID != 0 {
		conds = append(conds, "a.user_id = ?")
		args = append(args, f.UserID)
	}
	if f.SocietyID != 0 {
		conds = append(conds, "a.society_id = ?")
		args = append(args, f.SocietyID)
	}
	if f.FormID != 0 {
		conds = append(conds, "a.form_id = ?")
		args = append(args, f.FormID)
	}
	if f.Status != "" {
		conds = append(conds, "a.status = ?")
		args = append(args, f.Status)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

const applicationColumns = `
	a.application_id, a.user_id, a.society_id, a.form_id, a.status, a.submitted_at,
	u.user_name, u.user_email, s.society_name, s.logo_url, f.title`

const applicationJoins = `
	FROM application a
	INNER JOIN user u ON (u.user_id = a.user_id)
	INNER JOIN society s ON (s.society_id = a.society_id)
	INNER JOIN form f ON (f.form_id = a.form_id)`

func scanApplication(row interface{ Scan(...any) error }) (a model.Application, err error) {
	err = row.Scan(
		&a.ID, &a.UserID, &a.SocietyID, &a.FormID, &a.Status, &a.SubmittedAt,
		&a.UserName, &a.UserEmail, &a.SocietyName, &a.LogoURL, &a.FormTitle,
	)
	return
}

// CreateApplication stores a pending application with its responses, one row
// per question id. A second application by the same user to the same form
// yields ErrConflict. It should run inside a transaction.
func CreateApplication(ctx context.Context, q Querier, a model.Application, responses model.Responses) (model.Application, error) {
	a.Status = model.StatusPending
	a.SubmittedAt = time.Now().UTC()
	err := q.QueryRowContext(ctx, `
		INSERT INTO application (user_id, society_id, form_id, status, submitted_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING application_id`,
		a.UserID,
		a.SocietyID,
		a.FormID,
		a.Status,
		a.SubmittedAt,
	).Scan(&a.ID)
	if err != nil {
		return a, wrap(err, "insert application")
	}

	ids := make([]int, 0, len(responses))
	for id := range responses {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		_, err = q.ExecContext(ctx, `
			INSERT INTO response (application_id, question_id, response_text)
			VALUES (?, ?, ?)`,
			a.ID,
			id,
			responses[id],
		)
		if err != nil {
			return a, wrap(err, "insert application.responses")
		}
	}
	return a, nil
}

// ListApplications pages through the applications matching f, newest first.
func ListApplications(ctx context.Context, q Querier, f ApplicationFilter, page, perPage int) ([]model.Application, model.Pagination, error) {
	where, args := f.where()

	var total int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM application a `+where, args...).Scan(&total)
	if err != nil {
		return nil, model.Pagination{}, wrap(err, "count applications")
	}
	p := model.NewPagination(page, perPage, total)

	rows, err := q.QueryContext(ctx, `
		SELECT `+applicationColumns+applicationJoins+`
		`+where+`
		ORDER BY a.submitted_at DESC, a.application_id DESC
		LIMIT ? OFFSET ?`,
		append(args, p.PerPage, p.Offset())...,
	)
	if err != nil {
		return nil, p, wrap(err, "list applications")
	}
	defer rows.Close()

	apps := []model.Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, p, wrap(err, "list applications.scan")
		}
		apps = append(apps, a)
	}
	return apps, p, wrap(rows.Err(), "list applications.rows")
}

// ApplicationByID returns an application with its answers joined to the
// question text, in question order.
func ApplicationByID(ctx context.Context, q Querier, id int) (model.Application, error) {
	a, err := scanApplication(q.QueryRowContext(ctx, `
		SELECT `+applicationColumns+applicationJoins+`
		WHERE a.application_id = ?`,
		id,
	))
	if err != nil {
		return a, wrap(err, "get application")
	}

	rows, err := q.QueryContext(ctx, `
		SELECT q.question_id, q.question_text, q.question_type, r.response_text
		FROM response r
		INNER JOIN question q ON (q.question_id = r.question_id)
		WHERE r.application_id = ?
		ORDER BY q.order_index, q.question_id`,
		id,
	)
	if err != nil {
		return a, wrap(err, "get application.responses")
	}
	defer rows.Close()

	a.Answers = []model.Answer{}
	for rows.Next() {
		ans := model.Answer{}
		err = rows.Scan(&ans.QuestionID, &ans.QuestionText, &ans.QuestionType, &ans.Value)
		if err != nil {
			return a, wrap(err, "get application.responses.scan")
		}
		a.Answers = append(a.Answers, ans)
	}
	return a, wrap(rows.Err(), "get application.responses.rows")
}

func UpdateApplicationStatus(ctx context.Context, q Querier, id int, status model.Status) error {
	res, err := q.ExecContext(ctx, `
		UPDATE application SET status = ? WHERE application_id = ?`,
		status,
		id,
	)
	return affected(res, err, "update application status")
}

// SocietyStatistics counts a society's applications by status.
func SocietyStatistics(ctx context.Context, q Querier, societyID int) (model.Statistics, error) {
	var st model.Statistics
	err := q.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(status = 'pending'), 0),
			COALESCE(SUM(status = 'shortlisted'), 0),
			COALESCE(SUM(status = 'accepted'), 0),
			COALESCE(SUM(status = 'rejected'), 0)
		FROM application
		WHERE society_id = ?`,
		societyID,
	).Scan(&st.Total, &st.Pending, &st.Shortlisted, &st.Accepted, &st.Rejected)
	return st, wrap(err, "get statistics")
}

// Dashboard gathers the admin overview counters.
func Dashboard(ctx context.Context, q Querier) (model.DashboardStats, error) {
	var st model.DashboardStats
	err := q.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM user),
			(SELECT COUNT(*) FROM user WHERE user_role = 'student'),
			(SELECT COUNT(*) FROM society),
			(SELECT COUNT(*) FROM form WHERE status = 'published'),
			(SELECT COUNT(*) FROM application),
			(SELECT COUNT(*) FROM application WHERE status = 'pending')`,
	).Scan(
		&st.TotalUsers, &st.TotalStudents, &st.TotalSocieties,
		&st.PublishedForms, &st.TotalApplications, &st.PendingReviews,
	)
	return st, wrap(err, "get dashboard stats")
}
