package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/mbolis/recruit/model"
)

// ErrFormHasApplications is returned when replacing the questions of a form
// that applicants have already answered.
var ErrFormHasApplications = errors.Wrap(ErrConflict, "form already has applications")

const formColumns = `
	f.form_id, f.society_id, f.title, f.status, f.version,
	f.created_at, f.published_at,
	s.society_name, s.category, s.logo_url,
	(SELECT COUNT(*) FROM application a WHERE a.form_id = f.form_id)`

func scanForm(row interface{ Scan(...any) error }) (f model.Form, err error) {
	var publishedAt sql.NullTime
	err = row.Scan(
		&f.ID, &f.SocietyID, &f.Title, &f.Status, &f.Version,
		&f.CreatedAt, &publishedAt,
		&f.SocietyName, &f.Category, &f.LogoURL,
		&f.ApplicationCount,
	)
	if publishedAt.Valid {
		f.PublishedAt = &publishedAt.Time
	}
	return
}

// ListPublishedForms pages through published forms, most recent first.
func ListPublishedForms(ctx context.Context, q Querier, page, perPage int) ([]model.Form, model.Pagination, error) {
	var total int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM form WHERE status = 'published'`,
	).Scan(&total)
	if err != nil {
		return nil, model.Pagination{}, wrap(err, "count forms")
	}
	p := model.NewPagination(page, perPage, total)

	forms, err := queryForms(ctx, q, `
		SELECT `+formColumns+`
		FROM form f
		INNER JOIN society s ON (s.society_id = f.society_id)
		WHERE f.status = 'published'
		ORDER BY f.published_at DESC, f.form_id DESC
		LIMIT ? OFFSET ?`,
		p.PerPage, p.Offset(),
	)
	return forms, p, wrap(err, "list published forms")
}

// FormsBySociety lists every form of a society, drafts included.
func FormsBySociety(ctx context.Context, q Querier, societyID int) ([]model.Form, error) {
	forms, err := queryForms(ctx, q, `
		SELECT `+formColumns+`
		FROM form f
		INNER JOIN society s ON (s.society_id = f.society_id)
		WHERE f.society_id = ?
		ORDER BY f.created_at DESC, f.form_id DESC`,
		societyID,
	)
	return forms, wrap(err, "list society forms")
}

func queryForms(ctx context.Context, q Querier, query string, args ...any) ([]model.Form, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	forms := []model.Form{}
	for rows.Next() {
		f, err := scanForm(rows)
		if err != nil {
			return nil, err
		}
		forms = append(forms, f)
	}
	return forms, rows.Err()
}

// FormByID returns a form, whatever its status, with its ordered questions.
func FormByID(ctx context.Context, q Querier, id int) (model.Form, error) {
	f, err := scanForm(q.QueryRowContext(ctx, `
		SELECT `+formColumns+`
		FROM form f
		INNER JOIN society s ON (s.society_id = f.society_id)
		WHERE f.form_id = ?`,
		id,
	))
	if err != nil {
		return f, wrap(err, "get form")
	}

	f.Questions, err = Questions(ctx, q, id)
	return f, err
}

// Questions lists the questions of a form in display order.
func Questions(ctx context.Context, q Querier, formID int) ([]model.Question, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT
			question_id, form_id, name, question_text, question_type,
			placeholder, options, is_required, order_index
		FROM question
		WHERE form_id = ?
		ORDER BY order_index, question_id`,
		formID,
	)
	if err != nil {
		return nil, wrap(err, "get questions")
	}
	defer rows.Close()

	questions := []model.Question{}
	for rows.Next() {
		qu := model.Question{}
		var opts string
		err = rows.Scan(
			&qu.ID, &qu.FormID, &qu.Name, &qu.Text, &qu.Type,
			&qu.Placeholder, &opts, &qu.IsRequired, &qu.OrderIndex,
		)
		if err != nil {
			return nil, wrap(err, "get questions.scan")
		}

		if opts != "" {
			var list []string
			err = json.Unmarshal([]byte(opts), &list)
			if err != nil {
				return nil, wrap(err, "get questions.parse_options")
			}
			qu.Options = model.JoinOptions(list)
		}

		questions = append(questions, qu)
	}
	return questions, wrap(rows.Err(), "get questions.rows")
}

// CreateForm inserts f and its questions. The returned form carries the
// assigned form and question ids.
func CreateForm(ctx context.Context, q Querier, f model.Form) (model.Form, error) {
	if f.Status == "" {
		f.Status = model.FormDraft
	}
	f.Version = 1
	f.CreatedAt = time.Now().UTC()
	if f.Status == model.FormPublished {
		f.PublishedAt = &f.CreatedAt
	}

	err := q.QueryRowContext(ctx, `
		INSERT INTO form (society_id, title, status, version, created_at, published_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING form_id`,
		f.SocietyID,
		f.Title,
		f.Status,
		f.Version,
		f.CreatedAt,
		f.PublishedAt,
	).Scan(&f.ID)
	if err != nil {
		return f, wrap(err, "insert form")
	}

	f.Questions, err = insertQuestions(ctx, q, f.ID, f.Questions)
	return f, err
}

func insertQuestions(ctx context.Context, q Querier, formID int, questions []model.Question) ([]model.Question, error) {
	out := make([]model.Question, len(questions))
	for i, qu := range questions {
		var optionsJson []byte
		if opts := qu.OptionList(); opts != nil {
			var err error
			optionsJson, err = json.Marshal(opts)
			if err != nil {
				return nil, wrap(err, "insert questions.encode_options")
			}
		}

		qu.FormID = formID
		qu.OrderIndex = i
		err := q.QueryRowContext(ctx, `
			INSERT INTO question (
				form_id, name, question_text, question_type,
				placeholder, options, is_required, order_index
			)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING question_id`,
			formID, qu.Name, qu.Text, qu.Type,
			qu.Placeholder, string(optionsJson), qu.IsRequired, qu.OrderIndex,
		).Scan(&qu.ID)
		if err != nil {
			return nil, wrap(err, "insert questions")
		}
		out[i] = qu
	}
	return out, nil
}

// FormUpdate carries a partial update. Nil fields are left untouched.
type FormUpdate struct {
	ID        int
	Version   int
	Title     *string
	Status    *model.FormStatus
	Questions []model.Question
}

// UpdateForm applies u if the stored version still matches u.Version, bumping
// the version. Questions can only be replaced while no application exists.
// It should run inside a transaction.
func UpdateForm(ctx context.Context, q Querier, u FormUpdate) (version int, err error) {
	var (
		current     model.Form
		publishedAt sql.NullTime
	)
	err = q.QueryRowContext(ctx, `
		SELECT title, status, version, published_at FROM form WHERE form_id = ?`,
		u.ID,
	).Scan(&current.Title, &current.Status, &current.Version, &publishedAt)
	if err != nil {
		return 0, wrap(err, "update form.get")
	}
	if current.Version != u.Version {
		return 0, errors.Wrap(ErrConflict, "update form: stale version")
	}

	title, status := current.Title, current.Status
	if u.Title != nil {
		title = *u.Title
	}
	if u.Status != nil {
		status = *u.Status
	}
	if status == model.FormPublished && !publishedAt.Valid {
		publishedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
	}

	if u.Questions != nil {
		var n int
		err = q.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM application WHERE form_id = ?`,
			u.ID,
		).Scan(&n)
		if err != nil {
			return 0, wrap(err, "update form.count_applications")
		}
		if n > 0 {
			return 0, ErrFormHasApplications
		}

		// delete all questions
		_, err = q.ExecContext(ctx, `DELETE FROM question WHERE form_id = ?`, u.ID)
		if err != nil {
			return 0, wrap(err, "update form.delete_questions")
		}
		// recreate all questions
		_, err = insertQuestions(ctx, q, u.ID, u.Questions)
		if err != nil {
			return 0, err
		}
	}

	res, err := q.ExecContext(ctx, `
		UPDATE form
		SET
			title = ?,
			status = ?,
			published_at = ?,
			version = version+1
		WHERE form_id = ?
			AND version = ?`,
		title,
		status,
		publishedAt,
		u.ID,
		u.Version,
	)
	if err != nil {
		return 0, wrap(err, "update form")
	}
	// optimistic lock
	n, err := res.RowsAffected()
	if err != nil {
		return 0, wrap(err, "update form.verify")
	}
	if n < 1 {
		return 0, errors.Wrap(ErrConflict, "update form: stale version")
	}
	return u.Version + 1, nil
}

// DeleteForm removes a form together with its questions and applications.
func DeleteForm(ctx context.Context, q Querier, id int) error {
	res, err := q.ExecContext(ctx, `DELETE FROM form WHERE form_id = ?`, id)
	return affected(res, err, "delete form")
}
