package database

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/mbolis/recruit/model"
)

type SocietyFilter struct {
	Category      string
	AdmissionOpen *bool
}

const societyColumns = `
	s.society_id, s.society_name, s.tagline, s.description, s.category,
	s.logo_url, s.member_count, s.admission_open, s.admission_deadline,
	s.society_head_id, u.user_name, u.user_email, s.created_at`

func scanSociety(row interface{ Scan(...any) error }) (s model.Society, err error) {
	var (
		deadline  sql.NullTime
		headID    sql.NullInt64
		headName  sql.NullString
		headEmail sql.NullString
	)
	err = row.Scan(
		&s.ID, &s.Name, &s.Tagline, &s.Description, &s.Category,
		&s.LogoURL, &s.MemberCount, &s.AdmissionOpen, &deadline,
		&headID, &headName, &headEmail, &s.CreatedAt,
	)
	if deadline.Valid {
		s.AdmissionDeadline = &deadline.Time
	}
	if headID.Valid {
		id := int(headID.Int64)
		s.HeadID = &id
	}
	s.HeadName = headName.String
	s.HeadEmail = headEmail.String
	return
}

// ListSocieties pages through societies alphabetically.
func ListSocieties(ctx context.Context, q Querier, f SocietyFilter, page, perPage int) ([]model.Society, model.Pagination, error) {
	var conds []string
	var args []any
	if f.Category != "" {
		conds = append(conds, "s.category = ?")
		args = append(args, f.Category)
	}
	if f.AdmissionOpen != nil {
		conds = append(conds, "s.admission_open = ?")
		args = append(args, *f.AdmissionOpen)
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM society s `+where, args...).Scan(&total)
	if err != nil {
		return nil, model.Pagination{}, wrap(err, "count societies")
	}
	p := model.NewPagination(page, perPage, total)

	rows, err := q.QueryContext(ctx, `
		SELECT `+societyColumns+`
		FROM society s
		LEFT OUTER JOIN user u ON (u.user_id = s.society_head_id)
		`+where+`
		ORDER BY s.society_name
		LIMIT ? OFFSET ?`,
		append(args, p.PerPage, p.Offset())...,
	)
	if err != nil {
		return nil, p, wrap(err, "list societies")
	}
	defer rows.Close()

	societies := []model.Society{}
	for rows.Next() {
		s, err := scanSociety(rows)
		if err != nil {
			return nil, p, wrap(err, "list societies.scan")
		}
		societies = append(societies, s)
	}
	return societies, p, wrap(rows.Err(), "list societies.rows")
}

func SocietyByID(ctx context.Context, q Querier, id int) (model.Society, error) {
	s, err := scanSociety(q.QueryRowContext(ctx, `
		SELECT `+societyColumns+`
		FROM society s
		LEFT OUTER JOIN user u ON (u.user_id = s.society_head_id)
		WHERE s.society_id = ?`,
		id,
	))
	return s, wrap(err, "get society")
}

// SocietyByHead returns the society led by the given user.
func SocietyByHead(ctx context.Context, q Querier, headID int) (model.Society, error) {
	s, err := scanSociety(q.QueryRowContext(ctx, `
		SELECT `+societyColumns+`
		FROM society s
		LEFT OUTER JOIN user u ON (u.user_id = s.society_head_id)
		WHERE s.society_head_id = ?`,
		headID,
	))
	return s, wrap(err, "get society by head")
}

func CreateSociety(ctx context.Context, q Querier, s model.Society) (model.Society, error) {
	s.CreatedAt = time.Now().UTC()
	err := q.QueryRowContext(ctx, `
		INSERT INTO society (
			society_name, tagline, description, category, logo_url,
			member_count, admission_open, admission_deadline,
			society_head_id, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING society_id`,
		s.Name, s.Tagline, s.Description, s.Category, s.LogoURL,
		s.MemberCount, s.AdmissionOpen, s.AdmissionDeadline,
		s.HeadID, s.CreatedAt,
	).Scan(&s.ID)
	return s, wrap(err, "insert society")
}

// UpdateSociety overwrites the profile fields of s. The head is not changed.
func UpdateSociety(ctx context.Context, q Querier, s model.Society) error {
	res, err := q.ExecContext(ctx, `
		UPDATE society
		SET
			society_name = ?,
			tagline = ?,
			description = ?,
			category = ?,
			logo_url = ?,
			member_count = ?,
			admission_open = ?,
			admission_deadline = ?
		WHERE society_id = ?`,
		s.Name, s.Tagline, s.Description, s.Category, s.LogoURL,
		s.MemberCount, s.AdmissionOpen, s.AdmissionDeadline,
		s.ID,
	)
	return affected(res, err, "update society")
}

// SetAdmissionOpen opens or closes admissions for a society.
func SetAdmissionOpen(ctx context.Context, q Querier, id int, open bool) error {
	res, err := q.ExecContext(ctx, `
		UPDATE society SET admission_open = ? WHERE society_id = ?`,
		open,
		id,
	)
	return affected(res, err, "update society admission")
}

// affected turns a zero-row update or delete into ErrNotFound.
func affected(res sql.Result, err error, op string) error {
	if err != nil {
		return wrap(err, op)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap(err, op+".verify")
	}
	if n < 1 {
		return wrap(sql.ErrNoRows, op)
	}
	return nil
}
