package database

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/mbolis/recruit/model"
)

// CreateUser stores u with a bcrypt hash of password. The returned user carries
// the assigned id; a duplicate email yields ErrConflict.
func CreateUser(ctx context.Context, q Querier, u model.User, password string) (model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return u, errors.Wrap(err, "hash password")
	}

	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.CreatedAt = time.Now().UTC()
	err = q.QueryRowContext(ctx, `
		INSERT INTO user (user_name, user_email, password_hash, user_role, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING user_id`,
		u.Name,
		u.Email,
		string(hash),
		u.Role,
		u.CreatedAt,
	).Scan(&u.ID)
	return u, wrap(err, "insert user")
}

const userColumns = `u.user_id, u.user_name, u.user_email, u.user_role, u.created_at`

func scanUser(row interface{ Scan(...any) error }) (u model.User, err error) {
	err = row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt)
	return
}

func UserByID(ctx context.Context, q Querier, id int) (model.User, error) {
	u, err := scanUser(q.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM user u
		WHERE u.user_id = ?`,
		id,
	))
	return u, wrap(err, "get user")
}

func UserByEmail(ctx context.Context, q Querier, email string) (model.User, error) {
	u, err := scanUser(q.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM user u
		WHERE u.user_email = ?`,
		strings.ToLower(strings.TrimSpace(email)),
	))
	return u, wrap(err, "get user by email")
}

// CheckPassword returns nil only if email belongs to a user whose password
// matches.
func CheckPassword(ctx context.Context, q Querier, email, password string) error {
	var hash string
	err := q.QueryRowContext(ctx, `
		SELECT password_hash FROM user WHERE user_email = ?`,
		strings.ToLower(strings.TrimSpace(email)),
	).Scan(&hash)
	if err != nil {
		return wrap(err, "get password hash")
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// ListUsers pages through users, newest first, optionally restricted to role.
func ListUsers(ctx context.Context, q Querier, role model.Role, page, perPage int) ([]model.User, model.Pagination, error) {
	where, args := "", []any{}
	if role != "" {
		where = "WHERE u.user_role = ?"
		args = append(args, role)
	}

	var total int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM user u `+where, args...).Scan(&total)
	if err != nil {
		return nil, model.Pagination{}, wrap(err, "count users")
	}
	p := model.NewPagination(page, perPage, total)

	rows, err := q.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM user u
		`+where+`
		ORDER BY u.created_at DESC, u.user_id DESC
		LIMIT ? OFFSET ?`,
		append(args, p.PerPage, p.Offset())...,
	)
	if err != nil {
		return nil, p, wrap(err, "list users")
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, p, wrap(err, "list users.scan")
		}
		users = append(users, u)
	}
	return users, p, wrap(rows.Err(), "list users.rows")
}
