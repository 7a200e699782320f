package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/mbolis/recruit/formschema"
	"github.com/mbolis/recruit/log"
	"github.com/mbolis/recruit/model"
)

type seedUser struct {
	user     model.User
	password string
}

var seedUsers = []seedUser{
	{model.User{Name: "Administrator", Email: "admin@college.edu", Role: model.RoleAdmin}, "admin123"},
	{model.User{Name: "Tara Head", Email: "tech.head@college.edu", Role: model.RoleSocietyHead}, "head123"},
	{model.User{Name: "Dev Head", Email: "drama.head@college.edu", Role: model.RoleSocietyHead}, "head123"},
	{model.User{Name: "Sam Student", Email: "student@college.edu", Role: model.RoleStudent}, "student123"},
}

var techSchema = formschema.Schema{
	{Type: formschema.Text, Label: "What is your full name?", Required: true},
	{Type: formschema.Email, Label: "What is your email address?", Required: true},
	{Type: formschema.Select, Label: "Which year are you currently in?", Required: true,
		Options: []string{"First Year", "Second Year", "Third Year", "Fourth Year"}},
	{Type: formschema.Textarea, Label: "What programming languages are you proficient in?", Required: true},
	{Type: formschema.Textarea, Label: "Why do you want to join the Tech Club?", Required: true},
	{Type: formschema.Checkbox, Label: "Which domains interest you?",
		Options: []string{"AI/ML", "Web Dev", "App Dev", "Competitive Programming"}},
}

// Seed fills an empty database with demo users, two societies and one
// published form. It reports whether anything was inserted.
func Seed(ctx context.Context, db *sql.DB) (seeded bool, err error) {
	var n int
	err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user`).Scan(&n)
	if err != nil {
		return false, wrap(err, "seed.count_users")
	}
	if n > 0 {
		log.Debug("db.seed: database not empty, skipping")
		return false, nil
	}

	err = InTx(ctx, db, func(tx *sql.Tx) error {
		users := make([]model.User, len(seedUsers))
		for i, su := range seedUsers {
			u, err := CreateUser(ctx, tx, su.user, su.password)
			if err != nil {
				return err
			}
			users[i] = u
		}

		deadline := time.Now().UTC().AddDate(0, 1, 0)
		tech, err := CreateSociety(ctx, tx, model.Society{
			Name:              "Tech Club",
			Tagline:           "Build, break, learn",
			Description:       "Workshops, hackathons and project teams for every skill level.",
			Category:          "technical",
			MemberCount:       120,
			AdmissionOpen:     true,
			AdmissionDeadline: &deadline,
			HeadID:            &users[1].ID,
		})
		if err != nil {
			return err
		}
		_, err = CreateSociety(ctx, tx, model.Society{
			Name:        "Drama Society",
			Tagline:     "All the campus is a stage",
			Description: "Street plays, stage productions and improv nights.",
			Category:    "cultural",
			MemberCount: 45,
			HeadID:      &users[2].ID,
		})
		if err != nil {
			return err
		}

		_, err = CreateForm(ctx, tx, model.Form{
			SocietyID: tech.ID,
			Title:     "Tech Club Recruitment",
			Status:    model.FormPublished,
			Questions: techSchema.Normalize().Questions(),
		})
		return err
	})
	if err != nil {
		return false, errors.Wrap(err, "seed")
	}

	log.Infof("db.seed: inserted %d users, 2 societies, 1 form", len(seedUsers))
	return true, nil
}
