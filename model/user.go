package model

import "time"

type Role string

const (
	RoleStudent     Role = "student"
	RoleSocietyHead Role = "societyHead"
	RoleAdmin       Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleSocietyHead, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID        int       `json:"user_id"`
	Name      string    `json:"user_name"`
	Email     string    `json:"user_email"`
	Role      Role      `json:"user_role"`
	CreatedAt time.Time `json:"created_at"`
}

type Society struct {
	ID                int        `json:"society_id"`
	Name              string     `json:"society_name"`
	Tagline           string     `json:"tagline"`
	Description       string     `json:"description"`
	Category          string     `json:"category"`
	LogoURL           string     `json:"logo_url"`
	MemberCount       int        `json:"member_count"`
	AdmissionOpen     bool       `json:"admission_open"`
	AdmissionDeadline *time.Time `json:"admission_deadline"`
	HeadID            *int       `json:"society_head_id"`
	HeadName          string     `json:"head_name,omitempty"`
	HeadEmail         string     `json:"head_email,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Categories accepted for a society, keyed by their stored value.
var Categories = map[string]string{
	"technical":      "Technical",
	"cultural":       "Cultural",
	"sports":         "Sports",
	"literary":       "Literary",
	"social_service": "Social Service",
	"other":          "Other",
}
