package model

import (
	"strings"
	"time"
)

type FormStatus string

const (
	FormDraft     FormStatus = "draft"
	FormPublished FormStatus = "published"
)

func (s FormStatus) Valid() bool {
	return s == FormDraft || s == FormPublished
}

// Form is a recruitment form as served by the API, with the owning society's
// display metadata joined in.
type Form struct {
	ID               int        `json:"form_id"`
	SocietyID        int        `json:"society_id"`
	Title            string     `json:"title"`
	Status           FormStatus `json:"status"`
	Version          int        `json:"version"`
	CreatedAt        time.Time  `json:"created_at"`
	PublishedAt      *time.Time `json:"published_at"`
	SocietyName      string     `json:"society_name,omitempty"`
	Category         string     `json:"category,omitempty"`
	LogoURL          string     `json:"logo_url,omitempty"`
	ApplicationCount int        `json:"application_count"`
	Questions        []Question `json:"questions,omitempty"`
}

// Question is the published form of a field. Options travel as a single
// comma-joined string.
type Question struct {
	ID          int    `json:"question_id"`
	FormID      int    `json:"form_id,omitempty"`
	Name        string `json:"name,omitempty"`
	Text        string `json:"question_text"`
	Type        string `json:"question_type"`
	Placeholder string `json:"placeholder,omitempty"`
	Options     string `json:"options"`
	IsRequired  bool   `json:"is_required"`
	OrderIndex  int    `json:"order_index"`
}

// OptionList splits Options on commas, trimming blanks away.
func (q Question) OptionList() []string {
	if strings.TrimSpace(q.Options) == "" {
		return nil
	}
	parts := strings.Split(q.Options, ",")
	opts := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			opts = append(opts, p)
		}
	}
	return opts
}

// JoinOptions is the inverse of OptionList.
func JoinOptions(opts []string) string {
	return strings.Join(opts, ",")
}
