package model

import "time"

type Status string

const (
	StatusPending     Status = "pending"
	StatusShortlisted Status = "shortlisted"
	StatusAccepted    Status = "accepted"
	StatusRejected    Status = "rejected"
)

var Statuses = []Status{StatusPending, StatusShortlisted, StatusAccepted, StatusRejected}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Responses maps question ids to the applicant's answer.
type Responses map[int]string

type Application struct {
	ID          int       `json:"application_id"`
	UserID      int       `json:"user_id"`
	SocietyID   int       `json:"society_id"`
	FormID      int       `json:"form_id"`
	Status      Status    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
	UserName    string    `json:"user_name,omitempty"`
	UserEmail   string    `json:"user_email,omitempty"`
	SocietyName string    `json:"society_name,omitempty"`
	LogoURL     string    `json:"logo_url,omitempty"`
	FormTitle   string    `json:"form_title,omitempty"`
	Answers     []Answer  `json:"responses,omitempty"`
}

// Answer is one stored response joined with its question, for review pages.
type Answer struct {
	QuestionID   int    `json:"question_id"`
	QuestionText string `json:"question_text"`
	QuestionType string `json:"question_type"`
	Value        string `json:"response_text"`
}

type Statistics struct {
	Total       int `json:"total"`
	Pending     int `json:"pending"`
	Shortlisted int `json:"shortlisted"`
	Accepted    int `json:"accepted"`
	Rejected    int `json:"rejected"`
}

type DashboardStats struct {
	TotalUsers        int `json:"total_users"`
	TotalStudents     int `json:"total_students"`
	TotalSocieties    int `json:"total_societies"`
	PublishedForms    int `json:"published_forms"`
	TotalApplications int `json:"total_applications"`
	PendingReviews    int `json:"pending_applications"`
}

type Pagination struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
	Pages   int `json:"pages"`
}

func NewPagination(page, perPage, total int) Pagination {
	p := Pagination{Page: page, PerPage: perPage, Total: total}
	if perPage > 0 {
		p.Pages = (total + perPage - 1) / perPage
	}
	return p
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}
