// Package contact contiene los DTOs de /contact y /admin/contact.
package contact

import "github.com/dropDatabas3/consultdesk/internal/domain/repository"

// SubmitRequest es el body de POST /contact.
type SubmitRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type SubmitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      string `json:"id"`
}

type ListResponse struct {
	Messages []repository.ContactMessage `json:"messages"`
	Total    int                         `json:"total"`
	Limit    int                         `json:"limit"`
	Offset   int                         `json:"offset"`
}

type DetailResponse struct {
	Message repository.ContactMessage `json:"message"`
	Replies []repository.ContactReply `json:"replies"`
}

// UpdateRequest es el body de PUT /admin/contact/{id}.
type UpdateRequest struct {
	Status     *string `json:"status"`
	Priority   *string `json:"priority"`
	AssignedTo *string `json:"assigned_to"`
}

type UpdateResponse struct {
	Success bool                       `json:"success"`
	Message *repository.ContactMessage `json:"message"`
}

// ReplyRequest es el body de POST /admin/contact/{id}/reply.
type ReplyRequest struct {
	ReplyText string `json:"reply_text"`
}

type ReplyResponse struct {
	Success bool                     `json:"success"`
	Reply   *repository.ContactReply `json:"reply"`
	Message string                   `json:"message"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}
