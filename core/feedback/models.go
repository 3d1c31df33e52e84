package feedback

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/campusvoice/backend/core"
)

// Statuses. SetStatus deliberately accepts any non-empty label; these are the
// ones the lifecycle itself produces.
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
)

// Placeholder identity shown to admins in place of a masked or missing author.
const (
	AnonymousName   = "Anonymous"
	UnknownUserName = "Unknown User"
)

type (
	// Comment is a single reply in a feedback thread. Immutable once appended.
	Comment struct {
		AuthorID  string    `json:"author_id"`
		Content   string    `json:"content"`
		CreatedAt time.Time `json:"created_at"` // UTC
	}

	// ResolutionLog records a resolution decision.
	// Reserved: persisted and serialized, but no operation populates it yet.
	ResolutionLog struct {
		AdminID    string    `json:"admin_id"`
		Note       string    `json:"note"`
		ResolvedAt time.Time `json:"resolved_at"` // UTC
	}

	Feedback struct {
		ID            string         `json:"id"`
		StudentID     string         `json:"student_id"`
		IsAnonymous   bool           `json:"is_anonymous"`
		Content       string         `json:"content"`
		Rating        int            `json:"rating"` // 1-5 stars
		Category      string         `json:"category"`
		Status        string         `json:"status"`
		CreatedAt     time.Time      `json:"created_at"` // UTC
		Thread        []Comment      `json:"thread"`     // append-only, insertion order
		ResolutionLog *ResolutionLog `json:"resolution_log,omitempty"`
	}

	// AdminView is a Feedback projected through the anonymity mask for
	// administrative listings.
	AdminView struct {
		Feedback
		StudentName  string `json:"student_name"`
		StudentEmail string `json:"student_email"`
	}

	// Count is one grouped-count aggregation bucket.
	Count struct {
		Label string `json:"label"`
		Count int64  `json:"count"`
	}
)

// NewFeedback contains information needed to submit a new Feedback.
type NewFeedback struct {
	Content     string `json:"content" validate:"required"`
	Rating      int    `json:"rating" validate:"required,min=1,max=5"`
	Category    string `json:"category" validate:"required"`
	IsAnonymous bool   `json:"is_anonymous"`
}

func (nf *NewFeedback) Validate(validate *validator.Validate) error {
	nf.Content = core.CleanString(nf.Content)
	nf.Category = core.CleanString(nf.Category)
	return validate.Struct(nf)
}

// StatusUpdate sets a feedback's status.
type StatusUpdate struct {
	Status string `json:"status" validate:"required"`
}

func (su *StatusUpdate) Validate(validate *validator.Validate) error {
	su.Status = core.CleanString(su.Status)
	return validate.Struct(su)
}

// Reply appends a comment to a feedback thread.
type Reply struct {
	Content string `json:"content" validate:"required"`
}

func (r *Reply) Validate(validate *validator.Validate) error {
	r.Content = core.CleanString(r.Content)
	return validate.Struct(r)
}
