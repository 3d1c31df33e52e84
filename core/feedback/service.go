package feedback

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/campusvoice/backend/core"
	"github.com/campusvoice/backend/core/user"
)

var (
	// errors
	ErrNotFound = errors.New("feedback not found")
)

type (
	// Repository is the feedback store contract.
	Repository interface {
		CreateFeedback(ctx context.Context, fb Feedback) (Feedback, error)
		GetFeedbackByID(ctx context.Context, id string) (Feedback, error)
		QueryFeedbackByStudent(ctx context.Context, studentID string) ([]Feedback, error)
		QueryAllFeedback(ctx context.Context) ([]Feedback, error)
		// SaveFeedback overwrites the stored record; last write wins.
		SaveFeedback(ctx context.Context, fb Feedback) (Feedback, error)
		// CountFeedbackBy groups all feedback by the given field ("status" or
		// "category") and counts per group, ascending by label.
		CountFeedbackBy(ctx context.Context, field string) ([]Count, error)
	}

	// Service owns the feedback lifecycle: creation, status transitions,
	// reply threads and the anonymity-masked admin projections.
	Service struct {
		repo    Repository
		usrRepo user.Repository
		mailSvc core.EmailService
		logger  core.Logger
	}
)

func NewService(repo Repository, usrRepo user.Repository, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{
		repo:    repo,
		usrRepo: usrRepo,
		mailSvc: mailSvc,
		logger:  logger,
	}
}

// Submit creates and persists a new feedback submission.
// It always starts open with an empty thread and no resolution log.
func (svc *Service) Submit(ctx context.Context, nf NewFeedback, studentID string) (Feedback, error) {
	fb := Feedback{
		StudentID:   studentID,
		IsAnonymous: nf.IsAnonymous,
		Content:     nf.Content,
		Rating:      nf.Rating,
		Category:    nf.Category,
		Status:      StatusOpen,
		CreatedAt:   time.Now().UTC(),
		Thread:      []Comment{},
	}
	return svc.repo.CreateFeedback(ctx, fb)
}

// ListForStudent returns all feedback authored by the given student,
// unfiltered, in store-native order.
func (svc *Service) ListForStudent(ctx context.Context, studentID string) ([]Feedback, error) {
	return svc.repo.QueryFeedbackByStudent(ctx, studentID)
}

// ListForAdmin returns every feedback record projected through the anonymity
// mask. A missing author record degrades to a placeholder identity instead of
// failing the whole listing.
func (svc *Service) ListForAdmin(ctx context.Context) ([]AdminView, error) {
	all, err := svc.repo.QueryAllFeedback(ctx)
	if err != nil {
		return nil, err
	}

	authors := make(map[string]*user.User, len(all))
	views := make([]AdminView, 0, len(all))
	for _, fb := range all {
		views = append(views, svc.maskAuthor(ctx, fb, authors))
	}
	return views, nil
}

// GetForAdmin returns a single feedback record through the anonymity mask.
func (svc *Service) GetForAdmin(ctx context.Context, id string) (AdminView, error) {
	fb, err := svc.repo.GetFeedbackByID(ctx, id)
	if err != nil {
		return AdminView{}, err
	}
	return svc.maskAuthor(ctx, fb, nil), nil
}

// SetStatus overwrites the status unconditionally and persists.
// The label is not validated against the known statuses; resolved is terminal
// by convention only and nothing prevents reopening.
func (svc *Service) SetStatus(ctx context.Context, id, status string) (Feedback, error) {
	fb, err := svc.repo.GetFeedbackByID(ctx, id)
	if err != nil {
		return Feedback{}, err
	}
	fb.Status = status
	return svc.repo.SaveFeedback(ctx, fb)
}

// AddReply appends a Comment to the thread. The first reply on an open
// feedback auto-advances it to in_progress. Replies are append-only:
// repeating the call appends a duplicate comment.
func (svc *Service) AddReply(ctx context.Context, id, content, authorID string) (Feedback, error) {
	fb, err := svc.repo.GetFeedbackByID(ctx, id)
	if err != nil {
		return Feedback{}, err
	}

	fb.Thread = append(fb.Thread, Comment{
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	})
	if fb.Status == StatusOpen {
		fb.Status = StatusInProgress
	}

	fb, err = svc.repo.SaveFeedback(ctx, fb)
	if err != nil {
		return Feedback{}, err
	}

	svc.notifyReply(ctx, fb)
	return fb, nil
}

// StatusCounts groups all feedback by status, ascending by label.
func (svc *Service) StatusCounts(ctx context.Context) ([]Count, error) {
	return svc.repo.CountFeedbackBy(ctx, "status")
}

// CategoryCounts groups all feedback by category, ascending by label.
func (svc *Service) CategoryCounts(ctx context.Context) ([]Count, error) {
	return svc.repo.CountFeedbackBy(ctx, "category")
}

// maskAuthor applies the anonymity mask. `authors` optionally caches lookups
// across a listing; the author relation is non-owning, so a missing user is
// never fatal.
func (svc *Service) maskAuthor(ctx context.Context, fb Feedback, authors map[string]*user.User) AdminView {
	if fb.IsAnonymous {
		return AdminView{Feedback: fb, StudentName: AnonymousName, StudentEmail: ""}
	}

	var usr *user.User
	if cached, ok := authors[fb.StudentID]; ok {
		usr = cached
	} else {
		if found, err := svc.usrRepo.GetUserByID(ctx, fb.StudentID); err == nil {
			usr = &found
		} else if err != user.ErrNotFound {
			svc.logger.Error(fmt.Sprintf("resolving feedback author %s", fb.StudentID), err)
		}
		if authors != nil {
			authors[fb.StudentID] = usr
		}
	}

	if usr == nil {
		return AdminView{Feedback: fb, StudentName: UnknownUserName, StudentEmail: ""}
	}
	return AdminView{Feedback: fb, StudentName: usr.Name, StudentEmail: usr.Email}
}

// notifyReply sends a courtesy email to the submitting student.
// Best-effort: a missing student or a send failure never fails the reply.
func (svc *Service) notifyReply(ctx context.Context, fb Feedback) {
	usr, err := svc.usrRepo.GetUserByID(ctx, fb.StudentID)
	if err != nil {
		if err != user.ErrNotFound {
			svc.logger.Error(fmt.Sprintf("resolving feedback author %s", fb.StudentID), err)
		}
		return
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: "You have a new reply on your feedback",
		BodyStr: fmt.Sprintf(
			"Hi %s,\n\nAn administrator replied to your %q feedback. "+
				"Log in to view the full thread.\n", usr.Name, fb.Category),
	})
}
