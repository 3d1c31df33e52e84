package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/campusvoice/backend/core/feedback"
)

type feedbackRepository struct {
	db *feedbackTable
}

func NewFeedbackRepository(db *DB) feedback.Repository {
	return &feedbackRepository{db: db.feedback}
}

// clone guards the stored record against aliasing through its thread slice.
func clone(fb feedback.Feedback) feedback.Feedback {
	thread := make([]feedback.Comment, len(fb.Thread))
	copy(thread, fb.Thread)
	fb.Thread = thread
	if fb.ResolutionLog != nil {
		res := *fb.ResolutionLog
		fb.ResolutionLog = &res
	}
	return fb
}

func (repo *feedbackRepository) CreateFeedback(_ context.Context, fb feedback.Feedback) (feedback.Feedback, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	fb.ID = uuid.New().String()
	stored := clone(fb)
	repo.db.table[fb.ID] = &stored
	repo.db.order = append(repo.db.order, fb.ID)
	return fb, nil
}

func (repo *feedbackRepository) GetFeedbackByID(_ context.Context, id string) (feedback.Feedback, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if fb, ok := repo.db.table[id]; ok {
		return clone(*fb), nil
	}
	return feedback.Feedback{}, feedback.ErrNotFound
}

func (repo *feedbackRepository) QueryFeedbackByStudent(_ context.Context, studentID string) ([]feedback.Feedback, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	all := make([]feedback.Feedback, 0)
	for _, id := range repo.db.order {
		if fb := repo.db.table[id]; fb != nil && fb.StudentID == studentID {
			all = append(all, clone(*fb))
		}
	}
	return all, nil
}

func (repo *feedbackRepository) QueryAllFeedback(_ context.Context) ([]feedback.Feedback, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	all := make([]feedback.Feedback, 0, len(repo.db.table))
	for _, id := range repo.db.order {
		if fb := repo.db.table[id]; fb != nil {
			all = append(all, clone(*fb))
		}
	}
	return all, nil
}

func (repo *feedbackRepository) SaveFeedback(_ context.Context, fb feedback.Feedback) (feedback.Feedback, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[fb.ID]; !ok {
		return feedback.Feedback{}, feedback.ErrNotFound
	}
	stored := clone(fb)
	repo.db.table[fb.ID] = &stored
	return fb, nil
}

// CountFeedbackBy is an in-process fold over all records, replicating the
// document store's group-and-count pipeline with ascending label order.
func (repo *feedbackRepository) CountFeedbackBy(_ context.Context, field string) ([]feedback.Count, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	buckets := make(map[string]int64)
	for _, fb := range repo.db.table {
		switch field {
		case "status":
			buckets[fb.Status]++
		case "category":
			buckets[fb.Category]++
		}
	}

	counts := make([]feedback.Count, 0, len(buckets))
	for label, n := range buckets {
		counts = append(counts, feedback.Count{Label: label, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Label < counts[j].Label })
	return counts, nil
}
