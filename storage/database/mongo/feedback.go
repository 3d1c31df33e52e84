package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/campusvoice/backend/core/feedback"
)

type (
	commentDoc struct {
		AuthorID  string    `bson:"author_id"`
		Content   string    `bson:"content"`
		CreatedAt time.Time `bson:"created_at"`
	}

	resolutionLogDoc struct {
		AdminID    string    `bson:"admin_id"`
		Note       string    `bson:"note"`
		ResolvedAt time.Time `bson:"resolved_at"`
	}

	feedbackDoc struct {
		ID            primitive.ObjectID `bson:"_id,omitempty"`
		StudentID     string             `bson:"student_id"`
		IsAnonymous   bool               `bson:"is_anonymous"`
		Content       string             `bson:"content"`
		Rating        int                `bson:"rating"`
		Category      string             `bson:"category"`
		Status        string             `bson:"status"`
		CreatedAt     time.Time          `bson:"created_at"`
		Thread        []commentDoc       `bson:"thread"`
		ResolutionLog *resolutionLogDoc  `bson:"resolution_log,omitempty"`
	}
)

func newFeedbackDoc(fb feedback.Feedback) (feedbackDoc, error) {
	doc := feedbackDoc{
		StudentID:   fb.StudentID,
		IsAnonymous: fb.IsAnonymous,
		Content:     fb.Content,
		Rating:      fb.Rating,
		Category:    fb.Category,
		Status:      fb.Status,
		CreatedAt:   fb.CreatedAt,
		Thread:      make([]commentDoc, 0, len(fb.Thread)),
	}
	if fb.ID != "" {
		id, err := primitive.ObjectIDFromHex(fb.ID)
		if err != nil {
			return feedbackDoc{}, feedback.ErrNotFound
		}
		doc.ID = id
	}
	for _, c := range fb.Thread {
		doc.Thread = append(doc.Thread, commentDoc(c))
	}
	if fb.ResolutionLog != nil {
		res := resolutionLogDoc(*fb.ResolutionLog)
		doc.ResolutionLog = &res
	}
	return doc, nil
}

func (doc feedbackDoc) feedback() feedback.Feedback {
	fb := feedback.Feedback{
		ID:          doc.ID.Hex(),
		StudentID:   doc.StudentID,
		IsAnonymous: doc.IsAnonymous,
		Content:     doc.Content,
		Rating:      doc.Rating,
		Category:    doc.Category,
		Status:      doc.Status,
		CreatedAt:   doc.CreatedAt,
		Thread:      make([]feedback.Comment, 0, len(doc.Thread)),
	}
	for _, c := range doc.Thread {
		fb.Thread = append(fb.Thread, feedback.Comment(c))
	}
	if doc.ResolutionLog != nil {
		res := feedback.ResolutionLog(*doc.ResolutionLog)
		fb.ResolutionLog = &res
	}
	return fb
}

type feedbackRepository struct {
	collection *mongo.Collection
}

func NewFeedbackRepository(db *mongo.Database) feedback.Repository {
	return &feedbackRepository{collection: db.Collection("feedback")}
}

func (repo *feedbackRepository) CreateFeedback(ctx context.Context, fb feedback.Feedback) (feedback.Feedback, error) {
	doc, err := newFeedbackDoc(fb)
	if err != nil {
		return feedback.Feedback{}, err
	}
	doc.ID = primitive.NewObjectID()

	if _, err := repo.collection.InsertOne(ctx, doc); err != nil {
		return feedback.Feedback{}, errors.Wrap(err, "inserting feedback")
	}
	return doc.feedback(), nil
}

func (repo *feedbackRepository) GetFeedbackByID(ctx context.Context, id string) (feedback.Feedback, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return feedback.Feedback{}, feedback.ErrNotFound
	}

	var doc feedbackDoc
	if err := repo.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return feedback.Feedback{}, feedback.ErrNotFound
		}
		return feedback.Feedback{}, errors.Wrap(err, "finding feedback by id")
	}
	return doc.feedback(), nil
}

func (repo *feedbackRepository) QueryFeedbackByStudent(ctx context.Context, studentID string) ([]feedback.Feedback, error) {
	return repo.query(ctx, bson.M{"student_id": studentID})
}

func (repo *feedbackRepository) QueryAllFeedback(ctx context.Context) ([]feedback.Feedback, error) {
	return repo.query(ctx, bson.M{})
}

func (repo *feedbackRepository) query(ctx context.Context, filter bson.M) ([]feedback.Feedback, error) {
	cursor, err := repo.collection.Find(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying feedback")
	}

	var docs []feedbackDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding feedback")
	}

	all := make([]feedback.Feedback, 0, len(docs))
	for _, doc := range docs {
		all = append(all, doc.feedback())
	}
	return all, nil
}

func (repo *feedbackRepository) SaveFeedback(ctx context.Context, fb feedback.Feedback) (feedback.Feedback, error) {
	doc, err := newFeedbackDoc(fb)
	if err != nil {
		return feedback.Feedback{}, err
	}

	res, err := repo.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return feedback.Feedback{}, errors.Wrap(err, "saving feedback")
	}
	if res.MatchedCount == 0 {
		return feedback.Feedback{}, feedback.ErrNotFound
	}
	return doc.feedback(), nil
}

// CountFeedbackBy runs the grouped-count aggregation pipeline on the store,
// sorted ascending by group label.
func (repo *feedbackRepository) CountFeedbackBy(ctx context.Context, field string) ([]feedback.Count, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cursor, err := repo.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrapf(err, "counting feedback by %s", field)
	}

	var buckets []struct {
		Label string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, errors.Wrap(err, "decoding counts")
	}

	counts := make([]feedback.Count, 0, len(buckets))
	for _, b := range buckets {
		counts = append(counts, feedback.Count{Label: b.Label, Count: b.Count})
	}
	return counts, nil
}
