// Package mongodb implements the backing store contracts on MongoDB.
package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/campusvoice/backend/core/user"
)

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash []byte             `bson:"password"`
	Role         string             `bson:"role"`
	CreatedAt    time.Time          `bson:"created_at"`
}

func newUserDoc(usr user.User) (userDoc, error) {
	doc := userDoc{
		Name:         usr.Name,
		Email:        usr.Email,
		PasswordHash: usr.PasswordHash,
		Role:         usr.Role,
		CreatedAt:    usr.CreatedAt,
	}
	if usr.ID != "" {
		id, err := primitive.ObjectIDFromHex(usr.ID)
		if err != nil {
			return userDoc{}, user.ErrNotFound
		}
		doc.ID = id
	}
	return doc, nil
}

func (doc userDoc) user() user.User {
	return user.User{
		ID:           doc.ID.Hex(),
		Name:         doc.Name,
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		Role:         doc.Role,
		CreatedAt:    doc.CreatedAt,
	}
}

type userRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) user.Repository {
	return &userRepository{collection: db.Collection("users")}
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string) error {
	err := repo.collection.FindOne(ctx, bson.M{"email": email}).Err()
	switch err {
	case nil:
		return user.ErrEmailExists
	case mongo.ErrNoDocuments:
		return nil
	default:
		return errors.Wrap(err, "checking email uniqueness")
	}
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	doc, err := newUserDoc(usr)
	if err != nil {
		return user.User{}, err
	}
	doc.ID = primitive.NewObjectID()

	if _, err := repo.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return doc.user(), nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return user.User{}, user.ErrNotFound
	}

	var doc userDoc
	if err := repo.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "finding user by id")
	}
	return doc.user(), nil
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var doc userDoc
	if err := repo.collection.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "finding user by email")
	}
	return doc.user(), nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	doc, err := newUserDoc(usr)
	if err != nil {
		return user.User{}, err
	}

	res, err := repo.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if res.MatchedCount == 0 {
		return user.User{}, user.ErrNotFound
	}
	return doc.user(), nil
}
