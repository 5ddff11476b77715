package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/worklog"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type userRepositoryImpl struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) user.UserRepository {
	return &userRepositoryImpl{coll: db.Collection(usersCollection)}
}

func (r *userRepositoryImpl) findOne(ctx context.Context, filter bson.M) (user.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

// GetByEmail implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.findOne(ctx, bson.M{"email": worklog.NormalizeEmail(email)})
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// Create implements user.UserRepository.
func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	if newUser.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return user.User{}, err
		}
		newUser.ID = id.String()
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	newUser.CreatedAt, newUser.UpdatedAt = now, now

	doc := toUserDocument(newUser)
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, user.ErrUserEmailExists
		}
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}
	return doc.toDomain(), nil
}

// LinkGoogleAccount implements user.UserRepository.
func (r *userRepositoryImpl) LinkGoogleAccount(ctx context.Context, googleID string, email string) (user.User, error) {
	var doc userDocument
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"email": worklog.NormalizeEmail(email)},
		bson.M{"$set": bson.M{
			"oauthProvider":   "google",
			"oauthProviderId": googleID,
			"updatedAt":       time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("link google account: %w", err)
	}
	return doc.toDomain(), nil
}
