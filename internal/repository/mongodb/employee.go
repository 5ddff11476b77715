package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/worklog"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// maxMutateAttempts bounds how often MutateLogs re-reads the employee after
// losing a version race.
const maxMutateAttempts = 5

type employeeRepositoryImpl struct {
	coll *mongo.Collection
}

func NewEmployeeRepository(db *mongo.Database) worklog.EmployeeRepository {
	return &employeeRepositoryImpl{coll: db.Collection(employeesCollection)}
}

// EnsureIndexes creates the unique email and linked-user indexes.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(employeesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"userId": bson.M{"$exists": true}}),
		},
		{
			Keys: bson.D{{Key: "workLogs.startTime", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("create employee indexes: %w", err)
	}

	_, err = db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

func (r *employeeRepositoryImpl) findOne(ctx context.Context, filter bson.M) (worklog.Employee, error) {
	var doc employeeDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return worklog.Employee{}, worklog.ErrEmployeeNotFound
		}
		return worklog.Employee{}, fmt.Errorf("find employee: %w", err)
	}
	return doc.toDomain(), nil
}

// GetByID implements worklog.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (worklog.Employee, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByUserID implements worklog.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByUserID(ctx context.Context, userID string) (worklog.Employee, error) {
	if userID == "" {
		return worklog.Employee{}, worklog.ErrEmployeeNotFound
	}
	return r.findOne(ctx, bson.M{"userId": userID})
}

// GetByEmail implements worklog.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByEmail(ctx context.Context, email string) (worklog.Employee, error) {
	return r.findOne(ctx, bson.M{"email": worklog.NormalizeEmail(email)})
}

// Create implements worklog.EmployeeRepository.
func (r *employeeRepositoryImpl) Create(ctx context.Context, e worklog.Employee) (worklog.Employee, error) {
	if e.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return worklog.Employee{}, err
		}
		e.ID = id.String()
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	e.CreatedAt, e.UpdatedAt = now, now
	e.Version = 1

	doc := toEmployeeDocument(e)
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return worklog.Employee{}, worklog.ErrEmailExists
		}
		return worklog.Employee{}, fmt.Errorf("insert employee: %w", err)
	}
	return doc.toDomain(), nil
}

// UpdateProfile implements worklog.EmployeeRepository.
func (r *employeeRepositoryImpl) UpdateProfile(ctx context.Context, e worklog.Employee) (worklog.Employee, error) {
	set := bson.M{
		"name":             e.Name,
		"email":            worklog.NormalizeEmail(e.Email),
		"age":              e.Age,
		"startWorkingDate": e.StartWorkingDate,
		"rating":           e.Rating,
		"updatedAt":        time.Now().UTC(),
	}
	update := bson.M{"$set": set, "$inc": bson.M{"version": 1}}
	if e.UserID != "" {
		set["userId"] = e.UserID
	} else {
		update["$unset"] = bson.M{"userId": ""}
	}

	var doc employeeDocument
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": e.ID}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return worklog.Employee{}, worklog.ErrEmployeeNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return worklog.Employee{}, worklog.ErrEmailExists
		}
		return worklog.Employee{}, fmt.Errorf("update employee: %w", err)
	}
	return doc.toDomain(), nil
}

// MutateLogs implements worklog.EmployeeRepository with optimistic
// concurrency: the write only applies if the version read is still current.
// fn is re-run on fresh state after a lost race, and ErrConcurrentUpdate is
// returned once the attempts are exhausted.
func (r *employeeRepositoryImpl) MutateLogs(ctx context.Context, id string, fn func(e *worklog.Employee) error) (worklog.Employee, error) {
	for attempt := 0; attempt < maxMutateAttempts; attempt++ {
		e, err := r.GetByID(ctx, id)
		if err != nil {
			return worklog.Employee{}, err
		}
		if err := fn(&e); err != nil {
			return worklog.Employee{}, err
		}

		readVersion := e.Version
		e.Version++
		e.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

		res, err := r.coll.UpdateOne(ctx,
			bson.M{"_id": id, "version": readVersion},
			bson.M{"$set": bson.M{
				"workLogs":  toWorkLogDocuments(e.WorkLogs),
				"version":   e.Version,
				"updatedAt": e.UpdatedAt,
			}},
		)
		if err != nil {
			return worklog.Employee{}, fmt.Errorf("save work logs: %w", err)
		}
		if res.MatchedCount == 1 {
			return e, nil
		}
	}
	return worklog.Employee{}, worklog.ErrConcurrentUpdate
}

// ListRows implements worklog.EmployeeRepository by unwinding the embedded
// work logs and matching on the expanded rows.
func (r *employeeRepositoryImpl) ListRows(ctx context.Context, filter worklog.RowFilter) ([]worklog.Row, error) {
	cursor, err := r.coll.Aggregate(ctx, rowPipeline(filter))
	if err != nil {
		return nil, fmt.Errorf("aggregate rows: %w", err)
	}

	var docs []rowDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}

	rows := make([]worklog.Row, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, worklog.Row{
			EmployeeID: d.ID,
			Name:       d.Name,
			Email:      d.Email,
			Log:        d.WorkLog.toDomain(),
		})
	}
	return rows, nil
}

func rowPipeline(filter worklog.RowFilter) mongo.Pipeline {
	employeeMatch := bson.D{}
	if filter.Email != nil {
		employeeMatch = append(employeeMatch, bson.E{Key: "email", Value: *filter.Email})
	}
	if filter.Name != nil {
		employeeMatch = append(employeeMatch, bson.E{Key: "name", Value: *filter.Name})
	}

	logMatch := bson.D{}
	if !filter.IncludeOpen {
		logMatch = append(logMatch, bson.E{Key: "workLogs.endTime", Value: bson.M{"$ne": nil}})
	}
	startRange := bson.M{}
	if filter.Start != nil {
		startRange["$gte"] = *filter.Start
	}
	if filter.End != nil {
		startRange["$lte"] = *filter.End
	}
	if len(startRange) > 0 {
		logMatch = append(logMatch, bson.E{Key: "workLogs.startTime", Value: startRange})
	}

	pipeline := mongo.Pipeline{}
	if len(employeeMatch) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: employeeMatch}})
	}
	pipeline = append(pipeline, bson.D{{Key: "$unwind", Value: bson.M{
		"path":              "$workLogs",
		"includeArrayIndex": "seq",
	}}})
	if len(logMatch) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: logMatch}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "createdAt", Value: 1},
			{Key: "_id", Value: 1},
			{Key: "seq", Value: 1},
		}}},
		bson.D{{Key: "$project", Value: bson.M{
			"name":     1,
			"email":    1,
			"workLogs": 1,
		}}},
	)
	return pipeline
}

// CountOpenLogs implements worklog.EmployeeRepository.
func (r *employeeRepositoryImpl) CountOpenLogs(ctx context.Context) (int, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{
		"workLogs": bson.M{"$elemMatch": bson.M{"endTime": nil}},
	})
	if err != nil {
		return 0, fmt.Errorf("count open logs: %w", err)
	}
	return int(n), nil
}
