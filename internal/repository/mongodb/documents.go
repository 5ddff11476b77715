package mongodb

import (
	"time"

	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/worklog"
)

const (
	employeesCollection = "employees"
	usersCollection     = "users"
)

type workLogDocument struct {
	StartTime  time.Time  `bson:"startTime"`
	EndTime    *time.Time `bson:"endTime"`
	TotalHours *float64   `bson:"totalHours"`
	Rating     float64    `bson:"rating"`
}

type employeeDocument struct {
	ID               string            `bson:"_id"`
	UserID           *string           `bson:"userId,omitempty"`
	Name             string            `bson:"name"`
	Email            string            `bson:"email"`
	Age              *int              `bson:"age"`
	StartWorkingDate *time.Time        `bson:"startWorkingDate"`
	Rating           float64           `bson:"rating"`
	WorkLogs         []workLogDocument `bson:"workLogs"`
	Version          int64             `bson:"version"`
	CreatedAt        time.Time         `bson:"createdAt"`
	UpdatedAt        time.Time         `bson:"updatedAt"`
}

// rowDocument is the shape of one element after unwinding workLogs.
type rowDocument struct {
	ID      string          `bson:"_id"`
	Name    string          `bson:"name"`
	Email   string          `bson:"email"`
	WorkLog workLogDocument `bson:"workLogs"`
}

type userDocument struct {
	ID              string    `bson:"_id"`
	Name            string    `bson:"name"`
	Email           string    `bson:"email"`
	PasswordHash    *string   `bson:"passwordHash,omitempty"`
	OAuthProvider   *string   `bson:"oauthProvider,omitempty"`
	OAuthProviderID *string   `bson:"oauthProviderId,omitempty"`
	CreatedAt       time.Time `bson:"createdAt"`
	UpdatedAt       time.Time `bson:"updatedAt"`
}

func toWorkLogDocuments(logs []worklog.WorkLog) []workLogDocument {
	docs := make([]workLogDocument, 0, len(logs))
	for _, l := range logs {
		docs = append(docs, workLogDocument{
			StartTime:  l.StartTime,
			EndTime:    l.EndTime,
			TotalHours: l.TotalHours,
			Rating:     l.Rating,
		})
	}
	return docs
}

func (d workLogDocument) toDomain() worklog.WorkLog {
	l := worklog.WorkLog{
		StartTime:  d.StartTime.UTC(),
		TotalHours: d.TotalHours,
		Rating:     d.Rating,
	}
	if d.EndTime != nil {
		end := d.EndTime.UTC()
		l.EndTime = &end
	}
	return l
}

func toEmployeeDocument(e worklog.Employee) employeeDocument {
	doc := employeeDocument{
		ID:               e.ID,
		Name:             e.Name,
		Email:            worklog.NormalizeEmail(e.Email),
		Age:              e.Age,
		StartWorkingDate: e.StartWorkingDate,
		Rating:           e.Rating,
		WorkLogs:         toWorkLogDocuments(e.WorkLogs),
		Version:          e.Version,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
	if e.UserID != "" {
		doc.UserID = &e.UserID
	}
	return doc
}

func (d employeeDocument) toDomain() worklog.Employee {
	e := worklog.Employee{
		ID:        d.ID,
		Name:      d.Name,
		Email:     d.Email,
		Age:       d.Age,
		Rating:    d.Rating,
		Version:   d.Version,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
	if d.UserID != nil {
		e.UserID = *d.UserID
	}
	if d.StartWorkingDate != nil {
		swd := d.StartWorkingDate.UTC()
		e.StartWorkingDate = &swd
	}
	for _, l := range d.WorkLogs {
		e.WorkLogs = append(e.WorkLogs, l.toDomain())
	}
	return e
}

func toUserDocument(u user.User) userDocument {
	return userDocument{
		ID:              u.ID,
		Name:            u.Name,
		Email:           worklog.NormalizeEmail(u.Email),
		PasswordHash:    u.PasswordHash,
		OAuthProvider:   u.OAuthProvider,
		OAuthProviderID: u.OAuthProviderID,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func (d userDocument) toDomain() user.User {
	return user.User{
		ID:              d.ID,
		Name:            d.Name,
		Email:           d.Email,
		PasswordHash:    d.PasswordHash,
		OAuthProvider:   d.OAuthProvider,
		OAuthProviderID: d.OAuthProviderID,
		CreatedAt:       d.CreatedAt.UTC(),
		UpdatedAt:       d.UpdatedAt.UTC(),
	}
}
