package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/worklog-backend-go/internal/config"
	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/worklog"
	"github.com/cmlabs-hris/worklog-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/worklog-backend-go/internal/repository/memory"
	"github.com/cmlabs-hris/worklog-backend-go/internal/repository/mongodb"
	"github.com/cmlabs-hris/worklog-backend-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/worklog-backend-go/internal/repository/sqlite"
)

// Repositories bundles the storage ports for the configured driver.
type Repositories struct {
	Driver    string
	Users     user.UserRepository
	Employees worklog.EmployeeRepository

	close func(ctx context.Context) error
}

// Close releases the underlying connection.
func (r *Repositories) Close(ctx context.Context) error {
	if r.close == nil {
		return nil
	}
	return r.close(ctx)
}

// Open connects the backend selected by cfg.Database.Driver. PostgreSQL
// migrations run first when AutoMigrate is set.
func Open(ctx context.Context, cfg *config.Config) (*Repositories, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		dsn := cfg.DatabaseURL()
		if cfg.Database.AutoMigrate {
			if err := database.RunMigrations(dsn); err != nil {
				return nil, err
			}
		}
		db, err := database.NewPostgreSQLDB(ctx, dsn)
		if err != nil {
			return nil, err
		}
		slog.Info("Storage connected", "driver", cfg.Database.Driver, "host", cfg.Database.Host, "database", cfg.Database.Name)
		return &Repositories{
			Driver:    cfg.Database.Driver,
			Users:     postgresql.NewUserRepository(db),
			Employees: postgresql.NewEmployeeRepository(db),
			close: func(context.Context) error {
				db.Close()
				return nil
			},
		}, nil

	case config.DriverSQLite:
		store, err := sqlite.New(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		slog.Info("Storage connected", "driver", cfg.Database.Driver, "path", cfg.SQLite.Path)
		return &Repositories{
			Driver:    cfg.Database.Driver,
			Users:     sqlite.NewUserRepository(store),
			Employees: sqlite.NewEmployeeRepository(store),
			close:     func(context.Context) error { return store.Close() },
		}, nil

	case config.DriverMongo:
		m, err := database.NewMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, err
		}
		if err := mongodb.EnsureIndexes(ctx, m.DB); err != nil {
			_ = m.Close(ctx)
			return nil, err
		}
		slog.Info("Storage connected", "driver", cfg.Database.Driver, "database", cfg.Mongo.Database)
		return &Repositories{
			Driver:    cfg.Database.Driver,
			Users:     mongodb.NewUserRepository(m.DB),
			Employees: mongodb.NewEmployeeRepository(m.DB),
			close:     m.Close,
		}, nil

	case config.DriverMemory:
		slog.Warn("Using in-memory storage, data is lost on restart")
		return &Repositories{
			Driver:    cfg.Database.Driver,
			Users:     memory.NewUserRepository(),
			Employees: memory.NewEmployeeRepository(),
		}, nil
	}
	return nil, fmt.Errorf("unsupported storage driver %q", cfg.Database.Driver)
}
