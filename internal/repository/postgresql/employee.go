package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/worklog"
	"github.com/cmlabs-hris/worklog-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	employeeColumns = `id, user_id, name, email, age, start_working_date, rating, version, created_at, updated_at`

	openLogIndex = "work_logs_one_open_idx"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) worklog.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

func scanEmployee(row pgx.Row) (worklog.Employee, error) {
	var e worklog.Employee
	var userID *string
	err := row.Scan(
		&e.ID,
		&userID,
		&e.Name,
		&e.Email,
		&e.Age,
		&e.StartWorkingDate,
		&e.Rating,
		&e.Version,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return worklog.Employee{}, worklog.ErrEmployeeNotFound
		}
		return worklog.Employee{}, err
	}
	if userID != nil {
		e.UserID = *userID
	}
	return e, nil
}

func (r *employeeRepositoryImpl) getOne(ctx context.Context, where string, arg interface{}, lock bool) (worklog.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE ` + where
	if lock {
		query += ` FOR UPDATE`
	}

	e, err := scanEmployee(q.QueryRow(ctx, query, arg))
	if err != nil {
		return worklog.Employee{}, err
	}

	e.WorkLogs, err = r.loadLogs(ctx, q, e.ID)
	if err != nil {
		return worklog.Employee{}, err
	}
	return e, nil
}

func (r *employeeRepositoryImpl) loadLogs(ctx context.Context, q database.Querier, employeeID string) ([]worklog.WorkLog, error) {
	rows, err := q.Query(ctx, `
		SELECT start_time, end_time, total_hours, rating
		FROM work_logs
		WHERE employee_id = $1
		ORDER BY seq
	`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("query work logs: %w", err)
	}
	defer rows.Close()

	var logs []worklog.WorkLog
	for rows.Next() {
		var l worklog.WorkLog
		if err := rows.Scan(&l.StartTime, &l.EndTime, &l.TotalHours, &l.Rating); err != nil {
			return nil, fmt.Errorf("scan work log: %w", err)
		}
		logs = append(logs, utcLog(l))
	}
	return logs, rows.Err()
}

// GetByID implements worklog.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (worklog.Employee, error) {
	if _, err := uuid.Parse(id); err != nil {
		return worklog.Employee{}, worklog.ErrEmployeeNotFound
	}
	return r.getOne(ctx, "id = $1", id, false)
}

// GetByUserID implements worklog.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByUserID(ctx context.Context, userID string) (worklog.Employee, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return worklog.Employee{}, worklog.ErrEmployeeNotFound
	}
	return r.getOne(ctx, "user_id = $1", userID, false)
}

// GetByEmail implements worklog.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByEmail(ctx context.Context, email string) (worklog.Employee, error) {
	return r.getOne(ctx, "email = $1", worklog.NormalizeEmail(email), false)
}

// Create implements worklog.EmployeeRepository.
func (r *employeeRepositoryImpl) Create(ctx context.Context, e worklog.Employee) (worklog.Employee, error) {
	q := GetQuerier(ctx, r.db)

	if e.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return worklog.Employee{}, err
		}
		e.ID = id.String()
	}

	created, err := scanEmployee(q.QueryRow(ctx, `
		INSERT INTO employees (id, user_id, name, email, age, start_working_date, rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+employeeColumns,
		e.ID,
		nullableUUID(e.UserID),
		e.Name,
		worklog.NormalizeEmail(e.Email),
		e.Age,
		e.StartWorkingDate,
		e.Rating,
	))
	if err != nil {
		if isUniqueViolation(err, "") {
			return worklog.Employee{}, worklog.ErrEmailExists
		}
		return worklog.Employee{}, fmt.Errorf("insert employee: %w", err)
	}
	return created, nil
}

// UpdateProfile implements worklog.EmployeeRepository.
func (r *employeeRepositoryImpl) UpdateProfile(ctx context.Context, e worklog.Employee) (worklog.Employee, error) {
	q := GetQuerier(ctx, r.db)

	updated, err := scanEmployee(q.QueryRow(ctx, `
		UPDATE employees
		SET user_id = $2, name = $3, email = $4, age = $5, start_working_date = $6, rating = $7,
		    version = version + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING `+employeeColumns,
		e.ID,
		nullableUUID(e.UserID),
		e.Name,
		worklog.NormalizeEmail(e.Email),
		e.Age,
		e.StartWorkingDate,
		e.Rating,
	))
	if err != nil {
		if isUniqueViolation(err, "") {
			return worklog.Employee{}, worklog.ErrEmailExists
		}
		return worklog.Employee{}, fmt.Errorf("update employee: %w", err)
	}

	updated.WorkLogs, err = r.loadLogs(ctx, q, updated.ID)
	if err != nil {
		return worklog.Employee{}, err
	}
	return updated, nil
}

// MutateLogs implements worklog.EmployeeRepository. The employee row is
// locked with SELECT ... FOR UPDATE for the duration of fn, and the partial
// unique index on open logs rejects a second open interval.
func (r *employeeRepositoryImpl) MutateLogs(ctx context.Context, id string, fn func(e *worklog.Employee) error) (worklog.Employee, error) {
	if _, err := uuid.Parse(id); err != nil {
		return worklog.Employee{}, worklog.ErrEmployeeNotFound
	}

	var result worklog.Employee
	err := WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		txCtx := ContextWithTx(ctx, tx)

		e, err := r.getOne(txCtx, "id = $1", id, true)
		if err != nil {
			return err
		}
		loaded := len(e.WorkLogs)
		if err := fn(&e); err != nil {
			return err
		}

		// Only the previously last log and any appended ones can have changed.
		from := loaded - 1
		if from < 0 {
			from = 0
		}
		if from >= len(e.WorkLogs) {
			result = e
			return nil
		}

		for seq := from; seq < len(e.WorkLogs); seq++ {
			l := e.WorkLogs[seq]
			_, err = tx.Exec(ctx, `
				INSERT INTO work_logs (employee_id, seq, start_time, end_time, total_hours, rating)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (employee_id, seq) DO UPDATE
				SET end_time = EXCLUDED.end_time, total_hours = EXCLUDED.total_hours, rating = EXCLUDED.rating
			`, e.ID, seq, l.StartTime, l.EndTime, l.TotalHours, l.Rating)
			if err != nil {
				if isUniqueViolation(err, openLogIndex) {
					return worklog.ErrSessionAlreadyRunning
				}
				return fmt.Errorf("save work log: %w", err)
			}
		}

		if err := tx.QueryRow(ctx, `
			UPDATE employees SET version = version + 1, updated_at = NOW()
			WHERE id = $1
			RETURNING version, updated_at
		`, e.ID).Scan(&e.Version, &e.UpdatedAt); err != nil {
			return fmt.Errorf("bump employee version: %w", err)
		}

		result = e
		return nil
	})
	if err != nil {
		return worklog.Employee{}, err
	}
	return result, nil
}

// ListRows implements worklog.EmployeeRepository.
func (r *employeeRepositoryImpl) ListRows(ctx context.Context, filter worklog.RowFilter) ([]worklog.Row, error) {
	q := GetQuerier(ctx, r.db)

	query, args := buildRowQuery(filter)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	var out []worklog.Row
	for rows.Next() {
		var row worklog.Row
		if err := rows.Scan(
			&row.EmployeeID,
			&row.Name,
			&row.Email,
			&row.Log.StartTime,
			&row.Log.EndTime,
			&row.Log.TotalHours,
			&row.Log.Rating,
		); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row.Log = utcLog(row.Log)
		out = append(out, row)
	}
	return out, rows.Err()
}

// buildRowQuery translates filter into a WHERE clause over the joined rows.
func buildRowQuery(filter worklog.RowFilter) (string, []interface{}) {
	var where []string
	var args []interface{}
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if filter.Email != nil {
		add("e.email = $%d", *filter.Email)
	}
	if filter.Name != nil {
		add("e.name = $%d", *filter.Name)
	}
	if !filter.IncludeOpen {
		where = append(where, "w.end_time IS NOT NULL")
	}
	if filter.Start != nil {
		add("w.start_time >= $%d", *filter.Start)
	}
	if filter.End != nil {
		add("w.start_time <= $%d", *filter.End)
	}

	query := `
		SELECT e.id, e.name, e.email, w.start_time, w.end_time, w.total_hours, w.rating
		FROM employees e
		JOIN work_logs w ON w.employee_id = e.id`
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\t\tORDER BY e.created_at, e.id, w.seq"
	return query, args
}

// CountOpenLogs implements worklog.EmployeeRepository.
func (r *employeeRepositoryImpl) CountOpenLogs(ctx context.Context) (int, error) {
	q := GetQuerier(ctx, r.db)

	var n int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM work_logs WHERE end_time IS NULL`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count open logs: %w", err)
	}
	return n, nil
}

func nullableUUID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

func utcLog(l worklog.WorkLog) worklog.WorkLog {
	l.StartTime = l.StartTime.UTC()
	if l.EndTime != nil {
		end := l.EndTime.UTC()
		l.EndTime = &end
	}
	return l
}
