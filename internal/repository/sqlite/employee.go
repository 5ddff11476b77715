package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/worklog-backend-go/internal/domain/worklog"
	"github.com/google/uuid"
)

const employeeColumns = `id, user_id, name, email, age, start_working_date, rating, version, created_at, updated_at`

type employeeRepositoryImpl struct {
	store *Store
}

func NewEmployeeRepository(store *Store) worklog.EmployeeRepository {
	return &employeeRepositoryImpl{store: store}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (worklog.Employee, error) {
	var (
		e                    worklog.Employee
		userID, startWorking sql.NullString
		age                  sql.NullInt64
		createdAt, updatedAt string
	)
	err := row.Scan(&e.ID, &userID, &e.Name, &e.Email, &age, &startWorking, &e.Rating, &e.Version, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return worklog.Employee{}, worklog.ErrEmployeeNotFound
		}
		return worklog.Employee{}, err
	}

	e.UserID = userID.String
	if age.Valid {
		a := int(age.Int64)
		e.Age = &a
	}
	if e.StartWorkingDate, err = parseNullTime(startWorking); err != nil {
		return worklog.Employee{}, err
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return worklog.Employee{}, err
	}
	if e.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return worklog.Employee{}, err
	}
	return e, nil
}

func (r *employeeRepositoryImpl) getOne(ctx context.Context, q querier, where string, arg any) (worklog.Employee, error) {
	e, err := scanEmployee(q.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE `+where, arg))
	if err != nil {
		return worklog.Employee{}, err
	}
	e.WorkLogs, err = loadLogs(ctx, q, e.ID)
	if err != nil {
		return worklog.Employee{}, err
	}
	return e, nil
}

func loadLogs(ctx context.Context, q querier, employeeID string) ([]worklog.WorkLog, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT start_time, end_time, total_hours, rating
		FROM work_logs WHERE employee_id = ? ORDER BY seq`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("query work logs: %w", err)
	}
	defer rows.Close()

	var logs []worklog.WorkLog
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func scanLog(row rowScanner, prefix ...any) (worklog.WorkLog, error) {
	var (
		l          worklog.WorkLog
		start      string
		end        sql.NullString
		totalHours sql.NullFloat64
	)
	dest := append(prefix, &start, &end, &totalHours, &l.Rating)
	if err := row.Scan(dest...); err != nil {
		return worklog.WorkLog{}, fmt.Errorf("scan work log: %w", err)
	}

	var err error
	if l.StartTime, err = parseTime(start); err != nil {
		return worklog.WorkLog{}, err
	}
	if l.EndTime, err = parseNullTime(end); err != nil {
		return worklog.WorkLog{}, err
	}
	if totalHours.Valid {
		h := totalHours.Float64
		l.TotalHours = &h
	}
	return l, nil
}

// GetByID implements worklog.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (worklog.Employee, error) {
	return r.getOne(ctx, r.store.db, "id = ?", id)
}

// GetByUserID implements worklog.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByUserID(ctx context.Context, userID string) (worklog.Employee, error) {
	if userID == "" {
		return worklog.Employee{}, worklog.ErrEmployeeNotFound
	}
	return r.getOne(ctx, r.store.db, "user_id = ?", userID)
}

// GetByEmail implements worklog.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByEmail(ctx context.Context, email string) (worklog.Employee, error) {
	return r.getOne(ctx, r.store.db, "email = ?", worklog.NormalizeEmail(email))
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
	now := formatTime(time.Now())

	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO employees (id, user_id, name, email, age, start_working_date, rating, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		e.ID, nullString(e.UserID), e.Name, worklog.NormalizeEmail(e.Email), e.Age,
		formatTimePtr(e.StartWorkingDate), e.Rating, now, now,
	)
	if err != nil {
		if uniqueViolation(err, "employees.email") {
			return worklog.Employee{}, worklog.ErrEmailExists
		}
		return worklog.Employee{}, fmt.Errorf("insert employee: %w", err)
	}
	return r.GetByID(ctx, e.ID)
}

// UpdateProfile implements worklog.EmployeeRepository.
func (r *employeeRepositoryImpl) UpdateProfile(ctx context.Context, e worklog.Employee) (worklog.Employee, error) {
	res, err := r.store.db.ExecContext(ctx, `
		UPDATE employees
		SET user_id = ?, name = ?, email = ?, age = ?, start_working_date = ?, rating = ?,
		    version = version + 1, updated_at = ?
		WHERE id = ?`,
		nullString(e.UserID), e.Name, worklog.NormalizeEmail(e.Email), e.Age,
		formatTimePtr(e.StartWorkingDate), e.Rating, formatTime(time.Now()), e.ID,
	)
	if err != nil {
		if uniqueViolation(err, "employees.email") {
			return worklog.Employee{}, worklog.ErrEmailExists
		}
		return worklog.Employee{}, fmt.Errorf("update employee: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return worklog.Employee{}, worklog.ErrEmployeeNotFound
	}
	return r.GetByID(ctx, e.ID)
}

// MutateLogs implements worklog.EmployeeRepository. The store holds a single
// connection, so the transaction below excludes every other writer.
func (r *employeeRepositoryImpl) MutateLogs(ctx context.Context, id string, fn func(e *worklog.Employee) error) (worklog.Employee, error) {
	var result worklog.Employee
	err := r.store.withTx(ctx, func(tx *sql.Tx) error {
		e, err := r.getOne(ctx, tx, "id = ?", id)
		if err != nil {
			return err
		}
		loaded := len(e.WorkLogs)
		if err := fn(&e); err != nil {
			return err
		}

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
			_, err := tx.ExecContext(ctx, `
				INSERT INTO work_logs (employee_id, seq, start_time, end_time, total_hours, rating)
				VALUES (?, ?, ?, ?, ?, ?)
				ON CONFLICT (employee_id, seq) DO UPDATE
				SET end_time = excluded.end_time, total_hours = excluded.total_hours, rating = excluded.rating`,
				e.ID, seq, formatTime(l.StartTime), formatTimePtr(l.EndTime), l.TotalHours, l.Rating,
			)
			if err != nil {
				if uniqueViolation(err, "work_logs.employee_id") {
					return worklog.ErrSessionAlreadyRunning
				}
				return fmt.Errorf("save work log: %w", err)
			}
		}

		updatedAt := time.Now().UTC()
		if _, err := tx.ExecContext(ctx,
			`UPDATE employees SET version = version + 1, updated_at = ? WHERE id = ?`,
			formatTime(updatedAt), e.ID,
		); err != nil {
			return fmt.Errorf("bump employee version: %w", err)
		}
		e.Version++
		e.UpdatedAt = updatedAt.Truncate(time.Millisecond)

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
	query, args := buildRowQuery(filter)
	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	var out []worklog.Row
	for rows.Next() {
		var row worklog.Row
		row.Log, err = scanLog(rows, &row.EmployeeID, &row.Name, &row.Email)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func buildRowQuery(filter worklog.RowFilter) (string, []any) {
	var where []string
	var args []any

	if filter.Email != nil {
		where = append(where, "e.email = ?")
		args = append(args, *filter.Email)
	}
	if filter.Name != nil {
		where = append(where, "e.name = ?")
		args = append(args, *filter.Name)
	}
	if !filter.IncludeOpen {
		where = append(where, "w.end_time IS NOT NULL")
	}
	if filter.Start != nil {
		where = append(where, "w.start_time >= ?")
		args = append(args, formatTime(*filter.Start))
	}
	if filter.End != nil {
		where = append(where, "w.start_time <= ?")
		args = append(args, formatTime(*filter.End))
	}

	query := `
		SELECT e.id, e.name, e.email, w.start_time, w.end_time, w.total_hours, w.rating
		FROM employees e
		JOIN work_logs w ON w.employee_id = e.id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY e.created_at, e.id, w.seq"
	return query, args
}

// CountOpenLogs implements worklog.EmployeeRepository.
func (r *employeeRepositoryImpl) CountOpenLogs(ctx context.Context) (int, error) {
	var n int
	err := r.store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM work_logs WHERE end_time IS NULL`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count open logs: %w", err)
	}
	return n, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
