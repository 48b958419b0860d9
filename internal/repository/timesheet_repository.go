// This file contains the data access layer for weekly timesheets and their
// embedded daily tasks. Every query is scoped by the owning user's id, so a
// timesheet belonging to someone else is indistinguishable from one that does
// not exist. Task mutations run inside a transaction that also locks and
// touches the parent row, which serializes concurrent mutations against the
// same timesheet at the store level.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/davitp/timesheet-tracker/internal/model"
)

type TimesheetRepo struct{ DB *sql.DB }

func NewTimesheetRepo(db *sql.DB) *TimesheetRepo { return &TimesheetRepo{DB: db} }

// CreateWeek inserts a new empty timesheet for the exact week boundary pair.
// It returns ErrWeekExists when the user already has a timesheet with both
// boundary dates matching. The created record is read back so callers
// receive populated timestamps.
func (r *TimesheetRepo) CreateWeek(ctx context.Context, userID uint64, start, end time.Time) (*model.WeeklyTimesheet, error) {
	var existing uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT id FROM timesheets WHERE user_id=? AND week_start_date=? AND week_end_date=? LIMIT 1",
		userID, start, end).Scan(&existing)
	if err == nil {
		return nil, ErrWeekExists
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO timesheets (user_id, week_start_date, week_end_date) VALUES (?,?,?)",
		userID, start, end)
	if err != nil {
		// Unique index on (user_id, week_start_date, week_end_date) closes the
		// race between the existence check and the insert.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return nil, ErrWeekExists
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByIDAndUser(ctx, uint64(id), userID)
}

// GetByIDAndUser fetches a timesheet with its full task list, but only if it
// belongs to the given user. ErrTimesheetNotFound covers both absence and
// foreign ownership.
func (r *TimesheetRepo) GetByIDAndUser(ctx context.Context, id, userID uint64) (*model.WeeklyTimesheet, error) {
	const q = `SELECT id, user_id, week_start_date, week_end_date, created_at, updated_at
	           FROM timesheets WHERE id = ? AND user_id = ?`
	var ts model.WeeklyTimesheet
	err := r.DB.QueryRowContext(ctx, q, id, userID).
		Scan(&ts.ID, &ts.UserID, &ts.WeekStartDate, &ts.WeekEndDate, &ts.CreatedAt, &ts.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTimesheetNotFound
		}
		return nil, err
	}
	if err := r.loadTasks(ctx, []*model.WeeklyTimesheet{&ts}); err != nil {
		return nil, err
	}
	return &ts, nil
}

// CountByUser returns how many timesheets the user owns.
func (r *TimesheetRepo) CountByUser(ctx context.Context, userID uint64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM timesheets WHERE user_id=?", userID).Scan(&n)
	return n, err
}

// ListByUser returns one page of the user's timesheets, newest week first.
// The id is a secondary sort key so the order stays deterministic when two
// rows share a week start date.
func (r *TimesheetRepo) ListByUser(ctx context.Context, userID uint64, limit, offset int) ([]*model.WeeklyTimesheet, error) {
	const q = `SELECT id, user_id, week_start_date, week_end_date, created_at, updated_at
	           FROM timesheets WHERE user_id = ?
	           ORDER BY week_start_date DESC, id DESC
	           LIMIT ? OFFSET ?`
	rows, err := r.DB.QueryContext(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.WeeklyTimesheet
	for rows.Next() {
		ts := new(model.WeeklyTimesheet)
		if err := rows.Scan(&ts.ID, &ts.UserID, &ts.WeekStartDate, &ts.WeekEndDate, &ts.CreatedAt, &ts.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadTasks(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddTask appends a task to the timesheet. The task's ID and timestamps are
// populated on success. Runs in a transaction that locks the parent row, so
// two concurrent appends to the same timesheet are serialized.
func (r *TimesheetRepo) AddTask(ctx context.Context, timesheetID, userID uint64, task *model.DailyTask) error {
	return r.withOwnedTimesheet(ctx, timesheetID, userID, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO daily_tasks (timesheet_id, task_date, project, type_of_work, description, hours)
			 VALUES (?,?,?,?,?,?)`,
			timesheetID, task.Date, task.Project, task.TypeOfWork, task.Description, task.Hours)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		task.ID = uint64(id)
		return tx.QueryRowContext(ctx,
			"SELECT created_at, updated_at FROM daily_tasks WHERE id=?", task.ID).
			Scan(&task.CreatedAt, &task.UpdatedAt)
	})
}

// UpdateTask overwrites a task's mutable columns. Callers load the current
// task first and apply partial changes before calling this; the repository
// always writes the full row. ErrTaskNotFound is returned when the task does
// not exist inside this timesheet.
func (r *TimesheetRepo) UpdateTask(ctx context.Context, timesheetID, userID uint64, task *model.DailyTask) error {
	return r.withOwnedTimesheet(ctx, timesheetID, userID, func(tx *sql.Tx) error {
		var id uint64
		err := tx.QueryRowContext(ctx,
			"SELECT id FROM daily_tasks WHERE id=? AND timesheet_id=? FOR UPDATE",
			task.ID, timesheetID).Scan(&id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTaskNotFound
			}
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE daily_tasks
			 SET task_date=?, project=?, type_of_work=?, description=?, hours=?, updated_at=CURRENT_TIMESTAMP
			 WHERE id=? AND timesheet_id=?`,
			task.Date, task.Project, task.TypeOfWork, task.Description, task.Hours,
			task.ID, timesheetID); err != nil {
			return err
		}
		return tx.QueryRowContext(ctx,
			"SELECT created_at, updated_at FROM daily_tasks WHERE id=?", task.ID).
			Scan(&task.CreatedAt, &task.UpdatedAt)
	})
}

// DeleteTask removes a task from the timesheet.
func (r *TimesheetRepo) DeleteTask(ctx context.Context, timesheetID, userID, taskID uint64) error {
	return r.withOwnedTimesheet(ctx, timesheetID, userID, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"DELETE FROM daily_tasks WHERE id=? AND timesheet_id=?", taskID, timesheetID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrTaskNotFound
		}
		return nil
	})
}

// withOwnedTimesheet runs fn inside a transaction after locking the parent
// timesheet row for the given owner. The parent's updated_at is touched when
// fn succeeds so the aggregate reflects its last mutation.
func (r *TimesheetRepo) withOwnedTimesheet(ctx context.Context, timesheetID, userID uint64, fn func(tx *sql.Tx) error) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	var id uint64
	if err = tx.QueryRowContext(ctx,
		"SELECT id FROM timesheets WHERE id=? AND user_id=? FOR UPDATE",
		timesheetID, userID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrTimesheetNotFound
		}
		return err
	}
	if err = fn(tx); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		"UPDATE timesheets SET updated_at=CURRENT_TIMESTAMP WHERE id=?", timesheetID)
	return err
}

// loadTasks populates DailyTasks for every timesheet in ts with a single
// query. Task lists come back in insertion (id) order and are always
// non-nil so an empty week serializes as [].
func (r *TimesheetRepo) loadTasks(ctx context.Context, ts []*model.WeeklyTimesheet) error {
	byID := make(map[uint64]*model.WeeklyTimesheet, len(ts))
	args := make([]any, 0, len(ts))
	for _, t := range ts {
		t.DailyTasks = []model.DailyTask{}
		byID[t.ID] = t
		args = append(args, t.ID)
	}
	if len(args) == 0 {
		return nil
	}

	q := `SELECT id, timesheet_id, task_date, project, type_of_work, description, hours, created_at, updated_at
	      FROM daily_tasks WHERE timesheet_id IN (?` + strings.Repeat(",?", len(args)-1) + `)
	      ORDER BY timesheet_id, id`
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			task     model.DailyTask
			parentID uint64
		)
		if err := rows.Scan(&task.ID, &parentID, &task.Date, &task.Project, &task.TypeOfWork,
			&task.Description, &task.Hours, &task.CreatedAt, &task.UpdatedAt); err != nil {
			return err
		}
		if parent, ok := byID[parentID]; ok {
			parent.DailyTasks = append(parent.DailyTasks, task)
		}
	}
	return rows.Err()
}
