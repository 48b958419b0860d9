package model

import "time"

// WeeklyTimesheet represents one user's timesheet for a single week.
// The pair (UserID, WeekStartDate, WeekEndDate) is unique: a user can
// have at most one timesheet per exact week boundary pair.  Daily
// tasks are owned exclusively by their timesheet and are only ever
// addressed through it.
//
// Fields:
//  ID            – primary key identifier.
//  UserID        – owner of the timesheet (immutable after creation).
//  WeekStartDate – first day of the week (date, UTC midnight).
//  WeekEndDate   – last day of the week; never before WeekStartDate.
//  DailyTasks    – embedded work-log entries, in insertion order.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – timestamp of the last task mutation.
type WeeklyTimesheet struct {
    ID            uint64      // timesheets.id
    UserID        uint64      // timesheets.user_id
    WeekStartDate time.Time   // timesheets.week_start_date
    WeekEndDate   time.Time   // timesheets.week_end_date
    DailyTasks    []DailyTask // daily_tasks rows, ordered by id
    CreatedAt     time.Time   // timesheets.created_at
    UpdatedAt     time.Time   // timesheets.updated_at
}

// DailyTask is a single work-log entry inside a weekly timesheet.
//
// Fields:
//  ID          – identifier, only meaningful together with the parent timesheet.
//  Date        – day the work was performed.
//  Project     – project the work belongs to.
//  TypeOfWork  – free-form category (e.g. "development", "review").
//  Description – what was done.
//  Hours       – hours worked, between 0 and 24 inclusive.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – timestamp of last update.
type DailyTask struct {
    ID          uint64    // daily_tasks.id
    Date        time.Time // daily_tasks.task_date
    Project     string    // daily_tasks.project
    TypeOfWork  string    // daily_tasks.type_of_work
    Description string    // daily_tasks.description
    Hours       float64   // daily_tasks.hours
    CreatedAt   time.Time // daily_tasks.created_at
    UpdatedAt   time.Time // daily_tasks.updated_at
}

// TotalHours is the derived sum of hours over the current task list.
// It is computed on every call and never stored, so it cannot drift
// from the tasks themselves.
func (t *WeeklyTimesheet) TotalHours() float64 {
    var sum float64
    for _, task := range t.DailyTasks {
        sum += task.Hours
    }
    return sum
}
