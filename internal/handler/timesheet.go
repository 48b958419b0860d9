package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/davitp/timesheet-tracker/internal/middleware"
	"github.com/davitp/timesheet-tracker/internal/model"
	"github.com/davitp/timesheet-tracker/internal/queue"
	"github.com/davitp/timesheet-tracker/internal/repository"
	queue_publisher "github.com/davitp/timesheet-tracker/internal/service"
)

// TimesheetStore is the slice of the data layer the timesheet endpoints
// need. *repository.TimesheetRepo satisfies it; tests substitute an
// in-memory implementation.
type TimesheetStore interface {
	CreateWeek(ctx context.Context, userID uint64, start, end time.Time) (*model.WeeklyTimesheet, error)
	GetByIDAndUser(ctx context.Context, id, userID uint64) (*model.WeeklyTimesheet, error)
	CountByUser(ctx context.Context, userID uint64) (int, error)
	ListByUser(ctx context.Context, userID uint64, limit, offset int) ([]*model.WeeklyTimesheet, error)
	AddTask(ctx context.Context, timesheetID, userID uint64, task *model.DailyTask) error
	UpdateTask(ctx context.Context, timesheetID, userID uint64, task *model.DailyTask) error
	DeleteTask(ctx context.Context, timesheetID, userID, taskID uint64) error
}

// TimesheetHandler bundles the dependencies of the weekly timesheet
// endpoints. Every operation is scoped by the acting user resolved by the
// auth guard; a timesheet owned by someone else behaves exactly like a
// missing one.
type TimesheetHandler struct {
	Timesheets TimesheetStore
	Cache      *middleware.CacheInvalidator // nil when caching is disabled
}

func NewTimesheetHandler(store TimesheetStore, cache *middleware.CacheInvalidator) *TimesheetHandler {
	if store == nil {
		panic("nil store passed to NewTimesheetHandler")
	}
	return &TimesheetHandler{Timesheets: store, Cache: cache}
}

// ----- DTOs -----

type createWeekReq struct {
	WeekStartDate string `json:"weekStartDate"`
	WeekEndDate   string `json:"weekEndDate"`
}

type addTaskReq struct {
	Date        string   `json:"date"`
	Project     string   `json:"project"`
	TypeOfWork  string   `json:"typeOfWork"`
	Description string   `json:"description"`
	Hours       *float64 `json:"hours"`
}

// updateTaskReq uses pointers throughout: only fields present in the body
// are applied, everything else keeps its stored value.
type updateTaskReq struct {
	Date        *string  `json:"date"`
	Project     *string  `json:"project"`
	TypeOfWork  *string  `json:"typeOfWork"`
	Description *string  `json:"description"`
	Hours       *float64 `json:"hours"`
}

type taskResp struct {
	ID          uint64    `json:"id"`
	Date        string    `json:"date"`
	Project     string    `json:"project"`
	TypeOfWork  string    `json:"typeOfWork"`
	Description string    `json:"description"`
	Hours       float64   `json:"hours"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type timesheetResp struct {
	ID            uint64     `json:"id"`
	WeekStartDate string     `json:"weekStartDate"`
	WeekEndDate   string     `json:"weekEndDate"`
	DailyTasks    []taskResp `json:"dailyTasks"`
	TotalHours    float64    `json:"totalHours"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type paginationResp struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// totalsResp is the {id, totalHours} fragment returned by task mutations.
type totalsResp struct {
	ID         uint64  `json:"id"`
	TotalHours float64 `json:"totalHours"`
}

const dateLayout = "2006-01-02"

func toTaskResp(t model.DailyTask) taskResp {
	return taskResp{
		ID:          t.ID,
		Date:        t.Date.Format(dateLayout),
		Project:     t.Project,
		TypeOfWork:  t.TypeOfWork,
		Description: t.Description,
		Hours:       t.Hours,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toTimesheetResp(ts *model.WeeklyTimesheet) timesheetResp {
	tasks := make([]taskResp, 0, len(ts.DailyTasks))
	for _, t := range ts.DailyTasks {
		tasks = append(tasks, toTaskResp(t))
	}
	return timesheetResp{
		ID:            ts.ID,
		WeekStartDate: ts.WeekStartDate.Format(dateLayout),
		WeekEndDate:   ts.WeekEndDate.Format(dateLayout),
		DailyTasks:    tasks,
		TotalHours:    ts.TotalHours(), // derived, computed at serialization time
		CreatedAt:     ts.CreatedAt,
		UpdatedAt:     ts.UpdatedAt,
	}
}

// CreateWeek handles POST /timesheet. Despite the tracked system naming this
// "create or get", it only ever creates: an exact duplicate week pair for
// the same user is a 400 conflict.
func (h *TimesheetHandler) CreateWeek(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
	}
	var req createWeekReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	if req.WeekStartDate == "" || req.WeekEndDate == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Week start date and end date are required"})
	}
	start, ok := parseDate(req.WeekStartDate)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid date format"})
	}
	end, ok := parseDate(req.WeekEndDate)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid date format"})
	}
	if start.After(end) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Start date cannot be after end date"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ts, err := h.Timesheets.CreateWeek(ctx, userID, start, end)
	if err != nil {
		if errors.Is(err, repository.ErrWeekExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "A timesheet for this week already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	h.Cache.InvalidateUser(ctx, userID)

	return c.JSON(http.StatusCreated, echo.Map{
		"message":   "Weekly timesheet created successfully",
		"timesheet": toTimesheetResp(ts),
	})
}

// ListWeeks handles GET /timesheet?page=&limit=. Weeks come back newest
// first; an out-of-range page is clamped to the last existing page.
func (h *TimesheetHandler) ListWeeks(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
	}
	page, limit := parsePagination(c.QueryParam("page"), c.QueryParam("limit"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	total, err := h.Timesheets.CountByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	pages := totalPages(total, limit)
	page = clampPage(page, pages)

	items, err := h.Timesheets.ListByUser(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	out := make([]timesheetResp, 0, len(items))
	for _, ts := range items {
		out = append(out, toTimesheetResp(ts))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":    "Weekly timesheets retrieved successfully",
		"timesheets": out,
		"pagination": paginationResp{
			CurrentPage:  page,
			TotalPages:   pages,
			TotalItems:   total,
			ItemsPerPage: limit,
		},
	})
}

// GetWeek handles GET /timesheet/:id.
func (h *TimesheetHandler) GetWeek(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid timesheet ID"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ts, err := h.Timesheets.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrTimesheetNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Weekly timesheet not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":   "Weekly timesheet retrieved successfully",
		"timesheet": toTimesheetResp(ts),
	})
}

// AddTask handles POST /timesheet/:id/task. All fields are required; string
// fields are trimmed and hours must lie in [0,24].
func (h *TimesheetHandler) AddTask(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid timesheet ID"})
	}
	var req addTaskReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	if req.Date == "" || req.Project == "" || req.TypeOfWork == "" || req.Description == "" || req.Hours == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Date, project, type of work, description, and hours are required"})
	}
	if msg := validateHours(*req.Hours); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": msg})
	}
	date, ok := parseDate(req.Date)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid date format"})
	}

	task := model.DailyTask{
		Date:        date,
		Project:     trim(req.Project),
		TypeOfWork:  trim(req.TypeOfWork),
		Description: trim(req.Description),
		Hours:       *req.Hours,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Timesheets.AddTask(ctx, id, userID, &task); err != nil {
		if errors.Is(err, repository.ErrTimesheetNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Weekly timesheet not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	ts, err := h.Timesheets.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	h.Cache.InvalidateUser(ctx, userID)
	h.publishTaskRecorded(userID, ts, task)

	return c.JSON(http.StatusCreated, echo.Map{
		"message":   "Daily task added successfully",
		"task":      toTaskResp(task),
		"timesheet": totalsResp{ID: ts.ID, TotalHours: ts.TotalHours()},
	})
}

// UpdateTask handles PUT /timesheet/:id/task/:taskId with partial updates.
func (h *TimesheetHandler) UpdateTask(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid timesheet ID"})
	}
	taskID, err := strconv.ParseUint(c.Param("taskId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid task ID"})
	}
	var req updateTaskReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	if req.Hours != nil {
		if msg := validateHours(*req.Hours); msg != "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": msg})
		}
	}
	var date time.Time
	if req.Date != nil {
		var ok bool
		if date, ok = parseDate(*req.Date); !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid date format"})
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ts, err := h.Timesheets.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrTimesheetNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Weekly timesheet not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	var task *model.DailyTask
	for i := range ts.DailyTasks {
		if ts.DailyTasks[i].ID == taskID {
			task = &ts.DailyTasks[i]
			break
		}
	}
	if task == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Daily task not found"})
	}

	// Apply only the fields present in the body.
	if req.Date != nil {
		task.Date = date
	}
	if req.Project != nil {
		task.Project = trim(*req.Project)
	}
	if req.TypeOfWork != nil {
		task.TypeOfWork = trim(*req.TypeOfWork)
	}
	if req.Description != nil {
		task.Description = trim(*req.Description)
	}
	if req.Hours != nil {
		task.Hours = *req.Hours
	}

	if err := h.Timesheets.UpdateTask(ctx, id, userID, task); err != nil {
		switch {
		case errors.Is(err, repository.ErrTimesheetNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Weekly timesheet not found"})
		case errors.Is(err, repository.ErrTaskNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Daily task not found"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
		}
	}
	fresh, err := h.Timesheets.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	h.Cache.InvalidateUser(ctx, userID)

	return c.JSON(http.StatusOK, echo.Map{
		"message":   "Daily task updated successfully",
		"task":      toTaskResp(*task),
		"timesheet": totalsResp{ID: fresh.ID, TotalHours: fresh.TotalHours()},
	})
}

// DeleteTask handles DELETE /timesheet/:id/task/:taskId.
func (h *TimesheetHandler) DeleteTask(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid timesheet ID"})
	}
	taskID, err := strconv.ParseUint(c.Param("taskId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid task ID"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Timesheets.DeleteTask(ctx, id, userID, taskID); err != nil {
		switch {
		case errors.Is(err, repository.ErrTimesheetNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Weekly timesheet not found"})
		case errors.Is(err, repository.ErrTaskNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Daily task not found"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
		}
	}
	ts, err := h.Timesheets.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	h.Cache.InvalidateUser(ctx, userID)

	return c.JSON(http.StatusOK, echo.Map{
		"message":   "Daily task deleted successfully",
		"timesheet": totalsResp{ID: ts.ID, TotalHours: ts.TotalHours()},
	})
}

// publishTaskRecorded emits the activity event for a newly recorded task.
// Publishing happens off the request path; failures are logged by the
// publisher and never affect the response.
func (h *TimesheetHandler) publishTaskRecorded(userID uint64, ts *model.WeeklyTimesheet, task model.DailyTask) {
	ev := queue.TaskRecordedEvent{
		TimesheetID: ts.ID,
		TaskID:      task.ID,
		UserID:      userID,
		Project:     task.Project,
		TypeOfWork:  task.TypeOfWork,
		TaskDate:    task.Date.Format(dateLayout),
		Hours:       task.Hours,
		TotalHours:  ts.TotalHours(),
		RecordedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queue_publisher.PublishTaskRecorded(ctx, ev)
	}()
}
