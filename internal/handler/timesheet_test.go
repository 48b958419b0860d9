package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/davitp/timesheet-tracker/internal/model"
	"github.com/davitp/timesheet-tracker/internal/repository"
)

// memStore is an in-memory TimesheetStore with the same ownership and
// uniqueness behavior as the SQL repository.
type memStore struct {
	weeks    map[uint64]*model.WeeklyTimesheet
	nextWeek uint64
	nextTask uint64
}

func newMemStore() *memStore {
	return &memStore{weeks: map[uint64]*model.WeeklyTimesheet{}, nextWeek: 1, nextTask: 1}
}

func (m *memStore) owned(id, userID uint64) *model.WeeklyTimesheet {
	ts, ok := m.weeks[id]
	if !ok || ts.UserID != userID {
		return nil
	}
	return ts
}

func (m *memStore) CreateWeek(ctx context.Context, userID uint64, start, end time.Time) (*model.WeeklyTimesheet, error) {
	for _, ts := range m.weeks {
		if ts.UserID == userID && ts.WeekStartDate.Equal(start) && ts.WeekEndDate.Equal(end) {
			return nil, repository.ErrWeekExists
		}
	}
	ts := &model.WeeklyTimesheet{
		ID:            m.nextWeek,
		UserID:        userID,
		WeekStartDate: start,
		WeekEndDate:   end,
		DailyTasks:    []model.DailyTask{},
	}
	m.nextWeek++
	m.weeks[ts.ID] = ts
	return ts, nil
}

func (m *memStore) GetByIDAndUser(ctx context.Context, id, userID uint64) (*model.WeeklyTimesheet, error) {
	ts := m.owned(id, userID)
	if ts == nil {
		return nil, repository.ErrTimesheetNotFound
	}
	cp := *ts
	cp.DailyTasks = append([]model.DailyTask{}, ts.DailyTasks...)
	return &cp, nil
}

func (m *memStore) CountByUser(ctx context.Context, userID uint64) (int, error) {
	n := 0
	for _, ts := range m.weeks {
		if ts.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *memStore) ListByUser(ctx context.Context, userID uint64, limit, offset int) ([]*model.WeeklyTimesheet, error) {
	var out []*model.WeeklyTimesheet
	for _, ts := range m.weeks {
		if ts.UserID == userID {
			out = append(out, ts)
		}
	}
	return out, nil
}

func (m *memStore) AddTask(ctx context.Context, timesheetID, userID uint64, task *model.DailyTask) error {
	ts := m.owned(timesheetID, userID)
	if ts == nil {
		return repository.ErrTimesheetNotFound
	}
	task.ID = m.nextTask
	m.nextTask++
	ts.DailyTasks = append(ts.DailyTasks, *task)
	return nil
}

func (m *memStore) UpdateTask(ctx context.Context, timesheetID, userID uint64, task *model.DailyTask) error {
	ts := m.owned(timesheetID, userID)
	if ts == nil {
		return repository.ErrTimesheetNotFound
	}
	for i := range ts.DailyTasks {
		if ts.DailyTasks[i].ID == task.ID {
			ts.DailyTasks[i] = *task
			return nil
		}
	}
	return repository.ErrTaskNotFound
}

func (m *memStore) DeleteTask(ctx context.Context, timesheetID, userID, taskID uint64) error {
	ts := m.owned(timesheetID, userID)
	if ts == nil {
		return repository.ErrTimesheetNotFound
	}
	for i := range ts.DailyTasks {
		if ts.DailyTasks[i].ID == taskID {
			ts.DailyTasks = append(ts.DailyTasks[:i], ts.DailyTasks[i+1:]...)
			return nil
		}
	}
	return repository.ErrTaskNotFound
}

// invoke runs a handler method as user uid with an optional JSON body and
// path parameters, returning the recorded response.
func invoke(t *testing.T, fn echo.HandlerFunc, uid uint64, method, body string, params map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, "/timesheet", reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uid)
	names := make([]string, 0, len(params))
	values := make([]string, 0, len(params))
	for k, v := range params {
		names = append(names, k)
		values = append(values, v)
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	if err := fn(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func respMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response %q: %v", rec.Body.String(), err)
	}
	return body.Message
}

const weekBody = `{"weekStartDate":"2026-03-02","weekEndDate":"2026-03-08"}`
const taskBody = `{"date":"2026-03-02","project":"internal","typeOfWork":"development","description":"work","hours":8}`

func TestCreateWeekDuplicateConflicts(t *testing.T) {
	h := NewTimesheetHandler(newMemStore(), nil)

	rec := invoke(t, h.CreateWeek, 1, http.MethodPost, weekBody, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first CreateWeek status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}

	rec = invoke(t, h.CreateWeek, 1, http.MethodPost, weekBody, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("second CreateWeek status = %d, want 400", rec.Code)
	}
	if got := respMessage(t, rec); got != "A timesheet for this week already exists" {
		t.Errorf("message = %q, want %q", got, "A timesheet for this week already exists")
	}

	// The same week pair is free for a different user.
	rec = invoke(t, h.CreateWeek, 2, http.MethodPost, weekBody, nil)
	if rec.Code != http.StatusCreated {
		t.Errorf("CreateWeek for another user status = %d, want 201", rec.Code)
	}
}

func TestWeekAccessIsOwnerScoped(t *testing.T) {
	store := newMemStore()
	owned, err := store.CreateWeek(context.Background(), 2, // belongs to user 2
		time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("seed week: %v", err)
	}
	h := NewTimesheetHandler(store, nil)
	params := map[string]string{"id": "1"}

	// User 1 probing user 2's timesheet sees "not found" everywhere; the
	// responses never betray that the record exists.
	rec := invoke(t, h.GetWeek, 1, http.MethodGet, "", params)
	if rec.Code != http.StatusNotFound {
		t.Errorf("GetWeek status = %d, want 404", rec.Code)
	}
	if got := respMessage(t, rec); got != "Weekly timesheet not found" {
		t.Errorf("GetWeek message = %q, want %q", got, "Weekly timesheet not found")
	}

	rec = invoke(t, h.AddTask, 1, http.MethodPost, taskBody, params)
	if rec.Code != http.StatusNotFound {
		t.Errorf("AddTask status = %d, want 404", rec.Code)
	}

	taskParams := map[string]string{"id": "1", "taskId": "1"}
	rec = invoke(t, h.UpdateTask, 1, http.MethodPut, `{"hours":4}`, taskParams)
	if rec.Code != http.StatusNotFound {
		t.Errorf("UpdateTask status = %d, want 404", rec.Code)
	}
	rec = invoke(t, h.DeleteTask, 1, http.MethodDelete, "", taskParams)
	if rec.Code != http.StatusNotFound {
		t.Errorf("DeleteTask status = %d, want 404", rec.Code)
	}

	// The owner still reaches it.
	rec = invoke(t, h.GetWeek, 2, http.MethodGet, "", params)
	if rec.Code != http.StatusOK {
		t.Errorf("owner GetWeek status = %d, want 200", rec.Code)
	}
	if owned.ID != 1 {
		t.Fatalf("seed week id = %d, want 1", owned.ID)
	}
}

func TestAddTaskNonexistentTimesheet(t *testing.T) {
	h := NewTimesheetHandler(newMemStore(), nil)

	rec := invoke(t, h.AddTask, 1, http.MethodPost, taskBody, map[string]string{"id": "999"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("AddTask status = %d, want 404 (body %s)", rec.Code, rec.Body.String())
	}
	if got := respMessage(t, rec); got != "Weekly timesheet not found" {
		t.Errorf("message = %q, want %q", got, "Weekly timesheet not found")
	}
}

func TestAddTaskRecomputesTotal(t *testing.T) {
	h := NewTimesheetHandler(newMemStore(), nil)

	rec := invoke(t, h.CreateWeek, 1, http.MethodPost, weekBody, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("CreateWeek status = %d", rec.Code)
	}
	params := map[string]string{"id": "1"}

	rec = invoke(t, h.AddTask, 1, http.MethodPost, taskBody, params)
	if rec.Code != http.StatusCreated {
		t.Fatalf("AddTask status = %d (body %s)", rec.Code, rec.Body.String())
	}
	rec = invoke(t, h.AddTask, 1, http.MethodPost,
		`{"date":"2026-03-03","project":"internal","typeOfWork":"review","description":"pr review","hours":7.5}`, params)
	if rec.Code != http.StatusCreated {
		t.Fatalf("second AddTask status = %d", rec.Code)
	}

	var body struct {
		Timesheet struct {
			TotalHours float64 `json:"totalHours"`
		} `json:"timesheet"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Timesheet.TotalHours != 15.5 {
		t.Errorf("totalHours = %v, want 15.5", body.Timesheet.TotalHours)
	}
}
