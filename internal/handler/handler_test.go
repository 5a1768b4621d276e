package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"campus/internal/attendance"
	"campus/internal/auth"
	"campus/internal/catalog"
	"campus/internal/enrollment"
	"campus/internal/handler"
)

const (
	testKey    = "test-signing-key"
	testIssuer = "campus-test"
)

type env struct {
	router  *gin.Engine
	catalog *catalog.Memory
	ledger  *enrollment.Memory
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat := catalog.NewMemory()
	ledger := enrollment.NewMemory()
	journal := attendance.NewMemory()

	enrolls := enrollment.NewService(cat, ledger)
	checkins := attendance.NewService(journal, ledger, cat, nil)
	h := handler.New(cat, enrolls, checkins)

	r := gin.New()
	group := r.Group("/v1", auth.RequireRole(testKey, testIssuer, auth.RoleStudent))
	h.Register(group)

	return &env{router: r, catalog: cat, ledger: ledger}
}

func token(t *testing.T, subject, role string) string {
	t.Helper()
	pair, err := auth.Issue(subject, role, testIssuer, testKey, time.Minute, time.Minute)
	require.NoError(t, err)
	return pair.AccessToken
}

func (e *env) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func seedCourse(e *env, id string, capacity int, hours float64) {
	e.catalog.Put(catalog.Course{
		ID: id, Name: "Course " + id, Code: "C-" + id,
		Hours: hours, Capacity: capacity, Status: catalog.StatusAvailable,
	})
}

func TestAuthRejections(t *testing.T) {
	e := newEnv(t)
	seedCourse(e, "c1", 5, 10)

	w := e.do(t, http.MethodPost, "/v1/courses/enroll", "", gin.H{"courseId": "c1"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(t, http.MethodPost, "/v1/courses/enroll", token(t, "u1", auth.RoleTeacher), gin.H{"courseId": "c1"})
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestEnrollAndDropFlow(t *testing.T) {
	e := newEnv(t)
	seedCourse(e, "c1", 1, 10)
	s1 := token(t, "s1", auth.RoleStudent)
	s2 := token(t, "s2", auth.RoleStudent)

	w := e.do(t, http.MethodPost, "/v1/courses/enroll", s1, gin.H{"courseId": "c1"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Equal(t, true, body["success"])
	sel := body["selection"].(map[string]any)
	require.Equal(t, "enrolled", sel["status"])
	require.Equal(t, 10.0, sel["remaining_hours"])

	w = e.do(t, http.MethodPost, "/v1/courses/enroll", s2, gin.H{"courseId": "c1"})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "capacity_exceeded", decode(t, w)["kind"])

	w = e.do(t, http.MethodPost, "/v1/courses/drop", s1, gin.H{"courseId": "c1"})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodPost, "/v1/courses/drop", s1, gin.H{"courseId": "c1"})
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "not_enrolled", decode(t, w)["kind"])
}

func TestEnrollValidation(t *testing.T) {
	e := newEnv(t)
	s1 := token(t, "s1", auth.RoleStudent)

	w := e.do(t, http.MethodPost, "/v1/courses/enroll", s1, gin.H{})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodPost, "/v1/courses/enroll", s1, gin.H{"courseId": "ghost"})
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "course_unavailable", decode(t, w)["kind"])
}

func TestCheckInFlow(t *testing.T) {
	e := newEnv(t)
	seedCourse(e, "c1", 5, 10)
	s1 := token(t, "s1", auth.RoleStudent)

	w := e.do(t, http.MethodPost, "/v1/checkins", s1, gin.H{"courseId": "c1"})
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "not_enrolled", decode(t, w)["kind"])

	w = e.do(t, http.MethodPost, "/v1/courses/enroll", s1, gin.H{"courseId": "c1"})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodPost, "/v1/checkins", s1, gin.H{
		"courseId": "c1", "date": "2024-03-01", "location": "hall 3", "deviceInfo": "android",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	require.Equal(t, true, body["success"])
	rec := body["checkin"].(map[string]any)
	require.Equal(t, "2024-03-01", rec["date"])
	require.Equal(t, "present", rec["status"])

	w = e.do(t, http.MethodPost, "/v1/checkins", s1, gin.H{"courseId": "c1", "date": "2024-03-01"})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "duplicate_checkin", decode(t, w)["kind"])

	w = e.do(t, http.MethodPost, "/v1/checkins", s1, gin.H{"courseId": "c1", "date": "March 1"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRemainingHoursReport(t *testing.T) {
	e := newEnv(t)
	seedCourse(e, "c1", 5, 10)
	s1 := token(t, "s1", auth.RoleStudent)

	w := e.do(t, http.MethodPost, "/v1/courses/enroll", s1, gin.H{"courseId": "c1"})
	require.Equal(t, http.StatusOK, w.Code)
	w = e.do(t, http.MethodPost, "/v1/checkins", s1, gin.H{"courseId": "c1", "date": "2024-03-01"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(t, http.MethodGet, "/v1/courses/hours", s1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	courses := decode(t, w)["courses"].([]any)
	require.Len(t, courses, 1)
	row := courses[0].(map[string]any)
	require.Equal(t, "c1", row["id"])
	require.Equal(t, 10.0, row["totalHours"])
	require.Equal(t, 9.0, row["remainingHours"])
}

func TestListAttendanceEndpoint(t *testing.T) {
	e := newEnv(t)
	seedCourse(e, "c1", 5, 10)
	s1 := token(t, "s1", auth.RoleStudent)

	w := e.do(t, http.MethodPost, "/v1/courses/enroll", s1, gin.H{"courseId": "c1"})
	require.Equal(t, http.StatusOK, w.Code)
	for _, date := range []string{"2024-03-01", "2024-03-02"} {
		w = e.do(t, http.MethodPost, "/v1/checkins", s1, gin.H{"courseId": "c1", "date": date})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w = e.do(t, http.MethodGet, "/v1/checkins?courseId=c1&startDate=2024-03-02&endDate=2024-03-02", s1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	records := decode(t, w)["records"].([]any)
	require.Len(t, records, 1)

	w = e.do(t, http.MethodGet, "/v1/checkins", s1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	records = decode(t, w)["records"].([]any)
	require.Len(t, records, 2)
	first := records[0].(map[string]any)
	require.Equal(t, "2024-03-02", first["date"])
}

func TestListAvailableCourses(t *testing.T) {
	e := newEnv(t)
	seedCourse(e, "c1", 5, 10)
	closed := catalog.Course{ID: "c2", Name: "Closed", Hours: 10, Capacity: 5, Status: catalog.StatusClosed}
	e.catalog.Put(closed)
	s1 := token(t, "s1", auth.RoleStudent)

	w := e.do(t, http.MethodGet, "/v1/courses/available", s1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	courses := decode(t, w)["courses"].([]any)
	require.Len(t, courses, 1)
}
