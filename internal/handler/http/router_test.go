package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/advance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/realtime"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type stubAttendanceService struct {
	attendance.AttendanceService
	scan func(code string) (attendance.ScanResponse, error)
}

func (s stubAttendanceService) Scan(_ context.Context, req attendance.ScanRequest) (attendance.ScanResponse, error) {
	return s.scan(req.Code)
}

type stubReportService struct {
	report.ReportService
}

func (stubReportService) ExportMonthly(_ context.Context, req report.MonthlyReportRequest, format report.Format) (report.ExportFile, error) {
	if err := req.Validate(); err != nil {
		return report.ExportFile{}, err
	}
	return report.ExportFile{
		Filename:    fmt.Sprintf("payroll_%04d%02d.%s", req.Year, req.Month, format),
		ContentType: "text/csv; charset=utf-8",
		Data:        []byte("matricule,net_pay\nEMP-001,3530.00\n"),
	}, nil
}

type stubUserService struct {
	user.UserService
}

func (stubUserService) ListUsers(context.Context) ([]user.UserResponse, error) {
	return []user.UserResponse{{ID: "u-admin", Email: "admin@example.com", Role: "admin"}}, nil
}

type stubAuthService struct {
	auth.AuthService
}

func (stubAuthService) Me(ctx context.Context) (auth.SessionResponse, error) {
	sess, ok := session.FromContext(ctx)
	if !ok {
		return auth.SessionResponse{}, auth.ErrNoSession
	}
	return auth.SessionResponse{UserID: sess.UserID, Email: sess.Email, Role: string(sess.Role)}, nil
}

type testServer struct {
	router http.Handler
	jwt    jwt.Service
	hub    *realtime.Hub
}

func newTestServer(t *testing.T, attendanceService attendance.AttendanceService) *testServer {
	t.Helper()
	jwtService := jwt.NewJWTService(handlerTestSecret, "1h", "24h", false)
	hub := realtime.NewHub()

	handlers := Handlers{
		Auth:       NewAuthHandler(jwtService, stubAuthService{}, nil, "http://localhost:3000", false),
		Attendance: NewAttendanceHandler(attendanceService),
		Employee:   NewEmployeeHandler(struct{ employee.EmployeeService }{}),
		Advance:    NewAdvanceHandler(struct{ advance.AdvanceService }{}),
		Report:     NewReportHandler(stubReportService{}),
		Dashboard:  NewDashboardHandler(struct{ dashboard.DashboardService }{}),
		User:       NewUserHandler(stubUserService{}),
		Settings:   NewSettingsHandler(struct{ settings.SettingsService }{}),
		Realtime:   NewRealtimeHandler(jwtService, hub),
	}
	router := NewRouter(RouterConfig{
		AppName:        "attendance-test",
		Env:            "test",
		LogLevel:       slog.LevelError,
		AllowedOrigins: []string{"http://localhost:3000"},
	}, jwtService, handlers)

	return &testServer{router: router, jwt: jwtService, hub: hub}
}

func (s *testServer) token(t *testing.T, role user.Role) string {
	t.Helper()
	token, _, err := s.jwt.GenerateAccessToken(session.Session{UserID: "u-" + string(role), Email: string(role) + "@example.com", Role: role})
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func scanByCode(outcomes map[string]error) stubAttendanceService {
	return stubAttendanceService{scan: func(code string) (attendance.ScanResponse, error) {
		if err, ok := outcomes[code]; ok {
			return attendance.ScanResponse{}, err
		}
		return attendance.ScanResponse{
			Action:    attendance.ScanCheckIn,
			Greeting:  attendance.GreetingMorning,
			Matricule: code,
			Time:      "08:10",
		}, nil
	}}
}

func TestScan_RequiresAuthentication(t *testing.T) {
	srv := newTestServer(t, scanByCode(nil))

	rec := srv.do(t, http.MethodPost, "/api/v1/attendance/scan", "", map[string]string{"code": "EMP-001"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	refresh, _, err := srv.jwt.GenerateRefreshToken("u-1")
	require.NoError(t, err)
	rec = srv.do(t, http.MethodPost, "/api/v1/attendance/scan", refresh, map[string]string{"code": "EMP-001"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "refresh tokens are not access tokens")
}

func TestScan_Outcomes(t *testing.T) {
	srv := newTestServer(t, scanByCode(map[string]error{
		"NOPE":    attendance.ErrUnknownEmployee,
		"DONE":    attendance.ErrAlreadyClosed,
		"DB-DOWN": attendance.Unavailable(fmt.Errorf("connection refused")),
	}))
	token := srv.token(t, user.RoleUser)

	tests := []struct {
		code       string
		wantStatus int
		wantCode   string
	}{
		{"EMP-001", http.StatusCreated, ""},
		{"NOPE", http.StatusNotFound, "UNRECOGNIZED_CODE"},
		{"DONE", http.StatusConflict, "ALREADY_CLOSED"},
		{"DB-DOWN", http.StatusServiceUnavailable, "STORE_UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rec := srv.do(t, http.MethodPost, "/api/v1/attendance/scan", token, map[string]string{"code": tt.code})
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			resp := decodeResponse(t, rec)
			if tt.wantCode == "" {
				assert.True(t, resp.Success)
				return
			}
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestScan_StoreUnavailableKeepsCause(t *testing.T) {
	srv := newTestServer(t, scanByCode(map[string]error{
		"DB-DOWN": attendance.Unavailable(fmt.Errorf("connection refused")),
	}))

	rec := srv.do(t, http.MethodPost, "/api/v1/attendance/scan", srv.token(t, user.RoleUser), map[string]string{"code": "DB-DOWN"})
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Message, "connection refused")
}

func TestScan_MalformedBody(t *testing.T) {
	srv := newTestServer(t, scanByCode(nil))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/attendance/scan", strings.NewReader("{not json"))
	req.Header.Set("Authorization", "Bearer "+srv.token(t, user.RoleUser))
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPermissions(t *testing.T) {
	srv := newTestServer(t, scanByCode(nil))

	rec := srv.do(t, http.MethodGet, "/api/v1/users", srv.token(t, user.RoleUser), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/users", srv.token(t, user.RoleAdmin), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/reports/monthly/export?month=3&year=2025", srv.token(t, user.RoleUser), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMe_ReturnsSessionFromToken(t *testing.T) {
	srv := newTestServer(t, scanByCode(nil))

	rec := srv.do(t, http.MethodGet, "/api/v1/auth/me", srv.token(t, user.RoleAdmin), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data auth.SessionResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "u-admin", body.Data.UserID)
	assert.Equal(t, "admin", body.Data.Role)
}

func TestExportMonthly(t *testing.T) {
	srv := newTestServer(t, scanByCode(nil))
	token := srv.token(t, user.RoleAdmin)

	rec := srv.do(t, http.MethodGet, "/api/v1/reports/monthly/export?month=3&year=2025&format=csv", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="payroll_202503.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "EMP-001,3530.00")

	rec = srv.do(t, http.MethodGet, "/api/v1/reports/monthly/export?month=3&year=2025&format=pdf", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/reports/monthly/export?month=13&year=2025", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRealtimeStream_Rejects(t *testing.T) {
	srv := newTestServer(t, scanByCode(nil))

	rec := srv.do(t, http.MethodGet, "/api/v1/realtime/attendances", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/realtime/attendances?token=garbage", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	sse, _, err := srv.jwt.GenerateSSEToken("u-1")
	require.NoError(t, err)
	rec = srv.do(t, http.MethodGet, "/api/v1/realtime/payroll?token="+sse, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRealtimeStream_DeliversChanges(t *testing.T) {
	srv := newTestServer(t, scanByCode(nil))
	sse, _, err := srv.jwt.GenerateSSEToken("u-1")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/realtime/attendances?token="+sse, nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.router.ServeHTTP(rec, req)
	}()

	require.Eventually(t, func() bool {
		return srv.hub.SubscriberCount(realtime.TableAttendances) == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, srv.hub.Publish(context.Background(), realtime.NewChange(realtime.TableAttendances, realtime.ActionInsert, "att-1")))
	require.NoError(t, srv.hub.Publish(context.Background(), realtime.NewChange(realtime.TableEmployees, realtime.ActionUpdate, "emp-1")))

	// Give the stream a moment to write before closing it
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, body, "event: connected")
	assert.Contains(t, body, "event: change")
	assert.Contains(t, body, `"record_id":"att-1"`)
	assert.NotContains(t, body, "emp-1")
	assert.Zero(t, srv.hub.SubscriberCount(realtime.TableAttendances))
}
