package http

import (
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/persistence"
	"github.com/spec-kit/helpdesk/internal/repository/sqlite"
	"github.com/spec-kit/helpdesk/internal/service"
)

const cookieName = "helpdesk_session"

type testServer struct {
	app *fiber.App
}

func newTestServer(t *testing.T, limits config.RateLimitConfig) *testServer {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	db, err := persistence.NewSQLite(ctx, ":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, persistence.MigrateSQLite(ctx, db.DB, logger))
	store := sqlite.NewStore(db.DB)

	sessions := auth.NewMemorySessionStore(time.Hour)
	dispatcher := events.NewInMemoryDispatcher(logger)
	service.NewNotificationService(dispatcher, logger, config.NotificationConfig{}).RegisterHandlers()

	identity := service.NewIdentityService(config.AuthConfig{
		BcryptCost:        bcrypt.MinCost,
		SeedAdminEmail:    "admin@local",
		SeedAdminName:     "Administrator",
		SeedAdminPassword: "admin123",
	}, service.IdentityDependencies{UserRepo: store.Users, Sessions: sessions, Dispatcher: dispatcher, Logger: logger})
	_, err = identity.EnsureSeedAdmin(ctx)
	require.NoError(t, err)

	policy := auth.Policy{}
	tickets := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  store.Tickets,
		CommentRepo: store.Comments,
		Taxonomy:    domain.DefaultTaxonomy(),
		Policy:      policy,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})

	metrics := observability.NewMetrics()
	sessionMW := auth.NewSessionMiddleware(auth.NewCookieSigner("test-secret"), identity, cookieName, false)

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health: handlers.NewHealthHandler("helpdesk", "test", map[string]handlers.Pinger{
			"database": db,
			"sessions": sessions,
		}, metrics),
		Home:        handlers.NewHomeHandler(tickets),
		Users:       handlers.NewUsersHandler(identity, sessionMW),
		Tickets:     handlers.NewTicketsHandler(tickets),
		Admin:       handlers.NewAdminTicketsHandler(tickets),
		Sessions:    sessionMW,
		AuthLimiter: NewRateLimiter(limits),
		Policy:      policy,
	})
	return &testServer{app: app}
}

func generousLimits() config.RateLimitConfig {
	return config.RateLimitConfig{AuthRequests: 1000, AuthWindowSec: 1, AuthBurst: 1000}
}

type response struct {
	status  int
	body    map[string]any
	cookies []*nethttp.Cookie
}

func (s *testServer) do(t *testing.T, method, target, session string, payload any) response {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != "" {
		req.AddCookie(&nethttp.Cookie{Name: cookieName, Value: session})
	}
	return s.send(t, req)
}

func (s *testServer) send(t *testing.T, req *nethttp.Request) response {
	t.Helper()
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := response{status: resp.StatusCode, cookies: resp.Cookies()}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out.body), string(raw))
	}
	return out
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	resp := s.do(t, "POST", "/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, fiber.StatusOK, resp.status, resp.body)
	for _, c := range resp.cookies {
		if c.Name == cookieName && c.Value != "" {
			return c.Value
		}
	}
	t.Fatalf("login did not set %s", cookieName)
	return ""
}

func (s *testServer) registerAndLogin(t *testing.T, name, email string) string {
	t.Helper()
	resp := s.do(t, "POST", "/auth/register", "", map[string]string{"name": name, "email": email, "password": "secret"})
	require.Equal(t, fiber.StatusCreated, resp.status, resp.body)
	return s.login(t, email, "secret")
}

func errorCode(r response) string {
	errBody, _ := r.body["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}

func userField(r response, field string) any {
	user, _ := r.body["user"].(map[string]any)
	return user[field]
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, generousLimits())

	live := s.do(t, "GET", "/health/live", "", nil)
	assert.Equal(t, fiber.StatusOK, live.status)
	assert.Equal(t, "alive", live.body["status"])

	ready := s.do(t, "GET", "/health/ready", "", nil)
	assert.Equal(t, fiber.StatusOK, ready.status)
	assert.Equal(t, map[string]any{"database": "ok", "sessions": "ok"}, ready.body["dependencies"])

	metrics := s.do(t, "GET", "/health/metrics", "", nil)
	assert.Equal(t, fiber.StatusOK, metrics.status)
	assert.Contains(t, metrics.body, "requests")
}

func TestAnonymousAccess(t *testing.T) {
	s := newTestServer(t, generousLimits())

	home := s.do(t, "GET", "/", "", nil)
	assert.Equal(t, fiber.StatusOK, home.status)
	assert.Contains(t, home.body, "user")
	assert.Nil(t, home.body["user"])

	for _, path := range []string{"/app", "/tickets", "/profile", "/admin/tickets"} {
		resp := s.do(t, "GET", path, "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.status, path)
		assert.Equal(t, "UNAUTHORIZED", errorCode(resp), path)
		details := resp.body["error"].(map[string]any)["details"].(map[string]any)
		assert.Equal(t, "/login?next="+url.QueryEscape(path), details["redirect"])
	}

	missing := s.do(t, "GET", "/no/such/route", "", nil)
	assert.Equal(t, fiber.StatusNotFound, missing.status)
	assert.Equal(t, "NOT_FOUND", errorCode(missing))
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t, generousLimits())

	created := s.do(t, "POST", "/auth/register", "", map[string]string{
		"name": "Ana", "email": "Ana@Example.com", "password": "pw",
	})
	require.Equal(t, fiber.StatusCreated, created.status)
	registered := created.body["registered"].(map[string]any)
	assert.Equal(t, "ana@example.com", registered["email"])
	assert.NotContains(t, registered, "password_hash")

	dup := s.do(t, "POST", "/auth/register", "", map[string]string{
		"name": "Ana", "email": "ana@example.com", "password": "pw",
	})
	assert.Equal(t, fiber.StatusConflict, dup.status)
	assert.Equal(t, "DUPLICATE_EMAIL", errorCode(dup))

	empty := s.do(t, "POST", "/auth/register", "", map[string]string{"name": "", "email": "x@y.z", "password": "pw"})
	assert.Equal(t, fiber.StatusBadRequest, empty.status)
	assert.Equal(t, "INVALID_INPUT", errorCode(empty))

	bad := s.do(t, "POST", "/auth/login", "", map[string]string{"email": "ana@example.com", "password": "nope"})
	assert.Equal(t, fiber.StatusUnauthorized, bad.status)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(bad))

	tests := []struct {
		next string
		want string
	}{
		{"", "/app"},
		{"/tickets/7", "/tickets/7"},
		{"//evil.example", "/app"},
		{"https://evil.example/", "/app"},
	}
	for _, tt := range tests {
		target := "/auth/login"
		if tt.next != "" {
			target += "?next=" + url.QueryEscape(tt.next)
		}
		resp := s.do(t, "POST", target, "", map[string]string{"email": "ana@example.com", "password": "pw"})
		require.Equal(t, fiber.StatusOK, resp.status)
		assert.Equal(t, tt.want, resp.body["redirect"], tt.next)
		assert.Equal(t, "Ana", userField(resp, "name"))
	}
}

func TestFormEncodedLogin(t *testing.T) {
	s := newTestServer(t, generousLimits())

	form := url.Values{"email": {"admin@local"}, "password": {"admin123"}}
	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := s.send(t, req)

	require.Equal(t, fiber.StatusOK, resp.status)
	assert.Equal(t, "admin", userField(resp, "role"))
}

func TestTicketFlow(t *testing.T) {
	s := newTestServer(t, generousLimits())
	owner := s.registerAndLogin(t, "Owner", "owner@example.com")
	stranger := s.registerAndLogin(t, "Stranger", "stranger@example.com")
	admin := s.login(t, "admin@local", "admin123")

	form := s.do(t, "GET", "/tickets/new", owner, nil)
	require.Equal(t, fiber.StatusOK, form.status)
	assert.Len(t, form.body["departments"], 4)

	invalid := s.do(t, "POST", "/tickets", owner, map[string]string{
		"title": "t", "description": "d", "department": "Support", "subcategory": "VPN",
	})
	assert.Equal(t, fiber.StatusBadRequest, invalid.status)
	assert.Equal(t, "INVALID_TAXONOMY", errorCode(invalid))

	created := s.do(t, "POST", "/tickets", owner, map[string]string{
		"title": "Laptop", "description": "won't boot", "department": "Support", "subcategory": "Hardware",
	})
	require.Equal(t, fiber.StatusCreated, created.status, created.body)
	ticket := created.body["ticket"].(map[string]any)
	assert.Equal(t, "open", ticket["status"])
	id := int64(ticket["id"].(float64))
	path := "/tickets/" + jsonNumber(id)

	list := s.do(t, "GET", "/tickets?status=bogus", owner, nil)
	require.Equal(t, fiber.StatusOK, list.status)
	assert.Len(t, list.body["tickets"], 1)
	assert.Equal(t, "", list.body["status"])

	assert.Equal(t, fiber.StatusNotFound, s.do(t, "GET", path, stranger, nil).status)
	assert.Equal(t, fiber.StatusNotFound, s.do(t, "GET", "/tickets/abc", owner, nil).status)

	forbidden := s.do(t, "POST", path+"/status", stranger, map[string]string{"status": "closed"})
	assert.Equal(t, fiber.StatusForbidden, forbidden.status)
	assert.Equal(t, "FORBIDDEN", errorCode(forbidden))

	badStatus := s.do(t, "POST", path+"/status", owner, map[string]string{"status": "archived"})
	assert.Equal(t, "INVALID_STATUS", errorCode(badStatus))

	emptyComment := s.do(t, "POST", path+"/comments", owner, map[string]string{"body": "   "})
	assert.Equal(t, "EMPTY_BODY", errorCode(emptyComment))

	comment := s.do(t, "POST", path+"/comments", owner, map[string]string{"body": " any news? "})
	require.Equal(t, fiber.StatusCreated, comment.status)
	assert.Equal(t, "any news?", comment.body["comment"].(map[string]any)["body"])

	updated := s.do(t, "POST", path+"/status", admin, map[string]string{"status": "in_progress"})
	require.Equal(t, fiber.StatusOK, updated.status)
	assert.Equal(t, "in_progress", updated.body["ticket"].(map[string]any)["status"])

	reply := s.do(t, "POST", path+"/comments", admin, map[string]string{"body": "on it"})
	require.Equal(t, fiber.StatusCreated, reply.status)

	detail := s.do(t, "GET", path, owner, nil)
	require.Equal(t, fiber.StatusOK, detail.status)
	assert.Equal(t, "in_progress", detail.body["ticket"].(map[string]any)["status"])
	comments := detail.body["comments"].([]any)
	require.Len(t, comments, 2)
	assert.Equal(t, "Owner", comments[0].(map[string]any)["author_name"])
	assert.Equal(t, "admin", comments[1].(map[string]any)["author_role"])
	assert.Equal(t, "Owner", userField(detail, "name"))
}

func TestAdminConsole(t *testing.T) {
	s := newTestServer(t, generousLimits())
	client := s.registerAndLogin(t, "Client", "client@example.com")
	admin := s.login(t, "admin@local", "admin123")

	created := s.do(t, "POST", "/tickets", client, map[string]string{
		"title": "VPN down", "description": "no tunnel", "department": "Infrastructure", "subcategory": "VPN",
	})
	require.Equal(t, fiber.StatusCreated, created.status)

	denied := s.do(t, "GET", "/admin/tickets", client, nil)
	assert.Equal(t, fiber.StatusForbidden, denied.status)
	assert.Equal(t, "/app", denied.body["error"].(map[string]any)["details"].(map[string]any)["redirect"])

	rows := s.do(t, "GET", "/admin/tickets?status=open", admin, nil)
	require.Equal(t, fiber.StatusOK, rows.status)
	list := rows.body["tickets"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, "client@example.com", list[0].(map[string]any)["author_email"])

	home := s.do(t, "GET", "/app", admin, nil)
	require.Equal(t, fiber.StatusOK, home.status)
	kpis := home.body["kpis"].(map[string]any)
	assert.Equal(t, float64(1), kpis["open"])
	assert.Equal(t, float64(1), kpis["total"])

	clientHome := s.do(t, "GET", "/app", client, nil)
	require.Equal(t, fiber.StatusOK, clientHome.status)
	assert.Nil(t, clientHome.body["kpis"])
}

func TestProfileAndLogout(t *testing.T) {
	s := newTestServer(t, generousLimits())
	session := s.registerAndLogin(t, "Pat", "pat@example.com")

	profile := s.do(t, "GET", "/profile", session, nil)
	require.Equal(t, fiber.StatusOK, profile.status)
	assert.Equal(t, "pat@example.com", userField(profile, "email"))

	renamed := s.do(t, "POST", "/profile/name", session, map[string]string{"name": "Patricia"})
	require.Equal(t, fiber.StatusOK, renamed.status)
	assert.Equal(t, "Patricia", userField(renamed, "name"))

	mismatch := s.do(t, "POST", "/profile/password", session, map[string]string{
		"current_password": "secret", "new_password": "a", "confirm_password": "b",
	})
	assert.Equal(t, "MISMATCH", errorCode(mismatch))

	changed := s.do(t, "POST", "/profile/password", session, map[string]string{
		"current_password": "secret", "new_password": "fresh", "confirm_password": "fresh",
	})
	require.Equal(t, fiber.StatusOK, changed.status)

	out := s.do(t, "POST", "/auth/logout", session, nil)
	require.Equal(t, fiber.StatusOK, out.status)
	assert.Nil(t, out.body["user"])

	again := s.do(t, "GET", "/auth/logout", session, nil)
	assert.Equal(t, fiber.StatusOK, again.status)

	assert.Equal(t, fiber.StatusUnauthorized, s.do(t, "GET", "/profile", session, nil).status)
	s.login(t, "pat@example.com", "fresh")
}

func TestAuthRateLimit(t *testing.T) {
	s := newTestServer(t, config.RateLimitConfig{AuthRequests: 2, AuthWindowSec: 60, AuthBurst: 2})

	creds := map[string]string{"email": "admin@local", "password": "wrong"}
	assert.Equal(t, fiber.StatusUnauthorized, s.do(t, "POST", "/auth/login", "", creds).status)
	assert.Equal(t, fiber.StatusUnauthorized, s.do(t, "POST", "/auth/login", "", creds).status)

	limited := s.do(t, "POST", "/auth/login", "", creds)
	assert.Equal(t, fiber.StatusTooManyRequests, limited.status)
	assert.Equal(t, "RATE_LIMITED", errorCode(limited))
}

func jsonNumber(n int64) string {
	raw, _ := json.Marshal(n)
	return string(raw)
}
