package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/circulation/internal/config"
	"github.com/mrlokans/circulation/internal/entities"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupMiddleware(t *testing.T, mode config.AuthMode) (*Middleware, *Service) {
	t.Helper()
	cfg := config.Auth{Mode: mode, BcryptCost: 4}
	svc := setupService(t, cfg)
	return NewMiddleware(svc, nil, cfg), svc
}

// staffRouter mirrors how the API wires the middleware: identity on every
// request, role checks on the staff routes only.
func staffRouter(mw *Middleware) *gin.Engine {
	router := gin.New()
	router.Use(mw.Handler())
	router.GET("/api/books", func(c *gin.Context) {
		staff, _ := CurrentStaff(c)
		c.JSON(http.StatusOK, staff)
	})
	router.POST("/api/books", mw.RequireRole(entities.UserRoleLibrarian, entities.UserRoleAdmin), func(c *gin.Context) {
		staff, _ := CurrentStaff(c)
		c.JSON(http.StatusCreated, staff)
	})
	router.GET("/api/audit", mw.RequireRole(entities.UserRoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/api/me", mw.RequireAuth(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func bearerRequest(method, path, token string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestMiddleware_NoAuthMode(t *testing.T) {
	mw, _ := setupMiddleware(t, config.AuthModeNone)
	router := staffRouter(mw)

	for _, req := range []*http.Request{
		bearerRequest(http.MethodGet, "/api/books", ""),
		bearerRequest(http.MethodPost, "/api/books", ""),
		bearerRequest(http.MethodGet, "/api/audit", ""),
		bearerRequest(http.MethodGet, "/api/me", ""),
	} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code >= 400 {
			t.Errorf("%s %s: expected success with auth disabled, got %d", req.Method, req.URL.Path, rr.Code)
		}
	}
}

func TestMiddleware_PatronRoutesStayOpen(t *testing.T) {
	mw, _ := setupMiddleware(t, config.AuthModeLocal)
	router := staffRouter(mw)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, bearerRequest(http.MethodGet, "/api/books", ""))

	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200 for anonymous catalog read, got %d", rr.Code)
	}
}

func TestMiddleware_StaffRoutesReturn401(t *testing.T) {
	mw, _ := setupMiddleware(t, config.AuthModeLocal)
	router := staffRouter(mw)

	for _, req := range []*http.Request{
		bearerRequest(http.MethodPost, "/api/books", ""),
		bearerRequest(http.MethodGet, "/api/me", ""),
		bearerRequest(http.MethodPost, "/api/books", "invalid-token"),
	} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", req.Method, req.URL.Path, rr.Code)
		}
	}
}

func TestMiddleware_BearerAuth_ValidToken(t *testing.T) {
	mw, svc := setupMiddleware(t, config.AuthModeLocal)
	router := staffRouter(mw)

	user, err := svc.CreateUser("desk", testPassword, entities.UserRoleLibrarian)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	token, err := svc.GenerateToken(user.ID)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, bearerRequest(http.MethodPost, "/api/books", token))
	if rr.Code != http.StatusCreated {
		t.Errorf("Expected 201 for librarian, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, bearerRequest(http.MethodGet, "/api/audit", token))
	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for librarian on admin route, got %d", rr.Code)
	}
}

func TestMiddleware_BearerAuth_MalformedHeader(t *testing.T) {
	mw, svc := setupMiddleware(t, config.AuthModeLocal)
	router := staffRouter(mw)

	user, _ := svc.CreateUser("desk", testPassword, entities.UserRoleAdmin)
	token, _ := svc.GenerateToken(user.ID)

	headers := []string{
		token,
		"Basic " + token,
		"Bearer",
		"Token " + token,
	}
	for _, h := range headers {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.Header.Set("Authorization", h)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected 401, got %d", h, rr.Code)
		}
	}
}

func TestMiddleware_BearerIdentityReachesHandler(t *testing.T) {
	mw, svc := setupMiddleware(t, config.AuthModeLocal)
	router := staffRouter(mw)

	user, err := svc.CreateUser("desk", testPassword, entities.UserRoleLibrarian)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	token, _ := svc.GenerateToken(user.ID)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, bearerRequest(http.MethodGet, "/api/books", token))

	var staff Staff
	if err := json.Unmarshal(rr.Body.Bytes(), &staff); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := Staff{ID: user.ID, Username: "desk", Role: entities.UserRoleLibrarian, Via: AuthTypeBearer}
	if staff != want {
		t.Errorf("got %+v, want %+v", staff, want)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer lib_abc", "lib_abc", true},
		{"bearer  lib_abc ", "lib_abc", true},
		{"Bearer", "", false},
		{"Bearer   ", "", false},
		{"Basic lib_abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		token, ok := bearerToken(tt.header)
		if token != tt.token || ok != tt.ok {
			t.Errorf("bearerToken(%q) = %q, %v; want %q, %v", tt.header, token, ok, tt.token, tt.ok)
		}
	}
}

func TestCurrentStaff_Anonymous(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	staff, ok := CurrentStaff(c)
	if ok {
		t.Error("expected no staff on a fresh context")
	}
	if staff.ID != 0 || staff.Via != AuthTypeNone {
		t.Errorf("unexpected anonymous identity: %+v", staff)
	}
}
