package auth

import (
	"database/sql"
	"encoding/gob"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/mrlokans/circulation/internal/config"
	"github.com/mrlokans/circulation/internal/entities"
)

// SessionCookieName is the cookie carrying the staff session token.
const SessionCookieName = "library_session"

const (
	sessionKeyStaff        = "staff"
	sessionCleanupInterval = 15 * time.Minute
)

// SessionData is what a staff session remembers about the logged in librarian.
type SessionData struct {
	UserID   uint
	Username string
	Role     entities.UserRole
	LoginAt  time.Time
}

func init() {
	gob.Register(SessionData{})
}

// SessionManager wraps scs.SessionManager with staff session helpers.
type SessionManager struct {
	*scs.SessionManager
	store *sqlite3store.SQLite3Store
}

// NewSessionManager creates a session manager backed by the sessions table of
// the library database. sqlDB is the *sql.DB underneath GORM.
func NewSessionManager(sqlDB *sql.DB, cfg config.Auth) (*SessionManager, error) {
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, fmt.Errorf("failed to create sessions table: %w", err)
	}

	store := sqlite3store.NewWithCleanupInterval(sqlDB, sessionCleanupInterval)

	sm := scs.New()
	sm.Store = store
	sm.Lifetime = cfg.SessionLifetime
	sm.IdleTimeout = cfg.SessionLifetime / 2

	sm.Cookie.Name = SessionCookieName
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteStrictMode
	sm.Cookie.Path = "/"

	return &SessionManager{SessionManager: sm, store: store}, nil
}

// Close stops the background removal of expired sessions.
func (sm *SessionManager) Close() {
	sm.store.StopCleanup()
}

// CreateSession starts a staff session after a successful login. The token
// is renewed first to prevent session fixation.
func (sm *SessionManager) CreateSession(r *http.Request, user *entities.User) error {
	if err := sm.RenewToken(r.Context()); err != nil {
		return err
	}

	sm.Put(r.Context(), sessionKeyStaff, SessionData{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		LoginAt:  time.Now().UTC(),
	})
	return nil
}

// DestroySession ends the staff session.
func (sm *SessionManager) DestroySession(r *http.Request) error {
	return sm.Destroy(r.Context())
}

// GetSessionData returns the staff session, or nil for anonymous requests.
func (sm *SessionManager) GetSessionData(r *http.Request) *SessionData {
	data, ok := sm.Get(r.Context(), sessionKeyStaff).(SessionData)
	if !ok || data.UserID == 0 {
		return nil
	}
	return &data
}

// GetUserID returns the staff user ID, or 0 when nobody is logged in.
func (sm *SessionManager) GetUserID(r *http.Request) uint {
	if data := sm.GetSessionData(r); data != nil {
		return data.UserID
	}
	return 0
}

func (sm *SessionManager) GetUsername(r *http.Request) string {
	if data := sm.GetSessionData(r); data != nil {
		return data.Username
	}
	return ""
}

func (sm *SessionManager) GetUserRole(r *http.Request) entities.UserRole {
	if data := sm.GetSessionData(r); data != nil {
		return data.Role
	}
	return ""
}
