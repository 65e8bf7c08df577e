// Package auth protects the staff side of the library API.
//
// Patrons are never authenticated: they borrow, return, pay and search with
// nothing more than their six digit library card number. Staff accounts
// (librarians and admins) guard the catalog write path, the audit log and
// the task endpoints.
//
// Two modes are supported:
//   - "none": no authentication, staff routes are open (default)
//   - "local": staff accounts stored in the library database, with session
//     cookies (scs, sqlite3store) and Bearer API tokens
//
// # Configuration
//
//	AUTH_MODE=local
//	AUTH_SESSION_SECRET=<32 bytes>  # CSRF key, auto-generated if empty
//	AUTH_SESSION_LIFETIME=24h
//	AUTH_TOKEN_EXPIRY=720h
//	AUTH_BCRYPT_COST=12
//	AUTH_SECURE_COOKIES=true
//
// # Usage
//
//	authService := auth.NewService(users.NewRepository(db), cfg.Auth)
//	mw := auth.NewMiddleware(authService, sessions, cfg.Auth)
//	router.Use(mw.Handler())
//	api.POST("/books", mw.RequireRole(entities.UserRoleLibrarian, entities.UserRoleAdmin), ...)
//
// Handlers read the caller with CurrentStaff(c).
package auth
