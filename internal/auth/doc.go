// Package auth identifies callers and guards catalog writes.
//
// Two modes are supported, selected by AUTH_MODE:
//   - "none": every request is treated as trusted and all operations are allowed
//   - "local": reads are public; writes need an API token or a logged-in session
//     whose user role is admin or editor
//
// Sessions are stored in the catalog database through scs. Browser form
// posts are protected by gorilla/csrf. API tokens are sent as
// "Authorization: Bearer <token>" and only their SHA-256 hash is stored.
//
// Wiring, in order:
//
//	router.Use(sessions.LoadAndSave())
//	router.Use(middleware.Handler())
//	router.Use(auth.CSRFMiddleware(secret, cfg.SecureCookies))
//	api.Use(middleware.RequireWrite())
package auth
