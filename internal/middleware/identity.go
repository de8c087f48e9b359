package middleware

import "github.com/labstack/echo/v4"

// ContextUserID is the echo context key JWTAuth stores the caller under.
const ContextUserID = "user_id"

// UserID returns the authenticated caller's id, or "" for anonymous
// requests.
func UserID(c echo.Context) string {
	if s, ok := c.Get(ContextUserID).(string); ok {
		return s
	}
	return ""
}

// userKey is the caller id used in rate limit keys; anonymous callers
// share "anon".
func userKey(c echo.Context) string {
	if id := UserID(c); id != "" {
		return id
	}
	return "anon"
}
