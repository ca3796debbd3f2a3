package middleware

// ContextKey is a private key type so context values cannot collide with
// other packages.
type ContextKey string

// UserIDCtxKey holds the authenticated user id extracted from the JWT.
const UserIDCtxKey = ContextKey("user_id")
