package domain

import "context"

type AuthEventType string

const (
	AuthEventSignedIn  AuthEventType = "SIGNED_IN"
	AuthEventSignedOut AuthEventType = "SIGNED_OUT"
)

// AuthSession is the issued session for a signed-in identity.
type AuthSession struct {
	Identity    Identity
	AccessToken string
}

// AuthEvent is emitted on the auth service's state-change stream.
// Session is nil for SIGNED_OUT events.
type AuthEvent struct {
	Event   AuthEventType
	Session *AuthSession
}

type SignUpMetadata struct {
	Name     string
	Phone    string
	Location string
}

// AuthService is the authentication boundary. Sign-in and sign-up emit a
// state-change event to every subscriber in addition to returning the
// session; observers must not block inside the callback.
type AuthService interface {
	SignInWithPassword(ctx context.Context, email, password string) (*AuthSession, error)
	SignUp(ctx context.Context, email, password string, meta SignUpMetadata) (*AuthSession, error)
	SignOut(ctx context.Context) error
	CurrentSession() *AuthSession
	// OnAuthStateChange registers a subscriber and returns an unsubscribe
	// function.
	OnAuthStateChange(fn func(AuthEvent)) func()
}
