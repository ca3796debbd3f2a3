package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	natsadapter "github.com/mohashafici/DalagHub/internal/adapter/messaging/nats"
	"github.com/mohashafici/DalagHub/internal/marketplace/domain"
	"github.com/mohashafici/DalagHub/internal/platform/logger"
)

var (
	// ErrPartialRegistration is returned when the auth identity was created
	// but a follow-up profile or role insert failed. The identity exists;
	// there is no compensating rollback, so the caller must see the failure
	// instead of an overall success.
	ErrPartialRegistration = errors.New("account created but registration did not complete")
)

const fetchTimeout = 10 * time.Second

// Snapshot is the session state published to observers.
type Snapshot struct {
	Identity *domain.Identity
	Profile  *domain.Profile
	Roles    []domain.Role
}

func (s Snapshot) Authenticated() bool {
	return s.Identity != nil
}

type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Location string
	Roles    []domain.Role
}

// Store owns the current authenticated identity, its profile record and its
// role set. It observes the auth service's state-change stream; each event
// is enqueued and a dispatch goroutine performs the profile/role fetch so
// the auth callback path never blocks on network I/O.
type Store struct {
	auth      domain.AuthService
	profiles  domain.ProfileRepository
	roles     domain.RoleRepository
	publisher EventPublisher
	logger    logger.Logger

	mu       sync.RWMutex
	identity *domain.Identity
	profile  *domain.Profile
	roleSet  []domain.Role

	subMu       sync.Mutex
	subscribers map[int]func(Snapshot)
	nextSubID   int

	events      chan domain.AuthEvent
	unsubscribe func()
	done        chan struct{}
	closeOnce   sync.Once
}

func NewStore(
	auth domain.AuthService,
	profiles domain.ProfileRepository,
	roles domain.RoleRepository,
	publisher EventPublisher,
	log logger.Logger,
) *Store {
	s := &Store{
		auth:        auth,
		profiles:    profiles,
		roles:       roles,
		publisher:   publisher,
		logger:      log,
		subscribers: make(map[int]func(Snapshot)),
		events:      make(chan domain.AuthEvent, 16),
		done:        make(chan struct{}),
	}

	s.unsubscribe = auth.OnAuthStateChange(s.enqueue)
	go s.dispatch()

	return s
}

// enqueue hands the event to the dispatch goroutine. The callback must not
// block, so a full queue drops the event with a warning; the next refresh
// reconciles state.
func (s *Store) enqueue(event domain.AuthEvent) {
	select {
	case s.events <- event:
	default:
		s.logger.Warnf("session: auth event queue full, dropping %s", event.Event)
	}
}

func (s *Store) dispatch() {
	for {
		select {
		case <-s.done:
			return
		case event := <-s.events:
			s.handleEvent(event)
		}
	}
}

func (s *Store) handleEvent(event domain.AuthEvent) {
	switch event.Event {
	case domain.AuthEventSignedIn:
		if event.Session == nil {
			return
		}
		identity := event.Session.Identity
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		profile, roles := s.fetchProfileAndRoles(ctx, identity.ID)
		cancel()

		s.mu.Lock()
		s.identity = &identity
		s.profile = profile
		s.roleSet = roles
		s.mu.Unlock()
	case domain.AuthEventSignedOut:
		s.mu.Lock()
		s.identity = nil
		s.profile = nil
		s.roleSet = nil
		s.mu.Unlock()
	}
	s.notify()
}

func (s *Store) fetchProfileAndRoles(ctx context.Context, identityID string) (*domain.Profile, []domain.Role) {
	profile, err := s.profiles.FindByID(ctx, identityID)
	if err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
		s.logger.Errorf("session: failed to fetch profile for %s: %v", identityID, err)
	}
	roles, err := s.roles.FindByUser(ctx, identityID)
	if err != nil {
		s.logger.Errorf("session: failed to fetch roles for %s: %v", identityID, err)
	}
	return profile, roles
}

// Login delegates to the auth service. Session state is not set here; the
// auth service emits a state-change event which this store observes.
func (s *Store) Login(ctx context.Context, email, password string) error {
	_, err := s.auth.SignInWithPassword(ctx, email, password)
	return err
}

// Register creates the auth identity, inserts the profile row, then one
// role row per selected role. The sequence is not atomic: a failure after
// identity creation is surfaced as ErrPartialRegistration rather than
// reported as success.
func (s *Store) Register(ctx context.Context, input RegisterInput) error {
	session, err := s.auth.SignUp(ctx, input.Email, input.Password, domain.SignUpMetadata{
		Name:     input.Name,
		Phone:    input.Phone,
		Location: input.Location,
	})
	if err != nil {
		return err
	}

	profile := &domain.Profile{
		ID:       session.Identity.ID,
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Location: input.Location,
	}
	if err := s.profiles.Insert(ctx, profile); err != nil {
		s.logger.Errorf("session: profile insert failed for %s: %v", session.Identity.ID, err)
		return fmt.Errorf("%w: profile: %v", ErrPartialRegistration, err)
	}

	for _, role := range input.Roles {
		if err := s.roles.Add(ctx, session.Identity.ID, role); err != nil {
			s.logger.Errorf("session: role insert failed for %s (%s): %v", session.Identity.ID, role, err)
			return fmt.Errorf("%w: role %s: %v", ErrPartialRegistration, role, err)
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, natsadapter.SubjectUserRegistered, map[string]string{
			"user_id":  session.Identity.ID,
			"location": input.Location,
		}); err != nil {
			s.logger.Warnf("session: failed to publish user.registered: %v", err)
		}
	}

	return nil
}

// Logout invalidates the remote session and clears local state
// synchronously; the SIGNED_OUT event that follows is a no-op by then.
func (s *Store) Logout(ctx context.Context) error {
	err := s.auth.SignOut(ctx)

	s.mu.Lock()
	s.identity = nil
	s.profile = nil
	s.roleSet = nil
	s.mu.Unlock()
	s.notify()

	return err
}

// RefreshProfile re-fetches profile and role rows for the current
// identity. No-op when unauthenticated.
func (s *Store) RefreshProfile(ctx context.Context) {
	s.mu.RLock()
	identity := s.identity
	s.mu.RUnlock()
	if identity == nil {
		return
	}

	profile, roles := s.fetchProfileAndRoles(ctx, identity.ID)
	s.mu.Lock()
	s.profile = profile
	s.roleSet = roles
	s.mu.Unlock()
	s.notify()
}

// Current returns the current session snapshot.
func (s *Store) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Identity: s.identity, Profile: s.profile, Roles: s.roleSet}
}

// IsSeller reports whether the current role set contains seller.
func (s *Store) IsSeller() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.roleSet {
		if r == domain.RoleSeller {
			return true
		}
	}
	return false
}

// Subscribe registers an observer notified on every session change and
// returns an unsubscribe function.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subscribers, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify() {
	snapshot := s.Current()
	s.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}

// Close stops the event dispatcher and detaches from the auth stream.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		s.unsubscribe()
		close(s.done)
	})
}
