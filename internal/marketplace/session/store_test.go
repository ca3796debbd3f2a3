package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	natsadapter "github.com/mohashafici/DalagHub/internal/adapter/messaging/nats"
	"github.com/mohashafici/DalagHub/internal/marketplace/domain"
	"github.com/mohashafici/DalagHub/internal/platform/logger"
)

type capturingPublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (p *capturingPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return nil
}

type fakeAuthService struct {
	mu          sync.Mutex
	current     *domain.AuthSession
	subscribers []func(domain.AuthEvent)
	signInErr   error
	signUpErr   error
}

func (f *fakeAuthService) SignInWithPassword(ctx context.Context, email, password string) (*domain.AuthSession, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return f.open(domain.Identity{ID: "user-1", Email: email})
}

func (f *fakeAuthService) SignUp(ctx context.Context, email, password string, meta domain.SignUpMetadata) (*domain.AuthSession, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return f.open(domain.Identity{ID: "user-new", Email: email})
}

func (f *fakeAuthService) open(identity domain.Identity) (*domain.AuthSession, error) {
	s := &domain.AuthSession{Identity: identity, AccessToken: "token"}
	f.mu.Lock()
	f.current = s
	subs := append([]func(domain.AuthEvent){}, f.subscribers...)
	f.mu.Unlock()
	for _, fn := range subs {
		fn(domain.AuthEvent{Event: domain.AuthEventSignedIn, Session: s})
	}
	return s, nil
}

func (f *fakeAuthService) SignOut(ctx context.Context) error {
	f.mu.Lock()
	f.current = nil
	subs := append([]func(domain.AuthEvent){}, f.subscribers...)
	f.mu.Unlock()
	for _, fn := range subs {
		fn(domain.AuthEvent{Event: domain.AuthEventSignedOut})
	}
	return nil
}

func (f *fakeAuthService) CurrentSession() *domain.AuthSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *fakeAuthService) OnAuthStateChange(fn func(domain.AuthEvent)) func() {
	f.mu.Lock()
	f.subscribers = append(f.subscribers, fn)
	f.mu.Unlock()
	return func() {}
}

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Insert(ctx context.Context, profile *domain.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) FindByID(ctx context.Context, id string) (*domain.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*domain.Profile, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*domain.Profile), args.Error(1)
}

type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) Add(ctx context.Context, userID string, role domain.Role) error {
	args := m.Called(ctx, userID, role)
	return args.Error(0)
}

func (m *MockRoleRepository) FindByUser(ctx context.Context, userID string) ([]domain.Role, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Role), args.Error(1)
}

func newTestStore(t *testing.T, auth *fakeAuthService, profiles *MockProfileRepository, roles *MockRoleRepository) *Store {
	t.Helper()
	store := NewStore(auth, profiles, roles, nil, logger.NoOp())
	t.Cleanup(store.Close)
	return store
}

func TestStore_LoginPopulatesStateAsynchronously(t *testing.T) {
	auth := &fakeAuthService{}
	profiles := new(MockProfileRepository)
	roles := new(MockRoleRepository)
	profiles.On("FindByID", mock.Anything, "user-1").
		Return(&domain.Profile{ID: "user-1", Name: "Amina", Phone: "+252612345678", Location: "Mogadishu"}, nil)
	roles.On("FindByUser", mock.Anything, "user-1").
		Return([]domain.Role{domain.RoleBuyer, domain.RoleSeller}, nil)

	store := newTestStore(t, auth, profiles, roles)

	err := store.Login(context.Background(), "amina@example.com", "secret")
	assert.NoError(t, err)

	assert.Eventually(t, func() bool {
		snap := store.Current()
		return snap.Authenticated() && snap.Profile != nil
	}, time.Second, 10*time.Millisecond)

	snap := store.Current()
	assert.Equal(t, "user-1", snap.Identity.ID)
	assert.Equal(t, "Amina", snap.Profile.Name)
	assert.True(t, store.IsSeller())
}

func TestStore_LoginFailureLeavesStateUnauthenticated(t *testing.T) {
	auth := &fakeAuthService{signInErr: errors.New("invalid email or password")}
	store := newTestStore(t, auth, new(MockProfileRepository), new(MockRoleRepository))

	err := store.Login(context.Background(), "amina@example.com", "wrong")
	assert.Error(t, err)
	assert.False(t, store.Current().Authenticated())
}

func TestStore_RegisterInsertsProfileAndRoles(t *testing.T) {
	auth := &fakeAuthService{}
	profiles := new(MockProfileRepository)
	roles := new(MockRoleRepository)

	profiles.On("Insert", mock.Anything, mock.MatchedBy(func(p *domain.Profile) bool {
		return p.ID == "user-new" && p.Name == "Hassan" && p.Location == "Hargeisa"
	})).Return(nil).Once()
	roles.On("Add", mock.Anything, "user-new", domain.RoleBuyer).Return(nil).Once()
	roles.On("Add", mock.Anything, "user-new", domain.RoleSeller).Return(nil).Once()
	// The SIGNED_IN event triggers an async fetch as well.
	profiles.On("FindByID", mock.Anything, "user-new").Return(nil, domain.ErrProfileNotFound)
	roles.On("FindByUser", mock.Anything, "user-new").Return([]domain.Role{}, nil)

	store := newTestStore(t, auth, profiles, roles)

	err := store.Register(context.Background(), RegisterInput{
		Name:     "Hassan",
		Email:    "hassan@example.com",
		Password: "secret",
		Location: "Hargeisa",
		Roles:    []domain.Role{domain.RoleBuyer, domain.RoleSeller},
	})
	assert.NoError(t, err)
	profiles.AssertExpectations(t)
	roles.AssertExpectations(t)
}

func TestStore_RegisterPublishesUserRegistered(t *testing.T) {
	auth := &fakeAuthService{}
	profiles := new(MockProfileRepository)
	roles := new(MockRoleRepository)
	publisher := &capturingPublisher{}

	profiles.On("Insert", mock.Anything, mock.Anything).Return(nil)
	roles.On("Add", mock.Anything, "user-new", domain.RoleBuyer).Return(nil)
	profiles.On("FindByID", mock.Anything, "user-new").Return(nil, domain.ErrProfileNotFound)
	roles.On("FindByUser", mock.Anything, "user-new").Return([]domain.Role{}, nil)

	store := NewStore(auth, profiles, roles, publisher, logger.NoOp())
	t.Cleanup(store.Close)

	err := store.Register(context.Background(), RegisterInput{
		Name:     "Hassan",
		Email:    "hassan@example.com",
		Password: "secret",
		Location: "Hargeisa",
		Roles:    []domain.Role{domain.RoleBuyer},
	})

	assert.NoError(t, err)
	publisher.mu.Lock()
	defer publisher.mu.Unlock()
	assert.Equal(t, []string{natsadapter.SubjectUserRegistered}, publisher.subjects)
}

func TestStore_RegisterSurfacesPartialFailure(t *testing.T) {
	auth := &fakeAuthService{}
	profiles := new(MockProfileRepository)
	roles := new(MockRoleRepository)

	profiles.On("Insert", mock.Anything, mock.Anything).Return(nil)
	roles.On("Add", mock.Anything, "user-new", domain.RoleSeller).Return(errors.New("insert failed"))
	profiles.On("FindByID", mock.Anything, "user-new").Return(nil, domain.ErrProfileNotFound)
	roles.On("FindByUser", mock.Anything, "user-new").Return([]domain.Role{}, nil)

	store := newTestStore(t, auth, profiles, roles)

	err := store.Register(context.Background(), RegisterInput{
		Name:     "Hassan",
		Email:    "hassan@example.com",
		Password: "secret",
		Location: "Hargeisa",
		Roles:    []domain.Role{domain.RoleSeller},
	})
	assert.ErrorIs(t, err, ErrPartialRegistration)
}

func TestStore_LogoutClearsStateSynchronously(t *testing.T) {
	auth := &fakeAuthService{}
	profiles := new(MockProfileRepository)
	roles := new(MockRoleRepository)
	profiles.On("FindByID", mock.Anything, "user-1").Return(&domain.Profile{ID: "user-1", Name: "Amina"}, nil)
	roles.On("FindByUser", mock.Anything, "user-1").Return([]domain.Role{domain.RoleSeller}, nil)

	store := newTestStore(t, auth, profiles, roles)
	assert.NoError(t, store.Login(context.Background(), "amina@example.com", "secret"))
	assert.Eventually(t, func() bool { return store.Current().Authenticated() }, time.Second, 10*time.Millisecond)

	assert.NoError(t, store.Logout(context.Background()))

	snap := store.Current()
	assert.False(t, snap.Authenticated())
	assert.Nil(t, snap.Profile)
	assert.False(t, store.IsSeller())
}

func TestStore_RefreshProfileNoopWhenUnauthenticated(t *testing.T) {
	auth := &fakeAuthService{}
	profiles := new(MockProfileRepository)
	roles := new(MockRoleRepository)

	store := newTestStore(t, auth, profiles, roles)
	store.RefreshProfile(context.Background())

	profiles.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	roles.AssertNotCalled(t, "FindByUser", mock.Anything, mock.Anything)
}

func TestStore_SubscribersNotifiedOnSessionChange(t *testing.T) {
	auth := &fakeAuthService{}
	profiles := new(MockProfileRepository)
	roles := new(MockRoleRepository)
	profiles.On("FindByID", mock.Anything, "user-1").Return(&domain.Profile{ID: "user-1"}, nil)
	roles.On("FindByUser", mock.Anything, "user-1").Return([]domain.Role{}, nil)

	store := newTestStore(t, auth, profiles, roles)

	notified := make(chan Snapshot, 4)
	unsubscribe := store.Subscribe(func(snap Snapshot) {
		notified <- snap
	})
	defer unsubscribe()

	assert.NoError(t, store.Login(context.Background(), "amina@example.com", "secret"))

	select {
	case snap := <-notified:
		assert.True(t, snap.Authenticated())
	case <-time.After(time.Second):
		t.Fatal("subscriber was not notified of session change")
	}
}
