package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/mohashafici/DalagHub/internal/marketplace/domain"
	"github.com/mohashafici/DalagHub/internal/platform/logger"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
)

const sessionTTL = 24 * time.Hour

type identityDocument struct {
	ID        string    `bson:"_id"`
	Email     string    `bson:"email"`
	Password  string    `bson:"password"`
	Name      string    `bson:"name,omitempty"`
	Phone     string    `bson:"phone,omitempty"`
	Location  string    `bson:"location,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}

// Service implements domain.AuthService: email/password identities in
// MongoDB, bcrypt hashing, JWT access tokens cached in Redis, and a
// state-change stream. It tracks one current session, matching the single
// device session the app shell serves.
type Service struct {
	collection *mongo.Collection
	redis      *redis.Client
	jwtSecret  string
	logger     logger.Logger

	mu          sync.RWMutex
	current     *domain.AuthSession
	subscribers map[int]func(domain.AuthEvent)
	nextSubID   int
}

func NewService(db *mongo.Database, redisClient *redis.Client, jwtSecret string, log logger.Logger) *Service {
	return &Service{
		collection:  db.Collection("identities"),
		redis:       redisClient,
		jwtSecret:   jwtSecret,
		logger:      log,
		subscribers: make(map[int]func(domain.AuthEvent)),
	}
}

func (s *Service) SignUp(ctx context.Context, email, password string, meta domain.SignUpMetadata) (*domain.AuthSession, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	count, err := s.collection.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	doc := identityDocument{
		ID:        uuid.New().String(),
		Email:     email,
		Password:  string(hashed),
		Name:      meta.Name,
		Phone:     meta.Phone,
		Location:  meta.Location,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return nil, err
	}

	return s.openSession(ctx, domain.Identity{ID: doc.ID, Email: doc.Email})
}

func (s *Service) SignInWithPassword(ctx context.Context, email, password string) (*domain.AuthSession, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var doc identityDocument
	err := s.collection.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(doc.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.openSession(ctx, domain.Identity{ID: doc.ID, Email: doc.Email})
}

func (s *Service) SignOut(ctx context.Context) error {
	s.mu.Lock()
	session := s.current
	s.current = nil
	s.mu.Unlock()

	if session == nil {
		return nil
	}
	if err := s.redis.Del(ctx, sessionKey(session.Identity.ID)).Err(); err != nil {
		s.logger.Warnf("auth: failed to invalidate cached session for %s: %v", session.Identity.ID, err)
	}
	s.emit(domain.AuthEvent{Event: domain.AuthEventSignedOut})
	return nil
}

func (s *Service) CurrentSession() *domain.AuthSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Service) OnAuthStateChange(fn func(domain.AuthEvent)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

func (s *Service) openSession(ctx context.Context, identity domain.Identity) (*domain.AuthSession, error) {
	token, err := s.issueToken(identity.ID)
	if err != nil {
		return nil, err
	}
	if err := s.redis.Set(ctx, sessionKey(identity.ID), token, sessionTTL).Err(); err != nil {
		s.logger.Warnf("auth: failed to cache session token for %s: %v", identity.ID, err)
	}

	session := &domain.AuthSession{Identity: identity, AccessToken: token}
	s.mu.Lock()
	s.current = session
	s.mu.Unlock()

	s.emit(domain.AuthEvent{Event: domain.AuthEventSignedIn, Session: session})
	return session, nil
}

func (s *Service) issueToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(sessionTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// emit notifies subscribers outside the lock. Subscribers are expected to
// enqueue follow-up work rather than block.
func (s *Service) emit(event domain.AuthEvent) {
	s.mu.RLock()
	fns := make([]func(domain.AuthEvent), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(event)
	}
}

func sessionKey(userID string) string {
	return "session:" + userID
}
