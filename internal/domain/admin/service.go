package admin

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"contactdesk/internal/common"

	"github.com/google/uuid"
)

// User-facing messages.
const (
	MsgUnknownUser   = "ユーザー名が正しくありません"
	MsgWrongPassword = "パスワードが正しくありません"
	MsgNotSignedIn   = "ログインしていません"
	MsgUsernameTaken = "このユーザー名は既に使用されています"
	MsgLoggedIn      = "ログインしました"
	MsgLoggedOut     = "ログアウトしました"
	MsgRegistered    = "登録が完了しました"
	MsgPasswordShort = "パスワードは8文字以上で入力してください"
)

const (
	defaultSessionTTL = 24 * time.Hour
	minPasswordLength = 8
)

// Service handles administrator accounts and sessions.
type Service struct {
	users    UserStore
	sessions SessionStore
	ttl      time.Duration
	now      func() time.Time
}

// NewService creates a new admin service.
func NewService(users UserStore, sessions SessionStore, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Service{
		users:    users,
		sessions: sessions,
		ttl:      ttl,
		now:      time.Now,
	}
}

// SessionTTL returns how long a new session stays valid.
func (s *Service) SessionTTL() time.Duration {
	return s.ttl
}

// EnsureUser creates the named user if it does not exist yet.
// Used at startup to seed the first administrator.
func (s *Service) EnsureUser(ctx context.Context, username, password string) error {
	existing, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("looking up user: %w", err)
	}
	if existing != nil {
		return nil
	}

	if _, err := s.createUser(ctx, username, password); err != nil {
		return err
	}

	slog.Info("bootstrap admin user created", "username", username)
	return nil
}

// Register creates a new administrator and signs them in.
func (s *Service) Register(ctx context.Context, creds *Credentials) (*User, *Session, error) {
	if utf8.RuneCountInString(creds.Password) < minPasswordLength {
		return nil, nil, common.NewValidationError(MsgPasswordShort)
	}

	existing, err := s.users.GetUserByUsername(ctx, creds.Username)
	if err != nil {
		return nil, nil, fmt.Errorf("looking up user: %w", err)
	}
	if existing != nil {
		return nil, nil, common.NewConflictError(MsgUsernameTaken)
	}

	user, err := s.createUser(ctx, creds.Username, creds.Password)
	if err != nil {
		return nil, nil, err
	}

	session, err := s.startSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	return user, session, nil
}

// Login checks credentials and starts a new session.
func (s *Service) Login(ctx context.Context, creds *Credentials) (*User, *Session, error) {
	user, err := s.users.GetUserByUsername(ctx, creds.Username)
	if err != nil {
		return nil, nil, fmt.Errorf("looking up user: %w", err)
	}
	if user == nil {
		return nil, nil, common.NewUnauthorizedError(MsgUnknownUser)
	}

	ok, err := ComparePassword(creds.Password, user.PasswordHash)
	if err != nil {
		slog.Error("password comparison failed", "username", user.Username, "error", err)
		return nil, nil, common.NewUnauthorizedError(MsgWrongPassword)
	}
	if !ok {
		return nil, nil, common.NewUnauthorizedError(MsgWrongPassword)
	}

	session, err := s.startSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	slog.Info("admin signed in", "username", user.Username)
	return user, session, nil
}

// Logout ends a session. Unknown session IDs are ignored.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// Authenticate resolves a session ID to its user.
func (s *Service) Authenticate(ctx context.Context, sessionID string) (*User, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("fetching session: %w", err)
	}
	if session == nil {
		return nil, common.NewUnauthorizedError(MsgNotSignedIn)
	}
	if session.Expired(s.now()) {
		_ = s.sessions.Delete(ctx, sessionID)
		return nil, common.NewUnauthorizedError(MsgNotSignedIn)
	}

	user, err := s.users.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("fetching user: %w", err)
	}
	if user == nil {
		return nil, common.NewUnauthorizedError(MsgNotSignedIn)
	}

	return user, nil
}

func (s *Service) createUser(ctx context.Context, username, password string) (*User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &User{Username: username, PasswordHash: hash}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

func (s *Service) startSession(ctx context.Context, user *User) (*Session, error) {
	now := s.now()
	session := &Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	return session, nil
}
