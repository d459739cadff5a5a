package managers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/lifeisskill/lisk-go/internal/common"
	"github.com/lifeisskill/lisk-go/internal/cryptox"
	"github.com/lifeisskill/lisk-go/internal/logging"
	"github.com/lifeisskill/lisk-go/internal/models"
	"github.com/lifeisskill/lisk-go/internal/repositories/metadata"
	"github.com/lifeisskill/lisk-go/internal/storage"
)

// credentials is the offline-login material cached at online login: a
// salted argon2 verifier, never the password itself.
type credentials struct {
	Username string `json:"username"`
	Salt     []byte `json:"salt"`
	Verifier []byte `json:"verifier"`
}

// SessionManager owns the LoggedInUser singleton row. The row outlives an
// ordinary logout (IsLoggedIn flips false but identity and cached
// credentials remain) so the user can re-login offline; it is deleted only
// when a different account takes over the device.
type SessionManager struct {
	repo metadata.Repository
	log  logging.Logger

	mu      sync.RWMutex
	current *models.LoggedInUser
}

func NewSessionManager(store *storage.Repositories, log logging.Logger) *SessionManager {
	return &SessionManager{repo: store.Metadata, log: log.With("manager", "session")}
}

// Load reads the persisted session row into memory; call once at startup.
// A missing row is not an error.
func (s *SessionManager) Load(ctx context.Context) error {
	user, err := s.Saved(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.current = user
	s.mu.Unlock()
	return nil
}

// Saved returns the persisted session row, or (nil, nil) when none exists.
// Presence of a row does not imply a live session; check IsLoggedIn.
func (s *SessionManager) Saved(ctx context.Context) (*models.LoggedInUser, error) {
	raw, err := s.repo.Get(ctx, metadata.KeySession)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	var user models.LoggedInUser
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("failed to decode session record: %w", err)
	}
	return &user, nil
}

// Establish persists a fresh session after a successful online login,
// together with the offline-login credentials derived from the password.
func (s *SessionManager) Establish(ctx context.Context, user *models.LoggedInUser, password string) error {
	salt, err := cryptox.NewSalt()
	if err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}
	creds := credentials{
		Username: user.Email,
		Salt:     salt,
		Verifier: cryptox.MakeVerifier(cryptox.DeriveKey([]byte(password), salt)),
	}

	if err := s.save(ctx, user); err != nil {
		return err
	}
	rawCreds, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	if err := s.repo.Set(ctx, metadata.KeyCredentials, rawCreds); err != nil {
		return err
	}

	s.mu.Lock()
	s.current = user
	s.mu.Unlock()

	s.log.Info(ctx, "session established", "user", user.UserID)
	return nil
}

// OfflineLogin verifies the password against the locally cached credentials
// and revives the saved session without any network call. Returns
// common.ErrLocalDataNotAvailable when nothing is cached and
// common.ErrorUnauthorized when verification fails.
func (s *SessionManager) OfflineLogin(ctx context.Context, username, password string) (*models.LoggedInUser, error) {
	user, err := s.Saved(ctx)
	if err != nil {
		return nil, err
	}
	rawCreds, err := s.repo.Get(ctx, metadata.KeyCredentials)
	if err != nil {
		return nil, err
	}
	if user == nil || rawCreds == nil {
		return nil, common.ErrLocalDataNotAvailable
	}

	var creds credentials
	if err := json.Unmarshal(rawCreds, &creds); err != nil {
		return nil, fmt.Errorf("failed to decode credentials: %w", err)
	}
	if creds.Username != username || !cryptox.VerifyPassword([]byte(password), creds.Salt, creds.Verifier) {
		return nil, common.ErrorUnauthorized
	}

	user.IsLoggedIn = true
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = user
	s.mu.Unlock()

	s.log.Info(ctx, "offline login", "user", user.UserID)
	return user, nil
}

// SetLoggedOut flips IsLoggedIn false while keeping the row. With
// clearToken (forced logout after an invalid-token response) the dead token
// is dropped as well, so a later offline login cannot resurrect it.
func (s *SessionManager) SetLoggedOut(ctx context.Context, clearToken bool) error {
	user, err := s.Saved(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}
	user.IsLoggedIn = false
	if clearToken {
		user.Token = ""
	}
	if err := s.save(ctx, user); err != nil {
		return err
	}

	s.mu.Lock()
	s.current = user
	s.mu.Unlock()
	return nil
}

// Current returns a copy of the in-memory session, or nil.
func (s *SessionManager) Current() *models.LoggedInUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	user := *s.current
	return &user
}

// IsLoggedIn reports whether a live session exists.
func (s *SessionManager) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil && s.current.IsLoggedIn
}

// Token implements TokenSource.
func (s *SessionManager) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil || !s.current.IsLoggedIn || s.current.Token == "" {
		return "", common.ErrMissingToken
	}
	return s.current.Token, nil
}

// Forget drops the in-memory session reference (account switch).
func (s *SessionManager) Forget() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

func (s *SessionManager) save(ctx context.Context, user *models.LoggedInUser) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode session record: %w", err)
	}
	return s.repo.Set(ctx, metadata.KeySession, raw)
}
