package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/validate"
)

type (
	Credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	Registration struct {
		Name            string `json:"name"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		PasswordConfirm string `json:"-"`
	}

	authResponse struct {
		Token string      `json:"token"`
		User  domain.User `json:"user"`
	}
)

// AuthService owns the session namespace. State machine:
// anonymous -> authenticating -> authenticated -> anonymous.
// Failures revert to anonymous without persisting partial state.
type AuthService struct {
	mu      sync.RWMutex
	state   domain.AuthState
	session domain.Session
	lastErr string

	gw       port.Gateway
	kv       port.KeyValue
	uploader port.Uploader
}

type AuthOption func(*AuthService)

func WithAvatarUploader(u port.Uploader) AuthOption {
	return func(s *AuthService) { s.uploader = u }
}

func NewAuth(gw port.Gateway, kv port.KeyValue, opts ...AuthOption) *AuthService {
	s := &AuthService{gw: gw, kv: kv}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AuthService) Login(ctx context.Context, creds Credentials) (domain.Session, error) {
	const op = "AuthService.Login"

	if err := validate.Email(creds.Email); err != nil {
		return domain.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := validate.Required("password", creds.Password); err != nil {
		return domain.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	s.setAuthenticating()

	data, err := s.gw.Post(ctx, "/api/auth/login", creds)
	if err != nil {
		s.fail(err)
		return domain.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	return s.accept(op, data)
}

func (s *AuthService) Register(ctx context.Context, reg Registration) (domain.Session, error) {
	const op = "AuthService.Register"

	if err := s.validateRegistration(reg); err != nil {
		return domain.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	s.setAuthenticating()

	data, err := s.gw.Post(ctx, "/api/auth/register", reg)
	if err != nil {
		s.fail(err)
		return domain.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	return s.accept(op, data)
}

func (s *AuthService) validateRegistration(reg Registration) error {
	if err := validate.Username(reg.Name); err != nil {
		return err
	}
	if err := validate.Email(reg.Email); err != nil {
		return err
	}
	if err := validate.Password(reg.Password); err != nil {
		return err
	}
	if reg.PasswordConfirm != "" {
		return validate.PasswordConfirm(reg.Password, reg.PasswordConfirm)
	}
	return nil
}

// accept decodes the auth envelope, persists the session and moves the
// machine to authenticated.
func (s *AuthService) accept(op string, data []byte) (domain.Session, error) {
	var res authResponse
	if err := json.Unmarshal(data, &res); err != nil {
		s.fail(err)
		return domain.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	sess := domain.Session{Token: res.Token, User: res.User}
	if !sess.Authenticated() {
		err := fmt.Errorf("%s: incomplete auth response", op)
		s.fail(err)
		return domain.Session{}, err
	}

	s.setSession(sess)
	s.persist(sess)
	return sess, nil
}

// Logout calls the API best-effort and always clears the session.
func (s *AuthService) Logout(ctx context.Context) {
	const op = "AuthService.Logout"

	if _, err := s.gw.Post(ctx, "/api/auth/logout", nil); err != nil {
		slog.Warn("logout api call failed", "op", op, "err", err)
	}
	s.Teardown()
}

// Refresh swaps the token; any failure tears the session down.
func (s *AuthService) Refresh(ctx context.Context) bool {
	const op = "AuthService.Refresh"

	if !s.Authenticated() {
		return false
	}

	data, err := s.gw.Post(ctx, "/api/auth/refresh", nil)
	if err != nil {
		slog.Warn("token refresh failed", "op", op, "err", err)
		s.Teardown()
		return false
	}

	var res authResponse
	if err := json.Unmarshal(data, &res); err != nil || res.Token == "" {
		s.Teardown()
		return false
	}

	s.mu.Lock()
	s.session.Token = res.Token
	sess := s.session
	s.mu.Unlock()

	s.persist(sess)
	return true
}

// Restore reloads a persisted session at startup.
func (s *AuthService) Restore() bool {
	const op = "AuthService.Restore"

	token, err := s.kv.Load(keyAuthToken)
	if err != nil {
		return false
	}
	userData, err := s.kv.Load(keyUserInfo)
	if err != nil {
		return false
	}

	var user domain.User
	if err := json.Unmarshal(userData, &user); err != nil {
		slog.Warn("corrupt persisted user, clearing", "op", op, "err", err)
		s.Teardown()
		return false
	}

	sess := domain.Session{Token: string(token), User: user}
	if !sess.Authenticated() {
		return false
	}
	s.setSession(sess)
	return true
}

// Teardown clears the session and its persisted keys. It is also the
// pipeline's 401 hook, so it must be safe from any call site.
func (s *AuthService) Teardown() {
	s.mu.Lock()
	s.session = domain.Session{}
	s.state = domain.Anonymous
	s.mu.Unlock()

	if err := s.kv.Remove(keyAuthToken); err != nil {
		slog.Error("failed to remove persisted token", "err", err)
	}
	if err := s.kv.Remove(keyUserInfo); err != nil {
		slog.Error("failed to remove persisted user", "err", err)
	}
}

func (s *AuthService) persist(sess domain.Session) {
	const op = "AuthService.persist"

	if err := s.kv.Save(keyAuthToken, []byte(sess.Token)); err != nil {
		slog.Error("failed to persist token", "op", op, "err", err)
	}
	userData, err := json.Marshal(sess.User)
	if err == nil {
		err = s.kv.Save(keyUserInfo, userData)
	}
	if err != nil {
		slog.Error("failed to persist user", "op", op, "err", err)
	}
}

func (s *AuthService) setAuthenticating() {
	s.mu.Lock()
	s.state = domain.Authenticating
	s.lastErr = ""
	s.mu.Unlock()
}

func (s *AuthService) setSession(sess domain.Session) {
	s.mu.Lock()
	s.session = sess
	s.state = domain.Authenticated
	s.lastErr = ""
	s.mu.Unlock()
}

func (s *AuthService) fail(err error) {
	s.mu.Lock()
	s.session = domain.Session{}
	s.state = domain.Anonymous
	s.lastErr = err.Error()
	s.mu.Unlock()
}

func (s *AuthService) State() domain.AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *AuthService) Session() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

func (s *AuthService) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == domain.Authenticated && s.session.Authenticated()
}

func (s *AuthService) UserID() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.User.ID
}

// Token is the pipeline's TokenSource.
func (s *AuthService) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Token
}

// Err is the last action failure message, empty after a success.
func (s *AuthService) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// UpdateProfile writes profile changes through and mirrors the result.
func (s *AuthService) UpdateProfile(ctx context.Context, fields map[string]any) (domain.User, error) {
	const op = "AuthService.UpdateProfile"

	if phone, ok := fields["phone"].(string); ok && phone != "" {
		if err := validate.Phone(phone); err != nil {
			return domain.User{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	data, err := s.gw.Put(ctx, "/api/user/profile", fields)
	if err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}

	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.session.User = user
	sess := s.session
	s.mu.Unlock()

	s.persist(sess)
	return user, nil
}

// UploadAvatar sends the image through the upload pipeline and mirrors
// the served path onto the session user.
func (s *AuthService) UploadAvatar(
	ctx context.Context, filename string, src io.Reader, onProgress port.ProgressFunc,
) (string, error) {
	const op = "AuthService.UploadAvatar"

	if s.uploader == nil {
		return "", fmt.Errorf("%s: no uploader configured", op)
	}

	data, err := s.uploader.Upload(ctx, "/api/user/avatar", filename, src, onProgress)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var res struct {
		Avatar string `json:"avatar"`
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.session.User.Avatar = res.Avatar
	sess := s.session
	s.mu.Unlock()

	s.persist(sess)
	return res.Avatar, nil
}
