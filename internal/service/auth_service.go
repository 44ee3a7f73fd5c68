package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"libraryhub/internal/access"
	"libraryhub/internal/auth"
	"libraryhub/internal/errors"
	"libraryhub/internal/model"
	"libraryhub/internal/repository"
	"libraryhub/internal/store"
)

// unknownUserName is recorded for failed logins.
const unknownUserName = "Unknown"

// RegisterInput carries the fields of a registration form.
type RegisterInput struct {
	Email           string
	Username        string
	FirstName       string
	LastName        string
	Password        string
	PasswordConfirm string
}

// Session is the result of a successful login or registration.
type Session struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// AuthService handles authentication operations.
type AuthService interface {
	Login(ctx context.Context, email, password, address string) (*Session, error)
	Register(ctx context.Context, in RegisterInput, address string) (*Session, error)
	Logout(ctx context.Context, address string) error
	Profile(ctx context.Context) (*model.User, error)
	// Authenticate resolves a session token into the principal it stands for.
	Authenticate(ctx context.Context, token string) (*access.Principal, error)
}

type authService struct {
	store      *store.Store
	jwtService *auth.JWTService
	sessions   auth.SessionStore
	logger     *slog.Logger
	now        func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(st *store.Store, jwtService *auth.JWTService, sessions auth.SessionStore) AuthService {
	return &authService{
		store:      st,
		jwtService: jwtService,
		sessions:   sessions,
		logger:     moduleLogger("auth"),
		now:        time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func addressOrPlaceholder(address string) string {
	if address == "" {
		return model.PlaceholderAddress
	}
	return address
}

// Login checks the credentials and opens a session. Every attempt is
// recorded in the connection log, successful or not.
func (s *authService) Login(ctx context.Context, email, password, address string) (*Session, error) {
	email = normalizeEmail(email)
	var (
		user    *model.User
		outcome error
	)
	err := s.store.Atomic(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		found, err := repos.Users.FindByEmail(ctx, email)
		switch {
		case isNotFound(err):
			outcome = errors.ErrInvalidCredentials
		case err != nil:
			return fmt.Errorf("find user: %w", err)
		case !auth.CheckPassword(found.PasswordHash, password):
			outcome = errors.ErrInvalidCredentials
		case !found.IsActive:
			outcome = errors.ErrAccountDisabled
		default:
			user = found
		}

		if outcome != nil {
			return s.record(ctx, repos, nil, model.ConnectionFailedLogin, email, address)
		}
		return s.record(ctx, repos, user, model.ConnectionLogin, email, address)
	})
	if err != nil {
		return nil, err
	}
	if outcome != nil {
		s.logger.Info("login rejected", "operation", "login", "outcome", "failure", "email", email)
		return nil, outcome
	}

	session, err := s.open(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logger.Info("login", "operation", "login", "outcome", "success", "user_id", user.ID)
	return session, nil
}

// Register creates a regular user and signs them in.
func (s *authService) Register(ctx context.Context, in RegisterInput, address string) (*Session, error) {
	if in.Password != in.PasswordConfirm {
		return nil, errors.ErrPasswordMismatch
	}
	email := normalizeEmail(in.Email)
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
		Role:         model.RoleUser,
		JoinDate:     s.now().UTC(),
		IsActive:     true,
	}
	if user.Username == "" {
		user.Username = strings.SplitN(email, "@", 2)[0]
	}

	var session *Session
	err = s.store.Atomic(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		existing, err := repos.Users.FindByEmailWithDeleted(ctx, email)
		switch {
		case err == nil && !existing.DeletedAt.Valid:
			return errors.ErrEmailTaken
		case err == nil:
			// A deleted account with this email is brought back as a new member.
			user.ID = existing.ID
			user.CreatedAt = existing.CreatedAt
			err = repos.Users.Restore(ctx, user)
		case isNotFound(err):
			err = repos.Users.Create(ctx, user)
		default:
			return fmt.Errorf("find user: %w", err)
		}
		if err != nil {
			if isDuplicate(err) {
				return errors.ErrEmailTaken
			}
			return fmt.Errorf("create user: %w", err)
		}
		if err := s.record(ctx, repos, user, model.ConnectionLogin, email, address); err != nil {
			return err
		}
		session, err = s.open(ctx, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("registered", "operation", "register", "outcome", "success", "user_id", user.ID)
	return session, nil
}

// Logout ends the caller's session. Without a session it does nothing.
func (s *authService) Logout(ctx context.Context, address string) error {
	p, ok := access.FromContext(ctx)
	if !ok {
		return nil
	}
	if err := s.sessions.Delete(ctx, p.SessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	err := s.store.Atomic(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		return repos.ConnectionLogs.Append(ctx, &model.ConnectionLog{
			UserID:    &p.UserID,
			UserEmail: p.Email,
			UserName:  p.Name,
			Type:      model.ConnectionLogout,
			Timestamp: s.now().UTC(),
			IPAddress: addressOrPlaceholder(address),
		})
	})
	if err != nil {
		return fmt.Errorf("record logout: %w", err)
	}
	s.logger.Info("logout", "operation", "logout", "outcome", "success", "user_id", p.UserID)
	return nil
}

// Profile returns the profile cached in the caller's session.
func (s *authService) Profile(ctx context.Context) (*model.User, error) {
	p, err := access.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}
	session, err := s.sessions.Get(ctx, p.SessionID)
	if stderrors.Is(err, auth.ErrSessionNotFound) {
		return nil, errors.ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return &session.User, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*access.Principal, error) {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return nil, errors.ErrNotAuthenticated
	}
	session, err := s.sessions.Get(ctx, claims.ID)
	if stderrors.Is(err, auth.ErrSessionNotFound) {
		return nil, errors.ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return principalOf(&session.User, session.ID), nil
}

func principalOf(user *model.User, sessionID string) *access.Principal {
	return &access.Principal{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.FullName(),
		Role:      user.Role,
		SessionID: sessionID,
	}
}

func (s *authService) open(ctx context.Context, user *model.User) (*Session, error) {
	sessionID, token, err := s.jwtService.GenerateSessionToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}
	err = s.sessions.Save(ctx, &auth.Session{
		ID:        sessionID,
		User:      *user,
		CreatedAt: s.now().UTC(),
	}, s.jwtService.TTL())
	if err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return &Session{Token: token, User: user}, nil
}

func (s *authService) record(ctx context.Context, repos *repository.Repositories, user *model.User, kind model.ConnectionEvent, email, address string) error {
	entry := &model.ConnectionLog{
		UserEmail: email,
		UserName:  unknownUserName,
		Type:      kind,
		Timestamp: s.now().UTC(),
		IPAddress: addressOrPlaceholder(address),
	}
	if user != nil {
		entry.UserID = &user.ID
		entry.UserEmail = user.Email
		entry.UserName = user.FullName()
	}
	if err := repos.ConnectionLogs.Append(ctx, entry); err != nil {
		return fmt.Errorf("record %s: %w", kind, err)
	}
	return nil
}
