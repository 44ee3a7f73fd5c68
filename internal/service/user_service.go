package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"libraryhub/internal/access"
	"libraryhub/internal/auth"
	"libraryhub/internal/errors"
	"libraryhub/internal/model"
	"libraryhub/internal/repository"
	"libraryhub/internal/store"
)

// UserUpdate replaces the supplied fields of a user. Nil fields are left
// unchanged.
type UserUpdate struct {
	Email     *string
	Username  *string
	FirstName *string
	LastName  *string
	Avatar    *string
	Role      *model.Role
	IsActive  *bool
}

// UserService exposes user administration.
type UserService interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id uint) (*model.User, error)
	UpdateUser(ctx context.Context, id uint, in UserUpdate) (*model.User, error)
	DeleteUser(ctx context.Context, id uint) error
}

type userService struct {
	store    *store.Store
	sessions auth.SessionStore
	logger   *slog.Logger
}

// NewUserService builds a UserService. Sessions of a user are revoked when
// their role, activity or existence changes.
func NewUserService(st *store.Store, sessions auth.SessionStore) UserService {
	return &userService{store: st, sessions: sessions, logger: moduleLogger("users")}
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	if _, err := access.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	users, err := s.store.Repos().Users.List(ctx)
	return users, translate(err, "list users", nil)
}

// GetUser is open to administrators and to the user themselves.
func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	if _, err := access.RequireOwnerOrAdmin(ctx, id); err != nil {
		return nil, err
	}
	user, err := s.store.Repos().Users.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "get user", errors.ErrUserNotFound)
	}
	return user, nil
}

func (s *userService) UpdateUser(ctx context.Context, id uint, in UserUpdate) (*model.User, error) {
	if _, err := access.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if in.Role != nil && !in.Role.Valid() {
		return nil, errors.ErrInvalidRole
	}

	var (
		user   *model.User
		revoke bool
	)
	err := s.store.Atomic(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		user, err = repos.Users.FindByID(ctx, id)
		if err != nil {
			return translate(err, "find user", errors.ErrUserNotFound)
		}
		if in.Email != nil {
			email := normalizeEmail(*in.Email)
			if email != user.Email {
				if _, err := repos.Users.FindByEmail(ctx, email); err == nil {
					return errors.ErrEmailTaken
				} else if !isNotFound(err) {
					return fmt.Errorf("find user: %w", err)
				}
				user.Email = email
				revoke = true
			}
		}
		if in.Username != nil {
			user.Username = strings.TrimSpace(*in.Username)
		}
		if in.FirstName != nil {
			user.FirstName = *in.FirstName
			revoke = true
		}
		if in.LastName != nil {
			user.LastName = *in.LastName
			revoke = true
		}
		if in.Avatar != nil {
			user.Avatar = *in.Avatar
		}
		if in.Role != nil && *in.Role != user.Role {
			user.Role = *in.Role
			revoke = true
		}
		if in.IsActive != nil && *in.IsActive != user.IsActive {
			user.IsActive = *in.IsActive
			revoke = true
		}
		if err := repos.Users.Update(ctx, user); err != nil {
			if isDuplicate(err) {
				return errors.ErrEmailTaken
			}
			return fmt.Errorf("update user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if revoke {
		s.revoke(ctx, id)
	}
	return user, nil
}

// DeleteUser removes another user. Administrators cannot delete themselves.
func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	p, err := access.RequireAdmin(ctx)
	if err != nil {
		return err
	}
	if p.UserID == id {
		return errors.ErrCannotDeleteSelf
	}
	err = s.store.Atomic(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		return translate(repos.Users.Delete(ctx, id), "delete user", errors.ErrUserNotFound)
	})
	if err != nil {
		return err
	}
	s.revoke(ctx, id)
	s.logger.Info("user deleted", "operation", "delete_user", "outcome", "success", "user_id", id, "by", p.UserID)
	return nil
}

func (s *userService) revoke(ctx context.Context, userID uint) {
	if err := s.sessions.RevokeUser(ctx, userID); err != nil {
		s.logger.Warn("revoke sessions", "operation", "revoke_sessions", "outcome", "failure", "user_id", userID, "error", err)
	}
}
