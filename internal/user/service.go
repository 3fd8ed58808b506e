// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/carterperez-dev/templates/social-backend/internal/auth"
	"github.com/carterperez-dev/templates/social-backend/internal/core"
	"github.com/carterperez-dev/templates/social-backend/internal/metrics"
	"github.com/carterperez-dev/templates/social-backend/internal/middleware"
	"github.com/carterperez-dev/templates/social-backend/internal/notification"
)

var (
	ErrSelfFollow       = errors.New("cannot follow yourself")
	ErrAlreadyFollowing = errors.New("already following this user")
	ErrSelfModify       = errors.New("cannot change your own role or status")
)

// Notifier delivers best-effort notifications; it never reports failure.
type Notifier interface {
	Notify(ctx context.Context, e notification.Event)
}

type Service struct {
	repo     Repository
	notifier Notifier
	logger   *slog.Logger
}

func NewService(repo Repository, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *Service) GetByID(ctx context.Context, id string) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserInfo(user), nil
}

func (s *Service) GetByIdentifier(
	ctx context.Context,
	identifier string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByIdentifier(ctx, strings.TrimSpace(identifier))
	if err != nil {
		return nil, err
	}
	return toUserInfo(user), nil
}

func (s *Service) ExistsByEmailOrUsername(
	ctx context.Context,
	email, username string,
) (bool, error) {
	return s.repo.ExistsByEmailOrUsername(ctx, email, username)
}

func (s *Service) Create(ctx context.Context, nu auth.NewUser) (*auth.UserInfo, error) {
	user := &User{
		Email:        nu.Email,
		Username:     nu.Username,
		PasswordHash: nu.PasswordHash,
		FirstName:    nu.FirstName,
		LastName:     nu.LastName,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) TouchLastLogin(ctx context.Context, userID string) error {
	return s.repo.TouchLastLogin(ctx, userID)
}

func (s *Service) IncrementTokenVersion(ctx context.Context, userID string) error {
	return s.repo.IncrementTokenVersion(ctx, userID)
}

func (s *Service) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) GetAuthProfile(ctx context.Context, userID string) (*auth.UserProfile, error) {
	profile, err := s.repo.GetProfile(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	return toAuthProfile(profile), nil
}

func (s *Service) GetMe(ctx context.Context, userID string) (*Profile, error) {
	if userID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}
	return s.repo.GetProfile(ctx, userID, "")
}

func (s *Service) UpdateMe(
	ctx context.Context,
	userID string,
	req UpdateMeRequest,
) (*Profile, error) {
	if userID == "" {
		return nil, fmt.Errorf("update me: %w", core.ErrUnauthorized)
	}

	upd := req.toUpdate()
	upd.FirstName = trimmed(upd.FirstName)
	upd.LastName = trimmed(upd.LastName)
	upd.Bio = trimmed(upd.Bio)
	upd.Location = trimmed(upd.Location)

	if (upd.FirstName != nil && *upd.FirstName == "") ||
		(upd.LastName != nil && *upd.LastName == "") {
		return nil, fmt.Errorf("update me: names cannot be blank: %w", core.ErrInvalidInput)
	}

	if err := s.repo.UpdateProfile(ctx, userID, upd); err != nil {
		return nil, err
	}

	return s.repo.GetProfile(ctx, userID, "")
}

func (s *Service) DeactivateMe(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("deactivate me: %w", core.ErrUnauthorized)
	}

	if err := s.repo.Deactivate(ctx, userID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "account deactivated", "user_id", userID)
	return nil
}

// GetProfile returns an active user's profile. viewerID may be empty.
func (s *Service) GetProfile(
	ctx context.Context,
	username, viewerID string,
) (*Profile, error) {
	return s.repo.GetProfileByUsername(ctx, username, viewerID)
}

func (s *Service) Follow(
	ctx context.Context,
	actor *middleware.Session,
	username string,
) error {
	target, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if !target.IsActive {
		return fmt.Errorf("follow: %w", core.ErrNotFound)
	}

	if target.ID == actor.UserID {
		return ErrSelfFollow
	}

	following, err := s.repo.IsFollowing(ctx, actor.UserID, target.ID)
	if err != nil {
		return err
	}
	if following {
		return ErrAlreadyFollowing
	}

	if err := s.repo.Follow(ctx, actor.UserID, target.ID); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return ErrAlreadyFollowing
		}
		return err
	}

	metrics.RecordAction(metrics.ActionFollow)

	if s.notifier != nil {
		s.notifier.Notify(ctx, notification.Event{
			RecipientID: target.ID,
			SenderID:    actor.UserID,
			Type:        notification.TypeFollow,
			Message:     fmt.Sprintf("@%s started following you", actor.Username),
		})
	}

	return nil
}

// Unfollow succeeds whether or not the edge existed; it only fails when
// username is unknown.
func (s *Service) Unfollow(
	ctx context.Context,
	actor *middleware.Session,
	username string,
) error {
	target, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}

	removed, err := s.repo.Unfollow(ctx, actor.UserID, target.ID)
	if err != nil {
		return err
	}

	if removed {
		metrics.RecordAction(metrics.ActionUnfollow)
	}

	return nil
}

func (s *Service) ListFollowers(
	ctx context.Context,
	username string,
	page core.PageParams,
) ([]Summary, int, error) {
	target, err := s.activeByUsername(ctx, username)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.ListFollowers(ctx, target.ID, page)
}

func (s *Service) ListFollowing(
	ctx context.Context,
	username string,
	page core.PageParams,
) ([]Summary, int, error) {
	target, err := s.activeByUsername(ctx, username)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.ListFollowing(ctx, target.ID, page)
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	params.Search = strings.TrimSpace(params.Search)
	return s.repo.List(ctx, params)
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateUserRole(
	ctx context.Context,
	actorID, id, role string,
) (*User, error) {
	if role != RoleUser && role != RoleAdmin {
		return nil, fmt.Errorf("update role: invalid role %q: %w", role, core.ErrInvalidInput)
	}
	if actorID == id {
		return nil, ErrSelfModify
	}

	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user role changed",
		"user_id", id,
		"role", role,
		"changed_by", actorID,
	)

	return s.repo.GetByID(ctx, id)
}

func (s *Service) SetUserActive(
	ctx context.Context,
	actorID, id string,
	active bool,
) (*User, error) {
	if actorID == id {
		return nil, ErrSelfModify
	}

	var err error
	if active {
		err = s.repo.Activate(ctx, id)
	} else {
		err = s.repo.Deactivate(ctx, id)
	}
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user status changed",
		"user_id", id,
		"is_active", active,
		"changed_by", actorID,
	)

	return s.repo.GetByID(ctx, id)
}

// SetRoleByUsername is the operator path used by socialctl.
func (s *Service) SetRoleByUsername(ctx context.Context, username, role string) (*User, error) {
	target, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.UpdateUserRole(ctx, "", target.ID, role)
}

func (s *Service) activeByUsername(ctx context.Context, username string) (*User, error) {
	target, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !target.IsActive {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	return target, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

var _ auth.UserProvider = (*Service)(nil)
