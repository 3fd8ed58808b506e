// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByIdentifier(ctx context.Context, identifier string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	GetProfile(ctx context.Context, id, viewerID string) (*Profile, error)
	GetProfileByUsername(ctx context.Context, username, viewerID string) (*Profile, error)
	UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) error
	TouchLastLogin(ctx context.Context, id string) error
	IncrementTokenVersion(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Deactivate(ctx context.Context, id string) error
	Activate(ctx context.Context, id string) error
	UpdateRole(ctx context.Context, id, role string) error
	Follow(ctx context.Context, followerID, followingID string) error
	Unfollow(ctx context.Context, followerID, followingID string) (bool, error)
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
	ListFollowers(ctx context.Context, id string, page core.PageParams) ([]Summary, int, error)
	ListFollowing(ctx context.Context, id string, page core.PageParams) ([]Summary, int, error)
	List(ctx context.Context, params ListUsersParams) ([]User, int, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const userColumns = `
	id, email, username, password_hash, first_name, last_name, role,
	profile_visibility, is_active, token_version, last_login,
	created_at, updated_at`

// Follower and following counts only include active accounts so they
// agree with the paginated lists.
const profileSelect = `
	SELECT
		u.id, u.email, u.username, u.first_name, u.last_name, u.role,
		u.profile_visibility, u.created_at, u.last_login,
		COALESCE(p.bio, '') AS bio, p.avatar_url, p.website, p.location,
		(SELECT COUNT(*) FROM follows f JOIN users fu ON fu.id = f.follower_id
			WHERE f.following_id = u.id AND fu.is_active) AS followers_count,
		(SELECT COUNT(*) FROM follows f JOIN users fu ON fu.id = f.following_id
			WHERE f.follower_id = u.id AND fu.is_active) AS following_count,
		(SELECT COUNT(*) FROM posts po
			WHERE po.author_id = u.id AND po.is_active) AS posts_count,
		EXISTS (SELECT 1 FROM follows f
			WHERE f.follower_id = $2 AND f.following_id = u.id) AS is_following
	FROM users u
	LEFT JOIN user_profiles p ON p.user_id = u.id`

// Create inserts the account and its empty profile row together.
func (r *repository) Create(ctx context.Context, user *User) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO users (
				email, username, password_hash, first_name, last_name
			) VALUES ($1, $2, $3, $4, $5)
			RETURNING id, role, profile_visibility, is_active, token_version,
				created_at, updated_at`

		err := tx.QueryRowxContext(ctx, query,
			user.Email,
			user.Username,
			user.PasswordHash,
			user.FirstName,
			user.LastName,
		).Scan(
			&user.ID,
			&user.Role,
			&user.ProfileVisibility,
			&user.IsActive,
			&user.TokenVersion,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			if core.IsDuplicateKeyError(err) {
				return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
			}
			return fmt.Errorf("create user: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_profiles (user_id) VALUES ($1)`, user.ID); err != nil {
			return fmt.Errorf("create user profile: %w", err)
		}

		return nil
	})
}

func (r *repository) getOne(
	ctx context.Context,
	op, where string,
	arg any,
) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where

	var user User
	err := r.db.GetContext(ctx, &user, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &user, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getOne(ctx, "get user by id", "id = $1", id)
}

// GetByIdentifier matches an email case-insensitively or a username exactly.
func (r *repository) GetByIdentifier(
	ctx context.Context,
	identifier string,
) (*User, error) {
	return r.getOne(ctx, "get user by identifier",
		"lower(email) = lower($1) OR username = $1", identifier)
}

func (r *repository) GetByUsername(
	ctx context.Context,
	username string,
) (*User, error) {
	return r.getOne(ctx, "get user by username", "username = $1", username)
}

func (r *repository) ExistsByEmailOrUsername(
	ctx context.Context,
	email, username string,
) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM users
			WHERE lower(email) = lower($1) OR username = $2
		)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email, username); err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}

	return exists, nil
}

func (r *repository) getProfile(
	ctx context.Context,
	op, where string,
	key, viewerID string,
) (*Profile, error) {
	query := profileSelect + ` WHERE ` + where + ` AND u.is_active`

	var profile Profile
	err := r.db.GetContext(ctx, &profile, query, key, core.NullableID(viewerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &profile, nil
}

func (r *repository) GetProfile(
	ctx context.Context,
	id, viewerID string,
) (*Profile, error) {
	return r.getProfile(ctx, "get profile", "u.id = $1", id, viewerID)
}

func (r *repository) GetProfileByUsername(
	ctx context.Context,
	username, viewerID string,
) (*Profile, error) {
	return r.getProfile(ctx, "get profile by username", "u.username = $1", username, viewerID)
}

func (r *repository) UpdateProfile(
	ctx context.Context,
	id string,
	upd ProfileUpdate,
) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE users
			SET first_name = COALESCE($2, first_name),
				last_name = COALESCE($3, last_name),
				profile_visibility = COALESCE($4, profile_visibility),
				updated_at = NOW()
			WHERE id = $1 AND is_active`,
			id, upd.FirstName, upd.LastName, upd.ProfileVisibility,
		)
		if err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		if err := expectRow(result, "update user"); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE user_profiles
			SET bio = COALESCE($2, bio),
				avatar_url = CASE WHEN $3::text IS NULL
					THEN avatar_url ELSE NULLIF($3::text, '') END,
				website = CASE WHEN $4::text IS NULL
					THEN website ELSE NULLIF($4::text, '') END,
				location = CASE WHEN $5::text IS NULL
					THEN location ELSE NULLIF($5::text, '') END,
				updated_at = NOW()
			WHERE user_id = $1`,
			id, upd.Bio, upd.AvatarURL, upd.Website, upd.Location,
		)
		if err != nil {
			return fmt.Errorf("update user profile: %w", err)
		}

		return nil
	})
}

func (r *repository) exec(ctx context.Context, op, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return expectRow(result, op)
}

func expectRow(result sql.Result, op string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	return nil
}

func (r *repository) TouchLastLogin(ctx context.Context, id string) error {
	return r.exec(ctx, "touch last login",
		`UPDATE users SET last_login = NOW() WHERE id = $1`, id)
}

func (r *repository) IncrementTokenVersion(ctx context.Context, id string) error {
	return r.exec(ctx, "increment token version", `
		UPDATE users
		SET token_version = token_version + 1, updated_at = NOW()
		WHERE id = $1`, id)
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	return r.exec(ctx, "update password", `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1`, id, passwordHash)
}

// Deactivate disables the account, invalidates issued access tokens and
// revokes every outstanding refresh token.
func (r *repository) Deactivate(ctx context.Context, id string) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE users
			SET is_active = false,
				token_version = token_version + 1,
				updated_at = NOW()
			WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("deactivate user: %w", err)
		}
		if err := expectRow(result, "deactivate user"); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE refresh_tokens
			SET revoked_at = NOW()
			WHERE user_id = $1 AND revoked_at IS NULL`, id)
		if err != nil {
			return fmt.Errorf("revoke refresh tokens: %w", err)
		}

		return nil
	})
}

func (r *repository) Activate(ctx context.Context, id string) error {
	return r.exec(ctx, "activate user", `
		UPDATE users
		SET is_active = true, updated_at = NOW()
		WHERE id = $1`, id)
}

// UpdateRole also bumps token_version so sessions pick up the new role.
func (r *repository) UpdateRole(ctx context.Context, id, role string) error {
	return r.exec(ctx, "update role", `
		UPDATE users
		SET role = $2, token_version = token_version + 1, updated_at = NOW()
		WHERE id = $1`, id, role)
}

func (r *repository) Follow(
	ctx context.Context,
	followerID, followingID string,
) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO follows (follower_id, following_id) VALUES ($1, $2)`,
		followerID, followingID)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("follow: %w", core.ErrDuplicateKey)
		}
		if core.IsForeignKeyError(err) {
			return fmt.Errorf("follow: %w", core.ErrNotFound)
		}
		return fmt.Errorf("follow: %w", err)
	}

	return nil
}

// Unfollow reports whether an edge was removed.
func (r *repository) Unfollow(
	ctx context.Context,
	followerID, followingID string,
) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = $1 AND following_id = $2`,
		followerID, followingID)
	if err != nil {
		return false, fmt.Errorf("unfollow: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}

	return rows > 0, nil
}

func (r *repository) IsFollowing(
	ctx context.Context,
	followerID, followingID string,
) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM follows WHERE follower_id = $1 AND following_id = $2
		)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, followerID, followingID); err != nil {
		return false, fmt.Errorf("check following: %w", err)
	}

	return exists, nil
}

func (r *repository) ListFollowers(
	ctx context.Context,
	id string,
	page core.PageParams,
) ([]Summary, int, error) {
	return r.listEdges(ctx, "list followers", "following_id", "follower_id", id, page)
}

func (r *repository) ListFollowing(
	ctx context.Context,
	id string,
	page core.PageParams,
) ([]Summary, int, error) {
	return r.listEdges(ctx, "list following", "follower_id", "following_id", id, page)
}

// listEdges pages through follows where matchCol = id, returning the user
// on the other side of each edge, newest edge first.
func (r *repository) listEdges(
	ctx context.Context,
	op, matchCol, otherCol, id string,
	page core.PageParams,
) ([]Summary, int, error) {
	joins := fmt.Sprintf("FROM follows f JOIN users u ON u.id = f.%s", otherCol)
	where := fmt.Sprintf("WHERE f.%s = $1 AND u.is_active", matchCol)

	var total int
	if err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) "+joins+" "+where, id); err != nil {
		return nil, 0, fmt.Errorf("%s: count: %w", op, err)
	}

	query := `
		SELECT u.id, u.username, u.first_name, u.last_name,
			p.avatar_url, f.created_at AS followed_at
		` + joins + `
		LEFT JOIN user_profiles p ON p.user_id = u.id
		` + where + `
		ORDER BY f.created_at DESC, f.id DESC
		LIMIT $2 OFFSET $3`

	var items []Summary
	if err := r.db.SelectContext(ctx, &items, query, id, page.Limit, page.Offset()); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	return items, total, nil
}

// List backs admin user management. Search matches username, email and
// names case-insensitively with LIKE wildcards escaped.
func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	var conditions []string
	var args []any
	argIndex := 1

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(username ILIKE $%d OR email ILIKE $%d OR first_name ILIKE $%d OR last_name ILIKE $%d)",
			argIndex, argIndex, argIndex, argIndex,
		))
		args = append(args, "%"+core.EscapeLike(params.Search)+"%")
		argIndex++
	}

	if params.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argIndex))
		args = append(args, params.Role)
		argIndex++
	}

	if params.Active != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argIndex))
		args = append(args, *params.Active)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM users " + whereClause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT `+userColumns+`
		FROM users
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIndex, argIndex+1,
	)

	args = append(args, params.Page.Limit, params.Page.Offset())

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}
