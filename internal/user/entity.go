// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/carterperez-dev/templates/social-backend/internal/middleware"
)

const (
	RoleUser  = middleware.RoleUser
	RoleAdmin = middleware.RoleAdmin
)

const (
	VisibilityPublic        = "public"
	VisibilityPrivate       = "private"
	VisibilityFollowersOnly = "followers_only"
)

type User struct {
	ID                string     `db:"id"`
	Email             string     `db:"email"`
	Username          string     `db:"username"`
	PasswordHash      string     `db:"password_hash"`
	FirstName         string     `db:"first_name"`
	LastName          string     `db:"last_name"`
	Role              string     `db:"role"`
	ProfileVisibility string     `db:"profile_visibility"`
	IsActive          bool       `db:"is_active"`
	TokenVersion      int        `db:"token_version"`
	LastLogin         *time.Time `db:"last_login"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
}

// Profile is a user joined with its profile row and graph counts.
// IsFollowing is only meaningful when the profile was loaded for a viewer.
type Profile struct {
	ID                string     `db:"id"`
	Email             string     `db:"email"`
	Username          string     `db:"username"`
	FirstName         string     `db:"first_name"`
	LastName          string     `db:"last_name"`
	Role              string     `db:"role"`
	ProfileVisibility string     `db:"profile_visibility"`
	Bio               string     `db:"bio"`
	AvatarURL         *string    `db:"avatar_url"`
	Website           *string    `db:"website"`
	Location          *string    `db:"location"`
	FollowersCount    int        `db:"followers_count"`
	FollowingCount    int        `db:"following_count"`
	PostsCount        int        `db:"posts_count"`
	IsFollowing       bool       `db:"is_following"`
	CreatedAt         time.Time  `db:"created_at"`
	LastLogin         *time.Time `db:"last_login"`
}

// Summary is the public card shown in follower lists.
type Summary struct {
	ID         string    `db:"id"`
	Username   string    `db:"username"`
	FirstName  string    `db:"first_name"`
	LastName   string    `db:"last_name"`
	AvatarURL  *string   `db:"avatar_url"`
	FollowedAt time.Time `db:"followed_at"`
}

// ProfileUpdate holds optional changes; nil fields are left untouched and
// an empty string clears a nullable profile field.
type ProfileUpdate struct {
	FirstName         *string
	LastName          *string
	ProfileVisibility *string
	Bio               *string
	AvatarURL         *string
	Website           *string
	Location          *string
}
