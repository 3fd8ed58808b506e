// AngelaMos | 2026
// dto.go

package user

import (
	"time"

	"github.com/carterperez-dev/templates/social-backend/internal/auth"
	"github.com/carterperez-dev/templates/social-backend/internal/core"
)

type UpdateMeRequest struct {
	FirstName         *string `json:"first_name,omitempty"         validate:"omitempty,min=1,max=100"`
	LastName          *string `json:"last_name,omitempty"          validate:"omitempty,min=1,max=100"`
	ProfileVisibility *string `json:"profile_visibility,omitempty" validate:"omitempty,oneof=public private followers_only"`
	Bio               *string `json:"bio,omitempty"                validate:"omitempty,max=500"`
	AvatarURL         *string `json:"avatar_url,omitempty"         validate:"omitempty,url,max=2048"`
	Website           *string `json:"website,omitempty"            validate:"omitempty,url,max=2048"`
	Location          *string `json:"location,omitempty"           validate:"omitempty,max=100"`
}

func (r UpdateMeRequest) toUpdate() ProfileUpdate {
	return ProfileUpdate{
		FirstName:         r.FirstName,
		LastName:          r.LastName,
		ProfileVisibility: r.ProfileVisibility,
		Bio:               r.Bio,
		AvatarURL:         r.AvatarURL,
		Website:           r.Website,
		Location:          r.Location,
	}
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

type UpdateActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

type ProfileResponse struct {
	ID                string     `json:"id"`
	Email             string     `json:"email,omitempty"`
	Username          string     `json:"username"`
	FirstName         string     `json:"first_name"`
	LastName          string     `json:"last_name"`
	Role              string     `json:"role"`
	ProfileVisibility string     `json:"profile_visibility"`
	Bio               string     `json:"bio"`
	AvatarURL         *string    `json:"avatar_url"`
	Website           *string    `json:"website"`
	Location          *string    `json:"location"`
	FollowersCount    int        `json:"followers_count"`
	FollowingCount    int        `json:"following_count"`
	PostsCount        int        `json:"posts_count"`
	IsFollowing       *bool      `json:"is_following,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	LastLogin         *time.Time `json:"last_login,omitempty"`
}

type SummaryResponse struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	AvatarURL  *string   `json:"avatar_url"`
	FollowedAt time.Time `json:"followed_at"`
}

// AdminUserResponse is the account view for user management.
type AdminUserResponse struct {
	ID                string     `json:"id"`
	Email             string     `json:"email"`
	Username          string     `json:"username"`
	FirstName         string     `json:"first_name"`
	LastName          string     `json:"last_name"`
	Role              string     `json:"role"`
	ProfileVisibility string     `json:"profile_visibility"`
	IsActive          bool       `json:"is_active"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	LastLogin         *time.Time `json:"last_login"`
}

type ListUsersParams struct {
	Page   core.PageParams
	Search string
	Role   string
	Active *bool
}

// ToProfileResponse renders p for a viewer. Email and last login are only
// shown to the owner; IsFollowing only when a viewer is signed in.
func ToProfileResponse(p *Profile, viewerID string) ProfileResponse {
	resp := ProfileResponse{
		ID:                p.ID,
		Username:          p.Username,
		FirstName:         p.FirstName,
		LastName:          p.LastName,
		Role:              p.Role,
		ProfileVisibility: p.ProfileVisibility,
		Bio:               p.Bio,
		AvatarURL:         p.AvatarURL,
		Website:           p.Website,
		Location:          p.Location,
		FollowersCount:    p.FollowersCount,
		FollowingCount:    p.FollowingCount,
		PostsCount:        p.PostsCount,
		CreatedAt:         p.CreatedAt,
	}

	switch viewerID {
	case "":
	case p.ID:
		resp.Email = p.Email
		resp.LastLogin = p.LastLogin
	default:
		following := p.IsFollowing
		resp.IsFollowing = &following
	}

	return resp
}

func toAuthProfile(p *Profile) *auth.UserProfile {
	return &auth.UserProfile{
		ID:                p.ID,
		Email:             p.Email,
		Username:          p.Username,
		FirstName:         p.FirstName,
		LastName:          p.LastName,
		Role:              p.Role,
		ProfileVisibility: p.ProfileVisibility,
		Bio:               p.Bio,
		AvatarURL:         p.AvatarURL,
		Website:           p.Website,
		Location:          p.Location,
		FollowersCount:    p.FollowersCount,
		FollowingCount:    p.FollowingCount,
		PostsCount:        p.PostsCount,
		CreatedAt:         p.CreatedAt,
		LastLogin:         p.LastLogin,
	}
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		IsActive:     u.IsActive,
		TokenVersion: u.TokenVersion,
	}
}

func ToSummaryResponseList(items []Summary) []SummaryResponse {
	out := make([]SummaryResponse, 0, len(items))
	for _, s := range items {
		out = append(out, SummaryResponse(s))
	}
	return out
}

func ToAdminUserResponse(u *User) AdminUserResponse {
	return AdminUserResponse{
		ID:                u.ID,
		Email:             u.Email,
		Username:          u.Username,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Role:              u.Role,
		ProfileVisibility: u.ProfileVisibility,
		IsActive:          u.IsActive,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
		LastLogin:         u.LastLogin,
	}
}

func ToAdminUserResponseList(users []User) []AdminUserResponse {
	out := make([]AdminUserResponse, 0, len(users))
	for i := range users {
		out = append(out, ToAdminUserResponse(&users[i]))
	}
	return out
}
