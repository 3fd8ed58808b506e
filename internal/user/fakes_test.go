// AngelaMos | 2026
// fakes_test.go

package user_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
	"github.com/carterperez-dev/templates/social-backend/internal/notification"
	"github.com/carterperez-dev/templates/social-backend/internal/user"
)

type edge struct {
	follower, following string
	at                  time.Time
}

type memRepo struct {
	mu       sync.Mutex
	users    map[string]*user.User
	profiles map[string]*user.Profile
	edges    []edge
}

func newMemRepo() *memRepo {
	return &memRepo{
		users:    map[string]*user.User{},
		profiles: map[string]*user.Profile{},
	}
}

func (m *memRepo) seed(username string) *user.User {
	u := &user.User{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: strings.ToUpper(username[:1]) + username[1:],
		LastName:  "Test",
	}
	_ = m.Create(context.Background(), u)
	return u
}

func (m *memRepo) Create(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) || existing.Username == u.Username {
			return core.ErrDuplicateKey
		}
	}
	u.ID = uuid.NewString()
	u.Role = user.RoleUser
	u.ProfileVisibility = user.VisibilityPublic
	u.IsActive = true
	u.CreatedAt = time.Now()
	cp := *u
	m.users[u.ID] = &cp
	m.profiles[u.ID] = &user.Profile{}
	return nil
}

func (m *memRepo) find(match func(*user.User) bool) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (m *memRepo) GetByID(_ context.Context, id string) (*user.User, error) {
	return m.find(func(u *user.User) bool { return u.ID == id })
}

func (m *memRepo) GetByIdentifier(_ context.Context, identifier string) (*user.User, error) {
	return m.find(func(u *user.User) bool {
		return strings.EqualFold(u.Email, identifier) || u.Username == identifier
	})
}

func (m *memRepo) GetByUsername(_ context.Context, username string) (*user.User, error) {
	return m.find(func(u *user.User) bool { return u.Username == username })
}

func (m *memRepo) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	_, err := m.find(func(u *user.User) bool {
		return strings.EqualFold(u.Email, email) || u.Username == username
	})
	return err == nil, nil
}

func (m *memRepo) profileFor(u *user.User, viewerID string) *user.Profile {
	p := *m.profiles[u.ID]
	p.ID = u.ID
	p.Email = u.Email
	p.Username = u.Username
	p.FirstName = u.FirstName
	p.LastName = u.LastName
	p.Role = u.Role
	p.ProfileVisibility = u.ProfileVisibility
	p.CreatedAt = u.CreatedAt
	p.LastLogin = u.LastLogin
	p.FollowersCount, p.FollowingCount, p.IsFollowing = 0, 0, false
	for _, e := range m.edges {
		if e.following == u.ID && m.users[e.follower].IsActive {
			p.FollowersCount++
		}
		if e.follower == u.ID && m.users[e.following].IsActive {
			p.FollowingCount++
		}
		if viewerID != "" && e.follower == viewerID && e.following == u.ID {
			p.IsFollowing = true
		}
	}
	return &p
}

func (m *memRepo) GetProfile(_ context.Context, id, viewerID string) (*user.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || !u.IsActive {
		return nil, core.ErrNotFound
	}
	return m.profileFor(u, viewerID), nil
}

func (m *memRepo) GetProfileByUsername(_ context.Context, username, viewerID string) (*user.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username && u.IsActive {
			return m.profileFor(u, viewerID), nil
		}
	}
	return nil, core.ErrNotFound
}

func (m *memRepo) UpdateProfile(_ context.Context, id string, upd user.ProfileUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || !u.IsActive {
		return core.ErrNotFound
	}
	p := m.profiles[id]
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.ProfileVisibility != nil {
		u.ProfileVisibility = *upd.ProfileVisibility
	}
	if upd.Bio != nil {
		p.Bio = *upd.Bio
	}
	setNullable := func(dst **string, v *string) {
		if v == nil {
			return
		}
		if *v == "" {
			*dst = nil
			return
		}
		s := *v
		*dst = &s
	}
	setNullable(&p.AvatarURL, upd.AvatarURL)
	setNullable(&p.Website, upd.Website)
	setNullable(&p.Location, upd.Location)
	return nil
}

func (m *memRepo) mutate(id string, fn func(*user.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return core.ErrNotFound
	}
	fn(u)
	return nil
}

func (m *memRepo) TouchLastLogin(_ context.Context, id string) error {
	return m.mutate(id, func(u *user.User) {
		now := time.Now()
		u.LastLogin = &now
	})
}

func (m *memRepo) IncrementTokenVersion(_ context.Context, id string) error {
	return m.mutate(id, func(u *user.User) { u.TokenVersion++ })
}

func (m *memRepo) UpdatePassword(_ context.Context, id, hash string) error {
	return m.mutate(id, func(u *user.User) { u.PasswordHash = hash })
}

func (m *memRepo) Deactivate(_ context.Context, id string) error {
	return m.mutate(id, func(u *user.User) {
		u.IsActive = false
		u.TokenVersion++
	})
}

func (m *memRepo) Activate(_ context.Context, id string) error {
	return m.mutate(id, func(u *user.User) { u.IsActive = true })
}

func (m *memRepo) UpdateRole(_ context.Context, id, role string) error {
	return m.mutate(id, func(u *user.User) {
		u.Role = role
		u.TokenVersion++
	})
}

func (m *memRepo) Follow(_ context.Context, followerID, followingID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.edges {
		if e.follower == followerID && e.following == followingID {
			return core.ErrDuplicateKey
		}
	}
	m.edges = append(m.edges, edge{
		follower:  followerID,
		following: followingID,
		at:        time.Now().Add(time.Duration(len(m.edges)) * time.Millisecond),
	})
	return nil
}

func (m *memRepo) Unfollow(_ context.Context, followerID, followingID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.edges {
		if e.follower == followerID && e.following == followingID {
			m.edges = append(m.edges[:i], m.edges[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) IsFollowing(_ context.Context, followerID, followingID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.edges {
		if e.follower == followerID && e.following == followingID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) listEdges(id string, followers bool, page core.PageParams) ([]user.Summary, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []user.Summary
	for _, e := range m.edges {
		match, other := e.follower, e.following
		if followers {
			match, other = e.following, e.follower
		}
		if match != id || !m.users[other].IsActive {
			continue
		}
		u := m.users[other]
		out = append(out, user.Summary{
			ID:         u.ID,
			Username:   u.Username,
			FirstName:  u.FirstName,
			LastName:   u.LastName,
			FollowedAt: e.at,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FollowedAt.After(out[j].FollowedAt) })
	total := len(out)
	start := min(page.Offset(), total)
	end := min(start+page.Limit, total)
	return out[start:end], total, nil
}

func (m *memRepo) ListFollowers(_ context.Context, id string, page core.PageParams) ([]user.Summary, int, error) {
	return m.listEdges(id, true, page)
}

func (m *memRepo) ListFollowing(_ context.Context, id string, page core.PageParams) ([]user.Summary, int, error) {
	return m.listEdges(id, false, page)
}

func (m *memRepo) List(_ context.Context, params user.ListUsersParams) ([]user.User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []user.User
	for _, u := range m.users {
		if params.Search != "" && !strings.Contains(strings.ToLower(u.Username), strings.ToLower(params.Search)) {
			continue
		}
		if params.Role != "" && u.Role != params.Role {
			continue
		}
		if params.Active != nil && u.IsActive != *params.Active {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	total := len(out)
	start := min(params.Page.Offset(), total)
	end := min(start+params.Page.Limit, total)
	return out[start:end], total, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notification.Event
}

func (n *recordingNotifier) Notify(_ context.Context, e notification.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

var _ user.Repository = (*memRepo)(nil)
