// AngelaMos | 2026
// fakes_test.go

package auth_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/social-backend/internal/auth"
	"github.com/carterperez-dev/templates/social-backend/internal/core"
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*auth.UserInfo
	login map[string]time.Time
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		users: map[string]*auth.UserInfo{},
		login: map[string]time.Time{},
	}
}

func (f *fakeUsers) add(t *testing.T, username, password, role string, active bool) *auth.UserInfo {
	t.Helper()
	hash, err := testPasswords(t).Hash(password)
	require.NoError(t, err)

	f.mu.Lock()
	defer f.mu.Unlock()
	u := &auth.UserInfo{
		ID:           uuid.NewString(),
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "First",
		LastName:     "Last",
		PasswordHash: hash,
		Role:         role,
		IsActive:     active,
	}
	f.users[u.ID] = u
	return u
}

func (f *fakeUsers) GetByIdentifier(_ context.Context, identifier string) (*auth.UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, identifier) || u.Username == identifier {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*auth.UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) || strings.EqualFold(u.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) Create(_ context.Context, nu auth.NewUser) (*auth.UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := &auth.UserInfo{
		ID:           uuid.NewString(),
		Email:        nu.Email,
		Username:     nu.Username,
		FirstName:    nu.FirstName,
		LastName:     nu.LastName,
		PasswordHash: nu.PasswordHash,
		Role:         "user",
		IsActive:     true,
	}
	f.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) TouchLastLogin(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.login[id] = time.Now()
	return nil
}

func (f *fakeUsers) IncrementTokenVersion(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id].TokenVersion++
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id].PasswordHash = hash
	return nil
}

func (f *fakeUsers) GetAuthProfile(_ context.Context, id string) (*auth.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &auth.UserProfile{
		ID:             u.ID,
		Email:          u.Email,
		Username:       u.Username,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Role:           u.Role,
		FollowersCount: 2,
		FollowingCount: 1,
		PostsCount:     5,
	}, nil
}

func (f *fakeUsers) setRole(id, role string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id].Role = role
}

func (f *fakeUsers) setActive(id string, active bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id].IsActive = active
}

type fakeTokens struct {
	mu     sync.Mutex
	byHash map[string]*auth.RefreshToken
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{byHash: map[string]*auth.RefreshToken{}}
}

func (f *fakeTokens) Create(_ context.Context, t *auth.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.CreatedAt = time.Now()
	cp := *t
	f.byHash[t.TokenHash] = &cp
	return nil
}

func (f *fakeTokens) FindByHash(_ context.Context, hash string) (*auth.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byHash[hash]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTokens) Rotate(_ context.Context, usedID string, next *auth.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.byHash {
		if t.ID == usedID && !t.IsUsed && t.RevokedAt == nil {
			now := time.Now()
			t.IsUsed = true
			t.UsedAt = &now
			t.ReplacedByID = &next.ID
			next.CreatedAt = now
			cp := *next
			f.byHash[next.TokenHash] = &cp
			return nil
		}
	}
	return core.ErrNotFound
}

func (f *fakeTokens) RevokeByID(_ context.Context, id string) error {
	return f.revokeWhere(func(t *auth.RefreshToken) bool { return t.ID == id })
}

func (f *fakeTokens) RevokeByFamilyID(_ context.Context, familyID string) error {
	//nolint:errcheck // family may already be revoked
	_ = f.revokeWhere(func(t *auth.RefreshToken) bool { return t.FamilyID == familyID })
	return nil
}

func (f *fakeTokens) RevokeAllForUser(_ context.Context, userID string) error {
	//nolint:errcheck // user may have no live tokens
	_ = f.revokeWhere(func(t *auth.RefreshToken) bool { return t.UserID == userID })
	return nil
}

func (f *fakeTokens) DeleteExpired(_ context.Context, olderThan time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cutoff := time.Now().Add(-olderThan)
	var n int64
	for h, t := range f.byHash {
		if t.ExpiresAt.Before(cutoff) {
			delete(f.byHash, h)
			n++
		}
	}
	return n, nil
}

func (f *fakeTokens) revokeWhere(match func(*auth.RefreshToken) bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	found := false
	for _, t := range f.byHash {
		if match(t) && t.RevokedAt == nil {
			now := time.Now()
			t.RevokedAt = &now
			found = true
		}
	}
	if !found {
		return core.ErrNotFound
	}
	return nil
}

type authFixture struct {
	svc    *auth.Service
	users  *fakeUsers
	tokens *fakeTokens
	redis  *miniredis.Miniredis
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })

	users := newFakeUsers()
	tokens := newFakeTokens()
	svc := auth.NewService(
		tokens,
		newTestJWT(t),
		users,
		core.NewTokenBlacklist(rdb),
		testPasswords(t),
		nil,
	)

	return &authFixture{svc: svc, users: users, tokens: tokens, redis: mr}
}

// testPasswords keeps argon2 cheap so auth tests stay fast.
func testPasswords(t *testing.T) *core.PasswordHasher {
	t.Helper()
	h, err := core.NewPasswordHasher(core.PasswordParams{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	require.NoError(t, err)
	return h
}
