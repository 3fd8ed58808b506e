// AngelaMos | 2026
// fakes_test.go

package post_test

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
	"github.com/carterperez-dev/templates/social-backend/internal/notification"
	"github.com/carterperez-dev/templates/social-backend/internal/post"
)

type likeKey struct{ user, post string }

// memStore mimics the posts, comments, likes and follows tables.
type memStore struct {
	mu       sync.Mutex
	clock    time.Time
	names    map[string]string
	posts    map[string]*post.Post
	comments []post.Comment
	likes    map[likeKey]bool
	follows  map[string][]string
}

func newMemStore() *memStore {
	return &memStore{
		clock:   time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		names:   map[string]string{},
		posts:   map[string]*post.Post{},
		likes:   map[likeKey]bool{},
		follows: map[string][]string{},
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) addUser(username string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	m.names[id] = username
	return id
}

func (m *memStore) follow(follower, following string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.follows[follower] = append(m.follows[follower], following)
}

func (m *memStore) view(p *post.Post, viewerID string) post.Post {
	cp := *p
	cp.AuthorUsername = m.names[p.AuthorID]
	cp.IsLiked = viewerID != "" && m.likes[likeKey{viewerID, p.ID}]
	return cp
}

func (m *memStore) Create(_ context.Context, p *post.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = uuid.NewString()
	p.IsActive = true
	p.CreatedAt = m.tick()
	p.UpdatedAt = p.CreatedAt
	p.AuthorUsername = m.names[p.AuthorID]
	cp := *p
	m.posts[p.ID] = &cp
	return nil
}

func (m *memStore) GetByID(_ context.Context, id, viewerID string) (*post.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok || !p.IsActive {
		return nil, core.ErrNotFound
	}
	v := m.view(p, viewerID)
	return &v, nil
}

func (m *memStore) page(match func(*post.Post) bool, viewerID string, page core.PageParams) ([]post.Post, int) {
	var out []post.Post
	for _, p := range m.posts {
		if p.IsActive && match(p) {
			out = append(out, m.view(p, viewerID))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	total := len(out)
	start := min(page.Offset(), total)
	end := min(start+page.Limit, total)
	return out[start:end], total
}

func (m *memStore) List(_ context.Context, f post.ListFilter, viewerID string, page core.PageParams) ([]post.Post, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out, total := m.page(func(p *post.Post) bool {
		return (f.Category == "" || p.Category == f.Category) &&
			(f.AuthorID == "" || p.AuthorID == f.AuthorID)
	}, viewerID, page)
	return out, total, nil
}

func (m *memStore) Feed(_ context.Context, userID string, page core.PageParams) ([]post.Post, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	following := m.follows[userID]
	out, total := m.page(func(p *post.Post) bool {
		return p.AuthorID == userID || slices.Contains(following, p.AuthorID)
	}, userID, page)
	return out, total, nil
}

func (m *memStore) SoftDelete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok || !p.IsActive {
		return core.ErrNotFound
	}
	p.IsActive = false
	return nil
}

func (m *memStore) Like(_ context.Context, userID, postID string) (*post.LikeResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[postID]
	if !ok || !p.IsActive {
		return nil, core.ErrNotFound
	}
	k := likeKey{userID, postID}
	if m.likes[k] {
		return nil, core.ErrDuplicateKey
	}
	m.likes[k] = true
	p.LikeCount++
	return &post.LikeResult{PostAuthorID: p.AuthorID, LikeCount: p.LikeCount, Changed: true}, nil
}

func (m *memStore) Unlike(_ context.Context, userID, postID string) (*post.LikeResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[postID]
	if !ok {
		return nil, core.ErrNotFound
	}
	k := likeKey{userID, postID}
	res := &post.LikeResult{PostAuthorID: p.AuthorID}
	if m.likes[k] {
		delete(m.likes, k)
		p.LikeCount = max(p.LikeCount-1, 0)
		res.Changed = true
	}
	res.LikeCount = p.LikeCount
	return res, nil
}

func (m *memStore) CreateComment(_ context.Context, c *post.Comment) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[c.PostID]
	if !ok || !p.IsActive {
		return "", core.ErrNotFound
	}
	c.ID = uuid.NewString()
	c.CreatedAt = m.tick()
	c.AuthorUsername = m.names[c.AuthorID]
	m.comments = append(m.comments, *c)
	p.CommentCount++
	return p.AuthorID, nil
}

func (m *memStore) ListComments(_ context.Context, postID string, page core.PageParams) ([]post.Comment, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.posts[postID]; !ok || !p.IsActive {
		return nil, 0, core.ErrNotFound
	}
	var out []post.Comment
	for _, c := range m.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	total := len(out)
	start := min(page.Offset(), total)
	end := min(start+page.Limit, total)
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

func (n *recordingNotifier) count(recipient, kind string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, e := range n.events {
		if e.RecipientID == recipient && e.Type == kind {
			c++
		}
	}
	return c
}

var _ post.Repository = (*memStore)(nil)
