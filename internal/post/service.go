// AngelaMos | 2026
// service.go

package post

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
	"github.com/carterperez-dev/templates/social-backend/internal/metrics"
	"github.com/carterperez-dev/templates/social-backend/internal/middleware"
	"github.com/carterperez-dev/templates/social-backend/internal/notification"
)

var (
	ErrAlreadyLiked    = errors.New("post already liked")
	ErrInvalidCategory = errors.New("invalid category")
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

func (s *Service) CreatePost(
	ctx context.Context,
	authorID string,
	req CreatePostRequest,
) (*Post, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, core.ValidationError("Content is required")
	}
	if utf8.RuneCountInString(content) > MaxPostLength {
		return nil, core.ValidationError(
			fmt.Sprintf("Content must be %d characters or less", MaxPostLength))
	}

	category := req.Category
	if category == "" {
		category = CategoryGeneral
	}
	if !IsValidCategory(category) {
		return nil, ErrInvalidCategory
	}

	var imageURL *string
	if req.ImageURL != nil && strings.TrimSpace(*req.ImageURL) != "" {
		u := strings.TrimSpace(*req.ImageURL)
		imageURL = &u
	}

	p := &Post{
		AuthorID: authorID,
		Content:  content,
		ImageURL: imageURL,
		Category: category,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	metrics.RecordAction(metrics.ActionPost)
	return p, nil
}

func (s *Service) GetPost(ctx context.Context, id, viewerID string) (*Post, error) {
	return s.repo.GetByID(ctx, id, viewerID)
}

// DeletePost soft-deletes a post. Only its author or a moderator may.
func (s *Service) DeletePost(
	ctx context.Context,
	actor *middleware.Session,
	id string,
) error {
	p, err := s.repo.GetByID(ctx, id, "")
	if err != nil {
		return err
	}

	if p.AuthorID != actor.UserID && !actor.Can(middleware.CapModerateContent) {
		return fmt.Errorf("delete post: %w", core.ErrForbidden)
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	if p.AuthorID != actor.UserID {
		s.logger.InfoContext(ctx, "post removed by moderator",
			"post_id", id,
			"author_id", p.AuthorID,
			"moderator_id", actor.UserID,
		)
	}

	return nil
}

func (s *Service) ListPosts(
	ctx context.Context,
	filter ListFilter,
	viewerID string,
	page core.PageParams,
) ([]Post, int, error) {
	if filter.Category != "" && !IsValidCategory(filter.Category) {
		return nil, 0, ErrInvalidCategory
	}
	if filter.AuthorID != "" && !core.IsValidID(filter.AuthorID) {
		return nil, 0, core.ValidationError("author_id must be a valid id")
	}
	return s.repo.List(ctx, filter, viewerID, page)
}

// Feed lists posts by the user and everyone they follow, newest first.
func (s *Service) Feed(
	ctx context.Context,
	userID string,
	page core.PageParams,
) ([]Post, int, error) {
	if userID == "" {
		return nil, 0, fmt.Errorf("feed: %w", core.ErrUnauthorized)
	}
	return s.repo.Feed(ctx, userID, page)
}

func (s *Service) Like(
	ctx context.Context,
	actor *middleware.Session,
	postID string,
) (*LikeResult, error) {
	res, err := s.repo.Like(ctx, actor.UserID, postID)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrAlreadyLiked
		}
		return nil, err
	}

	metrics.RecordAction(metrics.ActionLike)
	s.notify(ctx, notification.Event{
		RecipientID: res.PostAuthorID,
		SenderID:    actor.UserID,
		Type:        notification.TypeLike,
		PostID:      postID,
		Message:     fmt.Sprintf("@%s liked your post", actor.Username),
	})

	return res, nil
}

// Unlike succeeds whether or not the user had liked the post.
func (s *Service) Unlike(
	ctx context.Context,
	actor *middleware.Session,
	postID string,
) (*LikeResult, error) {
	res, err := s.repo.Unlike(ctx, actor.UserID, postID)
	if err != nil {
		return nil, err
	}

	if res.Changed {
		metrics.RecordAction(metrics.ActionUnlike)
	}

	return res, nil
}

func (s *Service) CreateComment(
	ctx context.Context,
	actor *middleware.Session,
	postID string,
	req CreateCommentRequest,
) (*Comment, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, core.ValidationError("Comment content is required")
	}
	if utf8.RuneCountInString(content) > MaxCommentLength {
		return nil, core.ValidationError(
			fmt.Sprintf("Comment must be %d characters or less", MaxCommentLength))
	}

	c := &Comment{
		PostID:   postID,
		AuthorID: actor.UserID,
		Content:  content,
	}

	postAuthorID, err := s.repo.CreateComment(ctx, c)
	if err != nil {
		return nil, err
	}

	metrics.RecordAction(metrics.ActionComment)
	s.notify(ctx, notification.Event{
		RecipientID: postAuthorID,
		SenderID:    actor.UserID,
		Type:        notification.TypeComment,
		PostID:      postID,
		Message:     fmt.Sprintf("@%s commented on your post", actor.Username),
	})

	return c, nil
}

func (s *Service) ListComments(
	ctx context.Context,
	postID string,
	page core.PageParams,
) ([]Comment, int, error) {
	return s.repo.ListComments(ctx, postID, page)
}

func (s *Service) notify(ctx context.Context, e notification.Event) {
	if s.notifier == nil || e.RecipientID == e.SenderID {
		return
	}
	s.notifier.Notify(ctx, e)
}
