// AngelaMos | 2026
// repository.go

package post

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
	Create(ctx context.Context, p *Post) error
	GetByID(ctx context.Context, id, viewerID string) (*Post, error)
	List(
		ctx context.Context,
		filter ListFilter,
		viewerID string,
		page core.PageParams,
	) ([]Post, int, error)
	Feed(ctx context.Context, userID string, page core.PageParams) ([]Post, int, error)
	SoftDelete(ctx context.Context, id string) error
	Like(ctx context.Context, userID, postID string) (*LikeResult, error)
	Unlike(ctx context.Context, userID, postID string) (*LikeResult, error)
	CreateComment(ctx context.Context, c *Comment) (postAuthorID string, err error)
	ListComments(
		ctx context.Context,
		postID string,
		page core.PageParams,
	) ([]Comment, int, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const authorColumns = `
	u.username AS author_username,
	u.first_name AS author_first_name,
	u.last_name AS author_last_name,
	up.avatar_url AS author_avatar_url`

// postSelect expects the viewer id (or NULL) as $1.
const postSelect = `
	SELECT
		p.id, p.author_id, p.content, p.image_url, p.category,
		p.like_count, p.comment_count, p.is_active, p.created_at, p.updated_at,
		` + authorColumns + `,
		EXISTS (
			SELECT 1 FROM likes l WHERE l.post_id = p.id AND l.user_id = $1
		) AS is_liked
	FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN user_profiles up ON up.user_id = p.author_id`

func (r *repository) Create(ctx context.Context, p *Post) error {
	query := `
		WITH p AS (
			INSERT INTO posts (author_id, content, image_url, category)
			VALUES ($1, $2, $3, $4)
			RETURNING id, author_id, content, image_url, category,
				like_count, comment_count, is_active, created_at, updated_at
		)
		SELECT p.*, ` + authorColumns + `, false AS is_liked
		FROM p
		JOIN users u ON u.id = p.author_id
		LEFT JOIN user_profiles up ON up.user_id = p.author_id`

	err := r.db.GetContext(ctx, p, query, p.AuthorID, p.Content, p.ImageURL, p.Category)
	if err != nil {
		if core.IsForeignKeyError(err) {
			return fmt.Errorf("create post: %w", core.ErrNotFound)
		}
		return fmt.Errorf("create post: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id, viewerID string) (*Post, error) {
	query := postSelect + ` WHERE p.id = $2 AND p.is_active`

	var p Post
	err := r.db.GetContext(ctx, &p, query, core.NullableID(viewerID), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get post: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	return &p, nil
}

// filterClause builds the WHERE clause for List with placeholders
// numbered from start.
func filterClause(filter ListFilter, start int) (string, []any) {
	conditions := []string{"p.is_active"}
	var args []any

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("p.category = $%d", start+len(args)))
		args = append(args, filter.Category)
	}

	if filter.AuthorID != "" {
		conditions = append(conditions, fmt.Sprintf("p.author_id = $%d", start+len(args)))
		args = append(args, filter.AuthorID)
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

func (r *repository) List(
	ctx context.Context,
	filter ListFilter,
	viewerID string,
	page core.PageParams,
) ([]Post, int, error) {
	countWhere, countArgs := filterClause(filter, 1)

	var total int
	if err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM posts p "+countWhere, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	where, args := filterClause(filter, 2)
	next := 2 + len(args)
	query := fmt.Sprintf(`%s
		%s
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $%d OFFSET $%d`, postSelect, where, next, next+1)

	args = append([]any{core.NullableID(viewerID)}, args...)
	args = append(args, page.Limit, page.Offset())

	var posts []Post
	if err := r.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}

	return posts, total, nil
}

// Feed returns active posts by userID and the authors userID follows.
func (r *repository) Feed(
	ctx context.Context,
	userID string,
	page core.PageParams,
) ([]Post, int, error) {
	where := `
		WHERE p.is_active AND (
			p.author_id = $1
			OR p.author_id IN (SELECT following_id FROM follows WHERE follower_id = $1)
		)`

	var total int
	if err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM posts p "+where, userID); err != nil {
		return nil, 0, fmt.Errorf("count feed: %w", err)
	}

	query := postSelect + where + `
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $2 OFFSET $3`

	var posts []Post
	if err := r.db.SelectContext(ctx, &posts, query,
		userID, page.Limit, page.Offset()); err != nil {
		return nil, 0, fmt.Errorf("list feed: %w", err)
	}

	return posts, total, nil
}

func (r *repository) SoftDelete(ctx context.Context, id string) error {
	query := `
		UPDATE posts
		SET is_active = false, updated_at = NOW()
		WHERE id = $1 AND is_active`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete post: %w", core.ErrNotFound)
	}

	return nil
}

// lockActivePost holds the post row until commit so concurrent writers
// touching the same counters queue behind each other.
func lockActivePost(ctx context.Context, tx *sqlx.Tx, postID string) (string, error) {
	var authorID string
	err := tx.GetContext(ctx, &authorID,
		`SELECT author_id FROM posts WHERE id = $1 AND is_active FOR NO KEY UPDATE`, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", core.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return authorID, nil
}

// Like inserts the edge and bumps like_count in one transaction. A second
// like by the same user returns core.ErrDuplicateKey and changes nothing.
func (r *repository) Like(
	ctx context.Context,
	userID, postID string,
) (*LikeResult, error) {
	res := &LikeResult{}

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		authorID, err := lockActivePost(ctx, tx, postID)
		if err != nil {
			return err
		}
		res.PostAuthorID = authorID

		result, err := tx.ExecContext(ctx, `
			INSERT INTO likes (user_id, post_id) VALUES ($1, $2)
			ON CONFLICT ON CONSTRAINT likes_pair_key DO NOTHING`,
			userID, postID)
		if err != nil {
			return err
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return core.ErrDuplicateKey
		}

		res.Changed = true
		return tx.GetContext(ctx, &res.LikeCount, `
			UPDATE posts SET like_count = like_count + 1
			WHERE id = $1
			RETURNING like_count`, postID)
	})
	if err != nil {
		return nil, fmt.Errorf("like post: %w", err)
	}

	return res, nil
}

// Unlike removes the edge if present. like_count only moves when an edge
// was removed and never drops below zero.
func (r *repository) Unlike(
	ctx context.Context,
	userID, postID string,
) (*LikeResult, error) {
	res := &LikeResult{}

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &res.PostAuthorID,
			`SELECT author_id FROM posts WHERE id = $1 FOR NO KEY UPDATE`, postID)
		if errors.Is(err, sql.ErrNoRows) {
			return core.ErrNotFound
		}
		if err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx,
			`DELETE FROM likes WHERE user_id = $1 AND post_id = $2`, userID, postID)
		if err != nil {
			return err
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}

		if rows == 0 {
			return tx.GetContext(ctx, &res.LikeCount,
				`SELECT like_count FROM posts WHERE id = $1`, postID)
		}

		res.Changed = true
		return tx.GetContext(ctx, &res.LikeCount, `
			UPDATE posts SET like_count = GREATEST(like_count - 1, 0)
			WHERE id = $1
			RETURNING like_count`, postID)
	})
	if err != nil {
		return nil, fmt.Errorf("unlike post: %w", err)
	}

	return res, nil
}

// CreateComment inserts c and bumps comment_count atomically. It fills the
// generated fields and author summary on c and returns the post's author.
func (r *repository) CreateComment(ctx context.Context, c *Comment) (string, error) {
	var postAuthorID string

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		authorID, err := lockActivePost(ctx, tx, c.PostID)
		if err != nil {
			return err
		}
		postAuthorID = authorID

		err = tx.GetContext(ctx, c, `
			WITH c AS (
				INSERT INTO comments (post_id, author_id, content)
				VALUES ($1, $2, $3)
				RETURNING id, post_id, author_id, content, created_at
			)
			SELECT c.*, `+authorColumns+`
			FROM c
			JOIN users u ON u.id = c.author_id
			LEFT JOIN user_profiles up ON up.user_id = c.author_id`,
			c.PostID, c.AuthorID, c.Content)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE posts SET comment_count = comment_count + 1 WHERE id = $1`, c.PostID)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("create comment: %w", err)
	}

	return postAuthorID, nil
}

// ListComments returns active comments oldest first. It reports
// core.ErrNotFound when the post is missing or inactive.
func (r *repository) ListComments(
	ctx context.Context,
	postID string,
	page core.PageParams,
) ([]Comment, int, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1 AND is_active)`, postID); err != nil {
		return nil, 0, fmt.Errorf("check post: %w", err)
	}
	if !exists {
		return nil, 0, fmt.Errorf("list comments: %w", core.ErrNotFound)
	}

	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM comments WHERE post_id = $1 AND is_active`, postID); err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	query := `
		SELECT c.id, c.post_id, c.author_id, c.content, c.created_at,
		` + authorColumns + `
		FROM comments c
		JOIN users u ON u.id = c.author_id
		LEFT JOIN user_profiles up ON up.user_id = c.author_id
		WHERE c.post_id = $1 AND c.is_active
		ORDER BY c.created_at ASC, c.id ASC
		LIMIT $2 OFFSET $3`

	var comments []Comment
	if err := r.db.SelectContext(ctx, &comments, query,
		postID, page.Limit, page.Offset()); err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}

	return comments, total, nil
}
