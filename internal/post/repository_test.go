// AngelaMos | 2026
// repository_test.go

package post_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
	"github.com/carterperez-dev/templates/social-backend/internal/post"
)

func newRepo(t *testing.T) (post.Repository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })
	return post.NewRepository(sqlx.NewDb(mockDB, "pgx")), mock
}

var postRowColumns = []string{
	"id", "author_id", "content", "image_url", "category",
	"like_count", "comment_count", "is_active", "created_at", "updated_at",
	"author_username", "author_first_name", "author_last_name", "author_avatar_url",
	"is_liked",
}

func TestLikeIncrementsCounterInTransaction(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT author_id FROM posts WHERE id = $1 AND is_active FOR NO KEY UPDATE")).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"author_id"}).AddRow("bob"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO likes")).
		WithArgs("alice", "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SET like_count = like_count + 1")).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"like_count"}).AddRow(1))
	mock.ExpectCommit()

	res, err := repo.Like(context.Background(), "alice", "p1")
	require.NoError(t, err)
	assert.Equal(t, "bob", res.PostAuthorID)
	assert.Equal(t, 1, res.LikeCount)
	assert.True(t, res.Changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikeTwiceRollsBack(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR NO KEY UPDATE")).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"author_id"}).AddRow("bob"))
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT ON CONSTRAINT likes_pair_key DO NOTHING")).
		WithArgs("alice", "p1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Like(context.Background(), "alice", "p1")
	assert.ErrorIs(t, err, core.ErrDuplicateKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikeMissingPost(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR NO KEY UPDATE")).
		WithArgs("p1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Like(context.Background(), "alice", "p1")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnlikeWithoutEdgeLeavesCounter(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT author_id FROM posts WHERE id = $1 FOR NO KEY UPDATE")).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"author_id"}).AddRow("bob"))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM likes")).
		WithArgs("alice", "p1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT like_count FROM posts")).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"like_count"}).AddRow(0))
	mock.ExpectCommit()

	res, err := repo.Unlike(context.Background(), "alice", "p1")
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Zero(t, res.LikeCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnlikeFloorsCounterAtZero(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR NO KEY UPDATE")).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"author_id"}).AddRow("bob"))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM likes")).
		WithArgs("alice", "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("GREATEST(like_count - 1, 0)")).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"like_count"}).AddRow(0))
	mock.ExpectCommit()

	res, err := repo.Unlike(context.Background(), "alice", "p1")
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCommentBumpsCounter(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR NO KEY UPDATE")).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"author_id"}).AddRow("bob"))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO comments")).
		WithArgs("p1", "alice", "nice").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "post_id", "author_id", "content", "created_at",
			"author_username", "author_first_name", "author_last_name", "author_avatar_url",
		}).AddRow("c1", "p1", "alice", "nice", now, "alice", "Alice", "A", nil))
	mock.ExpectExec(regexp.QuoteMeta("SET comment_count = comment_count + 1")).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c := &post.Comment{PostID: "p1", AuthorID: "alice", Content: "nice"}
	postAuthor, err := repo.CreateComment(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, "bob", postAuthor)
	assert.Equal(t, "c1", c.ID)
	assert.Equal(t, "alice", c.AuthorUsername)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAppliesFiltersToTotal(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT COUNT(*) FROM posts p WHERE p.is_active AND p.category = $1 AND p.author_id = $2")).
		WithArgs("question", "a1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(
		"WHERE p.is_active AND p.category = $2 AND p.author_id = $3")).
		WithArgs(nil, "question", "a1", 20, 0).
		WillReturnRows(sqlmock.NewRows(postRowColumns).AddRow(
			"p1", "a1", "why?", nil, "question",
			0, 0, true, now, now,
			"ann", "Ann", "A", nil,
			false,
		))

	posts, total, err := repo.List(context.Background(),
		post.ListFilter{Category: "question", AuthorID: "a1"}, "",
		core.PageParams{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, posts, 1)
	assert.Equal(t, "ann", posts[0].AuthorUsername)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedIsOneQueryOverFollowsAndSelf(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT following_id FROM follows WHERE follower_id = $1")).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT $2 OFFSET $3")).
		WithArgs("alice", 10, 10).
		WillReturnRows(sqlmock.NewRows(postRowColumns))

	posts, total, err := repo.Feed(context.Background(), "alice", core.PageParams{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, posts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListCommentsMissingPost(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	_, _, err := repo.ListComments(context.Background(), "p1", core.PageParams{Page: 1, Limit: 20})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSoftDeleteAlreadyDeleted(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("SET is_active = false")).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.SoftDelete(context.Background(), "p1"), core.ErrNotFound)
}
