// AngelaMos | 2026
// handler.go

package post

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
	"github.com/carterperez-dev/templates/social-backend/internal/middleware"
)

const CodeAlreadyLiked = "ALREADY_LIKED"

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, optionalAuth func(http.Handler) http.Handler,
) {
	r.With(authenticator).Get("/feed", h.Feed)

	r.Route("/posts", func(r chi.Router) {
		r.With(optionalAuth).Get("/", h.ListPosts)
		r.With(optionalAuth).Get("/{postID}", h.GetPost)
		r.Get("/{postID}/comments", h.ListComments)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)

			r.Post("/", h.CreatePost)
			r.Delete("/{postID}", h.DeletePost)
			r.Post("/{postID}/like", h.Like)
			r.Delete("/{postID}/like", h.Unlike)
			r.Post("/{postID}/comments", h.CreateComment)
		})
	})
}

func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	page := core.ParsePageParams(r)

	posts, total, err := h.service.Feed(r.Context(), middleware.GetUserID(r.Context()), page)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Paginated(w, ToPostResponseList(posts, true), page.Page, page.Limit, total)
}

// ListPosts accepts category and author_id filters.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	page := core.ParsePageParams(r)
	viewerID := middleware.GetUserID(r.Context())
	filter := ListFilter{
		Category: r.URL.Query().Get("category"),
		AuthorID: r.URL.Query().Get("author_id"),
	}

	posts, total, err := h.service.ListPosts(r.Context(), filter, viewerID, page)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Paginated(w, ToPostResponseList(posts, viewerID != ""), page.Page, page.Limit, total)
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID, ok := postIDParam(w, r)
	if !ok {
		return
	}
	viewerID := middleware.GetUserID(r.Context())

	p, err := h.service.GetPost(r.Context(), postID, viewerID)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToPostResponse(p, viewerID != ""))
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	p, err := h.service.CreatePost(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, ToPostResponse(p, true))
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	postID, ok := postIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.DeletePost(r.Context(), middleware.GetSession(r.Context()), postID); err != nil {
		writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	postID, ok := postIDParam(w, r)
	if !ok {
		return
	}

	res, err := h.service.Like(r.Context(), middleware.GetSession(r.Context()), postID)
	if err != nil {
		writeError(w, err)
		return
	}

	core.JSON(w, http.StatusOK, core.Response{
		Success: true,
		Data:    LikeResponse{LikeCount: res.LikeCount, IsLiked: true},
		Message: "Post liked",
	})
}

func (h *Handler) Unlike(w http.ResponseWriter, r *http.Request) {
	postID, ok := postIDParam(w, r)
	if !ok {
		return
	}

	res, err := h.service.Unlike(r.Context(), middleware.GetSession(r.Context()), postID)
	if err != nil {
		writeError(w, err)
		return
	}

	core.JSON(w, http.StatusOK, core.Response{
		Success: true,
		Data:    LikeResponse{LikeCount: res.LikeCount, IsLiked: false},
		Message: "Post unliked",
	})
}

func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	postID, ok := postIDParam(w, r)
	if !ok {
		return
	}

	var req CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, "Comment content is required")
		return
	}

	c, err := h.service.CreateComment(r.Context(), middleware.GetSession(r.Context()), postID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, ToCommentResponse(c))
}

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	postID, ok := postIDParam(w, r)
	if !ok {
		return
	}
	page := core.ParsePageParams(r)

	comments, total, err := h.service.ListComments(r.Context(), postID, page)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Paginated(w, ToCommentResponseList(comments), page.Page, page.Limit, total)
}

func postIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "postID")
	if !core.IsValidID(id) {
		core.NotFound(w, "post")
		return "", false
	}
	return id, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case core.IsAppError(err):
		core.JSONError(w, err)
	case errors.Is(err, ErrAlreadyLiked):
		core.JSONError(w, core.BadRequestError(err, "Post already liked", CodeAlreadyLiked))
	case errors.Is(err, ErrInvalidCategory):
		core.BadRequest(w, "Invalid category")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "you can only delete your own posts")
	case errors.Is(err, core.ErrUnauthorized):
		core.Unauthorized(w, "")
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "post")
	default:
		core.InternalServerError(w, err)
	}
}
