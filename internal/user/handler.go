// AngelaMos | 2026
// handler.go

package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
	"github.com/carterperez-dev/templates/social-backend/internal/middleware"
)

const (
	CodeSelfFollow       = "SELF_FOLLOW"
	CodeAlreadyFollowing = "ALREADY_FOLLOWING"
)

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
	r.Route("/users", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authenticator)

			r.Get("/me", h.GetMe)
			r.Put("/me", h.UpdateMe)
			r.Delete("/me", h.DeleteMe)
			r.Post("/{username}/follow", h.Follow)
			r.Delete("/{username}/follow", h.Unfollow)
		})

		r.With(optionalAuth).Get("/{username}", h.GetProfile)
		r.Get("/{username}/followers", h.ListFollowers)
		r.Get("/{username}/following", h.ListFollowing)
	})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	profile, err := h.service.GetMe(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToProfileResponse(profile, userID))
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req UpdateMeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	profile, err := h.service.UpdateMe(r.Context(), userID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToProfileResponse(profile, userID))
}

func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeactivateMe(r.Context(), middleware.GetUserID(r.Context())); err != nil {
		h.writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r.Context())

	profile, err := h.service.GetProfile(r.Context(), chi.URLParam(r, "username"), viewerID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToProfileResponse(profile, viewerID))
}

func (h *Handler) Follow(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	err := h.service.Follow(r.Context(), middleware.GetSession(r.Context()), username)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.JSON(w, http.StatusCreated, core.Response{
		Success: true,
		Message: "Now following @" + username,
	})
}

func (h *Handler) Unfollow(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	err := h.service.Unfollow(r.Context(), middleware.GetSession(r.Context()), username)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OKMessage(w, "Unfollowed @"+username)
}

func (h *Handler) ListFollowers(w http.ResponseWriter, r *http.Request) {
	page := core.ParsePageParams(r)

	items, total, err := h.service.ListFollowers(r.Context(), chi.URLParam(r, "username"), page)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.Paginated(w, ToSummaryResponseList(items), page.Page, page.Limit, total)
}

func (h *Handler) ListFollowing(w http.ResponseWriter, r *http.Request) {
	page := core.ParsePageParams(r)

	items, total, err := h.service.ListFollowing(r.Context(), chi.URLParam(r, "username"), page)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.Paginated(w, ToSummaryResponseList(items), page.Page, page.Limit, total)
}

// RegisterAdminRoutes mounts user management under /admin/users.
// manageUsers should enforce the users:manage capability.
func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, manageUsers func(http.Handler) http.Handler,
) {
	r.Route("/admin/users", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(manageUsers)

		r.Get("/", h.ListUsers)
		r.Get("/{userID}", h.GetUser)
		r.Put("/{userID}/role", h.UpdateUserRole)
		r.Put("/{userID}/active", h.UpdateUserActive)
	})
}

// ListUsers accepts page, limit, search, role and active query parameters.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := ListUsersParams{
		Page:   core.ParsePageParams(r),
		Search: q.Get("search"),
		Role:   q.Get("role"),
	}

	if raw := q.Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			core.BadRequest(w, "active must be true or false")
			return
		}
		params.Active = &active
	}

	users, total, err := h.service.ListUsers(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToAdminUserResponseList(users),
		params.Page.Page,
		params.Page.Limit,
		total,
	)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if !core.IsValidID(userID) {
		core.NotFound(w, "user")
		return
	}

	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToAdminUserResponse(user))
}

func (h *Handler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if !core.IsValidID(userID) {
		core.NotFound(w, "user")
		return
	}

	var req UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.UpdateUserRole(
		r.Context(),
		middleware.GetUserID(r.Context()),
		userID,
		req.Role,
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToAdminUserResponse(user))
}

func (h *Handler) UpdateUserActive(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if !core.IsValidID(userID) {
		core.NotFound(w, "user")
		return
	}

	var req UpdateActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.SetUserActive(
		r.Context(),
		middleware.GetUserID(r.Context()),
		userID,
		*req.IsActive,
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToAdminUserResponse(user))
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSelfFollow):
		core.JSONError(w, core.BadRequestError(err, "Cannot follow yourself", CodeSelfFollow))
	case errors.Is(err, ErrAlreadyFollowing):
		core.JSONError(w, core.BadRequestError(err, "Already following this user", CodeAlreadyFollowing))
	case errors.Is(err, ErrSelfModify):
		core.BadRequest(w, "cannot change your own role or status")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, "invalid input")
	case errors.Is(err, core.ErrUnauthorized):
		core.Unauthorized(w, "")
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "user")
	default:
		core.InternalServerError(w, err)
	}
}
