// AngelaMos | 2026
// handler.go

package notification

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
	"github.com/carterperez-dev/templates/social-backend/internal/middleware"
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
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/notifications", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Post("/", h.Act)
		r.Get("/unread-count", h.UnreadCount)
	})
}

// List supports ?unread=true to restrict to unread notifications.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	page := core.ParsePageParams(r)
	unreadOnly := r.URL.Query().Get("unread") == "true"

	items, total, err := h.service.List(r.Context(), userID, unreadOnly, page)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, ToResponseList(items), page.Page, page.Limit, total)
}

func (h *Handler) Act(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	switch req.Action {
	case ActionMarkAllRead:
		updated, err := h.service.MarkAllRead(r.Context(), userID)
		if err != nil {
			core.InternalServerError(w, err)
			return
		}
		core.JSON(w, http.StatusOK, core.Response{
			Success: true,
			Data:    MarkAllReadResponse{Updated: updated},
			Message: "All notifications marked as read",
		})

	case ActionMarkRead:
		err := h.service.MarkRead(r.Context(), userID, req.NotificationID)
		switch {
		case err == nil:
			core.OKMessage(w, "Notification marked as read")
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, "notification_id is required")
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "notification")
		default:
			core.InternalServerError(w, err)
		}

	default:
		core.BadRequest(w, "Invalid action")
	}
}

func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.UnreadCount(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, UnreadCountResponse{UnreadCount: count})
}
