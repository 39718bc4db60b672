package notification

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/yakey01/dokterku-sub009/internal/auth"
	"github.com/yakey01/dokterku-sub009/internal/transport"
	"github.com/yakey01/dokterku-sub009/pkg/logger"
)

type ServiceAPI interface {
	ListForUser(userID int64, role string, limit, offset int) ([]*Notification, error)
	UnreadCount(userID int64, role string) (int64, error)
	MarkRead(id, userID int64, role string) (*Notification, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 20
	offset := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	notifications, err := h.Service.ListForUser(user.ID, user.Role, limit, offset)
	if err != nil {
		h.Logger.Error("ListNotifications: service error", "error", err, "user_id", user.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to get notifications")
		return
	}

	unread, err := h.Service.UnreadCount(user.ID, user.Role)
	if err != nil {
		unread = 0
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"unread_count":  unread,
		"limit":         limit,
		"offset":        offset,
	})
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid notification ID")
		return
	}

	n, err := h.Service.MarkRead(id, user.ID, user.Role)
	if err != nil {
		h.Logger.Error("MarkRead: service error", "error", err, "notification_id", id, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, n)
}
