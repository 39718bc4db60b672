package tindakan

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/yakey01/dokterku-sub009/internal/auth"
	"github.com/yakey01/dokterku-sub009/internal/transport"
	"github.com/yakey01/dokterku-sub009/pkg/logger"
)

type ServiceAPI interface {
	CreateTindakan(dto *CreateTindakanDTO, userID int64) (*Tindakan, error)
	GetTindakanByID(id, userID int64, userPermissions []string) (*Tindakan, error)
	GetTindakanForUser(userID int64, userPermissions []string, limit, offset int) ([]*Tindakan, error)
	UpdateTindakan(ctx context.Context, id, userID int64, userPermissions []string, data SubmittedData) (*Tindakan, *ResetResult, error)
	ApproveTindakan(ctx context.Context, id, validatorID int64, userPermissions []string, komentar string) (*Tindakan, error)
	RejectTindakan(ctx context.Context, id, validatorID int64, userPermissions []string, komentar string) (*Tindakan, error)
	DeleteTindakan(id, userID int64, userPermissions []string) error
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

func (h *Handler) CreateTindakan(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("CreateTindakan: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateTindakanDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateTindakan: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.Service.CreateTindakan(&dto, user.ID)
	if err != nil {
		h.Logger.Error("CreateTindakan: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateTindakan: tindakan created",
		"tindakan_id", t.ID,
		"user_id", user.ID,
		"tarif", t.Tarif)

	h.WriteJSON(w, http.StatusCreated, t)
}

func (h *Handler) GetTindakan(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.tindakanID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid tindakan ID")
		return
	}

	t, err := h.Service.GetTindakanByID(id, user.ID, user.Permissions)
	if err != nil {
		h.Logger.Error("GetTindakan: service error", "error", err, "tindakan_id", id, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) ListTindakan(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, offset := paginationParams(r)

	records, err := h.Service.GetTindakanForUser(user.ID, user.Permissions, limit, offset)
	if err != nil {
		h.Logger.Error("ListTindakan: service error", "error", err, "user_id", user.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to get tindakan")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"tindakan": records,
		"limit":    limit,
		"offset":   offset,
	})
}

// UpdateTindakan decodes the edit payload into a field-keyed document so the
// reset guard can compare submitted representations loosely. When the guard
// fires, the response carries the reset details and the editor warning.
func (h *Handler) UpdateTindakan(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.tindakanID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid tindakan ID")
		return
	}

	data, err := ParseSubmittedData(r.Body)
	if err != nil {
		h.Logger.Error("UpdateTindakan: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, result, err := h.Service.UpdateTindakan(r.Context(), id, user.ID, user.Permissions, data)
	if err != nil {
		h.Logger.Error("UpdateTindakan: service error", "error", err, "tindakan_id", id, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	response := map[string]interface{}{"tindakan": t}
	if result != nil && result.Reset {
		response["validation_reset"] = result
	}

	h.WriteJSON(w, http.StatusOK, response)
}

func (h *Handler) ApproveTindakan(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.tindakanID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid tindakan ID")
		return
	}

	var dto ApproveTindakanDTO
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.Logger.Error("ApproveTindakan: invalid request body", "error", err)
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	t, err := h.Service.ApproveTindakan(r.Context(), id, user.ID, user.Permissions, dto.Komentar)
	if err != nil {
		h.Logger.Error("ApproveTindakan: service error", "error", err, "tindakan_id", id, "validator_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("ApproveTindakan: tindakan approved", "tindakan_id", id, "validator_id", user.ID)
	h.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) RejectTindakan(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.tindakanID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid tindakan ID")
		return
	}

	var dto RejectTindakanDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("RejectTindakan: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, "komentar is required when rejecting")
		return
	}

	t, err := h.Service.RejectTindakan(r.Context(), id, user.ID, user.Permissions, dto.Komentar)
	if err != nil {
		h.Logger.Error("RejectTindakan: service error", "error", err, "tindakan_id", id, "validator_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("RejectTindakan: tindakan rejected", "tindakan_id", id, "validator_id", user.ID)
	h.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) DeleteTindakan(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.tindakanID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid tindakan ID")
		return
	}

	if err := h.Service.DeleteTindakan(id, user.ID, user.Permissions); err != nil {
		h.Logger.Error("DeleteTindakan: service error", "error", err, "tindakan_id", id, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) tindakanID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func paginationParams(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0

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

	return limit, offset
}
