package attendance

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
	CheckIn(ctx context.Context, userID int64, role string, dto CheckInDTO) (*Attendance, error)
	CheckOut(ctx context.Context, userID int64, role string, dto CheckOutDTO) (*Attendance, error)
	Today(userID int64) (*Attendance, error)
	History(userID int64, limit, offset int) ([]*Attendance, error)

	CreateWorkLocation(dto WorkLocationDTO) (*WorkLocation, error)
	GetWorkLocation(id int64) (*WorkLocation, error)
	ListWorkLocations() ([]*WorkLocation, error)
	UpdateWorkLocation(id int64, dto WorkLocationDTO) (*WorkLocation, error)
	DeleteWorkLocation(id int64) error

	CreateToleranceRule(dto ToleranceRuleDTO) (*ToleranceRule, error)
	GetToleranceRule(id int64) (*ToleranceRule, error)
	ListToleranceRules() ([]*ToleranceRule, error)
	UpdateToleranceRule(id int64, dto ToleranceRuleDTO) (*ToleranceRule, error)
	DeleteToleranceRule(id int64) error
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

func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CheckInDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CheckIn: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.Service.CheckIn(r.Context(), user.ID, user.Role, dto)
	if err != nil {
		h.Logger.Error("CheckIn: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CheckIn: attendance recorded", "attendance_id", a.ID, "user_id", user.ID, "status", a.Status)
	h.WriteJSON(w, http.StatusCreated, a)
}

func (h *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CheckOutDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CheckOut: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.Service.CheckOut(r.Context(), user.ID, user.Role, dto)
	if err != nil {
		h.Logger.Error("CheckOut: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) Today(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	a, err := h.Service.Today(user.ID)
	if err != nil {
		h.Logger.Error("Today: service error", "error", err, "user_id", user.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to get attendance")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"attendance": a})
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, offset := paginationParams(r)

	records, err := h.Service.History(user.ID, limit, offset)
	if err != nil {
		h.Logger.Error("History: service error", "error", err, "user_id", user.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to get attendance history")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"attendances": records,
		"limit":       limit,
		"offset":      offset,
	})
}

func (h *Handler) CreateWorkLocation(w http.ResponseWriter, r *http.Request) {
	var dto WorkLocationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	location, err := h.Service.CreateWorkLocation(dto)
	if err != nil {
		h.Logger.Error("CreateWorkLocation: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, location)
}

func (h *Handler) GetWorkLocation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid work location ID")
		return
	}

	location, err := h.Service.GetWorkLocation(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, location)
}

func (h *Handler) ListWorkLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.Service.ListWorkLocations()
	if err != nil {
		h.Logger.Error("ListWorkLocations: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to get work locations")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"work_locations": locations})
}

func (h *Handler) UpdateWorkLocation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid work location ID")
		return
	}

	var dto WorkLocationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	location, err := h.Service.UpdateWorkLocation(id, dto)
	if err != nil {
		h.Logger.Error("UpdateWorkLocation: service error", "error", err, "work_location_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, location)
}

func (h *Handler) DeleteWorkLocation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid work location ID")
		return
	}

	if err := h.Service.DeleteWorkLocation(id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) CreateToleranceRule(w http.ResponseWriter, r *http.Request) {
	var dto ToleranceRuleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rule, err := h.Service.CreateToleranceRule(dto)
	if err != nil {
		h.Logger.Error("CreateToleranceRule: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, rule)
}

func (h *Handler) GetToleranceRule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid tolerance rule ID")
		return
	}

	rule, err := h.Service.GetToleranceRule(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, rule)
}

func (h *Handler) ListToleranceRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.Service.ListToleranceRules()
	if err != nil {
		h.Logger.Error("ListToleranceRules: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to get tolerance rules")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"tolerance_rules": rules})
}

func (h *Handler) UpdateToleranceRule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid tolerance rule ID")
		return
	}

	var dto ToleranceRuleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rule, err := h.Service.UpdateToleranceRule(id, dto)
	if err != nil {
		h.Logger.Error("UpdateToleranceRule: service error", "error", err, "rule_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, rule)
}

func (h *Handler) DeleteToleranceRule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid tolerance rule ID")
		return
	}

	if err := h.Service.DeleteToleranceRule(id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func pathID(r *http.Request) (int64, error) {
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
