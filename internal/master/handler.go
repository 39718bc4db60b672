package master

import (
	"net/http"

	"github.com/yakey01/dokterku-sub009/internal/transport"
)

type ServiceAPI interface {
	ListPasien() ([]*Pasien, error)
	ListJenisTindakan() ([]*JenisTindakan, error)
	ListShiftTemplates() ([]*ShiftTemplate, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) GetPasien(w http.ResponseWriter, r *http.Request) {
	pasien, err := h.Service.ListPasien()
	if err != nil {
		h.Logger.Error("GetPasien: failed to list pasien", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to get pasien")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"pasien": pasien})
}

func (h *Handler) GetJenisTindakan(w http.ResponseWriter, r *http.Request) {
	jenis, err := h.Service.ListJenisTindakan()
	if err != nil {
		h.Logger.Error("GetJenisTindakan: failed to list jenis tindakan", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to get jenis tindakan")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"jenis_tindakan": jenis})
}

func (h *Handler) GetShiftTemplates(w http.ResponseWriter, r *http.Request) {
	shifts, err := h.Service.ListShiftTemplates()
	if err != nil {
		h.Logger.Error("GetShiftTemplates: failed to list shift templates", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to get shift templates")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"shifts": shifts})
}
