package tindakan

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	internalerrors "github.com/yakey01/dokterku-sub009/internal"
	"github.com/yakey01/dokterku-sub009/internal/core/events"
	"github.com/yakey01/dokterku-sub009/internal/master"
	"github.com/yakey01/dokterku-sub009/internal/user"
)

// Repository defines the data access methods for tindakan records.
type Repository interface {
	Create(t *Tindakan) error
	GetByID(id int64) (*Tindakan, error)
	GetByInputBy(userID int64, limit, offset int) ([]*Tindakan, error)
	GetAll(limit, offset int) ([]*Tindakan, error)
	Update(t *Tindakan) error
	Delete(id int64) error
}

// MasterCatalog resolves reference data for fee derivation and event display
// names. Lookups return nil without error when nothing matches.
type MasterCatalog interface {
	GetPasien(id int64) (*master.Pasien, error)
	GetJenisTindakan(id int64) (*master.JenisTindakan, error)
}

// UserDirectory resolves editor and doctor identities.
type UserDirectory interface {
	GetByID(id int64) (*user.User, error)
}

// Service handles tindakan business logic.
type Service struct {
	repo      Repository
	catalog   MasterCatalog
	users     UserDirectory
	guard     *ResetGuard
	publisher EventPublisher
	logger    *slog.Logger
}

func NewService(repo Repository, catalog MasterCatalog, users UserDirectory, publisher EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		catalog:   catalog,
		users:     users,
		guard:     NewResetGuard(publisher, logger),
		publisher: publisher,
		logger:    logger,
	}
}

// CreateTindakan records a new procedure. Tarif defaults to the procedure
// type's standard tariff and missing fee shares are derived from its
// percentage defaults.
func (s *Service) CreateTindakan(dto *CreateTindakanDTO, userID int64) (*Tindakan, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("tindakan validation failed", "error", err, "user_id", userID)
		return nil, err
	}

	jenis, err := s.catalog.GetJenisTindakan(dto.JenisTindakanID)
	if err != nil {
		s.logger.Error("failed to look up jenis tindakan", "error", err, "jenis_tindakan_id", dto.JenisTindakanID)
		return nil, err
	}
	if jenis == nil {
		return nil, internalerrors.NewValidationFieldError("jenis_tindakan_id", "jenis tindakan not found", internalerrors.ErrCodeValidationFailed)
	}

	tarif := jenis.Tarif
	if dto.Tarif != nil {
		tarif = *dto.Tarif
	}

	now := time.Now()
	t := &Tindakan{
		PasienID:         dto.PasienID,
		JenisTindakanID:  dto.JenisTindakanID,
		DokterID:         dto.DokterID,
		ParamedisID:      dto.ParamedisID,
		NonParamedisID:   dto.NonParamedisID,
		ShiftID:          dto.ShiftID,
		TanggalTindakan:  dto.TanggalTindakan,
		Tarif:            tarif,
		JasaDokter:       shareOrDerived(dto.JasaDokter, tarif, jenis.PersenJasaDokter),
		JasaParamedis:    shareOrDerived(dto.JasaParamedis, tarif, jenis.PersenJasaParamedis),
		JasaNonParamedis: shareOrDerived(dto.JasaNonParamedis, tarif, jenis.PersenJasaNonParamedis),
		StatusValidasi:   StatusPending,
		Catatan:          dto.Catatan,
		InputBy:          userID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(t); err != nil {
		s.logger.Error("failed to create tindakan", "error", err, "user_id", userID)
		return nil, err
	}

	s.logger.Info("tindakan created",
		"tindakan_id", t.ID,
		"pasien_id", t.PasienID,
		"tarif", t.Tarif,
		"input_by", userID)

	return t, nil
}

// shareOrDerived keeps a submitted share, otherwise derives it from the
// tariff and the procedure type's percentage with decimal math so rounding
// does not drift with large tariffs.
func shareOrDerived(submitted *int64, tarif int64, percent float64) int64 {
	if submitted != nil {
		return *submitted
	}
	return decimal.NewFromInt(tarif).
		Mul(decimal.NewFromFloat(percent)).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

// GetTindakanByID retrieves one record with access control: non-privileged
// users only see records they input.
func (s *Service) GetTindakanByID(id, userID int64, userPermissions []string) (*Tindakan, error) {
	t, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get tindakan", "error", err, "tindakan_id", id)
		return nil, ErrTindakanNotFound
	}

	if !s.canViewAll(userPermissions) && t.InputBy != userID {
		s.logger.Warn("unauthorized access to tindakan", "tindakan_id", id, "user_id", userID, "input_by", t.InputBy)
		return nil, ErrUnauthorizedAccess
	}

	return t, nil
}

// GetTindakanForUser lists records scoped by permission: privileged users see
// everything, others only their own input.
func (s *Service) GetTindakanForUser(userID int64, userPermissions []string, limit, offset int) ([]*Tindakan, error) {
	if s.canViewAll(userPermissions) {
		return s.repo.GetAll(limit, offset)
	}
	return s.repo.GetByInputBy(userID, limit, offset)
}

// UpdateTindakan applies a submitted edit, running the validation-status
// reset guard first. The returned ResetResult tells the handler whether the
// approval was knocked back and carries the editor-facing warning.
func (s *Service) UpdateTindakan(ctx context.Context, id, userID int64, userPermissions []string, data SubmittedData) (*Tindakan, *ResetResult, error) {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("tindakan not found for update", "error", err, "tindakan_id", id)
		return nil, nil, ErrTindakanNotFound
	}

	if !s.canViewAll(userPermissions) && existing.InputBy != userID {
		s.logger.Warn("unauthorized tindakan update", "tindakan_id", id, "user_id", userID)
		return nil, nil, ErrUnauthorizedAccess
	}

	stripApprovalState(data)

	result := s.guard.Apply(ctx, data, existing, s.resolveEditor(userID), s.resolveDisplayNames(existing))

	if err := applySubmitted(existing, data); err != nil {
		s.logger.Error("invalid tindakan update payload", "error", err, "tindakan_id", id)
		return nil, nil, err
	}
	existing.UpdatedAt = time.Now()

	if err := s.repo.Update(existing); err != nil {
		s.logger.Error("failed to update tindakan", "error", err, "tindakan_id", id)
		return nil, nil, err
	}

	if result.Reset {
		s.logger.Info("validation status reset on update",
			"tindakan_id", id,
			"prior_status", result.PriorStatus,
			"changed_fields", strings.Join(result.ChangedFields, ","),
			"editor_id", userID)
	}

	return existing, result, nil
}

// ApproveTindakan moves a pending record to disetujui.
func (s *Service) ApproveTindakan(ctx context.Context, id, validatorID int64, userPermissions []string, komentar string) (*Tindakan, error) {
	if !s.canValidate(userPermissions) {
		s.logger.Warn("approve tindakan denied: insufficient permissions", "tindakan_id", id, "validator_id", validatorID)
		return nil, ErrUnauthorizedAccess
	}

	t, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("tindakan not found for approval", "error", err, "tindakan_id", id)
		return nil, ErrTindakanNotFound
	}

	if !t.CanBeApproved() {
		s.logger.Warn("cannot approve tindakan in current status", "tindakan_id", id, "status", t.StatusValidasi)
		return nil, ErrInvalidStatusValidasi
	}

	t.Approve(validatorID, komentar)
	if err := s.repo.Update(t); err != nil {
		s.logger.Error("failed to approve tindakan", "error", err, "tindakan_id", id)
		return nil, err
	}

	approverName := "Unknown"
	if v, err := s.users.GetByID(validatorID); err == nil {
		approverName = v.DisplayName()
	}
	event := events.NewTindakanApprovedEvent(t.ID, validatorID, approverName, strconv.FormatInt(t.Tarif, 10))
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to emit approval event", "entity_id", t.ID, "error", err)
	}

	s.logger.Info("tindakan approved", "tindakan_id", id, "validator_id", validatorID)
	return t, nil
}

// RejectTindakan moves a pending record to ditolak with a mandatory comment.
func (s *Service) RejectTindakan(ctx context.Context, id, validatorID int64, userPermissions []string, komentar string) (*Tindakan, error) {
	if !s.canValidate(userPermissions) {
		s.logger.Warn("reject tindakan denied: insufficient permissions", "tindakan_id", id, "validator_id", validatorID)
		return nil, ErrUnauthorizedAccess
	}

	t, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("tindakan not found for rejection", "error", err, "tindakan_id", id)
		return nil, ErrTindakanNotFound
	}

	if !t.CanBeRejected() {
		s.logger.Warn("cannot reject tindakan in current status", "tindakan_id", id, "status", t.StatusValidasi)
		return nil, ErrInvalidStatusValidasi
	}

	t.Reject(validatorID, komentar)
	if err := s.repo.Update(t); err != nil {
		s.logger.Error("failed to reject tindakan", "error", err, "tindakan_id", id)
		return nil, err
	}

	s.logger.Info("tindakan rejected", "tindakan_id", id, "validator_id", validatorID, "komentar", komentar)
	return t, nil
}

// DeleteTindakan soft-deletes a record; rows are never hard-deleted.
func (s *Service) DeleteTindakan(id, userID int64, userPermissions []string) error {
	t, err := s.repo.GetByID(id)
	if err != nil {
		return ErrTindakanNotFound
	}

	if !s.canValidate(userPermissions) && t.InputBy != userID {
		return ErrUnauthorizedAccess
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete tindakan", "error", err, "tindakan_id", id)
		return err
	}

	s.logger.Info("tindakan deleted", "tindakan_id", id, "user_id", userID)
	return nil
}

func (s *Service) canValidate(userPermissions []string) bool {
	return hasAnyPermission(userPermissions, "validasi_tindakan", "admin")
}

func (s *Service) canViewAll(userPermissions []string) bool {
	return hasAnyPermission(userPermissions, "validasi_tindakan", "view_tindakan", "admin")
}

func hasAnyPermission(userPermissions []string, wanted ...string) bool {
	for _, w := range wanted {
		for _, p := range userPermissions {
			if p == w {
				return true
			}
		}
	}
	return false
}

// resolveEditor looks up the editing user for the reset event; nil means the
// actor could not be resolved and is reported as "System".
func (s *Service) resolveEditor(userID int64) *Editor {
	u, err := s.users.GetByID(userID)
	if err != nil || u == nil {
		return nil
	}
	return &Editor{ID: u.ID, Name: u.Name}
}

func (s *Service) resolveDisplayNames(t *Tindakan) DisplayNames {
	var names DisplayNames
	if p, err := s.catalog.GetPasien(t.PasienID); err == nil && p != nil {
		names.Pasien = p.Nama
	}
	if j, err := s.catalog.GetJenisTindakan(t.JenisTindakanID); err == nil && j != nil {
		names.JenisTindakan = j.Nama
	}
	if t.DokterID != nil {
		if d, err := s.users.GetByID(*t.DokterID); err == nil && d != nil {
			names.Dokter = d.Name
		}
	}
	return names
}

// approvalStateFields are only ever written by the validation workflow
// (ApproveTindakan, RejectTindakan) or the reset guard. Edit payloads never
// carry them through, so an editor cannot set a record's approval state.
var approvalStateFields = []string{
	"status_validasi",
	"validasi_by",
	"validasi_at",
	"komentar_validasi",
}

func stripApprovalState(data SubmittedData) {
	for _, field := range approvalStateFields {
		delete(data, field)
	}
}

// applySubmitted copies the (possibly guard-mutated) submitted document onto
// the persisted model. Unknown keys are ignored so callers can submit full
// form payloads.
func applySubmitted(t *Tindakan, data SubmittedData) error {
	for field, raw := range data {
		var err error
		switch field {
		case "pasien_id":
			t.PasienID, err = asInt64(field, raw)
		case "jenis_tindakan_id":
			t.JenisTindakanID, err = asInt64(field, raw)
		case "dokter_id":
			t.DokterID, err = asInt64Ptr(field, raw)
		case "paramedis_id":
			t.ParamedisID, err = asInt64Ptr(field, raw)
		case "non_paramedis_id":
			t.NonParamedisID, err = asInt64Ptr(field, raw)
		case "shift_id":
			t.ShiftID, err = asInt64Ptr(field, raw)
		case "tanggal_tindakan":
			if parsed, ok := parseSubmittedDate(raw); ok {
				t.TanggalTindakan = parsed
			} else {
				err = fmt.Errorf("invalid value for tanggal_tindakan: %v", raw)
			}
		case "tarif":
			t.Tarif, err = asInt64(field, raw)
		case "jasa_dokter":
			t.JasaDokter, err = asInt64(field, raw)
		case "jasa_paramedis":
			t.JasaParamedis, err = asInt64(field, raw)
		case "jasa_non_paramedis":
			t.JasaNonParamedis, err = asInt64(field, raw)
		case "catatan":
			t.Catatan = asString(raw)
		case "status_validasi":
			t.StatusValidasi = asString(raw)
		case "validasi_by":
			t.ValidasiBy, err = asInt64Ptr(field, raw)
		case "validasi_at":
			if raw == nil {
				t.ValidasiAt = nil
			} else if parsed, ok := parseSubmittedDate(raw); ok {
				t.ValidasiAt = &parsed
			}
		case "komentar_validasi":
			if raw == nil {
				t.KomentarValidasi = nil
			} else {
				s := asString(raw)
				t.KomentarValidasi = &s
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func asInt64(field string, v interface{}) (int64, error) {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, nil
		}
		if f, err := x.Float64(); err == nil {
			return int64(f), nil
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64); err == nil {
			return n, nil
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			return int64(f), nil
		}
	case float64:
		return int64(x), nil
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	}
	return 0, fmt.Errorf("invalid numeric value for %s: %v", field, v)
}

func asInt64Ptr(field string, v interface{}) (*int64, error) {
	if v == nil {
		return nil, nil
	}
	n, err := asInt64(field, v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func asString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}
