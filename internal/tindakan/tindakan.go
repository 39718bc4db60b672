package tindakan

import (
	"time"

	"gorm.io/gorm"

	internalerrors "github.com/yakey01/dokterku-sub009/internal"
)

// Tindakan is a billable clinical procedure record. Rows are soft-deleted
// only; approval history lives in validasi_by/validasi_at/komentar_validasi.
type Tindakan struct {
	ID               int64          `json:"id" gorm:"primaryKey"`
	PasienID         int64          `json:"pasien_id" gorm:"column:pasien_id;not null"`
	JenisTindakanID  int64          `json:"jenis_tindakan_id" gorm:"column:jenis_tindakan_id;not null"`
	DokterID         *int64         `json:"dokter_id,omitempty" gorm:"column:dokter_id"`
	ParamedisID      *int64         `json:"paramedis_id,omitempty" gorm:"column:paramedis_id"`
	NonParamedisID   *int64         `json:"non_paramedis_id,omitempty" gorm:"column:non_paramedis_id"`
	ShiftID          *int64         `json:"shift_id,omitempty" gorm:"column:shift_id"`
	TanggalTindakan  time.Time      `json:"tanggal_tindakan" gorm:"column:tanggal_tindakan;not null"`
	Tarif            int64          `json:"tarif" gorm:"column:tarif;not null"`
	JasaDokter       int64          `json:"jasa_dokter" gorm:"column:jasa_dokter"`
	JasaParamedis    int64          `json:"jasa_paramedis" gorm:"column:jasa_paramedis"`
	JasaNonParamedis int64          `json:"jasa_non_paramedis" gorm:"column:jasa_non_paramedis"`
	StatusValidasi   string         `json:"status_validasi" gorm:"column:status_validasi;default:pending"`
	ValidasiBy       *int64         `json:"validasi_by,omitempty" gorm:"column:validasi_by"`
	ValidasiAt       *time.Time     `json:"validasi_at,omitempty" gorm:"column:validasi_at"`
	KomentarValidasi *string        `json:"komentar_validasi,omitempty" gorm:"column:komentar_validasi"`
	Catatan          string         `json:"catatan"`
	InputBy          int64          `json:"input_by" gorm:"column:input_by"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Tindakan) TableName() string {
	return "tindakan"
}

// Validation status values. "approved" is a legacy synonym of "disetujui"
// still present in older rows and must be honored everywhere "disetujui" is.
const (
	StatusPending        = "pending"
	StatusDisetujui      = "disetujui"
	StatusApprovedLegacy = "approved"
	StatusDitolak        = "ditolak"
)

// IsApproved treats both the current and the legacy approved value as approved.
func (t *Tindakan) IsApproved() bool {
	return t.StatusValidasi == StatusDisetujui || t.StatusValidasi == StatusApprovedLegacy
}

func (t *Tindakan) CanBeApproved() bool {
	return t.StatusValidasi == StatusPending
}

func (t *Tindakan) CanBeRejected() bool {
	return t.StatusValidasi == StatusPending
}

func (t *Tindakan) Approve(validatorID int64, comment string) {
	now := time.Now()
	t.StatusValidasi = StatusDisetujui
	t.ValidasiBy = &validatorID
	t.ValidasiAt = &now
	if comment != "" {
		t.KomentarValidasi = &comment
	}
	t.UpdatedAt = now
}

func (t *Tindakan) Reject(validatorID int64, comment string) {
	now := time.Now()
	t.StatusValidasi = StatusDitolak
	t.ValidasiBy = &validatorID
	t.ValidasiAt = &now
	t.KomentarValidasi = &comment
	t.UpdatedAt = now
}

// Domain errors map onto the shared taxonomy so handlers get consistent
// HTTP statuses.
var (
	ErrTindakanNotFound      = internalerrors.ErrTindakanNotFound
	ErrUnauthorizedAccess    = internalerrors.ErrUnauthorizedAccess
	ErrInvalidStatusValidasi = internalerrors.ErrInvalidStatusValidasi
)
