package master

import (
	"errors"
	"time"
)

var (
	ErrPasienNotFound        = errors.New("pasien not found")
	ErrJenisTindakanNotFound = errors.New("jenis tindakan not found")
	ErrShiftTemplateNotFound = errors.New("shift template not found")
)

// Pasien is a registered patient.
type Pasien struct {
	ID           int64      `json:"id" gorm:"primaryKey"`
	NoRekamMedis string     `json:"no_rekam_medis" gorm:"column:no_rekam_medis;uniqueIndex"`
	Nama         string     `json:"nama" gorm:"not null"`
	TanggalLahir *time.Time `json:"tanggal_lahir,omitempty" gorm:"type:date"`
	JenisKelamin string     `json:"jenis_kelamin"`
	Alamat       string     `json:"alamat"`
	Telepon      string     `json:"telepon"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (Pasien) TableName() string {
	return "pasien"
}

// DisplayName falls back to "Unknown" for event payloads.
func (p *Pasien) DisplayName() string {
	if p == nil || p.Nama == "" {
		return "Unknown"
	}
	return p.Nama
}

// JenisTindakan is a billable procedure type with its standard tariff and
// default fee-share percentages.
type JenisTindakan struct {
	ID                     int64     `json:"id" gorm:"primaryKey"`
	Kode                   string    `json:"kode" gorm:"uniqueIndex"`
	Nama                   string    `json:"nama" gorm:"not null"`
	Tarif                  int64     `json:"tarif"`
	PersenJasaDokter       float64   `json:"persen_jasa_dokter" gorm:"column:persen_jasa_dokter"`
	PersenJasaParamedis    float64   `json:"persen_jasa_paramedis" gorm:"column:persen_jasa_paramedis"`
	PersenJasaNonParamedis float64   `json:"persen_jasa_non_paramedis" gorm:"column:persen_jasa_non_paramedis"`
	IsActive               bool      `json:"is_active"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

func (JenisTindakan) TableName() string {
	return "jenis_tindakan"
}

func (j *JenisTindakan) DisplayName() string {
	if j == nil || j.Nama == "" {
		return "Unknown"
	}
	return j.Nama
}

// ShiftTemplate is a named working window referenced by tindakan records and
// work locations.
type ShiftTemplate struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Nama      string    `json:"nama" gorm:"not null"`
	JamMasuk  string    `json:"jam_masuk" gorm:"column:jam_masuk"`
	JamPulang string    `json:"jam_pulang" gorm:"column:jam_pulang"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ShiftTemplate) TableName() string {
	return "shift_templates"
}
