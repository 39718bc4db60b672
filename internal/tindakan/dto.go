package tindakan

import (
	"encoding/json"
	"io"
	"time"

	"github.com/yakey01/dokterku-sub009/internal/core/validation"
)

// CreateTindakanDTO is the request payload for recording a new procedure.
// Fee shares are optional; missing shares are derived from the procedure
// type's percentage defaults.
type CreateTindakanDTO struct {
	PasienID         int64     `json:"pasien_id"`
	JenisTindakanID  int64     `json:"jenis_tindakan_id"`
	DokterID         *int64    `json:"dokter_id,omitempty"`
	ParamedisID      *int64    `json:"paramedis_id,omitempty"`
	NonParamedisID   *int64    `json:"non_paramedis_id,omitempty"`
	ShiftID          *int64    `json:"shift_id,omitempty"`
	TanggalTindakan  time.Time `json:"tanggal_tindakan"`
	Tarif            *int64    `json:"tarif,omitempty"`
	JasaDokter       *int64    `json:"jasa_dokter,omitempty"`
	JasaParamedis    *int64    `json:"jasa_paramedis,omitempty"`
	JasaNonParamedis *int64    `json:"jasa_non_paramedis,omitempty"`
	Catatan          string    `json:"catatan,omitempty"`
}

func (dto CreateTindakanDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("pasien_id", dto.PasienID).Required().Positive()
	v.Field("jenis_tindakan_id", dto.JenisTindakanID).Required().Positive()
	v.Field("tanggal_tindakan", dto.TanggalTindakan).Required()
	if dto.Tarif != nil {
		v.Field("tarif", *dto.Tarif).Positive()
	}
	v.Field("catatan", dto.Catatan).MaxLength(1000)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// SubmittedData is the edit payload keyed by field name. Updates keep the
// raw submitted representation (json.Number, string, null) so the reset
// guard can compare loosely without being fooled by type coercion.
type SubmittedData map[string]interface{}

// ParseSubmittedData decodes an update body preserving numeric
// representations via json.Number.
func ParseSubmittedData(r io.Reader) (SubmittedData, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var data SubmittedData
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	return data, nil
}

// Has reports whether the field was present in the submitted payload at all,
// distinguishing "absent" from "explicitly null".
func (d SubmittedData) Has(field string) bool {
	_, ok := d[field]
	return ok
}

// ApproveTindakanDTO carries the optional reviewer comment on approval.
type ApproveTindakanDTO struct {
	Komentar string `json:"komentar,omitempty"`
}

// RejectTindakanDTO requires a reviewer comment explaining the rejection.
type RejectTindakanDTO struct {
	Komentar string `json:"komentar"`
}

func (dto RejectTindakanDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("komentar", dto.Komentar).Required().MaxLength(1000)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
