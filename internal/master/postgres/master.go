package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yakey01/dokterku-sub009/internal/master"
)

type MasterRepository struct {
	db *gorm.DB
}

func NewMasterRepository(db *gorm.DB) *MasterRepository {
	return &MasterRepository{db: db}
}

func (r *MasterRepository) GetAllPasien() ([]*master.Pasien, error) {
	var pasien []*master.Pasien
	if err := r.db.Order("nama ASC").Find(&pasien).Error; err != nil {
		return nil, err
	}
	return pasien, nil
}

func (r *MasterRepository) GetPasienByID(id int64) (*master.Pasien, error) {
	var p master.Pasien
	if err := r.db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, master.ErrPasienNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *MasterRepository) GetAllJenisTindakan() ([]*master.JenisTindakan, error) {
	var jenis []*master.JenisTindakan
	if err := r.db.Order("nama ASC").Find(&jenis).Error; err != nil {
		return nil, err
	}
	return jenis, nil
}

func (r *MasterRepository) GetJenisTindakanByID(id int64) (*master.JenisTindakan, error) {
	var j master.JenisTindakan
	if err := r.db.First(&j, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, master.ErrJenisTindakanNotFound
		}
		return nil, err
	}
	return &j, nil
}

func (r *MasterRepository) GetAllShiftTemplates() ([]*master.ShiftTemplate, error) {
	var shifts []*master.ShiftTemplate
	if err := r.db.Order("jam_masuk ASC").Find(&shifts).Error; err != nil {
		return nil, err
	}
	return shifts, nil
}

func (r *MasterRepository) GetShiftTemplateByID(id int64) (*master.ShiftTemplate, error) {
	var s master.ShiftTemplate
	if err := r.db.First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, master.ErrShiftTemplateNotFound
		}
		return nil, err
	}
	return &s, nil
}
