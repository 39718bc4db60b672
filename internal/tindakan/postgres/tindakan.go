package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yakey01/dokterku-sub009/internal/tindakan"
)

// TindakanRepository implements tindakan.Repository using GORM. Deletes are
// soft via gorm.DeletedAt.
type TindakanRepository struct {
	db *gorm.DB
}

func NewTindakanRepository(db *gorm.DB) *TindakanRepository {
	return &TindakanRepository{db: db}
}

func (r *TindakanRepository) Create(t *tindakan.Tindakan) error {
	return r.db.Create(t).Error
}

func (r *TindakanRepository) GetByID(id int64) (*tindakan.Tindakan, error) {
	var t tindakan.Tindakan
	err := r.db.Where("id = ?", id).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, tindakan.ErrTindakanNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TindakanRepository) GetByInputBy(userID int64, limit, offset int) ([]*tindakan.Tindakan, error) {
	var records []*tindakan.Tindakan
	err := r.db.Where("input_by = ?", userID).
		Order("tanggal_tindakan DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	return records, err
}

func (r *TindakanRepository) GetAll(limit, offset int) ([]*tindakan.Tindakan, error) {
	var records []*tindakan.Tindakan
	err := r.db.
		Order("tanggal_tindakan DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	return records, err
}

// GetPendingValidation lists records awaiting review, oldest first.
func (r *TindakanRepository) GetPendingValidation(limit, offset int) ([]*tindakan.Tindakan, error) {
	var records []*tindakan.Tindakan
	err := r.db.Where("status_validasi = ?", tindakan.StatusPending).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	return records, err
}

func (r *TindakanRepository) Update(t *tindakan.Tindakan) error {
	t.UpdatedAt = time.Now()
	return r.db.Save(t).Error
}

func (r *TindakanRepository) Delete(id int64) error {
	return r.db.Delete(&tindakan.Tindakan{}, id).Error
}
