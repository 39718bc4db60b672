package master

import (
	"errors"
	"log/slog"
)

type RepositoryAPI interface {
	GetAllPasien() ([]*Pasien, error)
	GetPasienByID(id int64) (*Pasien, error)
	GetAllJenisTindakan() ([]*JenisTindakan, error)
	GetJenisTindakanByID(id int64) (*JenisTindakan, error)
	GetAllShiftTemplates() ([]*ShiftTemplate, error)
	GetShiftTemplateByID(id int64) (*ShiftTemplate, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) ListPasien() ([]*Pasien, error) {
	pasien, err := s.repo.GetAllPasien()
	if err != nil {
		s.logger.Error("failed to list pasien", "error", err)
		return nil, err
	}

	active := make([]*Pasien, 0, len(pasien))
	for _, p := range pasien {
		if p.IsActive {
			active = append(active, p)
		}
	}
	return active, nil
}

func (s *Service) ListJenisTindakan() ([]*JenisTindakan, error) {
	jenis, err := s.repo.GetAllJenisTindakan()
	if err != nil {
		s.logger.Error("failed to list jenis tindakan", "error", err)
		return nil, err
	}

	active := make([]*JenisTindakan, 0, len(jenis))
	for _, j := range jenis {
		if j.IsActive {
			active = append(active, j)
		}
	}
	return active, nil
}

func (s *Service) ListShiftTemplates() ([]*ShiftTemplate, error) {
	shifts, err := s.repo.GetAllShiftTemplates()
	if err != nil {
		s.logger.Error("failed to list shift templates", "error", err)
		return nil, err
	}

	active := make([]*ShiftTemplate, 0, len(shifts))
	for _, sh := range shifts {
		if sh.IsActive {
			active = append(active, sh)
		}
	}
	return active, nil
}

// GetPasien returns nil without error when no record matches, mirroring the
// lookup semantics the tindakan service relies on for display names.
func (s *Service) GetPasien(id int64) (*Pasien, error) {
	p, err := s.repo.GetPasienByID(id)
	if errors.Is(err, ErrPasienNotFound) {
		return nil, nil
	}
	return p, err
}

func (s *Service) GetJenisTindakan(id int64) (*JenisTindakan, error) {
	j, err := s.repo.GetJenisTindakanByID(id)
	if errors.Is(err, ErrJenisTindakanNotFound) {
		return nil, nil
	}
	return j, err
}

func (s *Service) GetShiftTemplate(id int64) (*ShiftTemplate, error) {
	sh, err := s.repo.GetShiftTemplateByID(id)
	if errors.Is(err, ErrShiftTemplateNotFound) {
		return nil, nil
	}
	return sh, err
}
