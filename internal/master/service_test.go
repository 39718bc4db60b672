package master_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/yakey01/dokterku-sub009/internal/master"
)

func TestMasterService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Master Service Suite")
}

// MockRepository implements master.RepositoryAPI for testing
type MockRepository struct {
	pasien     map[int64]*master.Pasien
	jenis      map[int64]*master.JenisTindakan
	shifts     map[int64]*master.ShiftTemplate
	shouldFail bool
	failError  error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		pasien: make(map[int64]*master.Pasien),
		jenis:  make(map[int64]*master.JenisTindakan),
		shifts: make(map[int64]*master.ShiftTemplate),
	}
}

func (m *MockRepository) GetAllPasien() ([]*master.Pasien, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var out []*master.Pasien
	for _, p := range m.pasien {
		out = append(out, p)
	}
	return out, nil
}

func (m *MockRepository) GetPasienByID(id int64) (*master.Pasien, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	p, ok := m.pasien[id]
	if !ok {
		return nil, master.ErrPasienNotFound
	}
	return p, nil
}

func (m *MockRepository) GetAllJenisTindakan() ([]*master.JenisTindakan, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var out []*master.JenisTindakan
	for _, j := range m.jenis {
		out = append(out, j)
	}
	return out, nil
}

func (m *MockRepository) GetJenisTindakanByID(id int64) (*master.JenisTindakan, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	j, ok := m.jenis[id]
	if !ok {
		return nil, master.ErrJenisTindakanNotFound
	}
	return j, nil
}

func (m *MockRepository) GetAllShiftTemplates() ([]*master.ShiftTemplate, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var out []*master.ShiftTemplate
	for _, s := range m.shifts {
		out = append(out, s)
	}
	return out, nil
}

func (m *MockRepository) GetShiftTemplateByID(id int64) (*master.ShiftTemplate, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	s, ok := m.shifts[id]
	if !ok {
		return nil, master.ErrShiftTemplateNotFound
	}
	return s, nil
}

var _ = Describe("Master Service", func() {
	var (
		service  *master.Service
		mockRepo *MockRepository
	)

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = master.NewService(mockRepo, logger)
	})

	Describe("ListPasien", func() {
		It("filters out inactive patients", func() {
			mockRepo.pasien[1] = &master.Pasien{ID: 1, Nama: "Budi Santoso", IsActive: true}
			mockRepo.pasien[2] = &master.Pasien{ID: 2, Nama: "Dewi Lestari", IsActive: false}

			pasien, err := service.ListPasien()

			Expect(err).NotTo(HaveOccurred())
			Expect(pasien).To(HaveLen(1))
			Expect(pasien[0].Nama).To(Equal("Budi Santoso"))
		})

		It("propagates repository failures", func() {
			mockRepo.shouldFail = true
			mockRepo.failError = errors.New("db down")

			_, err := service.ListPasien()
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ListJenisTindakan", func() {
		It("filters out retired procedure types", func() {
			mockRepo.jenis[1] = &master.JenisTindakan{ID: 1, Nama: "Pemeriksaan Umum", IsActive: true}
			mockRepo.jenis[2] = &master.JenisTindakan{ID: 2, Nama: "Lama", IsActive: false}

			jenis, err := service.ListJenisTindakan()

			Expect(err).NotTo(HaveOccurred())
			Expect(jenis).To(HaveLen(1))
		})
	})

	Describe("Lookups", func() {
		It("returns nil without error when nothing matches", func() {
			p, err := service.GetPasien(99)
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(BeNil())

			j, err := service.GetJenisTindakan(99)
			Expect(err).NotTo(HaveOccurred())
			Expect(j).To(BeNil())

			s, err := service.GetShiftTemplate(99)
			Expect(err).NotTo(HaveOccurred())
			Expect(s).To(BeNil())
		})

		It("returns the record when it exists", func() {
			mockRepo.jenis[5] = &master.JenisTindakan{ID: 5, Nama: "Suntik Vitamin", Tarif: 150000, IsActive: true}

			j, err := service.GetJenisTindakan(5)
			Expect(err).NotTo(HaveOccurred())
			Expect(j.Tarif).To(Equal(int64(150000)))
		})

		It("propagates unexpected failures", func() {
			mockRepo.shouldFail = true
			mockRepo.failError = errors.New("db down")

			_, err := service.GetPasien(1)
			Expect(err).To(HaveOccurred())
		})
	})
})
