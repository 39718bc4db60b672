package tindakan_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/yakey01/dokterku-sub009/internal/core/events"
	"github.com/yakey01/dokterku-sub009/internal/master"
	"github.com/yakey01/dokterku-sub009/internal/tindakan"
	"github.com/yakey01/dokterku-sub009/internal/user"
)

func TestTindakanService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Tindakan Service Suite")
}

// Mock repository for testing
type mockTindakanRepository struct {
	records     map[int64]*tindakan.Tindakan
	createError error
	getError    error
	updateError error
	nextID      int64
}

func newMockTindakanRepository() *mockTindakanRepository {
	return &mockTindakanRepository{
		records: make(map[int64]*tindakan.Tindakan),
		nextID:  1,
	}
}

func (m *mockTindakanRepository) Create(t *tindakan.Tindakan) error {
	if m.createError != nil {
		return m.createError
	}
	t.ID = m.nextID
	m.nextID++
	m.records[t.ID] = t
	return nil
}

func (m *mockTindakanRepository) GetByID(id int64) (*tindakan.Tindakan, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	t, exists := m.records[id]
	if !exists {
		return nil, errors.New("tindakan not found")
	}
	copied := *t
	return &copied, nil
}

func (m *mockTindakanRepository) GetByInputBy(userID int64, limit, offset int) ([]*tindakan.Tindakan, error) {
	var out []*tindakan.Tindakan
	for _, t := range m.records {
		if t.InputBy == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockTindakanRepository) GetAll(limit, offset int) ([]*tindakan.Tindakan, error) {
	var out []*tindakan.Tindakan
	for _, t := range m.records {
		out = append(out, t)
	}
	return out, nil
}

func (m *mockTindakanRepository) Update(t *tindakan.Tindakan) error {
	if m.updateError != nil {
		return m.updateError
	}
	copied := *t
	m.records[t.ID] = &copied
	return nil
}

func (m *mockTindakanRepository) Delete(id int64) error {
	delete(m.records, id)
	return nil
}

// Mock master catalog for testing
type mockCatalog struct {
	pasien map[int64]*master.Pasien
	jenis  map[int64]*master.JenisTindakan
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{
		pasien: make(map[int64]*master.Pasien),
		jenis:  make(map[int64]*master.JenisTindakan),
	}
}

func (m *mockCatalog) GetPasien(id int64) (*master.Pasien, error) {
	return m.pasien[id], nil
}

func (m *mockCatalog) GetJenisTindakan(id int64) (*master.JenisTindakan, error) {
	return m.jenis[id], nil
}

// Mock user directory for testing
type mockUserDirectory struct {
	users    map[int64]*user.User
	getError error
}

func newMockUserDirectory() *mockUserDirectory {
	return &mockUserDirectory{users: make(map[int64]*user.User)}
}

func (m *mockUserDirectory) GetByID(id int64) (*user.User, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	u, exists := m.users[id]
	if !exists {
		return nil, user.ErrNotFound
	}
	return u, nil
}

// Mock event publisher for testing
type mockPublisher struct {
	published    []events.Event
	publishError error
}

func (m *mockPublisher) Publish(ctx context.Context, event events.Event) error {
	if m.publishError != nil {
		return m.publishError
	}
	m.published = append(m.published, event)
	return nil
}

func (m *mockPublisher) resetEvents() []*events.ValidationStatusResetEvent {
	var out []*events.ValidationStatusResetEvent
	for _, e := range m.published {
		if reset, ok := e.(*events.ValidationStatusResetEvent); ok {
			out = append(out, reset)
		}
	}
	return out
}

func submitted(body string) tindakan.SubmittedData {
	data, err := tindakan.ParseSubmittedData(strings.NewReader(body))
	Expect(err).NotTo(HaveOccurred())
	return data
}

var _ = Describe("TindakanService", func() {
	var (
		service   *tindakan.Service
		mockRepo  *mockTindakanRepository
		catalog   *mockCatalog
		users     *mockUserDirectory
		publisher *mockPublisher
		ctx       context.Context
	)

	petugasID := int64(7)
	petugasPerms := []string{"input_tindakan"}
	bendaharaID := int64(3)
	bendaharaPerms := []string{"validasi_tindakan"}

	BeforeEach(func() {
		mockRepo = newMockTindakanRepository()
		catalog = newMockCatalog()
		users = newMockUserDirectory()
		publisher = &mockPublisher{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		ctx = context.Background()

		catalog.pasien[1] = &master.Pasien{ID: 1, Nama: "Budi Santoso", IsActive: true}
		catalog.jenis[2] = &master.JenisTindakan{
			ID:                     2,
			Nama:                   "Pemeriksaan Umum",
			Tarif:                  500000,
			PersenJasaDokter:       40,
			PersenJasaParamedis:    15,
			PersenJasaNonParamedis: 5,
			IsActive:               true,
		}
		users.users[petugasID] = &user.User{ID: petugasID, Name: "Siti Petugas", Role: "petugas"}
		users.users[bendaharaID] = &user.User{ID: bendaharaID, Name: "Andi Bendahara", Role: "bendahara"}

		service = tindakan.NewService(mockRepo, catalog, users, publisher, logger)
	})

	approvedRecord := func(status string) *tindakan.Tindakan {
		validatedAt := time.Date(2024, 8, 1, 10, 0, 0, 0, time.UTC)
		validatorID := bendaharaID
		komentar := "Sudah divalidasi"
		t := &tindakan.Tindakan{
			PasienID:         1,
			JenisTindakanID:  2,
			TanggalTindakan:  time.Date(2024, 8, 20, 9, 0, 0, 0, time.UTC),
			Tarif:            500000,
			JasaDokter:       200000,
			JasaParamedis:    75000,
			JasaNonParamedis: 25000,
			StatusValidasi:   status,
			ValidasiBy:       &validatorID,
			ValidasiAt:       &validatedAt,
			KomentarValidasi: &komentar,
			Catatan:          "catatan awal",
			InputBy:          petugasID,
		}
		Expect(mockRepo.Create(t)).To(Succeed())
		return t
	}

	Describe("CreateTindakan", func() {
		It("derives tariff and fee shares from the procedure type", func() {
			dto := &tindakan.CreateTindakanDTO{
				PasienID:        1,
				JenisTindakanID: 2,
				TanggalTindakan: time.Date(2024, 8, 20, 9, 0, 0, 0, time.UTC),
			}

			result, err := service.CreateTindakan(dto, petugasID)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Tarif).To(Equal(int64(500000)))
			Expect(result.JasaDokter).To(Equal(int64(200000)))
			Expect(result.JasaParamedis).To(Equal(int64(75000)))
			Expect(result.JasaNonParamedis).To(Equal(int64(25000)))
			Expect(result.StatusValidasi).To(Equal(tindakan.StatusPending))
			Expect(result.InputBy).To(Equal(petugasID))
		})

		It("keeps explicitly submitted fee shares", func() {
			tarif := int64(600000)
			jasaDokter := int64(300000)
			dto := &tindakan.CreateTindakanDTO{
				PasienID:        1,
				JenisTindakanID: 2,
				TanggalTindakan: time.Date(2024, 8, 20, 9, 0, 0, 0, time.UTC),
				Tarif:           &tarif,
				JasaDokter:      &jasaDokter,
			}

			result, err := service.CreateTindakan(dto, petugasID)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Tarif).To(Equal(int64(600000)))
			Expect(result.JasaDokter).To(Equal(int64(300000)))
			// shares not submitted still derive from the submitted tariff
			Expect(result.JasaParamedis).To(Equal(int64(90000)))
		})

		It("rejects an unknown procedure type", func() {
			dto := &tindakan.CreateTindakanDTO{
				PasienID:        1,
				JenisTindakanID: 999,
				TanggalTindakan: time.Now(),
			}

			_, err := service.CreateTindakan(dto, petugasID)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("UpdateTindakan reset guard", func() {
		Context("when the record is approved (disetujui)", func() {
			It("leaves approval intact when only a non-critical field changes", func() {
				record := approvedRecord(tindakan.StatusDisetujui)

				updated, result, err := service.UpdateTindakan(ctx, record.ID, petugasID, petugasPerms,
					submitted(`{"catatan": "catatan baru"}`))

				Expect(err).ToNot(HaveOccurred())
				Expect(result.Reset).To(BeFalse())
				Expect(updated.StatusValidasi).To(Equal(tindakan.StatusDisetujui))
				Expect(updated.ValidasiBy).ToNot(BeNil())
				Expect(updated.ValidasiAt).ToNot(BeNil())
				Expect(updated.Catatan).To(Equal("catatan baru"))
				Expect(publisher.resetEvents()).To(BeEmpty())
			})

			It("resets to pending when a single critical field changes", func() {
				record := approvedRecord(tindakan.StatusDisetujui)

				updated, result, err := service.UpdateTindakan(ctx, record.ID, petugasID, petugasPerms,
					submitted(`{"pasien_id": 99}`))

				Expect(err).ToNot(HaveOccurred())
				Expect(result.Reset).To(BeTrue())
				Expect(result.ChangedFields).To(Equal([]string{"pasien_id"}))
				Expect(result.Warning).ToNot(BeEmpty())
				Expect(updated.StatusValidasi).To(Equal(tindakan.StatusPending))
				Expect(updated.ValidasiBy).To(BeNil())
				Expect(updated.ValidasiAt).To(BeNil())
				Expect(*updated.KomentarValidasi).To(Equal(
					"Data diubah oleh petugas - perlu validasi ulang. Fields: pasien_id"))
			})

			It("lists multiple changed fields in checked order", func() {
				record := approvedRecord(tindakan.StatusDisetujui)

				// submitted out of order, comment must follow the checked order
				updated, result, err := service.UpdateTindakan(ctx, record.ID, petugasID, petugasPerms,
					submitted(`{"tarif": 750000, "pasien_id": 99, "jasa_dokter": 300000}`))

				Expect(err).ToNot(HaveOccurred())
				Expect(result.ChangedFields).To(Equal([]string{"pasien_id", "tarif", "jasa_dokter"}))
				Expect(*updated.KomentarValidasi).To(Equal(
					"Data diubah oleh petugas - perlu validasi ulang. Fields: pasien_id, tarif, jasa_dokter"))
			})

			It("treats the legacy approved status the same as disetujui", func() {
				record := approvedRecord(tindakan.StatusApprovedLegacy)

				updated, result, err := service.UpdateTindakan(ctx, record.ID, petugasID, petugasPerms,
					submitted(`{"tarif": 750000}`))

				Expect(err).ToNot(HaveOccurred())
				Expect(result.Reset).To(BeTrue())
				Expect(result.PriorStatus).To(Equal(tindakan.StatusApprovedLegacy))
				Expect(updated.StatusValidasi).To(Equal(tindakan.StatusPending))
				Expect(updated.ValidasiBy).To(BeNil())
			})

			It("does not flag a numeric string equal to the persisted number", func() {
				record := approvedRecord(tindakan.StatusDisetujui)

				updated, result, err := service.UpdateTindakan(ctx, record.ID, petugasID, petugasPerms,
					submitted(`{"tarif": "500000"}`))

				Expect(err).ToNot(HaveOccurred())
				Expect(result.Reset).To(BeFalse())
				Expect(updated.StatusValidasi).To(Equal(tindakan.StatusDisetujui))
				Expect(publisher.resetEvents()).To(BeEmpty())
			})

			It("does not flag a date string matching the persisted timestamp", func() {
				record := approvedRecord(tindakan.StatusDisetujui)

				updated, result, err := service.UpdateTindakan(ctx, record.ID, petugasID, petugasPerms,
					submitted(`{"tanggal_tindakan": "2024-08-20 09:00:00"}`))

				Expect(err).ToNot(HaveOccurred())
				Expect(result.Reset).To(BeFalse())
				Expect(updated.StatusValidasi).To(Equal(tindakan.StatusDisetujui))
				Expect(publisher.resetEvents()).To(BeEmpty())
			})

			It("resets when the scheduled date actually changes", func() {
				record := approvedRecord(tindakan.StatusDisetujui)

				_, result, err := service.UpdateTindakan(ctx, record.ID, petugasID, petugasPerms,
					submitted(`{"tanggal_tindakan": "2024-08-21 09:00:00"}`))

				Expect(err).ToNot(HaveOccurred())
				Expect(result.Reset).To(BeTrue())
				Expect(result.ChangedFields).To(Equal([]string{"tanggal_tindakan"}))
			})

			It("still saves the reset when event emission fails", func() {
				record := approvedRecord(tindakan.StatusDisetujui)
				publisher.publishError = errors.New("bus unavailable")

				updated, result, err := service.UpdateTindakan(ctx, record.ID, petugasID, petugasPerms,
					submitted(`{"tarif": 750000}`))

				Expect(err).ToNot(HaveOccurred())
				Expect(result.Reset).To(BeTrue())
				Expect(updated.StatusValidasi).To(Equal(tindakan.StatusPending))

				persisted, err := mockRepo.GetByID(record.ID)
				Expect(err).ToNot(HaveOccurred())
				Expect(persisted.StatusValidasi).To(Equal(tindakan.StatusPending))
			})

			It("handles the tariff edit scenario end to end", func() {
				record := approvedRecord(tindakan.StatusDisetujui)

				updated, result, err := service.UpdateTindakan(ctx, record.ID, petugasID, petugasPerms,
					submitted(`{"tarif": 750000}`))

				Expect(err).ToNot(HaveOccurred())
				Expect(result.Reset).To(BeTrue())
				Expect(updated.StatusValidasi).To(Equal(tindakan.StatusPending))
				Expect(updated.ValidasiBy).To(BeNil())
				Expect(updated.ValidasiAt).To(BeNil())
				Expect(updated.Tarif).To(Equal(int64(750000)))
				Expect(*updated.KomentarValidasi).To(Equal(
					"Data diubah oleh petugas - perlu validasi ulang. Fields: tarif"))

				resetEvents := publisher.resetEvents()
				Expect(resetEvents).To(HaveLen(1))
				event := resetEvents[0]
				Expect(event.EntityType).To(Equal("Tindakan"))
				Expect(event.EntityID).To(Equal(record.ID))
				Expect(event.PriorStatus).To(Equal(tindakan.StatusDisetujui))
				Expect(event.NewStatus).To(Equal(tindakan.StatusPending))
				Expect(event.ChangedFields).To(Equal([]string{"tarif"}))
				Expect(event.EditorID).To(Equal(petugasID))
				Expect(event.EditorName).To(Equal("Siti Petugas"))
				Expect(event.PasienName).To(Equal("Budi Santoso"))
				Expect(event.TindakanName).To(Equal("Pemeriksaan Umum"))
				Expect(event.Tarif).To(Equal("750000"))
				Expect(event.TanggalLabel).To(Equal("20/08/2024"))
			})

			It("reports the editor as System when the actor cannot be resolved", func() {
				record := approvedRecord(tindakan.StatusDisetujui)
				users.getError = errors.New("directory down")

				_, result, err := service.UpdateTindakan(ctx, record.ID, petugasID, petugasPerms,
					submitted(`{"tarif": 750000}`))

				Expect(err).ToNot(HaveOccurred())
				Expect(result.Reset).To(BeTrue())

				resetEvents := publisher.resetEvents()
				Expect(resetEvents).To(HaveLen(1))
				Expect(resetEvents[0].EditorName).To(Equal("System"))
			})

			It("falls back to Unknown for unresolvable display names", func() {
				record := approvedRecord(tindakan.StatusDisetujui)
				delete(catalog.pasien, 1)
				delete(catalog.jenis, 2)

				_, _, err := service.UpdateTindakan(ctx, record.ID, petugasID, petugasPerms,
					submitted(`{"tarif": 750000}`))
				Expect(err).ToNot(HaveOccurred())

				resetEvents := publisher.resetEvents()
				Expect(resetEvents).To(HaveLen(1))
				Expect(resetEvents[0].PasienName).To(Equal("Unknown"))
				Expect(resetEvents[0].TindakanName).To(Equal("Unknown"))
				Expect(resetEvents[0].DokterName).To(Equal("Unknown"))
			})
		})

		Context("when the record is pending", func() {
			It("never resets or emits, whatever is edited", func() {
				record := approvedRecord(tindakan.StatusDisetujui)
				record.StatusValidasi = tindakan.StatusPending
				record.ValidasiBy = nil
				record.ValidasiAt = nil
				Expect(mockRepo.Update(record)).To(Succeed())

				updated, result, err := service.UpdateTindakan(ctx, record.ID, petugasID, petugasPerms,
					submitted(`{"tarif": 999999, "catatan": "diubah"}`))

				Expect(err).ToNot(HaveOccurred())
				Expect(result.Reset).To(BeFalse())
				Expect(updated.StatusValidasi).To(Equal(tindakan.StatusPending))
				Expect(updated.Tarif).To(Equal(int64(999999)))
				Expect(publisher.resetEvents()).To(BeEmpty())
			})
		})

		Context("approval state in the payload", func() {
			It("ignores a client-submitted approval on a pending record", func() {
				record := approvedRecord(tindakan.StatusDisetujui)
				record.StatusValidasi = tindakan.StatusPending
				record.ValidasiBy = nil
				record.ValidasiAt = nil
				record.KomentarValidasi = nil
				Expect(mockRepo.Update(record)).To(Succeed())

				updated, result, err := service.UpdateTindakan(ctx, record.ID, petugasID, petugasPerms,
					submitted(`{"status_validasi": "disetujui", "validasi_by": 7, "validasi_at": "2024-08-20 09:00:00", "komentar_validasi": "ok"}`))

				Expect(err).ToNot(HaveOccurred())
				Expect(result.Reset).To(BeFalse())
				Expect(updated.StatusValidasi).To(Equal(tindakan.StatusPending))
				Expect(updated.ValidasiBy).To(BeNil())
				Expect(updated.ValidasiAt).To(BeNil())
				Expect(updated.KomentarValidasi).To(BeNil())
			})

			It("cannot re-approve a record the guard just reset", func() {
				record := approvedRecord(tindakan.StatusDisetujui)

				updated, result, err := service.UpdateTindakan(ctx, record.ID, petugasID, petugasPerms,
					submitted(`{"tarif": 750000, "status_validasi": "disetujui", "validasi_by": 7}`))

				Expect(err).ToNot(HaveOccurred())
				Expect(result.Reset).To(BeTrue())
				Expect(updated.StatusValidasi).To(Equal(tindakan.StatusPending))
				Expect(updated.ValidasiBy).To(BeNil())
				Expect(updated.ValidasiAt).To(BeNil())
				Expect(*updated.KomentarValidasi).To(HavePrefix(tindakan.ResetCommentPrefix))
			})
		})

		Context("access control", func() {
			It("denies edits of someone else's record to non-privileged users", func() {
				record := approvedRecord(tindakan.StatusDisetujui)

				_, _, err := service.UpdateTindakan(ctx, record.ID, int64(42), petugasPerms,
					submitted(`{"catatan": "x"}`))

				Expect(err).To(Equal(tindakan.ErrUnauthorizedAccess))
			})
		})
	})

	Describe("ApproveTindakan", func() {
		It("approves a pending record and emits an approval event", func() {
			dto := &tindakan.CreateTindakanDTO{
				PasienID:        1,
				JenisTindakanID: 2,
				TanggalTindakan: time.Date(2024, 8, 20, 9, 0, 0, 0, time.UTC),
			}
			record, err := service.CreateTindakan(dto, petugasID)
			Expect(err).ToNot(HaveOccurred())

			approved, err := service.ApproveTindakan(ctx, record.ID, bendaharaID, bendaharaPerms, "OK")

			Expect(err).ToNot(HaveOccurred())
			Expect(approved.StatusValidasi).To(Equal(tindakan.StatusDisetujui))
			Expect(*approved.ValidasiBy).To(Equal(bendaharaID))
			Expect(approved.ValidasiAt).ToNot(BeNil())
			Expect(publisher.published).To(HaveLen(1))
			Expect(publisher.published[0].EventType()).To(Equal(events.EventTypeTindakanApproved))
		})

		It("denies approval without the validation permission", func() {
			record := approvedRecord(tindakan.StatusDisetujui)

			_, err := service.ApproveTindakan(ctx, record.ID, petugasID, petugasPerms, "")
			Expect(err).To(Equal(tindakan.ErrUnauthorizedAccess))
		})

		It("rejects approval of a non-pending record", func() {
			record := approvedRecord(tindakan.StatusDisetujui)

			_, err := service.ApproveTindakan(ctx, record.ID, bendaharaID, bendaharaPerms, "")
			Expect(err).To(Equal(tindakan.ErrInvalidStatusValidasi))
		})
	})

	Describe("RejectTindakan", func() {
		It("rejects a pending record with the reviewer comment", func() {
			dto := &tindakan.CreateTindakanDTO{
				PasienID:        1,
				JenisTindakanID: 2,
				TanggalTindakan: time.Date(2024, 8, 20, 9, 0, 0, 0, time.UTC),
			}
			record, err := service.CreateTindakan(dto, petugasID)
			Expect(err).ToNot(HaveOccurred())

			rejected, err := service.RejectTindakan(ctx, record.ID, bendaharaID, bendaharaPerms, "Data tidak lengkap")

			Expect(err).ToNot(HaveOccurred())
			Expect(rejected.StatusValidasi).To(Equal(tindakan.StatusDitolak))
			Expect(*rejected.KomentarValidasi).To(Equal("Data tidak lengkap"))
		})
	})

	Describe("GetTindakanForUser", func() {
		It("scopes listing to own input for non-privileged users", func() {
			mine := approvedRecord(tindakan.StatusDisetujui)
			other := approvedRecord(tindakan.StatusDisetujui)
			other.InputBy = int64(42)
			Expect(mockRepo.Update(other)).To(Succeed())

			records, err := service.GetTindakanForUser(petugasID, petugasPerms, 20, 0)

			Expect(err).ToNot(HaveOccurred())
			Expect(records).To(HaveLen(1))
			Expect(records[0].ID).To(Equal(mine.ID))
		})

		It("lets validators see everything", func() {
			approvedRecord(tindakan.StatusDisetujui)
			approvedRecord(tindakan.StatusDisetujui)

			records, err := service.GetTindakanForUser(bendaharaID, bendaharaPerms, 20, 0)

			Expect(err).ToNot(HaveOccurred())
			Expect(records).To(HaveLen(2))
		})
	})
})
