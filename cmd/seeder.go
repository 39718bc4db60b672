package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{"notifications", "attendances", "tolerance_rules", "tindakan", "user_permissions"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared transactional data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), cfg.Security.BCryptCost)

		users := []struct {
			Email string
			Name  string
			Role  string
			Perms []string
		}{
			{"admin@dokterku.id", "Admin Klinik", "admin", []string{"admin"}},
			{"bendahara@dokterku.id", "Andi Bendahara", "bendahara", []string{"validasi_tindakan", "view_tindakan"}},
			{"petugas@dokterku.id", "Siti Petugas", "petugas", []string{"input_tindakan"}},
			{"dokter@dokterku.id", "dr. Rina", "dokter", []string{"view_tindakan"}},
		}

		permissions := []struct {
			Name string
			Desc string
		}{
			{"admin", "full administrator"},
			{"input_tindakan", "Can record clinical procedures"},
			{"validasi_tindakan", "Can approve or reject procedures"},
			{"view_tindakan", "Can view all procedures"},
			{"kelola_lokasi", "Can manage work locations"},
			{"kelola_toleransi", "Can manage tolerance rules"},
		}

		permIDs := map[string]int64{}
		for _, p := range permissions {
			var pid int64
			row := db.Raw("SELECT id FROM permissions WHERE name = ?", p.Name).Row()
			if err := row.Scan(&pid); err != nil {
				if err := db.Exec("INSERT INTO permissions (name, description, created_at) VALUES (?, ?, now())", p.Name, p.Desc).Error; err != nil {
					log.Fatalf("failed to insert permission %s: %v", p.Name, err)
				}
				row = db.Raw("SELECT id FROM permissions WHERE name = ?", p.Name).Row()
				if err := row.Scan(&pid); err != nil {
					log.Fatalf("failed to read back permission %s: %v", p.Name, err)
				}
				fmt.Println("Seeded permission:", p.Name)
			}
			permIDs[p.Name] = pid
		}

		for _, u := range users {
			var uid int64
			row := db.Raw("SELECT id FROM users WHERE email = ?", u.Email).Row()
			if err := row.Scan(&uid); err != nil {
				if err := db.Exec("INSERT INTO users (email, name, password_hash, role, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, true, now(), now())", u.Email, u.Name, string(hash), u.Role).Error; err != nil {
					log.Fatalf("failed to insert user %s: %v", u.Email, err)
				}
				row = db.Raw("SELECT id FROM users WHERE email = ?", u.Email).Row()
				if err := row.Scan(&uid); err != nil {
					log.Fatalf("failed to read back user %s: %v", u.Email, err)
				}
				fmt.Println("Seeded user:", u.Email)
			}

			for _, perm := range u.Perms {
				var exists int
				row := db.Raw("SELECT 1 FROM user_permissions WHERE user_id = ? AND permission_id = ?", uid, permIDs[perm]).Row()
				if err := row.Scan(&exists); err != nil {
					if err := db.Exec("INSERT INTO user_permissions (user_id, permission_id, created_at) VALUES (?, ?, now())", uid, permIDs[perm]).Error; err != nil {
						log.Fatalf("failed to grant %s to %s: %v", perm, u.Email, err)
					}
				}
			}
		}

		pasien := []struct {
			NoRekamMedis string
			Nama         string
			JenisKelamin string
		}{
			{"RM-0001", "Budi Santoso", "L"},
			{"RM-0002", "Dewi Lestari", "P"},
			{"RM-0003", "Agus Wijaya", "L"},
		}
		for _, p := range pasien {
			var exists int
			row := db.Raw("SELECT 1 FROM pasien WHERE no_rekam_medis = ?", p.NoRekamMedis).Row()
			if err := row.Scan(&exists); err != nil {
				if err := db.Exec("INSERT INTO pasien (no_rekam_medis, nama, jenis_kelamin, created_at, updated_at) VALUES (?, ?, ?, now(), now())", p.NoRekamMedis, p.Nama, p.JenisKelamin).Error; err != nil {
					log.Fatalf("failed to insert pasien %s: %v", p.Nama, err)
				}
				fmt.Println("Seeded pasien:", p.Nama)
			}
		}

		jenisTindakan := []struct {
			Kode               string
			Nama               string
			Tarif              int64
			PersenDokter       float64
			PersenParamedis    float64
			PersenNonParamedis float64
		}{
			{"JT-001", "Pemeriksaan Umum", 500000, 40, 15, 5},
			{"JT-002", "Pembersihan Karang Gigi", 350000, 50, 10, 5},
			{"JT-003", "Suntik Vitamin", 150000, 30, 20, 5},
		}
		for _, jt := range jenisTindakan {
			var exists int
			row := db.Raw("SELECT 1 FROM jenis_tindakan WHERE kode = ?", jt.Kode).Row()
			if err := row.Scan(&exists); err != nil {
				if err := db.Exec("INSERT INTO jenis_tindakan (kode, nama, tarif, persen_jasa_dokter, persen_jasa_paramedis, persen_jasa_non_paramedis, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, true, now(), now())",
					jt.Kode, jt.Nama, jt.Tarif, jt.PersenDokter, jt.PersenParamedis, jt.PersenNonParamedis).Error; err != nil {
					log.Fatalf("failed to insert jenis tindakan %s: %v", jt.Nama, err)
				}
				fmt.Println("Seeded jenis tindakan:", jt.Nama)
			}
		}

		shifts := []struct {
			Nama      string
			JamMasuk  string
			JamPulang string
		}{
			{"Pagi", "07:00", "14:00"},
			{"Sore", "14:00", "21:00"},
		}
		for _, s := range shifts {
			var exists int
			row := db.Raw("SELECT 1 FROM shift_templates WHERE nama = ?", s.Nama).Row()
			if err := row.Scan(&exists); err != nil {
				if err := db.Exec("INSERT INTO shift_templates (nama, jam_masuk, jam_pulang, is_active, created_at, updated_at) VALUES (?, ?, ?, true, now(), now())", s.Nama, s.JamMasuk, s.JamPulang).Error; err != nil {
					log.Fatalf("failed to insert shift %s: %v", s.Nama, err)
				}
				fmt.Println("Seeded shift:", s.Nama)
			}
		}

		var locExists int
		row := db.Raw("SELECT 1 FROM work_locations WHERE name = ?", "Klinik Dokterku Pusat").Row()
		if err := row.Scan(&locExists); err != nil {
			if err := db.Exec("INSERT INTO work_locations (name, location_type, latitude, longitude, radius_meters, gps_accuracy_required_meters, shift_start, shift_end, checkin_tolerance_minutes, checkout_tolerance_minutes, is_active, created_at, updated_at) VALUES (?, 'main_office', -7.7956, 110.3695, 100, 50, '07:00', '16:00', 15, 15, true, now(), now())",
				"Klinik Dokterku Pusat").Error; err != nil {
				log.Fatalf("failed to insert work location: %v", err)
			}
			fmt.Println("Seeded work location: Klinik Dokterku Pusat")
		}

		var ruleExists int
		row = db.Raw("SELECT 1 FROM tolerance_rules WHERE name = ?", "Default klinik").Row()
		if err := row.Scan(&ruleExists); err != nil {
			if err := db.Exec("INSERT INTO tolerance_rules (name, scope_type, priority, checkin_early_tolerance_minutes, checkin_late_tolerance_minutes, checkin_tolerance_enabled, checkout_early_tolerance_minutes, checkout_late_tolerance_minutes, checkout_tolerance_enabled, is_active, created_at, updated_at) VALUES (?, 'global', 100, 30, 15, true, 15, 60, true, true, now(), now())",
				"Default klinik").Error; err != nil {
				log.Fatalf("failed to insert tolerance rule: %v", err)
			}
			fmt.Println("Seeded tolerance rule: Default klinik")
		}

		fmt.Println("Seeding complete")
	},
}
