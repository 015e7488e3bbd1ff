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
	Long:  `Seed the database with a demo tenant for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte("password"), cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash demo password: %v", err)
		}

		const tenantID = 1

		// The demo org is a three-level chain: a root-level director (the
		// self-approval case), an HR lead and a line manager under the
		// director, and two employees under the line manager.
		type seedEmployee struct {
			Name         string
			Email        string
			Department   string
			Role         string
			ManagerEmail string
		}
		staff := []seedEmployee{
			{"Avery Chen", "avery@workstack.dev", "Operations", "MANAGER", ""},
			{"Dana Whitfield", "dana@workstack.dev", "People", "HR", "avery@workstack.dev"},
			{"Morgan Patel", "morgan@workstack.dev", "Engineering", "MANAGER", "avery@workstack.dev"},
			{"Sam Okafor", "sam@workstack.dev", "Engineering", "EMPLOYEE", "morgan@workstack.dev"},
			{"Lee Fischer", "lee@workstack.dev", "Engineering", "EMPLOYEE", "morgan@workstack.dev"},
		}

		idByEmail := map[string]int64{}
		for _, s := range staff {
			var existingID int64
			row := db.Raw("SELECT id FROM employees WHERE email = ?", s.Email).Row()
			if err := row.Scan(&existingID); err == nil {
				fmt.Println("employee already exists:", s.Email)
				idByEmail[s.Email] = existingID
				continue
			}

			var managerID interface{}
			if s.ManagerEmail != "" {
				managerID = idByEmail[s.ManagerEmail]
			}
			if err := db.Exec(
				"INSERT INTO employees (tenant_id, name, email, department, manager_id, role, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, now(), now())",
				tenantID, s.Name, s.Email, s.Department, managerID, s.Role, string(hash),
			).Error; err != nil {
				log.Fatalf("failed to insert employee %s: %v", s.Email, err)
			}

			var id int64
			if err := db.Raw("SELECT id FROM employees WHERE email = ?", s.Email).Row().Scan(&id); err != nil {
				log.Fatalf("failed to look up employee %s after insert: %v", s.Email, err)
			}
			idByEmail[s.Email] = id
			fmt.Println("seeded employee:", s.Email)
		}

		holidays := []struct {
			Name string
			Date string
		}{
			{"New Year's Day", "2026-01-01"},
			{"Memorial Day", "2026-05-25"},
			{"Independence Day", "2026-07-03"},
			{"Thanksgiving", "2026-11-26"},
			{"Christmas Day", "2026-12-25"},
		}
		for _, h := range holidays {
			var exists int
			row := db.Raw("SELECT 1 FROM holidays WHERE tenant_id = ? AND date = ?", tenantID, h.Date).Row()
			if err := row.Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec(
				"INSERT INTO holidays (tenant_id, name, date) VALUES (?, ?, ?)",
				tenantID, h.Name, h.Date,
			).Error; err != nil {
				log.Fatalf("failed to insert holiday %s: %v", h.Name, err)
			}
			fmt.Println("seeded holiday:", h.Name)
		}

		fmt.Println("seed complete; all demo accounts use password \"password\"")
	},
}
