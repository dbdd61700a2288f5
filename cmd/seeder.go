package cmd

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/prasetyadi/hr-platform/internal/auth"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed roles, permissions, demo accounts and leave types for development.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		gormDB, err := initGorm(db)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			clearSeedData(gormDB)
		}

		seedAll(gormDB)
	},
}

// Role permission grants. Employees only file and read their own leave;
// everything above that comes through the HR or admin roles.
var rolePermissions = map[string][]auth.Permission{
	"System Administrator": auth.AllPermissions,
	"HR Manager": {
		auth.PermissionEmployeeRead,
		auth.PermissionEmployeeCreate,
		auth.PermissionEmployeeUpdate,
		auth.PermissionLeaveRequestCreate,
		auth.PermissionLeaveRequestRead,
		auth.PermissionLeaveRequestUpdate,
		auth.PermissionLeaveRequestDelete,
		auth.PermissionLeaveTypeCreate,
		auth.PermissionLeaveTypeRead,
		auth.PermissionLeaveTypeUpdate,
		auth.PermissionLeaveBalanceCreate,
		auth.PermissionLeaveBalanceRead,
		auth.PermissionLeaveReportRead,
		auth.PermissionUserRead,
		auth.PermissionRoleRead,
	},
	"Employee": {
		auth.PermissionLeaveRequestCreate,
	},
}

type seedUser struct {
	username   string
	email      string
	role       string
	firstName  string
	lastName   string
	position   string
	department string
}

var seedUsers = []seedUser{
	{"admin", "admin@hrplatform.local", "System Administrator", "System", "Administrator", "Platform Admin", "IT"},
	{"hr.manager", "hr.manager@hrplatform.local", "HR Manager", "Harsono", "Wijaya", "HR Manager", "Human Resources"},
	{"employee", "employee@hrplatform.local", "Employee", "Dewi", "Lestari", "Software Engineer", "Engineering"},
}

var seedLeaveTypes = []struct {
	name             string
	description      string
	maxDays          int
	requiresDocument bool
}{
	{"Vacation Leave", "Annual paid vacation", 15, false},
	{"Sick Leave", "Paid sick leave", 15, true},
	{"Special Privilege Leave", "Special occasions", 3, false},
	{"Maternity Leave", "Paid maternity leave", 105, true},
	{"Paternity Leave", "Paid paternity leave", 7, true},
}

func clearSeedData(db *gorm.DB) {
	for _, table := range []string{
		"leave_monetizations", "leave_balances", "leave_applications",
		"leave_types", "personnel", "role_permissions", "user_roles", "roles", "users",
	} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.Fatalf("failed to clear %s: %v", table, err)
		}
	}
	fmt.Println("Cleared existing data")
}

func seedAll(db *gorm.DB) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash seed password: %v", err)
	}

	roleIDs := map[string]int64{}
	for role, perms := range rolePermissions {
		var roleID int64
		row := db.Raw("SELECT id FROM roles WHERE name = ?", role).Row()
		if err := row.Scan(&roleID); err != nil {
			if err := db.Exec(
				"INSERT INTO roles (name, description, is_active, created_at) VALUES (?, ?, true, now())",
				role, role+" role").Error; err != nil {
				log.Fatalf("failed to insert role %s: %v", role, err)
			}
			if err := db.Raw("SELECT id FROM roles WHERE name = ?", role).Row().Scan(&roleID); err != nil {
				log.Fatalf("failed to read back role %s: %v", role, err)
			}
			fmt.Println("Seeded role:", role)
		}
		roleIDs[role] = roleID

		for _, p := range perms {
			if err := db.Exec(
				"INSERT INTO role_permissions (role_id, permission) VALUES (?, ?) ON CONFLICT DO NOTHING",
				roleID, string(p)).Error; err != nil {
				log.Fatalf("failed to grant %s to %s: %v", p, role, err)
			}
		}
	}

	seedLeaveTypeRows(db)

	year := strconv.Itoa(time.Now().Year())

	for _, su := range seedUsers {
		var userID int64
		row := db.Raw("SELECT id FROM users WHERE username = ?", su.username).Row()
		if err := row.Scan(&userID); err != nil {
			if err := db.Exec(
				"INSERT INTO users (username, email, password_hash, status, created_at, updated_at) VALUES (?, ?, ?, 'Active', now(), now())",
				su.username, su.email, string(hash)).Error; err != nil {
				log.Fatalf("failed to insert user %s: %v", su.username, err)
			}
			if err := db.Raw("SELECT id FROM users WHERE username = ?", su.username).Row().Scan(&userID); err != nil {
				log.Fatalf("failed to read back user %s: %v", su.username, err)
			}
			fmt.Println("Seeded user:", su.username)
		}

		if err := db.Exec(
			"INSERT INTO user_roles (user_id, role_id, is_active, assigned_at) VALUES (?, ?, true, now()) ON CONFLICT (user_id, role_id) DO UPDATE SET is_active = true",
			userID, roleIDs[su.role]).Error; err != nil {
			log.Fatalf("failed to assign role to %s: %v", su.username, err)
		}

		var personnelID string
		row = db.Raw("SELECT id FROM personnel WHERE user_id = ?", userID).Row()
		if err := row.Scan(&personnelID); err != nil {
			personnelID = uuid.NewString()
			if err := db.Exec(
				"INSERT INTO personnel (id, user_id, first_name, last_name, position, department, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, true, now(), now())",
				personnelID, userID, su.firstName, su.lastName, su.position, su.department).Error; err != nil {
				log.Fatalf("failed to insert personnel for %s: %v", su.username, err)
			}
		}

		// Open this year's ledger rows so approvals have credit to debit.
		rows, err := db.Raw("SELECT id, max_days FROM leave_types").Rows()
		if err != nil {
			log.Fatalf("failed to list leave types: %v", err)
		}
		type typeRow struct {
			id      string
			maxDays int
		}
		var typeRows []typeRow
		for rows.Next() {
			var tr typeRow
			if err := rows.Scan(&tr.id, &tr.maxDays); err != nil {
				rows.Close()
				log.Fatalf("failed to scan leave type: %v", err)
			}
			typeRows = append(typeRows, tr)
		}
		rows.Close()

		for _, tr := range typeRows {
			if err := db.Exec(
				"INSERT INTO leave_balances (id, personnel_id, leave_type_id, year, total_credits, used_credits, earned_credits, last_updated) VALUES (?, ?, ?, ?, ?, 0, 0, now()) ON CONFLICT (personnel_id, leave_type_id, year) DO NOTHING",
				uuid.NewString(), personnelID, tr.id, year, float64(tr.maxDays)).Error; err != nil {
				log.Fatalf("failed to seed balance for %s: %v", su.username, err)
			}
		}
	}

	fmt.Println("Seeding complete")
}

func seedLeaveTypeRows(db *gorm.DB) {
	for _, lt := range seedLeaveTypes {
		var exists int
		row := db.Raw("SELECT 1 FROM leave_types WHERE name = ?", lt.name).Row()
		if err := row.Scan(&exists); err == nil {
			continue
		}
		if err := db.Exec(
			"INSERT INTO leave_types (id, name, description, max_days, requires_document, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, true, now(), now())",
			uuid.NewString(), lt.name, lt.description, lt.maxDays, lt.requiresDocument).Error; err != nil {
			log.Fatalf("failed to insert leave type %s: %v", lt.name, err)
		}
		fmt.Println("Seeded leave type:", lt.name)
	}
}
