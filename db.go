package main

import (
	"log"
	"os"
	"strings"
	"time"

	"finbooks/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

func initDB() {
	var err error
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect postgres database:", err)
	}
	// Control schema migrations with env DB_AUTO_MIGRATE (default true). Any permission errors will be logged and ignored.
	shouldMigrate := true
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		lv := strings.ToLower(v)
		if lv == "false" || lv == "0" || lv == "no" {
			shouldMigrate = false
		}
	}
	// Ensure the roles master table exists first and seed it so users FK can be applied safely.
	if shouldMigrate {
		if err := db.AutoMigrate(&models.Role{}); err != nil {
			log.Printf("migration warning (roles): %v", err)
		}
	}
	seedRoles()

	// Now migrate the rest (users will get FK to roles)
	if shouldMigrate {
		// Migrate models individually so a failure on one doesn't block others
		if err := db.AutoMigrate(&models.User{}); err != nil {
			log.Printf("migration warning (users): %v", err)
		}
		if err := db.AutoMigrate(&models.Transaction{}); err != nil {
			log.Printf("migration warning (transactions): %v", err)
		}
		if err := db.AutoMigrate(&models.DebtLoan{}); err != nil {
			log.Printf("migration warning (debt_loans): %v", err)
		}
		if err := db.AutoMigrate(&models.RefreshToken{}); err != nil {
			log.Printf("migration warning (refresh_tokens): %v", err)
		}
	}

	seedDB()
}

func seedRoles() {
	roles := []models.Role{{Name: "administrator", Description: "full access"}, {Name: "user", Description: "regular user"}}
	for _, r := range roles {
		var cnt int64
		db.Model(&models.Role{}).Where("name = ?", r.Name).Count(&cnt)
		if cnt == 0 {
			db.Create(&r)
		}
	}
}

func seedDB() {
	seedRoles()

	// Check if admin user exists
	var count int64
	db.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	if count == 0 {
		// find administrator role id
		var role models.Role
		if err := db.Where("name = ?", "administrator").First(&role).Error; err != nil {
			log.Printf("failed to find administrator role: %v", err)
		}
		// Seed admin user
		rid := role.ID
		admin := models.User{
			Username: "admin",
			RoleID:   &rid,
		}
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		admin.HashedPassword = hashedPassword
		db.Create(&admin)
		log.Println("Seeded admin user: username=admin, password=admin123")
	}
}

// createTransaction inserts a new transaction for the user. Created and
// Modified are stamped here; Created never changes afterwards.
func createTransaction(userID uint, title *string, amount decimal.Decimal, category models.TransactionCategory) (*models.Transaction, error) {
	now := time.Now()
	tr := models.Transaction{
		UserID:   userID,
		Title:    title,
		Amount:   amount,
		Category: category,
		Created:  now,
		Modified: now,
		Active:   true,
	}
	if err := db.Create(&tr).Error; err != nil {
		return nil, err
	}
	return &tr, nil
}

// createDebtLoan inserts a new debt/loan row for the user.
func createDebtLoan(userID uint, withWho string, title *string, amount decimal.Decimal, category models.DebtLoanCategory) (*models.DebtLoan, error) {
	now := time.Now()
	dl := models.DebtLoan{
		UserID:   userID,
		WithWho:  withWho,
		Title:    title,
		Amount:   amount,
		Category: category,
		Created:  now,
		Modified: now,
		Active:   true,
	}
	if err := db.Create(&dl).Error; err != nil {
		return nil, err
	}
	return &dl, nil
}
