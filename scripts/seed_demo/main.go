package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"finbooks/models"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func mustDBFromEnv() *gorm.DB {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN not set in env")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	return gdb
}

func strp(s string) *string { return &s }

// Seeds a handful of ledger rows spread over the last year so the window
// filters have something to show during manual testing.
func main() {
	username := flag.String("username", "admin", "username to assign records to")
	dry := flag.Bool("dry-run", true, "dry-run: don't write to DB")
	flag.Parse()

	_ = godotenv.Load()
	gdb := mustDBFromEnv()

	var user models.User
	if err := gdb.Where("username = ?", *username).First(&user).Error; err != nil {
		log.Fatalf("user not found: %v", err)
	}

	now := time.Now()
	txs := []models.Transaction{
		{Title: strp("salary"), Amount: decimal.RequireFromString("2500.00"), Category: models.Income, Created: now},
		{Title: strp("groceries"), Amount: decimal.RequireFromString("84.30"), Category: models.Expense, Created: now},
		{Title: strp("rent"), Amount: decimal.RequireFromString("900.00"), Category: models.Expense, Created: now.AddDate(0, -1, 0)},
		{Title: strp("freelance"), Amount: decimal.RequireFromString("420.00"), Category: models.Income, Created: now.AddDate(0, -3, 0)},
		{Title: strp("old laptop"), Amount: decimal.RequireFromString("650.00"), Category: models.Expense, Created: now.AddDate(-1, 0, 0)},
	}
	dls := []models.DebtLoan{
		{WithWho: "ACME co.", Title: strp("invoice 42"), Amount: decimal.RequireFromString("42.00"), Category: models.Loan, Created: now},
		{WithWho: "FooBar inc.", Amount: decimal.RequireFromString("130.00"), Category: models.Debt, Created: now.AddDate(0, -2, 0)},
	}

	for i := range txs {
		txs[i].UserID = user.ID
		txs[i].Modified = txs[i].Created
		txs[i].Active = true
		if *dry {
			fmt.Printf("would create transaction %q amount=%s category=%s\n", txs[i].String(), txs[i].Amount, txs[i].Category)
			continue
		}
		if err := gdb.Create(&txs[i]).Error; err != nil {
			log.Printf("create transaction failed: %v", err)
		}
	}
	for i := range dls {
		dls[i].UserID = user.ID
		dls[i].Modified = dls[i].Created
		dls[i].Active = true
		if *dry {
			fmt.Printf("would create debt/loan %q amount=%s category=%s\n", dls[i].String(), dls[i].Amount, dls[i].Category)
			continue
		}
		if err := gdb.Create(&dls[i]).Error; err != nil {
			log.Printf("create debt/loan failed: %v", err)
		}
	}
	if *dry {
		fmt.Println("dry-run complete; pass -dry-run=false to write")
	}
}
