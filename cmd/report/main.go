// report prints a user's ledger summary for one of the named calendar
// windows, the same windows the list API exposes via ?filter=.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"finbooks/models"
	"finbooks/pkg/ledger"
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

func main() {
	username := flag.String("username", "", "username to report for")
	window := flag.String("window", "this_month", "window: this_month, last_month, this_year or all_time")
	list := flag.Bool("list", false, "list matching rows")
	flag.Parse()

	_ = godotenv.Load()
	if *username == "" {
		log.Fatal("--username is required")
	}

	gdb := mustDBFromEnv()

	var user models.User
	if err := gdb.Where("username = ?", *username).First(&user).Error; err != nil {
		log.Fatalf("user not found: %v", err)
	}

	w := ledger.ParseWindow(*window)
	q := gdb.Where("user_id = ? AND active = ?", user.ID, true)
	if start, end, bounded := w.Range(time.Now()); bounded {
		q = q.Where("created >= ? AND created < ?", start, end)
	}
	var txs []models.Transaction
	if err := q.Order("id desc").Find(&txs).Error; err != nil {
		log.Fatalf("query failed: %v", err)
	}

	fmt.Printf("Report for user=%s window=%s:\n", user.Username, w)
	fmt.Printf("  records=%d", len(txs))
	if income := ledger.SumTransactions(txs, models.Income); income != nil {
		fmt.Printf(" income=%s", income)
	}
	if expense := ledger.SumTransactions(txs, models.Expense); expense != nil {
		fmt.Printf(" expense=%s", expense)
	}
	fmt.Println()

	if *list {
		for _, t := range txs {
			fmt.Printf("%d|%s|%s|%s|%s\n", t.ID, t.String(), t.Amount, t.Category, t.Created.Format(time.RFC3339))
		}
	}
}
