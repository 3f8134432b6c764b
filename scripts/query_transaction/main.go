package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type User struct {
	ID       uint
	Username string
}

type Transaction struct {
	ID     uint
	UserID uint
	Title  *string
	Amount decimal.Decimal
}

// Polls until a transaction with the given title shows up for the user.
// Handy to confirm the import watcher picked up a dropped statement file.
func main() {
	username := flag.String("username", "", "username")
	title := flag.String("title", "", "transaction title to wait for")
	wait := flag.Int("wait", 15, "seconds to wait/poll")
	flag.Parse()
	if *username == "" || *title == "" {
		log.Fatal("--username and --title are required")
	}
	dsn := os.Getenv("DB_DSN")
	if strings.TrimSpace(dsn) == "" {
		log.Fatal("DB_DSN not set in env")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	var u User
	if err := db.Where("username = ?", *username).First(&u).Error; err != nil {
		log.Fatalf("user not found: %v", err)
	}
	deadline := time.Now().Add(time.Duration(*wait) * time.Second)
	for {
		var tr Transaction
		err := db.Where("user_id = ? AND title = ?", u.ID, *title).Order("id desc").First(&tr).Error
		if err == nil {
			fmt.Printf("FOUND id=%d amount=%s title=%s\n", tr.ID, tr.Amount, *title)
			return
		}
		if time.Now().After(deadline) {
			log.Fatalf("not found after %ds waiting", *wait)
		}
		time.Sleep(2 * time.Second)
	}
}
