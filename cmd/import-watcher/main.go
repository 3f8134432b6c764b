// import-watcher scans (and optionally watches) a drop directory for
// bank-statement CSV exports and turns their rows into Transactions for one
// user. Already-imported rows are skipped so re-dropping a file is harmless.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"finbooks/models"
	"finbooks/pkg/statement"
)

var db *gorm.DB

var (
	verbose bool
	dryRun  bool
)

// seenKeys dedupes rows across files: one entry per user/date/title/amount.
type seenKeys struct {
	keys map[string]struct{}
	mu   sync.Mutex
}

func newSeenKeys() *seenKeys {
	return &seenKeys{keys: make(map[string]struct{}, 1024)}
}

// markNew records the key and reports whether it was absent before.
func (s *seenKeys) markNew(k string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[k]; ok {
		return false
	}
	s.keys[k] = struct{}{}
	return true
}

func rowKey(r statement.Row) string {
	return fmt.Sprintf("%s|%s|%s|%d", r.Date.Format("2006-01-02"), r.Title, r.Amount.String(), r.Category)
}

func mustInitDBFromEnv() *gorm.DB {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatalf("DB_DSN must be set in environment to run this tool")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	return gdb
}

func main() {
	dirFlag := flag.String("dir", "imports", "directory to scan for statement CSV files")
	username := flag.String("username", "", "username to import transactions for")
	watch := flag.Bool("watch", false, "watch directory for new files")
	workers := flag.Int("workers", 0, "worker pool size (default NumCPU)")
	flag.BoolVar(&verbose, "verbose", false, "verbose per-file logging")
	flag.BoolVar(&dryRun, "dry-run", false, "parse and report without writing to the DB")
	flag.Parse()

	_ = godotenv.Load()

	if *username == "" {
		log.Fatal("--username is required")
	}

	db = mustInitDBFromEnv()
	user := resolveUser(*username)
	seen := preloadExisting(user)
	log.Printf("Preloaded %d existing transactions for %s", len(seen.keys), user.Username)

	files := listCSVFiles(*dirFlag)
	log.Printf("Scanning %d files (workers=%d)", len(files), effectiveWorkers(*workers))
	runWorkerPool(*dirFlag, user, seen, files, effectiveWorkers(*workers))

	if *watch {
		if err := watchDirectory(*dirFlag, user, seen, effectiveWorkers(*workers)); err != nil {
			log.Fatalf("watch failed: %v", err)
		}
	}
}

func effectiveWorkers(w int) int {
	if w <= 0 {
		return runtime.NumCPU()
	}
	return w
}

func logV(format string, args ...any) {
	if verbose {
		log.Printf(format, args...)
	}
}

func resolveUser(username string) models.User {
	var u models.User
	if err := db.Where("username = ?", username).First(&u).Error; err != nil {
		log.Fatalf("user %s not found: %v", username, err)
	}
	return u
}

// preloadExisting fetches the user's transactions once so per-row dedupe
// needs no queries.
func preloadExisting(user models.User) *seenKeys {
	seen := newSeenKeys()
	var txs []models.Transaction
	if err := db.Where("user_id = ?", user.ID).Find(&txs).Error; err == nil {
		for _, t := range txs {
			seen.keys[rowKey(statement.Row{
				Date:     t.Created,
				Title:    t.String(),
				Amount:   t.Amount,
				Category: t.Category,
			})] = struct{}{}
		}
	}
	return seen
}

func listCSVFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !isSupportedExt(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out
}

func isSupportedExt(name string) bool {
	return strings.ToLower(filepath.Ext(name)) == ".csv"
}

// worker pool orchestrator
func runWorkerPool(dir string, user models.User, seen *seenKeys, initial []string, workers int, extraCh ...<-chan string) {
	fileCh := make(chan string, 256)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range fileCh {
				importFile(dir, name, user, seen)
			}
		}()
	}
	go func() {
		for _, f := range initial {
			fileCh <- f
		}
		for _, ch := range extraCh {
			go func(c <-chan string) {
				for n := range c {
					fileCh <- n
				}
			}(ch)
		}
		if len(extraCh) == 0 {
			close(fileCh)
		}
	}()
	if len(extraCh) == 0 {
		wg.Wait()
	}
}

// importFile parses one CSV and inserts the rows that are not duplicates.
func importFile(dir, name string, user models.User, seen *seenKeys) {
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		log.Printf("open %s: %v", name, err)
		return
	}
	defer f.Close()

	rows, err := statement.ParseCSV(f)
	if err != nil {
		log.Printf("parse %s: %v", name, err)
		return
	}
	created, skipped := 0, 0
	for _, r := range rows {
		if !seen.markNew(rowKey(r)) {
			skipped++
			continue
		}
		if dryRun {
			logV("would import %s %s %s (%s)", r.Date.Format("2006-01-02"), r.Title, r.Amount, r.Category)
			created++
			continue
		}
		title := r.Title
		tr := models.Transaction{
			UserID:   user.ID,
			Title:    &title,
			Amount:   r.Amount,
			Category: r.Category,
			Created:  r.Date,
			Modified: r.Date,
			Active:   true,
		}
		if err := db.Create(&tr).Error; err != nil {
			log.Printf("insert row from %s: %v", name, err)
			continue
		}
		created++
	}
	log.Printf("%s: %d imported, %d skipped as duplicates", name, created, skipped)
}

func watchDirectory(dir string, user models.User, seen *seenKeys, workers int) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}
	log.Printf("Watching %s (debounced) ...", dir)

	fileCh := make(chan string, 256)
	go func() {
		// simple debounce map of pending files: exports are often written
		// in several chunks, wait for the file to go quiet
		pending := map[string]time.Time{}
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					close(fileCh)
					return
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
					name := filepath.Base(ev.Name)
					if !isSupportedExt(name) {
						continue
					}
					pending[name] = time.Now()
				}
			case <-ticker.C:
				now := time.Now()
				for name, t := range pending {
					if now.Sub(t) > 300*time.Millisecond { // stable
						fileCh <- name
						delete(pending, name)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					close(fileCh)
					return
				}
				log.Printf("watch error: %v", err)
			}
		}
	}()

	go runWorkerPool(dir, user, seen, nil, workers, fileCh)
	// block forever (Ctrl+C to exit)
	select {}
}
