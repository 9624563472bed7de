package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rl1809/inventory-bot/internal/adapter/handler"
	"github.com/rl1809/inventory-bot/internal/adapter/storage"
	"github.com/rl1809/inventory-bot/internal/core/domain"
	"github.com/rl1809/inventory-bot/internal/core/service"
)

const (
	password     = "simulate"
	itemName     = "Widget"
	initialStock = 1000
)

func main() {
	users := flag.Int("users", 50, "concurrent chat users")
	rounds := flag.Int("rounds", 20, "add/sell rounds per user")
	backend := flag.String("backend", storage.BackendFile, "inventory backend: file or sqlite")
	flag.Parse()

	ctx := context.Background()

	dir, err := os.MkdirTemp("", "inventory-simulate-")
	if err != nil {
		log.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	opts := storage.Options{
		Backend:    *backend,
		FilePath:   filepath.Join(dir, "inventory.json"),
		SQLitePath: filepath.Join(dir, "inventory.db"),
	}
	repo, err := storage.Open(ctx, opts)
	if err != nil {
		log.Fatalf("failed to open backend: %v", err)
	}
	defer repo.Close()

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := service.NewInventoryStore(repo, quiet)
	if err := store.Load(ctx); err != nil {
		log.Fatalf("failed to load inventory: %v", err)
	}
	if err := store.Put(ctx, domain.Item{Name: itemName, Quantity: initialStock}); err != nil {
		log.Fatalf("failed to seed inventory: %v", err)
	}

	engine := service.NewEngine(store, storage.NewMemorySessionRepository(), service.WithLogger(quiet))
	dispatcher := handler.NewDispatcher(engine, password, nil, nil, quiet)

	var failCount atomic.Int32
	var wg sync.WaitGroup
	start := time.Now()

	// Each round adds 2 and sells 1 through the full multi-step flows
	for i := 0; i < *users; i++ {
		wg.Add(1)
		go func(userID int) {
			defer wg.Done()

			session := "user-" + strconv.Itoa(userID)
			script := []string{"/start", password}
			for r := 0; r < *rounds; r++ {
				script = append(script, "/add", itemName, "2", "/sell", itemName, "1")
			}
			for _, text := range script {
				if _, err := dispatcher.Dispatch(ctx, handler.Message{SessionID: session, Text: text}); err != nil {
					failCount.Add(1)
				}
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	expected := initialStock + (*users)*(*rounds)
	item, _ := store.Get(itemName)

	fresh := service.NewInventoryStore(repo, quiet)
	if err := fresh.Load(ctx); err != nil {
		log.Fatalf("failed to reload inventory: %v", err)
	}
	persisted, _ := fresh.Get(itemName)

	fmt.Println("========== SIMULATION RESULTS ==========")
	fmt.Printf("Backend:          %s\n", *backend)
	fmt.Printf("Users:            %d\n", *users)
	fmt.Printf("Rounds per user:  %d\n", *rounds)
	fmt.Printf("Failed messages:  %d\n", failCount.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("=========================================")

	ok := true
	if item.Quantity == expected {
		fmt.Printf("PASS: In-memory quantity is %d\n", expected)
	} else {
		fmt.Printf("FAIL: Expected quantity %d, got %d\n", expected, item.Quantity)
		ok = false
	}
	if persisted.Quantity == item.Quantity {
		fmt.Println("PASS: Persisted snapshot matches memory")
	} else {
		fmt.Printf("FAIL: Persisted quantity %d, memory %d\n", persisted.Quantity, item.Quantity)
		ok = false
	}
	if !ok {
		os.Exit(1)
	}
}
