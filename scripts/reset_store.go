package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"megacrm-backend/internal/config"
	"megacrm-backend/internal/db"
	"megacrm-backend/internal/models"
	"megacrm-backend/internal/store"
	"megacrm-backend/internal/store/pgstore"
)

// Drops every table of the PostgreSQL record store, then recreates empty
// employee tables named with -seed. Meant for test environments.
func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML config file")
	seed := flag.String("seed", "", "comma separated employees to recreate")
	force := flag.Bool("yes", false, "skip the confirmation prompt")
	flag.Parse()

	fmt.Println("========================================")
	fmt.Println("   Reset Record Store for Testing")
	fmt.Println("========================================")

	cfg := config.LoadFile(*configPath)
	fmt.Printf("Database: %s@%s:%d/%s\n", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)
	fmt.Println("WARNING: This will DELETE ALL CLIENTS, PAYMENTS AND LEDGERS!")

	if !*force {
		fmt.Print("Type 'yes' to continue: ")
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if strings.TrimSpace(answer) != "yes" {
			fmt.Println("Aborted.")
			return
		}
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect: %v\n", err)
	}
	defer pool.Close()

	s := pgstore.New(pool)
	tables, err := s.ListTables(ctx)
	if err != nil {
		log.Fatalf("Failed to list tables: %v\n", err)
	}
	for _, name := range tables {
		if err := s.DropTable(ctx, name); err != nil {
			log.Fatalf("Failed to drop %s: %v\n", name, err)
		}
		fmt.Printf("  - Dropped %s\n", name)
	}

	for _, name := range strings.Split(*seed, ",") {
		if name = strings.TrimSpace(name); name == "" {
			continue
		}
		if err := store.EnsureTable(ctx, s, name, models.ClientHeader); err != nil {
			log.Fatalf("Failed to create %s: %v\n", name, err)
		}
		fmt.Printf("  + Created employee table %s\n", name)
	}

	fmt.Println("Done.")
}
