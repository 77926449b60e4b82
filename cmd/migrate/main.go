package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/aryangaikwad-966/workflow-commerce-system/internal/domain/catalog"
	"github.com/aryangaikwad-966/workflow-commerce-system/internal/domain/identity"
	"github.com/aryangaikwad-966/workflow-commerce-system/internal/domain/order"
	"github.com/aryangaikwad-966/workflow-commerce-system/internal/domain/shared"
	"github.com/aryangaikwad-966/workflow-commerce-system/internal/domain/shared/valueobject"
	"github.com/aryangaikwad-966/workflow-commerce-system/internal/infrastructure/config"
	"github.com/aryangaikwad-966/workflow-commerce-system/internal/infrastructure/logger"
	"github.com/aryangaikwad-966/workflow-commerce-system/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(config.LogConfig{
		Level:  logLevel,
		Format: "console",
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	switch command {
	case "up":
		if err := migrateUp(db); err != nil {
			log.Fatal("Migration failed", zap.Error(err))
		}
		log.Info("Schema migrated successfully")
	case "seed":
		if err := seed(db, log); err != nil {
			log.Fatal("Seeding failed", zap.Error(err))
		}
		log.Info("Seed data created successfully")
	default:
		printUsage()
		os.Exit(1)
	}
}

// migrateUp creates or updates the database schema for all aggregates
func migrateUp(db *persistence.Database) error {
	return db.DB.AutoMigrate(
		&identity.User{},
		&catalog.Category{},
		&catalog.Product{},
		&order.Order{},
		&order.Line{},
	)
}

// seed creates an initial admin account and a small demo catalog.
// Existing rows are left alone so the command is safe to re-run.
func seed(db *persistence.Database, log *zap.Logger) error {
	ctx := context.Background()

	userRepo := persistence.NewGormUserRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)

	adminPassword := os.Getenv("COMMERCE_SEED_ADMIN_PASSWORD")
	if adminPassword == "" {
		return fmt.Errorf("COMMERCE_SEED_ADMIN_PASSWORD must be set to seed the admin account")
	}

	exists, err := userRepo.ExistsByUsername(ctx, "admin")
	if err != nil {
		return err
	}
	if !exists {
		admin, err := identity.NewAdminUser("admin", "admin@example.com", adminPassword)
		if err != nil {
			return err
		}
		if err := userRepo.Save(ctx, admin); err != nil {
			return err
		}
		log.Info("Admin account created", zap.String("username", "admin"))
	}

	seedCategories := []struct {
		name        string
		description string
	}{
		{"Drinkware", "Mugs, bottles and tumblers"},
		{"Stationery", "Notebooks, pens and desk supplies"},
	}

	categoryIDs := make(map[string]*catalog.Category)
	for _, sc := range seedCategories {
		existing, err := categoryRepo.FindByName(ctx, sc.name)
		if err == nil {
			categoryIDs[sc.name] = existing
			continue
		}

		category, err := catalog.NewCategory(sc.name, sc.description)
		if err != nil {
			return err
		}
		if err := categoryRepo.Save(ctx, category); err != nil {
			return err
		}
		categoryIDs[sc.name] = category
		log.Info("Category created", zap.String("name", sc.name))
	}

	seedProducts := []struct {
		name        string
		description string
		price       float64
		stock       int
		category    string
	}{
		{"Coffee Mug", "Ceramic, 350ml", 19.99, 100, "Drinkware"},
		{"Water Bottle", "Insulated stainless steel, 750ml", 34.50, 60, "Drinkware"},
		{"Dot Grid Notebook", "A5, 120 pages", 12.00, 200, "Stationery"},
	}

	for _, sp := range seedProducts {
		count, err := productRepo.Count(ctx, shared.Filter{Search: sp.name})
		if err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		var categoryID *uuid.UUID
		if c, ok := categoryIDs[sp.category]; ok {
			id := c.ID
			categoryID = &id
		}

		product, err := catalog.NewProduct(
			sp.name,
			sp.description,
			valueobject.NewMoneyUSDFromFloat(sp.price),
			sp.stock,
			categoryID,
		)
		if err != nil {
			return err
		}
		if err := productRepo.Save(ctx, product); err != nil {
			return err
		}
		log.Info("Product created", zap.String("name", sp.name))
	}

	return nil
}

func printUsage() {
	fmt.Println("Usage: migrate [flags] <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  up      Create or update the database schema")
	fmt.Println("  seed    Insert the admin account and demo catalog")
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
}
