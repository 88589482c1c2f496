// Command seed carga categorías e items de ejemplo.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/Lelo88/inventory-app/internal/categories"
	"github.com/Lelo88/inventory-app/internal/config"
	"github.com/Lelo88/inventory-app/internal/db"
	"github.com/Lelo88/inventory-app/internal/items"
	"github.com/Lelo88/inventory-app/internal/validation"
)

// CategoryCreator crea una categoría o devuelve la existente con el mismo nombre.
type CategoryCreator interface {
	Create(ctx context.Context, input categories.CategoryInput) (categories.Category, validation.Errors, error)
}

// ItemInserter persiste un item sin pasar por el formulario.
type ItemInserter interface {
	Insert(ctx context.Context, record items.Item) (items.Item, error)
}

type sampleItem struct {
	name        string
	description string
	price       string
	stock       int
	categories  []string
}

var sampleCategories = []string{"Clothing", "Electronics", "Jewelry"}

var sampleItems = []sampleItem{
	{
		name:        "Fjallraven - Foldsack No. 1 Backpack, Fits 15 Laptops",
		description: "Your perfect pack for everyday use and walks in the forest. Stash your laptop (up to 15 inches) in the padded sleeve, your everyday",
		price:       "109.95",
		stock:       5,
		categories:  []string{"Clothing"},
	},
	{
		name:        "Mens Cotton Jacket",
		description: "Great outerwear jackets for Spring/Autumn/Winter, suitable for many occasions, such as working, hiking, camping, mountain/rock climbing, cycling, traveling or other outdoors.",
		price:       "55.99",
		stock:       8,
		categories:  []string{"Clothing"},
	},
	{
		name:        "John Hardy Women's Legends Naga Gold & Silver Dragon Station Chain Bracelet",
		description: "From our Legends Collection, the Naga was inspired by the mythical water dragon that protects the ocean's pearl. Wear facing inward to be bestowed with love and abundance, or outward for protection.",
		price:       "695",
		stock:       3,
		categories:  []string{"Jewelry"},
	},
	{
		name:        "WD 2TB Elements Portable External Hard Drive - USB 3.0",
		description: "USB 3.0 and USB 2.0 Compatibility Fast data transfers Improve PC Performance High Capacity; Formatted NTFS for Windows 10, Windows 8.1, Windows 7",
		price:       "64",
		stock:       23,
		categories:  []string{"Electronics"},
	},
	{
		name:        "Acer SB220Q bi 21.5 inches Full HD (1920 x 1080) IPS Ultra-Thin",
		description: "21.5 inches Full HD (1920 x 1080) widescreen IPS display and Radeon FreeSync technology. Refresh rate 75Hz using HDMI port. Zero-frame design, ultra-thin, 4ms response time.",
		price:       "599",
		stock:       2,
		categories:  []string{"Electronics"},
	},
	{
		name:        "Test Item 1",
		description: "Summary of test item 1",
		price:       "20",
		stock:       242,
		categories:  []string{"Clothing", "Electronics"},
	},
	{
		name:        "Test Item 2",
		description: "Summary of test item 2",
		price:       "50",
		stock:       50,
	},
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, output io.Writer) error {
	flags := flag.NewFlagSet("seed", flag.ContinueOnError)
	flags.SetOutput(output)
	reset := flags.Bool("reset", false, "delete every item and category before seeding")
	timeout := flags.Duration("timeout", 30*time.Second, "overall timeout")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(output, &slog.HandlerOptions{Level: cfg.LogLevel}))

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if *reset {
		if err := truncate(ctx, pool); err != nil {
			return err
		}
		logger.Info("tables truncated")
	}

	return seed(ctx, logger,
		categories.NewService(categories.NewRepository(pool)),
		items.NewRepository(pool),
	)
}

func truncate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, `TRUNCATE items, categories`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}
	return nil
}

// seed crea las categorías (en paralelo) y después los items que las referencian.
// Crear categorías es idempotente por nombre; los items se insertan siempre.
func seed(ctx context.Context, logger *slog.Logger, creator CategoryCreator, inserter ItemInserter) error {
	ids := make([]string, len(sampleCategories))

	group, groupCtx := errgroup.WithContext(ctx)
	for index, name := range sampleCategories {
		group.Go(func() error {
			category, errs, err := creator.Create(groupCtx, categories.CategoryInput{Name: name})
			if err != nil {
				return fmt.Errorf("create category %q: %w", name, err)
			}
			if len(errs) > 0 {
				return fmt.Errorf("create category %q: %s", name, errs[0].Message)
			}
			ids[index] = category.ID
			logger.Info("category added", "name", category.Name, "id", category.ID)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	byName := make(map[string]string, len(sampleCategories))
	for index, name := range sampleCategories {
		byName[name] = ids[index]
	}

	group, groupCtx = errgroup.WithContext(ctx)
	for _, sample := range sampleItems {
		group.Go(func() error {
			record := items.Item{
				Name:        sample.name,
				Description: sample.description,
				Price:       decimal.RequireFromString(sample.price),
				Stock:       sample.stock,
				CategoryIDs: []string{},
			}
			for _, name := range sample.categories {
				record.CategoryIDs = append(record.CategoryIDs, byName[name])
			}

			item, err := inserter.Insert(groupCtx, record)
			if err != nil {
				return fmt.Errorf("insert item %q: %w", sample.name, err)
			}
			logger.Info("item added", "name", item.Name, "id", item.ID)
			return nil
		})
	}
	return group.Wait()
}
