package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"ordergw/internal/apperr"
	"ordergw/internal/config"
	"ordergw/internal/service"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the store with demo customers and products",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		factory, closeStore, err := buildStorage(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		ctx := context.Background()
		customers := service.NewCustomers(factory)
		products := service.NewProducts(factory)

		log.Println(">> Seeding demo data...")

		demoCustomers := []struct{ name, email string }{
			{"Acme Corp", "billing@acme.example"},
			{"Foobar LLC", "ap@foobar.example"},
			{"Beta Testers", "beta@testers.example"},
		}
		for _, c := range demoCustomers {
			if _, err := customers.Create(ctx, c.name, c.email); err != nil {
				// re-running seed hits the unique email; skip quietly
				if errors.Is(err, apperr.Conflict(apperr.CodeEmailDup, "")) {
					continue
				}
				return fmt.Errorf("seed customer %q: %w", c.name, err)
			}
		}

		demoProducts := []struct {
			name  string
			price int64
		}{
			{"Pen", 100},
			{"Notebook", 450},
			{"Stapler", 1200},
		}
		for _, p := range demoProducts {
			if _, err := products.Create(ctx, p.name, p.price); err != nil {
				if errors.Is(err, apperr.Conflict(apperr.CodeNameDup, "")) {
					continue
				}
				return fmt.Errorf("seed product %q: %w", p.name, err)
			}
		}

		log.Println(">> Seed completed")
		return nil
	},
}
