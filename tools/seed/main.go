// Command seed populates a development database with a presale campaign and
// a batch of authorized orders, so the reconciler has something to chew on
// locally.
//
// Usage:
//
//	go run ./tools/seed -config config/config.yaml -orders 25 -target 50
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/vinylfunders/vf-presale-engine/internal/config"
	"github.com/vinylfunders/vf-presale-engine/internal/store"
	"github.com/vinylfunders/vf-presale-engine/internal/store/schema"
)

func main() {
	configFile := flag.String("config", "", "Path to configuration file")
	envPath := flag.String("env", "", "Path to the directory containing .env files")
	title := flag.String("title", "Test Pressing LP", "Campaign title")
	target := flag.Int("target", 50, "Target order count for the pressing")
	orders := flag.Int("orders", 25, "Number of authorized orders to create")
	price := flag.String("price", "24.99", "Order price")
	days := flag.Int("days", 30, "Days until the presale deadline")
	flag.Parse()

	config.ChdirRepoRoot()

	cfg, err := config.LoadReconcilerConfig(*configFile, *envPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	db, err := gorm.Open(pgdriver.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to database: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	st := store.NewPGStore(db)

	campaign := &schema.Campaign{
		ID:           uuid.New(),
		ArtistID:     uuid.New(),
		Title:        *title,
		ArtistEmail:  fmt.Sprintf("artist+%d@vinylfunders.test", time.Now().Unix()),
		TargetOrders: *target,
		EndDate:      time.Now().Add(time.Duration(*days) * 24 * time.Hour),
	}
	if err := st.CreateCampaign(ctx, campaign); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create campaign: %v\n", err)
		os.Exit(1)
	}
	if _, err := st.CreatePresaleThreshold(ctx, campaign.ID); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create threshold: %v\n", err)
		os.Exit(1)
	}

	orderPrice, err := decimal.NewFromString(*price)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid price %q: %v\n", *price, err)
		os.Exit(1)
	}

	for i := 0; i < *orders; i++ {
		order := &schema.Order{
			ID:               uuid.New(),
			CampaignID:       campaign.ID,
			BuyerEmail:       fmt.Sprintf("buyer%d@vinylfunders.test", i+1),
			Quantity:         1,
			TotalPrice:       orderPrice,
			Presale:          true,
			PaymentStatus:    schema.PaymentStatusPending,
			PaymentIntentRef: fmt.Sprintf("pi_seed_%s_%d", campaign.ID.String()[:8], i+1),
		}
		if err := st.RecordPresaleOrder(ctx, order); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create order %d: %v\n", i+1, err)
			os.Exit(1)
		}
	}

	fmt.Printf("Seeded campaign %s (%q)\n", campaign.ID, *title)
	fmt.Printf("  target orders: %d\n", *target)
	fmt.Printf("  authorized orders: %d\n", *orders)
	fmt.Printf("  deadline: %s\n", campaign.EndDate.Format(time.RFC3339))
}
