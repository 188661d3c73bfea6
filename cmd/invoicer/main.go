package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/go-storefront-orders/internal/config"
	"github.com/ariefcatur/go-storefront-orders/internal/invoice"
	kafkax "github.com/ariefcatur/go-storefront-orders/internal/kafka"
	"github.com/ariefcatur/go-storefront-orders/internal/orders"
	"github.com/ariefcatur/go-storefront-orders/internal/postgres"
	"github.com/ariefcatur/go-storefront-orders/internal/redisx"
	"github.com/ariefcatur/go-storefront-orders/internal/tax"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	consumer := &invoice.Consumer{
		Generator: &invoice.Generator{
			Orders: &orders.Service{Store: &orders.Repo{DB: db}},
			Rates:  &tax.Resolver{Source: &tax.Repo{DB: db}},
			Policy: invoice.Policy{FreeThreshold: cfg.Shipping.FreeThreshold, FlatFee: cfg.Shipping.FlatFee},
			Prefix: cfg.InvoicePrefix,
		},
		Redis:       rdb,
		Seller:      invoice.Seller(cfg.Seller),
		Dir:         cfg.InvoiceDir,
		ServiceName: cfg.InvoicerGroup,
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.InvoicerGroup, orders.TopicOrderPlaced, cfg.InvoicerWorkers)
	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Printf("invoicer started: group=%s topic=%s workers=%d dir=%s",
			cfg.InvoicerGroup, orders.TopicOrderPlaced, cfg.InvoicerWorkers, cfg.InvoiceDir)
		if err := cons.Start(ctx, consumer.HandleOrderPlaced); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Println("shutting down consumer...")
	cancel()
	<-done
}
