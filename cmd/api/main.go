package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-storefront-orders/internal/auth"
	"github.com/ariefcatur/go-storefront-orders/internal/cart"
	"github.com/ariefcatur/go-storefront-orders/internal/catalog"
	"github.com/ariefcatur/go-storefront-orders/internal/config"
	"github.com/ariefcatur/go-storefront-orders/internal/httpx"
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
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.MigrateOnStart {
		if err := postgres.Migrate(cfg.PostgresDSN); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, 1024)
	prod.Start(ctx)

	// Core services
	products := catalog.NewRepo(db)
	rates := &tax.Resolver{Source: &tax.Repo{DB: db}}
	orderSvc := &orders.Service{
		Store:       &orders.Repo{DB: db},
		Events:      orders.KafkaPublisher{Producer: prod},
		Cache:       &redisx.StatusCache{RDB: rdb},
		ServiceName: cfg.ServiceName,
	}
	invoices := &invoice.Generator{
		Orders: orderSvc,
		Rates:  rates,
		Policy: invoice.Policy{FreeThreshold: cfg.Shipping.FreeThreshold, FlatFee: cfg.Shipping.FlatFee},
		Prefix: cfg.InvoicePrefix,
	}

	router := httpx.NewAPI(auth.NewVerifier(cfg.JWTSecret),
		&httpx.CartHandler{Service: &cart.Service{Store: &cart.Repo{DB: db}, Products: products}},
		&httpx.OrdersHandler{
			Service:  orderSvc,
			Invoices: invoices,
			Seller:   invoice.Seller(cfg.Seller),
			Idem:     &redisx.CheckoutKeys{RDB: rdb},
		},
		&httpx.ProductsHandler{Catalog: products, Tax: rates},
		&httpx.TaxHandler{Admin: &tax.Admin{Store: &tax.Repo{DB: db}}},
	)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // stop intake, flush the inbox
	prod.WaitClosed() // writer closed
}
