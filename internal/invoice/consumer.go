package invoice

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ariefcatur/go-storefront-orders/internal/auth"
	kafkax "github.com/ariefcatur/go-storefront-orders/internal/kafka"
	"github.com/ariefcatur/go-storefront-orders/internal/orders"
	"github.com/ariefcatur/go-storefront-orders/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

// systemActor reads orders on behalf of the invoicer process.
var systemActor = auth.Actor{UserID: "invoicer", Role: auth.RoleAdmin}

// Consumer writes one PDF per placed order into Dir.
type Consumer struct {
	Generator   *Generator
	Redis       *redis.Client
	Seller      Seller
	Dir         string
	ServiceName string
}

// HandleOrderPlaced is installed as the Kafka handler for order.placed.
func (c *Consumer) HandleOrderPlaced(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		log.Printf("invoicer: skip undecodable message at offset %d: %v", m.Offset, err)
		return nil
	}
	if env.EventType != orders.EventOrderPlaced {
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, c.ServiceName, env.EventID)
	won, err := redisx.Claim(ctx, c.Redis, dkey, redisx.TTLDedup)
	if err != nil {
		return err
	}
	if !won {
		return nil
	}

	p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
	if err != nil {
		log.Printf("invoicer: event %s: %v", env.EventID, err)
		return nil
	}

	path, err := c.write(ctx, p.OrderID)
	if err != nil {
		// free the claim so the retried attempt can run
		if rerr := redisx.Release(ctx, c.Redis, dkey); rerr != nil {
			log.Printf("invoicer: release %s: %v", dkey, rerr)
		}
		return fmt.Errorf("invoice for order %s: %w", p.OrderID, err)
	}
	log.Printf("invoicer: wrote %s (trace=%s)", path, env.TraceID)
	return nil
}

func (c *Consumer) write(ctx context.Context, orderID string) (string, error) {
	inv, err := c.Generator.ForOrder(ctx, systemActor, orderID)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return "", err
	}

	f, err := os.CreateTemp(c.Dir, inv.Number+"-*.tmp")
	if err != nil {
		return "", err
	}
	defer os.Remove(f.Name())

	if err := RenderPDF(f, inv, c.Seller); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	path := filepath.Join(c.Dir, inv.Number+".pdf")
	return path, os.Rename(f.Name(), path)
}
