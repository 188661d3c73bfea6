package orders

import (
	"context"
	"strconv"

	kafkax "github.com/ariefcatur/go-storefront-orders/internal/kafka"
	"github.com/go-chi/chi/v5/middleware"
	kafkago "github.com/segmentio/kafka-go"
)

// KafkaPublisher sends envelopes through the async producer, keyed by order id.
type KafkaPublisher struct {
	Producer *kafkax.Producer
}

func (p KafkaPublisher) Publish(ctx context.Context, topic string, env Envelope) {
	if env.TraceID == "" {
		env.TraceID = middleware.GetReqID(ctx)
	}
	p.Producer.Publish(topic, PartitionKey(env.CorrelationID), kafkax.MustMarshal(env),
		kafkago.Header{Key: "x-event-type", Value: []byte(env.EventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte(strconv.Itoa(env.EventVersion))},
	)
}
