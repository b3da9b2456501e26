package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Antonio-Andrianina/TD-Ingredients/internal/domain"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "resto_audit"
	ExchangeType = "topic"
)

// SetupConn dials RabbitMQ and declares the audit exchange.
func SetupConn(url string) (*amqp.Connection, *amqp.Channel, error) {
	var conn *amqp.Connection
	var err error

	// Simple retry loop for container startup ordering.
	for i := 0; i < 5; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		log.Printf("WARN: failed to connect to RabbitMQ (attempt %d): %v", i+1, err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		ExchangeName,
		ExchangeType,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("declare exchange: %w", err)
	}

	return conn, ch, nil
}

// Publisher emits committed orders and stock movements to the audit exchange.
// It is invoked only after the database transaction has committed.
type Publisher struct {
	ch *amqp.Channel
}

func NewPublisher(ch *amqp.Channel) *Publisher {
	return &Publisher{ch: ch}
}

type orderEvent struct {
	Reference    string           `json:"reference"`
	Type         string           `json:"type"`
	Status       string           `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
	Lines        []orderEventLine `json:"lines"`
	TotalExclTax float64          `json:"total_excl_tax"`
	TotalInclTax float64          `json:"total_incl_tax"`
}

type orderEventLine struct {
	DishID   string  `json:"dish_id"`
	DishName string  `json:"dish_name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

func (p *Publisher) OrderCommitted(ctx context.Context, order domain.Order) error {
	event := orderEvent{
		Reference:    order.Reference,
		Type:         string(order.Type),
		Status:       string(order.Status),
		CreatedAt:    order.CreatedAt,
		TotalExclTax: order.TotalExclTax(),
		TotalInclTax: order.TotalInclTax(),
	}
	for _, l := range order.Lines {
		event.Lines = append(event.Lines, orderEventLine{
			DishID:   l.DishID,
			DishName: l.DishName,
			Price:    l.UnitPrice,
			Quantity: l.Quantity,
		})
	}

	return p.publish(ctx, "orders.created", order.CreatedAt, event)
}

type movementEvent struct {
	ID           string    `json:"id"`
	IngredientID string    `json:"ingredient_id"`
	Quantity     float64   `json:"quantity"`
	Unit         string    `json:"unit"`
	Kind         string    `json:"kind"`
	CreatedAt    time.Time `json:"created_at"`
}

func (p *Publisher) MovementsAppended(ctx context.Context, movements []domain.StockMovement) error {
	for _, m := range movements {
		event := movementEvent{
			ID:           m.ID,
			IngredientID: m.IngredientID,
			Quantity:     m.Quantity,
			Unit:         string(m.Unit),
			Kind:         string(m.Kind),
			CreatedAt:    m.CreatedAt,
		}
		// Routing key: stock.<kind> (e.g. stock.out)
		key := fmt.Sprintf("stock.%s", strings.ToLower(string(m.Kind)))
		if err := p.publish(ctx, key, m.CreatedAt, event); err != nil {
			return err
		}
	}
	return nil
}

func (p *Publisher) publish(ctx context.Context, routingKey string, ts time.Time, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", routingKey, err)
	}

	return p.ch.PublishWithContext(ctx,
		ExchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			MessageId:   uuid.NewString(),
			Timestamp:   ts,
			Body:        body,
		},
	)
}
