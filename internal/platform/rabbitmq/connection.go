package rabbitmq

import (
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Connect dials url, opens a channel and declares exchange as a durable topic exchange.
func Connect(url, exchange string) (*amqp.Connection, *amqp.Channel, error) {
	if url == "" {
		return nil, nil, fmt.Errorf("amqp url is required")
	}

	conn, err := amqp.DialConfig(url, amqp.Config{
		Locale: "en_US",
		Dial:   amqp.DefaultDial(10 * time.Second),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return conn, ch, nil
}
