// Package rabbitmq forwards task lifecycle events to a durable topic exchange,
// using the event type as the routing key.
package rabbitmq
