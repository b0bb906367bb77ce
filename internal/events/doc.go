// Package events carries task lifecycle notifications from the service layer to
// whoever listens: an in-process emitter fans events out to registered handlers,
// one of which forwards them to the message broker.
package events
