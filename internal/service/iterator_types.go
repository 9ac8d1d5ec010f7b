package service

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// MessageIterator defines the contract for consuming messages from a
// Kafka topic. It abstracts away the underlying consumer so the
// Iterator can be tested against a mock source.
//
// Implementations are responsible for the lifecycle of the consumer
// connection.
type MessageIterator interface {
	// Messages returns a receive-only channel of Kafka messages. The
	// channel is closed by the implementation when the consumer is
	// stopped or the underlying source is exhausted.
	Messages() <-chan kafka.Message

	// CommitOffset acknowledges that a message has been successfully
	// processed. An error is returned if the commit fails.
	CommitOffset(ctx context.Context, msg kafka.Message) error
}

// LoaderFunc loads and decodes an object of type T from the object
// store, given the bucket and key carried by a notification event.
// Implementations should be side-effect-free (read-only) and must
// honor the provided context for cancellation and timeouts.
type LoaderFunc[T any] func(ctx context.Context, bucket, key string) (T, error)

// FetchedObject pairs an object loaded from the store with the
// location the triggering event named.
type FetchedObject[T any] struct {
	// Bucket and Key locate the object the event referred to.
	Bucket string
	Key    string
	// Data is the loaded object payload.
	Data T
}
