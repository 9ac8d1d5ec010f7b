// Package service provides the event-driven feed for the conversion
// worker: an Iterator that consumes MinIO bucket-notification events
// from a message source (Kafka via pkg/kafkaclient) and loads each
// referenced asset from the object store through a pluggable
// LoaderFunc.
package service

import (
	"context"
	"encoding/json"
	"log"
	"net/url"

	"github.com/minio/minio-go/v7/pkg/notification"
)

// Iterator consumes messages from a MessageIterator, interprets each
// message as a MinIO/S3 notification, loads the referenced object via
// LoaderFunc, and yields FetchedObject items on a channel. It is
// generic over the loaded item type T.
//
// The Iterator does not manage the lifecycle of the underlying message
// source; callers start/stop their consumer outside and pass in an
// implementation of MessageIterator.
type Iterator[T any] struct {
	msgIterator MessageIterator
	loader      LoaderFunc[T]
}

// NewIterator constructs an Iterator for the provided message source
// and object loader.
func NewIterator[T any](iterator MessageIterator, loader LoaderFunc[T]) *Iterator[T] {
	return &Iterator[T]{
		msgIterator: iterator,
		loader:      loader,
	}
}

// Objects starts a goroutine that:
//  1. Receives messages from the underlying MessageIterator
//  2. Deserializes each message as a MinIO notification
//  3. Loads each referenced object using the provided LoaderFunc
//  4. Emits a FetchedObject[T] on the returned channel
//  5. Commits the message offset after all records were handled
//
// Malformed events and load failures are logged and skipped so one
// bad upload cannot stall the conversion feed. The output channel is
// closed when the underlying Messages() channel is closed.
func (it *Iterator[T]) Objects(ctx context.Context) <-chan *FetchedObject[T] {
	out := make(chan *FetchedObject[T])
	go func() {
		defer close(out)

		for msg := range it.msgIterator.Messages() {
			var event notification.Info
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Printf("Error unmarshalling notification event: %v", err)
				continue
			}

			for _, record := range event.Records {
				s3 := record.S3
				// Object keys arrive URL-encoded in bucket notifications.
				objectKey, err := url.QueryUnescape(s3.Object.Key)
				if err != nil {
					log.Printf("Error decoding object key %q: %v", s3.Object.Key, err)
					continue
				}

				data, err := it.loader(ctx, s3.Bucket.Name, objectKey)
				if err != nil {
					log.Printf("Error loading object %q: %v", objectKey, err)
					continue
				}

				out <- &FetchedObject[T]{
					Bucket: s3.Bucket.Name,
					Key:    objectKey,
					Data:   data,
				}
			}

			if err := it.msgIterator.CommitOffset(ctx, msg); err != nil {
				log.Printf("Failed to commit offset: %v", err)
			}
		}
	}()
	return out
}
