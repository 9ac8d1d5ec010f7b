// Package kafkaclient wraps a segmentio/kafka-go reader in a
// channel-based consumer with manual offset commits. The conversion
// worker uses it to receive MinIO bucket-notification events.
package kafkaclient

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaReader defines the interface for a Kafka message reader.
// This allows for easy mocking in unit tests.
type KafkaReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConsumer manages the Kafka consumer and its message loop.
// Offsets are committed explicitly by the caller once an event has
// actually been processed, so an uncommitted conversion is retried
// after a restart.
type KafkaConsumer struct {
	reader KafkaReader
	// a channel to signal a graceful shutdown.
	doneChan chan struct{}
	// a wait group to ensure all goroutines have exited before the program terminates.
	wg sync.WaitGroup
	// a channel holding received messages for downstream consumption.
	messageChan chan kafka.Message
}

// NewKafkaConsumer creates a consumer for the given topic.
func NewKafkaConsumer(topic, groupID, broker string) (*KafkaConsumer, error) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{broker},
		Topic:   topic,
		GroupID: groupID,
		// Disable auto-commit to manually control offset committing.
		CommitInterval: 0,
		// Read messages in batches of at least 10KB.
		MinBytes: 10e3,
		// Read messages in batches of at most 10MB.
		MaxBytes: 10e6,
	})
	return &KafkaConsumer{
		reader:      reader,
		doneChan:    make(chan struct{}),
		messageChan: make(chan kafka.Message),
	}, nil
}

// Messages returns the channel the consumer loop delivers into. It is
// closed when the loop stops.
func (kc *KafkaConsumer) Messages() <-chan kafka.Message {
	return kc.messageChan
}

// CommitOffset acknowledges a processed message.
func (kc *KafkaConsumer) CommitOffset(ctx context.Context, msg kafka.Message) error {
	log.Printf("Committing offset for topic=%s, partition=%d, offset=%d", msg.Topic, msg.Partition, msg.Offset)
	return kc.reader.CommitMessages(ctx, msg)
}

// StartConsuming begins the Kafka message consumption loop in a separate goroutine.
func (kc *KafkaConsumer) StartConsuming(ctx context.Context) {
	kc.wg.Add(1)
	go func() {
		defer kc.wg.Done()
		defer close(kc.messageChan)

		log.Println("Starting Kafka consumer loop...")

		for {
			select {
			case <-ctx.Done():
				log.Println("Context canceled, stopping consumer loop.")
				return
			case <-kc.doneChan:
				log.Println("Shutdown signal received, stopping consumer loop.")
				return
			default:
				msg, err := kc.reader.ReadMessage(ctx)
				if err != nil {
					log.Printf("Error reading message: %v", err)
					if err.Error() == "kafka: reader closed" {
						return
					}
					// Introduce a backoff to prevent a tight error loop.
					time.Sleep(1 * time.Second)
					continue
				}

				select {
				case kc.messageChan <- msg:
					log.Printf("Message received: topic=%s, partition=%d, offset=%d\n", msg.Topic, msg.Partition, msg.Offset)
				case <-ctx.Done():
					log.Println("Context canceled, stopping consumer before sending message.")
					return
				case <-kc.doneChan:
					log.Println("Shutdown signal received, stopping consumer before sending message.")
					return
				}
			}
		}
	}()
}

// Stop gracefully shuts down the Kafka consumer.
func (kc *KafkaConsumer) Stop() {
	log.Println("Attempting to stop Kafka consumer...")
	close(kc.doneChan)
	kc.wg.Wait()
	if err := kc.reader.Close(); err != nil {
		log.Printf("Failed to close Kafka reader: %v", err)
	}
	log.Println("Kafka consumer stopped gracefully.")
}
