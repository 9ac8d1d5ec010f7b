package main

import (
	"context"
	"log"

	"github.com/mixtugu/ARization/internal/convert"
	"github.com/mixtugu/ARization/internal/env"
	"github.com/mixtugu/ARization/internal/keys"
	"github.com/mixtugu/ARization/internal/service"
	"github.com/mixtugu/ARization/internal/storage"
	"github.com/mixtugu/ARization/pkg/graceful"
	"github.com/mixtugu/ARization/pkg/kafkaclient"
)

// The worker consumes MinIO bucket-notification events and derives
// the usdz sibling for every convertible upload, so conversion runs
// off the upload request path.
func main() {
	env.Load()
	ctx, cancel := graceful.Context(context.Background())
	defer cancel()

	kafkaBroker := env.MustGet("KAFKA_BROKER")
	kafkaTopic := env.MustGet("KAFKA_TOPIC")
	kafkaGroupID := env.MustGet("KAFKA_GROUP_ID")

	log.Printf("Connecting to Kafka broker: %s on topic: %s with group ID: %s", kafkaBroker, kafkaTopic, kafkaGroupID)

	consumer, err := kafkaclient.NewKafkaConsumer(kafkaTopic, kafkaGroupID, kafkaBroker)
	if err != nil {
		log.Fatalf("Failed to create kafka consumer %v", err)
	}

	bucket := env.GetDefault("MODELS_BUCKET_NAME", "models")
	store, err := storage.NewS3Store(bucket)
	if err != nil {
		log.Fatal(err)
	}

	converter := convert.NewNative()

	consumer.StartConsuming(ctx)
	iterator := service.NewIterator(consumer, func(ctx context.Context, _, key string) ([]byte, error) {
		return store.Get(ctx, key)
	})
	for obj := range iterator.Objects(ctx) {
		format := keys.FormatOf(obj.Key)
		if !keys.Convertible(format) {
			continue
		}

		usdzBytes, err := converter.Convert(ctx, obj.Data, format)
		if err != nil {
			log.Printf("Conversion of %q failed: %v", obj.Key, err)
			continue
		}

		derivedKey := keys.Derived(obj.Key)
		if err := store.Put(ctx, derivedKey, usdzBytes, keys.ContentType(keys.USDZ), true); err != nil {
			log.Printf("Storing %q failed: %v", derivedKey, err)
			continue
		}
		log.Printf("Derived %q from %q", derivedKey, obj.Key)
	}

	consumer.Stop()
	log.Println("Main method finished, application exiting.")
}
