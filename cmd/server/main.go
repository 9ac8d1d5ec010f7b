package main

import (
	"context"
	"log"
	"time"

	"github.com/mixtugu/ARization/internal/convert"
	"github.com/mixtugu/ARization/internal/env"
	"github.com/mixtugu/ARization/internal/handlers"
	"github.com/mixtugu/ARization/internal/ingest"
	"github.com/mixtugu/ARization/internal/resolve"
	"github.com/mixtugu/ARization/internal/server"
	"github.com/mixtugu/ARization/internal/storage"
	"github.com/mixtugu/ARization/pkg/graceful"
)

const shutdownGrace = 10 * time.Second

func main() {
	env.Load()
	ctx, cancel := graceful.Context(context.Background())
	defer cancel()

	bucket := env.GetDefault("MODELS_BUCKET_NAME", "models")
	origin := env.MustGet("PUBLIC_ORIGIN")

	store, err := storage.NewS3Store(bucket)
	if err != nil {
		log.Fatalf("Failed to create object store: %v", err)
	}
	if err := store.EnsureBucket(ctx, ""); err != nil {
		log.Fatalf("Failed to ensure bucket %q: %v", bucket, err)
	}

	converter := buildConverter()
	coordinator := ingest.NewCoordinator(store, converter, origin)
	resolver := resolve.NewResolver(store)

	srv := server.New(env.GetDefault("HTTP_ADDR", ":8080"),
		handlers.NewHealthHandler(),
		handlers.NewUploadHandler(coordinator),
		handlers.NewViewHandler(resolver),
		handlers.NewConvertHandler(store, converter, bucket),
		handlers.NewAdminHandler(store),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Println("Shutdown signal received, draining requests.")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	case err := <-errCh:
		log.Fatalf("HTTP server failed: %v", err)
	}
	log.Println("Main method finished, application exiting.")
}

// buildConverter picks the usdz strategy from the environment: the
// built-in converter by default, or an external tool when
// CONVERTER=exec.
func buildConverter() convert.Converter {
	if env.GetDefault("CONVERTER", "native") != "exec" {
		return convert.NewNative()
	}

	tool := env.MustGet("CONVERTER_CMD")
	timeout := convert.DefaultExecTimeout
	if raw := env.GetDefault("CONVERT_TIMEOUT", ""); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("Invalid CONVERT_TIMEOUT %q: %v", raw, err)
		}
		timeout = parsed
	}
	return convert.NewExec(tool, timeout)
}
