// Package main is the entry point for the translation Lambda function.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/Taichi-iskw/lingopad/internal/app"
	"github.com/Taichi-iskw/lingopad/internal/config"
	"github.com/Taichi-iskw/lingopad/internal/handler"
	"github.com/Taichi-iskw/lingopad/internal/service/history"
)

var (
	selfInvoker = &lambdaInvoker{}

	initOnce sync.Once
	h        *handler.Handler
	initErr  error
)

func main() {
	lambda.Start(handleRequest)
}

func handleRequest(ctx context.Context, event json.RawMessage) (interface{}, error) {
	// Warmup detection comes first so scheduled pings never touch a provider
	if warmup, ok := IsWarmupEvent(event); ok {
		return HandleWarmup(ctx, warmup, selfInvoker)
	}

	var req handler.Request
	if err := json.Unmarshal(event, &req); err != nil {
		return nil, fmt.Errorf("invalid request payload: %w", err)
	}

	initOnce.Do(func() { h, initErr = newHandler(context.Background()) })
	if initErr != nil {
		return nil, initErr
	}
	return h.Handle(ctx, req)
}

// newHandler builds the handler once per container. The history store is optional.
func newHandler(ctx context.Context) (*handler.Handler, error) {
	cfg := config.FromEnv()
	log := app.NewLogger(cfg)

	var hist history.Service
	if cfg.HasDatabase() {
		var err error
		// containers are reused until frozen, so the connection lives as long as the process
		hist, _, err = app.NewHistory(ctx, cfg, app.StoreOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to open translation store: %w", err)
		}
	} else {
		log.Info("DATABASE_URL not set, translations will not be saved")
	}

	return handler.New(app.NewOrchestrator(cfg, log), hist, log.WithField("component", "lambda")), nil
}
