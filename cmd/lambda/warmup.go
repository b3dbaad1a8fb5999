// Package main contains the Lambda warmup handler for preventing cold starts.
// EventBridge schedules trigger this handler periodically to keep instances warm.
package main

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

const (
	// WarmupSource identifies warmup events
	WarmupSource = "warmup"

	// WarmupDelay keeps this instance busy long enough for the children to land elsewhere
	WarmupDelay = 75 * time.Millisecond
)

// WarmupEvent is the scheduled warmup payload
type WarmupEvent struct {
	Source      string `json:"source"`
	Concurrency int    `json:"concurrency"`
}

// WarmupResponse is the body returned by warmup invocations
type WarmupResponse struct {
	Status          string `json:"status"`
	InstancesWarmed int    `json:"instancesWarmed"`
}

// invoker sends one asynchronous invocation of this function
type invoker interface {
	Invoke(ctx context.Context, payload []byte) error
}

// IsWarmupEvent checks if the event is a warmup event
func IsWarmupEvent(event json.RawMessage) (*WarmupEvent, bool) {
	var eventMap map[string]interface{}
	if err := json.Unmarshal(event, &eventMap); err != nil {
		return nil, false
	}

	source, ok := eventMap["source"].(string)
	if !ok || source != WarmupSource {
		return nil, false
	}

	warmup := &WarmupEvent{Source: source}
	if concurrency, ok := eventMap["concurrency"].(float64); ok && concurrency > 0 {
		warmup.Concurrency = int(concurrency)
	}
	return warmup, true
}

// HandleWarmup answers a warmup event, fanning out to Concurrency more instances first
func HandleWarmup(ctx context.Context, warmup *WarmupEvent, inv invoker) (interface{}, error) {
	instancesWarmed := 1

	if warmup.Concurrency > 0 {
		if err := selfInvoke(ctx, inv, warmup.Concurrency); err == nil {
			instancesWarmed += warmup.Concurrency
		}
	}

	time.Sleep(WarmupDelay)

	return map[string]interface{}{
		"statusCode": 200,
		"body": WarmupResponse{
			Status:          "warm",
			InstancesWarmed: instancesWarmed,
		},
	}, nil
}

// selfInvoke sends count child warmup events in parallel and returns the first failure
func selfInvoke(ctx context.Context, inv invoker, count int) error {
	// children carry concurrency 0 so they never fan out again
	payload, err := json.Marshal(WarmupEvent{Source: WarmupSource, Concurrency: 0})
	if err != nil {
		return err
	}

	var (
		wg        sync.WaitGroup
		errMu     sync.Mutex
		invokeErr error
	)
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := inv.Invoke(ctx, payload); err != nil {
				errMu.Lock()
				if invokeErr == nil {
					invokeErr = err
				}
				errMu.Unlock()
			}
		}()
	}

	wg.Wait()
	return invokeErr
}

// lambdaInvoker invokes the running function through the Lambda API.
// The client is built on first use and reused by later warmups in the same container.
type lambdaInvoker struct {
	once   sync.Once
	client *lambdasdk.Client
	err    error
}

func (l *lambdaInvoker) Invoke(ctx context.Context, payload []byte) error {
	l.once.Do(func() {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			l.err = err
			return
		}
		l.client = lambdasdk.NewFromConfig(cfg)
	})
	if l.err != nil {
		return l.err
	}

	_, err := l.client.Invoke(ctx, &lambdasdk.InvokeInput{
		FunctionName:   aws.String(os.Getenv("AWS_LAMBDA_FUNCTION_NAME")),
		InvocationType: types.InvocationTypeEvent,
		Payload:        payload,
	})
	return err
}
