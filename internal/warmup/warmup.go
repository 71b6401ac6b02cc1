// Package warmup handles scheduled keep-warm events. CloudWatch triggers
// these periodically so execution environments stay initialized; they are
// detected before event translation and never reach the dispatch filter.
package warmup

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
	"go.uber.org/zap"
)

const (
	// Source identifies warmup events from CloudWatch
	Source = "warmup"

	// Delay ensures instances overlap to create true concurrency
	Delay = 75 * time.Millisecond
)

// Event represents the CloudWatch Event payload for warmup
type Event struct {
	Source      string `json:"source"`
	Concurrency int    `json:"concurrency"`
}

// Response is the reply returned for warmup invocations
type Response struct {
	Status          string `json:"status"`
	InstancesWarmed int    `json:"instancesWarmed"`
}

// Detect checks whether the raw invocation payload is a warmup event.
func Detect(event json.RawMessage) (*Event, bool) {
	var eventMap map[string]interface{}
	if err := json.Unmarshal(event, &eventMap); err != nil {
		return nil, false
	}

	source, ok := eventMap["source"].(string)
	if !ok || source != Source {
		return nil, false
	}

	w := &Event{Source: source}
	if concurrency, ok := eventMap["concurrency"].(float64); ok {
		w.Concurrency = int(concurrency)
	}
	return w, true
}

// Handle processes a warmup event and optionally self-invokes to maintain
// multiple warm instances.
func Handle(ctx context.Context, event *Event, log *zap.SugaredLogger) (*Response, error) {
	instancesWarmed := 1 // this instance counts as 1

	if event.Concurrency > 0 {
		if err := selfInvoke(ctx, event.Concurrency); err != nil {
			log.Warnw("warmup fan-out failed", "error", err)
		} else {
			instancesWarmed += event.Concurrency
		}
	}

	// Brief delay so concurrent instances overlap instead of reusing one
	time.Sleep(Delay)

	log.Debugw("warmup handled", "instances", instancesWarmed)
	return &Response{Status: "warm", InstancesWarmed: instancesWarmed}, nil
}

// selfInvoke invokes this Lambda function count times asynchronously to
// create additional warm instances.
func selfInvoke(ctx context.Context, count int) error {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return err
	}

	client := lambdasdk.NewFromConfig(cfg)
	functionName := os.Getenv("AWS_LAMBDA_FUNCTION_NAME")

	// Child invocations carry concurrency=0 to prevent recursive fan-out
	payload, err := json.Marshal(Event{Source: Source, Concurrency: 0})
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	var invokeErr error
	var errMu sync.Mutex

	for i := 0; i < count; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := client.Invoke(ctx, &lambdasdk.InvokeInput{
				FunctionName:   aws.String(functionName),
				InvocationType: types.InvocationTypeEvent,
				Payload:        payload,
			})

			if err != nil {
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
