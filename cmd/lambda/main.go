// Package main is the entry point for the example Lambda function hosting
// a filter-dispatched web application inside the container.
package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/strutsgo/lambda-container/internal/container"
	"github.com/strutsgo/lambda-container/internal/dispatch"
	"github.com/strutsgo/lambda-container/internal/filterchain"
	"github.com/strutsgo/lambda-container/internal/warmup"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck
	log := logger.Sugar()

	adapter := dispatch.New(func() (filterchain.Filter, error) {
		return filterchain.Wrap(newApp()), nil
	}, dispatch.WithLogger(log))

	// PAYLOAD_FORMAT selects the API Gateway integration payload shape;
	// the default matches REST API proxy integrations.
	switch os.Getenv("PAYLOAD_FORMAT") {
	case "2.0":
		c := container.NewHTTPAPIV2Container(adapter, container.WithLogger(log))
		lambda.Start(withWarmup(log, func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var event events.APIGatewayV2HTTPRequest
			if err := json.Unmarshal(raw, &event); err != nil {
				return nil, err
			}
			return c.Proxy(ctx, event)
		}))
	default:
		c := container.NewProxyContainer(adapter, container.WithLogger(log))
		lambda.Start(withWarmup(log, func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var event events.APIGatewayProxyRequest
			if err := json.Unmarshal(raw, &event); err != nil {
				return nil, err
			}
			return c.Proxy(ctx, event)
		}))
	}
}

// withWarmup short-circuits keep-warm events before any event translation.
func withWarmup(log *zap.SugaredLogger, next func(context.Context, json.RawMessage) (interface{}, error)) func(context.Context, json.RawMessage) (interface{}, error) {
	return func(ctx context.Context, event json.RawMessage) (interface{}, error) {
		if w, ok := warmup.Detect(event); ok {
			return warmup.Handle(ctx, w, log)
		}
		return next(ctx, event)
	}
}
