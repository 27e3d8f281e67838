package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for wallet lifecycle spans.
const (
	AttrWallet    = "wallet.name"
	AttrWalletDir = "wallet.dir"
	AttrPath      = "wallet.path"
	AttrSalvage   = "wallet.salvage"
	AttrCount     = "wallet.count"
	AttrOperation = "wallet.operation"
)

// StartSpan starts a span for a wallet lifecycle operation.
// Returns the derived context and a function that ends the span, recording
// the error passed to it (if any).
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := Tracer().Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// String returns a string attribute.
func String(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// Int returns an int attribute.
func Int(key string, value int) attribute.KeyValue {
	return attribute.Int(key, value)
}

// Bool returns a bool attribute.
func Bool(key string, value bool) attribute.KeyValue {
	return attribute.Bool(key, value)
}
