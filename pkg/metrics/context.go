package metrics

import (
	"context"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// NewRelicContextKey is the context key holding the *newrelic.Application
// used by RecordEvent, RecordCount and RecordDuration.
type NewRelicContextKey struct{}

// StartTransaction attaches app to ctx and starts a New Relic transaction for
// name, so that TraceMethodCall segments nest under it. The returned function
// ends the transaction. A nil app returns ctx untouched.
func StartTransaction(ctx context.Context, app *newrelic.Application, name string) (context.Context, func()) {
	if app == nil {
		return ctx, func() {}
	}

	txn := app.StartTransaction(name)
	ctx = context.WithValue(ctx, NewRelicContextKey{}, app)
	ctx = newrelic.NewContext(ctx, txn)

	return ctx, txn.End
}
