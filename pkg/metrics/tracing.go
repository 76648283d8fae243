package metrics

import (
	"context"
	"fmt"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
)

// codedError is satisfied by program and system errors that carry a numeric
// code, such as multisig.MultisigError.
type codedError interface {
	error
	Code() uint32
}

// TraceMethodCall traces a method call with a given struct/package and method names
func TraceMethodCall(ctx context.Context, structOrPackageName, methodName string) *MethodTracer {
	txn := newrelic.FromContext(ctx)
	if txn == nil {
		return nil
	}

	seg := txn.StartSegment(fmt.Sprintf("%s %s", structOrPackageName, methodName))

	return &MethodTracer{
		txn: txn,
		seg: seg,
	}
}

// MethodTracer collects analytics for a given method call within an existing
// trace.
type MethodTracer struct {
	txn *newrelic.Transaction
	seg *newrelic.Segment
}

// AddAttribute adds a key-value pair metadata to the method trace
func (t *MethodTracer) AddAttribute(key string, value interface{}) {
	if t == nil {
		return
	}

	t.seg.AddAttribute(key, value)
}

// OnError observes an error within a method trace. Coded errors also tag the
// segment with error_code.
func (t *MethodTracer) OnError(err error) {
	if t == nil || err == nil {
		return
	}

	if code, ok := ErrorCode(err); ok {
		t.seg.AddAttribute("error_code", code)
	}
	t.txn.NoticeError(err)
}

// End completes the trace for the method call.
func (t *MethodTracer) End() {
	if t == nil {
		return
	}

	t.seg.End()
}

// ErrorCode returns the code of the first coded error in err's chain.
func ErrorCode(err error) (uint32, bool) {
	var coded codedError
	if errors.As(err, &coded) {
		return coded.Code(), true
	}
	return 0, false
}
