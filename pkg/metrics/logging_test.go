package metrics

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

type testCodedError uint32

func (e testCodedError) Error() string { return "coded" }
func (e testCodedError) Code() uint32  { return uint32(e) }

func TestErrorCode(t *testing.T) {
	code, ok := ErrorCode(errors.Wrap(testCodedError(0x1771), "init"))
	assert.True(t, ok)
	assert.EqualValues(t, 0x1771, code)

	_, ok = ErrorCode(errors.New("plain"))
	assert.False(t, ok)

	_, ok = ErrorCode(nil)
	assert.False(t, ok)
}

func TestWithFields(t *testing.T) {
	message := withFields("instruction rejected", logrus.Fields{
		"method":        "UpdateMembers",
		logrus.ErrorKey: errors.Wrap(testCodedError(6004), "payer"),
	})
	assert.Equal(t, `message="instruction rejected", error="payer: coded", data={"error_code":6004,"method":"UpdateMembers"}`, message)

	message = withFields("ok", logrus.Fields{"method": "Initialize"})
	assert.Equal(t, `message="ok", error=<nil>, data={"method":"Initialize"}`, message)
}
