package testutil

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// testLogLevelEnv overrides the trace level used by verbose test runs, for
// example MULTISIG_TEST_LOG_LEVEL=info.
const testLogLevelEnv = "MULTISIG_TEST_LOG_LEVEL"

func init() {
	var isVerbose bool
	for _, arg := range os.Args {
		if arg == "-test.v" || arg == "-test.v=true" {
			isVerbose = true
		}
	}

	level := logrus.TraceLevel
	if parsed, err := logrus.ParseLevel(strings.ToLower(os.Getenv(testLogLevelEnv))); err == nil {
		level = parsed
	}
	logrus.SetLevel(level)

	if !isVerbose {
		logrus.StandardLogger().Out = io.Discard
	}
}

// DisableLogging silences logrus until the returned func is called.
func DisableLogging() (reset func()) {
	originalLogOutput := logrus.StandardLogger().Out
	logrus.StandardLogger().Out = io.Discard
	return func() {
		logrus.StandardLogger().Out = originalLogOutput
	}
}
