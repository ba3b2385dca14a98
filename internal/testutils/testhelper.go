package testutils

import (
	"testing"

	"github.com/sirupsen/logrus"
)

type TestHelper struct {
	T      *testing.T
	Logger *logrus.Logger
}

// NewTestHelper creates a test helper with a debug-level logger so test
// output tracks execution flow.
func NewTestHelper(t *testing.T) *TestHelper {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)
	return &TestHelper{
		T:      t,
		Logger: logger,
	}
}

// CreateMockRecord is shorthand for a builder seeded with the common
// name/id/rssi triple.
func CreateMockRecord(name, id string, rssi int) *RecordBuilder {
	return NewRecordBuilder().WithName(name).WithID(id).WithRSSI(rssi)
}
