package testutils

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/srg/blescout/internal/device"
	"github.com/srg/blescout/internal/devicefactory"
)

// MockBindingSuite provides a reusable test suite with a scriptable native
// BLE binding. It follows testify/suite conventions: SetupSuite wires the
// helper and logger once, SetupTest installs a fresh MockBinding behind the
// devicefactory seam, and t.Cleanup restores the original factory.
//
// Basic usage:
//
//	type ControllerSuite struct {
//	    testutils.MockBindingSuite
//	}
//
//	func TestControllerSuite(t *testing.T) {
//	    suite.Run(t, new(ControllerSuite))
//	}
//
// Tests script the binding through s.Binding (snapshots, events, injected
// failures) before exercising the controller.
type MockBindingSuite struct {
	suite.Suite

	Helper *TestHelper    // Test helper with logging and assertions
	Logger *logrus.Logger // Structured logger for test output

	// Binding is the scriptable mock installed for the current test.
	Binding *MockBinding

	// OriginalBindingFactory backs up the production factory for
	// restoration.
	OriginalBindingFactory func(*logrus.Logger) device.Binding

	TestTimeout time.Duration // Default timeout for async assertions
}

// SetupSuite initializes shared suite state. Called once before all tests.
func (s *MockBindingSuite) SetupSuite() {
	s.Helper = NewTestHelper(s.T())
	s.Logger = s.Helper.Logger
	s.TestTimeout = 5 * time.Second

	s.OriginalBindingFactory = devicefactory.BindingFactory
	s.T().Cleanup(func() {
		if s.OriginalBindingFactory != nil {
			devicefactory.BindingFactory = s.OriginalBindingFactory
		}
	})
}

// SetupTest installs a fresh mock binding before each test.
func (s *MockBindingSuite) SetupTest() {
	s.Binding = NewMockBinding()
	devicefactory.BindingFactory = func(*logrus.Logger) device.Binding {
		return s.Binding
	}
}

// TearDownTest restores the binding factory after each test.
func (s *MockBindingSuite) TearDownTest() {
	if s.OriginalBindingFactory != nil {
		devicefactory.BindingFactory = s.OriginalBindingFactory
	}
}

// Eventually asserts that condition holds within the suite timeout, polling
// every 10ms.
func (s *MockBindingSuite) Eventually(condition func() bool, msgAndArgs ...interface{}) bool {
	return s.Suite.Eventually(condition, s.TestTimeout, 10*time.Millisecond, msgAndArgs...)
}
