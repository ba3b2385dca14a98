package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/srg/blescout/internal/device"
)

type AdapterTestSuite struct {
	CommandTestSuite
}

func TestAdapterSuite(t *testing.T) {
	suite.Run(t, new(AdapterTestSuite))
}

func (suite *AdapterTestSuite) SetupTest() {
	suite.CommandTestSuite.SetupTest()
	adapterEnable = false
}

func (suite *AdapterTestSuite) TestAdapterCmd_ShowsEnabledState() {
	root := suite.NewRootCommand(adapterCmd)
	var err error
	output := suite.CaptureStdout(func() {
		_, err = suite.ExecuteCommand(root, "adapter")
	})
	suite.Require().NoError(err)
	suite.Contains(output, "enabled")
	suite.True(suite.Binding.IsInitialized(), "adapter command MUST initialize the binding")
}

func (suite *AdapterTestSuite) TestAdapterCmd_ShowsDisabledState() {
	suite.Binding.SetAdapter(device.AdapterDisabled)

	root := suite.NewRootCommand(adapterCmd)
	var err error
	output := suite.CaptureStdout(func() {
		_, err = suite.ExecuteCommand(root, "adapter")
	})
	suite.Require().NoError(err)
	suite.Contains(output, "disabled")
}

func (suite *AdapterTestSuite) TestAdapterCmd_EnableRequest() {
	// GOAL: Verify --enable requests the adapter be turned on and reports
	// the resulting state

	suite.Binding.SetAdapter(device.AdapterDisabled)

	root := suite.NewRootCommand(adapterCmd)
	var err error
	output := suite.CaptureStdout(func() {
		_, err = suite.ExecuteCommand(root, "adapter", "--enable")
	})
	suite.Require().NoError(err)

	suite.Equal(1, suite.Binding.EnableCalls(), "--enable MUST issue exactly one enable request")
	suite.Contains(output, "Adapter: enabled")
}

func (suite *AdapterTestSuite) TestAdapterCmd_EnableFailure() {
	suite.Binding.SetAdapter(device.AdapterDisabled)
	suite.Binding.FailEnable(errors.New("rfkill blocked"))

	root := suite.NewRootCommand(adapterCmd)
	_, err := suite.ExecuteCommand(root, "adapter", "--enable")
	suite.Require().Error(err)
	suite.ErrorIs(err, device.ErrAdapterUnavailable)
}
