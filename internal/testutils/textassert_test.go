package testutils

import (
	"testing"
)

func TestTextAsserter_BasicComparison(t *testing.T) {
	ta := NewTextAsserter(t)

	text := "ID            NAME          RSSI\nAA:BB:CC:DD   HeartMonitor  -58\n"
	if diff := ta.diff(text, text); diff != "" {
		t.Errorf("Expected identical text to produce no diff, got: %s", diff)
	}

	other := "ID            NAME          RSSI\nAA:BB:CC:DD   HeartMonitor  -70\n"
	if diff := ta.diff(text, other); diff == "" {
		t.Error("Expected differing text to produce a diff, got none")
	}
}

func TestTextAsserter_IgnoreLeadingWhitespace(t *testing.T) {
	ta := NewTextAsserter(t).WithOptions(
		WithIgnoreLeadingWhitespace(true),
	)

	actual := "  scanning started\n    device found\n"
	expected := "scanning started\ndevice found\n"
	if diff := ta.diff(actual, expected); diff != "" {
		t.Errorf("Expected no diff with leading whitespace ignored, got: %s", diff)
	}
}

func TestTextAsserter_IgnoreTrailingWhitespace(t *testing.T) {
	ta := NewTextAsserter(t).WithOptions(
		WithIgnoreTrailingWhitespace(true),
	)

	actual := "scanning started   \ndevice found\t\n"
	expected := "scanning started\ndevice found\n"
	if diff := ta.diff(actual, expected); diff != "" {
		t.Errorf("Expected no diff with trailing whitespace ignored, got: %s", diff)
	}
}

func TestTextAsserter_IgnoreEmptyLines(t *testing.T) {
	ta := NewTextAsserter(t).WithOptions(
		WithIgnoreEmptyLines(true),
	)

	actual := "scanning started\n\n\ndevice found\n"
	expected := "scanning started\ndevice found\n"
	if diff := ta.diff(actual, expected); diff != "" {
		t.Errorf("Expected no diff with empty lines ignored, got: %s", diff)
	}
}

func TestTextAsserter_CollapseSpaces(t *testing.T) {
	ta := NewTextAsserter(t).WithOptions(
		WithCollapseSpaces(true),
	)

	actual := "NAME          ADDRESS        RSSI\nHeartMonitor  AA:BB:CC:DD\t\t-58 dBm\n"
	expected := "NAME ADDRESS RSSI\nHeartMonitor AA:BB:CC:DD -58 dBm\n"
	if diff := ta.diff(actual, expected); diff != "" {
		t.Errorf("Expected no diff with spaces collapsed, got: %s", diff)
	}

	other := "NAME ADDRESS RSSI\nHeartMonitor AA:BB:CC:DD -70 dBm\n"
	if diff := ta.diff(actual, other); diff == "" {
		t.Error("Expected differing cell values to still produce a diff, got none")
	}
}

func TestTextAsserter_TrimSpace(t *testing.T) {
	ta := NewTextAsserter(t).WithOptions(
		WithTrimSpace(true),
	)

	actual := "\n\n  scan complete  \n\n"
	expected := "scan complete"
	if diff := ta.diff(actual, expected); diff != "" {
		t.Errorf("Expected no diff with TrimSpace enabled, got: %s", diff)
	}
}
