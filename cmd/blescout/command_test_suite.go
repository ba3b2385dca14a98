package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/srg/blescout/internal/testutils"
)

// Test device addresses for consistent mock device identification
const (
	TestDeviceAddress1 = "00:00:00:00:00:01"
	TestDeviceAddress2 = "00:00:00:00:00:02"
)

// CommandTestSuite extends MockBindingSuite with command testing utilities.
// All cmd/blescout test suites should embed this instead of MockBindingSuite.
type CommandTestSuite struct {
	testutils.MockBindingSuite
}

// NewRootCommand builds an isolated root carrying the same persistent flags
// as the production root, with the given subcommands attached.
func (s *CommandTestSuite) NewRootCommand(subcommands ...*cobra.Command) *cobra.Command {
	root := &cobra.Command{Use: "blescout"}
	root.SilenceErrors = true
	root.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().String("config", "", "Path to config file")
	for _, sub := range subcommands {
		root.AddCommand(sub)
	}
	return root
}

// WriteConfig writes a throwaway config file and returns its path.
func (s *CommandTestSuite) WriteConfig(content string) string {
	path := filepath.Join(s.T().TempDir(), "blescout.yaml")
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o644))
	return path
}

// CaptureStdout executes fn while capturing stdout, returns captured output.
// Stdout is restored even if fn panics.
func (s *CommandTestSuite) CaptureStdout(fn func()) string {
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	s.Require().NoError(err, "pipe creation MUST succeed")
	os.Stdout = w
	defer func() { os.Stdout = oldStdout }()

	fn()

	w.Close()
	out, _ := io.ReadAll(r)
	return string(out)
}

// ExecuteCommand runs a cobra command with args, returns output and error.
func (s *CommandTestSuite) ExecuteCommand(cmd *cobra.Command, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}
