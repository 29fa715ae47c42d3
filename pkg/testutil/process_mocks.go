// Package testutil provides test doubles shared across packages.
package testutil

import (
	"io"
	"os"
	"strings"
	"sync"
)

// MockPTY is a mock implementation of process.PTY for testing
type MockPTY struct {
	mu           sync.Mutex
	started      bool
	waited       bool
	stopped      bool
	command      string
	args         []string
	forwarded    io.Reader
	output       string
	startErr     error
	waitErr      error
	process      *os.Process
	processState *os.ProcessState
}

// NewMockPTY creates a mock PTY whose child writes output
func NewMockPTY(output string) *MockPTY {
	return &MockPTY{output: output}
}

// Start implements the PTY interface
func (m *MockPTY) Start(command string, args []string, env []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.startErr != nil {
		return m.startErr
	}

	m.started = true
	m.command = command
	m.args = args
	return nil
}

// Output implements the PTY interface
func (m *MockPTY) Output() io.Reader {
	m.mu.Lock()
	defer m.mu.Unlock()
	return strings.NewReader(m.output)
}

// ForwardInput implements the PTY interface
func (m *MockPTY) ForwardInput(stdin io.Reader) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forwarded = stdin
}

// Wait implements the PTY interface
func (m *MockPTY) Wait() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.waited = true
	return m.waitErr
}

// ProcessState implements the PTY interface
func (m *MockPTY) ProcessState() *os.ProcessState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.processState
}

// Process implements the PTY interface
func (m *MockPTY) Process() *os.Process {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.process
}

// Stop implements the PTY interface
func (m *MockPTY) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	return nil
}

// SetStartError sets the error to return from Start
func (m *MockPTY) SetStartError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startErr = err
}

// SetWaitError sets the error to return from Wait
func (m *MockPTY) SetWaitError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.waitErr = err
}

// SetProcess sets the process returned by Process
func (m *MockPTY) SetProcess(p *os.Process) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.process = p
}

// IsStarted returns whether Start succeeded
func (m *MockPTY) IsStarted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

// IsWaited returns whether Wait was called
func (m *MockPTY) IsWaited() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.waited
}

// IsStopped returns whether Stop was called
func (m *MockPTY) IsStopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

// Command returns the command and arguments Start was called with
func (m *MockPTY) Command() (string, []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.command, m.args
}

// Forwarded returns the reader passed to ForwardInput
func (m *MockPTY) Forwarded() io.Reader {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.forwarded
}
