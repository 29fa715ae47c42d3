// Package process runs a command under a pseudo-terminal so its output can
// be highlighted.
package process

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"sync"
	"syscall"
)

// OutputHandler consumes the output stream of the wrapped command.
type OutputHandler func(output io.Reader) error

// Manager manages the wrapped process
type Manager struct {
	ptyManager PTY
	stdin      io.Reader
	logger     *slog.Logger
	exitCode   int
	mu         sync.Mutex
	sigChan    chan os.Signal
	done       chan struct{}
}

// NewManager creates a new process manager
func NewManager(stdin io.Reader, logger *slog.Logger) *Manager {
	return &Manager{
		ptyManager: NewPTYManager(logger),
		stdin:      stdin,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// Run starts command, passes its output to handle and waits for it to exit.
// The returned error is the handler's; the command's own failure shows up
// only in ExitCode.
func (m *Manager) Run(command string, args []string, handle OutputHandler) error {
	if err := m.Start(command, args); err != nil {
		return err
	}

	herr := handle(m.ptyManager.Output())
	if herr != nil {
		// Nobody reads the output anymore; make sure the child does not
		// block on a full PTY buffer.
		_ = m.Stop()
	}

	if err := m.Wait(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) && herr == nil {
			return fmt.Errorf("failed to wait for %s: %w", command, err)
		}
	}
	return herr
}

// Start starts the process
func (m *Manager) Start(command string, args []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ptyManager.Start(command, args, os.Environ()); err != nil {
		return fmt.Errorf("failed to start process: %w", err)
	}

	if m.stdin != nil {
		m.ptyManager.ForwardInput(m.stdin)
	}

	m.setupSignalForwarding()

	return nil
}

// Wait waits for the process to exit
func (m *Manager) Wait() error {
	if m.ptyManager == nil {
		return fmt.Errorf("process not started")
	}

	err := m.ptyManager.Wait()

	m.mu.Lock()
	if state := m.ptyManager.ProcessState(); state != nil {
		m.exitCode = state.ExitCode()
	}
	m.mu.Unlock()

	close(m.done)
	m.cleanupSignals()

	m.logger.Debug("command exited", "code", m.ExitCode())
	return err
}

// ExitCode returns the exit code of the process
func (m *Manager) ExitCode() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exitCode
}

// setupSignalForwarding sets up signal forwarding to the child process
func (m *Manager) setupSignalForwarding() {
	m.sigChan = make(chan os.Signal, 1)
	signal.Notify(m.sigChan,
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGHUP,
		syscall.SIGQUIT,
	)

	go m.forwardSignals()
}

// forwardSignals forwards signals to the child process
func (m *Manager) forwardSignals() {
	for {
		select {
		case sig := <-m.sigChan:
			if m.ptyManager != nil && m.ptyManager.Process() != nil {
				if err := m.ptyManager.Process().Signal(sig); err != nil && !errors.Is(err, os.ErrProcessDone) {
					m.logger.Debug("signal forward error", "signal", sig, "err", err)
				}
			}
		case <-m.done:
			return
		}
	}
}

// cleanupSignals stops signal forwarding
func (m *Manager) cleanupSignals() {
	if m.sigChan != nil {
		signal.Stop(m.sigChan)
	}
}

// Stop restores the terminal and asks the child to terminate
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ptyManager != nil {
		_ = m.ptyManager.Stop()

		if m.ptyManager.Process() != nil {
			if err := m.ptyManager.Process().Signal(syscall.SIGTERM); err != nil {
				if !errors.Is(err, os.ErrProcessDone) {
					return m.ptyManager.Process().Kill()
				}
			}
		}
	}

	return nil
}
