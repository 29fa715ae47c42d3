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

	"github.com/creack/pty"
	"golang.org/x/term"
)

// PTYManager handles PTY-based process execution
type PTYManager struct {
	cmd         *exec.Cmd
	pty         *os.File
	mu          sync.Mutex
	stopChan    chan struct{}
	wg          sync.WaitGroup
	restoreFunc func()
	logger      *slog.Logger
}

// Ensure PTYManager implements PTY
var _ PTY = (*PTYManager)(nil)

// NewPTYManager creates a new PTY manager
func NewPTYManager(logger *slog.Logger) *PTYManager {
	return &PTYManager{
		stopChan: make(chan struct{}),
		logger:   logger,
	}
}

// Start starts a process with PTY
func (p *PTYManager) Start(command string, args []string, env []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd != nil {
		return fmt.Errorf("process already started")
	}

	p.cmd = exec.Command(command, args...)
	p.cmd.Env = env

	var err error
	p.pty, err = pty.Start(p.cmd)
	if err != nil {
		return fmt.Errorf("failed to start PTY: %w", err)
	}

	// Some environments have no terminal to copy the size from
	if err := p.copyTerminalSize(); err != nil {
		p.logger.Debug("failed to copy terminal size", "err", err)
	}

	p.wg.Add(1)
	go p.monitorTerminalSize()

	p.logger.Debug("started command", "command", command, "args", args, "pid", p.cmd.Process.Pid)
	return nil
}

// Output returns the child's terminal output. Reading it returns io.EOF once
// the child side of the PTY is closed.
func (p *PTYManager) Output() io.Reader {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pty == nil {
		return eofReader{}
	}
	return &ptyReader{f: p.pty}
}

// ForwardInput copies stdin to the child in the background. A terminal on
// stdin is put in raw mode so keys, including interrupts, reach the child.
func (p *PTYManager) ForwardInput(stdin io.Reader) {
	p.mu.Lock()
	ptyFile := p.pty
	if file, ok := stdin.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		if state, err := term.MakeRaw(int(file.Fd())); err == nil {
			fd := int(file.Fd())
			p.restoreFunc = func() { _ = term.Restore(fd, state) }
		} else {
			p.logger.Debug("failed to set raw mode", "err", err)
		}
	}
	p.mu.Unlock()

	if ptyFile == nil {
		return
	}

	go func() {
		if _, err := io.Copy(ptyFile, stdin); err != nil && !isClosed(err) {
			p.logger.Debug("stdin copy error", "err", err)
		}
	}()
}

// Wait waits for the process to complete
func (p *PTYManager) Wait() error {
	if p.cmd == nil {
		return fmt.Errorf("process not started")
	}

	err := p.cmd.Wait()

	close(p.stopChan)
	p.wg.Wait()

	p.mu.Lock()
	if p.pty != nil {
		_ = p.pty.Close()
	}
	p.mu.Unlock()

	_ = p.Stop()
	return err
}

// ProcessState returns the process state
func (p *PTYManager) ProcessState() *os.ProcessState {
	if p.cmd == nil {
		return nil
	}
	return p.cmd.ProcessState
}

// Process returns the underlying process
func (p *PTYManager) Process() *os.Process {
	if p.cmd == nil {
		return nil
	}
	return p.cmd.Process
}

// Stop restores the terminal state
func (p *PTYManager) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.restoreFunc != nil {
		p.restoreFunc()
		p.restoreFunc = nil
	}

	return nil
}

// copyTerminalSize copies the terminal size from stdin to the PTY
func (p *PTYManager) copyTerminalSize() error {
	size, err := pty.GetsizeFull(os.Stdin)
	if err != nil {
		return err
	}

	return pty.Setsize(p.pty, size)
}

// monitorTerminalSize monitors for terminal size changes
func (p *PTYManager) monitorTerminalSize() {
	defer p.wg.Done()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGWINCH)
	defer signal.Stop(sigChan)

	for {
		select {
		case <-sigChan:
			p.mu.Lock()
			if p.pty != nil {
				if err := p.copyTerminalSize(); err != nil {
					p.logger.Debug("failed to resize PTY", "err", err)
				}
			}
			p.mu.Unlock()
		case <-p.stopChan:
			return
		}
	}
}

// ptyReader turns the EIO a PTY master returns after the child hangs up
// into io.EOF.
type ptyReader struct {
	f *os.File
}

func (r *ptyReader) Read(b []byte) (int, error) {
	n, err := r.f.Read(b)
	if err != nil && (errors.Is(err, syscall.EIO) || errors.Is(err, os.ErrClosed)) {
		err = io.EOF
	}
	return n, err
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }

func isClosed(err error) bool {
	return errors.Is(err, os.ErrClosed) || errors.Is(err, syscall.EIO)
}
