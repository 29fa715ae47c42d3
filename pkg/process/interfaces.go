package process

import (
	"io"
	"os"
)

// PTY defines the interface for PTY operations
type PTY interface {
	Start(command string, args []string, env []string) error
	Output() io.Reader
	ForwardInput(stdin io.Reader)
	Wait() error
	ProcessState() *os.ProcessState
	Process() *os.Process
	Stop() error
}
