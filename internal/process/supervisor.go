package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// Status represents the current state of a supervised process.
type Status string

const (
	StatusStopped  Status = "stopped"
	StatusStarting Status = "starting"
	StatusRunning  Status = "running"
	StatusFailed   Status = "failed"
)

// outputBufferSize is the read buffer for the helper's stdout/stderr.
const outputBufferSize = 4096

// Config describes the bridge helper to supervise.
type Config struct {
	// Name identifies the helper in log output.
	Name string

	// Binary is the path to the helper executable.
	Binary string

	// Args are the command-line arguments passed to the helper.
	Args []string

	// Env holds additional environment variables in key=value form.
	// The parent environment is always inherited.
	Env []string

	// RestartOnFailure restarts the helper when it exits unexpectedly.
	RestartOnFailure bool

	// RestartDelay is the pause before each restart attempt.
	RestartDelay time.Duration

	// MaxRestartAttempts caps restarts. Zero means unlimited.
	MaxRestartAttempts int

	// GracefulTimeout bounds the SIGTERM-to-SIGKILL escalation.
	GracefulTimeout time.Duration
}

// Logger defines the logging interface for the supervisor.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Supervisor runs the bridge helper as a child process, streams its
// output into the daemon log and restarts it on unexpected exit.
type Supervisor struct {
	config Config
	logger Logger

	mu            sync.RWMutex
	cmd           *exec.Cmd
	status        Status
	restartCount  int
	lastError     error
	startTime     time.Time
	stopRequested bool
	done          chan struct{}
}

// NewSupervisor creates a supervisor for the given helper.
func NewSupervisor(cfg Config) *Supervisor {
	if cfg.RestartDelay == 0 {
		cfg.RestartDelay = 5 * time.Second
	}
	if cfg.GracefulTimeout == 0 {
		cfg.GracefulTimeout = 10 * time.Second
	}
	return &Supervisor{
		config: cfg,
		logger: noopLogger{},
		status: StatusStopped,
	}
}

// SetLogger sets the supervisor's logger.
func (s *Supervisor) SetLogger(logger Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Start launches the helper and begins monitoring it.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.status == StatusRunning || s.status == StatusStarting {
		s.mu.Unlock()
		return fmt.Errorf("%s is already running", s.config.Name)
	}
	s.status = StatusStarting
	s.stopRequested = false
	s.done = make(chan struct{})
	s.mu.Unlock()

	if err := s.launch(ctx); err != nil {
		s.mu.Lock()
		s.status = StatusFailed
		s.lastError = err
		s.mu.Unlock()
		return err
	}

	go s.monitor(ctx)
	return nil
}

// launch starts the helper process and wires its output streams.
func (s *Supervisor) launch(ctx context.Context) error {
	s.logger.Info("starting bridge helper",
		"name", s.config.Name,
		"binary", s.config.Binary,
	)

	cmd := exec.CommandContext(ctx, s.config.Binary, s.config.Args...) //nolint:gosec // Binary path comes from validated config

	// Own process group so shutdown signals reach any children too.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if s.config.Env != nil {
		cmd.Env = append(os.Environ(), s.config.Env...)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("creating stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("creating stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", s.config.Name, err)
	}

	s.mu.Lock()
	s.cmd = cmd
	s.status = StatusRunning
	s.startTime = time.Now()
	s.mu.Unlock()

	go s.streamOutput("stdout", stdout)
	go s.streamOutput("stderr", stderr)

	s.logger.Info("bridge helper started",
		"name", s.config.Name,
		"pid", cmd.Process.Pid,
	)
	return nil
}

// streamOutput forwards a helper output stream into the daemon log.
func (s *Supervisor) streamOutput(stream string, r io.Reader) {
	buf := make([]byte, outputBufferSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			s.logger.Debug("bridge output",
				"name", s.config.Name,
				"stream", stream,
				"output", string(buf[:n]),
			)
		}
		if err != nil {
			return
		}
	}
}

// monitor waits for the helper to exit and applies the restart policy.
func (s *Supervisor) monitor(ctx context.Context) {
	defer close(s.done)

	for {
		s.mu.RLock()
		cmd := s.cmd
		s.mu.RUnlock()
		if cmd == nil {
			return
		}

		err := cmd.Wait()

		s.mu.Lock()
		stopRequested := s.stopRequested
		s.mu.Unlock()

		if stopRequested || ctx.Err() != nil {
			s.mu.Lock()
			s.status = StatusStopped
			s.mu.Unlock()
			s.logger.Info("bridge helper stopped", "name", s.config.Name)
			return
		}

		s.logger.Warn("bridge helper exited unexpectedly",
			"name", s.config.Name,
			"error", err,
		)

		s.mu.Lock()
		s.lastError = err
		s.status = StatusFailed
		s.mu.Unlock()

		if !s.config.RestartOnFailure {
			return
		}

		s.mu.Lock()
		s.restartCount++
		attempt := s.restartCount
		s.mu.Unlock()

		if s.config.MaxRestartAttempts > 0 && attempt > s.config.MaxRestartAttempts {
			s.logger.Error("bridge helper restart limit reached",
				"name", s.config.Name,
				"attempts", attempt,
			)
			return
		}

		s.logger.Info("restarting bridge helper",
			"name", s.config.Name,
			"attempt", attempt,
			"delay", s.config.RestartDelay,
		)

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.config.RestartDelay):
		}

		s.mu.RLock()
		stopRequested = s.stopRequested
		s.mu.RUnlock()
		if stopRequested {
			return
		}

		if err := s.launch(ctx); err != nil {
			s.logger.Error("restarting bridge helper failed",
				"name", s.config.Name,
				"error", err,
			)
		}
	}
}

// Stop terminates the helper, escalating from SIGTERM to SIGKILL after
// the graceful timeout. Stopping an already-stopped helper is a no-op.
func (s *Supervisor) Stop() error {
	s.mu.Lock()
	if s.status != StatusRunning && s.status != StatusStarting {
		s.mu.Unlock()
		return nil
	}
	s.stopRequested = true
	cmd := s.cmd
	done := s.done
	s.mu.Unlock()

	if cmd == nil || cmd.Process == nil || done == nil {
		return nil
	}

	pid := cmd.Process.Pid
	s.logger.Info("stopping bridge helper", "name", s.config.Name, "pid", pid)

	// Negative PID signals the whole process group.
	if err := syscall.Kill(-pid, syscall.SIGTERM); err != nil {
		if !errors.Is(err, syscall.ESRCH) {
			s.logger.Warn("sending SIGTERM failed", "name", s.config.Name, "error", err)
		}
	}

	select {
	case <-done:
		return nil
	case <-time.After(s.config.GracefulTimeout):
		s.logger.Warn("graceful stop timed out, killing",
			"name", s.config.Name,
			"timeout", s.config.GracefulTimeout,
		)
	}

	if err := syscall.Kill(-pid, syscall.SIGKILL); err != nil {
		if !errors.Is(err, syscall.ESRCH) {
			return fmt.Errorf("killing %s: %w", s.config.Name, err)
		}
	}

	<-done
	return nil
}

// Status returns the helper's current status.
func (s *Supervisor) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// IsRunning reports whether the helper is currently running.
func (s *Supervisor) IsRunning() bool {
	return s.Status() == StatusRunning
}

// LastError returns the error from the helper's last unexpected exit.
func (s *Supervisor) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// Stats summarizes the supervised helper for status reporting.
type Stats struct {
	Name         string        `json:"name"`
	Status       Status        `json:"status"`
	PID          int           `json:"pid,omitempty"`
	Uptime       time.Duration `json:"uptime,omitempty"`
	RestartCount int           `json:"restart_count"`
	LastError    string        `json:"last_error,omitempty"`
}

// Stats returns current statistics for the helper.
func (s *Supervisor) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		Name:         s.config.Name,
		Status:       s.status,
		RestartCount: s.restartCount,
	}
	if s.cmd != nil && s.cmd.Process != nil {
		st.PID = s.cmd.Process.Pid
	}
	if s.status == StatusRunning {
		st.Uptime = time.Since(s.startTime)
	}
	if s.lastError != nil {
		st.LastError = s.lastError.Error()
	}
	return st
}
