package daemon

import (
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/process"
)

// ChildEnv marks the re-executed background process
const ChildEnv = "IDLERIG_DAEMON_CHILD"

type Daemon struct {
	pidFile string
}

func New(pidFile string) *Daemon {
	return &Daemon{pidFile: pidFile}
}

// IsChild reports whether this process was started by Spawn
func IsChild() bool {
	return os.Getenv(ChildEnv) == "1"
}

func (d *Daemon) PIDFile() string {
	return d.pidFile
}

func (d *Daemon) WritePID() error {
	pid := os.Getpid()
	if err := os.WriteFile(d.pidFile, []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return errors.Wrap(err, "failed to write PID file")
	}
	return nil
}

// ReadPID returns 0 when there is no PID file
func (d *Daemon) ReadPID() (int, error) {
	data, err := os.ReadFile(d.pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "failed to read PID file")
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, errors.Wrap(err, "invalid PID in file")
	}

	return pid, nil
}

func (d *Daemon) RemovePID() error {
	if err := os.Remove(d.pidFile); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove PID file")
	}
	return nil
}

// IsRunning checks the PID file against the process table. A stale PID file
// is removed.
func (d *Daemon) IsRunning() (bool, int, error) {
	pid, err := d.ReadPID()
	if err != nil {
		return false, 0, err
	}

	if pid == 0 {
		return false, 0, nil
	}

	exists, err := process.PidExists(int32(pid))
	if err != nil {
		return false, 0, errors.Wrap(err, "failed to look up process")
	}

	if !exists {
		_ = d.RemovePID()
		return false, 0, nil
	}

	return true, pid, nil
}

// Stop sends SIGTERM and waits up to timeout for the process to exit
func (d *Daemon) Stop(timeout time.Duration) error {
	running, pid, err := d.IsRunning()
	if err != nil {
		return errors.Wrap(err, "error checking daemon status")
	}

	if !running {
		return errors.New("daemon is not running or PID file is stale")
	}

	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		_ = d.RemovePID()
		return errors.New("daemon process already terminated")
	}

	if err := proc.Terminate(); err != nil {
		return errors.Wrap(err, "failed to send SIGTERM")
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if exists, _ := process.PidExists(int32(pid)); !exists {
			return d.RemovePID()
		}
		time.Sleep(100 * time.Millisecond)
	}

	return errors.Errorf("daemon (PID %d) did not exit within %v", pid, timeout)
}

// Spawn re-executes the current binary with args in a new session, its
// output appended to logPath. It returns the child's PID.
func Spawn(args []string, logPath string) (int, error) {
	exe, err := os.Executable()
	if err != nil {
		return 0, errors.Wrap(err, "failed to locate executable")
	}

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return 0, errors.Wrap(err, "failed to open log file")
	}
	defer logFile.Close()

	procAttr := &os.ProcAttr{
		Env:   append(os.Environ(), ChildEnv+"=1"),
		Files: []*os.File{nil, logFile, logFile},
		Sys: &syscall.SysProcAttr{
			Setsid: true, // Create new session
		},
	}

	proc, err := os.StartProcess(exe, append([]string{exe}, args...), procAttr)
	if err != nil {
		return 0, errors.Wrap(err, "failed to start daemon process")
	}

	pid := proc.Pid
	return pid, proc.Release()
}
