package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gotest.tools/assert"
)

func newTestDaemon(t *testing.T) *Daemon {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "idlerig.pid"))
}

func TestReadPIDMissingFile(t *testing.T) {
	d := newTestDaemon(t)
	pid, err := d.ReadPID()
	assert.NilError(t, err)
	assert.Equal(t, pid, 0)

	running, _, err := d.IsRunning()
	assert.NilError(t, err)
	assert.Assert(t, !running)
}

func TestWritePIDMarksRunning(t *testing.T) {
	d := newTestDaemon(t)
	assert.NilError(t, d.WritePID())

	running, pid, err := d.IsRunning()
	assert.NilError(t, err)
	assert.Assert(t, running)
	assert.Equal(t, pid, os.Getpid())

	assert.NilError(t, d.RemovePID())
	assert.NilError(t, d.RemovePID(), "removing twice is fine")
}

func TestStalePIDFileIsRemoved(t *testing.T) {
	d := newTestDaemon(t)
	// above the default pid_max, so never a live process
	assert.NilError(t, os.WriteFile(d.PIDFile(), []byte("4194305\n"), 0o644))

	running, _, err := d.IsRunning()
	assert.NilError(t, err)
	assert.Assert(t, !running)

	_, err = os.Stat(d.PIDFile())
	assert.Assert(t, os.IsNotExist(err))
}

func TestInvalidPIDFile(t *testing.T) {
	d := newTestDaemon(t)
	assert.NilError(t, os.WriteFile(d.PIDFile(), []byte("not-a-pid"), 0o644))

	_, _, err := d.IsRunning()
	assert.ErrorContains(t, err, "invalid PID")
}

func TestStopWhenNotRunning(t *testing.T) {
	d := newTestDaemon(t)
	err := d.Stop(time.Second)
	assert.ErrorContains(t, err, "not running")
}

func TestIsChild(t *testing.T) {
	t.Setenv(ChildEnv, "")
	assert.Assert(t, !IsChild())
	t.Setenv(ChildEnv, "1")
	assert.Assert(t, IsChild())
}
