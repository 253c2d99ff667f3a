// Package mutter reads user idle time from the GNOME Mutter IdleMonitor
// over the D-Bus session bus. It works on both Wayland and X11 GNOME sessions.
package mutter

import (
	"context"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/pkg/errors"

	"idlerig/pkg/idle"
)

const (
	busName    = "org.gnome.Mutter.IdleMonitor"
	objectPath = "/org/gnome/Mutter/IdleMonitor/Core"
	getIdle    = busName + ".GetIdletime"

	nameHasOwner      = "org.freedesktop.DBus.NameHasOwner"
	ownerCheckTimeout = 2 * time.Second
)

// busObject is the subset of dbus.BusObject used here
type busObject interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// Source implements idle.Source for GNOME Mutter
type Source struct {
	conn *dbus.Conn
	obj  busObject
}

// NewSource connects to the session bus and fails unless Mutter owns its
// IdleMonitor name there. The connection is private to the Source and
// closed by Close.
func NewSource() (*Source, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, &idle.QueryError{Source: "mutter", Err: errors.Wrap(err, "connect session bus")}
	}

	ctx, cancel := context.WithTimeout(context.Background(), ownerCheckTimeout)
	defer cancel()
	if err := checkOwner(ctx, conn.BusObject()); err != nil {
		conn.Close()
		return nil, err
	}

	return &Source{
		conn: conn,
		obj:  conn.Object(busName, dbus.ObjectPath(objectPath)),
	}, nil
}

// checkOwner asks the bus daemon whether the IdleMonitor name is taken
func checkOwner(ctx context.Context, bus busObject) error {
	var owned bool
	if err := bus.CallWithContext(ctx, nameHasOwner, 0, busName).Store(&owned); err != nil {
		return &idle.QueryError{Source: "mutter", Err: errors.Wrap(err, "NameHasOwner")}
	}
	if !owned {
		return &idle.QueryError{Source: "mutter", Err: errors.Errorf("%s is not on the session bus", busName)}
	}
	return nil
}

func (s *Source) Name() string {
	return "mutter"
}

// IdleTime calls GetIdletime, which answers in milliseconds.
func (s *Source) IdleTime(ctx context.Context) (time.Duration, error) {
	var ms uint64
	if err := s.obj.CallWithContext(ctx, getIdle, 0).Store(&ms); err != nil {
		return 0, &idle.QueryError{Source: s.Name(), Err: errors.Wrap(err, "GetIdletime")}
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func (s *Source) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
