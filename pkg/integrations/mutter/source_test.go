package mutter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"

	"idlerig/pkg/idle"
)

type fakeObject struct {
	call   *dbus.Call
	method string
	args   []interface{}
}

func (f *fakeObject) CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call {
	f.method = method
	f.args = args
	return f.call
}

func TestIdleTime(t *testing.T) {
	obj := &fakeObject{call: &dbus.Call{Body: []interface{}{uint64(4200)}}}
	src := &Source{obj: obj}

	got, err := src.IdleTime(context.Background())
	if err != nil {
		t.Fatalf("IdleTime() error: %v", err)
	}
	if got != 4200*time.Millisecond {
		t.Errorf("IdleTime() = %v, want 4.2s", got)
	}
	if obj.method != "org.gnome.Mutter.IdleMonitor.GetIdletime" {
		t.Errorf("called %q", obj.method)
	}
}

func TestIdleTimeError(t *testing.T) {
	src := &Source{obj: &fakeObject{call: &dbus.Call{Err: errors.New("no such name")}}}

	_, err := src.IdleTime(context.Background())
	if err == nil {
		t.Fatal("IdleTime() expected error")
	}

	var qe *idle.QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("error %T is not *idle.QueryError", err)
	}
	if qe.Source != "mutter" {
		t.Errorf("Source = %s, want mutter", qe.Source)
	}
}

func TestCloseWithoutConnection(t *testing.T) {
	src := &Source{}
	if err := src.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
	if src.Name() != "mutter" {
		t.Errorf("Name() = %s, want mutter", src.Name())
	}
}

func TestCheckOwner(t *testing.T) {
	testCases := []struct {
		Name    string
		Call    *dbus.Call
		WantErr bool
	}{
		{Name: "mutter present", Call: &dbus.Call{Body: []interface{}{true}}},
		{Name: "other desktop", Call: &dbus.Call{Body: []interface{}{false}}, WantErr: true},
		{Name: "bus error", Call: &dbus.Call{Err: errors.New("disconnected")}, WantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			bus := &fakeObject{call: tc.Call}
			err := checkOwner(context.Background(), bus)

			if bus.method != "org.freedesktop.DBus.NameHasOwner" {
				t.Errorf("called %q", bus.method)
			}
			if len(bus.args) != 1 || bus.args[0] != "org.gnome.Mutter.IdleMonitor" {
				t.Errorf("args = %v", bus.args)
			}
			if !tc.WantErr {
				if err != nil {
					t.Fatalf("checkOwner() error: %v", err)
				}
				return
			}

			var qe *idle.QueryError
			if !errors.As(err, &qe) {
				t.Fatalf("error %v is not *idle.QueryError", err)
			}
		})
	}
}
