package x11

import (
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/screensaver"
	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"

	"idlerig/pkg/idle"
)

// Source implements idle.Source for X11 using the MIT-SCREEN-SAVER extension.
// When the extension is missing it falls back to xprintidle.
type Source struct {
	conn  *xgb.Conn
	query func() (uint32, error)
}

// NewSource opens a connection to $DISPLAY.
func NewSource() (*Source, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, &idle.QueryError{Source: "x11", Err: errors.Wrap(err, "connect to X server")}
	}

	s := &Source{conn: conn}

	if err := screensaver.Init(conn); err != nil {
		if !commandExists("xprintidle") {
			conn.Close()
			return nil, &idle.QueryError{Source: "x11", Err: errors.Wrap(err, "MIT-SCREEN-SAVER extension unavailable")}
		}
		s.query = queryXprintidle
		return s, nil
	}

	root := xproto.Setup(conn).DefaultScreen(conn).Root
	s.query = func() (uint32, error) {
		reply, err := screensaver.QueryInfo(conn, xproto.Drawable(root)).Reply()
		if err != nil {
			return 0, err
		}
		return reply.MsSinceUserInput, nil
	}
	return s, nil
}

func (s *Source) Name() string {
	return "x11"
}

func (s *Source) IdleTime(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, &idle.QueryError{Source: s.Name(), Err: err}
	}
	ms, err := s.query()
	if err != nil {
		return 0, &idle.QueryError{Source: s.Name(), Err: errors.Wrap(err, "query screensaver info")}
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func (s *Source) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	return nil
}

// commandExists checks if a command is available in PATH
func commandExists(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}

func queryXprintidle() (uint32, error) {
	output, err := exec.Command("xprintidle").Output()
	if err != nil {
		return 0, errors.Wrap(err, "xprintidle")
	}
	return parseXprintidle(string(output))
}

// parseXprintidle parses the millisecond count printed by xprintidle
func parseXprintidle(output string) (uint32, error) {
	ms, err := strconv.ParseUint(strings.TrimSpace(output), 10, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "parse xprintidle output %q", output)
	}
	return uint32(ms), nil
}
