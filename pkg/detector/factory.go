package detector

import (
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"

	"idlerig/pkg/idle"
	"idlerig/pkg/integrations/mutter"
	"idlerig/pkg/integrations/x11"
)

const (
	SourceAuto   = "auto"
	SourceMutter = "mutter"
	SourceX11    = "x11"
)

// constructors is swapped out by tests
var constructors = map[string]func() (idle.Source, error){
	SourceMutter: func() (idle.Source, error) {
		src, err := mutter.NewSource()
		if err != nil {
			return nil, err
		}
		return src, nil
	},
	SourceX11: func() (idle.Source, error) {
		src, err := x11.NewSource()
		if err != nil {
			return nil, err
		}
		return src, nil
	},
}

// IsValidSource reports whether kind names a known idle backend or "auto".
func IsValidSource(kind string) bool {
	switch kind {
	case SourceAuto, SourceMutter, SourceX11:
		return true
	}
	return false
}

// New opens the idle source named by kind. For "auto" the backends are tried
// in the order given by Candidates and the first one that connects wins.
func New(kind string) (idle.Source, error) {
	if !IsValidSource(kind) {
		return nil, errors.Errorf("unknown idle source %q (valid: auto, mutter, x11)", kind)
	}

	var lastErr error
	for _, name := range Candidates(kind, DetectDisplayServer(), os.Getenv("XDG_CURRENT_DESKTOP")) {
		src, err := constructors[name]()
		if err != nil {
			slog.Debug("Idle source unavailable", "source", name, "error", err)
			lastErr = err
			continue
		}
		slog.Debug("Idle source initialized", "source", src.Name())
		return src, nil
	}

	if lastErr == nil {
		lastErr = errors.New("no idle source candidates")
	}
	return nil, errors.Wrap(lastErr, "no usable idle source")
}

// Candidates returns the backends to try, in order, for the given session.
func Candidates(kind, displayServer, desktop string) []string {
	if kind != SourceAuto {
		return []string{kind}
	}

	gnome := strings.Contains(strings.ToLower(desktop), "gnome") || strings.Contains(strings.ToLower(desktop), "ubuntu")

	switch displayServer {
	case "wayland":
		// X11 idle counters under XWayland only see XWayland clients
		return []string{SourceMutter, SourceX11}
	case "x11":
		if gnome {
			return []string{SourceMutter, SourceX11}
		}
		return []string{SourceX11, SourceMutter}
	default:
		return []string{SourceMutter, SourceX11}
	}
}

func DetectDisplayServer() string {
	sessionType := os.Getenv("XDG_SESSION_TYPE")
	waylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	x11Display := os.Getenv("DISPLAY")

	if sessionType == "wayland" || waylandDisplay != "" {
		return "wayland"
	}

	if sessionType == "x11" || x11Display != "" {
		return "x11"
	}

	return "unknown"
}
