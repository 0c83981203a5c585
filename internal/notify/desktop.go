package notify

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	domain "github.com/donaldgifford/vaccine-alert/pkg/types"
)

// Desktop platforms.
const (
	PlatformAuto   = "auto"
	PlatformLinux  = "linux"
	PlatformDarwin = "darwin"
	PlatformNone   = "none"
)

// CommandRunner executes a local command and returns its error, including
// any output, on failure.
type CommandRunner func(ctx context.Context, name string, args ...string) error

func execRunner(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// DesktopChannel raises a local desktop notification. The mechanism is
// chosen once at construction; platforms without one return ErrUnsupported.
type DesktopChannel struct {
	platform string
	title    string
	run      CommandRunner
}

// DesktopOption configures a DesktopChannel.
type DesktopOption func(*DesktopChannel)

// WithCommandRunner replaces process execution, for tests.
func WithCommandRunner(r CommandRunner) DesktopOption {
	return func(d *DesktopChannel) {
		d.run = r
	}
}

// NewDesktopChannel resolves platform ("auto" means the running OS) and
// returns a channel bound to it.
func NewDesktopChannel(platform, title string, opts ...DesktopOption) *DesktopChannel {
	if platform == "" || platform == PlatformAuto {
		platform = runtime.GOOS
	}
	d := &DesktopChannel{
		platform: platform,
		title:    title,
		run:      execRunner,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name implements Channel.
func (d *DesktopChannel) Name() string { return "desktop" }

// Platform returns the resolved platform.
func (d *DesktopChannel) Platform() string { return d.platform }

// Send implements Channel.
func (d *DesktopChannel) Send(ctx context.Context, event domain.AlertEvent) error {
	switch d.platform {
	case PlatformLinux:
		return d.run(ctx, "notify-send",
			"-u", "critical",
			"-i", "notification-message-IM",
			d.title, event.Message,
		)
	case PlatformDarwin:
		script := fmt.Sprintf("display notification %s with title %s",
			appleScriptString(event.Message), appleScriptString(d.title))
		return d.run(ctx, "osascript", "-e", script)
	default:
		return fmt.Errorf("%w: desktop notifications on %q", ErrUnsupported, d.platform)
	}
}

// appleScriptString quotes s as an AppleScript string literal.
func appleScriptString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}
