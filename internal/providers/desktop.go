package providers

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Desktop mirrors native notifications to the host's notification
// center through notify-send or osascript.
type Desktop struct {
	goos    string
	command func(ctx context.Context, name string, args ...string) error
}

func NewDesktop() *Desktop {
	return &Desktop{goos: runtime.GOOS, command: runCommand}
}

func (d *Desktop) Name() string { return "desktop" }

func (d *Desktop) Send(ctx context.Context, title, body string) error {
	switch d.goos {
	case "linux":
		return d.command(ctx, "notify-send", title, body)
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(body), escapeAppleScript(title))
		return d.command(ctx, "osascript", "-e", script)
	default:
		return nil
	}
}

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
