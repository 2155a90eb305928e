package checker

import (
	"context"
	"os/exec"
	"regexp"
	"time"
)

// CommandProber checks system command availability and version.
type CommandProber interface {
	// Probe reports whether a command is available on PATH and, when it
	// could be determined, its version.
	Probe(ctx context.Context, command string) (installed bool, version string)
}

const probeTimeout = 5 * time.Second

// Flags tried in order when probing a command's version. Tools disagree on
// which one they support.
var versionFlags = []string{"--version", "-version", "-v", "version"}

// Matches "X.Y", "X.Y.Z", optionally prefixed by "v" or "version", with an
// optional prerelease suffix.
var versionPattern = regexp.MustCompile(`(?i)(?:version\s*)?v?(\d+\.\d+(?:\.\d+)?(?:-[a-zA-Z0-9.-]+)?)`)

// ExecProber probes commands by executing them with common version flags.
type ExecProber struct {
	timeout time.Duration
}

// NewExecProber creates a prober that runs real commands.
func NewExecProber() *ExecProber {
	return &ExecProber{timeout: probeTimeout}
}

// Probe implements CommandProber. A command that exists but reveals no
// version is reported as installed with an empty version.
func (p *ExecProber) Probe(ctx context.Context, command string) (bool, string) {
	if _, err := exec.LookPath(command); err != nil {
		return false, ""
	}

	for _, flag := range versionFlags {
		probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
		output, err := exec.CommandContext(probeCtx, command, flag).CombinedOutput()
		cancel()

		if len(output) > 0 {
			if m := versionPattern.FindSubmatch(output); m != nil {
				return true, string(m[1])
			}
			if err == nil {
				return true, ""
			}
		}
	}

	return true, ""
}
