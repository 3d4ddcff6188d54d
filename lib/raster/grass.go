package raster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/lni/dragonboat/v4/logger"
)

var plog = logger.GetLogger("raster")

const (
	DefaultMapCalc = "r.mapcalc"
	DefaultRInfo   = "r.info"
)

// grassExecutor runs the GRASS modules as child processes. The GRASS session
// (GISRC, GISBASE, PATH) is inherited from the environment.
type grassExecutor struct {
	mapcalc string
	rinfo   string
}

// NewGRASSExecutor creates an executor calling the given r.mapcalc and r.info
// binaries. Empty paths fall back to the module names, resolved through PATH.
func NewGRASSExecutor(mapcalc, rinfo string) IExecutor {
	if mapcalc == "" {
		mapcalc = DefaultMapCalc
	}
	if rinfo == "" {
		rinfo = DefaultRInfo
	}
	return &grassExecutor{mapcalc: mapcalc, rinfo: rinfo}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see raster/interface.go)
// --------------------------------------------------------------------------

func (g *grassExecutor) MapCalc(ctx context.Context, statement string, overwrite bool) error {
	args := []string{"expression=" + statement, "--quiet"}
	if overwrite {
		args = append(args, "--overwrite")
	}
	_, err := g.run(ctx, g.mapcalc, args...)
	return err
}

func (g *grassExecutor) Info(ctx context.Context, name string) (Info, error) {
	out, err := g.run(ctx, g.rinfo, "-g", "-r", "map="+name)
	if err != nil {
		return Info{}, err
	}
	info, err := ParseInfo(out)
	if err != nil {
		return Info{}, fmt.Errorf("parse r.info output of <%s>: %w", name, err)
	}
	return info, nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// run executes a command and returns its stdout. On failure the error carries
// the exit code and the trimmed stderr of the command.
func (g *grassExecutor) run(ctx context.Context, name string, args ...string) (string, error) {
	plog.Debugf("running %s %s", name, strings.Join(args, " "))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if msg == "" {
				return "", fmt.Errorf("%s failed with exit code %d", name, exitErr.ExitCode())
			}
			return "", fmt.Errorf("%s failed with exit code %d: %s", name, exitErr.ExitCode(), msg)
		}
		return "", fmt.Errorf("run %s: %w", name, err)
	}

	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		plog.Debugf("%s: %s", name, msg)
	}
	return stdout.String(), nil
}
