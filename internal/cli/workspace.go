package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/matzehuels/forkdep/pkg/cargo"
)

// openWorkspace loads the Cargo workspace. When manifestPath is empty, the
// root manifest is discovered by walking up from the current directory.
func (c *CLI) openWorkspace(manifestPath string) (*cargo.Workspace, error) {
	if manifestPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		manifestPath, err = cargo.FindRootManifest(wd)
		if err != nil {
			return nil, err
		}
	}

	ws, err := cargo.LoadWorkspace(manifestPath)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded workspace", "root", ws.Root(), "members", len(ws.Members))
	return ws, nil
}

// loadLock loads the workspace's lock graph, generating a Cargo.lock via
// cargo when none exists. Generation is surfaced as a warning since it
// touches the working tree.
func (c *CLI) loadLock(ctx context.Context, ws *cargo.Workspace) (*cargo.Lockfile, error) {
	spinner := newSpinnerWithContext(ctx, "Loading lock file...")
	spinner.Start()

	lock, generated, err := cargo.LoadLockfile(ctx, ws)
	if err != nil {
		spinner.StopWithError("Failed to load lock file")
		return nil, err
	}
	spinner.Stop()

	if generated {
		printWarning("No Cargo.lock found, generated one with cargo")
		printDetail("File: %s", ws.LockfilePath())
	}
	c.Logger.Debug("loaded lock graph", "packages", len(lock.Packages), "generated", generated)
	return lock, nil
}

// memberSummary formats the workspace members for status output.
func memberSummary(ws *cargo.Workspace) string {
	if len(ws.Members) == 1 {
		return ws.Members[0].Name
	}
	return fmt.Sprintf("%s (+%d members)", ws.Members[0].Name, len(ws.Members)-1)
}
