package dblink

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// RunCommand runs an external program attached to the terminal of the current
// process and waits for it to exit.
func RunCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w", name, err)
	}
	return nil
}
