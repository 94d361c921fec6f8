package envbuild

import (
	"fmt"
	"os"
)

// EnsureRunBit sets the execute bits on an installed scanner binary.
// Executable scanners need no environment beyond this.
func EnsureRunBit(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("installed executable not found: %w", err)
	}
	if info.Mode()&0o111 != 0 {
		return nil
	}
	if err := os.Chmod(path, info.Mode()|0o111); err != nil {
		return fmt.Errorf("failed to set execute permission on %s: %w", path, err)
	}
	return nil
}
