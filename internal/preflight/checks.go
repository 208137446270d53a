package preflight

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"bactpipe/internal/tools"
)

// CheckDirectoryAccess verifies that the directory exists and is
// readable/writable by the current process.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckBinary verifies the configured tool binary resolves to an executable.
// Bare names are resolved on PATH; explicit paths are checked directly.
func CheckBinary(name, binary string) Result {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return Result{Name: name, Detail: "binary not configured"}
	}

	if strings.ContainsRune(binary, filepath.Separator) {
		if err := unix.Access(binary, unix.X_OK); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: not executable: %v)", binary, err)}
		}
		return Result{Name: name, Passed: true, Detail: binary}
	}

	if err := tools.LookPath(binary); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s not found on PATH", binary)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (on PATH)", binary)}
}

// CheckSketchDB verifies the mash sketch database file exists and is readable.
func CheckSketchDB(path string) Result {
	const name = "Sketch database"

	path = strings.TrimSpace(path)
	if path == "" {
		return Result{Name: name, Detail: "screening enabled but no sketch database configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}
