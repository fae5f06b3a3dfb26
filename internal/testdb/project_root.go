package testdb

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/phrazzld/newsletter-api/internal/ciutil"
)

// ProjectRootEnvVar overrides project root detection.
const ProjectRootEnvVar = "APP_PROJECT_ROOT"

// ErrProjectRootNotFound is returned when no go.mod is found above the
// working directory.
var ErrProjectRootNotFound = errors.New("project root not found")

// FindProjectRoot returns the directory holding the module's go.mod, so
// tests in any package can load the repository's configuration file.
// APP_PROJECT_ROOT, when set, wins. Under CI the provider's workspace is
// tried when walking up from the working directory finds nothing.
func FindProjectRoot() (string, error) {
	if root := os.Getenv(ProjectRootEnvVar); root != "" {
		if !hasGoMod(root) {
			return "", fmt.Errorf("%w: %s=%s has no go.mod", ErrProjectRootNotFound, ProjectRootEnvVar, root)
		}
		return root, nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProjectRootNotFound, err)
	}
	root, err := findGoModFrom(dir)
	if err == nil {
		return root, nil
	}

	if ws := ciutil.WorkspaceDir(); ws != "" && hasGoMod(ws) {
		return ws, nil
	}
	return "", err
}

func findGoModFrom(dir string) (string, error) {
	for {
		if hasGoMod(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrProjectRootNotFound
		}
		dir = parent
	}
}

func hasGoMod(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, "go.mod"))
	return err == nil && !info.IsDir()
}
