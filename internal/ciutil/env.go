package ciutil

import "os"

// CI environment detection variables
const (
	EnvGitHubActions    = "GITHUB_ACTIONS"
	EnvGitHubWorkspace  = "GITHUB_WORKSPACE"
	EnvGitLabCI         = "GITLAB_CI"
	EnvGitLabProjectDir = "CI_PROJECT_DIR"
)

// IsGitHubActions returns true if the current environment is GitHub Actions.
func IsGitHubActions() bool {
	return os.Getenv(EnvGitHubActions) != "" && os.Getenv(EnvGitHubWorkspace) != ""
}

// IsGitLabCI returns true if the current environment is GitLab CI.
func IsGitLabCI() bool {
	return os.Getenv(EnvGitLabCI) != "" && os.Getenv(EnvGitLabProjectDir) != ""
}

// WorkspaceDir returns the checkout directory reported by the CI provider,
// or the empty string outside CI.
func WorkspaceDir() string {
	switch {
	case IsGitHubActions():
		return os.Getenv(EnvGitHubWorkspace)
	case IsGitLabCI():
		return os.Getenv(EnvGitLabProjectDir)
	default:
		return ""
	}
}
