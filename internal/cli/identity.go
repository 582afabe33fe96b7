package cli

import (
	"os/exec"
	"strings"
)

// defaultAssignee resolves the identity for new and imported tickets.
// Priority: config.assignee -> git user.name -> unassigned.
func defaultAssignee(a *app) string {
	if a.cfg.Assignee != "" {
		return a.cfg.Assignee
	}

	return gitUserName(a.cfg.EffectiveCwd)
}

// gitUserName returns the configured git user.name, or "" if git is
// unavailable or unconfigured.
func gitUserName(dir string) string {
	out, err := exec.Command("git", "-C", dir, "config", "user.name").Output()
	if err != nil {
		return ""
	}

	return strings.TrimSpace(string(out))
}
