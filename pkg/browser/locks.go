package browser

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"
)

// lockNames are the profile lock artifacts Chrome leaves behind on a crash.
var lockNames = []string{"SingletonLock", "SingletonSocket", "SingletonCookie", "lockfile"}

// CleanStaleLocks removes lock artifacts from a persistent profile when the
// process that created them is gone. A lock held by a live local process is
// left in place so the launch reports ErrProfileInUse instead of corrupting
// the profile. It returns the removed paths.
func CleanStaleLocks(profileDir string, logger *zap.Logger) []string {
	if profileDir == "" {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if pid, ok := lockOwner(profileDir); ok {
		if alive, err := process.PidExists(pid); err == nil && alive {
			logger.Debug("Profile lock owned by a live process",
				zap.String("profile_dir", profileDir),
				zap.Int32("pid", pid))
			return nil
		}
	}

	var removed []string
	for _, name := range lockNames {
		p := filepath.Join(profileDir, name)
		if _, err := os.Lstat(p); err != nil {
			continue
		}
		if err := os.Remove(p); err != nil {
			logger.Warn("Failed to remove stale profile lock", zap.String("path", p), zap.Error(err))
			continue
		}
		removed = append(removed, p)
	}

	if len(removed) > 0 {
		logger.Info("Removed stale profile locks",
			zap.String("profile_dir", profileDir),
			zap.Strings("files", removed))
	}
	return removed
}

// lockOwner reads the pid out of SingletonLock, a symlink to "<host>-<pid>".
// Locks written by another host never count as live.
func lockOwner(profileDir string) (int32, bool) {
	target, err := os.Readlink(filepath.Join(profileDir, "SingletonLock"))
	if err != nil {
		return 0, false
	}
	idx := strings.LastIndex(target, "-")
	if idx <= 0 {
		return 0, false
	}
	if host, err := os.Hostname(); err == nil && target[:idx] != host {
		return 0, false
	}
	pid, err := strconv.ParseInt(target[idx+1:], 10, 32)
	if err != nil || pid <= 0 {
		return 0, false
	}
	return int32(pid), true
}
