package preflight

import (
	"bytes"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// MoverBusy reports whether the storage-pool consolidation mover is active.
// The pid file is the primary signal: if it exists and names a live process,
// the mover is busy. A stale pid file (dead process or garbage content) does
// not count. When no pid file is configured, pgrep is used as a best-effort
// fallback; a missing pgrep binary reports not busy.
func MoverBusy(pidFile string) bool {
	pidFile = strings.TrimSpace(pidFile)
	if pidFile != "" {
		return pidFileAlive(pidFile)
	}
	return pgrepFinds("mover")
}

func pidFileAlive(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return false
	}
	_, err = os.Stat("/proc/" + strconv.Itoa(pid))
	return err == nil
}

func pgrepFinds(name string) bool {
	path, err := exec.LookPath("pgrep")
	if err != nil {
		return false
	}
	out, err := exec.Command(path, "-x", name).Output()
	if err != nil {
		return false
	}
	return len(bytes.TrimSpace(out)) > 0
}
