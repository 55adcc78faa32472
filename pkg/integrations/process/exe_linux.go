//go:build linux

package process

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const deletedSuffix = " (deleted)"

var procRoot = "/proc"

func executablePath(pid uint32) (string, error) {
	dir := filepath.Join(procRoot, strconv.FormatUint(uint64(pid), 10))

	target, err := os.Readlink(filepath.Join(dir, "exe"))
	if err == nil {
		return strings.TrimSuffix(target, deletedSuffix), nil
	}

	// exe is unreadable for other users' processes; stat is world-readable
	// and still carries the command name.
	name, statErr := commandName(filepath.Join(dir, "stat"))
	if statErr != nil {
		return "", err
	}
	return name, nil
}

// commandName extracts the parenthesised comm field from a /proc/<pid>/stat
// file. The name may itself contain parentheses, so the last ')' ends it.
func commandName(statPath string) (string, error) {
	data, err := os.ReadFile(statPath)
	if err != nil {
		return "", err
	}
	stat := string(data)
	start := strings.Index(stat, "(")
	end := strings.LastIndex(stat, ")")
	if start == -1 || end <= start+1 {
		return "", errors.Errorf("malformed stat file %s", statPath)
	}
	return stat[start+1 : end], nil
}
