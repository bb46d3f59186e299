//go:build linux

package process_linux

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"memscan/process"
)

// FindBySubstring returns all processes whose comm or exe basename contains
// sub, ignoring case, ordered by PID. The calling process is never listed.
func FindBySubstring(sub string) ([]process.ProcessInfo, error) {
	if sub == "" {
		return nil, errors.New("empty name")
	}

	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, fmt.Errorf("read /proc: %w", err)
	}

	selfPID := os.Getpid()
	var out []process.ProcessInfo

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(e.Name())
		if err != nil || pid <= 0 {
			continue // not a PID dir
		}
		if pid == selfPID {
			continue
		}

		comm, _ := os.ReadFile(filepath.Join("/proc", e.Name(), "comm"))
		name := string(bytesTrimNL(comm))

		// Resolve /proc/<pid>/exe symlink; may fail if zombie or permission.
		// comm is truncated to 15 bytes, the exe name is not.
		if exe, _ := os.Readlink(filepath.Join("/proc", e.Name(), "exe")); exe != "" {
			if base := filepath.Base(exe); nameContains(base, sub) || !nameContains(name, sub) {
				name = base
			}
		}

		if nameContains(name, sub) {
			out = append(out, process.ProcessInfo{PID: process.ProcessID(pid), Name: name})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].PID < out[j].PID })
	return out, nil
}

func nameContains(name, sub string) bool {
	return name != "" && strings.Contains(strings.ToLower(name), strings.ToLower(sub))
}

func bytesTrimNL(b []byte) []byte {
	for len(b) > 0 {
		switch b[len(b)-1] {
		case '\n', '\r', ' ', '\t':
			b = b[:len(b)-1]
		default:
			return b
		}
	}
	return b
}
