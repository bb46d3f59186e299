package memory_map

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseMaps parses the /proc/<pid>/maps format. Malformed lines are skipped.
// Every listed mapping is committed; readability comes from the permissions.
func ParseMaps(r io.Reader) ([]MemoryRegion, error) {
	var regions []MemoryRegion

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}

		// Parse address range (e.g., "00400000-0040b000")
		startHex, endHex, ok := strings.Cut(fields[0], "-")
		if !ok {
			continue
		}

		startAddr, err := strconv.ParseUint(startHex, 16, 64)
		if err != nil {
			continue
		}

		endAddr, err := strconv.ParseUint(endHex, 16, 64)
		if err != nil || endAddr < startAddr {
			continue
		}

		var name string
		if len(fields) >= 6 {
			name = strings.Join(fields[5:], " ")
		}

		regions = append(regions, MemoryRegion{
			BaseAddress: startAddr,
			Size:        endAddr - startAddr,
			Protection:  ProtectionFromPerms(fields[1]),
			State:       StateCommit,
			Type:        TypeFromName(name),
			Name:        name,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parse maps: %w", err)
	}

	SortRegions(regions)
	return regions, nil
}
