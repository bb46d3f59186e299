package process_blob

import (
	"fmt"
	"os"

	"memscan/process"
	"memscan/process/memory_map"
)

// LoadFile maps the raw contents of a memory dump file at base as a single
// read-write segment.
func LoadFile(path string, base process.ProcessMemoryAddress) (*ProcessBlob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dump file: %w", err)
	}

	blob := NewProcessBlob()
	if err := blob.Map(base, data, memory_map.ProtReadWrite); err != nil {
		return nil, err
	}
	return blob, nil
}
