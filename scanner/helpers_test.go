package scanner

import (
	"testing"

	"memscan/process"
	"memscan/process/memory_map"
	"memscan/process_blob"
)

// newBlob builds an address space from base -> contents, all read-write
func newBlob(t *testing.T, segments map[process.ProcessMemoryAddress][]byte) *process_blob.ProcessBlob {
	t.Helper()

	blob := process_blob.NewProcessBlob()
	for base, data := range segments {
		if err := blob.Map(base, data, memory_map.ProtReadWrite); err != nil {
			t.Fatalf("Map(0x%X): %v", base, err)
		}
	}
	return blob
}

func addresses(matches []Match) []process.ProcessMemoryAddress {
	out := make([]process.ProcessMemoryAddress, len(matches))
	for i, m := range matches {
		out[i] = m.Address
	}
	return out
}

func addressSet(matches []Match) map[process.ProcessMemoryAddress]bool {
	out := make(map[process.ProcessMemoryAddress]bool, len(matches))
	for _, m := range matches {
		out[m.Address] = true
	}
	return out
}

func poke(t *testing.T, h process.Handle, addr process.ProcessMemoryAddress, data ...byte) {
	t.Helper()
	if err := h.WriteMemory(addr, data); err != nil {
		t.Fatalf("WriteMemory(0x%X): %v", addr, err)
	}
}
