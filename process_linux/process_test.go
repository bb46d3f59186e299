//go:build linux

package process_linux

import (
	"encoding/binary"
	"errors"
	"os"
	"os/exec"
	"runtime"
	"testing"
	"time"
	"unsafe"

	"memscan/process"
	"memscan/scanner"
)

func TestSelfAttach(t *testing.T) {
	// large enough to be heap allocated, so the address stays put
	buf := make([]byte, 1<<20)
	sentinel := int64(0x5EED0000_00000000) | time.Now().UnixNano()&0xFFFFFFFF
	binary.LittleEndian.PutUint64(buf[8:], uint64(sentinel))
	addr := process.ProcessMemoryAddress(uintptr(unsafe.Pointer(&buf[8])))

	p, err := NewWithPID(process.ProcessID(os.Getpid()))
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	region, err := p.QueryRegion(addr)
	if err != nil || !region.Contains(uint64(addr)) || !region.IsReadable() || !region.IsWritable() {
		t.Fatalf("QueryRegion(%s) = %v, %v", addr.ToString(), region, err)
	}

	s := scanner.New()
	matches, err := s.ScanForValue(p, scanner.NewInt64(sentinel))
	if err != nil {
		t.Fatal(err)
	}
	var mine []scanner.Match
	for _, m := range matches {
		if m.Address == addr {
			mine = append(mine, m)
		}
	}
	if len(mine) != 1 {
		t.Fatalf("sentinel at %s not among %d matches", addr.ToString(), len(matches))
	}

	if err := s.WriteValue(p, addr, scanner.NewInt64(7)); err != nil {
		t.Fatal(err)
	}
	if got := int64(binary.LittleEndian.Uint64(buf[8:])); got != 7 {
		t.Errorf("local buffer holds %d after write, want 7", got)
	}

	kept, err := s.FilterByValue(p, mine, scanner.NewInt64(7))
	if err != nil || len(kept) != 1 {
		t.Errorf("FilterByValue kept %d, %v; want 1", len(kept), err)
	}

	runtime.KeepAlive(buf)
}

func TestClosedProcess(t *testing.T) {
	p := New()

	if _, err := p.QueryRegion(0x10000); !errors.Is(err, process.ErrProcessNotOpen) {
		t.Errorf("QueryRegion: err = %v", err)
	}
	if _, err := p.ReadMemory(0x10000, 4); !errors.Is(err, process.ErrProcessNotOpen) {
		t.Errorf("ReadMemory: err = %v", err)
	}
	if err := p.UpdateMemoryMap(); !errors.Is(err, process.ErrProcessNotOpen) {
		t.Errorf("UpdateMemoryMap: err = %v", err)
	}
}

func TestNameContains(t *testing.T) {
	tests := []struct {
		name, sub string
		want      bool
	}{
		{"Firefox", "fire", true},
		{"firefox-bin", "FOX", true},
		{"bash", "zsh", false},
		{"", "a", false},
	}
	for _, tt := range tests {
		if got := nameContains(tt.name, tt.sub); got != tt.want {
			t.Errorf("nameContains(%q, %q) = %v, want %v", tt.name, tt.sub, got, tt.want)
		}
	}
}

func TestFindBySubstring(t *testing.T) {
	path, err := exec.LookPath("sleep")
	if err != nil {
		t.Skip("sleep not available")
	}
	cmd := exec.Command(path, "30")
	if err := cmd.Start(); err != nil {
		t.Fatal(err)
	}
	defer func() {
		cmd.Process.Kill()
		cmd.Wait()
	}()

	found, err := FindBySubstring("SLEE")
	if err != nil {
		t.Fatal(err)
	}

	ok := false
	for i, p := range found {
		if i > 0 && found[i-1].PID >= p.PID {
			t.Errorf("results not ordered by PID: %v", found)
		}
		if int(p.PID) == cmd.Process.Pid {
			ok = true
		}
	}
	if !ok {
		t.Errorf("child %d not in %v", cmd.Process.Pid, found)
	}

	if _, err := FindBySubstring(""); err == nil {
		t.Error("empty name accepted")
	}
}
