package session

import (
	"encoding/binary"
	"errors"
	"testing"

	"memscan/process"
	"memscan/process/memory_map"
	"memscan/process_blob"
	"memscan/scanner"
)

func newAttached(t *testing.T, data []byte) (*Session, *process_blob.ProcessBlob) {
	t.Helper()

	blob := process_blob.NewProcessBlob()
	if err := blob.Map(0x1000, data, memory_map.ProtReadWrite); err != nil {
		t.Fatal(err)
	}

	s := New(scanner.New())
	s.Attach(blob)
	return s, blob
}

func TestUnattached(t *testing.T) {
	s := New(scanner.New())

	if s.State() != StateUnattached {
		t.Fatalf("state = %v, want unattached", s.State())
	}
	if _, err := s.FirstScan(scanner.NewInt32(1)); !errors.Is(err, ErrNotAttached) {
		t.Errorf("FirstScan: err = %v", err)
	}
	if _, err := s.ChangedScan(); !errors.Is(err, ErrNotAttached) {
		t.Errorf("ChangedScan: err = %v", err)
	}
	if _, err := s.ReadValue(0x1000); !errors.Is(err, ErrNotAttached) {
		t.Errorf("ReadValue: err = %v", err)
	}
	if _, err := s.Regions(); !errors.Is(err, ErrNotAttached) {
		t.Errorf("Regions: err = %v", err)
	}
}

func TestNarrowingBeforeFirstScan(t *testing.T) {
	s, _ := newAttached(t, make([]byte, 16))

	if s.State() != StateNoScan {
		t.Fatalf("state = %v, want no-scan", s.State())
	}

	for name, op := range map[string]func() (int, error){
		"next":      func() (int, error) { return s.NextScan(scanner.NewInt32(0)) },
		"changed":   s.ChangedScan,
		"unchanged": s.UnchangedScan,
	} {
		if _, err := op(); !errors.Is(err, ErrNoInitialScan) {
			t.Errorf("%s: err = %v, want ErrNoInitialScan", name, err)
		}
		if s.State() != StateNoScan {
			t.Errorf("%s: state = %v, want no-scan", name, s.State())
		}
	}
}

func TestScanWorkflow(t *testing.T) {
	data := make([]byte, 64)
	binary.LittleEndian.PutUint32(data[8:], 100)
	binary.LittleEndian.PutUint32(data[40:], 100)
	s, blob := newAttached(t, data)

	n, err := s.FirstScan(scanner.NewInt32(100))
	if err != nil || n != 2 {
		t.Fatalf("FirstScan = %d, %v; want 2", n, err)
	}
	if s.State() != StateHasCandidates {
		t.Fatalf("state = %v", s.State())
	}

	if err := scanner.Write(blob, 0x1028, int32(90)); err != nil {
		t.Fatal(err)
	}

	n, err = s.NextScan(scanner.NewInt32(90))
	if err != nil || n != 1 {
		t.Fatalf("NextScan = %d, %v; want 1", n, err)
	}
	if m := s.Matches(); m[0].Address != 0x1028 {
		t.Errorf("candidate = 0x%X, want 0x1028", m[0].Address)
	}

	if err := s.WriteValue(0x1028, scanner.NewInt32(999)); err != nil {
		t.Fatal(err)
	}
	v, err := s.ReadValue(0x1028)
	if err != nil || !v.Equal(scanner.NewInt32(999)) {
		t.Errorf("ReadValue = %v, %v", v, err)
	}

	n, err = s.UnchangedScan()
	if err != nil || n != 0 {
		t.Errorf("UnchangedScan = %d, %v; want 0", n, err)
	}

	// an empty candidate list can still be narrowed
	if s.State() != StateHasCandidates {
		t.Errorf("state = %v, want has-candidates", s.State())
	}
	if n, err := s.ChangedScan(); err != nil || n != 0 {
		t.Errorf("ChangedScan on empty = %d, %v", n, err)
	}

	s.Reset()
	if s.State() != StateNoScan || s.Count() != 0 {
		t.Errorf("after reset: state %v, %d candidates", s.State(), s.Count())
	}
}

func TestUnknownScan(t *testing.T) {
	s, blob := newAttached(t, make([]byte, 8))
	s.SetValueType(scanner.TypeInt64)

	n, err := s.FirstScanUnknown()
	if err != nil || n != 1 {
		t.Fatalf("FirstScanUnknown = %d, %v; want 1", n, err)
	}

	if err := blob.WriteMemory(0x1000, []byte{1}); err != nil {
		t.Fatal(err)
	}
	n, err = s.ChangedScan()
	if err != nil || n != 1 {
		t.Errorf("ChangedScan = %d, %v; want 1", n, err)
	}

	s.SetValueType(scanner.TypeString)
	if _, err := s.FirstScanUnknown(); !errors.Is(err, scanner.ErrUnsupportedType) {
		t.Errorf("unknown string scan: err = %v", err)
	}
}

func TestSetValueTypeClearsCandidates(t *testing.T) {
	s, _ := newAttached(t, make([]byte, 8))

	if _, err := s.FirstScan(scanner.NewInt32(0)); err != nil {
		t.Fatal(err)
	}
	s.SetValueType(scanner.TypeInt32)
	if s.State() != StateHasCandidates {
		t.Errorf("same type should keep candidates, state %v", s.State())
	}

	s.SetValueType(scanner.TypeFloat32)
	if s.State() != StateNoScan || s.Count() != 0 {
		t.Errorf("after type change: state %v, %d candidates", s.State(), s.Count())
	}

	if err := s.WriteValue(0x1000, scanner.NewInt32(1)); !errors.Is(err, scanner.ErrTypeMismatch) {
		t.Errorf("WriteValue of wrong type: err = %v", err)
	}
}

func TestAttachDiscardsCandidates(t *testing.T) {
	s, blob := newAttached(t, make([]byte, 8))

	if _, err := s.FirstScan(scanner.NewInt32(0)); err != nil {
		t.Fatal(err)
	}
	s.Attach(blob)
	if s.State() != StateNoScan || s.Count() != 0 {
		t.Errorf("after reattach: state %v, %d candidates", s.State(), s.Count())
	}

	s.Detach()
	if s.State() != StateUnattached {
		t.Errorf("after detach: state %v", s.State())
	}
	// the session does not own the handle
	if _, err := blob.ReadMemory(0x1000, 4); err != nil {
		t.Errorf("blob unusable after detach: %v", err)
	}
}

func TestStringCandidates(t *testing.T) {
	s, blob := newAttached(t, []byte("hp=full hp=full"))

	n, err := s.FirstScan(scanner.NewString("full"))
	if err != nil || n != 2 {
		t.Fatalf("FirstScan = %d, %v; want 2", n, err)
	}
	if s.ValueType() != scanner.TypeString {
		t.Errorf("value type = %v, want string", s.ValueType())
	}

	if err := blob.WriteMemory(0x100B, []byte("half")); err != nil {
		t.Fatal(err)
	}
	v, err := s.ReadValue(0x100B)
	if err != nil || v.String() != "half" {
		t.Errorf("ReadValue = %q, %v", v.String(), err)
	}
	if _, err := s.ReadValue(process.ProcessMemoryAddress(0x1000)); !errors.Is(err, scanner.ErrUnsupportedType) {
		t.Errorf("ReadValue off-candidate string: err = %v", err)
	}

	n, err = s.ChangedScan()
	if err != nil || n != 1 {
		t.Errorf("ChangedScan = %d, %v; want 1", n, err)
	}
}
