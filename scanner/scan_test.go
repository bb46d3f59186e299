package scanner

import (
	"encoding/binary"
	"errors"
	"math"
	"reflect"
	"testing"

	"memscan/process"
	"memscan/process/memory_map"
	"memscan/process_blob"
)

// flakyHandle reports fail as readable but refuses to read it
type flakyHandle struct {
	*process_blob.ProcessBlob
	fail process.ProcessMemoryAddress
}

func (f *flakyHandle) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	if addr == f.fail {
		return nil, errors.New("region vanished")
	}
	return f.ProcessBlob.ReadMemory(addr, size)
}

func TestScanForValueScenario(t *testing.T) {
	data := make([]byte, 64)
	for i := 0; i+4 <= len(data); i += 4 {
		binary.LittleEndian.PutUint32(data[i:], 7)
	}
	binary.LittleEndian.PutUint32(data[8:], 42)

	blob := newBlob(t, map[process.ProcessMemoryAddress][]byte{0x1000: data})

	matches, err := New().ScanForValue(blob, NewInt32(42))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].Address != 0x1008 || !matches[0].Value.Equal(NewInt32(42)) {
		t.Fatalf("got %v, want one match at 0x1008", matches)
	}
}

func TestScanForValueUnaligned(t *testing.T) {
	data := make([]byte, 32)
	binary.LittleEndian.PutUint64(data[3:], uint64(0x1122334455667788))
	binary.LittleEndian.PutUint64(data[17:], math.Float64bits(2.75))

	blob := newBlob(t, map[process.ProcessMemoryAddress][]byte{0x4000: data})
	s := New()

	matches, err := s.ScanForValue(blob, NewInt64(0x1122334455667788))
	if err != nil {
		t.Fatal(err)
	}
	if got := addresses(matches); !reflect.DeepEqual(got, []process.ProcessMemoryAddress{0x4003}) {
		t.Errorf("int64 matches at %v, want [0x4003]", got)
	}

	matches, err = s.ScanForValue(blob, NewFloat64(2.75))
	if err != nil {
		t.Fatal(err)
	}
	if got := addresses(matches); !reflect.DeepEqual(got, []process.ProcessMemoryAddress{0x4011}) {
		t.Errorf("float64 matches at %v, want [0x4011]", got)
	}
}

func TestScanMatchesSpanRegionsInOrder(t *testing.T) {
	a := make([]byte, 16)
	b := make([]byte, 16)
	binary.LittleEndian.PutUint32(a[4:], 99)
	binary.LittleEndian.PutUint32(b[0:], 99)
	binary.LittleEndian.PutUint32(b[12:], 99)

	blob := newBlob(t, map[process.ProcessMemoryAddress][]byte{0x8000: b, 0x2000: a})

	matches, err := New().ScanForValue(blob, NewInt32(99))
	if err != nil {
		t.Fatal(err)
	}
	want := []process.ProcessMemoryAddress{0x2004, 0x8000, 0x800C}
	if got := addresses(matches); !reflect.DeepEqual(got, want) {
		t.Errorf("matches at %v, want %v", got, want)
	}
}

func TestScanSkipsUnreadableRegions(t *testing.T) {
	a := make([]byte, 16)
	b := make([]byte, 16)
	c := make([]byte, 16)
	binary.LittleEndian.PutUint32(a[0:], 5)
	binary.LittleEndian.PutUint32(b[0:], 5)
	binary.LittleEndian.PutUint32(c[0:], 5)

	blob := newBlob(t, map[process.ProcessMemoryAddress][]byte{0x1000: a, 0x2000: b})
	if err := blob.Map(0x3000, c, memory_map.ProtNoAccess); err != nil {
		t.Fatal(err)
	}
	h := &flakyHandle{ProcessBlob: blob, fail: 0x2000}

	matches, err := New().ScanForValue(h, NewInt32(5))
	if err != nil {
		t.Fatal(err)
	}
	want := []process.ProcessMemoryAddress{0x1000}
	if got := addresses(matches); !reflect.DeepEqual(got, want) {
		t.Errorf("matches at %v, want %v", got, want)
	}
}

func TestScanForString(t *testing.T) {
	data := []byte("..player..PLAYER..player")
	blob := newBlob(t, map[process.ProcessMemoryAddress][]byte{0x1000: data})
	s := New()

	matches, err := s.ScanForString(blob, "player")
	if err != nil {
		t.Fatal(err)
	}
	want := []process.ProcessMemoryAddress{0x1002, 0x1012}
	if got := addresses(matches); !reflect.DeepEqual(got, want) {
		t.Errorf("matches at %v, want %v", got, want)
	}
	for _, m := range matches {
		if m.Value.Type() != TypeString || m.Value.String() != "player" {
			t.Errorf("match value = %v %q", m.Value.Type(), m.Value.String())
		}
	}

	if _, err := s.ScanForString(blob, ""); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("empty term: err = %v", err)
	}
}

func TestScanForWideString(t *testing.T) {
	data := []byte("ab\x00H\x00P\x00HP")
	blob := newBlob(t, map[process.ProcessMemoryAddress][]byte{0x1000: data})

	matches, err := New().ScanForWideString(blob, "HP")
	if err != nil {
		t.Fatal(err)
	}
	want := []process.ProcessMemoryAddress{0x1003}
	if got := addresses(matches); !reflect.DeepEqual(got, want) {
		t.Errorf("matches at %v, want %v", got, want)
	}
	if len(matches) == 1 && (matches[0].Value.Type() != TypeWideString || matches[0].Value.Len() != 4) {
		t.Errorf("match value = %v len %d", matches[0].Value.Type(), matches[0].Value.Len())
	}
}

func TestScanAllValues(t *testing.T) {
	blob := newBlob(t, map[process.ProcessMemoryAddress][]byte{
		0x1000: {1, 2, 3, 4, 5, 6},
		0x2000: {9, 9, 9},
	})

	matches, err := New().ScanAllValues(blob, TypeInt32)
	if err != nil {
		t.Fatal(err)
	}

	// three windows in the first region, none in the three-byte region
	want := []process.ProcessMemoryAddress{0x1000, 0x1001, 0x1002}
	if got := addresses(matches); !reflect.DeepEqual(got, want) {
		t.Fatalf("matches at %v, want %v", got, want)
	}
	if v, _ := matches[1].Value.Int64(); v != 0x05040302 {
		t.Errorf("value at 0x1001 = 0x%X, want 0x05040302", v)
	}

	if _, err := New().ScanAllValues(blob, TypeString); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("unknown string scan: err = %v", err)
	}
}

func TestScanLimitExceeded(t *testing.T) {
	blob := newBlob(t, map[process.ProcessMemoryAddress][]byte{
		0x1000: make([]byte, 64),
		0x2000: make([]byte, 64),
	})

	_, err := New(WithMaxScanBytes(100)).ScanForValue(blob, NewInt32(0))
	if !errors.Is(err, ErrScanLimitExceeded) {
		t.Errorf("err = %v, want ErrScanLimitExceeded", err)
	}

	matches, err := New(WithMaxScanBytes(128)).ScanForValue(blob, NewInt32(0))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2*(64-3) {
		t.Errorf("got %d matches, want %d", len(matches), 2*(64-3))
	}
}

func TestParallelScanMatchesSequential(t *testing.T) {
	segments := map[process.ProcessMemoryAddress][]byte{}
	for r := 0; r < 12; r++ {
		data := make([]byte, 256)
		for i := r; i+4 <= len(data); i += 13 {
			binary.LittleEndian.PutUint32(data[i:], 1234)
		}
		segments[process.ProcessMemoryAddress(0x10000+r*0x1000)] = data
	}
	blob := newBlob(t, segments)

	sequential, err := New().ScanForValue(blob, NewInt32(1234))
	if err != nil {
		t.Fatal(err)
	}
	parallel, err := New(WithParallelism(4)).ScanForValue(blob, NewInt32(1234))
	if err != nil {
		t.Fatal(err)
	}

	if len(sequential) == 0 {
		t.Fatal("no matches")
	}
	if !reflect.DeepEqual(addresses(sequential), addresses(parallel)) {
		t.Errorf("parallel scan order differs from sequential")
	}
}
