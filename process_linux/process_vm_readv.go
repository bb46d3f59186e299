//go:build linux

package process_linux

import (
	"fmt"

	"memscan/process"

	"golang.org/x/sys/unix"
)

// process_vm_readv reads len(localBuf) bytes at remoteAddr of pid into localBuf
func process_vm_readv(pid process.ProcessID, localBuf []byte, remoteAddr process.ProcessMemoryAddress) (int, error) {
	localIov := [1]unix.Iovec{
		{Base: &localBuf[0]},
	}
	localIov[0].SetLen(len(localBuf))

	remoteIov := [1]unix.RemoteIovec{
		{Base: uintptr(remoteAddr), Len: len(localBuf)},
	}

	return unix.ProcessVMReadv(int(pid), localIov[:], remoteIov[:], 0)
}

// ReadMemory reads memory from the process at the specified address.
// Short reads are reported as failures.
func (p *LinuxProcess) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	if size == 0 {
		return nil, fmt.Errorf("read of 0 bytes at %s", addr.ToString())
	}

	p.mu.Lock()
	pid := p.pid
	region := p.regionForAddressInternal(addr)
	// Release the lock before the system call
	p.mu.Unlock()

	if pid == 0 {
		return nil, process.ErrProcessNotOpen
	}

	if region == nil || !region.IsReadable() {
		return nil, process.ErrAddressNotMapped
	}

	data := make([]byte, size)
	n, err := process_vm_readv(pid, data, addr)
	if err != nil {
		return nil, fmt.Errorf("process_vm_readv: failed to read process memory: %w", err)
	}

	if n != len(data) {
		return nil, fmt.Errorf("process_vm_readv: %w: %d of %d bytes", process.ErrPartialTransfer, n, size)
	}

	return data, nil
}
