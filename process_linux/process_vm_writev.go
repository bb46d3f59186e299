//go:build linux

package process_linux

import (
	"fmt"

	"memscan/process"

	"golang.org/x/sys/unix"
)

// process_vm_writev writes localBuf to remoteAddr of pid
func process_vm_writev(pid process.ProcessID, localBuf []byte, remoteAddr process.ProcessMemoryAddress) (int, error) {
	localIov := [1]unix.Iovec{
		{Base: &localBuf[0]},
	}
	localIov[0].SetLen(len(localBuf))

	remoteIov := [1]unix.RemoteIovec{
		{Base: uintptr(remoteAddr), Len: len(localBuf)},
	}

	return unix.ProcessVMWritev(int(pid), localIov[:], remoteIov[:], 0)
}

// WriteMemory writes data to the process memory at the specified address
func (p *LinuxProcess) WriteMemory(addr process.ProcessMemoryAddress, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("write of 0 bytes at %s", addr.ToString())
	}

	p.mu.Lock()
	pid := p.pid
	region := p.regionForAddressInternal(addr)
	p.mu.Unlock()

	if pid == 0 {
		return process.ErrProcessNotOpen
	}

	if region == nil {
		return fmt.Errorf("%w: %s", process.ErrAddressNotMapped, addr.ToString())
	}

	if !region.IsWritable() {
		return fmt.Errorf("%w: %s", process.ErrNotWritable, addr.ToString())
	}

	// Create a copy of the data to avoid potential modification during the write
	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)

	written, err := process_vm_writev(pid, dataCopy, addr)
	if err != nil {
		return fmt.Errorf("process_vm_writev: failed to write process memory: %w", err)
	}

	if written != len(data) {
		return fmt.Errorf("process_vm_writev: %w: %d of %d bytes", process.ErrPartialTransfer, written, len(data))
	}

	return nil
}
