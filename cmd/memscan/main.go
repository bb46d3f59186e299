package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"

	"memscan/process"
	"memscan/process_blob"
	"memscan/scanner"
	"memscan/session"
)

func main() {
	pidFlag := flag.Int("pid", 0, "Process ID to attach to")
	nameFlag := flag.String("name", "", "Attach to a process whose name contains this, ignoring case; several matches are listed to choose from")
	dumpFlag := flag.String("dump", "", "Scan a raw memory dump file instead of a live process")
	baseFlag := flag.String("base", "0x10000", "Base address of the dump file (with --dump)")
	typeFlag := flag.String("type", "int32", "Value type: int32, int64, float32, float64, string, wstring")
	maxdopFlag := flag.Int("maxdop", 1, "Number of regions to scan in parallel")
	maxScanMBFlag := flag.Uint64("max-scan-mb", 0, "Refuse scans over this many MiB of readable memory (0 = no limit)")
	flag.Parse()

	valueType, err := scanner.ParseValueType(*typeFlag)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	stdin := bufio.NewReader(os.Stdin)

	handle, closeFn, err := attach(*pidFlag, *nameFlag, *dumpFlag, *baseFlag, stdin)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}
	defer closeFn()

	sc := scanner.New(
		scanner.WithParallelism(*maxdopFlag),
		scanner.WithMaxScanBytes(*maxScanMBFlag<<20),
	)

	sess := session.New(sc, session.WithValueType(valueType))
	sess.Attach(handle)

	newConsole(sess, os.Stdout).run(stdin)
}

func attach(pid int, name, dump, base string, stdin *bufio.Reader) (process.Handle, func(), error) {
	switch {
	case dump != "":
		baseAddr, err := strconv.ParseUint(base, 0, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid --base %q: %w", base, err)
		}
		blob, err := process_blob.LoadFile(dump, process.ProcessMemoryAddress(baseAddr))
		if err != nil {
			return nil, nil, err
		}
		fmt.Printf("Loaded dump %s at 0x%X\n", dump, baseAddr)
		return blob, func() {}, nil

	case pid != 0:
		proc, err := getProcess(process.ProcessID(pid))
		if err != nil {
			return nil, nil, fmt.Errorf("attaching to process %d: %w", pid, err)
		}
		fmt.Printf("Attached to process %d\n", pid)
		return proc, func() { proc.Close() }, nil

	case name != "":
		candidates, err := findProcesses(name)
		if err != nil {
			return nil, nil, fmt.Errorf("finding process %q: %w", name, err)
		}
		info, err := chooseProcess(candidates, stdin, os.Stdout)
		if err != nil {
			return nil, nil, fmt.Errorf("finding process %q: %w", name, err)
		}
		proc, err := getProcess(info.PID)
		if err != nil {
			return nil, nil, fmt.Errorf("attaching to process %s (PID %d): %w", info.Name, info.PID, err)
		}
		fmt.Printf("Attached to process %s (PID %d)\n", info.Name, proc.GetPID())
		return proc, func() { proc.Close() }, nil
	}

	return nil, nil, fmt.Errorf("one of --pid, --name or --dump is required")
}
