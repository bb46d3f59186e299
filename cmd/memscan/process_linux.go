//go:build linux

package main

import (
	"memscan/process"
	"memscan/process_linux"
)

func getProcess(pid process.ProcessID) (process.Process, error) {
	p, err := process_linux.NewWithPID(pid)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func findProcesses(name string) ([]process.ProcessInfo, error) {
	return process_linux.FindBySubstring(name)
}
