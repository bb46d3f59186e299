//go:build windows

package main

import (
	"memscan/process"
	"memscan/process_windows"
)

func getProcess(pid process.ProcessID) (process.Process, error) {
	p, err := process_windows.NewWithPID(pid)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func findProcesses(name string) ([]process.ProcessInfo, error) {
	return process_windows.FindBySubstring(name)
}
