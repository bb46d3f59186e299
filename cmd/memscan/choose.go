package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"memscan/process"
)

// chooseProcess returns the only candidate, or lists them all and reads a
// 1-based choice from in.
func chooseProcess(candidates []process.ProcessInfo, in *bufio.Reader, out io.Writer) (process.ProcessInfo, error) {
	switch len(candidates) {
	case 0:
		return process.ProcessInfo{}, fmt.Errorf("no matching processes")
	case 1:
		return candidates[0], nil
	}

	fmt.Fprintf(out, "%6s | %8s | %s\n", "No", "PID", "Name")
	fmt.Fprintln(out, strings.Repeat("-", 40))
	for i, p := range candidates {
		fmt.Fprintf(out, "%6d | %8d | %s\n", i+1, p.PID, p.Name)
	}
	fmt.Fprint(out, "Select a process (number): ")

	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return process.ProcessInfo{}, fmt.Errorf("no selection: %w", err)
	}

	choice, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || choice < 1 || choice > len(candidates) {
		return process.ProcessInfo{}, fmt.Errorf("invalid selection %q", strings.TrimSpace(line))
	}
	return candidates[choice-1], nil
}
