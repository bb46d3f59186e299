package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"memscan/hexdump"
	"memscan/process"
	"memscan/scanner"
	"memscan/session"
)

const defaultListCount = 20

type console struct {
	sess *session.Session
	out  io.Writer
}

func newConsole(sess *session.Session, out io.Writer) *console {
	return &console{sess: sess, out: out}
}

func (c *console) usage() {
	fmt.Fprint(c.out,
		"Commands:\n",
		"    first <value>          initial scan for an exact value\n",
		"    unknown                initial scan capturing every value\n",
		"    next <value>           keep candidates now equal to value\n",
		"    changed                keep candidates whose value changed\n",
		"    unchanged              keep candidates whose value did not change\n",
		"    list [n]               show the first n candidates\n",
		"    read <addr>            read a value at addr\n",
		"    write <addr> <value>   write a value at addr\n",
		"    show <addr> [size]     hex dump memory at addr\n",
		"    regions                list readable regions\n",
		"    type <type>            switch value type (resets the scan)\n",
		"    reset                  discard candidates\n",
		"    quit\n",
	)
}

// run reads commands until EOF or quit
func (c *console) run(in io.Reader) {
	c.usage()

	lines := bufio.NewScanner(in)
	for {
		fmt.Fprintf(c.out, "[%s, %v, %d] > ", c.sess.State(), c.sess.ValueType(), c.sess.Count())
		if !lines.Scan() {
			fmt.Fprintln(c.out)
			return
		}

		cmd, arg, _ := strings.Cut(strings.TrimSpace(lines.Text()), " ")
		arg = strings.TrimSpace(arg)
		if cmd == "" {
			continue
		}
		if cmd == "quit" || cmd == "exit" {
			return
		}

		if err := c.exec(cmd, arg); err != nil {
			c.report(err)
		}
	}
}

func (c *console) report(err error) {
	switch {
	case errors.Is(err, session.ErrNoInitialScan):
		fmt.Fprintln(c.out, "Run a first scan (first/unknown) before narrowing.")
	case errors.Is(err, session.ErrNotAttached):
		fmt.Fprintln(c.out, "No process attached.")
	default:
		fmt.Fprintf(c.out, "Error: %v\n", err)
	}
}

func (c *console) exec(cmd, arg string) error {
	switch cmd {
	case "first":
		v, err := scanner.ParseValue(c.sess.ValueType(), arg)
		if err != nil {
			return err
		}
		return c.counted(c.sess.FirstScan(v))

	case "unknown":
		return c.counted(c.sess.FirstScanUnknown())

	case "next":
		v, err := scanner.ParseValue(c.sess.ValueType(), arg)
		if err != nil {
			return err
		}
		return c.counted(c.sess.NextScan(v))

	case "changed":
		return c.counted(c.sess.ChangedScan())

	case "unchanged":
		return c.counted(c.sess.UnchangedScan())

	case "list":
		n := defaultListCount
		if arg != "" {
			parsed, err := strconv.Atoi(arg)
			if err != nil {
				return fmt.Errorf("invalid count %q", arg)
			}
			n = parsed
		}
		c.list(n)
		return nil

	case "read":
		addr, err := parseAddress(arg)
		if err != nil {
			return err
		}
		v, err := c.sess.ReadValue(addr)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%s: %s\n", addr.ToString(), v)
		return nil

	case "write":
		addrStr, valueStr, _ := strings.Cut(arg, " ")
		addr, err := parseAddress(addrStr)
		if err != nil {
			return err
		}
		v, err := scanner.ParseValue(c.sess.ValueType(), strings.TrimSpace(valueStr))
		if err != nil {
			return err
		}
		if err := c.sess.WriteValue(addr, v); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Wrote %s to %s\n", v, addr.ToString())
		return nil

	case "show":
		return c.show(arg)

	case "regions":
		regions, err := c.sess.Regions()
		if err != nil {
			return err
		}
		for _, r := range regions {
			fmt.Fprintln(c.out, r)
		}
		fmt.Fprintf(c.out, "%d readable regions\n", len(regions))
		return nil

	case "type":
		t, err := scanner.ParseValueType(arg)
		if err != nil {
			return err
		}
		c.sess.SetValueType(t)
		return nil

	case "reset":
		c.sess.Reset()
		fmt.Fprintln(c.out, "Scan reset.")
		return nil

	case "help":
		c.usage()
		return nil
	}

	return fmt.Errorf("unknown command %q", cmd)
}

func (c *console) counted(n int, err error) error {
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%d candidates\n", n)
	c.list(defaultListCount)
	return nil
}

func (c *console) list(n int) {
	matches := c.sess.Matches()
	if len(matches) == 0 {
		fmt.Fprintln(c.out, "No candidates.")
		return
	}

	n = min(n, len(matches))
	fmt.Fprintf(c.out, "Showing %d of %d\n", n, len(matches))
	fmt.Fprintf(c.out, "%-18s | %s\n", "Address", "Value")
	fmt.Fprintln(c.out, strings.Repeat("-", 40))
	for _, m := range matches[:n] {
		fmt.Fprintf(c.out, "%s | %s\n", m.Address.ToString(), m.Value)
	}
}

func (c *console) show(arg string) error {
	addrStr, sizeStr, _ := strings.Cut(arg, " ")
	addr, err := parseAddress(addrStr)
	if err != nil {
		return err
	}

	size := uint64(64)
	if sizeStr = strings.TrimSpace(sizeStr); sizeStr != "" {
		size, err = strconv.ParseUint(sizeStr, 0, 32)
		if err != nil || size == 0 {
			return fmt.Errorf("invalid size %q", sizeStr)
		}
	}

	avail, err := c.sess.RegionSizeAt(addr)
	if err != nil {
		return err
	}
	if avail == 0 {
		return fmt.Errorf("%s is not in a committed region", addr.ToString())
	}
	size = min(size, avail)

	data, err := c.sess.ReadMemory(addr, process.ProcessMemorySize(size))
	if err != nil {
		return err
	}

	options := hexdump.DefaultOptions()
	options.StartOffset = uint64(addr)
	if t := c.sess.ValueType(); t.IsNumeric() {
		options.HighlightLen = t.Size()
	}
	hexdump.DumpToWriter(c.out, data, options)
	return nil
}

func parseAddress(s string) (process.ProcessMemoryAddress, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	addr, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return process.ProcessMemoryAddress(addr), nil
}
