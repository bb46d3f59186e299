package hexdump

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// HexDumpOptions defines options for customizing the hexdump output
type HexDumpOptions struct {
	// BytesPerLine defines the number of bytes to display per line
	BytesPerLine int

	// StartOffset is the address printed for the first byte
	StartOffset uint64

	// OffsetWidth is the width of the offset column in hex digits
	OffsetWidth int

	// ShowASCII determines whether to show the ASCII representation
	ShowASCII bool

	// HighlightStart and HighlightLen mark a byte range (relative to data)
	// that is bracketed in the hex column, e.g. the value of a candidate.
	HighlightStart int
	HighlightLen   int
}

// DefaultOptions returns the default hexdump options
func DefaultOptions() HexDumpOptions {
	return HexDumpOptions{
		BytesPerLine: 16,
		OffsetWidth:  16,
		ShowASCII:    true,
	}
}

// Dump creates a hex dump of the given data with specified options
func Dump(data []byte, options HexDumpOptions) string {
	var buffer bytes.Buffer
	DumpToWriter(&buffer, data, options)
	return buffer.String()
}

// DumpToWriter writes a hex dump of the given data to the specified writer
func DumpToWriter(writer io.Writer, data []byte, options HexDumpOptions) {
	if options.BytesPerLine <= 0 {
		options.BytesPerLine = 16
	}
	if options.OffsetWidth <= 0 {
		options.OffsetWidth = 16
	}

	for offset := 0; offset < len(data); offset += options.BytesPerLine {
		end := min(offset+options.BytesPerLine, len(data))
		formatLine(writer, data, offset, end, options)
	}
}

func (o HexDumpOptions) highlighted(i int) bool {
	return o.HighlightLen > 0 && i >= o.HighlightStart && i < o.HighlightStart+o.HighlightLen
}

// formatLine formats data[start:end] as a single line of the hex dump
func formatLine(writer io.Writer, data []byte, start, end int, options HexDumpOptions) {
	fmt.Fprintf(writer, "%0*X  ", options.OffsetWidth, options.StartOffset+uint64(start))

	var hexCol strings.Builder
	for i := start; i < end; i++ {
		if i > start {
			hexCol.WriteByte(' ')
		}
		if options.highlighted(i) && (i == start || !options.highlighted(i-1)) {
			hexCol.WriteByte('[')
		}
		fmt.Fprintf(&hexCol, "%02x", data[i])
		if options.highlighted(i) && (i == end-1 || !options.highlighted(i+1)) {
			hexCol.WriteByte(']')
		}
	}

	// Pad short lines so the ASCII column stays aligned
	width := options.BytesPerLine*3 + 1
	fmt.Fprint(writer, hexCol.String(), strings.Repeat(" ", max(0, width-hexCol.Len())))

	if options.ShowASCII {
		fmt.Fprint(writer, "| ")
		for _, b := range data[start:end] {
			if b >= 0x20 && b < 0x7f {
				fmt.Fprintf(writer, "%c", b)
			} else {
				fmt.Fprint(writer, ".")
			}
		}
	}

	fmt.Fprintln(writer)
}
