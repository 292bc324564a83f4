package report

import (
	"bufio"
	"bytes"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// DecodeLatin1 maps every byte to the code point of the same value, so it
// never fails regardless of what the exporter wrote.
func DecodeLatin1(raw []byte) string {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		// ISO-8859-1 has no invalid bytes; keep the raw bytes if the decoder ever disagrees.
		return string(raw)
	}
	return string(out)
}

// splitLines splits on \n, \r\n and lone \r without trimming.
func splitLines(text string) []string {
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), len(text)+1)
	sc.Split(scanAnyEOL)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines
}

func scanAnyEOL(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\r' {
			if i+1 < len(data) {
				if data[i+1] == '\n' {
					return i + 2, data[:i], nil
				}
				return i + 1, data[:i], nil
			}
			if !atEOF {
				// need one more byte to tell \r from \r\n
				return 0, nil, nil
			}
		}
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
