// Package chapters turns a plain list of timestamped titles into ffmpeg
// metadata chapter blocks.
//
// Input lines look like
//
//	0:00:00.000 Intro
//	0:23:20.000 Part two
//	1:20:00.000 END
//
// Every line starts a chapter that ends one millisecond before the next
// line begins. The last line only provides the end time of the chapter
// before it.
package chapters

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/arthur-debert/homebin/pkg/errors"
)

// MetadataHeader starts an ffmetadata file.
const MetadataHeader = ";FFMETADATA1"

var linePattern = regexp.MustCompile(`^(\d+):(\d{2}):(\d{2})\.(\d{3}) (.*)$`)

// Mark is one parsed input line.
type Mark struct {
	// Start is the offset in milliseconds.
	Start int64
	Title string
}

// Chapter is a chapter with both bounds in milliseconds.
type Chapter struct {
	Start int64
	End   int64
	Title string
}

// ParseLine parses a single "H:MM:SS.mmm Title" line.
func ParseLine(line string) (Mark, error) {
	m := linePattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return Mark{}, errors.Newf(errors.ErrInvalidInput, "unable to parse line: %s", line)
	}

	hours, _ := strconv.ParseInt(m[1], 10, 64)
	minutes, _ := strconv.ParseInt(m[2], 10, 64)
	seconds, _ := strconv.ParseInt(m[3], 10, 64)
	millis, _ := strconv.ParseInt(m[4], 10, 64)

	start := ((hours*60+minutes)*60+seconds)*1000 + millis
	return Mark{Start: start, Title: m[5]}, nil
}

// Parse reads marks from r. Blank lines are ignored. Lines that do not parse
// are returned in skipped and otherwise ignored.
func Parse(r io.Reader) (marks []Mark, skipped []string, err error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		mark, err := ParseLine(line)
		if err != nil {
			skipped = append(skipped, line)
			continue
		}
		marks = append(marks, mark)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrFileAccess, "failed to read chapter list")
	}
	return marks, skipped, nil
}

// Build pairs each mark with the next one. The last mark closes the list.
func Build(marks []Mark) []Chapter {
	if len(marks) < 2 {
		return nil
	}
	out := make([]Chapter, 0, len(marks)-1)
	for i := 0; i < len(marks)-1; i++ {
		out = append(out, Chapter{
			Start: marks[i].Start,
			End:   marks[i+1].Start - 1,
			Title: marks[i].Title,
		})
	}
	return out
}

// Write renders chapters as ffmetadata blocks. With header the output is a
// complete metadata file rather than a fragment to append to one.
func Write(w io.Writer, chapters []Chapter, header bool) error {
	bw := bufio.NewWriter(w)
	if header {
		fmt.Fprintln(bw, MetadataHeader)
	}
	for _, c := range chapters {
		fmt.Fprintln(bw, "[CHAPTER]")
		fmt.Fprintln(bw, "TIMEBASE=1/1000")
		fmt.Fprintf(bw, "START=%d\n", c.Start)
		fmt.Fprintf(bw, "END=%d\n", c.End)
		fmt.Fprintf(bw, "title=%s\n", escape(c.Title))
	}
	return bw.Flush()
}

// escape protects the characters ffmetadata treats specially.
func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "=", `\=`, ";", `\;`, "#", `\#`, "\n", "\\\n")
	return r.Replace(s)
}
