package enrich

import (
	"fmt"
	"strings"
)

// renderMetadata produces an ffmpeg FFMETADATA1 document carrying the
// chapter list. Times are expressed in milliseconds.
func renderMetadata(chapters []Chapter) string {
	var b strings.Builder
	b.WriteString(";FFMETADATA1\n")
	for _, ch := range chapters {
		start := int64(ch.StartTime * 1000)
		end := int64(ch.EndTime * 1000)
		if end <= start {
			end = start + 1
		}
		b.WriteString("[CHAPTER]\n")
		b.WriteString("TIMEBASE=1/1000\n")
		fmt.Fprintf(&b, "START=%d\n", start)
		fmt.Fprintf(&b, "END=%d\n", end)
		fmt.Fprintf(&b, "title=%s\n", escapeMetadata(ch.Title))
	}
	return b.String()
}

// escapeMetadata quotes the characters the FFMETADATA format treats as
// special: '=', ';', '#', '\' and newline.
func escapeMetadata(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '=', ';', '#', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString("\\\n")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
