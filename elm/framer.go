package elm

import "strings"

// Framer turns an unbounded stream of raw adapter bytes into whole reply
// frames. The adapter terminates every reply with its prompt character and
// separates physical lines within one reply with carriage returns, so a
// frame boundary only exists once a prompt has arrived.
//
// A Framer is stateful: bytes that do not yet form a complete frame are kept
// in an internal buffer until the next Feed call. It is not safe for
// concurrent use; Feed must be called in transport delivery order.
type Framer struct {
	buf string
}

// Feed appends chunk to the buffer and returns every complete frame now
// available, in arrival order. If no prompt has arrived yet the whole
// buffer is retained and nil is returned.
//
// Text after the last prompt is retained as the start of the next frame,
// so no bytes are ever dropped across chunk boundaries.
//
// Frames whose content is purely hex after stripping spaces are returned
// space-collapsed ("41 0C 1A F8" becomes "410C1AF8"); anything else, such
// as status literals and reset banners, is returned trimmed but otherwise
// verbatim.
func (f *Framer) Feed(chunk []byte) []string {
	f.buf += string(chunk)
	if !strings.Contains(f.buf, Prompt) {
		return nil
	}

	pieces := strings.Split(f.buf, Prompt)
	f.buf = pieces[len(pieces)-1]

	var frames []string
	for _, piece := range pieces[:len(pieces)-1] {
		for _, line := range strings.FieldsFunc(piece, isLineBreak) {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			frames = append(frames, normalize(line))
		}
	}
	return frames
}

// Reset discards any buffered partial frame. Called when a connection is
// torn down so a stale tail cannot leak into the next session.
func (f *Framer) Reset() {
	f.buf = ""
}

func isLineBreak(r rune) bool {
	return r == '\r' || r == '\n'
}

// normalize collapses inter-byte spacing on hex frames. The collapse only
// applies when the spaceless text is valid even-length hex, which keeps
// literals like "NO DATA" intact.
func normalize(line string) string {
	stripped := strings.Map(dropBlank, line)
	if stripped != "" && len(stripped)%2 == 0 && isHex(stripped) {
		return stripped
	}
	return line
}

func dropBlank(r rune) rune {
	if r == ' ' || r == '\t' {
		return -1
	}
	return r
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'A' && r <= 'F':
		case r >= 'a' && r <= 'f':
		default:
			return false
		}
	}
	return true
}
