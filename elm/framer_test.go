package elm_test

import (
	"reflect"
	"testing"

	"github.com/openvehiclelab/elmlink/elm"
)

func TestFramerFeed(t *testing.T) {
	tests := []struct {
		name     string
		chunks   []string
		expected [][]string // frames yielded per chunk
	}{
		{
			name:     "Single spaced hex reply",
			chunks:   []string{"41 0C 1A F8>"},
			expected: [][]string{{"410C1AF8"}},
		},
		{
			name:     "Reply split across two chunks",
			chunks:   []string{"41 0C 1A", " F8>"},
			expected: [][]string{nil, {"410C1AF8"}},
		},
		{
			name:     "Multiple lines within one prompt",
			chunks:   []string{"41 0C 1A F8\r41 0D 32\r>"},
			expected: [][]string{{"410C1AF8", "410D32"}},
		},
		{
			name:     "Multiple prompts in one chunk",
			chunks:   []string{"410C1AF8\r\r>410D32\r\r>"},
			expected: [][]string{{"410C1AF8", "410D32"}},
		},
		{
			name:     "Status literals are preserved verbatim",
			chunks:   []string{"SEARCHING...\rNO DATA\r>"},
			expected: [][]string{{"SEARCHING...", "NO DATA"}},
		},
		{
			name:     "Reset banner is not hex-collapsed",
			chunks:   []string{"ELM327 v1.5\r\r>"},
			expected: [][]string{{"ELM327 v1.5"}},
		},
		{
			name:     "No prompt yields nothing",
			chunks:   []string{"41 0C 1A F8\r"},
			expected: [][]string{nil},
		},
		{
			name:     "Tail after prompt is retained for the next reply",
			chunks:   []string{"41 0C 1A F8>41 0D", " 32\r>"},
			expected: [][]string{{"410C1AF8"}, {"410D32"}},
		},
		{
			name:     "Empty lines and bare prompts are skipped",
			chunks:   []string{"\r\r>", "OK\r\r>"},
			expected: [][]string{nil, {"OK"}},
		},
		{
			name:     "Question mark reply",
			chunks:   []string{"?\r\r>"},
			expected: [][]string{{"?"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &elm.Framer{}
			for i, chunk := range tt.chunks {
				frames := f.Feed([]byte(chunk))
				if !reflect.DeepEqual(frames, tt.expected[i]) {
					t.Errorf("chunk %d: expected frames %v, got %v", i, tt.expected[i], frames)
				}
			}
		})
	}
}

func TestFramerReset(t *testing.T) {
	f := &elm.Framer{}
	f.Feed([]byte("41 0C 1A"))
	f.Reset()

	// The stale tail must not prefix the next reply.
	frames := f.Feed([]byte("410D32\r>"))
	if len(frames) != 1 || frames[0] != "410D32" {
		t.Errorf("expected single frame 410D32 after reset, got %v", frames)
	}
}
