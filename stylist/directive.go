package stylist

import "strings"

// GenerateImageDirective is the in-band marker a reply carries when the
// assistant wants a visual of the current design.
const GenerateImageDirective = "{{GENERATE_IMAGE}}"

// directiveScanner accumulates a streamed reply and exposes the text that is
// safe to show. Directives are removed as they complete, including ones that
// only form after an inner directive was removed. The visible text never
// shrinks: a tail that could still collapse into a directive is held back
// until the next chunk, or Flush, settles it.
type directiveScanner struct {
	text      []byte
	shown     int
	triggered bool
}

// Push appends a chunk and returns the visible text so far, plus true the
// first time the directive is seen.
func (s *directiveScanner) Push(delta string) (string, bool) {
	firstSighting := false
	for i := 0; i < len(delta); i++ {
		s.text = append(s.text, delta[i])
		if n := len(s.text) - len(GenerateImageDirective); n >= 0 && string(s.text[n:]) == GenerateImageDirective {
			s.text = s.text[:n]
			if !s.triggered {
				s.triggered = true
				firstSighting = true
			}
		}
	}
	s.shown = len(s.text) - heldBack(string(s.text[s.shown:]))
	return string(s.text[:s.shown]), firstSighting
}

// Flush returns the final visible text once the stream has ended.
func (s *directiveScanner) Flush() string {
	s.shown = len(s.text)
	return string(s.text)
}

func (s *directiveScanner) Triggered() bool {
	return s.triggered
}

// heldBack is the length of the longest suffix of text made only of proper
// prefixes of the directive, e.g. "{{GENERATE_IMAGE}{{GEN". Any such suffix may
// still be removed by later chunks; nothing before it can be.
func heldBack(text string) int {
	n := len(text)
	ok := make([]bool, n+1)
	ok[n] = true
	held := 0
	for i := n - 1; i >= 0; i-- {
		for l := 1; l < len(GenerateImageDirective) && i+l <= n; l++ {
			if ok[i+l] && strings.HasPrefix(GenerateImageDirective, text[i:i+l]) {
				ok[i] = true
				break
			}
		}
		if ok[i] {
			held = n - i
		}
	}
	return held
}
