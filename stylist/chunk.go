package stylist

type CitationKind string

const (
	CitationWeb CitationKind = "web"
	CitationMap CitationKind = "map"
)

type Citation struct {
	URI   string       `json:"uri"`
	Title string       `json:"title"`
	Kind  CitationKind `json:"kind"`
}

// Chunk is one streamed piece of a model reply: a TextDelta or a GroundedDelta.
type Chunk interface {
	Delta() string
	isChunk()
}

type TextDelta struct {
	Text string
}

func (d TextDelta) Delta() string { return d.Text }
func (TextDelta) isChunk()        {}

type GroundedDelta struct {
	Text      string
	Citations []Citation
}

func (d GroundedDelta) Delta() string { return d.Text }
func (GroundedDelta) isChunk()        {}

// citationSet keeps first-seen order and drops repeated URIs.
type citationSet struct {
	seen  map[string]struct{}
	items []Citation
}

func (s *citationSet) add(cs []Citation) bool {
	added := false
	for _, c := range cs {
		if c.URI == "" {
			continue
		}
		if s.seen == nil {
			s.seen = make(map[string]struct{})
		}
		if _, ok := s.seen[c.URI]; ok {
			continue
		}
		s.seen[c.URI] = struct{}{}
		s.items = append(s.items, c)
		added = true
	}
	return added
}

func (s *citationSet) list() []Citation {
	if len(s.items) == 0 {
		return nil
	}
	out := make([]Citation, len(s.items))
	copy(out, s.items)
	return out
}
