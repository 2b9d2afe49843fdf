package community

import (
	"fmt"

	"github.com/gobwas/glob"
)

// FilterParticipants keeps the participants whose serialized id matches the
// glob pattern, e.g. "*@c.us" or "5511*". An empty pattern keeps everyone.
func FilterParticipants(participants []Wid, pattern string) ([]Wid, error) {
	if pattern == "" {
		return participants, nil
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid participant filter %q: %w", pattern, err)
	}

	out := make([]Wid, 0, len(participants))
	for _, p := range participants {
		if g.Match(p.String()) {
			out = append(out, p)
		}
	}
	return out, nil
}
