package aggregate

import (
	"fmt"

	"github.com/go-ego/gse"
)

// Segmenter splits free text into candidate words.
type Segmenter interface {
	Segment(text string) []string
}

type gseSegmenter struct {
	seg gse.Segmenter
}

// NewSegmenter loads the default dictionary once and returns a
// segmenter safe for concurrent use.
func NewSegmenter() (Segmenter, error) {
	var seg gse.Segmenter
	if err := seg.LoadDict(); err != nil {
		return nil, fmt.Errorf("failed to load segmentation dictionary: %w", err)
	}

	return &gseSegmenter{seg: seg}, nil
}

func (g *gseSegmenter) Segment(text string) []string {
	return g.seg.Cut(text, true)
}
