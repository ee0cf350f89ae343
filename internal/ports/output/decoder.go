package output

import (
	"io"

	"github.com/jobrunner/sphaera/internal/domain"
)

// DecodedDataset is a dataset as read from its source, before its bounds are
// folded into the globe frame.
type DecodedDataset struct {
	Name     string
	Frame    domain.FrameID // Frame of the source coordinates
	Features []domain.Feature
}

// DatasetDecoder defines the secondary port for parsing dataset files.
type DatasetDecoder interface {
	// Decode reads a dataset; defaultFrame applies when the source carries
	// no frame tag.
	Decode(r io.Reader, defaultFrame domain.FrameID) (*DecodedDataset, error)
}
