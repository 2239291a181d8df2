package codec

import (
	"io"

	"switchmap/internal/domain"
)

// Exporter interface for writing the topology document in various formats
type Exporter interface {
	Export(graph *domain.Graph, w io.Writer) error
	Format() string
}
