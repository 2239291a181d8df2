package codec

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"switchmap/internal/domain"
)

// DOTCodec writes the topology as a Graphviz graph. Links are
// undirected, so edges use the -- connector.
type DOTCodec struct{}

// NewDOTCodec creates a new DOT codec
func NewDOTCodec() *DOTCodec {
	return &DOTCodec{}
}

// Format returns the codec format identifier
func (c *DOTCodec) Format() string {
	return "dot"
}

// Export writes the document to w
func (c *DOTCodec) Export(graph *domain.Graph, w io.Writer) error {
	var buf bytes.Buffer

	buf.WriteString("graph topology {\n")
	buf.WriteString("    node [shape=box];\n")

	for _, node := range graph.Nodes {
		fmt.Fprintf(&buf, "    %d [label=%s];\n", node.ID, strconv.Quote(node.Label))
	}
	for _, edge := range graph.Edges {
		fmt.Fprintf(&buf, "    %d -- %d [label=%s];\n", edge.From, edge.To, strconv.Quote(edge.Label))
	}

	buf.WriteString("}\n")

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write DOT: %w", err)
	}
	return nil
}
