package codec

import (
	"bytes"
	"strings"
	"testing"

	"switchmap/internal/domain"
)

func sampleGraph() *domain.Graph {
	return &domain.Graph{
		Nodes: []domain.GraphNode{
			{ID: 0, Label: "sw1"},
			{ID: 1, Label: "sw2"},
		},
		Edges: []domain.GraphEdge{
			{From: 0, To: 1, Label: "Gi0/1 - Gi0/3"},
		},
	}
}

func TestJSONCodecExport(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONCodec().Export(sampleGraph(), &buf); err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	want := `{
    "edges": [
        {
            "from": 0,
            "label": "Gi0/1 - Gi0/3",
            "to": 1
        }
    ],
    "nodes": [
        {
            "id": 0,
            "label": "sw1"
        },
        {
            "id": 1,
            "label": "sw2"
        }
    ]
}
`
	if buf.String() != want {
		t.Errorf("Export() = %q, want %q", buf.String(), want)
	}
}

func TestJSONCodecExportEmpty(t *testing.T) {
	var buf bytes.Buffer
	graph := &domain.Graph{
		Edges: []domain.GraphEdge{},
		Nodes: []domain.GraphNode{},
	}
	if err := NewJSONCodec().Export(graph, &buf); err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	want := "{\n    \"edges\": [],\n    \"nodes\": []\n}\n"
	if buf.String() != want {
		t.Errorf("Export() = %q, want %q", buf.String(), want)
	}
}

func TestDOTCodecExport(t *testing.T) {
	var buf bytes.Buffer
	if err := NewDOTCodec().Export(sampleGraph(), &buf); err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	out := buf.String()
	wantLines := []string{
		"graph topology {",
		`    0 [label="sw1"];`,
		`    1 [label="sw2"];`,
		`    0 -- 1 [label="Gi0/1 - Gi0/3"];`,
		"}",
	}
	for _, line := range wantLines {
		if !strings.Contains(out, line) {
			t.Errorf("Export() output missing %q:\n%s", line, out)
		}
	}
}

func TestDOTCodecEscapesLabels(t *testing.T) {
	var buf bytes.Buffer
	graph := &domain.Graph{
		Edges: []domain.GraphEdge{},
		Nodes: []domain.GraphNode{{ID: 0, Label: `core "uplink" switch`}},
	}
	if err := NewDOTCodec().Export(graph, &buf); err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	if !strings.Contains(buf.String(), `label="core \"uplink\" switch"`) {
		t.Errorf("quotes not escaped:\n%s", buf.String())
	}
}

func TestCodecFormats(t *testing.T) {
	if got := NewJSONCodec().Format(); got != "json" {
		t.Errorf("JSONCodec.Format() = %s, want json", got)
	}
	if got := NewDOTCodec().Format(); got != "dot" {
		t.Errorf("DOTCodec.Format() = %s, want dot", got)
	}
}
