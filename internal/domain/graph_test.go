package domain

import (
	"encoding/json"
	"testing"
)

func TestProjectGraph(t *testing.T) {
	t.Run("assigns ids by host position", func(t *testing.T) {
		hosts := []string{"sw1", "sw2", "sw3"}
		graph := ProjectGraph(hosts, nil)

		if len(graph.Nodes) != 3 {
			t.Fatalf("expected 3 nodes, got %d", len(graph.Nodes))
		}
		for i, host := range hosts {
			if graph.Nodes[i].ID != i {
				t.Errorf("node %d: expected id %d, got %d", i, i, graph.Nodes[i].ID)
			}
			if graph.Nodes[i].Label != host {
				t.Errorf("node %d: expected label %q, got %q", i, host, graph.Nodes[i].Label)
			}
		}
	})

	t.Run("renders link as edge with port label", func(t *testing.T) {
		hosts := []string{"sw1", "sw2"}
		links := []Link{
			{SourceHost: "sw1", SourcePort: "Gi0/1", DestinationHost: "sw2", DestinationPort: "Gi0/3"},
		}

		graph := ProjectGraph(hosts, links)

		if len(graph.Edges) != 1 {
			t.Fatalf("expected 1 edge, got %d", len(graph.Edges))
		}
		edge := graph.Edges[0]
		if edge.From != 0 || edge.To != 1 {
			t.Errorf("expected edge 0 -> 1, got %d -> %d", edge.From, edge.To)
		}
		if edge.Label != "Gi0/1 - Gi0/3" {
			t.Errorf("expected label 'Gi0/1 - Gi0/3', got %q", edge.Label)
		}
	})

	t.Run("skips link with unknown endpoint", func(t *testing.T) {
		hosts := []string{"sw1"}
		links := []Link{
			{SourceHost: "sw1", SourcePort: "Gi0/1", DestinationHost: "sw9", DestinationPort: "Gi0/3"},
		}

		graph := ProjectGraph(hosts, links)

		if len(graph.Edges) != 0 {
			t.Errorf("expected no edges, got %d", len(graph.Edges))
		}
	})

	t.Run("empty inputs produce empty collections", func(t *testing.T) {
		graph := ProjectGraph(nil, nil)

		if graph.Nodes == nil || graph.Edges == nil {
			t.Error("expected initialized collections, got nil")
		}
		if len(graph.Nodes) != 0 || len(graph.Edges) != 0 {
			t.Errorf("expected empty graph, got %d nodes %d edges", len(graph.Nodes), len(graph.Edges))
		}
	})
}

func TestGraphSerialization(t *testing.T) {
	graph := ProjectGraph(
		[]string{"sw1", "sw2"},
		[]Link{{SourceHost: "sw1", SourcePort: "Gi0/1", DestinationHost: "sw2", DestinationPort: "Gi0/3"}},
	)

	data, err := json.Marshal(graph)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	want := `{"edges":[{"from":0,"label":"Gi0/1 - Gi0/3","to":1}],"nodes":[{"id":0,"label":"sw1"},{"id":1,"label":"sw2"}]}`
	if string(data) != want {
		t.Errorf("serialized graph mismatch:\n got %s\nwant %s", data, want)
	}
}

func TestGraphSerializationEmpty(t *testing.T) {
	data, err := json.Marshal(ProjectGraph(nil, nil))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	want := `{"edges":[],"nodes":[]}`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}
}
