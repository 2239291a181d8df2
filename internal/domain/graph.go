package domain

// Graph is the derived view for vis-network visualization and the output
// artifact. Fields are declared in sorted-key order so the serialized
// document keeps stable, sorted keys.
type Graph struct {
	Edges []GraphEdge `json:"edges"`
	Nodes []GraphNode `json:"nodes"`
}

// GraphNode represents one responding host in the visualization. ID is the
// host's position in the run's completion order; identity across runs is the
// label, never the id.
type GraphNode struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
}

// GraphEdge represents one confirmed link; the label joins the two port
// names as "<sourcePort> - <destinationPort>".
type GraphEdge struct {
	From  int    `json:"from"`
	Label string `json:"label"`
	To    int    `json:"to"`
}

// ProjectGraph maps hosts to integer ids by list position and renders links
// as edges between those ids. A link whose endpoints are not both present in
// the host list is skipped. Empty inputs produce empty (non-nil) collections
// so the document always serializes with both keys.
func ProjectGraph(hosts []string, links []Link) *Graph {
	idByHost := make(map[string]int, len(hosts))
	nodes := make([]GraphNode, 0, len(hosts))
	for i, host := range hosts {
		idByHost[host] = i
		nodes = append(nodes, GraphNode{ID: i, Label: host})
	}

	edges := make([]GraphEdge, 0, len(links))
	for _, link := range links {
		from, ok := idByHost[link.SourceHost]
		if !ok {
			continue
		}
		to, ok := idByHost[link.DestinationHost]
		if !ok {
			continue
		}
		edges = append(edges, GraphEdge{
			From:  from,
			Label: link.SourcePort + " - " + link.DestinationPort,
			To:    to,
		})
	}

	return &Graph{Edges: edges, Nodes: nodes}
}
