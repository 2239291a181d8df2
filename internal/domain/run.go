package domain

import "time"

// DiscoveryRun records one full collect-and-infer pass over the fleet.
type DiscoveryRun struct {
	ID           string    `json:"id"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	HostsQueried int       `json:"hosts_queried"`
	// Hosts are the devices that answered, in completion order. Node ids in
	// the projected graph are positions in this slice, so the order is part
	// of the run's identity and must survive persistence.
	Hosts []string `json:"hosts"`
	Links []Link   `json:"links"`
}

// Graph projects the run into its serializable node/edge document.
func (r *DiscoveryRun) Graph() *Graph {
	return ProjectGraph(r.Hosts, r.Links)
}

// Summary reduces the run to its listing row.
func (r *DiscoveryRun) Summary() RunSummary {
	return RunSummary{
		ID:           r.ID,
		StartedAt:    r.StartedAt,
		FinishedAt:   r.FinishedAt,
		HostsQueried: r.HostsQueried,
		HostsUp:      len(r.Hosts),
		LinkCount:    len(r.Links),
	}
}

// RunSummary is the listing view of a run, without the per-host and
// per-link payload.
type RunSummary struct {
	ID           string    `json:"id"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	HostsQueried int       `json:"hosts_queried"`
	HostsUp      int       `json:"hosts_up"`
	LinkCount    int       `json:"link_count"`
}
