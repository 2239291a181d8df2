package domain

import "testing"

func TestLinkMirror(t *testing.T) {
	link := Link{
		SourceHost:      "sw1",
		SourcePort:      "Gi0/1",
		DestinationHost: "sw2",
		DestinationPort: "Gi0/3",
	}

	mirror := link.Mirror()
	want := Link{
		SourceHost:      "sw2",
		SourcePort:      "Gi0/3",
		DestinationHost: "sw1",
		DestinationPort: "Gi0/1",
	}
	if mirror != want {
		t.Errorf("Mirror() = %+v, want %+v", mirror, want)
	}

	if mirror.Mirror() != link {
		t.Error("mirror of mirror should restore the original link")
	}
}

func TestLinkValueEquality(t *testing.T) {
	a := Link{SourceHost: "sw1", SourcePort: "Gi0/1", DestinationHost: "sw2", DestinationPort: "Gi0/3"}
	b := Link{SourceHost: "sw1", SourcePort: "Gi0/1", DestinationHost: "sw2", DestinationPort: "Gi0/3"}

	if a != b {
		t.Error("identical links should compare equal")
	}

	seen := map[Link]bool{a: true}
	if !seen[b] {
		t.Error("equal links should hash to the same map key")
	}

	c := a
	c.DestinationPort = "Gi0/4"
	if a == c {
		t.Error("links differing in one field should not compare equal")
	}
}
