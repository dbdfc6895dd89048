package resolver

import "github.com/woozymasta/dzstatus/internal/models"

// Stage identifies which step of the match policy selected a candidate.
type Stage int

const (
	// StageNone means no candidate was selected.
	StageNone Stage = iota
	// StageExact matched ip and port or query port.
	StageExact
	// StageAddress matched an "ip:port" entry of the address lists.
	StageAddress
	// StageSingleIP accepted the only candidate sharing the ip.
	StageSingleIP
)

func (s Stage) String() string {
	switch s {
	case StageExact:
		return "exact"
	case StageAddress:
		return "address"
	case StageSingleIP:
		return "single-ip"
	default:
		return "none"
	}
}

// Match picks the candidate for q. Stages run in order and the first one with a result wins.
// Several candidates on the same ip without a port or address match are ambiguous and stay unresolved.
func Match(set models.CandidateSet, q models.Query) (*models.Candidate, Stage) {
	if c := matchExact(set, q); c != nil {
		return c, StageExact
	}
	if c := matchAddress(set, q); c != nil {
		return c, StageAddress
	}
	if c := matchSingleIP(set, q); c != nil {
		return c, StageSingleIP
	}

	return nil, StageNone
}

func matchExact(set models.CandidateSet, q models.Query) *models.Candidate {
	for i := range set {
		a := set[i].Attributes
		if a.IP != q.IP {
			continue
		}
		if port, ok := a.Port.Int(); ok && port == q.Port {
			return &set[i]
		}
		if port, ok := a.PortQuery.Int(); ok && port == q.Port {
			return &set[i]
		}
	}

	return nil
}

func matchAddress(set models.CandidateSet, q models.Query) *models.Candidate {
	want := q.Address()
	for i := range set {
		for _, addr := range set[i].Attributes.AllAddresses() {
			if addr == want {
				return &set[i]
			}
		}
	}

	return nil
}

func matchSingleIP(set models.CandidateSet, q models.Query) *models.Candidate {
	var found *models.Candidate
	for i := range set {
		if set[i].Attributes.IP != q.IP {
			continue
		}
		if found != nil {
			return nil
		}
		found = &set[i]
	}

	return found
}
