package digest

import "github.com/zorak1103/hass-bridge/internal/homeassistant"

// SummarizeFunc summarizes one domain's records. The default implementation
// never fails; the indirection exists so a failing domain can be degraded to
// an error marker instead of aborting the whole overview.
type SummarizeFunc func(domain string, records []homeassistant.Entity) (DomainSummary, error)

// DomainResult is a DomainSummary or, when summarization of that domain
// failed, an error marker standing in for it.
type DomainResult struct {
	DomainSummary
	Error string `json:"error,omitempty"`
}

// Overview is the top-level digest of a whole installation.
type Overview struct {
	TotalEntities int                     `json:"total_entities"`
	Domains       map[string]DomainResult `json:"domains"`
	Version       string                  `json:"version"`
}

// BuildOverview groups one snapshot of all entities by domain and summarizes
// each group. Previously-unseen domains get the same generic treatment as
// known ones. A nil summarize falls back to Summarize. A domain whose
// summarization fails is recorded as an error marker; the rest of the
// overview is unaffected.
func BuildOverview(version string, records []homeassistant.Entity, summarize SummarizeFunc) Overview {
	if summarize == nil {
		summarize = func(domain string, records []homeassistant.Entity) (DomainSummary, error) {
			return Summarize(domain, records), nil
		}
	}

	groups := make(map[string][]homeassistant.Entity)
	var order []string
	for _, e := range records {
		domain := e.Domain()
		if _, seen := groups[domain]; !seen {
			order = append(order, domain)
		}
		groups[domain] = append(groups[domain], e)
	}

	overview := Overview{
		TotalEntities: len(records),
		Domains:       make(map[string]DomainResult, len(groups)),
		Version:       version,
	}

	for _, domain := range order {
		summary, err := summarize(domain, groups[domain])
		if err != nil {
			overview.Domains[domain] = DomainResult{
				DomainSummary: DomainSummary{Domain: domain},
				Error:         err.Error(),
			}
			continue
		}
		overview.Domains[domain] = DomainResult{DomainSummary: summary}
	}

	return overview
}
