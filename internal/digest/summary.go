package digest

import (
	"sort"

	"github.com/zorak1103/hass-bridge/internal/homeassistant"
)

// SampleLimit is the maximum number of representative entities per summary.
const SampleLimit = 5

// DomainSummary is a compact digest of all entities in one domain.
// The state counts always sum to Count.
type DomainSummary struct {
	Domain         string         `json:"domain"`
	Count          int            `json:"count"`
	States         map[string]int `json:"states"`
	SampleEntities []LeanView     `json:"sample_entities,omitempty"`
}

// statePriority ranks "interesting" states per domain for sample selection.
// Lower index means more interesting; states not listed rank after listed
// ones in insertion order. The table is deliberately explicit so the
// ordering is testable rather than inferred.
var statePriority = map[string][]string{
	"light":         {"on", "unavailable", "off"},
	"switch":        {"on", "unavailable", "off"},
	"fan":           {"on", "unavailable", "off"},
	"automation":    {"on", "unavailable", "off"},
	"binary_sensor": {"on", "unavailable", "off"},
	"cover":         {"open", "opening", "closing", "unavailable", "closed"},
	"lock":          {"unlocked", "unavailable", "locked"},
	"media_player":  {"playing", "paused", "unavailable", "idle", "off"},
	"vacuum":        {"cleaning", "returning", "error", "unavailable", "docked"},
	"climate":       {"heat", "cool", "heat_cool", "auto", "dry", "fan_only", "unavailable", "off"},
}

// stateRank returns the priority rank of a state within a domain.
// Unknown domains and unlisted states rank last.
func stateRank(domain, state string) int {
	for i, s := range statePriority[domain] {
		if s == state {
			return i
		}
	}
	return len(statePriority[domain])
}

// Summarize aggregates the records of one domain into a DomainSummary with
// the default sample limit.
func Summarize(domain string, records []homeassistant.Entity) DomainSummary {
	return SummarizeN(domain, records, SampleLimit)
}

// SummarizeN aggregates the records of one domain into a DomainSummary.
// Zero records yield count 0 with an empty state map. Samples are chosen
// interesting-states-first when a priority ordering is known for the domain,
// otherwise in insertion order, and normalized in lean mode. A non-positive
// sampleLimit falls back to SampleLimit.
func SummarizeN(domain string, records []homeassistant.Entity, sampleLimit int) DomainSummary {
	summary := DomainSummary{
		Domain: domain,
		Count:  len(records),
		States: make(map[string]int, 4),
	}

	for _, e := range records {
		summary.States[e.State]++
	}

	// Stable sort keeps insertion order within equal priority.
	ordered := make([]homeassistant.Entity, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		return stateRank(domain, ordered[i].State) < stateRank(domain, ordered[j].State)
	})

	limit := sampleLimit
	if limit <= 0 {
		limit = SampleLimit
	}
	if limit > len(ordered) {
		limit = len(ordered)
	}
	for _, e := range ordered[:limit] {
		summary.SampleEntities = append(summary.SampleEntities, Normalize(e, NormalizeOptions{}))
	}

	return summary
}
