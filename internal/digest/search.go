package digest

import (
	"sort"
	"strings"

	"github.com/zorak1103/hass-bridge/internal/homeassistant"
)

// DefaultSearchLimit caps search results when the caller gives no limit.
const DefaultSearchLimit = 20

// Scoring weights for search ranking. The weights are an implementation
// choice; they are kept as named constants so the ordering contract
// (exact id > friendly name > id substring > state substring) is stable
// and visible. Matches accumulate.
const (
	scoreExactEntityID     = 100
	scoreFriendlyNameMatch = 50
	scoreEntityIDMatch     = 25
	scoreStateMatch        = 10
)

// Query describes one search request. Domain and State are hard filters
// applied before scoring; an entity failing either is excluded outright.
// An empty Text matches everything.
type Query struct {
	Text   string
	Domain string
	State  string
	Limit  int
}

// SearchResult pairs a lean entity view with its match score.
type SearchResult struct {
	Entity LeanView `json:"entity"`
	Score  int      `json:"match_score"`
}

// Search scores and ranks entities by case-insensitive substring match
// against entity_id, friendly_name, and state. Results are ordered by score
// descending with ties broken by entity_id ascending, then truncated to the
// query limit.
func Search(records []homeassistant.Entity, q Query) []SearchResult {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	needle := strings.ToLower(strings.TrimSpace(q.Text))

	type scored struct {
		entityID string
		result   SearchResult
	}
	var matches []scored

	for _, e := range records {
		if q.Domain != "" && e.Domain() != q.Domain {
			continue
		}
		if q.State != "" && e.State != q.State {
			continue
		}

		score, ok := scoreEntity(e, needle)
		if !ok {
			continue
		}

		matches = append(matches, scored{
			entityID: e.EntityID,
			result: SearchResult{
				Entity: Normalize(e, NormalizeOptions{}),
				Score:  score,
			},
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].result.Score != matches[j].result.Score {
			return matches[i].result.Score > matches[j].result.Score
		}
		return matches[i].entityID < matches[j].entityID
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	results := make([]SearchResult, len(matches))
	for i, m := range matches {
		results[i] = m.result
	}
	return results
}

// scoreEntity computes the match score for one entity. An empty needle
// matches everything with score 0.
func scoreEntity(e homeassistant.Entity, needle string) (int, bool) {
	if needle == "" {
		return 0, true
	}

	score := 0
	entityID := strings.ToLower(e.EntityID)
	if entityID == needle {
		score += scoreExactEntityID
	}
	if name := strings.ToLower(e.StringAttr("friendly_name")); name != "" && strings.Contains(name, needle) {
		score += scoreFriendlyNameMatch
	}
	if strings.Contains(entityID, needle) {
		score += scoreEntityIDMatch
	}
	if strings.Contains(strings.ToLower(e.State), needle) {
		score += scoreStateMatch
	}

	return score, score > 0
}
