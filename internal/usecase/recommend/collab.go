package recommend

import (
	"math"
	"sort"
	"time"

	domact "github.com/DominicD213/shoprank/internal/domain/activity"
)

// activityVector accumulates time-decayed interaction weight per item for one
// user. Search-only events carry no item and contribute nothing.
func activityVector(events []domact.Event, now time.Time) map[string]float64 {
	vec := make(map[string]float64)
	for i := range events {
		itemID := events[i].ItemID()
		if itemID == "" {
			continue
		}
		ageDays := now.Sub(events[i].Timestamp()).Hours() / 24
		if ageDays < 0 {
			ageDays = 0
		}
		decay := 1 / (1 + ageDays)
		vec[itemID] += events[i].Action().Weight() * decay
	}
	return vec
}

// sparseCosine computes cosine similarity between two sparse activity
// vectors, treating missing items as zero. Either vector empty yields 0.
func sparseCosine(a, b map[string]float64) float64 {
	var dot float64
	for item, wa := range a {
		if wb, ok := b[item]; ok {
			dot += wa * wb
		}
	}
	if dot == 0 {
		return 0
	}

	var normA, normB float64
	for _, w := range a {
		normA += w * w
	}
	for _, w := range b {
		normB += w * w
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// similarUser pairs another user's id and activity vector with their
// similarity to the target user.
type similarUser struct {
	id         string
	similarity float64
	vector     map[string]float64
}

// rankSimilarUsers keeps users at or above the similarity threshold, sorted
// by descending similarity with id as the deterministic tie-break. The target
// user is never part of its own output.
func rankSimilarUsers(target map[string]float64, others map[string]map[string]float64, minSimilarity float64) []similarUser {
	var ranked []similarUser
	for id, vec := range others {
		sim := sparseCosine(target, vec)
		if sim < minSimilarity {
			continue
		}
		ranked = append(ranked, similarUser{id: id, similarity: sim, vector: vec})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].similarity != ranked[j].similarity {
			return ranked[i].similarity > ranked[j].similarity
		}
		return ranked[i].id < ranked[j].id
	})
	return ranked
}

// collaborativeScores sums similarity-weighted activity over the top similar
// users and normalizes by the max value to [0, 1].
func collaborativeScores(similar []similarUser, topN int) map[string]float64 {
	if len(similar) > topN {
		similar = similar[:topN]
	}

	scores := make(map[string]float64)
	var max float64
	for _, su := range similar {
		for item, weight := range su.vector {
			scores[item] += weight * su.similarity
			if scores[item] > max {
				max = scores[item]
			}
		}
	}
	if max > 0 {
		for item := range scores {
			scores[item] /= max
		}
	}
	return scores
}
