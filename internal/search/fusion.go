// Package search answers paper and image queries against the vector store and keyword index.
package search

import (
	"sort"

	"github.com/hyperjump/shiori/internal/keyword"
	"github.com/hyperjump/shiori/internal/vector"
)

// FusedResult holds a paper ID and fused keyword/semantic scores.
type FusedResult struct {
	PaperID       string
	Score         float64
	KeywordScore  float64
	SemanticScore float64
}

// NormalizeKeywordScores normalizes keyword scores to [0,1] by max.
func NormalizeKeywordScores(results []*keyword.Result) map[string]float64 {
	if len(results) == 0 {
		return make(map[string]float64)
	}
	maxScore := results[0].Score
	for _, r := range results {
		if r.Score > maxScore {
			maxScore = r.Score
		}
	}
	normalized := make(map[string]float64, len(results))
	for _, r := range results {
		if maxScore > 0 {
			normalized[r.ID] = r.Score / maxScore
		} else {
			normalized[r.ID] = 0
		}
	}
	return normalized
}

// AggregateByPaper reduces chunk matches to paper ID -> best chunk similarity.
// Matches without a paper ID in their metadata are ignored.
func AggregateByPaper(matches []vector.Match, paperIDKey string) map[string]float64 {
	byPaper := make(map[string]float64)
	for _, m := range matches {
		id := m.Metadata[paperIDKey]
		if id == "" {
			continue
		}
		if s, ok := byPaper[id]; !ok || m.Similarity > s {
			byPaper[id] = m.Similarity
		}
	}
	return byPaper
}

// Fuse merges keyword and semantic score maps with weights and returns results sorted
// by fused score. Equal scores are ordered by paper ID so output is stable.
func Fuse(keywordScores, semanticScores map[string]float64, keywordWeight, semanticWeight float64) []*FusedResult {
	scoreMap := make(map[string]*FusedResult)
	for id, score := range keywordScores {
		scoreMap[id] = &FusedResult{
			PaperID:      id,
			KeywordScore: score,
		}
	}
	for id, score := range semanticScores {
		if result, exists := scoreMap[id]; exists {
			result.SemanticScore = score
		} else {
			scoreMap[id] = &FusedResult{
				PaperID:       id,
				SemanticScore: score,
			}
		}
	}
	results := make([]*FusedResult, 0, len(scoreMap))
	for _, result := range scoreMap {
		result.Score = (keywordWeight * result.KeywordScore) + (semanticWeight * result.SemanticScore)
		results = append(results, result)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].PaperID < results[j].PaperID
	})
	return results
}
