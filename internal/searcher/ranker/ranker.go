// Package ranker scores products by accumulated term frequency.
package ranker

import (
	"sort"

	"github.com/Adithya-Monish-Kumar-K/megastore-search/internal/indexer/index"
)

// DefaultBoost is the weight of a single term occurrence.
const DefaultBoost = 1.0

type ScoredDoc struct {
	ProductID uint32  `json:"product_id"`
	Score     float64 `json:"score"`
}

// Params tunes scoring. A zero Boost means DefaultBoost.
type Params struct {
	Boost float64
}

// PostingSource is the read side of an index snapshot.
type PostingSource interface {
	EachPosting(term string, fn func(index.Posting))
}

// Rank scores every product that shares a term with the query. Each query
// term, repeated ones included, adds frequency*boost per posting. Results
// are ordered by score descending, then product id ascending, and cut to
// limit. The second value is the number of matching products before the
// cut. limit <= 0 yields no results.
func Rank(src PostingSource, terms []string, params Params, limit int) ([]ScoredDoc, int) {
	if limit <= 0 || len(terms) == 0 {
		return []ScoredDoc{}, 0
	}
	boost := params.Boost
	if boost == 0 {
		boost = DefaultBoost
	}

	scores := make(map[uint32]float64)
	for _, term := range terms {
		src.EachPosting(term, func(p index.Posting) {
			scores[p.ProductID] += float64(p.Frequency) * boost
		})
	}

	result := make([]ScoredDoc, 0, len(scores))
	for id, score := range scores {
		if score == 0 {
			continue
		}
		result = append(result, ScoredDoc{
			ProductID: id,
			Score:     score,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Score != result[j].Score {
			return result[i].Score > result[j].Score
		}
		return result[i].ProductID < result[j].ProductID
	})
	total := len(result)
	if len(result) > limit {
		result = result[:limit]
	}
	return result, total
}
