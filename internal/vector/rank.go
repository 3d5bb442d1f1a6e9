package vector

import "sort"

// Candidate is a stored vector eligible for ranking.
type Candidate struct {
	ID     string
	Vector []float32
}

// Ranked is a candidate scored against a query.
type Ranked struct {
	ID    string
	Score float64
}

// TopK scores every candidate against query by cosine similarity and returns
// the k best in descending score order. Equal scores keep candidate order.
// If k exceeds the number of candidates all are returned; k <= 0 returns an
// empty slice. A candidate whose dimension differs from the query aborts the
// ranking with a DimensionError.
func TopK(query []float32, candidates []Candidate, k int) ([]Ranked, error) {
	if k <= 0 || len(candidates) == 0 {
		return []Ranked{}, nil
	}
	ranked := make([]Ranked, len(candidates))
	for i, c := range candidates {
		score, err := Cosine(query, c.Vector)
		if err != nil {
			return nil, err
		}
		ranked[i] = Ranked{ID: c.ID, Score: score}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	if k > len(ranked) {
		k = len(ranked)
	}
	return ranked[:k], nil
}
