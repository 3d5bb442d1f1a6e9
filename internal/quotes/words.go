package quotes

import (
	"context"
	"sort"

	"github.com/quotable-io/quotable/internal/models"
	"github.com/quotable-io/quotable/internal/vector"
)

// defaultWordPairs exercise a range of semantic relationships: identity,
// related words, unrelated words, translations, synonyms, and antonyms.
var defaultWordPairs = [][2]string{
	{"man", "man"},
	{"man", "woman"},
	{"man", "dirt"},
	{"king", "queen"},
	{"queen", "reine"},
	{"queen", "ملكة"},
	{"banana", "car"},
	{"happy", "joyful"},
	{"happy", "sad"},
}

// CompareWords embeds both words and returns their cosine similarity.
func (s *Service) CompareWords(ctx context.Context, word1, word2 string) (*models.WordSimilarity, error) {
	emb1, err := s.embedder.Embed(ctx, word1)
	if err != nil {
		return nil, err
	}
	emb2, err := s.embedder.Embed(ctx, word2)
	if err != nil {
		return nil, err
	}

	similarity, err := vector.Cosine(emb1, emb2)
	if err != nil {
		return nil, err
	}
	return &models.WordSimilarity{
		Word1:      word1,
		Word2:      word2,
		Similarity: similarity,
	}, nil
}

// WordPairs compares the default word pairs and returns them sorted by
// descending similarity; equal scores keep pair order. A pair that fails to
// embed is reported with similarity 0.0 and its error, and the remaining
// pairs are still compared.
func (s *Service) WordPairs(ctx context.Context) ([]models.WordSimilarity, error) {
	results := make([]models.WordSimilarity, 0, len(defaultWordPairs))
	for _, pair := range defaultWordPairs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ws, err := s.CompareWords(ctx, pair[0], pair[1])
		if err != nil {
			results = append(results, models.WordSimilarity{
				Word1:      pair[0],
				Word2:      pair[1],
				Similarity: 0.0,
				Error:      err.Error(),
			})
			continue
		}
		results = append(results, *ws)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	return results, nil
}
