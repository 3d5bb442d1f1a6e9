package store

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/quotable-io/quotable/internal/models"
	"github.com/quotable-io/quotable/internal/vector"
)

const scrollPageSize = 256

// QdrantStore implements Store on a Qdrant collection reached over gRPC.
// Insertion order is carried in a seq payload field because Qdrant itself
// keeps no ordering.
type QdrantStore struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
	dims        int
	seq         atomic.Int64
}

var (
	_ Store           = (*QdrantStore)(nil)
	_ NearestSearcher = (*QdrantStore)(nil)
)

// NewQdrantStore connects to addr and creates the collection with cosine
// distance if it does not exist yet.
func NewQdrantStore(ctx context.Context, addr, collection string, dims int) (*QdrantStore, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant connect: %w", err)
	}

	s := &QdrantStore{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
		dims:        dims,
	}
	// Seeding from the clock keeps seq increasing across restarts.
	s.seq.Store(time.Now().UnixNano())

	if err := s.ensureCollection(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("qdrant ensure collection: %w", err)
	}
	return s, nil
}

func (s *QdrantStore) ensureCollection(ctx context.Context) error {
	resp, err := s.collections.CollectionExists(ctx, &pb.CollectionExistsRequest{
		CollectionName: s.collection,
	})
	if err != nil {
		return err
	}
	if resp.GetResult().GetExists() {
		return nil
	}

	_, err = s.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(s.dims),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	return err
}

func (s *QdrantStore) Insert(ctx context.Context, rec *models.QuoteRecord) error {
	if len(rec.Embedding) != s.dims {
		return &vector.DimensionError{Want: s.dims, Got: len(rec.Embedding)}
	}

	payload := map[string]*pb.Value{
		"text":       {Kind: &pb.Value_StringValue{StringValue: rec.Text}},
		"category":   {Kind: &pb.Value_StringValue{StringValue: rec.Category}},
		"seq":        {Kind: &pb.Value_IntegerValue{IntegerValue: s.seq.Add(1)}},
		"created_at": {Kind: &pb.Value_StringValue{StringValue: rec.CreatedAt.Format(time.RFC3339Nano)}},
	}
	point := &pb.PointStruct{
		Id:      &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: rec.ID}},
		Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: rec.Embedding}}},
		Payload: payload,
	}

	_, err := s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: s.collection,
		Points:         []*pb.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("%w: insert quote: %v", ErrUnavailable, err)
	}
	return nil
}

// scroll pages through the whole collection, returning points sorted by seq.
func (s *QdrantStore) scroll(ctx context.Context, withVectors bool) ([]*pb.RetrievedPoint, error) {
	var all []*pb.RetrievedPoint
	var offset *pb.PointId
	limit := uint32(scrollPageSize)

	for {
		req := &pb.ScrollPoints{
			CollectionName: s.collection,
			Offset:         offset,
			Limit:          &limit,
			WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
		}
		if withVectors {
			req.WithVectors = &pb.WithVectorsSelector{SelectorOptions: &pb.WithVectorsSelector_Enable{Enable: true}}
		}

		resp, err := s.points.Scroll(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("%w: scroll quotes: %v", ErrUnavailable, err)
		}
		all = append(all, resp.GetResult()...)

		offset = resp.GetNextPageOffset()
		if offset == nil {
			break
		}
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].GetPayload()["seq"].GetIntegerValue() < all[j].GetPayload()["seq"].GetIntegerValue()
	})
	return all, nil
}

func (s *QdrantStore) FetchAll(ctx context.Context) ([]*models.QuoteRecord, error) {
	points, err := s.scroll(ctx, true)
	if err != nil {
		return nil, err
	}

	records := make([]*models.QuoteRecord, 0, len(points))
	for _, pt := range points {
		payload := pt.GetPayload()
		rec := &models.QuoteRecord{
			ID:        pt.GetId().GetUuid(),
			Text:      payload["text"].GetStringValue(),
			Category:  payload["category"].GetStringValue(),
			Embedding: pt.GetVectors().GetVector().GetData(),
		}
		if raw := payload["created_at"].GetStringValue(); raw != "" {
			if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
				rec.CreatedAt = ts
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *QdrantStore) List(ctx context.Context) ([]*models.QuoteSummary, error) {
	points, err := s.scroll(ctx, false)
	if err != nil {
		return nil, err
	}

	quotes := make([]*models.QuoteSummary, 0, len(points))
	for _, pt := range points {
		payload := pt.GetPayload()
		quotes = append(quotes, &models.QuoteSummary{
			Text:     payload["text"].GetStringValue(),
			Category: payload["category"].GetStringValue(),
		})
	}
	return quotes, nil
}

// SearchNearest delegates ranking to Qdrant and re-sorts equal scores by
// insertion order, which Qdrant does not guarantee.
func (s *QdrantStore) SearchNearest(ctx context.Context, query []float32, k int) ([]*models.ScoredQuote, error) {
	if k <= 0 {
		return []*models.ScoredQuote{}, nil
	}
	if len(query) != s.dims {
		return nil, &vector.DimensionError{Want: s.dims, Got: len(query)}
	}

	resp, err := s.points.Search(ctx, &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         query,
		Limit:          uint64(k),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: search quotes: %v", ErrUnavailable, err)
	}

	type scored struct {
		quote *models.ScoredQuote
		seq   int64
	}
	hits := make([]scored, len(resp.GetResult()))
	for i, pt := range resp.GetResult() {
		payload := pt.GetPayload()
		hits[i] = scored{
			quote: &models.ScoredQuote{
				Text:       payload["text"].GetStringValue(),
				Category:   payload["category"].GetStringValue(),
				Similarity: float64(pt.GetScore()),
			},
			seq: payload["seq"].GetIntegerValue(),
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].quote.Similarity == hits[j].quote.Similarity {
			return hits[i].seq < hits[j].seq
		}
		return hits[i].quote.Similarity > hits[j].quote.Similarity
	})

	results := make([]*models.ScoredQuote, len(hits))
	for i, h := range hits {
		results[i] = h.quote
	}
	return results, nil
}

func (s *QdrantStore) Count(ctx context.Context) (int, error) {
	exact := true
	resp, err := s.points.Count(ctx, &pb.CountPoints{
		CollectionName: s.collection,
		Exact:          &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: count quotes: %v", ErrUnavailable, err)
	}
	return int(resp.GetResult().GetCount()), nil
}

func (s *QdrantStore) Clear(ctx context.Context) (int, error) {
	count, err := s.Count(ctx)
	if err != nil {
		return 0, err
	}

	// An empty filter selects every point in the collection.
	_, err = s.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: s.collection,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Filter{Filter: &pb.Filter{}},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("%w: clear quotes: %v", ErrUnavailable, err)
	}
	return count, nil
}

func (s *QdrantStore) Ping(ctx context.Context) error {
	if _, err := s.collections.List(ctx, &pb.ListCollectionsRequest{}); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *QdrantStore) Close() error {
	return s.conn.Close()
}
