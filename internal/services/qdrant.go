package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
)

// QdrantService maintains the candidate-profile vector index used by the
// semantic candidate search.
type QdrantService interface {
	InitCollection() error
	UpsertCandidate(ctx context.Context, candidateID, jobID uuid.UUID, name, text string, embedding []float32) error
	SearchCandidates(ctx context.Context, queryEmbedding []float32, jobID uuid.UUID, limit int) ([]CandidateHit, error)
	DeleteCandidate(ctx context.Context, candidateID uuid.UUID) error
}

type CandidateHit struct {
	CandidateID string
	JobID       string
	Name        string
	Score       float32
}

type qdrantService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
	logger         *zap.Logger
}

func NewQdrantService(urlStr, apiKey, collectionName string, logger *zap.Logger) (QdrantService, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port, 6334 by default
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantService{
		client:         client,
		collectionName: collectionName,
		vectorSize:     768, // text-embedding-004 size
		logger:         logger,
	}, nil
}

// InitCollection implements QdrantService.
func (q *qdrantService) InitCollection() error {
	ctx := context.Background()

	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	q.logger.Info("qdrant collection created", zap.String("collection", q.collectionName))
	return nil
}

// UpsertCandidate implements QdrantService.
func (q *qdrantService) UpsertCandidate(ctx context.Context, candidateID, jobID uuid.UUID, name, text string, embedding []float32) error {
	point := &qdrant.PointStruct{
		Id:      qdrant.NewIDUUID(candidateID.String()),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]interface{}{
			"candidate_id": candidateID.String(),
			"job_id":       jobID.String(),
			"name":         name,
			"text":         text,
		}),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	return nil
}

// SearchCandidates implements QdrantService.
func (q *qdrantService) SearchCandidates(ctx context.Context, queryEmbedding []float32, jobID uuid.UUID, limit int) ([]CandidateHit, error) {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("job_id", jobID.String()),
		},
	}

	searchResult, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	var hits []CandidateHit
	for _, point := range searchResult {
		payload := point.Payload

		hit := CandidateHit{Score: point.Score}
		if v, ok := payload["candidate_id"]; ok {
			if val, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
				hit.CandidateID = val.StringValue
			}
		}
		if v, ok := payload["job_id"]; ok {
			if val, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
				hit.JobID = val.StringValue
			}
		}
		if v, ok := payload["name"]; ok {
			if val, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
				hit.Name = val.StringValue
			}
		}

		hits = append(hits, hit)
	}

	return hits, nil
}

// DeleteCandidate implements QdrantService.
func (q *qdrantService) DeleteCandidate(ctx context.Context, candidateID uuid.UUID) error {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("candidate_id", candidateID.String()),
		},
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: filter,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete candidate points: %w", err)
	}

	return nil
}
