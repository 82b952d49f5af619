package vector

import (
	"context"
	"fmt"
	"log/slog"

	domainChat "github.com/consto/backend/internal/domain/chat"
	"github.com/consto/backend/internal/infrastructure/log"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// Store Qdrant 向量存储
// 同时承担检索（查询向量 -> 文档片段）和索引写入两个职责
type Store struct {
	client     *qdrant.Client
	embedder   domainChat.Embedder
	collection string
	logger     *slog.Logger
}

// NewStore 创建并连接 Qdrant 存储
func NewStore(host string, port int, apiKey, collection string, embedder domainChat.Embedder) (*Store, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: apiKey != "",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant: %w", err)
	}

	return &Store{
		client:     client,
		embedder:   embedder,
		collection: collection,
		logger:     log.NewModuleLogger("vector", "qdrant"),
	}, nil
}

// Close 关闭底层连接
func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// EnsureCollection 确保集合存在
// 已存在的集合不做任何修改，维度不匹配交给写入时报错
func (s *Store) EnsureCollection(ctx context.Context, vectorSize uint64) error {
	existing, err := s.client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	for _, name := range existing {
		if name == s.collection {
			return nil
		}
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", s.collection, err)
	}

	s.logger.Info("created qdrant collection",
		"collection", s.collection, "vector_size", vectorSize)
	return nil
}

// Retrieve 检索与查询最相关的文档片段
// 结果按相似度从高到低排序
func (s *Store) Retrieve(ctx context.Context, query string, limit int) ([]domainChat.RetrievedDocument, error) {
	vectors, err := s.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("invalid embedding result")
	}

	queryLimit := uint64(limit)
	hits, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vectors[0]...),
		Limit:          &queryLimit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query qdrant: %w", err)
	}

	docs := make([]domainChat.RetrievedDocument, 0, len(hits))
	for _, hit := range hits {
		payload := hit.GetPayload()
		doc := domainChat.RetrievedDocument{
			Source:  payload["source"].GetStringValue(),
			Content: payload["content"].GetStringValue(),
			Score:   hit.GetScore(),
		}
		if doc.Source == "" || doc.Content == "" {
			s.logger.Warn("skipping hit with incomplete payload", "id", hit.GetId())
			continue
		}
		docs = append(docs, doc)
	}

	s.logger.Debug("qdrant query completed",
		"collection", s.collection, "hits", len(docs))
	return docs, nil
}

// UpsertChunks 写入一个文档的全部片段
// 先删除同名文档的旧片段再写入，保证重新入库不会留下陈旧向量
func (s *Store) UpsertChunks(ctx context.Context, source string, chunks []string) error {
	if len(chunks) == 0 {
		return fmt.Errorf("chunks cannot be empty")
	}

	vectors, err := s.embedder.EmbedTexts(ctx, chunks)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	if err := s.deleteBySource(ctx, source); err != nil {
		return err
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(uuid.NewString()),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]interface{}{
				"source":      source,
				"content":     chunk,
				"chunk_index": i,
			}),
		}
	}

	_, err = s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	s.logger.Info("indexed document chunks",
		"source", source, "chunks", len(points))
	return nil
}

// DeleteAll 清空集合内的全部片段（重建索引前使用）
func (s *Store) DeleteAll(ctx context.Context) error {
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: &qdrant.Filter{},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to clear collection %s: %w", s.collection, err)
	}
	return nil
}

// deleteBySource 按来源删除片段
func (s *Store) deleteBySource(ctx context.Context, source string) error {
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: &qdrant.Filter{
					Must: []*qdrant.Condition{
						qdrant.NewMatch("source", source),
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete stale points for %s: %w", source, err)
	}
	return nil
}
