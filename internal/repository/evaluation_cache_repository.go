package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"evaluation-service/internal/models"
	"evaluation-service/shared/modules/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type IEvaluationCacheRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Evaluation, error)
	Set(ctx context.Context, evaluation *models.Evaluation) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// EvaluationCacheRepository caches full evaluations as JSON. A miss is
// (nil, nil).
type EvaluationCacheRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewEvaluationCacheRepository(client *redis.Client, ttl time.Duration) IEvaluationCacheRepository {
	return &EvaluationCacheRepository{client: client, ttl: ttl}
}

func evaluationKey(id uuid.UUID) string {
	return "evaluation:" + id.String()
}

func (r *EvaluationCacheRepository) Get(ctx context.Context, id uuid.UUID) (*models.Evaluation, error) {
	data, err := r.client.Get(ctx, evaluationKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached evaluation %s: %w", id, err)
	}

	var evaluation models.Evaluation
	if err := utils.DeserializeModel(data, &evaluation); err != nil {
		return nil, fmt.Errorf("failed to decode cached evaluation %s: %w", id, err)
	}
	return &evaluation, nil
}

func (r *EvaluationCacheRepository) Set(ctx context.Context, evaluation *models.Evaluation) error {
	data, err := utils.SerializeModel(evaluation)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, evaluationKey(evaluation.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache evaluation %s: %w", evaluation.ID, err)
	}
	return nil
}

func (r *EvaluationCacheRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, evaluationKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to evict evaluation %s: %w", id, err)
	}
	return nil
}
