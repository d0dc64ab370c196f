package service

import (
	"context"
	"strconv"
	"time"

	"flowcore"
	"flowcore/internal/api/models"
	"flowcore/pkg"

	"github.com/redis/go-redis/v9"
)

// DraftStore keeps edits that have not reached the database yet, so a restart
// during the save debounce loses nothing.
type DraftStore interface {
	SaveDraft(ctx context.Context, endpointID uint, flow models.Flow) error
	LoadDraft(ctx context.Context, endpointID uint) (models.Flow, bool, error)
	DiscardDraft(ctx context.Context, endpointID uint) error
}

type FlowDraftStore struct {
	cache *pkg.JSONCache
	ttl   time.Duration
}

func NewFlowDraftStore(client *redis.Client, ttl time.Duration) *FlowDraftStore {
	return &FlowDraftStore{cache: pkg.NewJSONCache(client, "flow:draft:"), ttl: ttl}
}

// NewDefaultFlowDraftStore uses the process redis client and the configured TTL.
func NewDefaultFlowDraftStore() *FlowDraftStore {
	return NewFlowDraftStore(flowcore.Redis, flowcore.GetConfig().EditorConfig.DraftTTL)
}

func draftKey(endpointID uint) string {
	return strconv.FormatUint(uint64(endpointID), 10)
}

func (slf *FlowDraftStore) SaveDraft(ctx context.Context, endpointID uint, flow models.Flow) error {
	return slf.cache.Set(ctx, draftKey(endpointID), flow, slf.ttl)
}

func (slf *FlowDraftStore) LoadDraft(ctx context.Context, endpointID uint) (models.Flow, bool, error) {
	var flow models.Flow
	if err := slf.cache.Get(ctx, draftKey(endpointID), &flow); err != nil {
		if pkg.IsRedisNil(err) {
			return models.Flow{}, false, nil
		}
		return models.Flow{}, false, err
	}
	return flow, true, nil
}

func (slf *FlowDraftStore) DiscardDraft(ctx context.Context, endpointID uint) error {
	return slf.cache.Delete(ctx, draftKey(endpointID))
}
