package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/singladno/marinaobuv-sub001/internal/category"
	"github.com/singladno/marinaobuv-sub001/internal/category/dto"
	"github.com/singladno/marinaobuv-sub001/internal/category/tree"
	"github.com/singladno/marinaobuv-sub001/internal/model"
	"github.com/singladno/marinaobuv-sub001/pkg/cache"
	"github.com/singladno/marinaobuv-sub001/pkg/logger"
	"github.com/singladno/marinaobuv-sub001/pkg/search"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

const (
	snapshotKeyPrefix = "categories:flat:"
	writeLockPrefix   = "categories:lock:"
	writeLockTTL      = 10 * time.Second
	searchIndexName   = "categories"
	searchMapping     = `{
		"mappings": {
			"properties": {
				"merchantId": { "type": "keyword" },
				"parentId": { "type": "keyword" },
				"name": { "type": "text" },
				"slug": { "type": "keyword" },
				"urlPath": { "type": "text" },
				"isActive": { "type": "boolean" }
			}
		}
	}`
)

// SearchIndex is the part of the Elasticsearch client the use case needs.
type SearchIndex interface {
	CreateIndex(ctx context.Context, index, mapping string) error
	Index(ctx context.Context, index, id string, doc any) error
	Search(ctx context.Context, index string, query map[string]any) (*search.SearchResponse, error)
	Delete(ctx context.Context, index, id string) error
}

// EventPublisher publishes catalog events keyed by merchant.
type EventPublisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

type Options struct {
	ParentMode  tree.ParentMode
	ExpandDepth int
	CacheTTL    time.Duration
	Locale      language.Tag
}

type categoryUseCase struct {
	repo    category.Repository
	cache   *cache.RedisClient
	es      SearchIndex
	events  EventPublisher
	builder *tree.Builder
	opts    Options
	logger  logger.ZapLogger

	indexOnce sync.Once
	wg        sync.WaitGroup
	locks     sync.Map // merchant id -> chan struct{}
}

// NewCategoryUseCase wires the category use case. cache, es and events may
// be nil; the matching feature is then skipped.
func NewCategoryUseCase(repo category.Repository, cache *cache.RedisClient, es SearchIndex, events EventPublisher, log logger.ZapLogger, opts Options) category.UseCase {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.ExpandDepth <= 0 {
		opts.ExpandDepth = tree.DefaultExpandDepth
	}
	return &categoryUseCase{
		repo:    repo,
		cache:   cache,
		es:      es,
		events:  events,
		builder: tree.NewBuilder(opts.Locale),
		opts:    opts,
		logger:  log,
	}
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error) {
	if input.MerchantID == "" {
		return nil, category.ErrMerchantRequired
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, category.ErrNameRequired
	}

	unlock, err := uc.lockMerchant(ctx, input.MerchantID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	parentID := normalizeParent(input.ParentID)
	var parent *model.Category
	if parentID != nil {
		p, err := uc.repo.FindByID(ctx, input.MerchantID, *parentID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("parent %s: %w", *parentID, category.ErrInvalidParent)
		}
		parent = p
	}

	icon := optional(input.Icon)
	if icon != nil && parentID != nil {
		return nil, category.ErrIconNotAllowed
	}

	slug, err := uc.resolveSlug(ctx, input.MerchantID, parentID, input.Slug, name, "")
	if err != nil {
		return nil, err
	}

	now := time.Now()
	cat := &model.Category{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		MerchantID:  input.MerchantID,
		ParentID:    parentID,
		Name:        name,
		Slug:        slug,
		URLPath:     childPath(parent, slug),
		Description: optional(input.Description),
		Icon:        icon,
		SortOrder:   input.SortOrder,
		IsActive:    true,
	}

	if err := uc.repo.Create(ctx, cat); err != nil {
		return nil, err
	}

	uc.afterWrite(ctx, cat.MerchantID, cat.ID, "created", []model.Category{*cat}, nil)
	return cat, nil
}

func (uc *categoryUseCase) GetCategory(ctx context.Context, merchantID, id string) (*model.Category, error) {
	cat, err := uc.repo.FindByID(ctx, merchantID, id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, fmt.Errorf("%s: %w", id, category.ErrCategoryNotFound)
	}
	return cat, nil
}

func (uc *categoryUseCase) ListCategories(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, int, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *categoryUseCase) UpdateCategory(ctx context.Context, input *dto.UpdateCategoryInput) (*model.Category, error) {
	// Parent and slug checks read sibling and ancestor rows, so they run
	// under the same merchant lock as the write.
	if input.ParentID != nil || input.Slug != nil {
		unlock, err := uc.lockMerchant(ctx, input.MerchantID)
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	cat, err := uc.GetCategory(ctx, input.MerchantID, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, category.ErrNameRequired
		}
		cat.Name = name
	}

	moved := false
	if input.ParentID != nil {
		newParent := normalizeParent(input.ParentID)
		if newParent != nil {
			if err := uc.checkParent(ctx, cat, *newParent); err != nil {
				return nil, err
			}
		}
		moved = derefOr(newParent) != cat.Parent()
		cat.ParentID = newParent
	}

	slugChanged := false
	if input.Slug != nil {
		slug, err := uc.resolveSlug(ctx, cat.MerchantID, cat.ParentID, *input.Slug, cat.Name, cat.ID)
		if err != nil {
			return nil, err
		}
		slugChanged = slug != cat.Slug
		cat.Slug = slug
	} else if moved {
		taken, err := uc.repo.SlugExists(ctx, cat.MerchantID, cat.ParentID, cat.Slug, cat.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, fmt.Errorf("%q: %w", cat.Slug, category.ErrSlugTaken)
		}
	}

	if input.Icon != nil {
		cat.Icon = optional(*input.Icon)
	}
	if cat.Icon != nil && !cat.IsRoot() {
		return nil, category.ErrIconNotAllowed
	}
	if input.Description != nil {
		cat.Description = optional(*input.Description)
	}
	if input.SortOrder != nil {
		cat.SortOrder = *input.SortOrder
	}
	if input.IsActive != nil {
		cat.IsActive = *input.IsActive
	}
	cat.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, cat); err != nil {
		return nil, err
	}

	var changed map[string]model.Category
	if moved || slugChanged {
		changed, err = uc.syncPaths(ctx, cat.MerchantID)
		if err != nil {
			return nil, err
		}
		if c, ok := changed[cat.ID]; ok {
			cat.URLPath = c.URLPath
		}
	}
	reindex := reindexSet(changed, *cat)

	uc.afterWrite(ctx, cat.MerchantID, cat.ID, "updated", reindex, nil)
	return cat, nil
}

func (uc *categoryUseCase) DeleteCategory(ctx context.Context, merchantID, id string) error {
	unlock, err := uc.lockMerchant(ctx, merchantID)
	if err != nil {
		return err
	}
	defer unlock()

	if err := uc.freeRootSlugs(ctx, merchantID, id); err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, merchantID, id); err != nil {
		return err
	}

	// Children were promoted to roots, so their paths lose the prefix.
	changed, err := uc.syncPaths(ctx, merchantID)
	if err != nil {
		return err
	}
	uc.afterWrite(ctx, merchantID, id, "deleted", reindexSet(changed), []string{id})
	return nil
}

// checkParent rejects parents that do not exist or that would close a loop.
func (uc *categoryUseCase) checkParent(ctx context.Context, cat *model.Category, parentID string) error {
	if parentID == cat.ID {
		return fmt.Errorf("%s under itself: %w", cat.ID, category.ErrCategoryCycle)
	}
	records, err := uc.repo.FindAllByMerchant(ctx, cat.MerchantID)
	if err != nil {
		return err
	}
	idx := tree.NewIndex(records)
	if !idx.Has(parentID) {
		return fmt.Errorf("parent %s: %w", parentID, category.ErrInvalidParent)
	}
	if idx.WouldCreateCycle(cat.ID, parentID) {
		return fmt.Errorf("%s under %s: %w", cat.ID, parentID, category.ErrCategoryCycle)
	}
	return nil
}

// freeRootSlugs renames the children of id whose slug is already used by a
// root, since deleting id promotes them to roots. The new slug gets the
// first free numeric suffix.
func (uc *categoryUseCase) freeRootSlugs(ctx context.Context, merchantID, id string) error {
	records, err := uc.repo.FindAllByMerchant(ctx, merchantID)
	if err != nil {
		return err
	}
	rootSlugs := make(map[string]bool)
	taken := make(map[string]bool)
	var promoted []model.Category
	for _, r := range records {
		switch {
		case r.ID == id:
		case r.Parent() == id:
			promoted = append(promoted, r)
			taken[r.Slug] = true
		case r.IsRoot():
			rootSlugs[r.Slug] = true
			taken[r.Slug] = true
		}
	}
	for i := range promoted {
		c := &promoted[i]
		if !rootSlugs[c.Slug] {
			continue
		}
		c.Slug = nextFreeSlug(c.Slug, taken)
		taken[c.Slug] = true
		c.UpdatedAt = time.Now()
		if err := uc.repo.Update(ctx, c); err != nil {
			return err
		}
		uc.logger.Info("renamed promoted category slug",
			zap.String("merchant_id", merchantID), zap.String("category_id", c.ID), zap.String("slug", c.Slug))
	}
	return nil
}

// resolveSlug normalises a requested slug, deriving one from name when it
// is blank, and checks it is free among the siblings under parentID.
func (uc *categoryUseCase) resolveSlug(ctx context.Context, merchantID string, parentID *string, requested, name, excludeID string) (string, error) {
	slug := strings.ToLower(strings.TrimSpace(requested))
	if slug == "" {
		slug = Slugify(name)
	}
	if slug == "" {
		slug = "category-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}
	if !validSlug(slug) {
		return "", fmt.Errorf("%q: %w", slug, category.ErrInvalidSlug)
	}

	taken, err := uc.repo.SlugExists(ctx, merchantID, parentID, slug, excludeID)
	if err != nil {
		return "", err
	}
	if taken {
		return "", fmt.Errorf("%q: %w", slug, category.ErrSlugTaken)
	}
	return slug, nil
}

// syncPaths recomputes url_path for the whole merchant and stores the ones
// that differ. It returns the changed records keyed by id. Callers hold the
// merchant write lock.
func (uc *categoryUseCase) syncPaths(ctx context.Context, merchantID string) (map[string]model.Category, error) {
	records, err := uc.repo.FindAllByMerchant(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	idx := tree.NewIndex(records)

	paths := make(map[string]string)
	changed := make(map[string]model.Category)
	for _, r := range records {
		if p := idx.URLPath(r.ID); p != r.URLPath {
			paths[r.ID] = p
			r.URLPath = p
			changed[r.ID] = r
		}
	}
	if err := uc.repo.UpdatePaths(ctx, merchantID, paths); err != nil {
		return nil, err
	}
	return changed, nil
}

// lockMerchant serialises structural writes of one merchant: the parent,
// cycle and slug checks and the writes that depend on them. It holds an
// in-process lock and, with a cache, a Redis lock shared by all instances.
func (uc *categoryUseCase) lockMerchant(ctx context.Context, merchantID string) (func(), error) {
	v, _ := uc.locks.LoadOrStore(merchantID, make(chan struct{}, 1))
	local := v.(chan struct{})
	select {
	case local <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	release, err := uc.lockShared(ctx, merchantID)
	if err != nil {
		<-local
		return nil, err
	}
	return func() {
		release()
		<-local
	}, nil
}

// lockShared takes the Redis side of lockMerchant. Without a cache it is a
// no-op; a cache error degrades to running under the local lock only.
func (uc *categoryUseCase) lockShared(ctx context.Context, merchantID string) (func(), error) {
	if uc.cache == nil {
		return func() {}, nil
	}
	key := writeLockPrefix + merchantID
	owner := uuid.NewString()
	deadline := time.Now().Add(writeLockTTL)
	for {
		ok, err := uc.cache.AcquireLock(ctx, key, owner, writeLockTTL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			uc.logger.Warn("merchant write lock unavailable", zap.String("merchant_id", merchantID), zap.Error(err))
			return func() {}, nil
		}
		if ok {
			return func() {
				if err := uc.cache.ReleaseLock(context.WithoutCancel(ctx), key, owner); err != nil {
					uc.logger.Warn("failed to release merchant write lock", zap.String("merchant_id", merchantID), zap.Error(err))
				}
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("lock merchant %s: timed out", merchantID)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}

// afterWrite drops the merchant snapshot, then syncs the search index and
// publishes a CategoryChanged event in the background.
func (uc *categoryUseCase) afterWrite(ctx context.Context, merchantID, categoryID, action string, reindex []model.Category, removed []string) {
	if err := uc.InvalidateSnapshot(ctx, merchantID); err != nil {
		uc.logger.Warn("failed to invalidate category snapshot", zap.String("merchant_id", merchantID), zap.Error(err))
	}

	uc.background(func(ctx context.Context) {
		uc.syncToElastic(ctx, reindex, removed)
		uc.publish(ctx, merchantID, categoryID, action)
	})
}

func (uc *categoryUseCase) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		uc.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (uc *categoryUseCase) background(fn func(ctx context.Context)) {
	uc.wg.Add(1)
	go func() {
		defer uc.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		fn(ctx)
	}()
}

func (uc *categoryUseCase) syncToElastic(ctx context.Context, reindex []model.Category, removed []string) {
	if uc.es == nil {
		return
	}
	uc.ensureSearchIndex(ctx)
	for i := range reindex {
		if err := uc.es.Index(ctx, searchIndexName, reindex[i].ID, &reindex[i]); err != nil {
			uc.logger.Error("failed to index category", zap.String("category_id", reindex[i].ID), zap.Error(err))
		}
	}
	for _, id := range removed {
		if err := uc.es.Delete(ctx, searchIndexName, id); err != nil {
			uc.logger.Error("failed to delete category from ES", zap.String("category_id", id), zap.Error(err))
		}
	}
}

func (uc *categoryUseCase) ensureSearchIndex(ctx context.Context) {
	uc.indexOnce.Do(func() {
		if err := uc.es.CreateIndex(ctx, searchIndexName, searchMapping); err != nil {
			uc.logger.Warn("failed to create category index", zap.Error(err))
		}
	})
}

func (uc *categoryUseCase) publish(ctx context.Context, merchantID, categoryID, action string) {
	if uc.events == nil {
		return
	}
	data, err := json.Marshal(category.Event{
		EventID:   uuid.NewString(),
		EventType: category.EventCategoryChanged,
		Payload: category.EventPayload{
			MerchantID: merchantID,
			CategoryID: categoryID,
			Action:     action,
		},
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		uc.logger.Error("failed to encode category event", zap.Error(err))
		return
	}
	if err := uc.events.Publish(ctx, merchantID, data); err != nil {
		uc.logger.Error("failed to publish category event", zap.String("category_id", categoryID), zap.Error(err))
	}
}

func (uc *categoryUseCase) Snapshot(ctx context.Context, merchantID string) ([]model.Category, error) {
	if merchantID == "" {
		return nil, category.ErrMerchantRequired
	}
	key := snapshotKeyPrefix + merchantID

	if uc.cache != nil {
		var cached []model.Category
		err := uc.cache.GetJSON(ctx, key, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			uc.logger.Warn("category snapshot cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	records, err := uc.repo.FindAllByMerchant(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	records = tree.WithTotals(records)

	if uc.cache != nil {
		if err := uc.cache.SetJSON(ctx, key, records, uc.opts.CacheTTL); err != nil {
			uc.logger.Warn("category snapshot cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return records, nil
}

func (uc *categoryUseCase) InvalidateSnapshot(ctx context.Context, merchantID string) error {
	if uc.cache == nil {
		return nil
	}
	return uc.cache.Delete(ctx, snapshotKeyPrefix+merchantID)
}

func (uc *categoryUseCase) GetTree(ctx context.Context, merchantID, search string) ([]*tree.Node, error) {
	records, err := uc.Snapshot(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	return tree.Filter(uc.builder.Build(records), search), nil
}

func (uc *categoryUseCase) Flatten(ctx context.Context, merchantID, excludeID string) ([]tree.Entry, error) {
	records, err := uc.Snapshot(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	return tree.Flatten(uc.builder.Build(records), excludeID), nil
}

func (uc *categoryUseCase) ValidParents(ctx context.Context, merchantID, editingID string, mode *tree.ParentMode) ([]model.Category, error) {
	records, err := uc.Snapshot(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	m := uc.opts.ParentMode
	if mode != nil {
		m = *mode
	}
	return tree.ValidParents(records, editingID, m), nil
}

func (uc *categoryUseCase) ReconcileSelection(ctx context.Context, merchantID, previousID string) (string, error) {
	records, err := uc.Snapshot(ctx, merchantID)
	if err != nil {
		return "", err
	}
	sel := tree.NewSelection(uc.builder)
	sel.Select(previousID)
	sel.Reload(records)
	return sel.SelectedID(), nil
}

func (uc *categoryUseCase) Expansion(ctx context.Context, q *dto.TreeQuery) (map[string]bool, error) {
	forest, err := uc.GetTree(ctx, q.MerchantID, q.Search)
	if err != nil {
		return nil, err
	}
	return tree.Expansion(forest, tree.ExpansionOptions{
		Term:       q.Search,
		SelectedID: q.SelectedID,
		Depth:      uc.opts.ExpandDepth,
	}), nil
}

// SearchTree filters the merchant tree by the categories Elasticsearch
// matches for query. When the index is unavailable it falls back to the
// in-memory name and path filter.
func (uc *categoryUseCase) SearchTree(ctx context.Context, merchantID, query string) ([]*tree.Node, error) {
	records, err := uc.Snapshot(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	forest := uc.builder.Build(records)
	query = strings.TrimSpace(query)
	if query == "" || uc.es == nil {
		return tree.Filter(forest, query), nil
	}

	q := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": []map[string]any{
					{
						"multi_match": map[string]any{
							"query":  query,
							"type":   "phrase_prefix",
							"fields": []string{"name^3", "urlPath"},
						},
					},
				},
				"filter": []map[string]any{
					{"term": map[string]any{"merchantId": merchantID}},
				},
			},
		},
		"_source": false,
		"size":    max(len(records), 1),
	}

	res, err := uc.es.Search(ctx, searchIndexName, q)
	if err != nil {
		uc.logger.Error("ES category search failed, falling back to in-memory filter", zap.Error(err))
		return tree.Filter(forest, query), nil
	}

	ids := make(map[string]bool, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		ids[hit.ID] = true
	}
	return tree.FilterIDs(forest, ids), nil
}

func (uc *categoryUseCase) Lookup(ctx context.Context, merchantID string) (*tree.Index, error) {
	records, err := uc.Snapshot(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	return tree.NewIndex(records), nil
}

func normalizeParent(p *string) *string {
	if p == nil {
		return nil
	}
	id := strings.TrimSpace(*p)
	if id == "" {
		return nil
	}
	return &id
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func derefOr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func childPath(parent *model.Category, slug string) string {
	if parent == nil {
		return slug
	}
	base := parent.URLPath
	if base == "" {
		base = parent.Slug
	}
	return base + "/" + slug
}

// reindexSet returns extra followed by the changed records not already in
// extra, in id order.
func reindexSet(changed map[string]model.Category, extra ...model.Category) []model.Category {
	out := append([]model.Category(nil), extra...)
	seen := make(map[string]bool, len(extra))
	for _, r := range extra {
		seen[r.ID] = true
	}
	for _, id := range slices.Sorted(maps.Keys(changed)) {
		if !seen[id] {
			out = append(out, changed[id])
		}
	}
	return out
}
