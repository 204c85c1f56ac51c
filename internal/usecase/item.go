// Package usecase orchestrates validation and persistence for the item
// tracker. It owns the public result contracts (creation envelope,
// pagination metadata) and the soft-delete rule; everything effectful is
// reached through the ItemRepository interface.
package usecase

import (
	"context"

	"github.com/psiu/items-api/internal/model"
	"github.com/psiu/items-api/internal/objectid"
	"github.com/psiu/items-api/internal/repository"
)

// ItemRepository is the persistence contract the use cases depend on.
// Absence is signalled as (nil, nil) by FindByID and Update; promoting it
// to an error is this layer's job.
type ItemRepository interface {
	Insert(ctx context.Context, item *model.Item) (string, error)
	FindByID(ctx context.Context, id string) (*model.Item, error)
	Update(ctx context.Context, id string, patch *model.ItemPatch) (*model.Item, error)
	List(ctx context.Context, q repository.ListQuery) ([]*model.Item, int64, error)
}

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// CreateResult is the creation envelope: the assigned id plus the item
// with that id echoed inside it.
type CreateResult struct {
	ID   string      `json:"_id"`
	Item *model.Item `json:"item"`
}

// CreateItem validates a creation payload and persists the resulting item.
type CreateItem struct {
	repo ItemRepository
}

// NewCreateItem creates the CreateItem use case.
func NewCreateItem(repo ItemRepository) *CreateItem {
	return &CreateItem{repo: repo}
}

// Execute normalizes the payload in creation mode and inserts it. The
// repository assigns the id.
func (uc *CreateItem) Execute(ctx context.Context, input model.ItemInput) (*CreateResult, error) {
	item, err := model.NewItem(input)
	if err != nil {
		return nil, err
	}
	id, err := uc.repo.Insert(ctx, item)
	if err != nil {
		return nil, err
	}
	item.ID = objectid.ID(id)
	return &CreateResult{ID: id, Item: item}, nil
}

// ListRequest is the caller-facing list criteria, in pages rather than
// offsets.
type ListRequest struct {
	Page   int
	Limit  int
	Status model.Status
	Search string
}

// ListResult is the uniform list envelope.
type ListResult struct {
	Items   []*model.Item `json:"items"`
	Page    int           `json:"page"`
	Limit   int           `json:"limit"`
	Total   int64         `json:"total"`
	HasMore bool          `json:"hasMore"`
}

// ListItems pages through visible items with optional status and search
// filters.
type ListItems struct {
	repo ItemRepository
}

// NewListItems creates the ListItems use case.
func NewListItems(repo ItemRepository) *ListItems {
	return &ListItems{repo: repo}
}

// Execute clamps the page to >= 1 and the limit to [1, 100] (defaulting to
// 1 and 10 when unset), translates them into skip/limit, and delegates to
// the repository. HasMore reports whether records remain past this page.
func (uc *ListItems) Execute(ctx context.Context, req ListRequest) (*ListResult, error) {
	page := req.Page
	if page < 1 {
		page = defaultPage
	}
	limit := req.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	skip := int64(page-1) * int64(limit)

	items, total, err := uc.repo.List(ctx, repository.ListQuery{
		Status: req.Status,
		Search: req.Search,
		Skip:   skip,
		Limit:  int64(limit),
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*model.Item{}
	}

	return &ListResult{
		Items:   items,
		Page:    page,
		Limit:   limit,
		Total:   total,
		HasMore: skip+int64(len(items)) < total,
	}, nil
}

// UpdateItem patches an existing item. Soft deletion and lookups share this
// use case the way they share a repository.
type UpdateItem struct {
	repo ItemRepository
}

// NewUpdateItem creates the UpdateItem use case.
func NewUpdateItem(repo ItemRepository) *UpdateItem {
	return &UpdateItem{repo: repo}
}

// Execute normalizes the payload in update mode and applies it. A miss in
// either id encoding is reported as model.ErrNotFound.
func (uc *UpdateItem) Execute(ctx context.Context, id string, input model.ItemInput) (*model.Item, error) {
	patch, err := model.NewPatch(input)
	if err != nil {
		return nil, err
	}
	item, err := uc.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, model.ErrNotFound
	}
	return item, nil
}

// Delete soft-deletes an item. It is an ordinary update with an implicit
// {available: false} patch, not a separate code path.
func (uc *UpdateItem) Delete(ctx context.Context, id string) (*model.Item, error) {
	unavailable := false
	return uc.Execute(ctx, id, model.ItemInput{Available: &unavailable})
}

// FindByID passes through to the repository. Absence stays (nil, nil) at
// this layer; the transport boundary decides how to report it.
func (uc *UpdateItem) FindByID(ctx context.Context, id string) (*model.Item, error) {
	return uc.repo.FindByID(ctx, id)
}
