package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/psiu/items-api/internal/model"
	"github.com/psiu/items-api/internal/objectid"
	"github.com/psiu/items-api/internal/repository"
)

// fakeRepo records the calls the use cases make and returns canned data.
type fakeRepo struct {
	insertedItem *model.Item
	insertID     string
	insertErr    error

	findItem *model.Item
	findErr  error

	updateID     string
	updatePatch  *model.ItemPatch
	updateResult *model.Item
	updateErr    error

	listQuery  repository.ListQuery
	listItems  []*model.Item
	listTotal  int64
	listErr    error
	listCalled bool
}

func (f *fakeRepo) Insert(ctx context.Context, item *model.Item) (string, error) {
	f.insertedItem = item
	if f.insertErr != nil {
		return "", f.insertErr
	}
	if f.insertID == "" {
		f.insertID = objectid.New()
	}
	item.ID = objectid.ID(f.insertID)
	return f.insertID, nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id string) (*model.Item, error) {
	return f.findItem, f.findErr
}

func (f *fakeRepo) Update(ctx context.Context, id string, patch *model.ItemPatch) (*model.Item, error) {
	f.updateID = id
	f.updatePatch = patch
	return f.updateResult, f.updateErr
}

func (f *fakeRepo) List(ctx context.Context, q repository.ListQuery) ([]*model.Item, int64, error) {
	f.listCalled = true
	f.listQuery = q
	return f.listItems, f.listTotal, f.listErr
}

func strptr(s string) *string   { return &s }
func numptr(f float64) *float64 { return &f }

func makeItems(n int) []*model.Item {
	items := make([]*model.Item, n)
	for i := range items {
		items[i] = &model.Item{
			ID:        objectid.ID(objectid.New()),
			Title:     "item",
			Status:    model.StatusTodo,
			Priority:  3,
			Available: true,
			CreatedAt: time.Now().UTC(),
		}
	}
	return items
}

func TestCreateItem(t *testing.T) {
	repo := &fakeRepo{}
	uc := NewCreateItem(repo)

	result, err := uc.Execute(context.Background(), model.ItemInput{Title: strptr("Macbook M5")})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if result.ID == "" {
		t.Fatal("no id assigned")
	}
	if string(result.Item.ID) != result.ID {
		t.Errorf("item id %q does not echo the assigned id %q", result.Item.ID, result.ID)
	}
	if !result.Item.Available {
		t.Error("created items must be available")
	}
	if result.Item.Status != model.StatusTodo || result.Item.Priority != model.DefaultPriority {
		t.Errorf("defaults not applied: %+v", result.Item)
	}
}

func TestCreateItem_InvalidPayloadSkipsRepository(t *testing.T) {
	repo := &fakeRepo{}
	uc := NewCreateItem(repo)

	_, err := uc.Execute(context.Background(), model.ItemInput{Title: strptr("ab")})
	if !model.IsValidationError(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if repo.insertedItem != nil {
		t.Error("invalid payloads must never reach the repository")
	}
}

func TestListItems_Pagination(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		returned int
		total    int64
		wantSkip int64
		wantMore bool
	}{
		{"first page of 25", 1, 10, 25, 0, true},
		{"second page of 25", 2, 10, 25, 10, true},
		{"last partial page of 25", 3, 5, 25, 20, false},
		{"exact fit", 1, 10, 10, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{listItems: makeItems(tt.returned), listTotal: tt.total}
			uc := NewListItems(repo)

			result, err := uc.Execute(context.Background(), ListRequest{Page: tt.page, Limit: 10})
			if err != nil {
				t.Fatalf("Execute returned error: %v", err)
			}

			if repo.listQuery.Skip != tt.wantSkip {
				t.Errorf("skip = %d, want %d", repo.listQuery.Skip, tt.wantSkip)
			}
			if result.HasMore != tt.wantMore {
				t.Errorf("hasMore = %v, want %v", result.HasMore, tt.wantMore)
			}
			if len(result.Items) != tt.returned {
				t.Errorf("returned %d items, want %d", len(result.Items), tt.returned)
			}
			if result.Total != tt.total {
				t.Errorf("total = %d, want %d", result.Total, tt.total)
			}
		})
	}
}

func TestListItems_Clamping(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		limit     int
		wantPage  int
		wantLimit int64
	}{
		{"zero values take defaults", 0, 0, 1, 10},
		{"negative page clamps to 1", -4, 20, 1, 20},
		{"negative limit clamps to 1", 2, -7, 2, 1},
		{"oversized limit clamps to 100", 1, 500, 1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{}
			uc := NewListItems(repo)

			result, err := uc.Execute(context.Background(), ListRequest{Page: tt.page, Limit: tt.limit})
			if err != nil {
				t.Fatalf("Execute returned error: %v", err)
			}
			if result.Page != tt.wantPage {
				t.Errorf("page = %d, want %d", result.Page, tt.wantPage)
			}
			if repo.listQuery.Limit != tt.wantLimit {
				t.Errorf("limit = %d, want %d", repo.listQuery.Limit, tt.wantLimit)
			}
		})
	}
}

func TestListItems_PassesFilters(t *testing.T) {
	repo := &fakeRepo{}
	uc := NewListItems(repo)

	_, err := uc.Execute(context.Background(), ListRequest{Status: model.StatusDone, Search: "macbook"})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if repo.listQuery.Status != model.StatusDone || repo.listQuery.Search != "macbook" {
		t.Errorf("filters not forwarded: %+v", repo.listQuery)
	}
}

func TestListItems_NilItemsBecomeEmptySlice(t *testing.T) {
	repo := &fakeRepo{listItems: nil, listTotal: 0}
	uc := NewListItems(repo)

	result, err := uc.Execute(context.Background(), ListRequest{})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if result.Items == nil {
		t.Error("items must be an empty slice, not nil")
	}
}

func TestUpdateItem(t *testing.T) {
	updated := makeItems(1)[0]
	repo := &fakeRepo{updateResult: updated}
	uc := NewUpdateItem(repo)

	item, err := uc.Execute(context.Background(), string(updated.ID), model.ItemInput{Status: strptr("done")})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if item != updated {
		t.Error("updated item not passed through")
	}
	if repo.updatePatch.Status == nil || *repo.updatePatch.Status != model.StatusDone {
		t.Errorf("status not in patch: %+v", repo.updatePatch)
	}
	if repo.updatePatch.Title != nil || repo.updatePatch.Priority != nil || repo.updatePatch.Available != nil {
		t.Errorf("absent fields leaked into the patch: %+v", repo.updatePatch)
	}
}

func TestUpdateItem_NotFound(t *testing.T) {
	repo := &fakeRepo{updateResult: nil}
	uc := NewUpdateItem(repo)

	_, err := uc.Execute(context.Background(), objectid.New(), model.ItemInput{Status: strptr("done")})
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateItem_InvalidPatchSkipsRepository(t *testing.T) {
	repo := &fakeRepo{}
	uc := NewUpdateItem(repo)

	_, err := uc.Execute(context.Background(), objectid.New(), model.ItemInput{Priority: numptr(6)})
	if !model.IsValidationError(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if repo.updatePatch != nil {
		t.Error("invalid patches must never reach the repository")
	}
}

func TestUpdateItem_DeleteIsAnAvailabilityPatch(t *testing.T) {
	item := makeItems(1)[0]
	item.Available = false
	repo := &fakeRepo{updateResult: item}
	uc := NewUpdateItem(repo)

	got, err := uc.Delete(context.Background(), string(item.ID))
	if err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if got != item {
		t.Error("soft-deleted item not returned")
	}

	patch := repo.updatePatch
	if patch.Available == nil || *patch.Available {
		t.Fatalf("delete must patch available=false, got %+v", patch)
	}
	if patch.Title != nil || patch.Description != nil || patch.Status != nil || patch.Priority != nil {
		t.Errorf("delete must touch nothing but availability: %+v", patch)
	}
}

func TestUpdateItem_DeleteNotFound(t *testing.T) {
	repo := &fakeRepo{}
	uc := NewUpdateItem(repo)

	_, err := uc.Delete(context.Background(), objectid.New())
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateItem_FindByIDPassesAbsenceThrough(t *testing.T) {
	repo := &fakeRepo{findItem: nil}
	uc := NewUpdateItem(repo)

	item, err := uc.FindByID(context.Background(), objectid.New())
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if item != nil {
		t.Errorf("expected absence, got %+v", item)
	}
}
