// Package seed populates an empty items collection with demo data so a
// fresh deployment has something to show.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/psiu/items-api/internal/model"
	"github.com/psiu/items-api/internal/repository"
	"github.com/psiu/items-api/internal/usecase"
)

const demoDescription = "Lorem ipsum dolor sit amet, consectetur adipiscing elit. Nulla suscipit."

type demoItem struct {
	title    string
	status   model.Status
	priority float64
}

var demoItems = []demoItem{
	{title: "Macbook M5", status: model.StatusTodo, priority: 3},
	{title: "Iphone 17 Pro Max", status: model.StatusDoing, priority: 2},
	{title: "Notebook Alienware M18", status: model.StatusDoing, priority: 2},
	{title: "RTX 5090 Ti", status: model.StatusDoing, priority: 2},
	{title: "IPad Pro 12.9", status: model.StatusDoing, priority: 2},
	{title: "Processador i9-13900K", status: model.StatusDoing, priority: 2},
	{title: "Teclado Razer BlackWidow V4", status: model.StatusDoing, priority: 2},
	{title: "Mouse Logitech Superlight", status: model.StatusDoing, priority: 2},
	{title: "Microfone Blue Yeti X", status: model.StatusDoing, priority: 2},
	{title: "Headset SteelSeries Arctis Pro", status: model.StatusDoing, priority: 2},
}

// Run inserts the demo items through the create use case when the
// collection holds no documents at all. A non-empty collection, even one
// holding only soft-deleted records, is left alone.
func Run(ctx context.Context, repo *repository.ItemRepository, create *usecase.CreateItem, logger *slog.Logger) error {
	count, err := repo.CountAll(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	for _, d := range demoItems {
		title := d.title
		description := demoDescription
		status := string(d.status)
		priority := d.priority
		input := model.ItemInput{
			Title:       &title,
			Description: &description,
			Status:      &status,
			Priority:    &priority,
			CreatedAt:   &now,
		}
		if _, err := create.Execute(ctx, input); err != nil {
			return fmt.Errorf("seed item %q: %w", d.title, err)
		}
	}

	logger.Info("seeded items collection", slog.Int("count", len(demoItems)))
	return nil
}
