package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"foodgram/internal/featureflags"
	"foodgram/internal/models"
	"foodgram/internal/observability"
	"foodgram/internal/repository"
)

// ShoppingListContentType is the media type of a rendered shopping list.
const ShoppingListContentType = "text/plain; charset=utf-8"

// ShoppingList is a rendered, downloadable shopping list.
type ShoppingList struct {
	Filename    string
	ContentType string
	Body        []byte
	Lines       []models.ShoppingListLine
}

// ShoppingListService builds the aggregated ingredient list for a user's cart.
type ShoppingListService struct {
	repo     repository.ShoppingListRepository
	flags    *featureflags.Manager
	filename string
}

// NewShoppingListService returns a new ShoppingListService.
func NewShoppingListService(repo repository.ShoppingListRepository, flags *featureflags.Manager, filename string) *ShoppingListService {
	if filename == "" {
		filename = "shopping_list.txt"
	}
	return &ShoppingListService{repo: repo, flags: flags, filename: filename}
}

// Aggregate groups lines by ingredient id, sums their amounts and orders the
// result by ingredient id ascending.
func Aggregate(lines []models.ShoppingListLine) []models.ShoppingListLine {
	byID := make(map[uint]int, len(lines))
	out := make([]models.ShoppingListLine, 0, len(lines))
	for _, line := range lines {
		if i, ok := byID[line.IngredientID]; ok {
			out[i].Amount += line.Amount
			continue
		}
		byID[line.IngredientID] = len(out)
		out = append(out, line)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IngredientID < out[j].IngredientID })
	return out
}

// Render formats aggregated lines as "{name}: {amount} {unit}", one per line.
func Render(lines []models.ShoppingListLine) string {
	rows := make([]string, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, fmt.Sprintf("%s: %d %s", line.Name, line.Amount, line.MeasurementUnit))
	}
	return strings.Join(rows, "\n")
}

// Download aggregates the user's cart into a text shopping list. An empty
// cart yields an empty body.
func (s *ShoppingListService) Download(ctx context.Context, userID uint) (list *ShoppingList, err error) {
	ctx, span := observability.StartSpan(ctx, "service", "DownloadShoppingList")
	defer func() { observability.EndSpan(span, err) }()

	strategy := "memory"
	var lines []models.ShoppingListLine
	if s.flags.Enabled(featureflags.ShoppingListSQLGrouping, userID) {
		strategy = "sql"
		lines, err = s.repo.AggregatedLines(ctx, userID)
	} else {
		var raw []models.ShoppingListLine
		raw, err = s.repo.CartLines(ctx, userID)
		lines = Aggregate(raw)
	}
	if err != nil {
		return nil, err
	}

	observability.ShoppingListDownloads.WithLabelValues(strategy).Inc()
	observability.ShoppingListLines.Observe(float64(len(lines)))

	return &ShoppingList{
		Filename:    s.filename,
		ContentType: ShoppingListContentType,
		Body:        []byte(Render(lines)),
		Lines:       lines,
	}, nil
}
