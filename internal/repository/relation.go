package repository

import (
	"context"
	"errors"
	"fmt"

	"foodgram/internal/models"
	"foodgram/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const pgForeignKeyViolation = "23503"

// relationTable describes where one relation kind is stored.
type relationTable struct {
	table        string
	targetColumn string
	target       string
	newRow       func(userID, targetID uint) any
}

var relationTables = map[models.RelationKind]relationTable{
	models.RelationFavorite: {
		table:        "favorites",
		targetColumn: "recipe_id",
		target:       "Recipe",
		newRow: func(userID, targetID uint) any {
			return &models.Favorite{UserID: userID, RecipeID: targetID}
		},
	},
	models.RelationCart: {
		table:        "cart_items",
		targetColumn: "recipe_id",
		target:       "Recipe",
		newRow: func(userID, targetID uint) any {
			return &models.CartItem{UserID: userID, RecipeID: targetID}
		},
	},
	models.RelationSubscription: {
		table:        "subscriptions",
		targetColumn: "author_id",
		target:       "User",
		newRow: func(userID, targetID uint) any {
			return &models.Subscription{UserID: userID, AuthorID: targetID}
		},
	},
}

func tableFor(kind models.RelationKind) (relationTable, error) {
	t, ok := relationTables[kind]
	if !ok {
		return relationTable{}, models.NewInternalError(fmt.Errorf("unknown relation kind %q", kind))
	}
	return t, nil
}

// RelationRepository stores favorites, cart items and subscriptions.
type RelationRepository interface {
	// Add inserts the (user, target) row. An existing row yields a Conflict error.
	Add(ctx context.Context, kind models.RelationKind, userID, targetID uint) error
	// Remove deletes the (user, target) row. A missing row yields a NotFound error.
	Remove(ctx context.Context, kind models.RelationKind, userID, targetID uint) error
	Exists(ctx context.Context, kind models.RelationKind, userID, targetID uint) (bool, error)
	// TargetIDs reports which of candidates userID is related to.
	TargetIDs(ctx context.Context, kind models.RelationKind, userID uint, candidates []uint) (map[uint]bool, error)
}

type relationRepository struct {
	db *gorm.DB
}

// NewRelationRepository returns a new RelationRepository implementation.
func NewRelationRepository(db *gorm.DB) RelationRepository {
	return &relationRepository{db: db}
}

func isForeignKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	return errors.Is(err, gorm.ErrForeignKeyViolated)
}

func (r *relationRepository) Add(ctx context.Context, kind models.RelationKind, userID, targetID uint) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}
	defer observability.TrackQuery("insert", t.table)()

	res := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(t.newRow(userID, targetID))
	switch {
	case res.Error != nil && isUniqueConstraintError(res.Error):
		return models.NewConflictError(fmt.Sprintf("%s already exists", kind))
	case res.Error != nil && isForeignKeyError(res.Error):
		return models.NewNotFoundError(t.target, targetID)
	case res.Error != nil:
		return models.NewInternalError(res.Error)
	case res.RowsAffected == 0:
		return models.NewConflictError(fmt.Sprintf("%s already exists", kind))
	}
	return nil
}

func (r *relationRepository) Remove(ctx context.Context, kind models.RelationKind, userID, targetID uint) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}
	defer observability.TrackQuery("delete", t.table)()

	res := r.db.WithContext(ctx).
		Where("user_id = ? AND "+t.targetColumn+" = ?", userID, targetID).
		Delete(t.newRow(0, 0))
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewRelationNotFoundError(kind)
	}
	return nil
}

func (r *relationRepository) Exists(ctx context.Context, kind models.RelationKind, userID, targetID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	t, err := tableFor(kind)
	if err != nil {
		return false, err
	}
	var n int64
	if err := readDB(r.db).WithContext(ctx).
		Table(t.table).
		Where("user_id = ? AND "+t.targetColumn+" = ?", userID, targetID).
		Limit(1).
		Count(&n).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}

func (r *relationRepository) TargetIDs(ctx context.Context, kind models.RelationKind, userID uint, candidates []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(candidates))
	if userID == 0 || len(candidates) == 0 {
		return out, nil
	}
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	var ids []uint
	if err := readDB(r.db).WithContext(ctx).
		Table(t.table).
		Where("user_id = ? AND "+t.targetColumn+" IN ?", userID, candidates).
		Pluck(t.targetColumn, &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
