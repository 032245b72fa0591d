package cart

import (
	"context"
	"sort"

	"github.com/angelmondragon/gobacks-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes persistence operations for carts and their items.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// CreateCart inserts a cart; the store fills in ID and CreationDate.
func (r *Repository) CreateCart(ctx context.Context, cart *models.Cart) error {
	return r.db.WithContext(ctx).Create(cart).Error
}

// ListCarts returns every cart ordered by id.
func (r *Repository) ListCarts(ctx context.Context) ([]models.Cart, error) {
	carts := []models.Cart{}
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&carts).Error; err != nil {
		return nil, err
	}
	return carts, nil
}

// FindCart loads a cart by id, returning gorm.ErrRecordNotFound when absent.
func (r *Repository) FindCart(ctx context.Context, id int64) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// LockCart loads a cart with a row lock held until the surrounding transaction ends.
// SQLite has no row locks; its single writer connection serializes the transaction instead.
func (r *Repository) LockCart(ctx context.Context, id int64) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// DeleteCart removes the cart row and reports the rows affected.
func (r *Repository) DeleteCart(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Cart{})
	return res.RowsAffected, res.Error
}

// InsertItems writes all items in one batch statement, filling generated columns in order.
func (r *Repository) InsertItems(ctx context.Context, items []models.Item) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// ListItems returns the items of a cart ordered by id.
func (r *Repository) ListItems(ctx context.Context, cartID int64) ([]models.Item, error) {
	items := []models.Item{}
	err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteItemsByCart removes every item owned by the cart.
func (r *Repository) DeleteItemsByCart(ctx context.Context, cartID int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.Item{})
	return res.RowsAffected, res.Error
}

// DeleteItems removes the listed items that belong to cartID and returns the ids
// actually deleted, ascending. Ids owned by other carts are left alone.
func (r *Repository) DeleteItems(ctx context.Context, cartID int64, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return []int64{}, nil
	}

	var removed []models.Item
	err := r.db.WithContext(ctx).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "id"}}}).
		Where("cart_id = ? AND id IN ?", cartID, ids).
		Delete(&removed).Error
	if err != nil {
		return nil, err
	}

	deleted := make([]int64, 0, len(removed))
	for _, item := range removed {
		deleted = append(deleted, item.ID)
	}
	sort.Slice(deleted, func(i, j int) bool { return deleted[i] < deleted[j] })
	return deleted, nil
}
