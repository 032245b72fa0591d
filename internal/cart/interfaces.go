package cart

import (
	"context"

	"github.com/angelmondragon/gobacks-backend/pkg/db/models"
	"gorm.io/gorm"
)

// CartRepository defines the persistence surface required by the cart service.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	CreateCart(ctx context.Context, cart *models.Cart) error
	ListCarts(ctx context.Context) ([]models.Cart, error)
	FindCart(ctx context.Context, id int64) (*models.Cart, error)
	LockCart(ctx context.Context, id int64) (*models.Cart, error)
	DeleteCart(ctx context.Context, id int64) (int64, error)
	InsertItems(ctx context.Context, items []models.Item) error
	ListItems(ctx context.Context, cartID int64) ([]models.Item, error)
	DeleteItemsByCart(ctx context.Context, cartID int64) (int64, error)
	DeleteItems(ctx context.Context, cartID int64, ids []int64) ([]int64, error)
}
