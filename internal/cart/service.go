package cart

import (
	"context"
	"fmt"

	"github.com/angelmondragon/gobacks-backend/pkg/db"
	"github.com/angelmondragon/gobacks-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/gobacks-backend/pkg/db/types"
	pkgerrors "github.com/angelmondragon/gobacks-backend/pkg/errors"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes cart persistence operations.
type Service interface {
	CreateCart(ctx context.Context, input CreateCartInput) (*CartWithItems, error)
	ListCarts(ctx context.Context) ([]models.Cart, error)
	GetCart(ctx context.Context, cartID int64) (*CartWithItems, error)
	DeleteCart(ctx context.Context, cartID int64) (bool, error)
	MutateItems(ctx context.Context, cartID int64, input MutateItemsInput) (*MutationResult, error)
}

type service struct {
	repo CartRepository
	tx   txRunner
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// ItemInput describes an item to be created. IsCold defaults to false when nil.
type ItemInput struct {
	Section  string
	Corridor int32
	Shelf    int32
	Subshelf *int32
	Photo    string
	IsCold   *bool
}

// CreateCartInput is the payload for CreateCart.
type CreateCartInput struct {
	Name  string
	Items []ItemInput
}

// MutateItemsInput carries the items to add and the item ids to remove.
type MutateItemsInput struct {
	Created []ItemInput
	Deleted []int64
}

// CartWithItems is a cart together with its items ordered by id.
type CartWithItems struct {
	Cart  models.Cart
	Items []models.Item
}

// MutationResult reports what a bulk mutation changed and the cart's items afterwards.
type MutationResult struct {
	Deleted []int64
	Added   []int64
	Items   []models.Item
}

// CreateCart inserts the cart and, when present, its items in one transaction.
func (s *service) CreateCart(ctx context.Context, input CreateCartInput) (*CartWithItems, error) {
	var result CartWithItems
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart := models.Cart{Name: input.Name}
		if err := repo.CreateCart(ctx, &cart); err != nil {
			return db.Classify(err, "create cart")
		}

		items := buildItems(cart.ID, input.Items)
		if len(items) > 0 {
			if err := repo.InsertItems(ctx, items); err != nil {
				return db.Classify(err, "insert cart items")
			}
		}

		result = CartWithItems{Cart: cart, Items: items}
		return nil
	})
	if err != nil {
		return nil, db.Classify(err, "create cart")
	}
	return &result, nil
}

// ListCarts returns all carts without their items.
func (s *service) ListCarts(ctx context.Context) ([]models.Cart, error) {
	carts, err := s.repo.ListCarts(ctx)
	if err != nil {
		return nil, db.Classify(err, "list carts")
	}
	return carts, nil
}

// GetCart loads a cart and its items from a single transaction.
func (s *service) GetCart(ctx context.Context, cartID int64) (*CartWithItems, error) {
	var result CartWithItems
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := repo.FindCart(ctx, cartID)
		if err != nil {
			return notFoundOr(err, "get cart")
		}
		items, err := repo.ListItems(ctx, cartID)
		if err != nil {
			return db.Classify(err, "list cart items")
		}

		result = CartWithItems{Cart: *cart, Items: items}
		return nil
	})
	if err != nil {
		return nil, db.Classify(err, "get cart")
	}
	return &result, nil
}

// DeleteCart removes the cart's items and then the cart. A missing cart rolls the
// transaction back and reports not found.
func (s *service) DeleteCart(ctx context.Context, cartID int64) (bool, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.DeleteItemsByCart(ctx, cartID); err != nil {
			return db.Classify(err, "delete cart items")
		}
		affected, err := repo.DeleteCart(ctx, cartID)
		if err != nil {
			return db.Classify(err, "delete cart")
		}
		if affected == 0 {
			return cartNotFound()
		}
		return nil
	})
	if err != nil {
		return false, db.Classify(err, "delete cart")
	}
	return true, nil
}

// MutateItems deletes, then inserts, then re-reads the cart's items in one
// transaction so the returned snapshot reflects exactly this mutation.
func (s *service) MutateItems(ctx context.Context, cartID int64, input MutateItemsInput) (*MutationResult, error) {
	result := MutationResult{Deleted: []int64{}, Added: []int64{}}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if len(input.Deleted) == 0 && len(input.Created) == 0 {
			if _, err := repo.FindCart(ctx, cartID); err != nil {
				return notFoundOr(err, "get cart")
			}
		} else if _, err := repo.LockCart(ctx, cartID); err != nil {
			return notFoundOr(err, "lock cart")
		}

		if len(input.Deleted) > 0 {
			deleted, err := repo.DeleteItems(ctx, cartID, input.Deleted)
			if err != nil {
				return db.Classify(err, "delete items")
			}
			result.Deleted = deleted
		}

		if len(input.Created) > 0 {
			items := buildItems(cartID, input.Created)
			if err := repo.InsertItems(ctx, items); err != nil {
				return db.Classify(err, "insert items")
			}
			for _, item := range items {
				result.Added = append(result.Added, item.ID)
			}
		}

		items, err := repo.ListItems(ctx, cartID)
		if err != nil {
			return db.Classify(err, "list cart items")
		}
		result.Items = items
		return nil
	})
	if err != nil {
		return nil, db.Classify(err, "mutate items")
	}
	return &result, nil
}

func buildItems(cartID int64, inputs []ItemInput) []models.Item {
	items := make([]models.Item, 0, len(inputs))
	for _, in := range inputs {
		isCold := false
		if in.IsCold != nil {
			isCold = *in.IsCold
		}
		items = append(items, models.Item{
			CartID:   cartID,
			Section:  in.Section,
			Corridor: in.Corridor,
			Shelf:    in.Shelf,
			Subshelf: in.Subshelf,
			Photo:    in.Photo,
			IsCold:   dbtypes.Flag(isCold),
		})
	}
	return items
}

func cartNotFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
}

func notFoundOr(err error, message string) error {
	if db.IsNotFound(err) {
		return cartNotFound()
	}
	return db.Classify(err, message)
}
