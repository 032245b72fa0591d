package cart

import (
	cartdto "github.com/angelmondragon/gobacks-backend/api/controllers/cart/dto"
	cartsvc "github.com/angelmondragon/gobacks-backend/internal/cart"
	"github.com/angelmondragon/gobacks-backend/pkg/db/models"
)

func newCart(record models.Cart) cartdto.Cart {
	return cartdto.Cart{
		ID:           record.ID,
		CreationDate: record.CreationDate,
		Name:         record.Name,
	}
}

func newCartList(records []models.Cart) cartdto.CartList {
	carts := make([]cartdto.Cart, 0, len(records))
	for _, record := range records {
		carts = append(carts, newCart(record))
	}
	return cartdto.CartList{Carts: carts}
}

func newItems(records []models.Item) []cartdto.Item {
	items := make([]cartdto.Item, 0, len(records))
	for _, item := range records {
		items = append(items, cartdto.Item{
			ID:           item.ID,
			CartID:       item.CartID,
			CreationDate: item.CreationDate,
			Section:      item.Section,
			Corridor:     item.Corridor,
			Shelf:        item.Shelf,
			Subshelf:     item.Subshelf,
			Photo:        item.Photo,
			IsCold:       item.IsCold.Bool(),
		})
	}
	return items
}

func newCartWithItems(result *cartsvc.CartWithItems) cartdto.CartWithItems {
	return cartdto.CartWithItems{
		Cart:  newCart(result.Cart),
		Items: newItems(result.Items),
	}
}

func newMutation(result *cartsvc.MutationResult) cartdto.Mutation {
	return cartdto.Mutation{
		ItemsDeleted: nonNilIDs(result.Deleted),
		ItemsAdded:   nonNilIDs(result.Added),
		Items:        newItems(result.Items),
	}
}

func nonNilIDs(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
