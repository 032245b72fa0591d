package cart

import (
	cartdto "github.com/angelmondragon/gobacks-backend/api/controllers/cart/dto"
	"github.com/angelmondragon/gobacks-backend/internal/cart"
)

func toCreateCartInput(payload cartdto.CreateCartRequest) cart.CreateCartInput {
	input := cart.CreateCartInput{Items: toItemInputs(payload.Items)}
	if payload.Name != nil {
		input.Name = *payload.Name
	}
	return input
}

func toMutateItemsInput(payload cartdto.MutateItemsRequest) cart.MutateItemsInput {
	deleted := payload.ItemsDeleted
	if deleted == nil {
		deleted = []int64{}
	}
	return cart.MutateItemsInput{
		Created: toItemInputs(payload.ItemsCreated),
		Deleted: deleted,
	}
}

func toItemInputs(payload []cartdto.ItemRequest) []cart.ItemInput {
	items := make([]cart.ItemInput, 0, len(payload))
	for _, item := range payload {
		in := cart.ItemInput{
			Section:  item.Section,
			Subshelf: item.Subshelf,
			IsCold:   item.IsCold,
		}
		if item.Corridor != nil {
			in.Corridor = *item.Corridor
		}
		if item.Shelf != nil {
			in.Shelf = *item.Shelf
		}
		if item.Photo != nil {
			in.Photo = *item.Photo
		}
		items = append(items, in)
	}
	return items
}
