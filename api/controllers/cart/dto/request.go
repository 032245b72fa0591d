package cartdto

// ItemRequest describes an item to create. is_cold defaults to false when omitted.
type ItemRequest struct {
	Section  string  `json:"section" validate:"required,len=1"`
	Corridor *int32  `json:"corridor" validate:"required"`
	Shelf    *int32  `json:"shelf" validate:"required"`
	Subshelf *int32  `json:"subshelf"`
	Photo    *string `json:"photo" validate:"required"`
	IsCold   *bool   `json:"is_cold"`
}

// CreateCartRequest is the body of POST /cart.
type CreateCartRequest struct {
	Name  *string       `json:"name" validate:"required"`
	Items []ItemRequest `json:"items" validate:"dive"`
}

// MutateItemsRequest is the body of POST /cart/{cartId}.
type MutateItemsRequest struct {
	ItemsCreated []ItemRequest `json:"items_created" validate:"dive"`
	ItemsDeleted []int64       `json:"items_deleted"`
}
