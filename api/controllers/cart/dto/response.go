package cartdto

type Cart struct {
	ID           int64  `json:"id"`
	CreationDate int64  `json:"creation_date"`
	Name         string `json:"name"`
}

type Item struct {
	ID           int64  `json:"id"`
	CartID       int64  `json:"cart_id"`
	CreationDate int64  `json:"creation_date"`
	Section      string `json:"section"`
	Corridor     int32  `json:"corridor"`
	Shelf        int32  `json:"shelf"`
	Subshelf     *int32 `json:"subshelf"`
	Photo        string `json:"photo"`
	IsCold       bool   `json:"is_cold"`
}

// CartWithItems is returned by create and fetch.
type CartWithItems struct {
	Cart  Cart   `json:"cart"`
	Items []Item `json:"items"`
}

type CartList struct {
	Carts []Cart `json:"carts"`
}

// Mutation reports the ids touched by a bulk mutation and the cart's items afterwards.
type Mutation struct {
	ItemsDeleted []int64 `json:"items_deleted"`
	ItemsAdded   []int64 `json:"items_added"`
	Items        []Item  `json:"items"`
}
