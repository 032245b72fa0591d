package models

import dbtypes "github.com/angelmondragon/gobacks-backend/pkg/db/types"

// Item is a located, photographed object owned by exactly one Cart.
type Item struct {
	ID           int64        `gorm:"column:id;primaryKey;autoIncrement"`
	CartID       int64        `gorm:"column:cart_id;not null"`
	CreationDate int64        `gorm:"column:creation_date;not null;default:(-)"`
	Section      string       `gorm:"column:section;not null"`
	Corridor     int32        `gorm:"column:corridor;not null"`
	Shelf        int32        `gorm:"column:shelf;not null"`
	Subshelf     *int32       `gorm:"column:subshelf"`
	Photo        string       `gorm:"column:photo;not null"`
	IsCold       dbtypes.Flag `gorm:"column:is_cold;not null"`
}

func (Item) TableName() string {
	return "items"
}
