package models

// Cart is a named collection of items. ID and CreationDate are assigned by the store.
type Cart struct {
	ID           int64  `gorm:"column:id;primaryKey;autoIncrement"`
	CreationDate int64  `gorm:"column:creation_date;not null;default:(-)"`
	Name         string `gorm:"column:name;not null"`
}

func (Cart) TableName() string {
	return "carts"
}
