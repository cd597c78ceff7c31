package ordering

import "strconv"

// Item is the statically typed orderable item. A nil Order means the item
// still needs an order value.
type Item struct {
	ID    string `json:"id" yaml:"id" msgpack:"id"`
	Order *int   `json:"order" yaml:"order" msgpack:"order"`
}

func NewItem(id string, order int) Item {
	return Item{ID: id, Order: &order}
}

func NewUnorderedItem(id string) Item {
	return Item{ID: id}
}

// OrderValue returns the order, or -1 when it is unset.
func (i Item) OrderValue() int {
	if i.Order == nil {
		return -1
	}
	return *i.Order
}

func (i Item) String() string {
	order := "null"
	if i.Order != nil {
		order = strconv.Itoa(*i.Order)
	}
	return "{id: " + strconv.Quote(i.ID) + ", order: " + order + "}"
}

// ItemAccessor is the Accessor for Item. An empty ID is treated as a missing
// primary key.
type ItemAccessor struct{}

func (ItemAccessor) Key(item Item) (string, bool) {
	return item.ID, item.ID != ""
}

func (ItemAccessor) Order(item Item) (int, Field) {
	if item.Order == nil {
		return 0, FieldNull
	}
	if *item.Order < 0 || *item.Order > MaxOrder {
		return *item.Order, FieldMalformed
	}
	return *item.Order, FieldSet
}

func (ItemAccessor) SetOrder(item Item, order int) Item {
	item.Order = &order
	return item
}
