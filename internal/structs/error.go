package structs

import "errors"

var (
	ErrNotFound          = errors.New("no rows in result set")
	ErrOutOfDeliveryZone = errors.New("the specified location is out of delivery")
)
