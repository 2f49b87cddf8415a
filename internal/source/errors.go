package source

import "errors"

var (
	// ErrFetch indicates a transport error, a non-2xx status or a malformed body.
	ErrFetch = errors.New("fetching product")
	// ErrInvalidStock indicates a stock figure that is not a number.
	ErrInvalidStock = errors.New("invalid stock value")
	// ErrInvalidInput indicates an empty item id.
	ErrInvalidInput = errors.New("invalid source input")
)
