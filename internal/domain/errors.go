package domain

import "errors"

var (
	ErrInvalidKey        = errors.New("invalid key")
	ErrInvalidIndex      = errors.New("invalid index")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidTimeRange  = errors.New("invalid time range")
	ErrInvalidMode       = errors.New("invalid view mode")
	ErrInvalidSortMode   = errors.New("invalid sort mode")
	ErrInvalidTheme      = errors.New("invalid theme")
	ErrInvalidEdge       = errors.New("invalid constraint edge")
	ErrInvalidLineHeight = errors.New("invalid line height")
	ErrInvalidCellWidth  = errors.New("invalid cell width")
)
