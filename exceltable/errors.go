package exceltable

import (
	"errors"

	"github.com/xuri/excelize/v2"
)

// ErrEmptySheet is returned for sheets without data
// after removing empty rows and columns.
var ErrEmptySheet = errors.New("empty sheet")

// ErrSheetNotExist is re-exported from excelize.
type ErrSheetNotExist = excelize.ErrSheetNotExist
