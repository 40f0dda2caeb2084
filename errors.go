package epd47

import (
	"errors"
	"fmt"

	"github.com/flavioheleno/epd47/image4bit"
)

var (
	// ErrOutOfBounds is returned for coordinates or rectangles outside the panel.
	ErrOutOfBounds = image4bit.ErrOutOfBounds
	// ErrInvalidColor is returned for gray levels above 15.
	ErrInvalidColor = image4bit.ErrInvalidColor
	// ErrHardware is returned when an operation needs the panel powered on.
	ErrHardware = errors.New("epd47: panel not powered on")
)

// PeripheralError reports a failure of the configuration register, the row
// bus or the pulse channel. The underlying error is kept for errors.Is and
// errors.As.
type PeripheralError struct {
	Op  string
	Err error
}

func (e *PeripheralError) Error() string {
	return fmt.Sprintf("epd47: %s: %v", e.Op, e.Err)
}

func (e *PeripheralError) Unwrap() error {
	return e.Err
}
