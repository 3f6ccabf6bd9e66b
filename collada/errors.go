package collada

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrMalformedAsset matches every import failure caused by document content.
	ErrMalformedAsset = errors.New("malformed COLLADA asset")
	// ErrNoSkinData is returned when a document has no skin controller.
	ErrNoSkinData = errors.New("no skin data")
	// ErrNoAnimation is returned when a document has no matrix animation channel.
	ErrNoAnimation = errors.New("no animation data")
)

// ImportError reports which section of the document could not be imported.
type ImportError struct {
	Section string
	Err     error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("collada: %s: %v", e.Section, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

func (e *ImportError) Is(target error) bool {
	return target == ErrMalformedAsset
}

func malformed(section string, err error) error {
	return &ImportError{Section: section, Err: err}
}

func malformedf(section, format string, args ...interface{}) error {
	return &ImportError{Section: section, Err: errors.Errorf(format, args...)}
}
