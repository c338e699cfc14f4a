package kompose

import "errors"

var (
	// ErrConverterUnavailable means the kompose binary could not be found
	ErrConverterUnavailable = errors.New("kompose is not installed")
	// ErrConverterFailed means the converter ran but did not succeed
	ErrConverterFailed = errors.New("kompose conversion failed")
)

// IsUnavailable reports whether err means the converter is missing
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrConverterUnavailable)
}

// userMessage is the error text shown to users. A missing binary gets the plain
// sentinel message without the lookup details.
func userMessage(err error) string {
	if IsUnavailable(err) {
		return ErrConverterUnavailable.Error()
	}
	return err.Error()
}
