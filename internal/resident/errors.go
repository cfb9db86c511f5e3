package resident

import "errors"

var (
	ErrResidentNotFound  = errors.New("resident not found")
	ErrMissingName       = errors.New("name is required")
	ErrMissingNameKana   = errors.New("name phonetic reading is required")
	ErrMissingRoomNumber = errors.New("room number is required")
	ErrInvalidBirthDate  = errors.New("birth date must be YYYY-MM-DD and not in the future")
	ErrInvalidGender     = errors.New("gender must be male or female")
	ErrInvalidCareLevel  = errors.New("care level must be between 1 and 5")
	ErrEmptyUpdate       = errors.New("no fields to update")
)

// IsValidationError reports whether err is a caller input problem.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrMissingName, ErrMissingNameKana, ErrMissingRoomNumber,
		ErrInvalidBirthDate, ErrInvalidGender, ErrInvalidCareLevel, ErrEmptyUpdate,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
