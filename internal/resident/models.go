package resident

import (
	"strings"
	"time"

	"github.com/WailSalutem-Health-Care/care-record-service/internal/pagination"
)

const dateLayout = "2006-01-02"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// Resident is a care-facility occupant.
type Resident struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	NameKana   string    `json:"nameKana"`
	BirthDate  time.Time `json:"birthDate"`
	Gender     Gender    `json:"gender"`
	RoomNumber string    `json:"roomNumber"`
	CareLevel  int       `json:"careLevel"`
	Notes      string    `json:"notes,omitempty"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Age in whole years on the given day.
func (r Resident) Age(on time.Time) int {
	age := on.Year() - r.BirthDate.Year()
	if on.Month() < r.BirthDate.Month() ||
		(on.Month() == r.BirthDate.Month() && on.Day() < r.BirthDate.Day()) {
		age--
	}
	return age
}

// Changes is a typed merge-patch. Nil fields are left untouched.
type Changes struct {
	Name       *string
	NameKana   *string
	BirthDate  *time.Time
	Gender     *Gender
	RoomNumber *string
	CareLevel  *int
	Notes      *string
	IsActive   *bool
}

func (c Changes) Empty() bool {
	return c == Changes{}
}

// CreateResidentRequest represents the request to register a resident
type CreateResidentRequest struct {
	Name       string `json:"name"`
	NameKana   string `json:"nameKana"`
	BirthDate  string `json:"birthDate"` // Format: YYYY-MM-DD
	Gender     Gender `json:"gender"`
	RoomNumber string `json:"roomNumber"`
	CareLevel  int    `json:"careLevel"`
	Notes      string `json:"notes,omitempty"`
}

// Validate checks the request and returns the resident to store.
func (r *CreateResidentRequest) Validate(today time.Time) (Resident, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return Resident{}, ErrMissingName
	}
	kana := strings.TrimSpace(r.NameKana)
	if kana == "" {
		return Resident{}, ErrMissingNameKana
	}
	room := strings.TrimSpace(r.RoomNumber)
	if room == "" {
		return Resident{}, ErrMissingRoomNumber
	}
	birth, err := parseBirthDate(r.BirthDate, today)
	if err != nil {
		return Resident{}, err
	}
	if !r.Gender.Valid() {
		return Resident{}, ErrInvalidGender
	}
	if r.CareLevel < 1 || r.CareLevel > 5 {
		return Resident{}, ErrInvalidCareLevel
	}

	return Resident{
		Name:       name,
		NameKana:   kana,
		BirthDate:  birth,
		Gender:     r.Gender,
		RoomNumber: room,
		CareLevel:  r.CareLevel,
		Notes:      r.Notes,
		IsActive:   true,
	}, nil
}

// UpdateResidentRequest represents the request to update a resident
type UpdateResidentRequest struct {
	Name       *string `json:"name,omitempty"`
	NameKana   *string `json:"nameKana,omitempty"`
	BirthDate  *string `json:"birthDate,omitempty"`
	Gender     *Gender `json:"gender,omitempty"`
	RoomNumber *string `json:"roomNumber,omitempty"`
	CareLevel  *int    `json:"careLevel,omitempty"`
	Notes      *string `json:"notes,omitempty"`
	IsActive   *bool   `json:"isActive,omitempty"`
}

// Validate checks the supplied fields and converts them to Changes.
func (r *UpdateResidentRequest) Validate(today time.Time) (Changes, error) {
	var c Changes
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		if name == "" {
			return Changes{}, ErrMissingName
		}
		c.Name = &name
	}
	if r.NameKana != nil {
		kana := strings.TrimSpace(*r.NameKana)
		if kana == "" {
			return Changes{}, ErrMissingNameKana
		}
		c.NameKana = &kana
	}
	if r.BirthDate != nil {
		birth, err := parseBirthDate(*r.BirthDate, today)
		if err != nil {
			return Changes{}, err
		}
		c.BirthDate = &birth
	}
	if r.Gender != nil {
		if !r.Gender.Valid() {
			return Changes{}, ErrInvalidGender
		}
		c.Gender = r.Gender
	}
	if r.RoomNumber != nil {
		room := strings.TrimSpace(*r.RoomNumber)
		if room == "" {
			return Changes{}, ErrMissingRoomNumber
		}
		c.RoomNumber = &room
	}
	if r.CareLevel != nil {
		if *r.CareLevel < 1 || *r.CareLevel > 5 {
			return Changes{}, ErrInvalidCareLevel
		}
		c.CareLevel = r.CareLevel
	}
	c.Notes = r.Notes
	c.IsActive = r.IsActive

	if c.Empty() {
		return Changes{}, ErrEmptyUpdate
	}
	return c, nil
}

func parseBirthDate(raw string, today time.Time) (time.Time, error) {
	birth, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, ErrInvalidBirthDate
	}
	if birth.After(today) {
		return time.Time{}, ErrInvalidBirthDate
	}
	return birth, nil
}

// PaginatedResidentListResponse represents a page of active residents
type PaginatedResidentListResponse struct {
	Residents  []Resident      `json:"residents"`
	Pagination pagination.Meta `json:"pagination"`
}
