package person

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

// ParseGender maps a raw container value onto the closed gender set. The
// second return reports whether the value was recognized; unrecognized
// values fall back to GenderUnknown rather than failing the record.
func ParseGender(raw string) (Gender, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "male", "m":
		return GenderMale, true
	case "female", "f":
		return GenderFemale, true
	case "unknown", "":
		return GenderUnknown, true
	default:
		return GenderUnknown, false
	}
}

type Person struct {
	id              uuid.UUID
	nationalID      string
	firstName       string
	fatherName      string
	grandfatherName string
	familyName      string
	gender          Gender
	birthYear       int
	phone           string
	notes           string
	active          bool
	createdAt       time.Time
	updatedAt       time.Time
}

func New(firstName, familyName string) Person {
	return Person{
		firstName:  strings.TrimSpace(firstName),
		familyName: strings.TrimSpace(familyName),
		gender:     GenderUnknown,
		active:     true,
	}
}

func Hydrate(
	id uuid.UUID,
	nationalID string,
	firstName string,
	fatherName string,
	grandfatherName string,
	familyName string,
	gender Gender,
	birthYear int,
	phone string,
	notes string,
	active bool,
	createdAt time.Time,
	updatedAt time.Time,
) Person {
	return Person{
		id:              id,
		nationalID:      strings.TrimSpace(nationalID),
		firstName:       strings.TrimSpace(firstName),
		fatherName:      strings.TrimSpace(fatherName),
		grandfatherName: strings.TrimSpace(grandfatherName),
		familyName:      strings.TrimSpace(familyName),
		gender:          gender,
		birthYear:       birthYear,
		phone:           phone,
		notes:           notes,
		active:          active,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

func (p Person) ID() uuid.UUID           { return p.id }
func (p Person) NationalID() string      { return p.nationalID }
func (p Person) FirstName() string       { return p.firstName }
func (p Person) FatherName() string      { return p.fatherName }
func (p Person) GrandfatherName() string { return p.grandfatherName }
func (p Person) FamilyName() string      { return p.familyName }
func (p Person) Gender() Gender          { return p.gender }
func (p Person) BirthYear() int          { return p.birthYear }
func (p Person) Phone() string           { return p.phone }
func (p Person) Notes() string           { return p.notes }
func (p Person) Active() bool            { return p.active }
func (p Person) CreatedAt() time.Time    { return p.createdAt }
func (p Person) UpdatedAt() time.Time    { return p.updatedAt }
func (p Person) IsZero() bool            { return p.id == uuid.Nil && p.firstName == "" }

// FullName joins the name chain the way it is written on identity documents.
func (p Person) FullName() string {
	parts := make([]string, 0, 4)
	for _, s := range []string{p.firstName, p.fatherName, p.grandfatherName, p.familyName} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func (p Person) WithNationalID(id string) Person {
	p.nationalID = strings.TrimSpace(id)
	return p
}

func (p Person) WithFatherName(name string) Person {
	p.fatherName = strings.TrimSpace(name)
	return p
}

func (p Person) WithGrandfatherName(name string) Person {
	p.grandfatherName = strings.TrimSpace(name)
	return p
}

func (p Person) WithGender(g Gender) Person {
	p.gender = g
	return p
}

func (p Person) WithBirthYear(year int) Person {
	p.birthYear = year
	return p
}

func (p Person) WithPhone(phone string) Person {
	p.phone = phone
	return p
}

func (p Person) WithNotes(notes string) Person {
	p.notes = notes
	return p
}
