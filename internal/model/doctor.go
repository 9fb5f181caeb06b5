package model

import (
	"github.com/praxa/docsegment/internal/errors"
)

// Category is the binary practice category of a doctor.
type Category uint8

const (
	CategorySpecialist Category = iota
	CategoryGeneralPractitioner
)

// String returns the canonical token for the category.
func (c Category) String() string {
	if c == CategoryGeneralPractitioner {
		return "General Practitioner"
	}
	return "Specialist"
}

// ParseCategory maps a raw token onto the practice category.
func ParseCategory(token string) (Category, error) {
	switch token {
	case "Specialist":
		return CategorySpecialist, nil
	case "General Practitioner", "GP":
		return CategoryGeneralPractitioner, nil
	}
	return 0, errors.NewDataQualityError("ParseCategory", "doctors", "category",
		"unrecognized category token: "+token)
}

// DoctorRecord is one row of the cleaned doctors table, keyed by the
// unique doctor identifier.
//
// Rank is a pointer because the raw table may carry the "--" sentinel;
// rows with a nil rank are dropped by the merger before any feature work.
// Satisfaction is a pointer for a different reason: a nil value is
// statistically missing and filled by the imputer, not a structural zero.
type DoctorRecord struct {
	ID                 string
	Region             string
	Category           Category
	Rank               *Rank
	IncidenceRate      float64
	ReworkRate         float64
	Satisfaction       *float64
	Experience         float64
	PriorYearPurchases float64
}

// InstructionRecord is one row of the cleaned instructions table: whether
// the doctor supplies special instructions on orders, encoded 1/0.
type InstructionRecord struct {
	DoctorID            string
	SpecialInstructions uint8
}
