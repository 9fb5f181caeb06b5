package model

import (
	"github.com/praxa/docsegment/internal/errors"
)

// ComplaintType is the nominal category of a lodged complaint.
type ComplaintType int

const (
	ComplaintCorrect ComplaintType = iota
	ComplaintIncorrect
	ComplaintRAndR
	ComplaintSpecific
)

// NumComplaintTypes is the size of the fixed complaint-type set.
const NumComplaintTypes = 4

var complaintNames = [NumComplaintTypes]string{"Correct", "Incorrect", "R&R", "Specific"}

// String returns the canonical token for the complaint type.
func (c ComplaintType) String() string {
	if c < 0 || int(c) >= NumComplaintTypes {
		return "Unknown"
	}
	return complaintNames[c]
}

// ComplaintTypes returns the fixed type set in table order.
func ComplaintTypes() [NumComplaintTypes]ComplaintType {
	return [NumComplaintTypes]ComplaintType{
		ComplaintCorrect, ComplaintIncorrect, ComplaintRAndR, ComplaintSpecific,
	}
}

// ParseComplaintType maps a raw token onto the fixed complaint-type set.
// The empty token is the caller's signal to drop the row; any other
// unrecognized token is a data-quality error.
func ParseComplaintType(token string) (ComplaintType, error) {
	for i, name := range complaintNames {
		if token == name {
			return ComplaintType(i), nil
		}
	}
	return 0, errors.NewDataQualityError("ParseComplaintType", "complaints", "complaint_type",
		"unrecognized complaint type: "+token)
}

// ComplaintRecord is one (doctor, complaint-type, quantity) row after cleaning.
type ComplaintRecord struct {
	DoctorID string
	Type     ComplaintType
	Quantity int
}
