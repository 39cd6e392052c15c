package data

import (
	"github.com/google/uuid"
	fm "github.com/samply/golang-fhir-models/fhir-models/fhir"
)

// uuidUrnSystem identifies client-assigned record identifiers. The server
// replaces them with its own identifiers on creation.
const uuidUrnSystem = "urn:ietf:rfc:3986"

// NewSamplePatient builds a minimal patient with a fresh client-assigned
// record identifier, usable as-is for demo submissions.
func NewSamplePatient(family string, given ...string) Patient {
	recordId := "urn:uuid:" + uuid.New().String()
	patient := Patient{}
	patient.Identifier = []fm.Identifier{{
		System: strPtr(uuidUrnSystem),
		Value:  strPtr(recordId),
	}}
	patient.Name = []fm.HumanName{{
		Family: strPtr(family),
		Given:  given,
	}}
	return patient
}

func strPtr(s string) *string {
	return &s
}
