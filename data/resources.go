// Package data contains the typed documents the demo client exchanges with
// a Linked Care FHIR server, sample builders for demo runs and the model of
// conformance scenario files.
package data

import (
	fm "github.com/samply/golang-fhir-models/fhir-models/fhir"
)

// Patient is the care recipient record.
type Patient struct {
	fm.Patient
}

func (Patient) ResourceType() string {
	return "Patient"
}

// MedicationRequest is a single medication proposal or prescription.
type MedicationRequest struct {
	fm.MedicationRequest
}

func (MedicationRequest) ResourceType() string {
	return "MedicationRequest"
}

// MedicationDispense records the hand-out of a prescribed medication by a
// pharmacy.
type MedicationDispense struct {
	fm.MedicationDispense
}

func (MedicationDispense) ResourceType() string {
	return "MedicationDispense"
}

// RequestGroup is the orchestration record that bundles the medication
// requests of one care episode.
type RequestGroup struct {
	fm.RequestGroup
}

func (RequestGroup) ResourceType() string {
	return "RequestGroup"
}
