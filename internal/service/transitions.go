package service

import "hospital-operations-backend/internal/models"

// admissionTransitions is the complete set of legal admission state changes.
var admissionTransitions = map[models.AdmissionStatus][]models.AdmissionStatus{
	models.AdmissionPending:          {models.AdmissionAdmitted, models.AdmissionPendingDischarge},
	models.AdmissionAdmitted:         {models.AdmissionPendingDischarge},
	models.AdmissionPendingDischarge: {models.AdmissionDischarged},
	models.AdmissionDischarged:       nil,
}

// CanTransition reports whether an admission may move from one state to another.
func CanTransition(from, to models.AdmissionStatus) bool {
	for _, next := range admissionTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func checkTransition(from, to models.AdmissionStatus) error {
	if CanTransition(from, to) {
		return nil
	}
	return &InvalidTransitionError{Entity: "admission", From: string(from), To: string(to)}
}

// checkRequestTransition guards both staff request workflows; every outcome of pending is terminal.
func checkRequestTransition(entity string, from, to models.RequestStatus) error {
	if from == models.RequestPending && to != models.RequestPending {
		return nil
	}
	return &InvalidTransitionError{Entity: entity, From: string(from), To: string(to)}
}
