package service

import (
	"errors"
	"testing"

	"hospital-operations-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	statuses := []models.AdmissionStatus{
		models.AdmissionPending,
		models.AdmissionAdmitted,
		models.AdmissionPendingDischarge,
		models.AdmissionDischarged,
	}
	allowed := map[[2]models.AdmissionStatus]bool{
		{models.AdmissionPending, models.AdmissionAdmitted}:            true,
		{models.AdmissionPending, models.AdmissionPendingDischarge}:    true,
		{models.AdmissionAdmitted, models.AdmissionPendingDischarge}:   true,
		{models.AdmissionPendingDischarge, models.AdmissionDischarged}: true,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			want := allowed[[2]models.AdmissionStatus{from, to}]
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)

			err := checkTransition(from, to)
			if want {
				assert.NoError(t, err)
				continue
			}
			assert.ErrorIs(t, err, ErrInvalidTransition)
			var te *InvalidTransitionError
			if assert.True(t, errors.As(err, &te)) {
				assert.Equal(t, string(from), te.From)
				assert.Equal(t, string(to), te.To)
			}
		}
	}
}

func TestCheckRequestTransition(t *testing.T) {
	assert.NoError(t, checkRequestTransition("swap", models.RequestPending, models.RequestApproved))
	assert.NoError(t, checkRequestTransition("swap", models.RequestPending, models.RequestRejected))
	assert.NoError(t, checkRequestTransition("swap", models.RequestPending, models.RequestCancelled))

	assert.ErrorIs(t, checkRequestTransition("swap", models.RequestPending, models.RequestPending), ErrInvalidTransition)
	assert.ErrorIs(t, checkRequestTransition("swap", models.RequestApproved, models.RequestRejected), ErrInvalidTransition)
	assert.ErrorIs(t, checkRequestTransition("unavailability", models.RequestCancelled, models.RequestApproved), ErrInvalidTransition)
}
