package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateHelpRequest(t *testing.T) {
	t.Run("valid request passes", func(t *testing.T) {
		r := NewHelpRequest("hr-1", "Need a ladder for gutter cleaning", "Oak Ave", time.Now())
		assert.NoError(t, ValidateHelpRequest(r))
	})

	t.Run("location is optional", func(t *testing.T) {
		r := NewHelpRequest("hr-1", "Need a ladder", "", time.Now())
		assert.NoError(t, ValidateHelpRequest(r))
	})

	t.Run("nil request fails", func(t *testing.T) {
		assert.Error(t, ValidateHelpRequest(nil))
	})

	t.Run("missing ID fails", func(t *testing.T) {
		r := NewHelpRequest("", "Need a ladder", "", time.Now())
		assert.Error(t, ValidateHelpRequest(r))
	})

	t.Run("blank description fails", func(t *testing.T) {
		r := NewHelpRequest("hr-1", "  ", "", time.Now())
		assert.Error(t, ValidateHelpRequest(r))
	})
}

func TestHelpRequestHasVolunteer(t *testing.T) {
	r := &HelpRequest{Volunteers: []string{"user-1", "user-2"}}

	assert.True(t, r.HasVolunteer("user-1"))
	assert.False(t, r.HasVolunteer("user-3"))
	assert.False(t, (&HelpRequest{}).HasVolunteer("user-1"))
}
