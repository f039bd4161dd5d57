package readresult

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/Majedzeyad/cancare-api/pkg/errors"
)

func TestOk(t *testing.T) {
	r := Ok([]int{1, 2, 3})

	assert.False(t, r.Degraded())
	assert.NoError(t, r.Err)
	assert.Equal(t, []int{1, 2, 3}, r.Value)
}

func TestDegradedKeepsDefaultAndError(t *testing.T) {
	cause := errors.New("connection refused")
	r := Degraded([]int{}, "doctor.list_patients", cause)

	assert.True(t, r.Degraded())
	assert.Empty(t, r.Value)

	var appErr *apperrors.AppError
	assert.ErrorAs(t, r.Err, &appErr)
	assert.Equal(t, apperrors.ErrReadDegraded, appErr.Code)
	assert.ErrorIs(t, r.Err, cause)
}
