package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/praxa/docsegment/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestPipelineError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *errors.PipelineError
		expected string
	}{
		{
			name: "error with table and column",
			err: &errors.PipelineError{
				Kind:    errors.KindDataQuality,
				Op:      "CleanDoctors",
				Table:   "doctors",
				Column:  "rank",
				Message: "unrecognized rank token",
			},
			expected: "DataQualityError: CleanDoctors failed on doctors.rank: unrecognized rank token",
		},
		{
			name: "error with column only",
			err: &errors.PipelineError{
				Kind:    errors.KindSchema,
				Op:      "LoadOrders",
				Column:  "order_id",
				Message: "unparseable value",
			},
			expected: "SchemaError: LoadOrders failed on column 'order_id': unparseable value",
		},
		{
			name: "error without context",
			err: &errors.PipelineError{
				Kind:    errors.KindImputation,
				Op:      "Impute",
				Message: "no usable neighbor",
			},
			expected: "ImputationFailure: Impute failed: no usable neighbor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestPipelineError_Unwrap(t *testing.T) {
	cause := stderrors.New("underlying error")
	err := errors.NewInternalError("Reduce", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.ErrorIs(t, err, cause)
}

func TestPipelineError_Is(t *testing.T) {
	err1 := errors.NewDataQualityError("CleanOrders", "orders", "condition_a", "unmappable boolean token")
	err2 := errors.NewDataQualityError("CleanOrders", "orders", "condition_a", "unmappable boolean token")
	err3 := errors.NewDataQualityError("CleanOrders", "orders", "condition_b", "unmappable boolean token")

	assert.ErrorIs(t, err1, err2)
	assert.NotErrorIs(t, err1, err3)
}

func TestIsKind(t *testing.T) {
	err := errors.NewMissingColumnError("LoadDoctors", "doctors", "doctor_id")

	assert.True(t, errors.IsKind(err, errors.KindSchema))
	assert.False(t, errors.IsKind(err, errors.KindDataQuality))
	assert.False(t, errors.IsKind(stderrors.New("plain"), errors.KindSchema))
}
