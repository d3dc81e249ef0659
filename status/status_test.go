package status_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NunaInc/nudl-analysis/status"
)

func TestNotFoundCandidates(t *testing.T) {
	s := status.NotFound("name 'fooo' not found", "foo", "food")
	require.False(t, s.Ok())
	assert.Equal(t, status.CodeNotFound, s.Code)
	assert.Contains(t, s.Error(), "did you mean: foo, food?")
}

func TestJoinAccumulatesAcrossStatuses(t *testing.T) {
	a := status.New(status.CodeInvalidArgument, "a failed")
	b := status.New(status.CodeInvalidArgument, "b failed")
	joined := status.Join(a, b, nil)
	require.NotNil(t, joined)
	assert.Len(t, joined.Errors, 2)
}

func TestJoinOfAllOkIsNil(t *testing.T) {
	assert.Nil(t, status.Join(nil, nil))
}

func TestInternalHasBugNotice(t *testing.T) {
	s := status.Internal("invariant violated")
	assert.Contains(t, s.Error(), "bug in the analyzer")
}

func TestTypeMismatchCarriesExpectedActual(t *testing.T) {
	s := status.TypeMismatch("argument 0", "Int", "String")
	require.Len(t, s.Errors, 1)
	assert.Equal(t, "Int", s.Errors[0].Expected)
	assert.Equal(t, "String", s.Errors[0].Actual)
}
