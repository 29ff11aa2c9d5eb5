package validate

import (
	"strings"
	"testing"

	"github.com/peachlease/edu-verify/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(domain.ValidateRequest{Email: "a@uga.edu", Code: "123456"}))
}

func TestStruct_MissingField_WrapsMissingFields(t *testing.T) {
	err := Struct(domain.ValidateRequest{Email: "a@uga.edu"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingFields)
	assert.Contains(t, err.Error(), "field 'Code' failed 'required'")
}

func TestStruct_TooLong_WrapsBadRequest(t *testing.T) {
	err := Struct(domain.IssueRequest{Email: "a@uga.edu", University: strings.Repeat("x", 201)})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	assert.NotErrorIs(t, err, domain.ErrMissingFields)
}
