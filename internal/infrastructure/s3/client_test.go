package s3infra

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockGetObjectAPI struct{ mock.Mock }

func (m *mockGetObjectAPI) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, in)
	if out, _ := args.Get(0).(*s3.GetObjectOutput); out != nil {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func body(s string) io.ReadCloser { return io.NopCloser(strings.NewReader(s)) }

func TestLoad_ReturnsObjectText(t *testing.T) {
	api := &mockGetObjectAPI{}
	api.On("GetObject", mock.Anything, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return *in.Bucket == "mail-templates" && *in.Key == "verify.txt"
	})).Return(&s3.GetObjectOutput{Body: body("Code: {{.Code}}")}, nil)

	store := NewTemplateStore(api, "mail-templates")
	got, err := store.Load(context.Background(), "verify.txt")
	require.NoError(t, err)
	assert.Equal(t, "Code: {{.Code}}", got)
}

func TestLoad_GetObjectError(t *testing.T) {
	api := &mockGetObjectAPI{}
	api.On("GetObject", mock.Anything, mock.Anything).Return(nil, errors.New("NoSuchKey"))

	store := NewTemplateStore(api, "mail-templates")
	_, err := store.Load(context.Background(), "missing.txt")
	assert.ErrorContains(t, err, "NoSuchKey")
}

func TestLoad_RejectsOversizedObject(t *testing.T) {
	api := &mockGetObjectAPI{}
	api.On("GetObject", mock.Anything, mock.Anything).
		Return(&s3.GetObjectOutput{Body: body(strings.Repeat("x", maxTemplateBytes+1))}, nil)

	store := NewTemplateStore(api, "mail-templates")
	_, err := store.Load(context.Background(), "big.txt")
	assert.ErrorContains(t, err, "exceeds")
}
