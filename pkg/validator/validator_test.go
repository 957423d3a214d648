package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scanRequestBody struct {
	RepositoryURL string `validate:"required,repo_url"`
	AccessToken   string `validate:"omitempty,max=512"`
}

func TestValidateRepoURL(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		body    scanRequestBody
		wantErr bool
	}{
		{
			name: "valid https url",
			body: scanRequestBody{RepositoryURL: "https://github.com/owner/repo.git"},
		},
		{
			name: "valid http url",
			body: scanRequestBody{RepositoryURL: "http://git.internal/owner/repo"},
		},
		{
			name:    "missing url",
			body:    scanRequestBody{},
			wantErr: true,
		},
		{
			name:    "scp-style url rejected",
			body:    scanRequestBody{RepositoryURL: "git@github.com:owner/repo.git"},
			wantErr: true,
		},
		{
			name:    "no host",
			body:    scanRequestBody{RepositoryURL: "https:///repo.git"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.body)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidationErrorsFormat(t *testing.T) {
	v := New()

	err := v.Validate(scanRequestBody{})
	require.Error(t, err)

	verrs, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Len(t, verrs, 1)
	assert.Equal(t, "repository_url", verrs[0].Field)
	assert.Equal(t, "is required", verrs[0].Message)
}
