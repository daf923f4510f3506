package credential

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestResolveWith(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    string
		wantErr error
	}{
		{name: "present", env: map[string]string{DefaultEnv: "xai-123"}, want: "xai-123"},
		{name: "whitespace kept", env: map[string]string{DefaultEnv: "  "}, want: "  "},
		{name: "missing", env: map[string]string{}, wantErr: ErrMissing},
		{name: "empty", env: map[string]string{DefaultEnv: ""}, wantErr: ErrEmpty},
		{name: "not utf8", env: map[string]string{DefaultEnv: "\xff\xfe"}, wantErr: ErrNotText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveWith(lookupFrom(tt.env), DefaultEnv)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				var credErr *Error
				require.True(t, errors.As(err, &credErr))
				assert.Equal(t, DefaultEnv, credErr.Name)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveKindsAreDistinct(t *testing.T) {
	kinds := []error{ErrMissing, ErrNotText, ErrEmpty}
	for i, a := range kinds {
		for j, b := range kinds {
			if i != j {
				assert.NotErrorIs(t, a, b)
			}
		}
	}
}

func TestResolveFromProcessEnv(t *testing.T) {
	t.Setenv("AISH_TEST_KEY", "sk-live")
	got, err := Resolve("AISH_TEST_KEY")
	require.NoError(t, err)
	assert.Equal(t, "sk-live", got)

	t.Setenv("AISH_TEST_KEY", "")
	_, err = Resolve("AISH_TEST_KEY")
	assert.ErrorIs(t, err, ErrEmpty)
	assert.EqualError(t, err, "AISH_TEST_KEY set but empty")
}
