package config

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDuration_YAML(t *testing.T) {
	t.Parallel()

	var v struct {
		Timeout Duration `yaml:"timeout"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(`timeout: 1m30s`), &v))
	assert.Equal(t, 90*time.Second, v.Timeout.Duration())

	out, err := yaml.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, "timeout: 1m30s\n", string(out))

	require.Error(t, yaml.Unmarshal([]byte(`timeout: forever`), &v))
}

func TestDuration_JSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  time.Duration
	}{
		{input: `"300ms"`, want: 300 * time.Millisecond},
		{input: `""`, want: 0},
		{input: `null`, want: 0},
	}
	for _, tt := range tests {
		var d Duration
		require.NoError(t, json.Unmarshal([]byte(tt.input), &d), tt.input)
		assert.Equal(t, tt.want, d.Duration(), tt.input)
	}

	out, err := json.Marshal(Duration(2 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, `"2s"`, string(out))

	var d Duration
	assert.Error(t, json.Unmarshal([]byte(`"nope"`), &d))
}
