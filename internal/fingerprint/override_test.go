package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForcedByData(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
		want bool
	}{
		{"nil data", nil, false},
		{"empty data", map[string]any{}, false},
		{"regenerate true", map[string]any{"regenerate": true}, true},
		{"force true", map[string]any{"force": true}, true},
		{"force_regenerate true", map[string]any{"force_regenerate": true}, true},
		{"regen true", map[string]any{"regen": true}, true},
		{"force false", map[string]any{"force": false}, false},
		{"unrecognized key", map[string]any{"rebuild": true}, false},
		{"non-boolean value ignored", map[string]any{"force": "yes"}, false},
		{"one of several keys", map[string]any{"force": false, "regen": true}, true},
		{"unrelated data present", map[string]any{"title": "Home", "regenerate": true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ForcedByData(tt.data))
		})
	}
}
