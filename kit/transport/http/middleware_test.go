package http

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"/indicators/ind-1", "/indicators/:id"},
		{"/indicators/search", "/indicators/search"},
		{"/campaigns/camp-1/indicators", "/campaigns/:id/indicators"},
		{"/dashboard/summary", "/dashboard/summary"},
		{"/health", "/health"},
		{"/", "/"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, normalizePath(tt.path), "path %s", tt.path)
	}
}
