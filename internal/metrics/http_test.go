package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperation(t *testing.T) {
	tests := []struct {
		route string
		want  string
	}{
		{route: "", want: "unknown"},
		{route: "/v1/chains", want: "v1_chains"},
		{route: "/v1/sessions", want: "v1_sessions"},
		{route: "/v1/sessions/:id", want: "session"},
		{route: "/v1/sessions/:id/approve", want: "approve"},
		{route: "/v1/sessions/:id/wallets/:chain", want: "wallets"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, operation(tt.route))
		})
	}
}
