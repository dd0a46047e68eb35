package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duck-projection/internal/domain"
)

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "single object", body: `{"name":"events","fields":[]}`},
		{name: "trailing whitespace", body: "{\"name\":\"events\"}\n  \n"},
		{name: "empty body", body: "", wantErr: "request body is required"},
		{name: "unknown field", body: `{"nope":1}`, wantErr: "invalid request body"},
		{name: "trailing brace", body: `{"fields":[]} }`, wantErr: "trailing data"},
		{name: "trailing bracket", body: `{"fields":[]}]`, wantErr: "trailing data"},
		{name: "second object", body: `{"name":"a"}{"name":"b"}`, wantErr: "trailing data"},
		{name: "trailing scalar", body: `{"name":"a"} 1`, wantErr: "trailing data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var got struct {
				Name   string `json:"name"`
				Fields []any  `json:"fields"`
			}
			err := decodeJSON(r, &got)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			var validation *domain.ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
