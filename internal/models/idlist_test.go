package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDListUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    IDList
		wantErr bool
	}{
		{name: "array", input: `[1,2,3]`, want: IDList{1, 2, 3}},
		{name: "comma string", input: `"1,2"`, want: IDList{1, 2}},
		{name: "spaced string", input: `" 3 , ,4 "`, want: IDList{3, 4}},
		{name: "empty string", input: `""`, want: nil},
		{name: "null", input: `null`, want: nil},
		{name: "bad string", input: `"1,x"`, wantErr: true},
		{name: "object", input: `{"a":1}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got IDList
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
