package transport

import (
	"encoding/json"
	"testing"
)

func TestCreateLeadRequestValueCoercion(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		want    float64
		wantSet bool
	}{
		{name: "number", body: `{"name":"a","value":1500}`, want: 1500, wantSet: true},
		{name: "formatted string", body: `{"name":"a","value":"12,500.50"}`, want: 12500.5, wantSet: true},
		{name: "garbage string", body: `{"name":"a","value":"abc"}`, want: 0, wantSet: true},
		{name: "null", body: `{"name":"a","value":null}`, want: 0, wantSet: true},
		{name: "boolean", body: `{"name":"a","value":true}`, want: 0, wantSet: true},
		{name: "out of range", body: `{"name":"a","value":1e400}`, want: 0, wantSet: true},
		{name: "missing", body: `{"name":"a"}`, want: 0, wantSet: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var req CreateLeadRequest
			if err := json.Unmarshal([]byte(tc.body), &req); err != nil {
				t.Fatalf("numeric input must never fail the request: %v", err)
			}
			if req.Value.Value != tc.want {
				t.Fatalf("value = %v, want %v", req.Value.Value, tc.want)
			}
			if req.Value.Set != tc.wantSet {
				t.Fatalf("set = %v, want %v", req.Value.Set, tc.wantSet)
			}
		})
	}
}
