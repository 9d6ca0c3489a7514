package http

import (
	"encoding/json"
	"testing"
)

func TestSanitizeJSON(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		want        string
		wantChanged bool
	}{
		{"clean", `{"email":"a@b.c"}`, `{"email":"a@b.c"}`, false},
		{"operator", `{"email":{"$gt":""},"password":"x"}`, `{"email":{},"password":"x"}`, true},
		{"dotted", `{"profile.admin":true,"name":"a"}`, `{"name":"a"}`, true},
		{"nested array", `{"items":[{"$where":"1"},{"ok":1}]}`, `{"items":[{},{"ok":1}]}`, true},
		{"invalid json", `{"email":`, `{"email":`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := sanitizeJSON([]byte(tt.in))
			if changed != tt.wantChanged {
				t.Fatalf("changed: got %v want %v", changed, tt.wantChanged)
			}
			if !changed {
				if string(got) != tt.in {
					t.Fatalf("unchanged body rewritten: %s", got)
				}
				return
			}
			var gotV, wantV any
			if err := json.Unmarshal(got, &gotV); err != nil {
				t.Fatal(err)
			}
			if err := json.Unmarshal([]byte(tt.want), &wantV); err != nil {
				t.Fatal(err)
			}
			gb, _ := json.Marshal(gotV)
			wb, _ := json.Marshal(wantV)
			if string(gb) != string(wb) {
				t.Fatalf("got %s want %s", gb, wb)
			}
		})
	}
}

func TestUnsafeKey(t *testing.T) {
	for key, want := range map[string]bool{
		"$where":  true,
		"a.b":     true,
		"status":  false,
		"jobType": false,
		"price$":  false,
	} {
		if got := unsafeKey(key); got != want {
			t.Errorf("unsafeKey(%q) = %v, want %v", key, got, want)
		}
	}
}
