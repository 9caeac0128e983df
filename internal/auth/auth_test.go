package auth

import (
	"net/http"
	"net/url"
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		query  string
		want   string
	}{
		{
			name:   "bearer header",
			header: map[string]string{"Authorization": "Bearer tok123"},
			want:   "tok123",
		},
		{
			name:   "lowercase bearer",
			header: map[string]string{"Authorization": "bearer tok123"},
			want:   "tok123",
		},
		{
			name:   "raw authorization",
			header: map[string]string{"Authorization": "tok123"},
			want:   "tok123",
		},
		{
			name:   "x-auth-token",
			header: map[string]string{"X-Auth-Token": "tok456"},
			want:   "tok456",
		},
		{
			name:  "query parameter",
			query: "token=tok789",
			want:  "tok789",
		},
		{
			name:   "authorization wins over x-auth-token",
			header: map[string]string{"Authorization": "Bearer first", "X-Auth-Token": "second"},
			want:   "first",
		},
		{
			name:   "x-auth-token wins over query",
			header: map[string]string{"X-Auth-Token": "second"},
			query:  "token=third",
			want:   "second",
		},
		{
			name: "nothing present",
			want: "",
		},
		{
			name:   "bearer with surrounding space",
			header: map[string]string{"Authorization": "Bearer  spaced "},
			want:   "spaced",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			for k, v := range tt.header {
				h.Set(k, v)
			}
			q, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("parse query: %v", err)
			}

			got := Extract(h, q)
			if got != tt.want {
				t.Errorf("Extract() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAuthorize(t *testing.T) {
	a := New("secret")

	h := http.Header{}
	h.Set("Authorization", "Bearer secret")
	if !a.Authorize(h, url.Values{}) {
		t.Error("Authorize() = false for matching token")
	}

	h.Set("Authorization", "Bearer wrong")
	if a.Authorize(h, url.Values{}) {
		t.Error("Authorize() = true for mismatched token")
	}

	if a.Authorize(http.Header{}, url.Values{}) {
		t.Error("Authorize() = true for missing token")
	}
}

func TestAuthorizeOpenMode(t *testing.T) {
	a := New("")
	if !a.Open() {
		t.Error("Open() = false for empty secret")
	}
	if !a.Authorize(http.Header{}, url.Values{}) {
		t.Error("Authorize() = false in open mode")
	}
}
