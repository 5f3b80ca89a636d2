package httpmetrics

import "testing"

func TestNormalizePath(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "/"},
		{"root", "/", "/"},
		{"static route", "/api/videos", "/api/videos"},
		{"uuid segment", "/api/videos/3f1c2d4e-5a6b-4c7d-8e9f-0a1b2c3d4e5f", "/api/videos/{id}"},
		{"numeric segment", "/api/users/42/tweets", "/api/users/{id}/tweets"},
		{"uppercase hex is not a uuid", "/api/videos/3F1C2D4E-5A6B-4C7D-8E9F-0A1B2C3D4E5F", "/api/videos/3F1C2D4E-5A6B-4C7D-8E9F-0A1B2C3D4E5F"},
		{"short hex segment untouched", "/api/videos/deadbeef", "/api/videos/deadbeef"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizePath(tc.in)
			if got != tc.want {
				t.Errorf("NormalizePath(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
