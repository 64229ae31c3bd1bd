package namecheck_test

import (
	"testing"

	"github.com/CorneTubage/assohub/internal/app/system/namecheck"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"Club Photo", true},
		{"Club Photographie", true},
		{"L'Amicale", true},
		{"Ciné-club", true},
		{"robo_tech 2024", true},
		{"Fanfare de l'IUT", true},

		{"", false},
		{"   ", false},
		{"Club <b>Photo</b>", false},
		{"rm -rf /tmp", false},
		{"club;photo", false},
		{"club\tphoto", false},
		{"club.photo", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := namecheck.Validate(tt.name)
			if tt.ok && err != nil {
				t.Errorf("Validate(%q) = %v, want nil", tt.name, err)
			}
			if !tt.ok && err == nil {
				t.Errorf("Validate(%q) = nil, want error", tt.name)
			}
		})
	}
}

func TestClean_StripsMarkup(t *testing.T) {
	got := namecheck.Clean("  Club <script>alert(1)</script>Photo ")
	if got != "Club Photo" {
		t.Errorf("Clean: got %q, want %q", got, "Club Photo")
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Club Photo", "club-photo"},
		{"L'Amicale", "l-amicale"},
		{"Ciné-club", "cine-club"},
		{"  Robo  Tech  ", "robo-tech"},
		{"Fanfare de l'IUT", "fanfare-de-l-iut"},
	}
	for _, tt := range tests {
		if got := namecheck.Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
