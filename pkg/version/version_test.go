package version

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Version
		wantErr bool
	}{
		{"0.3.0", Version{0, 3, 0}, false},
		{"v1.2.3", Version{1, 2, 3}, false},
		{" 0.1.9 ", Version{0, 1, 9}, false},
		{"1.2", Version{}, true},
		{"1.x.0", Version{}, true},
		{"-1.0.0", Version{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidVersion) {
					t.Errorf("Parse(%q) error = %v, want ErrInvalidVersion", tt.input, err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCompatible(t *testing.T) {
	if !Current().Compatible() {
		t.Error("current version should be compatible with itself")
	}
	if (Version{Major: Major + 1}).Compatible() {
		t.Error("next major should not be compatible")
	}
	if (Version{Major: Major, Minor: Minor + 1}).Compatible() {
		t.Error("newer minor should not be compatible")
	}
}
