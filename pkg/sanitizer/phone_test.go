package sanitizer

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "us number in e164",
			input: "+14155552671",
			want:  "+14155552671",
		},
		{
			name:  "israeli mobile in national form",
			input: "0501234567",
			want:  "+972501234567",
		},
		{
			name:  "number with separators",
			input: "+1 (415) 555-2671",
			want:  "+14155552671",
		},
		{
			name:  "garbage",
			input: "not-a-phone",
			want:  "",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "too short for any region",
			input: "12345",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePhone(tt.input)
			if got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
