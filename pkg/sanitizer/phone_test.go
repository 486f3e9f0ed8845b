package sanitizer

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "valid E.164 format",
			input: "+8801712345678",
			want:  "+8801712345678",
		},
		{
			name:  "with spaces",
			input: "+880 1712 345678",
			want:  "+8801712345678",
		},
		{
			name:  "with dashes",
			input: "+880-1712-345678",
			want:  "+8801712345678",
		},
		{
			name:  "national format uses first region",
			input: "01712345678",
			want:  "+8801712345678",
		},
		{
			name:  "with parentheses",
			input: "+1 (212) 555-1234",
			want:  "+12125551234",
		},
		{
			name:  "leading and trailing spaces",
			input: "  +8801712345678  ",
			want:  "+8801712345678",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   ",
			want:  "",
		},
		{
			name:  "not a number",
			input: "call me",
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

func TestNormalizePhoneIn(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		region string
		want   string
	}{
		{name: "region decides national numbers", input: "07700 900123", region: "GB", want: "+447700900123"},
		{name: "international ignores region", input: "+8801712345678", region: "GB", want: "+8801712345678"},
		{name: "empty region falls back", input: "01712345678", region: "", want: "+8801712345678"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePhoneIn(tt.input, tt.region); got != tt.want {
				t.Errorf("NormalizePhoneIn(%q, %q) = %q, want %q", tt.input, tt.region, got, tt.want)
			}
		})
	}
}
