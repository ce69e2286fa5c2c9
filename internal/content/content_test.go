package content

import "testing"

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "hello there", "hello there"},
		{"script stripped", `hi<script>alert(1)</script>`, "hi"},
		{"event handler stripped", `<b onclick="x()">bold</b>`, `<b>bold</b>`},
		{"iframe stripped", `<iframe src="http://evil"></iframe>ok`, "ok"},
		{"empty", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Sanitize(tc.input); got != tc.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestEscape(t *testing.T) {
	if got := Escape(`<b>&"'</b>`); got != "&lt;b&gt;&amp;&#34;&#39;&lt;/b&gt;" {
		t.Errorf("Escape = %q", got)
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "Asha", false},
		{"two runes", "Al", false},
		{"empty", "", true},
		{"one rune", "A", true},
		{"too long", string(make([]rune, 46)), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateName(tc.input)
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tc.input, err, tc.wantErr)
			}
		})
	}
}

func TestValidateAboutMe(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "I like long walks", false},
		{"empty", "", true},
		{"too short", "short", true},
		{"too long", string(make([]rune, 351)), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateAboutMe(tc.input)
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidateAboutMe error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestValidateCountryCode(t *testing.T) {
	tests := []struct {
		code    string
		wantErr bool
	}{
		{"+1", false},
		{"+94", false},
		{"+971", false},
		{"", true},
		{"94", true},
		{"+0", true},
		{"+9999", true},
		{"+abc", true},
	}
	for _, tc := range tests {
		err := ValidateCountryCode(tc.code)
		if (err != nil) != tc.wantErr {
			t.Errorf("ValidateCountryCode(%q) error = %v, wantErr %v", tc.code, err, tc.wantErr)
		}
	}
}

func TestValidateContactNo(t *testing.T) {
	tests := []struct {
		no      string
		wantErr bool
	}{
		{"7012345", false},
		{"701234567890123", false},
		{"", true},
		{"0712345678", true}, // leading zero
		{"123456", true},     // too short
		{"1234567890123456", true},
		{"70123456a", true},
	}
	for _, tc := range tests {
		err := ValidateContactNo(tc.no)
		if (err != nil) != tc.wantErr {
			t.Errorf("ValidateContactNo(%q) error = %v, wantErr %v", tc.no, err, tc.wantErr)
		}
	}
}
