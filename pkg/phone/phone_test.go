package phone

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"formatted mobile", "(11) 99999-8888", "5511999998888@s.whatsapp.net", false},
		{"landline length", "1133334444", "551133334444@s.whatsapp.net", false},
		{"with country code", "+55 21 98888-7777", "5521988887777@s.whatsapp.net", false},
		{"already chat address", "5511999998888@s.whatsapp.net", "5511999998888@s.whatsapp.net", false},
		{"too short", "99999", "", true},
		{"too long", "123456789012345", "", true},
		{"empty", "  ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Normalize(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDisplay(t *testing.T) {
	if got := Display("5511999998888@s.whatsapp.net"); got != "5511999998888" {
		t.Errorf("Display() = %q", got)
	}
}
