package errors

import "testing"

func TestValidatePackageName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple name", "serde", false},
		{"valid with hyphen", "serde-json", false},
		{"valid with underscore", "serde_derive", false},
		{"empty name", "", true},
		{"path traversal", "../etc/passwd", true},
		{"double slash", "foo//bar", true},
		{"backslash", "foo\\bar", true},
		{"control character", "foo\x07bar", true},
		{"null byte", "foo\x00bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackageName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePackageName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateCrateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "tokio", false},
		{"valid mixed", "async-trait", false},
		{"starts with digit", "1password", true},
		{"contains dot", "a.b", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCrateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCrateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid relative", "patches/libfoo", false},
		{"valid absolute", "/home/user/patches/libfoo", false},
		{"empty", "", true},
		{"traversal", "patches/../../../etc", true},
		{"backslash", "patches\\libfoo", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	if err := ValidateURL("https://github.com/acme/libfoo"); err != nil {
		t.Errorf("ValidateURL() unexpected error: %v", err)
	}
	if err := ValidateURL("git@github.com:acme/libfoo.git"); err == nil {
		t.Error("ValidateURL() expected error for ssh URL")
	}
	if err := ValidateURL(""); err == nil {
		t.Error("ValidateURL() expected error for empty URL")
	}
}
