package game

import (
	"strings"
	"testing"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"single letter", "a", false},
		{"mixed case", "UserName", false},
		{"with numbers", "user123", false},
		{"with hyphen", "test-name", false},
		{"with underscore", "test_name", false},
		{"max length 16", "abcdefghijklmnop", false},
		{"contains reserved word", "identity", false},

		{"empty", "", true},
		{"starts with number", "1user", true},
		{"starts with underscore", "_user", true},
		{"too long 17 chars", "abcdefghijklmnopq", true},
		{"contains space", "user name", true},
		{"contains dot", "user.name", true},
		{"unicode", "usér", true},
		{"reserved id", "id", true},
		{"reserved class", "class", true},
		{"reserved upper case", "ID", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateUsername(tt.username)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateUsername(%q) error = %v, wantErr %v", tt.username, err, tt.wantErr)
			}
			if err != nil {
				if _, ok := err.(InvalidUsernameError); !ok {
					t.Errorf("validateUsername(%q) returned %T, want InvalidUsernameError", tt.username, err)
				}
			}
		})
	}
}

func TestInvalidUsernameErrorMessage(t *testing.T) {
	msg := InvalidUsernameError{Username: "1abc"}.Error()
	if want := "Username '1abc' is invalid, please try again."; msg != want {
		t.Errorf("got %q, want %q", msg, want)
	}
}

func TestHashPassword(t *testing.T) {
	password := "testPassword123!"

	hash1, err := hashPassword(password)
	if err != nil {
		t.Fatalf("hashPassword() error = %v", err)
	}
	if !strings.HasPrefix(hash1, "$argon2id$") {
		t.Errorf("hash should start with $argon2id$, got: %q", hash1)
	}
	if parts := strings.Split(hash1, "$"); len(parts) != 6 {
		t.Errorf("hash should have 6 parts, got %d: %q", len(parts), hash1)
	}

	hash2, err := hashPassword(password)
	if err != nil {
		t.Fatalf("hashPassword() second call error = %v", err)
	}
	if hash1 == hash2 {
		t.Error("hashPassword() should salt every hash")
	}
}

func TestVerifyPassword(t *testing.T) {
	password := "testPassword123!"

	hash, err := hashPassword(password)
	if err != nil {
		t.Fatalf("hashPassword() error = %v", err)
	}

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{"correct password", password, hash, true},
		{"wrong password", "wrongPassword456!", hash, false},
		{"similar password", "testPassword123?", hash, false},
		{"empty password", "", hash, false},
		{"empty hash", password, "", false},
		{"wrong prefix", password, "$argon2i$v=19$m=65536,t=1,p=4$abc$def", false},
		{"too few parts", password, "$argon2id$v=19", false},
		{"wrong version", password, strings.Replace(hash, "v=19", "v=18", 1), false},
		{"invalid base64 salt", password, "$argon2id$v=19$m=65536,t=1,p=4$!!!$def", false},
		{"invalid base64 hash", password, "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$!!!", false},
		{"invalid params", password, "$argon2id$v=19$invalid$abc$def", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := verifyPassword(tt.password, tt.hash); got != tt.want {
				t.Errorf("verifyPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}
