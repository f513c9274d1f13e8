package web

import (
	"strings"
	"testing"
)

func TestValidateUsername(t *testing.T) {
	testCases := []struct {
		username string
		wantErr  bool
	}{
		{"bob", false},
		{"bob_42", false},
		{"UserName", false},
		{"ab", true},                        // too short
		{"", true},                          // empty
		{"user name", true},                 // space
		{"user-name", true},                 // dash
		{"user@host", true},                 // special char
		{"über", true},                      // non-ascii
		{strings.Repeat("a", 51), true},  // too long
		{strings.Repeat("a", 50), false}, // exactly 50
	}

	for _, tc := range testCases {
		err := validateUsername(tc.username)
		if (err != nil) != tc.wantErr {
			t.Errorf("validateUsername(%q) error = %v, wantErr %t", tc.username, err, tc.wantErr)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	testCases := []struct {
		password string
		wantErr  bool
	}{
		{"secret", false},
		{"123456", false},
		{"12345", true}, // too short
		{"", true},
		{strings.Repeat("x", 128), false},
		{strings.Repeat("x", 129), true}, // too long
	}

	for _, tc := range testCases {
		err := validatePassword(tc.password)
		if (err != nil) != tc.wantErr {
			t.Errorf("validatePassword(len %d) error = %v, wantErr %t", len(tc.password), err, tc.wantErr)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	testCases := []struct {
		email string
		valid bool
	}{
		{"user@example.com", true},
		{"User.Name@sub.example.org", true},
		{"userexample.com", false}, // no @
		{"user@localhost", false},  // no dot
		{"", false},
	}

	for _, tc := range testCases {
		if got := validateEmail(tc.email); got != tc.valid {
			t.Errorf("validateEmail(%q) = %t, want %t", tc.email, got, tc.valid)
		}
	}
}

func TestSafeRedirectTarget(t *testing.T) {
	testCases := []struct {
		target string
		want   string
	}{
		{"", "/"},
		{"/", "/"},
		{"/profile", "/profile"},
		{"/posts?page=2", "/posts?page=2"},
		{"//evil.example.com", "/"},       // protocol-relative
		{"https://evil.example.com", "/"}, // absolute URL
		{"profile", "/"},                  // relative path
		{"javascript:alert(1)", "/"},
	}

	for _, tc := range testCases {
		if got := safeRedirectTarget(tc.target); got != tc.want {
			t.Errorf("safeRedirectTarget(%q) = %q, want %q", tc.target, got, tc.want)
		}
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := hashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hashPassword returned the plaintext password")
	}

	if !checkPassword("correct horse battery staple", hash) {
		t.Error("checkPassword rejected the correct password")
	}
	if checkPassword("wrong password", hash) {
		t.Error("checkPassword accepted a wrong password")
	}
	if checkPassword("", hash) {
		t.Error("checkPassword accepted an empty password")
	}
}

func TestGenerateCSRFToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := generateCSRFToken()
		if err != nil {
			t.Fatalf("generateCSRFToken failed: %v", err)
		}
		if len(token) != 64 {
			t.Fatalf("token length = %d, want 64", len(token))
		}
		if seen[token] {
			t.Fatal("duplicate CSRF token generated")
		}
		seen[token] = true
	}
}

func TestFlashMessages(t *testing.T) {
	SetFlashError("sess1", "something broke")
	SetFlashSuccess("sess2", "all good")

	success, errorMsg := GetAndClearFlash("sess1")
	if success != "" || errorMsg != "something broke" {
		t.Errorf("GetAndClearFlash(sess1) = (%q, %q), want (\"\", \"something broke\")", success, errorMsg)
	}

	// Flash is cleared after reading
	success, errorMsg = GetAndClearFlash("sess1")
	if success != "" || errorMsg != "" {
		t.Errorf("second GetAndClearFlash(sess1) = (%q, %q), want empty", success, errorMsg)
	}

	success, errorMsg = GetAndClearFlash("sess2")
	if success != "all good" || errorMsg != "" {
		t.Errorf("GetAndClearFlash(sess2) = (%q, %q), want (\"all good\", \"\")", success, errorMsg)
	}

	// Unknown sessions yield nothing
	success, errorMsg = GetAndClearFlash("unknown")
	if success != "" || errorMsg != "" {
		t.Errorf("GetAndClearFlash(unknown) = (%q, %q), want empty", success, errorMsg)
	}
}
