package engine

import "testing"

func TestCheckSyntax_Valid(t *testing.T) {
	valid, local, domain := checkSyntax("User.Name+tag@Example.COM")
	if !valid {
		t.Fatalf("expected valid syntax")
	}
	if local != "User.Name+tag" {
		t.Fatalf("unexpected local part: %q", local)
	}
	if domain != "example.com" {
		t.Fatalf("expected lower-cased domain, got %q", domain)
	}
}

func TestCheckSyntax_Invalid(t *testing.T) {
	cases := []string{"", "not-an-email", "missing@domain", "@example.com", "user@", "user@.com"}
	for _, address := range cases {
		if valid, _, _ := checkSyntax(address); valid {
			t.Errorf("expected %q to be invalid", address)
		}
	}
}
