package hostname

import "testing"

func TestNormalizeAccepts(t *testing.T) {
	cases := map[string]string{
		"Example.COM":     "example.com",
		"sub.example.com": "sub.example.com",
		"ADS.Example.Com": "ads.example.com",
	}

	for in, want := range cases {
		got, err := Normalize(in)
		if err != nil {
			t.Fatalf("Normalize(%q) returned error: %s", in, err)
		}
		if got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeRejects(t *testing.T) {
	bad := []string{
		"",
		"example.com.",
		"example",
		"192.168.1.1",
		"exa_mple.com",
		"-example.com",
		"example-.com",
		string(make([]byte, 300)),
	}
	for _, in := range bad {
		if _, err := Normalize(in); err == nil {
			t.Errorf("Normalize(%q) should have failed", in)
		}
	}
}

func TestIsSyntacticallyValid(t *testing.T) {
	if !IsSyntacticallyValid("example.com") {
		t.Error("expected example.com to be valid")
	}
	if IsSyntacticallyValid("not a hostname") {
		t.Error("expected \"not a hostname\" to be invalid")
	}
}
