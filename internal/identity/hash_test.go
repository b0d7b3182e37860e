package identity

import "testing"

func TestHashIsDeterministic(t *testing.T) {
	a := Hash("203.0.113.7")
	b := Hash("203.0.113.7")
	if a != b {
		t.Errorf("same input produced different tokens: %q vs %q", a, b)
	}
}

func TestHashDistinguishesInputs(t *testing.T) {
	if Hash("user-1") == Hash("user-2") {
		t.Error("different inputs produced the same token")
	}
}

func TestHashLength(t *testing.T) {
	cases := []string{"", "a", "session-abcdef", "203.0.113.7"}
	for _, raw := range cases {
		token := Hash(raw)
		if len(token) != TokenLength {
			t.Errorf("Hash(%q) length = %d, want %d", raw, len(token), TokenLength)
		}
	}
}

func TestHashDoesNotEchoInput(t *testing.T) {
	raw := "account-42"
	if Hash(raw) == raw {
		t.Error("token must not equal the raw identifier")
	}
}
