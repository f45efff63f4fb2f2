package signature

import "testing"

func TestVerifyRoundTrip(t *testing.T) {
	body := []byte(`{"cap_id":"x1","domain":"ops"}`)
	sig := Sign("shared-secret", body)

	if !Verify("shared-secret", body, sig) {
		t.Fatal("signature produced by Sign must verify")
	}
}

func TestVerifyRejectsTamperedBody(t *testing.T) {
	body := []byte(`{"cap_id":"x1"}`)
	sig := Sign("shared-secret", body)

	for i := range body {
		tampered := append([]byte{}, body...)
		tampered[i] ^= 1
		if Verify("shared-secret", tampered, sig) {
			t.Fatalf("flipping byte %d must break verification", i)
		}
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	body := []byte(`{"cap_id":"x1"}`)
	sig := Sign("shared-secret", body)

	if Verify("other-secret", body, sig) {
		t.Fatal("wrong secret must not verify")
	}
}

func TestVerifyFailsClosed(t *testing.T) {
	body := []byte(`{"cap_id":"x1"}`)

	if Verify("", body, Sign("", body)) {
		t.Fatal("empty secret must never verify, even with a matching MAC")
	}
	if Verify("shared-secret", body, "") {
		t.Fatal("absent signature must not verify")
	}
}

func TestVerifyRejectsMalformedHex(t *testing.T) {
	if Verify("shared-secret", []byte("body"), "not-hex!") {
		t.Fatal("non-hex signature must not verify")
	}
}

func TestVerifyAcceptsPrefixedHeader(t *testing.T) {
	body := []byte(`{"cap_id":"x1"}`)
	sig := "sha256=" + Sign("shared-secret", body)

	if !Verify("shared-secret", body, sig) {
		t.Fatal("sha256=-prefixed signature must verify")
	}
}
