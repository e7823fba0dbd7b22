package notify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"
)

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"eventType":"CANCELED","repairId":7}`)
	if !VerifySignature(body, sign(body, "s3cret"), "s3cret") {
		t.Fatal("valid signature rejected")
	}
	if VerifySignature(body, sign(body, "wrong"), "s3cret") {
		t.Fatal("signature from wrong secret accepted")
	}
	if VerifySignature(body, "", "s3cret") {
		t.Fatal("empty signature accepted")
	}
	if VerifySignature(body, sign(body, "s3cret"), "") {
		t.Fatal("empty secret accepted")
	}
}
