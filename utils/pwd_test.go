package utils

import "testing"

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := GetPwd("hunter2secret")
	if err != nil {
		t.Fatalf("GetPwd failed: %v", err)
	}
	if hash == "hunter2secret" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !CheckPwd("hunter2secret", hash) {
		t.Error("correct password rejected")
	}
	if CheckPwd("wrongpassword", hash) {
		t.Error("wrong password accepted")
	}
}
