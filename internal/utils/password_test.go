package utils_test

import (
	"testing"

	"github.com/davitp/timesheet-tracker/internal/utils"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := utils.HashPassword("longenough1", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "longenough1" {
		t.Fatal("HashPassword stored the plain password")
	}
	if !utils.VerifyPassword(hash, "longenough1") {
		t.Error("VerifyPassword rejected the correct password")
	}
	if utils.VerifyPassword(hash, "wrongpassword") {
		t.Error("VerifyPassword accepted a wrong password")
	}
}
