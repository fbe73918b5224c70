package util

import (
	"testing"
	"time"
)

const testSecret = "unit-test-secret"

// TestGenerateAndParseToken 正常签发 + 解析
func TestGenerateAndParseToken(t *testing.T) {
	tokenStr, err := GenerateToken(testSecret, 42, true, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error = %v", err)
	}

	claims, err := ParseToken(testSecret, tokenStr)
	if err != nil {
		t.Fatalf("ParseToken error = %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if !claims.IsAdmin {
		t.Error("IsAdmin = false, want true")
	}
	if claims.ID == "" {
		t.Error("jti is empty")
	}
}

// TestParseToken_WrongSecret 密钥不对应该失败
func TestParseToken_WrongSecret(t *testing.T) {
	tokenStr, err := GenerateToken(testSecret, 1, false, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error = %v", err)
	}

	if _, err := ParseToken("other-secret", tokenStr); err == nil {
		t.Error("ParseToken with wrong secret error = nil, want error")
	}
}

// TestParseToken_Expired 过期 token 应该失败
func TestParseToken_Expired(t *testing.T) {
	tokenStr, err := GenerateToken(testSecret, 1, false, time.Millisecond)
	if err != nil {
		t.Fatalf("GenerateToken error = %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, err := ParseToken(testSecret, tokenStr); err == nil {
		t.Error("ParseToken with expired token error = nil, want error")
	}
}

// TestTokenRemainingTTL 剩余有效期
func TestTokenRemainingTTL(t *testing.T) {
	tokenStr, err := GenerateToken(testSecret, 1, false, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error = %v", err)
	}
	claims, err := ParseToken(testSecret, tokenStr)
	if err != nil {
		t.Fatalf("ParseToken error = %v", err)
	}

	remaining := TokenRemainingTTL(claims)
	if remaining <= 50*time.Minute || remaining > time.Hour {
		t.Errorf("TokenRemainingTTL = %v, want (50m, 1h]", remaining)
	}

	if got := TokenRemainingTTL(nil); got != 7*24*time.Hour {
		t.Errorf("TokenRemainingTTL(nil) = %v, want 168h", got)
	}
}
