package util

import (
	"testing"

	"github.com/shopspring/decimal"
)

// TestValidateAmount_Positive 测试正数金额
func TestValidateAmount_Positive(t *testing.T) {
	testCases := []string{"0.01", "1", "100.5", "9999999.99"}

	for _, s := range testCases {
		amount := decimal.RequireFromString(s)
		err := ValidateAmount(amount)
		if err != nil {
			t.Errorf("ValidateAmount(%s) error = %v, want nil", s, err)
		}
	}
}

// TestValidateAmount_ZeroAndNegative 测试零和负数金额（异常）
func TestValidateAmount_ZeroAndNegative(t *testing.T) {
	testCases := []string{"0", "-0.01", "-100"}

	for _, s := range testCases {
		amount := decimal.RequireFromString(s)
		err := ValidateAmount(amount)
		if err == nil {
			t.Errorf("ValidateAmount(%s) error = nil, want error", s)
		}
	}
}

// TestValidateAmount_TooLarge 测试金额过大（异常）
func TestValidateAmount_TooLarge(t *testing.T) {
	err := ValidateAmount(decimal.New(100_000_000, 0)) // 1亿
	if err == nil {
		t.Error("ValidateAmount(100000000) error = nil, want error")
	}
}

// TestValidatePhone_Valid 测试有效手机号
func TestValidatePhone_Valid(t *testing.T) {
	testCases := []string{
		"+15550001111",
		"15550001111",
		"1234567",
		"+123456789012345",
	}

	for _, phone := range testCases {
		if err := ValidatePhone(phone); err != nil {
			t.Errorf("ValidatePhone(%q) error = %v, want nil", phone, err)
		}
	}
}

// TestValidatePhone_Invalid 测试无效手机号（异常）
func TestValidatePhone_Invalid(t *testing.T) {
	testCases := []string{
		"",
		"123456",           // 太短
		"1234567890123456", // 太长
		"+1-555-000-1111",  // 带分隔符
		"phone",
		"555 000",
	}

	for _, phone := range testCases {
		if err := ValidatePhone(phone); err == nil {
			t.Errorf("ValidatePhone(%q) error = nil, want error", phone)
		}
	}
}

// TestValidateName 测试展示名校验
func TestValidateName(t *testing.T) {
	if err := ValidateName("Alice"); err != nil {
		t.Errorf("ValidateName(Alice) error = %v, want nil", err)
	}
	if err := ValidateName(""); err == nil {
		t.Error("ValidateName(\"\") error = nil, want error")
	}

	long := make([]byte, 65)
	for i := range long {
		long[i] = 'a'
	}
	if err := ValidateName(string(long)); err == nil {
		t.Error("ValidateName(65 chars) error = nil, want error")
	}
}
