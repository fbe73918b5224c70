package util

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

var phoneRe = regexp.MustCompile(`^\+?\d{7,15}$`)

// ValidateAmount 验证金额（必须为正数且不超过上限）
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("amount must be positive, got %s", amount)
	}
	if amount.GreaterThanOrEqual(decimal.New(10_000_000, 0)) { // 限制最大金额为1千万
		return fmt.Errorf("amount too large, got %s", amount)
	}
	return nil
}

// ValidatePhone 验证手机号（可选 + 前缀，7-15 位数字）
func ValidatePhone(phone string) error {
	if phone == "" {
		return fmt.Errorf("phone number is empty")
	}
	if !phoneRe.MatchString(phone) {
		return fmt.Errorf("invalid phone number format: %s", phone)
	}
	return nil
}

// ValidateName 验证展示名（不能为空且长度合理）
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("name is empty")
	}
	if len(name) > 64 {
		return fmt.Errorf("name too long, max 64 characters")
	}
	return nil
}
