package utils

import (
	"regexp"
)

// 宽松的 E.164 校验：可选 + 前缀，8 到 15 位数字
var phonePattern = regexp.MustCompile(`^\+?[0-9]{8,15}$`)

func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phone)
}
