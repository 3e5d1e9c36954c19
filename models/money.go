package models

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
)

// Money 金额类型，内部以“分”为单位的整数存储，
// 映射到数据库 decimal 列时走字符串转换，避免浮点误差
type Money int64

// MoneyFromFloat 从浮点金额（元）构造，四舍五入到分
func MoneyFromFloat(v float64) Money {
	if v >= 0 {
		return Money(v*100 + 0.5)
	}
	return Money(v*100 - 0.5)
}

// ParseMoney 解析十进制字符串金额（元），如 "123.45"
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("金额不能为空")
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	// 纯符号（"-"、"."）不含任何数字
	if intPart == "" && fracPart == "" {
		return 0, fmt.Errorf("无效的金额: %s", s)
	}
	if intPart == "" {
		intPart = "0"
	}
	if len(fracPart) > 2 {
		return 0, fmt.Errorf("金额最多两位小数: %s", s)
	}
	for len(fracPart) < 2 {
		fracPart += "0"
	}
	yuan, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("无效的金额: %s", s)
	}
	cents, err := strconv.ParseInt(fracPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("无效的金额: %s", s)
	}
	total := yuan*100 + cents
	if neg {
		total = -total
	}
	return Money(total), nil
}

// Float 转浮点（仅用于展示，两位小数范围内无误差）
func (m Money) Float() float64 {
	return float64(m) / 100
}

// String 十进制字符串表示，如 "123.45"
func (m Money) String() string {
	v := int64(m)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// Value 实现 driver.Valuer，写入 decimal 列
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan 实现 sql.Scanner，从 decimal 列读取
func (m *Money) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*m = 0
		return nil
	case []byte:
		parsed, err := ParseMoney(string(v))
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	case string:
		parsed, err := ParseMoney(v)
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	case int64:
		*m = Money(v * 100)
		return nil
	case float64:
		*m = MoneyFromFloat(v)
		return nil
	default:
		return fmt.Errorf("无法将 %T 扫描为 Money", src)
	}
}

// MarshalJSON 以数字输出（元）
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON 接受数字或字符串
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		*m = 0
		return nil
	}
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
