package handler

import (
	"errors"

	"github.com/shopspring/decimal"
)

// parseWei 解析十进制字符串的 wei 金额，要求非负整数
func parseWei(s string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if v.IsNegative() || !v.IsInteger() {
		return decimal.Zero, errors.New("金额必须为非负整数")
	}
	return v, nil
}
