package party

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// 金额一律为 wei 级整数（decimal 指数为 0），所有百分比计算采用基点整数除法并向下取整。
// 取整产生的尘埃留在活动余额里，不会丢失。

const BpsDenominator = 10000

// mulDivFloor 计算 amount * num / den，向下取整
func mulDivFloor(amount decimal.Decimal, num, den int64) decimal.Decimal {
	x := amount.BigInt()
	x.Mul(x, big.NewInt(num))
	x.Quo(x, big.NewInt(den))
	return decimal.NewFromBigInt(x, 0)
}

// FeeAmount 计算 amount 上按基点收取的费用
func FeeAmount(amount decimal.Decimal, bps int64) decimal.Decimal {
	return mulDivFloor(amount, bps, BpsDenominator)
}

// TotalWithFee 计算 amount 加上基点费用之后的总额
func TotalWithFee(amount decimal.Decimal, bps int64) decimal.Decimal {
	return amount.Add(FeeAmount(amount, bps))
}

// MaxSpend 计算可用资金 total 中扣除费用预留后的最大可出价金额，
// 即 total * 10000 / (10000 + bps)，向下取整，保证 spend + fee(spend) <= total。
func MaxSpend(total decimal.Decimal, bps int64) decimal.Decimal {
	return mulDivFloor(total, BpsDenominator, BpsDenominator+bps)
}

// ProRata 计算 contribution / total 在 pool 中的按比例份额，向下取整
func ProRata(contribution, total, pool decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	x := contribution.BigInt()
	x.Mul(x, pool.BigInt())
	x.Quo(x, total.BigInt())
	return decimal.NewFromBigInt(x, 0)
}

// ScaleSupply 计算铸造的份额总量 totalSpent * scale
func ScaleSupply(totalSpent decimal.Decimal, scale int64) decimal.Decimal {
	return totalSpent.Mul(decimal.NewFromInt(scale))
}
