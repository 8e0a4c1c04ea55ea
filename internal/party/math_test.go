package party

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestFeeAmount(t *testing.T) {
	require := require.New(t)

	// 250 基点 = 2.5%
	require.True(FeeAmount(d("10000"), 250).Equal(d("250")))
	// 向下取整
	require.True(FeeAmount(d("39"), 250).Equal(d("0")))
	require.True(FeeAmount(d("41"), 250).Equal(d("1")))
	require.True(FeeAmount(d("0"), 250).Equal(d("0")))
}

func TestTotalWithFee(t *testing.T) {
	require := require.New(t)

	require.True(TotalWithFee(d("4000000"), 250).Equal(d("4100000")))
	require.True(TotalWithFee(d("100"), 0).Equal(d("100")))
}

func TestMaxSpendNeverExceedsFunds(t *testing.T) {
	require := require.New(t)

	totals := []string{"1", "40", "41", "4100000", "999999999999999999", "1000000000000000000000"}
	for _, s := range totals {
		total := d(s)
		spend := MaxSpend(total, 250)
		// 出价加上费用不能超过可用资金
		require.True(TotalWithFee(spend, 250).LessThanOrEqual(total),
			"total=%s spend=%s", total, spend)
	}

	require.True(MaxSpend(d("4100000"), 250).Equal(d("4000000")))
	require.True(MaxSpend(d("0"), 250).Equal(d("0")))
}

func TestProRata(t *testing.T) {
	require := require.New(t)

	// 1/6、2/6、3/6 分 752000，向下取整
	total := d("6000000")
	pool := d("752000")
	require.True(ProRata(d("1000000"), total, pool).Equal(d("125333")))
	require.True(ProRata(d("2000000"), total, pool).Equal(d("250666")))
	require.True(ProRata(d("3000000"), total, pool).Equal(d("376000")))

	// 各份额之和不超过池子，尘埃留在池里
	sum := ProRata(d("1000000"), total, pool).
		Add(ProRata(d("2000000"), total, pool)).
		Add(ProRata(d("3000000"), total, pool))
	require.True(sum.LessThanOrEqual(pool))

	// 总额为零时不除零
	require.True(ProRata(d("1"), d("0"), pool).Equal(d("0")))
}

func TestScaleSupply(t *testing.T) {
	require := require.New(t)

	require.True(ScaleSupply(d("5248000"), 1000).Equal(d("5248000000")))
	require.True(ScaleSupply(d("0"), 1000).Equal(d("0")))
}
