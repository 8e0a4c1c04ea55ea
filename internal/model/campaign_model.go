package model

import (
	"time"

	"github.com/blues/pas/internal/party"
	"github.com/shopspring/decimal"
)

// CampaignModel 收购活动模型，每个目标资产一条记录
type CampaignModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 基本信息
	Name    string                `json:"name" gorm:"not null" binding:"required"`
	Variant party.CampaignVariant `json:"variant" gorm:"not null"`
	Status  party.CampaignStatus  `json:"status" gorm:"default:'active';index"`

	// 目标资产，创建后不可变
	AssetContract string `json:"asset_contract" gorm:"not null"`
	AssetTokenId  string `json:"asset_token_id" gorm:"not null"`

	// 竞拍模式：外部拍卖标识与当前出价
	AuctionId  string          `json:"auction_id"`
	CurrentBid decimal.Decimal `json:"current_bid" gorm:"type:numeric(78,0);default:0"`
	Leading    bool            `json:"leading" gorm:"default:false"`

	// 直购模式：价格上限
	MaxPrice decimal.Decimal `json:"max_price" gorm:"type:numeric(78,0);default:0"`

	// 逾期时间，零值表示无逾期出口
	ExpiresAt *time.Time `json:"expires_at"`

	// 账本总额
	TotalContributed decimal.Decimal `json:"total_contributed" gorm:"type:numeric(78,0);default:0"`
	TotalSpent       decimal.Decimal `json:"total_spent" gorm:"type:numeric(78,0);default:0"`

	// 费用配置，创建后不可变
	EthFeeBps        int64           `json:"eth_fee_bps"`
	TokenFeeBps      int64           `json:"token_fee_bps"`
	SplitRecipient   string          `json:"split_recipient"`
	SplitBps         int64           `json:"split_bps"`
	ResaleMultiplier decimal.Decimal `json:"resale_multiplier" gorm:"type:numeric(10,4);default:1"`
	TokenScale       int64           `json:"token_scale"`
	QuorumBps        int64           `json:"quorum_bps"`

	// 贡献门槛代币，可选
	GateToken      string          `json:"gate_token"`
	GateMinBalance decimal.Decimal `json:"gate_min_balance" gorm:"type:numeric(78,0);default:0"`

	// 结算结果，WON 时一次性写入。每笔费用划转各带一个检查点，
	// 结算重试据此跳过已完成的划转
	ShareToken     string          `json:"share_token"`
	ShareSupply    decimal.Decimal `json:"share_supply" gorm:"type:numeric(78,0);default:0"`
	HeldShares     decimal.Decimal `json:"held_shares" gorm:"type:numeric(78,0);default:0"`
	ResalePrice    decimal.Decimal `json:"resale_price" gorm:"type:numeric(78,0);default:0"`
	FinalizedAt    *time.Time      `json:"finalized_at"`
	TokenFeePaidAt *time.Time      `json:"token_fee_paid_at"`
	SplitPaidAt    *time.Time      `json:"split_paid_at"`
	EthFeePaidAt   *time.Time      `json:"eth_fee_paid_at"`
	SettledAt      *time.Time      `json:"settled_at"`

	// 转售治理结果；批准后资产移交完成前 asset_routed_at 为空，可重试
	ApprovedReseller string     `json:"approved_reseller"`
	ApprovedCalldata string     `json:"approved_calldata"`
	AssetRoutedAt    *time.Time `json:"asset_routed_at"`
}

// TableName 自定义表名
func (CampaignModel) TableName() string {
	return "campaign"
}

// FeeCeiling 直购模式贡献上限：maxPrice 加上对应 ETH 费用
func (c *CampaignModel) FeeCeiling() decimal.Decimal {
	return party.TotalWithFee(c.MaxPrice, c.EthFeeBps)
}

// Expired 是否已过逾期时间
func (c *CampaignModel) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}
