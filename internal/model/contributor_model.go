package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContributorModel 贡献者累计账本，按 (活动, 地址) 唯一
type ContributorModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId int64           `json:"campaign_id" gorm:"not null;uniqueIndex:idx_contributor_campaign_addr"`
	Address    string          `json:"address" gorm:"not null;uniqueIndex:idx_contributor_campaign_addr"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:numeric(78,0);not null"`

	// claimed 只允许 false -> true 一次，claim 的全部效果与该翻转绑定
	Claimed       bool            `json:"claimed" gorm:"default:false"`
	ClaimedTokens decimal.Decimal `json:"claimed_tokens" gorm:"type:numeric(78,0);default:0"`
	ClaimedEth    decimal.Decimal `json:"claimed_eth" gorm:"type:numeric(78,0);default:0"`
}

// TableName 自定义表名
func (ContributorModel) TableName() string {
	return "contributor"
}
