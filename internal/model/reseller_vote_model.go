package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ResellerVoteModel 转售渠道投票记录，(活动, 投票人, 渠道, calldata) 唯一
type ResellerVoteModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId   int64           `json:"campaign_id" gorm:"not null;uniqueIndex:idx_vote_unique"`
	Voter        string          `json:"voter" gorm:"not null;uniqueIndex:idx_vote_unique"`
	Reseller     string          `json:"reseller" gorm:"not null;uniqueIndex:idx_vote_unique"`
	CalldataHash string          `json:"calldata_hash" gorm:"not null;uniqueIndex:idx_vote_unique"`
	Weight       decimal.Decimal `json:"weight" gorm:"type:numeric(78,0);not null"`
}

// TableName 自定义表名
func (ResellerVoteModel) TableName() string {
	return "reseller_vote"
}
