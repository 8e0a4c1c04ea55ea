package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContributeRecordModel 单笔贡献流水
type ContributeRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId int64           `json:"campaign_id" gorm:"not null;index"`
	Address    string          `json:"address" gorm:"not null"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:numeric(78,0);not null"`
	TxHash     string          `json:"tx_hash" gorm:"uniqueIndex"`
	BlockNum   int64           `json:"block_num"`

	// 入账后的活动总额，便于离线核对
	TotalAfter decimal.Decimal `json:"total_after" gorm:"type:numeric(78,0)"`
}

// TableName 自定义表名
func (ContributeRecordModel) TableName() string {
	return "contribute_record"
}
