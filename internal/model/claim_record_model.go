package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClaimRecordModel 提领流水，一个贡献者最多一条
type ClaimRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId  int64           `json:"campaign_id" gorm:"not null;index"`
	Address     string          `json:"address" gorm:"not null"`
	TokenAmount decimal.Decimal `json:"token_amount" gorm:"type:numeric(78,0);not null"`
	EthAmount   decimal.Decimal `json:"eth_amount" gorm:"type:numeric(78,0);not null"`

	// 直接转账失败时退为 WETH
	ViaWeth  bool   `json:"via_weth" gorm:"default:false"`
	TxHash   string `json:"tx_hash"`
	BlockNum int64  `json:"block_num"`
}

// TableName 自定义表名
func (ClaimRecordModel) TableName() string {
	return "claim_record"
}
