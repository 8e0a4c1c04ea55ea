package model

import (
	"time"
)

// EventModel 活动事件流水，供离线索引使用
type EventModel struct {
	Id        string    `json:"id" gorm:"primaryKey"` // uuid
	CreatedAt time.Time `json:"created_at"`

	CampaignId int64  `json:"campaign_id" gorm:"index"`
	Name       string `json:"name" gorm:"not null;index"`
	Data       string `json:"data" gorm:"type:text"`
	TxHash     string `json:"tx_hash"`
	BlockNum   int64  `json:"block_num"`
	LogIndex   int64  `json:"log_index"`
}

// TableName 自定义表名
func (EventModel) TableName() string {
	return "event"
}

// 事件名称
const (
	EventContributed       = "Contributed"
	EventBid               = "Bid"
	EventBought            = "Bought"
	EventFinalized         = "Finalized"
	EventExpired           = "Expired"
	EventClaimed           = "Claimed"
	EventForcedLost        = "ForcedLost"
	EventResellerSupported = "ResellerSupported"
	EventResellerApproved  = "ResellerApproved"
	EventOutbid            = "Outbid"
)
