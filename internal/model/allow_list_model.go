package model

import (
	"time"

	"github.com/blues/pas/internal/party"
)

// AllowListModel 白名单条目：直购目标合约与转售渠道
type AllowListModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Address string              `json:"address" gorm:"not null;uniqueIndex:idx_allow_addr_kind"`
	Kind    party.AllowListKind `json:"kind" gorm:"not null;uniqueIndex:idx_allow_addr_kind"`
	Enabled bool                `json:"enabled" gorm:"default:true"`
}

// TableName 自定义表名
func (AllowListModel) TableName() string {
	return "allow_list"
}
