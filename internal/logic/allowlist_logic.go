package logic

import (
	"errors"
	"strings"

	"github.com/blues/pas/internal/model"
	"github.com/blues/pas/internal/party"
	"gorm.io/gorm"
)

// AllowListLogic 白名单业务逻辑：直购目标合约与转售渠道，仅操作员可变更
type AllowListLogic struct {
	db *gorm.DB
}

// NewAllowListLogic 创建白名单业务逻辑
func NewAllowListLogic(db *gorm.DB) *AllowListLogic {
	return &AllowListLogic{db: db}
}

// IsAllowed 地址是否在指定类型的白名单内
func (l *AllowListLogic) IsAllowed(address string, kind party.AllowListKind) (bool, error) {
	var entry model.AllowListModel
	err := l.db.Where("lower(address) = ? AND kind = ? AND enabled = ?",
		strings.ToLower(address), kind, true).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Allow 加入白名单，重复加入则重新启用
func (l *AllowListLogic) Allow(address string, kind party.AllowListKind) error {
	var entry model.AllowListModel
	err := l.db.Where("lower(address) = ? AND kind = ?", strings.ToLower(address), kind).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return l.db.Create(&model.AllowListModel{
			Address: strings.ToLower(address),
			Kind:    kind,
			Enabled: true,
		}).Error
	}
	if err != nil {
		return err
	}
	return l.db.Model(&entry).Update("enabled", true).Error
}

// Disallow 移出白名单
func (l *AllowListLogic) Disallow(address string, kind party.AllowListKind) error {
	return l.db.Model(&model.AllowListModel{}).
		Where("lower(address) = ? AND kind = ?", strings.ToLower(address), kind).
		Update("enabled", false).Error
}

// List 列出指定类型的启用条目
func (l *AllowListLogic) List(kind party.AllowListKind) ([]model.AllowListModel, error) {
	var entries []model.AllowListModel
	if err := l.db.Where("kind = ? AND enabled = ?", kind, true).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
