package logic

import (
	"encoding/json"

	"github.com/blues/pas/internal/logger"
	"github.com/blues/pas/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// recordEvent 在同一事务里落一条事件流水，供离线索引消费
func recordEvent(tx *gorm.DB, campaignId int64, name string, data map[string]interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		logger.Warn("Failed to marshal event data for %s: %v", name, err)
		payload = []byte("{}")
	}

	event := model.EventModel{
		Id:         uuid.NewString(),
		CampaignId: campaignId,
		Name:       name,
		Data:       string(payload),
	}
	return tx.Create(&event).Error
}
