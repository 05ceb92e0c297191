package model

import (
	"time"
)

// Host 活动主持人账号
type Host struct {
	ID          uint64 `gorm:"primaryKey"`
	Email       string `gorm:"type:varchar(255);uniqueIndex:idx_email;not null"`
	Password    string `gorm:"type:varchar(255);not null"`
	DisplayName string `gorm:"type:varchar(64)"`
	IsDisabled  bool   `gorm:"type:tinyint(1);default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Host) TableName() string {
	return "hosts"
}
