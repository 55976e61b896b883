package repository

import (
	"strings"

	"github.com/comissoes-next/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository 通知数据访问接口
type NotificationRepository interface {
	GetByID(id uint) (*models.Notification, error)
	Create(notification *models.Notification) error
	ListByRecipient(destinatario string, limit int) ([]models.Notification, error)
}

// GormNotificationRepository GORM 实现
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository 创建通知仓库
func NewNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// GetByID 根据 ID 获取通知
func (r *GormNotificationRepository) GetByID(id uint) (*models.Notification, error) {
	if id == 0 {
		return nil, nil
	}
	return firstOrNil[models.Notification](r.db, id)
}

// Create 创建通知
func (r *GormNotificationRepository) Create(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

// ListByRecipient 获取接收人最近的通知
func (r *GormNotificationRepository) ListByRecipient(destinatario string, limit int) ([]models.Notification, error) {
	query := r.db.Where("destinatario = ?", strings.TrimSpace(destinatario)).Order("id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []models.Notification
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
