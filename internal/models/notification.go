package models

import "time"

// Notification 站内通知
type Notification struct {
	ID           uint      `gorm:"primarykey" json:"id"`                                 // 主键
	Destinatario string    `gorm:"type:varchar(255);index;not null" json:"destinatario"` // 接收人
	Tipo         string    `gorm:"type:varchar(64);index" json:"tipo"`                   // 通知类型
	Titulo       string    `gorm:"type:varchar(255);not null" json:"titulo"`             // 标题
	Mensagem     string    `gorm:"type:text" json:"mensagem"`                            // 内容
	Prioridade   string    `gorm:"type:varchar(20);not null" json:"prioridade"`          // 优先级
	Dados        JSON      `gorm:"type:json" json:"dados"`                               // 附加数据
	Lida         bool      `gorm:"not null;default:false;index" json:"lida"`             // 是否已读
	CreatedAt    time.Time `gorm:"index" json:"created_at"`                              // 创建时间
}

// TableName 指定表名
func (Notification) TableName() string {
	return "notificacoes"
}
