package models

import (
	"database/sql/driver"
	"time"

	"github.com/comissoes-next/internal/constants"
)

// SyncJob 佣金同步任务
type SyncJob struct {
	ID           uint          `gorm:"primarykey" json:"id"`                          // 主键
	Status       string        `gorm:"type:varchar(20);not null;index" json:"status"` // 任务状态
	Solicitante  string        `gorm:"type:varchar(255)" json:"solicitante"`          // 发起人（通知接收方）
	IniciadoEm   *time.Time    `json:"iniciado_em"`                                   // 开始处理时间
	ConcluidoEm  *time.Time    `json:"concluido_em"`                                  // 结束时间
	Resultado    SyncJobResult `gorm:"type:json" json:"resultado"`                    // 处理结果计数
	ErroMensagem string        `gorm:"type:text" json:"erro_mensagem"`                // 失败原因
	CreatedAt    time.Time     `gorm:"index" json:"created_at"`                       // 创建时间
	UpdatedAt    time.Time     `gorm:"index" json:"updated_at"`                       // 更新时间
}

// TableName 指定表名
func (SyncJob) TableName() string {
	return "comissao_sync_jobs"
}

// IsTerminal 是否已到达终态
func (j *SyncJob) IsTerminal() bool {
	return j != nil && (j.Status == constants.SyncJobStatusConcluded || j.Status == constants.SyncJobStatusError)
}

// SyncJobResult 同步计数
type SyncJobResult struct {
	Criados     int `json:"criados"`
	Atualizados int `json:"atualizados"`
	Ignorados   int `json:"ignorados"`
	Erros       int `json:"erros"`
	Total       int `json:"total"`
}

// Value 实现 driver.Valuer 接口
func (r SyncJobResult) Value() (driver.Value, error) {
	return marshalJSONColumn(r)
}

// Scan 实现 sql.Scanner 接口
func (r *SyncJobResult) Scan(value interface{}) error {
	if value == nil {
		*r = SyncJobResult{}
		return nil
	}
	return scanJSONColumn(value, r)
}
