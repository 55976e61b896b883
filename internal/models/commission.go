package models

import (
	"database/sql/driver"
	"time"

	"github.com/comissoes-next/internal/constants"
)

// CommissionEntry 佣金台账记录（每个订单至多一条未关闭记录）
type CommissionEntry struct {
	ID                   uint                `gorm:"primarykey" json:"id"`                                        // 主键
	PedidoID             uint                `gorm:"not null;index" json:"pedido_id"`                             // 订单ID
	PedidoNumero         string              `gorm:"type:varchar(64)" json:"pedido_numero"`                       // 订单编号
	ClienteNome          string              `gorm:"type:varchar(255)" json:"cliente_nome"`                       // 客户名称
	RepresentanteCodigo  string              `gorm:"type:varchar(64);index" json:"representante_codigo"`          // 代表编码
	RepresentanteNome    string              `gorm:"type:varchar(255)" json:"representante_nome"`                 // 代表名称
	Status               string              `gorm:"type:varchar(20);not null;index" json:"status"`               // 记录状态（aberto/fechado）
	ValorBase            Money               `gorm:"type:decimal(20,2);not null;default:0" json:"valor_base"`     // 佣金基数
	Percentual           Money               `gorm:"type:decimal(10,2);not null;default:0" json:"percentual"`     // 佣金比例（百分比）
	ValorComissao        Money               `gorm:"type:decimal(20,2);not null;default:0" json:"valor_comissao"` // 佣金金额
	DataCompetencia      string              `gorm:"type:varchar(10);not null" json:"data_competencia"`           // 权责日期
	MesCompetencia       string              `gorm:"type:varchar(7);not null;index" json:"mes_competencia"`       // 权责月份（YYYY-MM）
	Observacao           string              `gorm:"type:text" json:"observacao"`                                 // 审计备注（只追加）
	Movimentacoes        CommissionMovements `gorm:"type:json" json:"movimentacoes"`                              // 月份滚动记录
	ComissaoFechamentoID *uint               `gorm:"index" json:"comissao_fechamento_id"`                         // 所属结算快照
	CreatedAt            time.Time           `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt            time.Time           `gorm:"index" json:"updated_at"`                                     // 更新时间
}

// TableName 指定表名
func (CommissionEntry) TableName() string {
	return "comissoes"
}

// IsClosed 是否已关闭（关闭后不可变更）
func (e *CommissionEntry) IsClosed() bool {
	return e != nil && e.Status == constants.CommissionStatusClosed
}

// CommissionMovement 权责月份滚动记录
type CommissionMovement struct {
	Data       string `json:"data"`
	MesOrigem  string `json:"mes_origem"`
	MesDestino string `json:"mes_destino"`
	Usuario    string `json:"usuario"`
	Motivo     string `json:"motivo"`
}

// CommissionMovements 滚动记录列表
type CommissionMovements []CommissionMovement

// Value 实现 driver.Valuer 接口
func (m CommissionMovements) Value() (driver.Value, error) {
	if m == nil {
		return "[]", nil
	}
	return marshalJSONColumn(m)
}

// Scan 实现 sql.Scanner 接口
func (m *CommissionMovements) Scan(value interface{}) error {
	if value == nil {
		*m = CommissionMovements{}
		return nil
	}
	return scanJSONColumn(value, m)
}
