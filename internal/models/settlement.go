package models

import (
	"database/sql/driver"
	"time"
)

// SettlementSnapshot 结算快照（按时点缓存代表的佣金明细与汇总）
type SettlementSnapshot struct {
	ID                  uint            `gorm:"primarykey" json:"id"`                                               // 主键
	RepresentanteCodigo string          `gorm:"type:varchar(64);index" json:"representante_codigo"`                 // 代表编码
	RepresentanteNome   string          `gorm:"type:varchar(255)" json:"representante_nome"`                        // 代表名称
	MesAno              string          `gorm:"type:varchar(7);index" json:"mes_ano"`                               // 结算月份
	Status              string          `gorm:"type:varchar(20);not null;index" json:"status"`                      // 状态（rascunho/aberto/finalizado）
	PedidosDetalhes     SettlementLines `gorm:"type:json" json:"pedidos_detalhes"`                                  // 订单明细缓存
	TotalVendas         Money           `gorm:"type:decimal(20,2);not null;default:0" json:"total_vendas"`          // 销售总额
	TotalComissoesBruto Money           `gorm:"type:decimal(20,2);not null;default:0" json:"total_comissoes_bruto"` // 佣金毛额
	ValesAdiantamentos  Money           `gorm:"type:decimal(20,2);not null;default:0" json:"vales_adiantamentos"`   // 预支扣款
	OutrosDescontos     Money           `gorm:"type:decimal(20,2);not null;default:0" json:"outros_descontos"`      // 其他扣款
	ValorLiquido        Money           `gorm:"type:decimal(20,2);not null;default:0" json:"valor_liquido"`         // 实付净额
	CreatedAt           time.Time       `gorm:"index" json:"created_at"`                                            // 创建时间
	UpdatedAt           time.Time       `gorm:"index" json:"updated_at"`                                            // 更新时间
}

// TableName 指定表名
func (SettlementSnapshot) TableName() string {
	return "fechamentos_comissao"
}

// SettlementLine 快照中的单个订单明细
type SettlementLine struct {
	PedidoID      uint  `json:"pedido_id"`
	ValorPedido   Money `json:"valor_pedido"`
	ValorComissao Money `json:"valor_comissao"`
}

// SettlementLines 订单明细列表
type SettlementLines []SettlementLine

// Value 实现 driver.Valuer 接口
func (l SettlementLines) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return marshalJSONColumn(l)
}

// Scan 实现 sql.Scanner 接口
func (l *SettlementLines) Scan(value interface{}) error {
	if value == nil {
		*l = SettlementLines{}
		return nil
	}
	return scanJSONColumn(value, l)
}
