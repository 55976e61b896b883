package repository

import (
	"strings"

	"github.com/comissoes-next/internal/constants"
	"github.com/comissoes-next/internal/models"

	"gorm.io/gorm"
)

// CommissionRepository 佣金台账数据访问接口
type CommissionRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) CommissionRepository

	GetByID(id uint) (*models.CommissionEntry, error)
	GetCurrentByPedidoID(pedidoID uint) (*models.CommissionEntry, error)
	ListByPedidoIDs(pedidoIDs []uint) ([]models.CommissionEntry, error)
	ListOpenByPedidoIDs(pedidoIDs []uint) ([]models.CommissionEntry, error)
	CountByMonth(month string) (total int64, closed int64, err error)
	Create(entry *models.CommissionEntry) error
	UpdateOpenAmounts(id uint, amounts CommissionAmounts) (bool, error)
	Reassign(id uint, codigo, nome string) error
	List(filter CommissionListFilter) ([]models.CommissionEntry, int64, error)
}

// CommissionAmounts 对账与手工调整写回的字段
type CommissionAmounts struct {
	ValorBase     models.Money
	Percentual    models.Money
	ValorComissao models.Money
	// MesOrigem 非空时，仅当记录当前月份等于它才改写权责日期
	MesOrigem       string
	DataCompetencia string
	MesCompetencia  string
	Nota            string
}

// GormCommissionRepository GORM 实现
type GormCommissionRepository struct {
	db *gorm.DB
}

// NewCommissionRepository 创建佣金台账仓库
func NewCommissionRepository(db *gorm.DB) *GormCommissionRepository {
	return &GormCommissionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCommissionRepository) WithTx(tx *gorm.DB) CommissionRepository {
	if tx == nil {
		return r
	}
	return &GormCommissionRepository{db: tx}
}

// Transaction 执行事务
func (r *GormCommissionRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByID 根据 ID 获取佣金记录
func (r *GormCommissionRepository) GetByID(id uint) (*models.CommissionEntry, error) {
	if id == 0 {
		return nil, nil
	}
	return firstOrNil[models.CommissionEntry](r.db, id)
}

// GetCurrentByPedidoID 获取订单当前佣金记录（优先未关闭记录，其次最近关闭的记录）
func (r *GormCommissionRepository) GetCurrentByPedidoID(pedidoID uint) (*models.CommissionEntry, error) {
	if pedidoID == 0 {
		return nil, nil
	}
	entries, err := r.ListByPedidoIDs([]uint{pedidoID})
	if err != nil {
		return nil, err
	}
	current := PickCurrentEntries(entries)
	entry, ok := current[pedidoID]
	if !ok {
		return nil, nil
	}
	return entry, nil
}

// ListByPedidoIDs 按订单批量查询佣金记录
func (r *GormCommissionRepository) ListByPedidoIDs(pedidoIDs []uint) ([]models.CommissionEntry, error) {
	if len(pedidoIDs) == 0 {
		return []models.CommissionEntry{}, nil
	}
	var entries []models.CommissionEntry
	if err := r.db.Where("pedido_id IN ?", pedidoIDs).Order("id asc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ListOpenByPedidoIDs 按订单批量查询未关闭的佣金记录
func (r *GormCommissionRepository) ListOpenByPedidoIDs(pedidoIDs []uint) ([]models.CommissionEntry, error) {
	if len(pedidoIDs) == 0 {
		return []models.CommissionEntry{}, nil
	}
	var entries []models.CommissionEntry
	err := r.db.
		Where("pedido_id IN ?", pedidoIDs).
		Where("status <> ?", constants.CommissionStatusClosed).
		Order("id asc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// CountByMonth 统计某权责月份的记录总数与已关闭数量
func (r *GormCommissionRepository) CountByMonth(month string) (int64, int64, error) {
	var total int64
	if err := r.db.Model(&models.CommissionEntry{}).Where("mes_competencia = ?", month).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if total == 0 {
		return 0, 0, nil
	}
	var closed int64
	err := r.db.Model(&models.CommissionEntry{}).
		Where("mes_competencia = ?", month).
		Where("status = ?", constants.CommissionStatusClosed).
		Count(&closed).Error
	if err != nil {
		return 0, 0, err
	}
	return total, closed, nil
}

// Create 创建佣金记录
func (r *GormCommissionRepository) Create(entry *models.CommissionEntry) error {
	return r.db.Create(entry).Error
}

// UpdateOpenAmounts 更新未关闭记录的金额并追加备注，记录已关闭或不存在时返回 false
func (r *GormCommissionRepository) UpdateOpenAmounts(id uint, amounts CommissionAmounts) (bool, error) {
	if id == 0 {
		return false, nil
	}
	updates := map[string]interface{}{
		"valor_base":     amounts.ValorBase,
		"percentual":     amounts.Percentual,
		"valor_comissao": amounts.ValorComissao,
	}
	if amounts.MesOrigem != "" {
		updates["data_competencia"] = gorm.Expr("CASE WHEN mes_competencia = ? THEN ? ELSE data_competencia END", amounts.MesOrigem, amounts.DataCompetencia)
		updates["mes_competencia"] = gorm.Expr("CASE WHEN mes_competencia = ? THEN ? ELSE mes_competencia END", amounts.MesOrigem, amounts.MesCompetencia)
	}
	if note := strings.TrimSpace(amounts.Nota); note != "" {
		updates["observacao"] = gorm.Expr(
			"CASE WHEN observacao IS NULL OR observacao = '' THEN CAST(? AS TEXT) ELSE observacao || CAST(? AS TEXT) END",
			note, "\n"+note,
		)
	}
	result := r.db.Model(&models.CommissionEntry{}).
		Where("id = ?", id).
		Where("status <> ?", constants.CommissionStatusClosed).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Reassign 转移佣金记录代表并移出结算快照
func (r *GormCommissionRepository) Reassign(id uint, codigo, nome string) error {
	if id == 0 {
		return nil
	}
	return r.db.Model(&models.CommissionEntry{}).
		Where("id = ?", id).
		Where("status <> ?", constants.CommissionStatusClosed).
		Updates(map[string]interface{}{
			"representante_codigo":   codigo,
			"representante_nome":     nome,
			"comissao_fechamento_id": nil,
		}).Error
}

// List 分页查询佣金记录
func (r *GormCommissionRepository) List(filter CommissionListFilter) ([]models.CommissionEntry, int64, error) {
	query := r.db.Model(&models.CommissionEntry{})
	if filter.PedidoID != 0 {
		query = query.Where("pedido_id = ?", filter.PedidoID)
	}
	if month := strings.TrimSpace(filter.MesCompetencia); month != "" {
		query = query.Where("mes_competencia = ?", month)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if codigo := strings.TrimSpace(filter.RepresentanteCodigo); codigo != "" {
		query = query.Where("representante_codigo = ?", codigo)
	}
	query = applySearch(query, filter.Busca, "pedido_numero", "cliente_nome", "representante_nome")
	return countAndFind[models.CommissionEntry](query, filter.Page, filter.PageSize, "id desc")
}

// PickCurrentEntries 为每个订单挑选当前佣金记录：存在未关闭记录时取之，否则取最近一条已关闭记录
func PickCurrentEntries(entries []models.CommissionEntry) map[uint]*models.CommissionEntry {
	current := make(map[uint]*models.CommissionEntry, len(entries))
	for i := range entries {
		entry := &entries[i]
		prev, ok := current[entry.PedidoID]
		if !ok {
			current[entry.PedidoID] = entry
			continue
		}
		if prev.IsClosed() && (!entry.IsClosed() || entry.ID > prev.ID) {
			current[entry.PedidoID] = entry
		}
	}
	return current
}
