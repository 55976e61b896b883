package repository

import (

	"github.com/comissoes-next/internal/models"

	"gorm.io/gorm"
)

// SettlementRepository 结算快照数据访问接口
type SettlementRepository interface {
	GetByID(id uint) (*models.SettlementSnapshot, error)
	ListByStatuses(statuses []string) ([]models.SettlementSnapshot, error)
	Create(snapshot *models.SettlementSnapshot) error
	UpdateTotals(snapshot *models.SettlementSnapshot) error
}

// GormSettlementRepository GORM 实现
type GormSettlementRepository struct {
	db *gorm.DB
}

// NewSettlementRepository 创建结算快照仓库
func NewSettlementRepository(db *gorm.DB) *GormSettlementRepository {
	return &GormSettlementRepository{db: db}
}

// GetByID 根据 ID 获取结算快照
func (r *GormSettlementRepository) GetByID(id uint) (*models.SettlementSnapshot, error) {
	if id == 0 {
		return nil, nil
	}
	return firstOrNil[models.SettlementSnapshot](r.db, id)
}

// ListByStatuses 按状态查询结算快照
func (r *GormSettlementRepository) ListByStatuses(statuses []string) ([]models.SettlementSnapshot, error) {
	if len(statuses) == 0 {
		return []models.SettlementSnapshot{}, nil
	}
	var snapshots []models.SettlementSnapshot
	if err := r.db.Where("status IN ?", statuses).Order("id asc").Find(&snapshots).Error; err != nil {
		return nil, err
	}
	return snapshots, nil
}

// Create 创建结算快照
func (r *GormSettlementRepository) Create(snapshot *models.SettlementSnapshot) error {
	return r.db.Create(snapshot).Error
}

// UpdateTotals 写回快照明细与汇总金额，扣款字段不变
func (r *GormSettlementRepository) UpdateTotals(snapshot *models.SettlementSnapshot) error {
	if snapshot == nil || snapshot.ID == 0 {
		return nil
	}
	return r.db.Model(&models.SettlementSnapshot{}).
		Where("id = ?", snapshot.ID).
		Updates(map[string]interface{}{
			"pedidos_detalhes":      snapshot.PedidosDetalhes,
			"total_vendas":          snapshot.TotalVendas,
			"total_comissoes_bruto": snapshot.TotalComissoesBruto,
			"valor_liquido":         snapshot.ValorLiquido,
		}).Error
}
