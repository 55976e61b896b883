package repository

import (
	"strings"

	"github.com/comissoes-next/internal/models"

	"gorm.io/gorm"
)

// RepresentativeRepository 销售代表数据访问接口
type RepresentativeRepository interface {
	GetByCodigo(codigo string) (*models.Representative, error)
	Create(rep *models.Representative) error
}

// GormRepresentativeRepository GORM 实现
type GormRepresentativeRepository struct {
	db *gorm.DB
}

// NewRepresentativeRepository 创建销售代表仓库
func NewRepresentativeRepository(db *gorm.DB) *GormRepresentativeRepository {
	return &GormRepresentativeRepository{db: db}
}

// GetByCodigo 根据编码获取销售代表
func (r *GormRepresentativeRepository) GetByCodigo(codigo string) (*models.Representative, error) {
	code := strings.TrimSpace(codigo)
	if code == "" {
		return nil, nil
	}
	return firstOrNil[models.Representative](r.db.Where("codigo = ?", code))
}

// Create 创建销售代表
func (r *GormRepresentativeRepository) Create(rep *models.Representative) error {
	return r.db.Create(rep).Error
}
