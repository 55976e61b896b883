package repository

import (
	"strings"
	"time"

	"github.com/comissoes-next/internal/constants"
	"github.com/comissoes-next/internal/models"

	"gorm.io/gorm"
)

// SyncJobRepository 同步任务数据访问接口
type SyncJobRepository interface {
	GetByID(id uint) (*models.SyncJob, error)
	Create(job *models.SyncJob) error
	MarkProcessing(id uint, startedAt time.Time) error
	UpdateProgress(id uint, result models.SyncJobResult) error
	MarkConcluded(id uint, finishedAt time.Time, result models.SyncJobResult) error
	MarkError(id uint, finishedAt time.Time, message string) error
	FailStaleProcessing(startedBefore, finishedAt time.Time, message string) (int64, error)
	List(filter SyncJobListFilter) ([]models.SyncJob, int64, error)
}

// GormSyncJobRepository GORM 实现
type GormSyncJobRepository struct {
	db *gorm.DB
}

// NewSyncJobRepository 创建同步任务仓库
func NewSyncJobRepository(db *gorm.DB) *GormSyncJobRepository {
	return &GormSyncJobRepository{db: db}
}

// GetByID 根据 ID 获取同步任务
func (r *GormSyncJobRepository) GetByID(id uint) (*models.SyncJob, error) {
	if id == 0 {
		return nil, nil
	}
	return firstOrNil[models.SyncJob](r.db, id)
}

// Create 创建同步任务
func (r *GormSyncJobRepository) Create(job *models.SyncJob) error {
	return r.db.Create(job).Error
}

// MarkProcessing 标记任务开始处理
func (r *GormSyncJobRepository) MarkProcessing(id uint, startedAt time.Time) error {
	return r.updateStatus(id, map[string]interface{}{
		"status":      constants.SyncJobStatusProcessing,
		"iniciado_em": startedAt,
	})
}

// UpdateProgress 写入处理中的阶段性计数
func (r *GormSyncJobRepository) UpdateProgress(id uint, result models.SyncJobResult) error {
	return r.updateStatus(id, map[string]interface{}{
		"resultado": result,
	})
}

// MarkConcluded 标记任务成功结束并写入计数
func (r *GormSyncJobRepository) MarkConcluded(id uint, finishedAt time.Time, result models.SyncJobResult) error {
	return r.updateStatus(id, map[string]interface{}{
		"status":       constants.SyncJobStatusConcluded,
		"concluido_em": finishedAt,
		"resultado":    result,
	})
}

// MarkError 标记任务失败
func (r *GormSyncJobRepository) MarkError(id uint, finishedAt time.Time, message string) error {
	return r.updateStatus(id, map[string]interface{}{
		"status":        constants.SyncJobStatusError,
		"concluido_em":  finishedAt,
		"erro_mensagem": message,
	})
}

// FailStaleProcessing 将开始时间早于 startedBefore 的处理中任务标记为失败
func (r *GormSyncJobRepository) FailStaleProcessing(startedBefore, finishedAt time.Time, message string) (int64, error) {
	result := r.db.Model(&models.SyncJob{}).
		Where("status = ?", constants.SyncJobStatusProcessing).
		Where("COALESCE(iniciado_em, updated_at) < ?", startedBefore).
		Updates(map[string]interface{}{
			"status":        constants.SyncJobStatusError,
			"concluido_em":  finishedAt,
			"erro_mensagem": message,
		})
	return result.RowsAffected, result.Error
}

func (r *GormSyncJobRepository) updateStatus(id uint, updates map[string]interface{}) error {
	if id == 0 {
		return gorm.ErrRecordNotFound
	}
	result := r.db.Model(&models.SyncJob{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List 分页查询同步任务
func (r *GormSyncJobRepository) List(filter SyncJobListFilter) ([]models.SyncJob, int64, error) {
	query := r.db.Model(&models.SyncJob{})
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	return countAndFind[models.SyncJob](query, filter.Page, filter.PageSize, "id desc")
}
