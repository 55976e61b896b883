package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/comissoes-next/internal/constants"
	"github.com/comissoes-next/internal/logger"
	"github.com/comissoes-next/internal/models"
	"github.com/comissoes-next/internal/queue"
	"github.com/comissoes-next/internal/repository"
)

// NotificationInput 通知参数
type NotificationInput struct {
	Destinatario string
	Tipo         string
	Titulo       string
	Mensagem     string
	Prioridade   string
	Dados        models.JSON
}

// NotificationService 站内通知与邮件投递
type NotificationService struct {
	repo         repository.NotificationRepository
	adminRepo    repository.AdminRepository
	emailService *EmailService
	queueClient  *queue.Client
}

// NewNotificationService 创建通知服务
func NewNotificationService(repo repository.NotificationRepository, adminRepo repository.AdminRepository, emailService *EmailService, queueClient *queue.Client) *NotificationService {
	return &NotificationService{
		repo:         repo,
		adminRepo:    adminRepo,
		emailService: emailService,
		queueClient:  queueClient,
	}
}

// Notify 保存通知，接收人为邮箱时追加邮件投递
func (s *NotificationService) Notify(input NotificationInput) (*models.Notification, error) {
	recipient := strings.TrimSpace(input.Destinatario)
	if recipient == "" {
		return nil, errors.New("notification recipient is required")
	}
	priority := input.Prioridade
	if priority == "" {
		priority = constants.NotificationPriorityNormal
	}
	notification := &models.Notification{
		Destinatario: recipient,
		Tipo:         input.Tipo,
		Titulo:       input.Titulo,
		Mensagem:     input.Mensagem,
		Prioridade:   priority,
		Dados:        input.Dados,
	}
	if err := s.repo.Create(notification); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}

	if s.emailService.Enabled() {
		if to := s.resolveEmail(recipient); to != "" {
			s.dispatchEmail(notification, to)
		}
	}
	return notification, nil
}

// resolveEmail 接收人本身是邮箱时直接使用，否则按管理员账号查找邮箱
func (s *NotificationService) resolveEmail(recipient string) string {
	if isValidEmail(recipient) {
		return recipient
	}
	if s.adminRepo == nil {
		return ""
	}
	admin, err := s.adminRepo.GetByUsername(recipient)
	if err != nil {
		logger.Warnw("notification_resolve_email_failed", "recipient", recipient, "error", err)
		return ""
	}
	if admin == nil || !isValidEmail(admin.Email) {
		return ""
	}
	return admin.Email
}

func (s *NotificationService) dispatchEmail(notification *models.Notification, to string) {
	if s.queueClient.Enabled() {
		err := s.queueClient.EnqueueNotificationEmail(queue.NotificationEmailPayload{
			NotificationID: notification.ID,
			To:             to,
		})
		if err == nil {
			return
		}
		logger.Warnw("notification_email_enqueue_failed", "notification_id", notification.ID, "error", err)
	}
	if err := s.sendEmail(notification, to); err != nil {
		logger.Warnw("notification_email_send_failed", "notification_id", notification.ID, "error", err)
	}
}

// SendEmail 投递通知邮件（队列消费）
func (s *NotificationService) SendEmail(notificationID uint, to string) error {
	notification, err := s.repo.GetByID(notificationID)
	if err != nil {
		return err
	}
	if notification == nil {
		return ErrNotFound
	}
	if strings.TrimSpace(to) == "" {
		to = s.resolveEmail(notification.Destinatario)
	}
	return s.sendEmail(notification, to)
}

func (s *NotificationService) sendEmail(notification *models.Notification, to string) error {
	subject := notification.Titulo
	if notification.Prioridade == constants.NotificationPriorityHigh {
		subject = "[ALTA] " + subject
	}
	return s.emailService.SendText(to, subject, notification.Mensagem)
}

// ListForRecipient 获取接收人最近的通知
func (s *NotificationService) ListForRecipient(recipient string, limit int) ([]models.Notification, error) {
	return s.repo.ListByRecipient(recipient, limit)
}
