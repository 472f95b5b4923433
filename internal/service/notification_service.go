package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/petmarket-trust/internal/domain/transition"
	"github.com/ignatzorin/petmarket-trust/internal/goroutine"
	"github.com/ignatzorin/petmarket-trust/internal/logger"
	"github.com/ignatzorin/petmarket-trust/internal/models"
	"github.com/ignatzorin/petmarket-trust/internal/pkg/apperror"
	"github.com/ignatzorin/petmarket-trust/internal/usecase/moderation"
)

var (
	ErrNotificationQueueFull = errors.New("notification: очередь переполнена")
	ErrDispatcherClosed      = errors.New("notification: диспетчер остановлен")
)

const deliveryTimeout = 5 * time.Second

// NotificationRepository описывает взаимодействие сервиса с хранилищем уведомлений.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	List(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, userID, id uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

// NotificationPusher доставляет событие подключённым клиентам (ws.Hub).
type NotificationPusher interface {
	BroadcastToUser(userID uuid.UUID, event string, data any) error
}

// NotificationDispatcher принимает уведомления от модерации и доставляет их
// в фоне: сохраняет в БД и пушит по WebSocket.
type NotificationDispatcher struct {
	repo     NotificationRepository
	pusher   NotificationPusher
	failures moderation.SyncFailureRecorder

	mu     sync.RWMutex
	closed bool
	queue  chan transition.NotificationIntent
	wg     sync.WaitGroup
}

func NewNotificationDispatcher(repo NotificationRepository, pusher NotificationPusher, queueSize int) *NotificationDispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &NotificationDispatcher{
		repo:   repo,
		pusher: pusher,
		queue:  make(chan transition.NotificationIntent, queueSize),
	}
}

// SetFailureRecorder включает запись недоставленных уведомлений в журнал сбоев.
func (d *NotificationDispatcher) SetFailureRecorder(failures moderation.SyncFailureRecorder) {
	d.failures = failures
}

// Start запускает обработчиков очереди.
func (d *NotificationDispatcher) Start(workers int) {
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		goroutine.SafeGo(func() {
			defer d.wg.Done()
			for intent := range d.queue {
				d.deliver(intent)
			}
		})
	}
}

// Dispatch ставит уведомление в очередь и никогда не блокируется.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, intent transition.NotificationIntent) error {
	if intent.RecipientID == uuid.Nil || intent.Template == "" {
		return fmt.Errorf("notification: пустой получатель или шаблон")
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}

	select {
	case d.queue <- intent:
		return nil
	default:
		return ErrNotificationQueueFull
	}
}

// Close прекращает приём и дожидается доставки уже принятых уведомлений.
func (d *NotificationDispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *NotificationDispatcher) deliver(intent transition.NotificationIntent) {
	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	log := logger.Get().WithFields(logrus.Fields{
		"recipient_id": intent.RecipientID,
		"event":        intent.Template,
	})

	payload, err := json.Marshal(intent.Payload)
	if err != nil {
		log.WithError(err).Error("notification: не удалось сериализовать payload")
		return
	}

	notification := &models.Notification{
		UserID:  intent.RecipientID,
		Event:   intent.Template,
		Payload: payload,
	}
	if err := d.repo.Create(ctx, notification); err != nil {
		log.WithError(err).Error("notification: не удалось сохранить уведомление")
		d.recordFailure(ctx, intent, err)
		return
	}

	// Пуш не гарантирован: пользователь может быть офлайн.
	if d.pusher != nil {
		if err := d.pusher.BroadcastToUser(intent.RecipientID, intent.Template, notification); err != nil {
			log.WithError(err).Warn("notification: пуш не доставлен")
		}
	}
	log.Debug("notification: доставлено")
}

func (d *NotificationDispatcher) recordFailure(ctx context.Context, intent transition.NotificationIntent, cause error) {
	if d.failures == nil {
		return
	}
	failure := &apperror.DownstreamSyncError{
		Effect:     moderation.EffectNotification,
		EntityKind: "account",
		EntityID:   intent.RecipientID.String(),
		Cause:      cause,
	}
	if err := d.failures.Record(context.WithoutCancel(ctx), failure, intent); err != nil {
		logger.Get().WithError(err).Error("notification: не удалось записать сбой доставки")
	}
}

// NotificationService отдаёт пользователю его уведомления.
type NotificationService struct {
	repo NotificationRepository
}

// NewNotificationService создаёт новый сервис уведомлений.
func NewNotificationService(repo NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// ListNotifications возвращает список уведомлений пользователя.
func (s *NotificationService) ListNotifications(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	return s.repo.List(ctx, userID, limit, offset, unreadOnly)
}

// MarkAsRead отмечает уведомление пользователя как прочитанное.
func (s *NotificationService) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, userID, id)
}

// CountUnread возвращает количество непрочитанных уведомлений.
func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}
