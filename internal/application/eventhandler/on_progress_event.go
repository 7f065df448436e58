// Package eventhandler содержит обработчики доменных событий.
// Обработчики связывают записи прогресса с отложенной переоценкой
// достижений: они срабатывают уже после того, как триггерная запись
// попала в хранилище, и поэтому всегда читают согласованное состояние.
package eventhandler

import (
	"context"
	"log/slog"
	"time"

	"github.com/studyhub/course-tracker-hub/internal/application/saga"
	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON PROGRESS EVENT HANDLER
// Слушает события прогресса (активность, завершение цели) и запускает
// полную переоценку достижений. Переоценка может запускаться избыточно
// при серии быстрых действий - это допустимо: открытие значка
// идемпотентно по заголовку, лишние прогоны ничего не дублируют.
// ═══════════════════════════════════════════════════════════════════════════

// OnProgressEventHandler реагирует на события прогресса пользователя.
type OnProgressEventHandler struct {
	flow   *saga.AchievementFlow
	logger *slog.Logger

	// timeout ограничивает один прогон переоценки.
	timeout time.Duration
}

// NewOnProgressEventHandler создаёт новый OnProgressEventHandler.
func NewOnProgressEventHandler(flow *saga.AchievementFlow, logger *slog.Logger) *OnProgressEventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnProgressEventHandler{
		flow:    flow,
		logger:  logger,
		timeout: 10 * time.Second,
	}
}

// Handle обрабатывает одно событие прогресса.
func (h *OnProgressEventHandler) Handle(event shared.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	result, err := h.flow.Check(ctx, saga.CheckInput{
		UserID:    shared.UserID(event.AggregateID()),
		Trigger:   string(event.EventType()),
		Timestamp: event.OccurredAt(),
	})
	if err != nil {
		h.logger.Error("achievement check failed",
			"user_id", event.AggregateID(),
			"trigger", event.EventType(),
			"error", err)
		return err
	}

	if len(result.Unlocked) > 0 {
		for i := range result.Unlocked {
			h.logger.Info("achievement unlocked",
				"user_id", event.AggregateID(),
				"title", result.Unlocked[i].Title,
				"trigger", event.EventType())
		}
	}
	return nil
}

// Register подписывает обработчик на все триггерные события.
func (h *OnProgressEventHandler) Register(bus shared.EventBus) error {
	for _, eventType := range []shared.EventType{
		shared.EventActivityRecorded,
		shared.EventGoalCompleted,
		shared.EventCourseUpdated,
	} {
		if err := bus.Subscribe(eventType, h.Handle); err != nil {
			return err
		}
	}
	return nil
}
