package shared

import (
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// EVENT INFRASTRUCTURE
// Доменные события соединяют агрегаты без прямых зависимостей: курс сообщает
// о выполненном уроке, а проверка достижений слушает и реагирует уже после
// того, как запись попала в хранилище.
// ══════════════════════════════════════════════════════════════════════════════

// EventType определяет тип доменного события.
type EventType string

const (
	// EventCourseCreated - создан новый курс.
	EventCourseCreated EventType = "course.created"
	// EventCourseUpdated - курс обновлён.
	EventCourseUpdated EventType = "course.updated"
	// EventCourseDeleted - курс удалён (вместе с уроками, экзаменами и заметками).
	EventCourseDeleted EventType = "course.deleted"
	// EventActivityRecorded - записана учебная активность (урок, домашка, экзамен).
	EventActivityRecorded EventType = "streak.activity_recorded"
	// EventStreakReset - пользователь явно сбросил серию.
	EventStreakReset EventType = "streak.reset"
	// EventGoalCompleted - цель перешла из незавершённой в завершённую.
	EventGoalCompleted EventType = "goal.completed"
	// EventAchievementUnlocked - разблокировано достижение.
	EventAchievementUnlocked EventType = "achievement.unlocked"
)

// Event - интерфейс доменного события.
type Event interface {
	// EventType возвращает тип события.
	EventType() EventType

	// AggregateID возвращает идентификатор агрегата (у нас - ID пользователя).
	AggregateID() string

	// OccurredAt возвращает время возникновения события.
	OccurredAt() time.Time

	// Payload возвращает данные события для сериализации и логов.
	Payload() map[string]interface{}
}

// EventHandler обрабатывает доменное событие.
type EventHandler func(event Event) error

// EventPublisher публикует доменные события.
type EventPublisher interface {
	Publish(event Event) error
}

// EventBus - полный интерфейс шины событий.
type EventBus interface {
	EventPublisher

	// Subscribe регистрирует обработчик для конкретного типа события.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll регистрирует обработчик для всех событий.
	SubscribeAll(handler EventHandler) error

	// Close останавливает шину и дожидается завершения обработчиков.
	Close() error
}

// BaseEvent - базовая реализация Event, встраивается в конкретные события.
type BaseEvent struct {
	Type          EventType
	UserID        string
	Timestamp     time.Time
	CorrelationID string
}

// NewBaseEvent создаёт базовое событие с текущим временем.
func NewBaseEvent(eventType EventType, userID string) BaseEvent {
	return BaseEvent{
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
	}
}

// WithCorrelationID возвращает копию события с указанным correlation ID.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

func (e BaseEvent) EventType() EventType  { return e.Type }
func (e BaseEvent) AggregateID() string   { return e.UserID }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// ══════════════════════════════════════════════════════════════════════════════
// CONCRETE EVENTS
// ══════════════════════════════════════════════════════════════════════════════

// ActivityRecordedEvent - записана учебная активность.
type ActivityRecordedEvent struct {
	BaseEvent

	// Kind - вид активности: lesson, homework, exam, study.
	Kind string

	// CurrentStreak - серия после записи активности.
	CurrentStreak int

	// CourseID - курс, в котором произошла активность (может быть пустым).
	CourseID string
}

// NewActivityRecordedEvent создаёт событие записи активности.
func NewActivityRecordedEvent(userID, kind, courseID string, currentStreak int) ActivityRecordedEvent {
	return ActivityRecordedEvent{
		BaseEvent:     NewBaseEvent(EventActivityRecorded, userID),
		Kind:          kind,
		CurrentStreak: currentStreak,
		CourseID:      courseID,
	}
}

func (e ActivityRecordedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":        e.UserID,
		"kind":           e.Kind,
		"current_streak": e.CurrentStreak,
		"course_id":      e.CourseID,
	}
}

// GoalCompletedEvent - цель достигнута.
type GoalCompletedEvent struct {
	BaseEvent

	// GoalID - идентификатор завершённой цели.
	GoalID string

	// Title - название цели.
	Title string
}

// NewGoalCompletedEvent создаёт событие завершения цели.
func NewGoalCompletedEvent(userID, goalID, title string) GoalCompletedEvent {
	return GoalCompletedEvent{
		BaseEvent: NewBaseEvent(EventGoalCompleted, userID),
		GoalID:    goalID,
		Title:     title,
	}
}

func (e GoalCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id": e.UserID,
		"goal_id": e.GoalID,
		"title":   e.Title,
	}
}

// AchievementUnlockedEvent - разблокировано достижение.
type AchievementUnlockedEvent struct {
	BaseEvent

	// Title - название достижения (уникально в пределах пользователя).
	Title string

	// Category - категория достижения.
	Category string
}

// NewAchievementUnlockedEvent создаёт событие разблокировки достижения.
func NewAchievementUnlockedEvent(userID, title, category string) AchievementUnlockedEvent {
	return AchievementUnlockedEvent{
		BaseEvent: NewBaseEvent(EventAchievementUnlocked, userID),
		Title:     title,
		Category:  category,
	}
}

func (e AchievementUnlockedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":  e.UserID,
		"title":    e.Title,
		"category": e.Category,
	}
}

// CourseChangedEvent - курс создан, обновлён или удалён.
type CourseChangedEvent struct {
	BaseEvent

	// CourseID - идентификатор курса.
	CourseID string

	// Title - название курса.
	Title string
}

// NewCourseChangedEvent создаёт событие изменения курса.
func NewCourseChangedEvent(eventType EventType, userID, courseID, title string) CourseChangedEvent {
	return CourseChangedEvent{
		BaseEvent: NewBaseEvent(eventType, userID),
		CourseID:  courseID,
		Title:     title,
	}
}

func (e CourseChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":   e.UserID,
		"course_id": e.CourseID,
		"title":     e.Title,
	}
}

// StreakResetEvent - серия сброшена пользователем.
type StreakResetEvent struct {
	BaseEvent

	// PreviousCurrent - серия до сброса.
	PreviousCurrent int

	// Longest - рекорд, который сохраняется при сбросе.
	Longest int
}

// NewStreakResetEvent создаёт событие сброса серии.
func NewStreakResetEvent(userID string, previousCurrent, longest int) StreakResetEvent {
	return StreakResetEvent{
		BaseEvent:       NewBaseEvent(EventStreakReset, userID),
		PreviousCurrent: previousCurrent,
		Longest:         longest,
	}
}

func (e StreakResetEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":          e.UserID,
		"previous_current": e.PreviousCurrent,
		"longest":          e.Longest,
	}
}
