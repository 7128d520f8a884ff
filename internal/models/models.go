// Package models содержит доменные структуры пользователя и журнала начислений,
// а также типы для приёма событий от Clerk (внешнего identity-провайдера).
package models

import "time"

// User представляет пользователя, синхронизированного из Clerk.
// Первичный ключ — идентификатор, выданный Clerk (стабилен между обновлениями).
// Nickname и AvatarURL опциональны, nil означает отсутствие значения в базе.
// Пользователь никогда не удаляется физически: событие user.deleted
// переводит IsActive в false.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Nickname  *string   `json:"nickname"`
	AvatarURL *string   `json:"avatar_url"`
	Credits   int       `json:"credits"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreditTransaction — неизменяемая запись журнала начислений.
// BalanceAfter фиксирует баланс на момент операции и никогда
// не пересчитывается по истории.
type CreditTransaction struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Amount       int       `json:"amount"`
	BalanceAfter int       `json:"balance_after"`
	Action       string    `json:"action"`
	Description  *string   `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserPatch описывает частичное обновление пользователя.
// Пустая строка означает "поле не менять".
type UserPatch struct {
	Email     string
	Nickname  string
	AvatarURL string
}

// IsEmpty сообщает, что патч не содержит ни одного изменяемого поля.
func (p UserPatch) IsEmpty() bool {
	return p.Email == "" && p.Nickname == "" && p.AvatarURL == ""
}

// EventType — закрытое множество известных видов событий Clerk.
type EventType string

const (
	// EventUserCreated — регистрация нового пользователя.
	EventUserCreated EventType = "user.created"
	// EventUserUpdated — изменение профиля пользователя.
	EventUserUpdated EventType = "user.updated"
	// EventUserDeleted — удаление пользователя (у нас — soft delete).
	EventUserDeleted EventType = "user.deleted"
	// EventUnknown — любой другой вид события, логируется и игнорируется.
	EventUnknown EventType = ""
)

// ParseEventType приводит строку из payload к известному виду события.
func ParseEventType(s string) EventType {
	switch EventType(s) {
	case EventUserCreated:
		return EventUserCreated
	case EventUserUpdated:
		return EventUserUpdated
	case EventUserDeleted:
		return EventUserDeleted
	default:
		return EventUnknown
	}
}

// ClerkEvent — конверт webhook-события Clerk.
type ClerkEvent struct {
	Type string        `json:"type"`
	Data ClerkUserData `json:"data"`
}

// ClerkUserData — данные пользователя внутри события Clerk.
type ClerkUserData struct {
	ID                    string              `json:"id" validate:"required"`
	FirstName             string              `json:"first_name"`
	LastName              string              `json:"last_name"`
	ImageURL              string              `json:"image_url"`
	PrimaryEmailAddressID string              `json:"primary_email_address_id"`
	EmailAddresses        []ClerkEmailAddress `json:"email_addresses"`
}

// ClerkEmailAddress — один адрес из списка email_addresses события.
type ClerkEmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}
