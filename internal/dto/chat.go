package dto

import (
	"time"

	"github.com/projectflow/projectflow-api/internal/models"
	"github.com/projectflow/projectflow-api/internal/services"
)

// MessageDTO represents a chat message in API responses
type MessageDTO struct {
	ID        uint64     `json:"id"`
	ChatID    uint64     `json:"chat_id"`
	Body      string     `json:"body"`
	ReadAt    *time.Time `json:"read_at"`
	User      *UserDTO   `json:"user,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ChatListItemDTO represents a chat in list responses
type ChatListItemDTO struct {
	ID          uint64          `json:"id"`
	Type        models.ChatType `json:"type"`
	DisplayName string          `json:"display_name"`
	ProjectID   *uint64         `json:"project_id"`
	Unread      int64           `json:"unread"`
	LastMessage *MessageDTO     `json:"last_message"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ChatDTO represents a chat with its participants and messages
type ChatDTO struct {
	ID           uint64          `json:"id"`
	Type         models.ChatType `json:"type"`
	Name         string          `json:"name"`
	ProjectID    *uint64         `json:"project_id"`
	Participants []UserDTO       `json:"participants"`
	Messages     []MessageDTO    `json:"messages"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ToMessageDTO converts a Message model to MessageDTO
func ToMessageDTO(message models.Message) MessageDTO {
	d := MessageDTO{
		ID:        message.ID,
		ChatID:    message.ChatID,
		Body:      message.Body,
		ReadAt:    message.ReadAt,
		CreatedAt: message.CreatedAt,
	}
	if message.User.ID != 0 {
		user := ToUserDTO(message.User)
		d.User = &user
	}
	return d
}

// ToChatListItemDTO converts a chat summary to a list item DTO
func ToChatListItemDTO(summary services.ChatSummary) ChatListItemDTO {
	item := ChatListItemDTO{
		ID:          summary.Chat.ID,
		Type:        summary.Chat.Type,
		DisplayName: summary.DisplayName,
		ProjectID:   summary.Chat.ProjectID,
		Unread:      summary.Unread,
		UpdatedAt:   summary.Chat.UpdatedAt,
	}
	if n := len(summary.Chat.Messages); n > 0 {
		last := ToMessageDTO(summary.Chat.Messages[n-1])
		item.LastMessage = &last
	}
	return item
}

// ToChatDTO converts a Chat model to ChatDTO
func ToChatDTO(chat models.Chat) ChatDTO {
	d := ChatDTO{
		ID:           chat.ID,
		Type:         chat.Type,
		Name:         chat.Name,
		ProjectID:    chat.ProjectID,
		Participants: []UserDTO{},
		Messages:     []MessageDTO{},
		CreatedAt:    chat.CreatedAt,
	}

	for _, p := range chat.Participants {
		if p.User.ID != 0 {
			d.Participants = append(d.Participants, ToUserDTO(p.User))
		} else {
			d.Participants = append(d.Participants, UserDTO{ID: p.UserID})
		}
	}

	for _, m := range chat.Messages {
		d.Messages = append(d.Messages, ToMessageDTO(m))
	}

	return d
}
