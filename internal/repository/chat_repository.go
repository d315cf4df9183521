package repository

import (
	"time"

	"github.com/projectflow/projectflow-api/internal/models"
	"gorm.io/gorm"
)

// GormChatRepository is a GORM implementation of ChatRepository
type GormChatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new ChatRepository
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &GormChatRepository{db: db}
}

// FindByID finds a chat by ID with optional preloading
func (r *GormChatRepository) FindByID(id uint64, preload ...string) (*models.Chat, error) {
	var chat models.Chat
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&chat, id).Error; err != nil {
		return nil, err
	}

	return &chat, nil
}

// FindGroupByProject finds a project's group chat
func (r *GormChatRepository) FindGroupByProject(projectID uint64) (*models.Chat, error) {
	var chat models.Chat
	if err := r.db.Where("project_id = ? AND type = ?", projectID, models.ChatTypeGroup).
		First(&chat).Error; err != nil {
		return nil, err
	}
	return &chat, nil
}

// FindPrivateBetween finds the private chat shared by two users
func (r *GormChatRepository) FindPrivateBetween(userA, userB uint64) (*models.Chat, error) {
	participant := func(userID uint64) *gorm.DB {
		return r.db.Model(&models.ChatParticipant{}).
			Select("1").
			Where("chat_participants.chat_id = chats.id").
			Where("chat_participants.user_id = ?", userID)
	}

	var chat models.Chat
	err := r.db.Model(&models.Chat{}).
		Where("chats.type = ?", models.ChatTypePrivate).
		Where("EXISTS (?)", participant(userA)).
		Where("EXISTS (?)", participant(userB)).
		First(&chat).Error
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// ListForUser lists the chats a user participates in, most recently active first
func (r *GormChatRepository) ListForUser(userID uint64) ([]models.Chat, error) {
	var chats []models.Chat

	membershipSubQuery := r.db.Model(&models.ChatParticipant{}).
		Select("1").
		Where("chat_participants.chat_id = chats.id").
		Where("chat_participants.user_id = ?", userID)

	err := r.db.Model(&models.Chat{}).
		Where("EXISTS (?)", membershipSubQuery).
		Preload("Project").
		Preload("Participants.User").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("messages.created_at ASC")
		}).
		Preload("Messages.User").
		Order("chats.updated_at DESC").
		Find(&chats).Error
	if err != nil {
		return nil, err
	}

	return chats, nil
}

// CreateWithParticipants creates a chat and attaches its participants atomically
func (r *GormChatRepository) CreateWithParticipants(chat *models.Chat, userIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(chat).Error; err != nil {
			return err
		}
		return replaceChatParticipants(tx, chat.ID, userIDs)
	})
}

// AddMessage stores a message and bumps the chat's activity timestamp
func (r *GormChatRepository) AddMessage(message *models.Message) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		return tx.Model(&models.Chat{}).Where("id = ?", message.ChatID).
			Update("updated_at", time.Now()).Error
	})
}

// MarkRead marks every message from other users in the chat as read
func (r *GormChatRepository) MarkRead(chatID, readerID uint64) error {
	now := time.Now()
	return r.db.Model(&models.Message{}).
		Where("chat_id = ? AND user_id != ? AND read_at IS NULL", chatID, readerID).
		Update("read_at", now).Error
}

// UnreadCount counts unread messages from other users in the chat
func (r *GormChatRepository) UnreadCount(chatID, userID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Message{}).
		Where("chat_id = ? AND user_id != ? AND read_at IS NULL", chatID, userID).
		Count(&count).Error
	return count, err
}
