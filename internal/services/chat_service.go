package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/projectflow/projectflow-api/internal/models"
	"github.com/projectflow/projectflow-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrChatNotFound       = errors.New("chat not found")
	ErrBodyRequired       = errors.New("message body is required")
	ErrCannotChatWithSelf = errors.New("cannot open a private chat with yourself")
)

// ChatService handles chat listing, messaging, and private chat lookup.
// Group chat membership itself is maintained by the project service.
type ChatService struct {
	chatRepo    repository.ChatRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
}

// NewChatService creates a new ChatService
func NewChatService(chatRepo repository.ChatRepository, projectRepo repository.ProjectRepository, userRepo repository.UserRepository) *ChatService {
	return &ChatService{
		chatRepo:    chatRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
	}
}

// ChatSummary is a chat decorated with the viewer-specific fields.
type ChatSummary struct {
	Chat        models.Chat
	DisplayName string
	Unread      int64
}

// ListChats returns the chats the actor participates in, with unread counts.
func (s *ChatService) ListChats(actor *models.User) ([]ChatSummary, error) {
	chats, err := s.chatRepo.ListForUser(actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}

	summaries := make([]ChatSummary, 0, len(chats))
	for _, chat := range chats {
		unread, err := s.chatRepo.UnreadCount(chat.ID, actor.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count unread messages: %w", err)
		}
		summaries = append(summaries, ChatSummary{
			Chat:        chat,
			DisplayName: displayName(&chat, actor.ID),
			Unread:      unread,
		})
	}

	return summaries, nil
}

// GetChat returns one chat with its messages and marks them read. Developers
// who have not accepted the underlying project yet are turned away.
func (s *ChatService) GetChat(actor *models.User, chatID uint64) (*models.Chat, error) {
	chat, err := s.chatRepo.FindByID(chatID,
		"Project", "Participants.User", "Messages.User")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, fmt.Errorf("failed to find chat: %w", err)
	}

	if !chat.HasParticipant(actor.ID) {
		return nil, ErrChatNotFound
	}

	if chat.ProjectID != nil && actor.Role == models.RoleDeveloper {
		project, err := s.projectRepo.FindByID(*chat.ProjectID, "Assignments")
		if err != nil {
			return nil, fmt.Errorf("failed to find chat project: %w", err)
		}
		if assignment := findAssignment(project, actor.ID); assignment != nil && !assignment.Accepted {
			return nil, ErrProjectNotAccepted
		}
	}

	if err := s.chatRepo.MarkRead(chatID, actor.ID); err != nil {
		return nil, fmt.Errorf("failed to mark messages read: %w", err)
	}

	return chat, nil
}

// SendMessage stores a message from the actor in the chat.
func (s *ChatService) SendMessage(actor *models.User, chatID uint64, body string) (*models.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrBodyRequired
	}

	chat, err := s.chatRepo.FindByID(chatID, "Participants")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, fmt.Errorf("failed to find chat: %w", err)
	}

	if !chat.HasParticipant(actor.ID) {
		return nil, ErrChatNotFound
	}

	message := &models.Message{
		ChatID: chatID,
		UserID: actor.ID,
		Body:   body,
	}
	if err := s.chatRepo.AddMessage(message); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	return message, nil
}

// FindOrCreatePrivateChat returns the private chat between the actor and the
// other user, creating it on first contact.
func (s *ChatService) FindOrCreatePrivateChat(actor *models.User, otherUserID uint64) (*models.Chat, error) {
	if otherUserID == actor.ID {
		return nil, ErrCannotChatWithSelf
	}

	if _, err := s.userRepo.FindByID(otherUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	chat, err := s.chatRepo.FindPrivateBetween(actor.ID, otherUserID)
	if err == nil {
		return chat, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up private chat: %w", err)
	}

	chat = &models.Chat{Type: models.ChatTypePrivate}
	if err := s.chatRepo.CreateWithParticipants(chat, []uint64{actor.ID, otherUserID}); err != nil {
		return nil, fmt.Errorf("failed to create private chat: %w", err)
	}

	return s.chatRepo.FindByID(chat.ID, "Participants.User")
}

// displayName picks the chat title shown to a viewer: the project title for
// group chats, the other participant's name for private ones.
func displayName(chat *models.Chat, viewerID uint64) string {
	if chat.Type == models.ChatTypeGroup {
		if chat.Project != nil && chat.Project.Title != "" {
			return chat.Project.Title
		}
		if chat.Name != "" {
			return chat.Name
		}
		return "Group Chat"
	}

	for _, p := range chat.Participants {
		if p.UserID != viewerID {
			return p.User.Name
		}
	}
	return ""
}
