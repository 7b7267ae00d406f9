package service

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodshare/backend/internal/models"
)

type MessageService struct {
	db *gorm.DB
}

func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{db: db}
}

// Conversation is one thread between the current user and a partner,
// ordered oldest first, with the partner's unread count.
type Conversation struct {
	PartnerEmail string           `json:"partner_email"`
	PartnerName  string           `json:"partner_name"`
	Messages     []models.Message `json:"messages"`
	UnreadCount  int64            `json:"unread_count"`
	LastAt       int64            `json:"last_at"`
}

// Send delivers a message from sender to the given address. Receiver name is
// resolved from the users table when the address is registered.
func (s *MessageService) Send(ctx context.Context, sender *models.User, receiverEmail, content string) (*models.Message, error) {
	if content == "" {
		return nil, errors.New("message content is required")
	}
	if receiverEmail == sender.Email {
		return nil, errors.New("cannot message yourself")
	}

	receiverName := receiverEmail
	var receiver models.User
	if err := s.db.WithContext(ctx).Where("email = ?", receiverEmail).First(&receiver).Error; err == nil {
		receiverName = receiver.FullName
	}

	msg := &models.Message{
		SenderEmail:   sender.Email,
		SenderName:    sender.FullName,
		ReceiverEmail: receiverEmail,
		ReceiverName:  receiverName,
		Content:       content,
	}
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, err
	}
	return msg, nil
}

// Conversations groups a user's messages by partner, most recent thread
// first.
func (s *MessageService) Conversations(ctx context.Context, email string) ([]Conversation, error) {
	var messages []models.Message
	err := s.db.WithContext(ctx).
		Where("sender_email = ? OR receiver_email = ?", email, email).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	byPartner := make(map[string]*Conversation)
	var order []string
	for i := range messages {
		m := messages[i]
		partner, name := m.ReceiverEmail, m.ReceiverName
		if m.SenderEmail != email {
			partner, name = m.SenderEmail, m.SenderName
		}
		conv, ok := byPartner[partner]
		if !ok {
			conv = &Conversation{PartnerEmail: partner, PartnerName: name}
			byPartner[partner] = conv
			order = append(order, partner)
		}
		conv.PartnerName = name
		conv.Messages = append(conv.Messages, m)
		conv.LastAt = m.CreatedAt.Unix()
		if m.ReceiverEmail == email && !m.IsRead {
			conv.UnreadCount++
		}
	}

	conversations := make([]Conversation, 0, len(order))
	for _, partner := range order {
		conversations = append(conversations, *byPartner[partner])
	}
	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[i].LastAt > conversations[j].LastAt
	})
	return conversations, nil
}

// Thread returns the full exchange between two addresses, oldest first.
func (s *MessageService) Thread(ctx context.Context, email, partnerEmail string) ([]models.Message, error) {
	var messages []models.Message
	err := s.db.WithContext(ctx).
		Where("(sender_email = ? AND receiver_email = ?) OR (sender_email = ? AND receiver_email = ?)",
			email, partnerEmail, partnerEmail, email).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkRead marks the given messages as read. Only messages addressed to the
// reader are touched; ids belonging to other receivers are silently skipped.
func (s *MessageService) MarkRead(ctx context.Context, readerEmail string, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := s.db.WithContext(ctx).Model(&models.Message{}).
		Where("id IN ? AND receiver_email = ? AND is_read = ?", ids, readerEmail, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

// MarkConversationRead marks every message sent by partner to reader as read.
func (s *MessageService) MarkConversationRead(ctx context.Context, readerEmail, partnerEmail string) error {
	return s.db.WithContext(ctx).Model(&models.Message{}).
		Where("receiver_email = ? AND sender_email = ? AND is_read = ?", readerEmail, partnerEmail, false).
		Update("is_read", true).Error
}

// UnreadCount returns the number of unread messages addressed to a user.
func (s *MessageService) UnreadCount(ctx context.Context, email string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Message{}).
		Where("receiver_email = ? AND is_read = ?", email, false).
		Count(&count).Error
	return count, err
}
