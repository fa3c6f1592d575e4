package store

import "context"

// CreateMessage persists a new chat message.
func (s *Store) CreateMessage(ctx context.Context, m *Message) error {
	return s.db.WithContext(ctx).Create(m).Error
}

// GetMessage retrieves a message by id.
func (s *Store) GetMessage(ctx context.Context, id string) (*Message, error) {
	var m Message
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &m, nil
}

// ThreadMessages returns every message exchanged between the two users, in
// either direction, newest first.
func (s *Store) ThreadMessages(ctx context.Context, userA, userB string) ([]Message, error) {
	var out []Message
	err := s.db.WithContext(ctx).
		Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)",
			userA, userB, userB, userA).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MarkSeen flips the seen flag on all unseen messages from one user to
// another. Read receipts derive from thread fetches, not an explicit ack.
func (s *Store) MarkSeen(ctx context.Context, fromUserID, toUserID string) error {
	return s.db.WithContext(ctx).
		Model(&Message{}).
		Where("from_user_id = ? AND to_user_id = ? AND seen = ?", fromUserID, toUserID, false).
		Update("seen", true).Error
}

// RecentMessages returns messages addressed to the user, newest first.
func (s *Store) RecentMessages(ctx context.Context, userID string) ([]Message, error) {
	var out []Message
	err := s.db.WithContext(ctx).
		Where("to_user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
