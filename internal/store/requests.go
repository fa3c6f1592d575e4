package store

import "context"

// The connection-graph subsystem owns connection requests; the core only
// reads them at the reminder checkpoint. Create/Update exist for that
// subsystem and for test fixtures.

// CreateConnectionRequest persists a new connection request.
func (s *Store) CreateConnectionRequest(ctx context.Context, r *ConnectionRequest) error {
	return s.db.WithContext(ctx).Create(r).Error
}

// GetConnectionRequest retrieves a connection request by id.
func (s *Store) GetConnectionRequest(ctx context.Context, id string) (*ConnectionRequest, error) {
	var r ConnectionRequest
	if err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &r, nil
}

// UpdateConnectionRequest saves the full request document.
func (s *Store) UpdateConnectionRequest(ctx context.Context, r *ConnectionRequest) error {
	return s.db.WithContext(ctx).Save(r).Error
}

// CreateUser persists a user directory entry.
func (s *Store) CreateUser(ctx context.Context, u *User) error {
	return s.db.WithContext(ctx).Create(u).Error
}

// GetUser retrieves a user directory entry by id.
func (s *Store) GetUser(ctx context.Context, id string) (*User, error) {
	var u User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &u, nil
}
