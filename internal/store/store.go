package store

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/nfrund/relay/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store provides durable persistence for rooms and their message history,
// backed by SQLite through GORM. Message ids are assigned by the database and
// increase monotonically, which gives history queries a stable tiebreak.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the SQLite database at path, runs migrations and
// seeds the default "general" room when the rooms table is empty.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite allows a single writer, and a pooled ":memory:" database would
	// otherwise give every pooled connection its own empty database.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("accessing database pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&domain.Room{}, &domain.Message{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	s := &Store{db: db}
	if err := s.seedDefaultRoom(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) seedDefaultRoom() error {
	var count int64
	if err := s.db.Model(&domain.Room{}).Count(&count).Error; err != nil {
		return fmt.Errorf("counting rooms: %w", err)
	}
	if count > 0 {
		return nil
	}

	slog.Info("Seeding default room", "room_id", "general")
	err := s.CreateRoom("general", "General Chat")
	if err != nil && !errors.Is(err, domain.ErrRoomExists) {
		return err
	}
	return nil
}

// CreateRoom inserts a new room. A duplicate id yields domain.ErrRoomExists
// so callers can redirect to the existing room instead of failing.
func (s *Store) CreateRoom(id, name string) error {
	room := &domain.Room{ID: id, Name: name}
	if err := s.db.Create(room).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("creating room %q: %w", id, domain.ErrRoomExists)
		}
		return fmt.Errorf("creating room %q: %w", id, err)
	}
	return nil
}

// GetRoom retrieves a room by id, or domain.ErrRoomNotFound.
func (s *Store) GetRoom(id string) (*domain.Room, error) {
	var room domain.Room
	if err := s.db.First(&room, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, fmt.Errorf("finding room %q: %w", id, err)
	}
	return &room, nil
}

// ListRooms returns all rooms ordered by name.
func (s *Store) ListRooms() ([]*domain.Room, error) {
	var rooms []*domain.Room
	if err := s.db.Order("name").Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("listing rooms: %w", err)
	}
	return rooms, nil
}

// AddMessage persists one message and returns the stored record with its
// assigned id and timestamp. The write is committed before this returns, so a
// client reconnecting afterwards observes the message in history. Room
// existence is not verified here; callers check the room first.
func (s *Store) AddMessage(roomID, sender, content string) (*domain.Message, error) {
	msg := &domain.Message{
		RoomID:  roomID,
		Sender:  sender,
		Content: content,
	}
	if err := s.db.Create(msg).Error; err != nil {
		return nil, fmt.Errorf("adding message to room %q: %w", roomID, err)
	}
	return msg, nil
}

// ListMessages returns a room's full history ordered by timestamp ascending,
// ties broken by id.
func (s *Store) ListMessages(roomID string) ([]*domain.Message, error) {
	var messages []*domain.Message
	err := s.db.
		Where("room_id = ?", roomID).
		Order("timestamp ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("listing messages for room %q: %w", roomID, err)
	}
	return messages, nil
}
