// Package store persists terminal-local state on sqlite: the device
// identity and the last authenticated session, so staff stay logged in
// across restarts the same way the browser app survives reloads.
package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"barpos/internal/model"
)

// terminalSession is the single-row local record. Token/role/user are
// cleared on logout; the device id survives for the lifetime of the install.
type terminalSession struct {
	ID        uint   `gorm:"primaryKey"`
	DeviceID  string `gorm:"not null"`
	Token     string
	Role      string
	UserJSON  string
	UpdatedAt time.Time
}

func (terminalSession) TableName() string { return "terminal_session" }

type Store struct {
	db *gorm.DB
}

func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if err := db.AutoMigrate(&terminalSession{}); err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Saved is a previously persisted session.
type Saved struct {
	DeviceID string
	Token    string
	Role     model.Role
	User     *model.User
}

// row fetches or lazily creates the single session row.
func (s *Store) row() (*terminalSession, error) {
	var rec terminalSession
	err := s.db.First(&rec).Error
	if err == gorm.ErrRecordNotFound {
		rec = terminalSession{ID: 1, DeviceID: uuid.NewString()}
		if err := s.db.Create(&rec).Error; err != nil {
			return nil, err
		}
		return &rec, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// DeviceID returns the terminal's stable device identity, creating it on
// first use.
func (s *Store) DeviceID() (string, error) {
	rec, err := s.row()
	if err != nil {
		return "", err
	}
	return rec.DeviceID, nil
}

// Load returns the persisted session, or nil when no one is logged in.
func (s *Store) Load() (*Saved, error) {
	rec, err := s.row()
	if err != nil {
		return nil, err
	}
	if rec.Token == "" {
		return nil, nil
	}
	saved := &Saved{DeviceID: rec.DeviceID, Token: rec.Token, Role: model.Role(rec.Role)}
	if rec.UserJSON != "" {
		var user model.User
		if err := json.Unmarshal([]byte(rec.UserJSON), &user); err != nil {
			return nil, fmt.Errorf("store: corrupt user record: %w", err)
		}
		saved.User = &user
	}
	return saved, nil
}

// Save records a freshly authenticated session.
func (s *Store) Save(user *model.User, token string, role model.Role) error {
	rec, err := s.row()
	if err != nil {
		return err
	}
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	rec.Token = token
	rec.Role = string(role)
	rec.UserJSON = string(data)
	return s.db.Save(rec).Error
}

// Clear wipes the session but keeps the device identity.
func (s *Store) Clear() error {
	rec, err := s.row()
	if err != nil {
		return err
	}
	rec.Token = ""
	rec.Role = ""
	rec.UserJSON = ""
	return s.db.Save(rec).Error
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
