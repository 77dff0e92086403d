package repositories

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"vibegrapher/internal/models"
)

// MessageRepository is the durable conversation context store. Appends to
// the same session are serialized so sequence numbers never collide;
// different sessions are independent.
type MessageRepository interface {
	Append(sessionID string, msg *models.ConversationMessage) error
	ReadAll(sessionID string) ([]models.ConversationMessage, error)
	GetByID(id string) (*models.ConversationMessage, error)
	ClearRole(sessionID, role string) error
	Clear(sessionID string) error
}

type messageRepository struct {
	db *gorm.DB

	mu    sync.Mutex
	locks map[string]*sync.Mutex // sessionID -> append lock
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db, locks: make(map[string]*sync.Mutex)}
}

func (r *messageRepository) sessionLock(sessionID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[sessionID] = lock
	}
	return lock
}

func (r *messageRepository) Append(sessionID string, msg *models.ConversationMessage) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}
	if msg == nil {
		return fmt.Errorf("message is required")
	}

	lock := r.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	var maxSeq int
	row := r.db.Model(&models.ConversationMessage{}).
		Where("session_id = ?", sessionID).
		Select("COALESCE(MAX(seq), 0)").
		Row()
	if err := row.Scan(&maxSeq); err != nil {
		return err
	}

	msg.SessionID = sessionID
	msg.Seq = maxSeq + 1
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	return r.db.Create(msg).Error
}

func (r *messageRepository) ReadAll(sessionID string) ([]models.ConversationMessage, error) {
	var messages []models.ConversationMessage
	res := r.db.Where("session_id = ?", sessionID).Order("seq asc").Find(&messages)
	if res.Error != nil {
		return nil, res.Error
	}
	return messages, nil
}

func (r *messageRepository) GetByID(id string) (*models.ConversationMessage, error) {
	var msg models.ConversationMessage
	res := r.db.Where("id = ?", id).Take(&msg)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, res.Error
	}
	return &msg, nil
}

func (r *messageRepository) ClearRole(sessionID, role string) error {
	return r.db.Where("session_id = ? AND role = ?", sessionID, role).
		Delete(&models.ConversationMessage{}).Error
}

func (r *messageRepository) Clear(sessionID string) error {
	lock := r.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()
	if err := r.db.Where("session_id = ?", sessionID).
		Delete(&models.ConversationMessage{}).Error; err != nil {
		return err
	}
	r.mu.Lock()
	delete(r.locks, sessionID)
	r.mu.Unlock()
	return nil
}
