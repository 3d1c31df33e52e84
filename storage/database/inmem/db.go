// Package inmemdb provides in-memory repositories for tests and local dev.
package inmemdb

import (
	"sync"

	"github.com/campusvoice/backend/core/feedback"
	"github.com/campusvoice/backend/core/user"
)

type (
	userTable struct {
		mutex sync.RWMutex
		table map[string]*user.User
		order []string // insertion order; the store-native listing order
	}

	feedbackTable struct {
		mutex sync.RWMutex
		table map[string]*feedback.Feedback
		order []string
	}

	DB struct {
		user     *userTable
		feedback *feedbackTable
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:     &userTable{table: make(map[string]*user.User)},
		feedback: &feedbackTable{table: make(map[string]*feedback.Feedback)},
	}
	return db, nil
}

// Reset drops all stored records. Test helper.
func (db *DB) Reset() {
	db.user.mutex.Lock()
	db.user.table = make(map[string]*user.User)
	db.user.order = nil
	db.user.mutex.Unlock()

	db.feedback.mutex.Lock()
	db.feedback.table = make(map[string]*feedback.Feedback)
	db.feedback.order = nil
	db.feedback.mutex.Unlock()
}
