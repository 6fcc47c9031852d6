package gorm

import (
	"context"

	"github.com/recipemanager/server/internal/domain/contact"
	"github.com/recipemanager/server/internal/ports/outbound"
	"gorm.io/gorm"
)

// ContactRepository stores contact form submissions using GORM
type ContactRepository struct {
	db *gorm.DB
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *gorm.DB) outbound.ContactRepository {
	return &ContactRepository{db: db}
}

// Save stores a submission
func (r *ContactRepository) Save(ctx context.Context, msg *contact.Message) error {
	return r.db.WithContext(ctx).Create(ContactToModel(msg)).Error
}

// List returns submissions, newest first
func (r *ContactRepository) List(ctx context.Context, offset, limit int) ([]*contact.Message, int, error) {
	query := r.db.WithContext(ctx).Model(&ContactMessageModel{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []ContactMessageModel
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&models).Error; err != nil {
		return nil, 0, err
	}

	messages := make([]*contact.Message, len(models))
	for i := range models {
		messages[i] = ModelToContact(&models[i])
	}
	return messages, int(total), nil
}
