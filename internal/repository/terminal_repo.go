package repository

import (
	"context"

	"tallypos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TerminalRepository interface {
	Create(ctx context.Context, t *model.Terminal) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Terminal, error)
	FindByCode(ctx context.Context, code string) (*model.Terminal, error)
}

type terminalRepo struct{ db *gorm.DB }

func NewTerminalRepository(db *gorm.DB) TerminalRepository { return &terminalRepo{db: db} }

func (r *terminalRepo) Create(ctx context.Context, t *model.Terminal) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *terminalRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Terminal, error) {
	var t model.Terminal
	err := r.db.WithContext(ctx).First(&t, id).Error
	return &t, err
}

func (r *terminalRepo) FindByCode(ctx context.Context, code string) (*model.Terminal, error) {
	var t model.Terminal
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&t).Error
	return &t, err
}
