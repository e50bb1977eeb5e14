package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/ringo-orders/internal/model"
)

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	var client model.Client
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, phone, email, address, created_at
		FROM clients
		WHERE id = ?
	`, id).Scan(&client).Error
	if err != nil {
		return nil, err
	}
	if client.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &client, nil
}

func (r *ClientRepository) Create(ctx context.Context, client *model.Client) error {
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO clients (id, name, phone, email, address)
		VALUES (?, ?, ?, ?, ?)
	`, client.ID, client.Name, client.Phone, client.Email, client.Address).Error
}
