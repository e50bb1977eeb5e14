package model

import (
	"time"

	"github.com/google/uuid"
)

type Client struct {
	ID        uuid.UUID
	Name      string
	Phone     string
	Email     string
	Address   string
	CreatedAt time.Time
}
