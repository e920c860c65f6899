package ports

import (
	"context"
	"time"
)

// PositionInput is the DTO passed from the transport layer to PositionService.
type PositionInput struct {
	DemandeID    string
	ConducteurID string
	Lat          float64
	Lng          float64
	Adresse      string
	Timestamp    time.Time
}

// PositionService processes driver location pings.
type PositionService interface {
	Process(ctx context.Context, in PositionInput) error
}
