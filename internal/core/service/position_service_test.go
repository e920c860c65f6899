package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/transportconnect/marketplace/internal/core/domain"
	"github.com/transportconnect/marketplace/internal/core/ports"
)

func newPositionFixture(t *testing.T) (ports.PositionService, *workflowFixture, *stubDedup) {
	t.Helper()
	f := newWorkflowFixture(t)
	dedup := &stubDedup{}
	return NewPositionService(f.demandes, f.events, dedup, zerolog.Nop()), f, dedup
}

func ping(demandeID string) ports.PositionInput {
	return ports.PositionInput{
		DemandeID:    demandeID,
		ConducteurID: driver.ID,
		Lat:          45.764,
		Lng:          4.8357,
		Adresse:      "A7, sortie Vienne",
		Timestamp:    time.Date(2026, 11, 2, 10, 30, 0, 0, time.FixedZone("CET", 3600)),
	}
}

func TestPositionService_Process_Success(t *testing.T) {
	svc, f, dedup := newPositionFixture(t)
	f.seed("d-1", domain.StatusEnTransit)

	if err := svc.Process(context.Background(), ping("d-1")); err != nil {
		t.Fatalf("process: %v", err)
	}

	pos, ok := f.events.positions["d-1"]
	if !ok {
		t.Fatal("expected position stored")
	}
	if pos.Lat != 45.764 || pos.Adresse != "A7, sortie Vienne" {
		t.Errorf("unexpected position %+v", pos)
	}
	if pos.MiseAJour.Location() != time.UTC {
		t.Errorf("expected UTC timestamp, got %v", pos.MiseAJour.Location())
	}
	if len(dedup.marked) != 1 {
		t.Errorf("expected ping marked once, got %d", len(dedup.marked))
	}
}

func TestPositionService_Process_DuplicateSkipped(t *testing.T) {
	svc, f, dedup := newPositionFixture(t)
	f.seed("d-1", domain.StatusEnTransit)
	dedup.dupResult = true

	if err := svc.Process(context.Background(), ping("d-1")); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(f.events.positions) != 0 {
		t.Error("duplicate ping must not be written")
	}
}

func TestPositionService_Process_DedupErrorsAreNotFatal(t *testing.T) {
	svc, f, dedup := newPositionFixture(t)
	f.seed("d-1", domain.StatusEnCours)
	dedup.dupErr = errors.New("redis down")
	dedup.markErr = errors.New("redis down")

	if err := svc.Process(context.Background(), ping("d-1")); err != nil {
		t.Fatalf("process: %v", err)
	}
	if _, ok := f.events.positions["d-1"]; !ok {
		t.Error("expected position stored without dedup store")
	}
}

func TestPositionService_Process_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		statut  domain.DemandeStatus
		mutate  func(in *ports.PositionInput)
		wantErr error
	}{
		{name: "unknown demande", statut: domain.StatusEnTransit, mutate: func(in *ports.PositionInput) { in.DemandeID = "missing" }, wantErr: domain.ErrDemandeNotFound},
		{name: "other driver", statut: domain.StatusEnTransit, mutate: func(in *ports.PositionInput) { in.ConducteurID = otherDrv.ID }, wantErr: domain.ErrForbidden},
		{name: "not started", statut: domain.StatusAcceptee, wantErr: domain.ErrPositionNotAllowed},
		{name: "delivered", statut: domain.StatusLivree, wantErr: domain.ErrPositionNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, f, dedup := newPositionFixture(t)
			f.seed("d-1", tt.statut)
			in := ping("d-1")
			if tt.mutate != nil {
				tt.mutate(&in)
			}

			err := svc.Process(context.Background(), in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if len(f.events.positions) != 0 || len(dedup.marked) != 0 {
				t.Error("rejected ping must not be stored or marked")
			}
		})
	}
}
