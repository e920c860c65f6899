package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/transportconnect/marketplace/internal/core/domain"
	"github.com/transportconnect/marketplace/internal/core/ports"
)

// stubDemandeService records the last call and returns canned results.
type stubDemandeService struct {
	err error

	created   ports.CreateDemandeInput
	listed    ports.ListDemandesInput
	id        string
	actor     domain.Actor
	action    string
	statut    domain.DemandeStatus
	comment   string
	note      int
	trackedNo string
}

func (s *stubDemandeService) demande() *domain.Demande {
	return &domain.Demande{ID: s.id, Statut: s.statut}
}

func (s *stubDemandeService) Create(_ context.Context, in ports.CreateDemandeInput) (*domain.Demande, error) {
	s.created = in
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Demande{ID: "d-1", ExpediteurID: in.ExpediteurID, Statut: domain.StatusEnAttente}, nil
}

func (s *stubDemandeService) Get(_ context.Context, id string, actor domain.Actor) (*domain.Demande, error) {
	s.id, s.actor = id, actor
	if s.err != nil {
		return nil, s.err
	}
	return s.demande(), nil
}

func (s *stubDemandeService) List(_ context.Context, in ports.ListDemandesInput) (*ports.ListDemandesResult, error) {
	s.listed = in
	if s.err != nil {
		return nil, s.err
	}
	return &ports.ListDemandesResult{Page: 1, Limit: 20}, nil
}

func (s *stubDemandeService) Respond(_ context.Context, id string, actor domain.Actor, action, comment string) (*domain.Demande, error) {
	s.id, s.actor, s.action, s.comment = id, actor, action, comment
	if s.err != nil {
		return nil, s.err
	}
	return s.demande(), nil
}

func (s *stubDemandeService) UpdateStatus(_ context.Context, id string, actor domain.Actor, to domain.DemandeStatus, comment string) (*domain.Demande, error) {
	s.id, s.actor, s.statut, s.comment = id, actor, to, comment
	if s.err != nil {
		return nil, s.err
	}
	return s.demande(), nil
}

func (s *stubDemandeService) Cancel(_ context.Context, id string, actor domain.Actor, motif string) (*domain.Demande, error) {
	s.id, s.actor, s.comment = id, actor, motif
	if s.err != nil {
		return nil, s.err
	}
	s.statut = domain.StatusAnnulee
	return s.demande(), nil
}

func (s *stubDemandeService) Track(_ context.Context, numero string) (*ports.TrackingView, error) {
	s.trackedNo = numero
	if s.err != nil {
		return nil, s.err
	}
	return &ports.TrackingView{
		Statut: domain.StatusEnTransit,
		Suivi:  domain.Suivi{NumeroSuivi: numero, Etapes: []domain.Etape{{Statut: domain.StatusEnTransit}}},
	}, nil
}

func (s *stubDemandeService) AddMessage(_ context.Context, id string, actor domain.Actor, message string) (*domain.Message, error) {
	s.id, s.actor, s.comment = id, actor, message
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Message{AuteurID: actor.ID, Message: message, Type: domain.MessageTexte, Timestamp: time.Now()}, nil
}

func (s *stubDemandeService) Evaluate(_ context.Context, id string, actor domain.Actor, note int, comment string) (*domain.Evaluation, error) {
	s.id, s.actor, s.note, s.comment = id, actor, note, comment
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Evaluation{Note: note, Commentaire: comment}, nil
}

var (
	testDriver  = domain.Actor{ID: "c-1", Role: domain.RoleConducteur}
	testShipper = domain.Actor{ID: "e-1", Role: domain.RoleExpediteur}
)

const createDemandeBody = `{
	"annonce_id": "a-1",
	"colis": {"poids_kg": 4.5, "type": "standard", "dimensions": {"longueur_cm": 40, "largeur_cm": 30, "hauteur_cm": 20}},
	"prix_propose": 25,
	"mode_paiement": "carte",
	"adresse_enlevement": {"adresse": "1 rue de la Paix", "ville": "Lyon"},
	"adresse_livraison": {"adresse": "2 quai du Port", "ville": "Marseille"}
}`

func TestDemandeHandler_Create(t *testing.T) {
	stub := &stubDemandeService{}
	c, rec := newTestContext(http.MethodPost, "/api/v1/demandes", createDemandeBody, &testShipper)

	if err := NewDemandeHandler(stub).Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if stub.created.ExpediteurID != testShipper.ID || stub.created.Colis.PoidsKg != 4.5 || stub.created.AdresseLivraison.Ville != "Marseille" {
		t.Errorf("unexpected input %+v", stub.created)
	}
}

func TestDemandeHandler_Create_ValidationFailure(t *testing.T) {
	stub := &stubDemandeService{}
	body := `{"annonce_id": "a-1", "colis": {"poids_kg": 0}, "adresse_enlevement": {"adresse": "x", "ville": "Lyon"}, "adresse_livraison": {"adresse": "y", "ville": "Nice"}}`
	c, _ := newTestContext(http.MethodPost, "/api/v1/demandes", body, &testShipper)

	expectHTTPError(t, NewDemandeHandler(stub).Create(c), http.StatusUnprocessableEntity)
	if stub.created.AnnonceID != "" {
		t.Error("service called despite invalid payload")
	}
}

func TestDemandeHandler_Create_DomainErrorPropagates(t *testing.T) {
	stub := &stubDemandeService{err: domain.ErrDuplicateDemande}
	c, _ := newTestContext(http.MethodPost, "/api/v1/demandes", createDemandeBody, &testShipper)

	if err := NewDemandeHandler(stub).Create(c); !errors.Is(err, domain.ErrDuplicateDemande) {
		t.Fatalf("expected ErrDuplicateDemande, got %v", err)
	}
}

func TestDemandeHandler_List_BindsQuery(t *testing.T) {
	stub := &stubDemandeService{}
	c, rec := newTestContext(http.MethodGet, "/api/v1/demandes?statut=acceptee&page=2&limit=5", "", &testDriver)

	if err := NewDemandeHandler(stub).List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.listed.Statut != "acceptee" || stub.listed.Page != 2 || stub.listed.Limit != 5 || stub.listed.Actor != testDriver {
		t.Errorf("unexpected input %+v", stub.listed)
	}
	items, ok := decodeBody(t, rec)["items"].([]any)
	if !ok || len(items) != 0 {
		t.Errorf("expected an empty items array, got %s", rec.Body.String())
	}
}

func TestDemandeHandler_UpdateStatus(t *testing.T) {
	stub := &stubDemandeService{}
	c, rec := newTestContext(http.MethodPut, "/api/v1/demandes/d-1/statut", `{"statut":"enlevee","commentaire":"Colis chargé"}`, &testDriver)
	c.SetParamNames("id")
	c.SetParamValues("d-1")

	if err := NewDemandeHandler(stub).UpdateStatus(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.id != "d-1" || stub.statut != domain.StatusEnlevee || stub.comment != "Colis chargé" || stub.actor != testDriver {
		t.Errorf("unexpected call: id=%s statut=%s comment=%q actor=%+v", stub.id, stub.statut, stub.comment, stub.actor)
	}
}

func TestDemandeHandler_UpdateStatus_IllegalTransitionPropagates(t *testing.T) {
	stub := &stubDemandeService{err: &domain.IllegalTransitionError{From: domain.StatusEnAttente, To: domain.StatusLivree}}
	c, _ := newTestContext(http.MethodPut, "/api/v1/demandes/d-1/statut", `{"statut":"livree"}`, &testDriver)
	c.SetParamNames("id")
	c.SetParamValues("d-1")

	err := NewDemandeHandler(stub).UpdateStatus(c)
	var illegal *domain.IllegalTransitionError
	if !errors.As(err, &illegal) {
		t.Fatalf("expected IllegalTransitionError, got %v", err)
	}
}

func TestDemandeHandler_Respond_RejectsUnknownAction(t *testing.T) {
	stub := &stubDemandeService{}
	c, _ := newTestContext(http.MethodPut, "/api/v1/demandes/d-1/reponse", `{"action":"peut-etre"}`, &testDriver)

	expectHTTPError(t, NewDemandeHandler(stub).Respond(c), http.StatusUnprocessableEntity)
	if stub.action != "" {
		t.Error("service called despite invalid action")
	}
}

func TestDemandeHandler_Cancel_EmptyBody(t *testing.T) {
	stub := &stubDemandeService{}
	c, rec := newTestContext(http.MethodPut, "/api/v1/demandes/d-1/annuler", "", &testShipper)
	c.SetParamNames("id")
	c.SetParamValues("d-1")

	if err := NewDemandeHandler(stub).Cancel(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || stub.id != "d-1" || stub.comment != "" {
		t.Errorf("unexpected result: code=%d id=%s motif=%q", rec.Code, stub.id, stub.comment)
	}
}

func TestDemandeHandler_Track_IsPublic(t *testing.T) {
	stub := &stubDemandeService{}
	c, rec := newTestContext(http.MethodGet, "/api/v1/demandes/suivi/TC-7A8B9C2D", "", nil)
	c.SetParamNames("numeroSuivi")
	c.SetParamValues("TC-7A8B9C2D")

	if err := NewDemandeHandler(stub).Track(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decodeBody(t, rec)
	if resp["numero_suivi"] != "TC-7A8B9C2D" || resp["statut"] != "en_transit" {
		t.Errorf("unexpected tracking payload %+v", resp)
	}
	if _, leaked := resp["expediteur_id"]; leaked {
		t.Error("tracking response exposes party identifiers")
	}
}

func TestDemandeHandler_Evaluate(t *testing.T) {
	stub := &stubDemandeService{}
	c, rec := newTestContext(http.MethodPost, "/api/v1/demandes/d-1/evaluation", `{"note":5,"commentaire":"Parfait"}`, &testShipper)
	c.SetParamNames("id")
	c.SetParamValues("d-1")

	if err := NewDemandeHandler(stub).Evaluate(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated || stub.note != 5 {
		t.Errorf("unexpected result: code=%d note=%d", rec.Code, stub.note)
	}

	c, _ = newTestContext(http.MethodPost, "/api/v1/demandes/d-1/evaluation", `{"note":9}`, &testShipper)
	expectHTTPError(t, NewDemandeHandler(stub).Evaluate(c), http.StatusUnprocessableEntity)
}

func TestDemandeHandler_AddMessage(t *testing.T) {
	stub := &stubDemandeService{}
	c, rec := newTestContext(http.MethodPost, "/api/v1/demandes/d-1/messages", `{"message":"Je suis en bas"}`, &testDriver)
	c.SetParamNames("id")
	c.SetParamValues("d-1")

	if err := NewDemandeHandler(stub).AddMessage(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated || stub.comment != "Je suis en bas" {
		t.Errorf("unexpected result: code=%d message=%q", rec.Code, stub.comment)
	}
}
