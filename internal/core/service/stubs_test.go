package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/transportconnect/marketplace/internal/core/domain"
	"github.com/transportconnect/marketplace/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Demandes
// ---------------------------------------------------------------------------

type stubDemandeRepo struct {
	mu       sync.Mutex
	byID     map[string]*domain.Demande
	listArgs []ports.ListDemandesFilter
	rows     []ports.StatusCount

	// createErrs are returned by successive Create calls before inserts succeed.
	createErrs []error
	numeros    []string
}

func newStubDemandeRepo() *stubDemandeRepo {
	return &stubDemandeRepo{byID: make(map[string]*domain.Demande)}
}

func cloneDemande(d *domain.Demande) *domain.Demande {
	if d == nil {
		return nil
	}
	c := *d
	c.Suivi.Etapes = append([]domain.Etape(nil), d.Suivi.Etapes...)
	c.Messages = append([]domain.Message(nil), d.Messages...)
	if d.Evaluation != nil {
		ev := *d.Evaluation
		c.Evaluation = &ev
	}
	if d.Suivi.PositionActuelle != nil {
		p := *d.Suivi.PositionActuelle
		c.Suivi.PositionActuelle = &p
	}
	return &c
}

func (r *stubDemandeRepo) put(d *domain.Demande) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[d.ID] = cloneDemande(d)
}

func (r *stubDemandeRepo) get(id string) *domain.Demande {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneDemande(r.byID[id])
}

func (r *stubDemandeRepo) Create(_ context.Context, d *domain.Demande) error {
	r.mu.Lock()
	r.numeros = append(r.numeros, d.Suivi.NumeroSuivi)
	if len(r.createErrs) > 0 {
		err := r.createErrs[0]
		r.createErrs = r.createErrs[1:]
		r.mu.Unlock()
		return err
	}
	r.mu.Unlock()
	r.put(d)
	return nil
}

func (r *stubDemandeRepo) FindByID(_ context.Context, id string) (*domain.Demande, error) {
	if d := r.get(id); d != nil {
		return d, nil
	}
	return nil, domain.ErrDemandeNotFound
}

func (r *stubDemandeRepo) FindByNumeroSuivi(_ context.Context, numero string) (*domain.Demande, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.byID {
		if d.Suivi.NumeroSuivi == numero {
			return cloneDemande(d), nil
		}
	}
	return nil, domain.ErrDemandeNotFound
}

func (r *stubDemandeRepo) FindOpen(_ context.Context, expediteurID, annonceID string) (*domain.Demande, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.byID {
		if d.ExpediteurID == expediteurID && d.AnnonceID == annonceID && !d.Statut.IsTerminal() {
			return cloneDemande(d), nil
		}
	}
	return nil, domain.ErrDemandeNotFound
}

func (r *stubDemandeRepo) List(_ context.Context, f ports.ListDemandesFilter) ([]*domain.Demande, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listArgs = append(r.listArgs, f)

	var out []*domain.Demande
	for _, d := range r.byID {
		if f.ExpediteurID != "" && d.ExpediteurID != f.ExpediteurID {
			continue
		}
		if f.ConducteurID != "" && d.ConducteurID != f.ConducteurID {
			continue
		}
		if f.Statut != "" && string(d.Statut) != f.Statut {
			continue
		}
		out = append(out, cloneDemande(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *stubDemandeRepo) ListByAnnonce(_ context.Context, annonceID string) ([]*domain.Demande, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Demande
	for _, d := range r.byID {
		if d.AnnonceID == annonceID {
			out = append(out, cloneDemande(d))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubDemandeRepo) AppendMessage(_ context.Context, id string, msg domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.byID[id]
	if !ok {
		return domain.ErrDemandeNotFound
	}
	d.Messages = append(d.Messages, msg)
	return nil
}

func (r *stubDemandeRepo) SetEvaluation(_ context.Context, id string, ev domain.Evaluation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.byID[id]
	if !ok {
		return domain.ErrDemandeNotFound
	}
	if d.Statut != domain.StatusLivree || d.Evaluation != nil {
		return domain.ErrAlreadyEvaluated
	}
	d.Evaluation = &ev
	return nil
}

func (r *stubDemandeRepo) DeleteByAnnonce(_ context.Context, annonceID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, d := range r.byID {
		if d.AnnonceID == annonceID {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}

func (r *stubDemandeRepo) StatusBreakdown(_ context.Context, _, _ string) ([]ports.StatusCount, error) {
	return r.rows, nil
}

// ---------------------------------------------------------------------------
// Events (versioned writes against the demande store)
// ---------------------------------------------------------------------------

type stubEventRepo struct {
	store *stubDemandeRepo

	// onApply runs before each conditional write; a non-nil error is returned as is.
	onApply   func(attempt int) error
	attempts  int
	insertErr error
	inserted  []*domain.TransitionEvent
	positions map[string]domain.Position
}

func newStubEventRepo(store *stubDemandeRepo) *stubEventRepo {
	return &stubEventRepo{store: store, positions: make(map[string]domain.Position)}
}

func (r *stubEventRepo) ApplyTransition(_ context.Context, d *domain.Demande, expectedVersion int64, _ domain.Etape) error {
	r.attempts++
	if r.onApply != nil {
		if err := r.onApply(r.attempts); err != nil {
			return err
		}
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cur, ok := r.store.byID[d.ID]
	if !ok {
		return domain.ErrDemandeNotFound
	}
	if cur.Version != expectedVersion {
		return domain.ErrConcurrentUpdate
	}
	next := cloneDemande(d)
	next.Version = expectedVersion + 1
	r.store.byID[d.ID] = next
	return nil
}

func (r *stubEventRepo) UpdatePosition(_ context.Context, demandeID string, pos domain.Position) error {
	if r.store.get(demandeID) == nil {
		return domain.ErrDemandeNotFound
	}
	r.positions[demandeID] = pos
	return nil
}

func (r *stubEventRepo) InsertEvent(_ context.Context, e *domain.TransitionEvent) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.inserted = append(r.inserted, e)
	return nil
}

// ---------------------------------------------------------------------------
// Annonces
// ---------------------------------------------------------------------------

type stubAnnonceRepo struct {
	byID       map[string]*domain.Annonce
	incErr     error
	expireArgs []time.Time
	expired    int64
	deleted    []string
	listArgs   []ports.ListAnnoncesFilter
	counts     map[string]int64
}

func newStubAnnonceRepo() *stubAnnonceRepo {
	return &stubAnnonceRepo{byID: make(map[string]*domain.Annonce)}
}

func (r *stubAnnonceRepo) Create(_ context.Context, a *domain.Annonce) error {
	c := *a
	r.byID[a.ID] = &c
	return nil
}

func (r *stubAnnonceRepo) FindByID(_ context.Context, id string) (*domain.Annonce, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAnnonceNotFound
	}
	c := *a
	return &c, nil
}

func (r *stubAnnonceRepo) List(_ context.Context, f ports.ListAnnoncesFilter) ([]*domain.Annonce, int64, error) {
	r.listArgs = append(r.listArgs, f)
	var out []*domain.Annonce
	for _, a := range r.byID {
		if f.Statut != "" && string(a.Statut) != f.Statut {
			continue
		}
		c := *a
		out = append(out, &c)
	}
	return out, int64(len(out)), nil
}

func (r *stubAnnonceRepo) UpdateStatus(_ context.Context, id string, statut domain.AnnonceStatus) error {
	a, ok := r.byID[id]
	if !ok {
		return domain.ErrAnnonceNotFound
	}
	a.Statut = statut
	return nil
}

func (r *stubAnnonceRepo) IncrementCounters(_ context.Context, id string, demandes, acceptees int) error {
	if r.incErr != nil {
		return r.incErr
	}
	a, ok := r.byID[id]
	if !ok {
		return domain.ErrAnnonceNotFound
	}
	a.NombreDemandes += demandes
	a.DemandesAcceptees += acceptees
	return nil
}

func (r *stubAnnonceRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrAnnonceNotFound
	}
	delete(r.byID, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *stubAnnonceRepo) ExpireDepartedBefore(_ context.Context, t time.Time) (int64, error) {
	r.expireArgs = append(r.expireArgs, t)
	return r.expired, nil
}

func (r *stubAnnonceRepo) CountByStatus(context.Context) (map[string]int64, error) {
	return r.counts, nil
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type statsDelta struct {
	acceptees, livraisons int
}

type stubUserRepo struct {
	users     map[string]*domain.User
	stats     map[string]statsDelta
	ratings   map[string][]int
	ratingErr error
	byRole    map[string]int64
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		users:   make(map[string]*domain.User),
		stats:   make(map[string]statsDelta),
		ratings: make(map[string][]int),
	}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	c := cloneUser(user)
	if c.ID == "" {
		c.ID = "u-" + c.Email
	}
	r.users[c.ID] = cloneUser(c)
	return c, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) IncrementStats(_ context.Context, id string, acceptees, livraisons int) error {
	d := r.stats[id]
	d.acceptees += acceptees
	d.livraisons += livraisons
	r.stats[id] = d
	return nil
}

func (r *stubUserRepo) AddRating(_ context.Context, id string, note int) error {
	if r.ratingErr != nil {
		return r.ratingErr
	}
	r.ratings[id] = append(r.ratings[id], note)
	return nil
}

func (r *stubUserRepo) CountByRole(context.Context) (map[string]int64, error) {
	return r.byRole, nil
}

// ---------------------------------------------------------------------------
// Notifications and dedup
// ---------------------------------------------------------------------------

type sentNotification struct {
	userID    string
	typ       domain.NotificationType
	demandeID string
}

type stubNotifier struct {
	err  error
	sent []sentNotification
}

func (n *stubNotifier) Notify(_ context.Context, userID string, typ domain.NotificationType, d *domain.Demande, _ string) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentNotification{userID: userID, typ: typ, demandeID: d.ID})
	return nil
}

func (n *stubNotifier) types() []domain.NotificationType {
	out := make([]domain.NotificationType, 0, len(n.sent))
	for _, s := range n.sent {
		out = append(out, s.typ)
	}
	return out
}

type stubDedup struct {
	dupResult bool
	dupErr    error
	markErr   error
	marked    []string
}

func (d *stubDedup) IsDuplicate(_ context.Context, demandeID string, _, _ float64, _ time.Time) (bool, error) {
	return d.dupResult, d.dupErr
}

func (d *stubDedup) Mark(_ context.Context, demandeID string, _, _ float64, _ time.Time) error {
	if d.markErr != nil {
		return d.markErr
	}
	d.marked = append(d.marked, demandeID)
	return nil
}
