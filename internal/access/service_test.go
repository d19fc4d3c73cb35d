package access

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/akuaponik-iot/gateway/internal/infrastructure/database"
)

type staticUsers map[string]bool

func (u staticUsers) Exists(_ context.Context, username string) (bool, error) {
	return u[username], nil
}

type failingUsers struct{}

func (failingUsers) Exists(context.Context, string) (bool, error) {
	return false, errors.New("db down")
}

func testDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "access.db"),
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if err := db.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("applying schema: %v", err)
	}
	return db
}

func newTestService(t *testing.T) (*Service, *SQLRepository) {
	t.Helper()
	repo := NewSQLRepository(testDB(t))
	return NewService(repo, staticUsers{"andi": true, "sari": true}), repo
}

func TestService_Create(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	req, err := svc.Create(ctx, "andi", "sari")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if req.ID == 0 || req.Status != StatusPending {
		t.Errorf("Create() = %+v, want pending with ID", req)
	}
}

func TestService_CreateRejects(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name        string
		requestedBy string
		acceptedBy  string
		wantErr     error
	}{
		{"missing requester", "", "sari", ErrMissingUsernames},
		{"missing acceptor", "andi", "", ErrMissingUsernames},
		{"self request", "andi", "andi", ErrSelfRequest},
		{"self request unknown user", "ghost", "ghost", ErrSelfRequest},
		{"unknown acceptor", "andi", "ghost", ErrAcceptorNotFound},
		{"blank requester", "  ", "sari", ErrMissingUsernames},
		{"padded acceptor is a different user", "andi", " sari", ErrAcceptorNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.requestedBy, tt.acceptedBy)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestService_CreateUserLookupFailure(t *testing.T) {
	svc := NewService(NewSQLRepository(testDB(t)), failingUsers{})

	_, err := svc.Create(context.Background(), "andi", "sari")
	if err == nil || errors.Is(err, ErrAcceptorNotFound) {
		t.Errorf("Create() error = %v, want wrapped store error", err)
	}
}

func TestService_Transition(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	req, err := svc.Create(ctx, "andi", "sari")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.Transition(ctx, req.ID, StatusAccept, "sari"); err != nil {
		t.Fatalf("Transition() error = %v", err)
	}

	got, err := repo.Get(ctx, req.ID, "sari")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != StatusAccept {
		t.Errorf("Status = %q, want accept", got.Status)
	}
}

func TestService_TransitionRejects(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	req, err := svc.Create(ctx, "andi", "sari")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tests := []struct {
		name       string
		id         int64
		status     Status
		acceptedBy string
		wantErr    error
	}{
		{"missing acceptor", req.ID, StatusAccept, "", ErrMissingAcceptor},
		{"invalid status", req.ID, "maybe", "sari", ErrInvalidStatus},
		{"pending is not a target", req.ID, StatusPending, "sari", ErrInvalidStatus},
		{"wrong acceptor", req.ID, StatusAccept, "andi", ErrNotFound},
		{"unknown id", req.ID + 100, StatusDecline, "sari", ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Transition(ctx, tt.id, tt.status, tt.acceptedBy)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Transition() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	got, err := repo.Get(ctx, req.ID, "sari")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != StatusPending {
		t.Errorf("Status after rejected transitions = %q, want pending", got.Status)
	}
}

func TestService_TransitionOnlyOnce(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	req, err := svc.Create(ctx, "andi", "sari")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := svc.Transition(ctx, req.ID, StatusDecline, "sari"); err != nil {
		t.Fatalf("Transition() error = %v", err)
	}

	err = svc.Transition(ctx, req.ID, StatusAccept, "sari")
	if !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("second Transition() error = %v, want ErrAlreadyResolved", err)
	}

	got, err := repo.Get(ctx, req.ID, "sari")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != StatusDecline {
		t.Errorf("Status = %q, want decline", got.Status)
	}
}

func TestService_ConcurrentTransitionsSingleWinner(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	req, err := svc.Create(ctx, "andi", "sari")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		status := StatusAccept
		if i%2 == 1 {
			status = StatusDecline
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- svc.Transition(ctx, req.ID, status, "sari")
		}()
	}
	wg.Wait()
	close(errs)

	wins := 0
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrAlreadyResolved):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("successful transitions = %d, want 1", wins)
	}
}

func TestService_List(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "andi", "sari"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Create(ctx, "sari", "andi"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := svc.List(ctx, "sari")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 1 || got[0].RequestedBy != "andi" {
		t.Errorf("List() = %+v, want one request from andi", got)
	}

	if _, err := svc.List(ctx, " "); !errors.Is(err, ErrMissingAcceptor) {
		t.Errorf("List(blank) error = %v, want ErrMissingAcceptor", err)
	}

	empty, err := svc.List(ctx, "nobody")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("List(nobody) = %v, want empty non-nil slice", empty)
	}
}
