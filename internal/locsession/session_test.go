package locsession

import (
	"context"
	"testing"
	"time"

	"kampalabites/internal/geolocate"
	"kampalabites/internal/structs"
)

func waitUpdate(t *testing.T, s *Session) Update {
	t.Helper()
	select {
	case u, ok := <-s.Updates():
		if !ok {
			t.Fatal("updates channel closed unexpectedly")
		}
		return u
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for an update")
	}
	return Update{}
}

func assertNoUpdate(t *testing.T, s *Session, d time.Duration) {
	t.Helper()
	select {
	case u, ok := <-s.Updates():
		if ok {
			t.Fatalf("unexpected update: %+v", u)
		}
	case <-time.After(d):
	}
}

type stubProvider struct {
	pos     geolocate.Position
	err     error
	release chan struct{}
}

func (p *stubProvider) Current(ctx context.Context, opts geolocate.Options) (geolocate.Position, error) {
	if p.release != nil {
		select {
		case <-p.release:
		case <-ctx.Done():
			return geolocate.Position{}, ctx.Err()
		}
	}
	return p.pos, p.err
}

func TestSession_NewerInputSupersedesOlder(t *testing.T) {
	fs := &fakeSearcher{results: map[string][]structs.DeliverabilityResult{
		"Kampala": {{Candidate: structs.PlaceCandidate{Name: "Kampala", DisplayName: "Kampala, Uganda"}}},
	}}
	svc := testService(fs, nil)
	s := svc.NewSession(nil)
	defer s.Close()

	// the second keystroke lands inside the first one's debounce window
	s.Input("Kam")
	s.Input("Kampala")

	u := waitUpdate(t, s)
	if u.Query != "Kampala" {
		t.Fatalf("expected the newest query to settle, got %q", u.Query)
	}
	if u.Generation != s.Generation() {
		t.Fatalf("update generation %d does not match session generation %d", u.Generation, s.Generation())
	}

	// exactly one result set and exactly one network call
	assertNoUpdate(t, s, 150*time.Millisecond)
	if calls := fs.calls(); len(calls) != 1 || calls[0] != "Kampala" {
		t.Fatalf("expected a single search for the final query, got %v", calls)
	}
}

func TestSession_ShortQuerySettlesEmptyImmediately(t *testing.T) {
	fs := &fakeSearcher{}
	svc := testService(fs, nil)
	s := svc.NewSession(nil)
	defer s.Close()

	s.Input("K")

	u := waitUpdate(t, s)
	if u.Query != "K" || len(u.Results) != 0 {
		t.Fatalf("expected immediate empty settle, got %+v", u)
	}
	if len(fs.calls()) != 0 {
		t.Fatalf("short query must not hit the searcher, got %v", fs.calls())
	}
}

func TestSession_ClearingInputCancelsPendingLookup(t *testing.T) {
	fs := &fakeSearcher{}
	svc := testService(fs, nil)
	s := svc.NewSession(nil)
	defer s.Close()

	s.Input("Kampala")
	s.Input("")

	// the empty query settles; the cancelled lookup never publishes
	u := waitUpdate(t, s)
	if u.Query != "" || len(u.Results) != 0 {
		t.Fatalf("unexpected update: %+v", u)
	}
	assertNoUpdate(t, s, 150*time.Millisecond)
	if len(fs.calls()) != 0 {
		t.Fatalf("cancelled lookup must not reach the searcher, got %v", fs.calls())
	}
}

func TestSession_GenerationAdvancesPerInput(t *testing.T) {
	svc := testService(&fakeSearcher{}, nil)
	s := svc.NewSession(nil)
	defer s.Close()

	s.Input("a")
	s.Input("ab")
	s.Input("abc")
	if got := s.Generation(); got != 3 {
		t.Fatalf("expected generation 3, got %d", got)
	}
}

func TestSession_LocateResolvesPosition(t *testing.T) {
	svc := testService(&fakeSearcher{}, nil)
	// ~10 km from the Muyenga centroid, inside the auto-assign radius
	s := svc.NewSession(&stubProvider{
		pos: geolocate.Position{Point: structs.GeoPoint{Lat: 0.09, Lng: 0}, Accuracy: 20},
	})
	defer s.Close()

	got, lerr := s.Locate(context.Background())
	if lerr != nil {
		t.Fatalf("unexpected error: %v", lerr)
	}
	if !got.Serviceable || got.Zone == nil || got.Zone.Name != "Muyenga" {
		t.Fatalf("unexpected resolution: %+v", got)
	}
}

func TestSession_LocateIsSingleFlight(t *testing.T) {
	svc := testService(&fakeSearcher{}, nil)
	provider := &stubProvider{
		pos:     geolocate.Position{Point: structs.GeoPoint{Lat: 0.09, Lng: 0}},
		release: make(chan struct{}),
	}
	s := svc.NewSession(provider)
	defer s.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, lerr := s.Locate(context.Background()); lerr != nil {
			t.Errorf("first locate failed: %v", lerr)
		}
	}()

	// wait until the first attempt is blocked inside the provider
	time.Sleep(50 * time.Millisecond)

	if _, lerr := s.Locate(context.Background()); lerr == nil {
		t.Fatal("expected the concurrent locate to be refused")
	}

	close(provider.release)
	<-done

	// once the first attempt finishes the guard lifts
	provider.release = nil
	if _, lerr := s.Locate(context.Background()); lerr != nil {
		t.Fatalf("expected locate to work again, got %v", lerr)
	}
}

func TestSession_InputAfterCloseIsIgnored(t *testing.T) {
	svc := testService(&fakeSearcher{}, nil)
	s := svc.NewSession(nil)

	s.Close()
	s.Input("Kampala")

	if _, ok := <-s.Updates(); ok {
		t.Fatal("expected a closed updates channel")
	}
}
