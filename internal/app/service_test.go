package app

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/jose-valero/game-queue-bot/internal/cutoff"
	"github.com/jose-valero/game-queue-bot/internal/domain/events"
	"github.com/jose-valero/game-queue-bot/internal/infra"
	"github.com/jose-valero/game-queue-bot/internal/queue"
)

func newTestService(t *testing.T) (*Service, cutoff.Store) {
	t.Helper()
	store := cutoff.NewMemoryStore()
	return ProvideService(queue.NewRegistry(), store, infra.NewNopLoggerFactory()), store
}

func mustJoin(t *testing.T, s *Service, user, game string, size int) *Result {
	t.Helper()
	r, err := s.Join(context.Background(), user, game, size)
	if err != nil {
		t.Fatalf("join %s: %v", user, err)
	}
	return r
}

func TestService_JoinCreatesWithCutoff(t *testing.T) {
	s, store := newTestService(t)
	ctx := context.Background()

	if _, err := s.Join(ctx, "ana", "Chess", 0); !errors.Is(err, ErrNoCutoff) {
		t.Fatalf("want ErrNoCutoff, got %v", err)
	}

	r := mustJoin(t, s, "ana", "Chess", 2)
	if !r.Created || r.Game != "chess" {
		t.Fatalf("want created chess queue, got %+v", r)
	}
	if n, ok, _ := store.Get(ctx, "chess"); !ok || n != 2 {
		t.Fatalf("cutoff must be stored, got %d ok=%v", n, ok)
	}

	r = mustJoin(t, s, "bob", "chess", 0)
	if r.Created {
		t.Fatal("second join must reuse the live queue")
	}
	if !reflect.DeepEqual(r.Report.Current, []string{"ana", "bob"}) {
		t.Fatalf("unexpected current %v", r.Report.Current)
	}

	if _, err := s.Join(ctx, "BOB", "chess", 0); !errors.Is(err, queue.ErrAlreadyPresent) {
		t.Fatalf("want ErrAlreadyPresent, got %v", err)
	}
}

func TestService_JoinRequiresGameWhenAmbiguous(t *testing.T) {
	s, _ := newTestService(t)
	mustJoin(t, s, "ana", "chess", 2)
	mustJoin(t, s, "bob", "go", 2)

	if _, err := s.Join(context.Background(), "cid", "", 0); !errors.Is(err, ErrNoGame) {
		t.Fatalf("want ErrNoGame, got %v", err)
	}
}

func TestService_GameInference(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	mustJoin(t, s, "ana", "chess", 2)

	// single queue: any command can omit the game
	if r, err := s.Status(ctx, "someone", ""); err != nil || r.Game != "chess" {
		t.Fatalf("want chess, got %+v err=%v", r, err)
	}

	mustJoin(t, s, "bob", "go", 2)
	if r, err := s.Wait(ctx, "bob", ""); err != nil || r.Game != "go" {
		t.Fatalf("want go by membership, got %+v err=%v", r, err)
	}
	if _, err := s.Status(ctx, "stranger", ""); !errors.Is(err, ErrNoGame) {
		t.Fatalf("want ErrNoGame, got %v", err)
	}
	if _, err := s.Status(ctx, "ana", "poker"); !errors.Is(err, ErrNoQueue) {
		t.Fatalf("want ErrNoQueue, got %v", err)
	}
}

func TestService_NextAndWait(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	for _, u := range []string{"a", "b", "c", "d", "e"} {
		mustJoin(t, s, u, "chess", 2)
	}

	r, err := s.Wait(ctx, "e", "chess")
	if err != nil || r.Wait.Rotations != 2 {
		t.Fatalf("want 2 rotations, got %+v err=%v", r.Wait, err)
	}

	r, err = s.Next(ctx, "a", "chess")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(r.Report.Retired, []string{"a", "b"}) {
		t.Fatalf("unexpected retired %v", r.Report.Retired)
	}
	if !reflect.DeepEqual(r.Report.Current, []string{"c", "d"}) {
		t.Fatalf("unexpected current %v", r.Report.Current)
	}
}

func TestService_AddKickRequirePlayer(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	mustJoin(t, s, "ana", "chess", 2)

	if _, err := s.AddPlayer(ctx, "ana", " ", ""); !errors.Is(err, ErrMissingPlayer) {
		t.Fatalf("want ErrMissingPlayer, got %v", err)
	}
	if _, err := s.AddPlayer(ctx, "ana", "bob", ""); err != nil {
		t.Fatal(err)
	}
	r, err := s.Kick(ctx, "ana", "BOB", "")
	if err != nil {
		t.Fatal(err)
	}
	if r.Report.Size() != 1 {
		t.Fatalf("want 1 left, got %d", r.Report.Size())
	}
	if _, err := s.Kick(ctx, "ana", "bob", ""); !errors.Is(err, queue.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestService_DelayRejoinUndo(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	for _, u := range []string{"a", "b", "c"} {
		mustJoin(t, s, u, "chess", 1)
	}

	if _, err := s.Delay(ctx, "a", "", ""); err != nil {
		t.Fatal(err)
	}
	// delaying keeps the user resolvable for inference
	r, err := s.Rejoin(ctx, "a", "")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(r.Report.Current, []string{"b"}) || r.Report.Waiting[0] != "a" {
		t.Fatalf("rejoin must append, got %+v", r.Report)
	}

	r, err = s.Undo(ctx, "a", "")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(r.Report.Delaying, []string{"a"}) {
		t.Fatalf("undo must restore delaying, got %+v", r.Report)
	}
	if _, err := s.Undo(ctx, "a", ""); !errors.Is(err, queue.ErrNoHistory) {
		t.Fatalf("want ErrNoHistory, got %v", err)
	}
}

func TestService_EndThenUndo(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	mustJoin(t, s, "ana", "chess", 2)
	mustJoin(t, s, "bob", "chess", 0)

	if _, err := s.End(ctx, "ana", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Status(ctx, "ana", "chess"); !errors.Is(err, ErrNoQueue) {
		t.Fatalf("ended queue must read as missing, got %v", err)
	}
	r, err := s.Undo(ctx, "ana", "chess")
	if err != nil {
		t.Fatal(err)
	}
	if r.Report.Size() != 2 {
		t.Fatalf("undo of end must restore 2, got %d", r.Report.Size())
	}
}

func TestService_JoinAfterEndReopens(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	mustJoin(t, s, "ana", "chess", 2)
	if _, err := s.End(ctx, "ana", "chess"); err != nil {
		t.Fatal(err)
	}
	r := mustJoin(t, s, "bob", "chess", 3)
	if !r.Created || r.Report.CohortSize != 3 {
		t.Fatalf("want reopened queue with size 3, got %+v", r)
	}
}

func TestService_RacingJoinsCreateOnce(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	users := []string{"ana", "bob", "cid", "dee", "eve", "fay", "gus", "hal"}
	results := make([]*Result, len(users))
	var wg sync.WaitGroup
	for i, u := range users {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			r, err := s.Join(ctx, u, "chess", 2)
			if err != nil {
				t.Errorf("join %s: %v", u, err)
				return
			}
			results[i] = r
		}(i, u)
	}
	wg.Wait()

	created := 0
	for _, r := range results {
		if r != nil && r.Created {
			created++
			if r.Action != events.ActionCreated {
				t.Errorf("opening join must publish %v, got %v", events.ActionCreated, r.Action)
			}
		}
	}
	if created != 1 {
		t.Fatalf("want exactly one creator, got %d", created)
	}
}

func TestService_Switch(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	mustJoin(t, s, "ana", "chess", 2)
	mustJoin(t, s, "bob", "chess", 0)
	if _, err := s.Delay(ctx, "bob", "", ""); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Switch(ctx, "stranger", "go", 4); !errors.Is(err, ErrNotQueued) {
		t.Fatalf("want ErrNotQueued, got %v", err)
	}
	if _, err := s.Switch(ctx, "ana", "go", 0); !errors.Is(err, ErrNoCutoff) {
		t.Fatalf("want ErrNoCutoff, got %v", err)
	}

	r, err := s.Switch(ctx, "ana", "Go", 4)
	if err != nil {
		t.Fatal(err)
	}
	if r.Game != "go" || r.Target != "chess" || r.Report.CohortSize != 4 {
		t.Fatalf("unexpected switch result %+v", r)
	}
	if !reflect.DeepEqual(r.Report.Current, []string{"ana"}) || !reflect.DeepEqual(r.Report.Delaying, []string{"bob"}) {
		t.Fatalf("participants must move, got %+v", r.Report)
	}
	if _, err := s.Status(ctx, "ana", "chess"); !errors.Is(err, ErrNoQueue) {
		t.Fatalf("source must be drained, got %v", err)
	}
}

func TestService_PublishesQueueChanged(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	var got []events.QueueChanged
	cancel := events.Subscribe(func(ev events.QueueChanged) {
		got = append(got, ev)
	})
	defer cancel()

	mustJoin(t, s, "ana", "chess", 2)
	mustJoin(t, s, "bob", "chess", 0)
	if _, err := s.Status(ctx, "ana", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Leave(ctx, "ana", ""); err != nil {
		t.Fatal(err)
	}
	// failed commands publish nothing
	_, _ = s.Leave(ctx, "ana", "chess")

	if len(got) != 3 {
		t.Fatalf("want 3 events, got %d: %+v", len(got), got)
	}
	if got[0].Action != events.ActionCreated || got[1].Action != events.ActionJoined || got[2].Action != events.ActionLeft {
		t.Fatalf("unexpected actions %v %v %v", got[0].Action, got[1].Action, got[2].Action)
	}
	if got[2].Members != 1 || got[2].Game != "chess" {
		t.Fatalf("unexpected event %+v", got[2])
	}
}

func TestCommandError_Unwraps(t *testing.T) {
	err := error(&CommandError{Command: "kick", Game: "chess", Target: "bob", Err: queue.ErrNotFound})
	if !errors.Is(err, queue.ErrNotFound) {
		t.Fatal("errors.Is must see the engine sentinel")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Target != "bob" {
		t.Fatalf("want CommandError, got %v", err)
	}
}

func TestService_SnapshotAndOverview(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	if _, err := s.Snapshot("chess"); !errors.Is(err, queue.ErrQueueNotFound) {
		t.Fatalf("want ErrQueueNotFound, got %v", err)
	}
	mustJoin(t, s, "ana", "chess", 2)
	mustJoin(t, s, "bob", "go", 1)
	if _, err := s.Delay(ctx, "bob", "", "go"); err != nil {
		t.Fatal(err)
	}

	r, err := s.Snapshot("go")
	if err != nil {
		t.Fatal(err)
	}
	if r.Size() != 0 || !reflect.DeepEqual(r.Delaying, []string{"bob"}) || r.Current == nil {
		t.Fatalf("want delaying-only snapshot with empty lists, got %+v", r)
	}

	all := s.Overview()
	if len(all) != 2 || all[0].Game != "chess" || all[1].Game != "go" {
		t.Fatalf("unexpected overview %+v", all)
	}
}
