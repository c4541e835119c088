package core_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"nameforge/internal/caser"
	"nameforge/internal/core"
	"nameforge/internal/testutil"
)

func newTestService(t *testing.T, fsmgr *testutil.MockFilesystemManager, suggester core.Suggester, opts core.Options) *core.Service {
	t.Helper()
	return core.NewService(
		testutil.NewTestHistoryStore(t),
		fsmgr,
		suggester,
		core.NopTagger{},
		core.NewNopLogger(),
		testutil.FixedClock(),
		testutil.NewStubIDGenerator(),
		opts,
	)
}

func TestService_Process(t *testing.T) {
	t.Run("one result per task in submission order", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		sug := testutil.NewStubSuggester()
		paths := []string{
			"/photos/IMG_1001.jpg",
			"/photos/IMG_1002.jpg",
			"/photos/IMG_1003.jpg",
		}
		for _, p := range paths {
			fsmgr.AddFile(p)
		}

		svc := newTestService(t, fsmgr, sug, core.Options{CaseStyle: caser.Kebab, PreserveExtension: true})

		results := svc.Process(context.Background(), core.Tasks(paths), 2, nil)
		if len(results) != len(paths) {
			t.Fatalf("len(results) = %d, want %d", len(results), len(paths))
		}
		for i, res := range results {
			if res.Index != i {
				t.Errorf("results[%d].Index = %d, want %d", i, res.Index, i)
			}
			if res.OriginalPath != paths[i] {
				t.Errorf("results[%d].OriginalPath = %q, want %q", i, res.OriginalPath, paths[i])
			}
			if res.Status != core.StatusApproved {
				t.Errorf("results[%d].Status = %q, want approved", i, res.Status)
			}
		}
	})

	t.Run("shapes suggestion into final name", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		fsmgr.AddFile("/photos/IMG_1001.jpg")

		sug := testutil.NewStubSuggester()
		sug.SetSuggestion("/photos/IMG_1001.jpg", core.Suggestion{
			Name:       "Sunset Over Harbor",
			Confidence: 0.95,
		})

		svc := newTestService(t, fsmgr, sug, core.Options{CaseStyle: caser.Kebab, PreserveExtension: true})

		results := svc.Process(context.Background(), core.Tasks([]string{"/photos/IMG_1001.jpg"}), 1, nil)
		if got, want := results[0].FinalName, "sunset-over-harbor.jpg"; got != want {
			t.Errorf("FinalName = %q, want %q", got, want)
		}
		if results[0].SuggestedName != "Sunset Over Harbor" {
			t.Errorf("SuggestedName = %q, want the raw suggestion", results[0].SuggestedName)
		}
	})

	t.Run("prefixes the modification date when configured", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		fsmgr.AddFileWithModTime("/photos/IMG_1001.jpg", time.Date(2025, 6, 15, 8, 30, 0, 0, time.UTC))

		sug := testutil.NewStubSuggester()
		sug.SetSuggestion("/photos/IMG_1001.jpg", core.Suggestion{Name: "Sunset Harbor"})

		svc := newTestService(t, fsmgr, sug, core.Options{
			CaseStyle:         caser.Kebab,
			PreserveExtension: true,
			IncludeDatePrefix: true,
		})

		results := svc.Process(context.Background(), core.Tasks([]string{"/photos/IMG_1001.jpg"}), 1, nil)
		if got, want := results[0].FinalName, "2025-06-15_sunset-harbor.jpg"; got != want {
			t.Errorf("FinalName = %q, want %q", got, want)
		}
	})

	t.Run("provider failure isolates to one result", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		fsmgr.AddFile("/docs/a.txt")
		fsmgr.AddFile("/docs/b.txt")
		fsmgr.AddFile("/docs/c.txt")

		sug := testutil.NewStubSuggester()
		sug.SetError("/docs/b.txt", errors.New("model timeout"))

		svc := newTestService(t, fsmgr, sug, core.Options{CaseStyle: caser.Kebab, PreserveExtension: true})

		results := svc.Process(context.Background(), core.Tasks([]string{"/docs/a.txt", "/docs/b.txt", "/docs/c.txt"}), 3, nil)
		if results[0].Status != core.StatusApproved || results[2].Status != core.StatusApproved {
			t.Errorf("sibling tasks should succeed, got %q and %q", results[0].Status, results[2].Status)
		}
		if results[1].Status != core.StatusFailed {
			t.Fatalf("results[1].Status = %q, want failed", results[1].Status)
		}
		if results[1].ErrorMessage != "model timeout" {
			t.Errorf("ErrorMessage = %q, want the provider error", results[1].ErrorMessage)
		}
	})

	t.Run("missing file fails without calling the provider", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		sug := testutil.NewStubSuggester()

		svc := newTestService(t, fsmgr, sug, core.Options{CaseStyle: caser.Kebab})

		results := svc.Process(context.Background(), core.Tasks([]string{"/gone.txt"}), 1, nil)
		if results[0].Status != core.StatusFailed {
			t.Fatalf("Status = %q, want failed", results[0].Status)
		}
		if len(sug.Calls()) != 0 {
			t.Errorf("provider was called %d times, want 0", len(sug.Calls()))
		}
	})

	t.Run("concurrency never exceeds the limit", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		paths := make([]string, 20)
		for i := range paths {
			paths[i] = "/batch/file" + string(rune('a'+i)) + ".txt"
			fsmgr.AddFile(paths[i])
		}

		var inFlight, peak atomic.Int64
		release := make(chan struct{})
		sug := testutil.NewStubSuggester()
		sug.OnSuggest = func(string) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			<-release
			inFlight.Add(-1)
		}
		close(release)

		svc := newTestService(t, fsmgr, sug, core.Options{CaseStyle: caser.Kebab})

		svc.Process(context.Background(), core.Tasks(paths), 4, nil)
		if peak.Load() > 4 {
			t.Errorf("peak in-flight = %d, want <= 4", peak.Load())
		}
	})

	t.Run("cancellation fails undispatched tasks and keeps finished ones", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		paths := []string{"/d/1.txt", "/d/2.txt", "/d/3.txt", "/d/4.txt", "/d/5.txt"}
		for _, p := range paths {
			fsmgr.AddFile(p)
		}

		ctx, cancel := context.WithCancel(context.Background())

		var started atomic.Int64
		bothStarted := make(chan struct{})
		proceed := make(chan struct{})

		sug := testutil.NewStubSuggester()
		sug.OnSuggest = func(string) {
			if started.Add(1) == 2 {
				close(bothStarted)
			}
			<-proceed
		}

		// Cancel while both workers are busy, then release them.
		go func() {
			<-bothStarted
			cancel()
			close(proceed)
		}()

		svc := newTestService(t, fsmgr, sug, core.Options{CaseStyle: caser.Kebab})
		results := svc.Process(ctx, core.Tasks(paths), 2, nil)

		if len(results) != len(paths) {
			t.Fatalf("len(results) = %d, want %d", len(results), len(paths))
		}

		var cancelled int
		for _, res := range results {
			if res.Status == core.StatusFailed && res.ErrorMessage == core.CancelledReason {
				cancelled++
			}
		}
		if cancelled == 0 {
			t.Error("expected at least one task to fail with the cancellation reason")
		}
		if cancelled == len(paths) {
			t.Error("dispatched tasks should have run to completion")
		}
	})

	t.Run("progress reaches total", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		paths := []string{"/p/a.txt", "/p/b.txt", "/p/c.txt"}
		for _, p := range paths {
			fsmgr.AddFile(p)
		}

		var mu sync.Mutex
		var last core.Progress
		onProgress := func(p core.Progress) {
			mu.Lock()
			if p.Completed > last.Completed {
				last = p
			}
			mu.Unlock()
		}

		svc := newTestService(t, fsmgr, testutil.NewStubSuggester(), core.Options{CaseStyle: caser.Kebab})
		svc.Process(context.Background(), core.Tasks(paths), 2, onProgress)

		if last.Completed != 3 || last.Total != 3 {
			t.Errorf("final progress = %d/%d, want 3/3", last.Completed, last.Total)
		}
	})

	t.Run("caps tags and marks apply intent", func(t *testing.T) {
		fsmgr := testutil.NewMockFilesystemManager()
		fsmgr.AddFile("/docs/report.pdf")

		sug := testutil.NewStubSuggester()
		sug.SetSuggestion("/docs/report.pdf", core.Suggestion{
			Name: "quarterly report",
			Tags: []string{"finance", "q3", "report", "2025", "internal", "draft"},
		})

		svc := newTestService(t, fsmgr, sug, core.Options{
			CaseStyle: caser.Kebab,
			TagCount:  3,
			ApplyTags: true,
		})

		results := svc.Process(context.Background(), core.Tasks([]string{"/docs/report.pdf"}), 1, nil)
		if len(results[0].Tags) != 3 {
			t.Errorf("len(Tags) = %d, want 3", len(results[0].Tags))
		}
		if !results[0].ApplyTags {
			t.Error("ApplyTags = false, want true")
		}
	})
}
