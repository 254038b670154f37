package printready

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"testing"
)

func TestResolveWorkers(t *testing.T) {
	t.Parallel()

	gomaxprocs := runtime.GOMAXPROCS(0)

	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{
			name:    "explicit takes priority",
			workers: 4,
			want:    4,
		},
		{
			name:    "explicit=1 for sequential",
			workers: 1,
			want:    1,
		},
		{
			name:    "explicit can exceed max",
			workers: 20,
			want:    20,
		},
		{
			name:    "zero uses auto calculation",
			workers: 0,
			want:    min(max(gomaxprocs/cpuDivisor, MinWorkers), MaxWorkers),
		},
		{
			name:    "negative uses auto calculation",
			workers: -3,
			want:    min(max(gomaxprocs/cpuDivisor, MinWorkers), MaxWorkers),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ResolveWorkers(tt.workers)
			if got != tt.want {
				t.Errorf("ResolveWorkers(%d) = %d, want %d", tt.workers, got, tt.want)
			}
		})
	}
}

// ---- TestRenderAll ----

func TestRenderAll(t *testing.T) {
	t.Parallel()

	l := &mockLauncher{log: &callLog{}, newPage: newMockPage}
	p, err := NewPrinter(WithLauncher(l))
	if err != nil {
		t.Fatal(err)
	}

	reqs := make([]RenderRequest, 5)
	for i := range reqs {
		reqs[i] = RenderRequest{Source: fmt.Sprintf("https://example.com/%d.html", i)}
	}
	reqs[3].PDF.Orientation = "diagonal"

	results := p.RenderAll(context.Background(), reqs, 3)
	if len(results) != len(reqs) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(reqs))
	}
	for i, res := range results {
		if res.Index != i || res.Request.Source != reqs[i].Source {
			t.Errorf("results[%d] = index %d source %q", i, res.Index, res.Request.Source)
		}
		if i == 3 {
			if !errors.Is(res.Err, ErrInvalidOrientation) {
				t.Errorf("results[3].Err = %v, want ErrInvalidOrientation", res.Err)
			}
			continue
		}
		if res.Err != nil || res.Artifact == nil || res.Artifact.URL != reqs[i].Source {
			t.Errorf("results[%d] = %+v", i, res)
		}
	}
	if got := l.log.count("browser.Close"); got != 4 {
		t.Errorf("browsers closed = %d, want 4", got)
	}
}

func TestRenderAll_Cancelled(t *testing.T) {
	t.Parallel()

	l := &mockLauncher{log: &callLog{}, newPage: newMockPage}
	p, err := NewPrinter(WithLauncher(l))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := p.RenderAll(ctx, []RenderRequest{{Source: "https://example.com/a.html"}, {Source: "https://example.com/b.html"}}, 1)
	for i, res := range results {
		if !errors.Is(res.Err, context.Canceled) {
			t.Errorf("results[%d].Err = %v, want context.Canceled", i, res.Err)
		}
	}
	if got := l.log.count("launch"); got != 0 {
		t.Errorf("launched %d browsers, want 0", got)
	}
}

func TestRenderAll_Empty(t *testing.T) {
	t.Parallel()

	p, _ := newTestPrinter(t, newMockPage())
	if got := p.RenderAll(context.Background(), nil, 0); len(got) != 0 {
		t.Errorf("RenderAll(nil) = %v, want empty", got)
	}
}
