package pool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRunOrdersResults(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	got, err := Run(context.Background(), items, func(ctx context.Context, n int) (int, error) {
		return n * n, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []int{1, 4, 9, 16, 25}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Run() mismatch (-want +got):\n%s", diff)
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	var inFlight, maxInFlight int32
	items := make([]int, 20)
	_, err := Run(context.Background(), items, func(ctx context.Context, n int) (struct{}, error) {
		cur := atomic.AddInt32(&inFlight, 1)
		defer atomic.AddInt32(&inFlight, -1)
		for {
			m := atomic.LoadInt32(&maxInFlight)
			if cur <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, cur) {
				break
			}
		}
		return struct{}{}, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if maxInFlight > Size {
		t.Errorf("observed %d tasks in flight, want at most %d", maxInFlight, Size)
	}
}

func TestRunPropagatesFirstError(t *testing.T) {
	errBoom := errors.New("boom")
	_, err := Run(context.Background(), []int{1, 2, 3}, func(ctx context.Context, n int) (int, error) {
		if n == 2 {
			return 0, errBoom
		}
		return n, nil
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("Run() error = %v, want %v", err, errBoom)
	}
}

func TestRunAllTolerates(t *testing.T) {
	errBoom := errors.New("boom")
	results := RunAll(context.Background(), []int{1, 2, 3}, func(ctx context.Context, n int) (int, error) {
		if n == 2 {
			return 0, errBoom
		}
		return n * 10, nil
	})
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	if results[0].Value != 10 || results[0].Err != nil {
		t.Errorf("results[0] = %+v", results[0])
	}
	if !errors.Is(results[1].Err, errBoom) {
		t.Errorf("results[1].Err = %v, want %v", results[1].Err, errBoom)
	}
	if results[2].Value != 30 || results[2].Err != nil {
		t.Errorf("results[2] = %+v", results[2])
	}
}
