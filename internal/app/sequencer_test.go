package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/inklab/sketchroom/internal/domain"
)

func TestSequencer_FIFOPerRoom(t *testing.T) {
	req := require.New(t)
	s := NewSequencer()
	ctx := context.Background()

	var order []int
	for i := 0; i < 50; i++ {
		i := i
		err := s.Do(ctx, "r1", func(*Unit) error {
			order = append(order, i)
			return nil
		})
		req.NoError(err)
	}

	for i := 0; i < 50; i++ {
		req.Equal(i, order[i])
	}
}

func TestSequencer_UnitErrorsPropagate(t *testing.T) {
	req := require.New(t)
	s := NewSequencer()
	boom := errors.New("boom")

	err := s.Do(context.Background(), "r1", func(*Unit) error { return boom })
	req.ErrorIs(err, boom)

	// The queue keeps serving after a failed unit.
	err = s.Do(context.Background(), "r1", func(*Unit) error { return nil })
	req.NoError(err)
}

func TestSequencer_RoomsRunIndependently(t *testing.T) {
	req := require.New(t)
	s := NewSequencer()
	ctx := context.Background()

	blocked := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_ = s.Do(ctx, "slow", func(*Unit) error {
			close(blocked)
			<-release
			return nil
		})
	}()
	<-blocked

	// A unit for another room completes while "slow" is occupied.
	done := make(chan struct{})
	go func() {
		_ = s.Do(ctx, "fast", func(*Unit) error { return nil })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("unit for independent room blocked behind another room")
	}
	close(release)
	req.True(true)
}

func TestSequencer_SerializesConcurrentUnits(t *testing.T) {
	req := require.New(t)
	s := NewSequencer()
	ctx := context.Background()

	var running, max, total int
	var mu sync.Mutex

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Do(ctx, "r1", func(*Unit) error {
				mu.Lock()
				running++
				if running > max {
					max = running
				}
				total++
				mu.Unlock()
				time.Sleep(time.Millisecond)
				mu.Lock()
				running--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	req.Equal(1, max, "two units for one room overlapped")
	req.Equal(20, total)
}

func TestSequencer_SeqNumbersAdvanceOnlyOnCommit(t *testing.T) {
	req := require.New(t)
	s := NewSequencer()
	ctx := context.Background()
	seed := func() (uint64, error) { return 5, nil }

	var got []uint64
	// First unit seeds from the durable log and commits.
	err := s.Do(ctx, "r1", func(u *Unit) error {
		seq, err := u.NextSeq(seed)
		if err != nil {
			return err
		}
		got = append(got, seq)
		u.CommitSeq(seq)
		return nil
	})
	req.NoError(err)

	// Second unit fails to persist: no commit, no gap.
	err = s.Do(ctx, "r1", func(u *Unit) error {
		if _, err := u.NextSeq(seed); err != nil {
			return err
		}
		return domain.ErrPersistFailure
	})
	req.ErrorIs(err, domain.ErrPersistFailure)

	err = s.Do(ctx, "r1", func(u *Unit) error {
		seq, err := u.NextSeq(seed)
		if err != nil {
			return err
		}
		got = append(got, seq)
		u.CommitSeq(seq)
		return nil
	})
	req.NoError(err)

	req.Equal([]uint64{6, 7}, got)
}

func TestSequencer_ResetSeqRestartsCounter(t *testing.T) {
	req := require.New(t)
	s := NewSequencer()
	ctx := context.Background()

	var seq uint64
	err := s.Do(ctx, "r1", func(u *Unit) error {
		u.ResetSeq()
		var err error
		seq, err = u.NextSeq(func() (uint64, error) { t.Fatal("reseeded after reset"); return 0, nil })
		return err
	})
	req.NoError(err)
	req.Equal(uint64(1), seq)
}

func TestSequencer_CanceledCallerDoesNotCancelQueuedWork(t *testing.T) {
	req := require.New(t)
	s := NewSequencer()

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = s.Do(context.Background(), "r1", func(*Unit) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	ran := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Do(ctx, "r1", func(*Unit) error {
			close(ran)
			return nil
		})
	}()

	// The caller gives up while its unit is already queued.
	time.Sleep(10 * time.Millisecond)
	cancel()
	req.ErrorIs(<-errCh, context.Canceled)

	close(release)
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("queued unit was cancelled along with its caller")
	}
}
