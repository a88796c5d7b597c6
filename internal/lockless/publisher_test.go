package lockless

import (
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
)

type pose struct {
	X, Y, Z, W float64
	Seq        int64
}

func TestStateBeforePublishIsZero(t *testing.T) {
	p := New[pose]()
	if got := p.State(); got != (pose{}) {
		t.Fatalf("state=%+v", got)
	}
	if _, gen := p.Snapshot(); gen != 0 {
		t.Fatalf("gen=%d", gen)
	}
}

func TestLatestWins(t *testing.T) {
	p := New[int]()
	for i := 1; i <= 20; i++ {
		p.SetState(i)
	}
	if p.State() != 20 {
		t.Fatalf("state=%d", p.State())
	}
	v, gen := p.Snapshot()
	if v != 20 || gen != 20 || p.Generation() != 20 {
		t.Fatalf("snapshot=%d gen=%d generation=%d", v, gen, p.Generation())
	}
}

func TestHistoryKeepsEightNewestFirst(t *testing.T) {
	p := New[int]()
	for i := 1; i <= 10; i++ {
		p.SetState(i)
	}
	want := []int{10, 9, 8, 7, 6, 5, 4, 3}
	if got := p.History(); !reflect.DeepEqual(got, want) {
		t.Fatalf("history=%v want %v", got, want)
	}
}

// Readers must never see a torn value: every field of a pose is written
// from the same sequence number.
func TestConcurrentReadersSeeConsistentValues(t *testing.T) {
	p := New[pose]()
	const writes = 20000
	var stop atomic.Bool
	var wg sync.WaitGroup
	errs := make(chan string, 4)
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var last int64
			for !stop.Load() {
				v, gen := p.Snapshot()
				if gen == 0 {
					continue
				}
				f := float64(v.Seq)
				if v.X != f || v.Y != f || v.Z != f || v.W != f || v.Seq != gen {
					errs <- "torn read"
					return
				}
				if gen < last {
					errs <- "generation went backwards"
					return
				}
				last = gen
			}
		}()
	}
	for i := int64(1); i <= writes; i++ {
		f := float64(i)
		p.SetState(pose{X: f, Y: f, Z: f, W: f, Seq: i})
	}
	stop.Store(true)
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Fatalf("%s", e)
	}
	if p.State().Seq != writes {
		t.Fatalf("final seq=%d", p.State().Seq)
	}
}
