package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/woozymasta/mahamap/internal/geo"
)

func request(id string, n int) geo.PathRequest {
	features := make([]geo.Feature, n)
	for i := range features {
		lon := float64(i)
		features[i] = geo.Feature{
			Properties: map[string]any{"district": fmt.Sprintf("d%d", i)},
			Geometry: geo.Geometry{Coordinates: orb.Polygon{
				{{lon, 0}, {lon + 1, 0}, {lon + 1, 1}},
			}},
		}
	}

	return geo.PathRequest{ID: id, Features: features, Params: geo.Params{Scale: 1}}
}

func TestGenerateEchoesID(t *testing.T) {
	p := New(2, geo.NameKeys{})
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := p.Generate(ctx, request("batch-1", 3))
	if err != nil {
		t.Fatal(err)
	}
	if resp.ID != "batch-1" {
		t.Fatalf("id = %q", resp.ID)
	}
	if len(resp.Paths) != 3 || resp.Paths[2].Name != "d2" || resp.Paths[2].ID != 2 {
		t.Fatalf("unexpected paths %+v", resp.Paths)
	}
}

func TestSubmitAssignsID(t *testing.T) {
	p := New(1, geo.NameKeys{})
	defer p.Close()

	reply, err := p.Submit(context.Background(), request("", 1))
	if err != nil {
		t.Fatal(err)
	}

	select {
	case resp := <-reply:
		if _, err := uuid.Parse(resp.ID); err != nil {
			t.Fatalf("generated id %q is not a uuid: %v", resp.ID, err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no response")
	}
}

func TestConcurrentBatchesAreCorrelated(t *testing.T) {
	p := New(4, geo.NameKeys{})
	defer p.Close()

	const batches = 40
	var wg sync.WaitGroup
	errs := make(chan error, batches)

	for i := 0; i < batches; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("req-%d", i)
			resp, err := p.Generate(context.Background(), request(id, i%7+1))
			if err != nil {
				errs <- err
				return
			}
			if resp.ID != id || len(resp.Paths) != i%7+1 {
				errs <- fmt.Errorf("batch %s got id %s with %d paths", id, resp.ID, len(resp.Paths))
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestExactlyOneResponse(t *testing.T) {
	p := New(1, geo.NameKeys{})
	defer p.Close()

	reply, err := p.Submit(context.Background(), request("one", 2))
	if err != nil {
		t.Fatal(err)
	}
	<-reply

	select {
	case extra := <-reply:
		t.Fatalf("unexpected second response %+v", extra)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubmitAfterClose(t *testing.T) {
	p := New(1, geo.NameKeys{})
	p.Close()
	p.Close()

	if _, err := p.Submit(context.Background(), request("late", 1)); !errors.Is(err, ErrClosed) {
		t.Fatalf("err = %v, want ErrClosed", err)
	}

	select {
	case <-p.Done():
	default:
		t.Fatal("done channel not closed")
	}
}

func TestCloseDrainsQueuedBatches(t *testing.T) {
	p := New(1, geo.NameKeys{})

	replies := make([]<-chan geo.PathResponse, 0, 5)
	for i := 0; i < 5; i++ {
		reply, err := p.Submit(context.Background(), request(fmt.Sprint(i), 50))
		if err != nil {
			t.Fatal(err)
		}
		replies = append(replies, reply)
	}
	p.Close()

	for i, reply := range replies {
		select {
		case resp := <-reply:
			if resp.ID != fmt.Sprint(i) {
				t.Errorf("reply %d carries id %s", i, resp.ID)
			}
		default:
			t.Errorf("batch %d was dropped on close", i)
		}
	}
}
