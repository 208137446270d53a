package channel_test

import (
	"context"
	"testing"
	"time"

	"bactpipe/internal/channel"
)

func TestSubscribeReceivesSequence(t *testing.T) {
	ch := channel.New("trimmed")
	ch.Publish(channel.Item{Key: "a"})
	sub := ch.Subscribe()
	ch.Publish(channel.Item{Key: "b"})
	ch.Close()

	ctx := context.Background()
	var keys []string
	for {
		item, ok, err := sub.Next(ctx)
		if err != nil {
			t.Fatalf("Next returned error: %v", err)
		}
		if !ok {
			break
		}
		keys = append(keys, item.Key)
	}
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("unexpected sequence %v", keys)
	}
}

func TestFanOutIndependentConsumers(t *testing.T) {
	ch := channel.New("trimmed")
	first := ch.Subscribe()
	second := ch.Subscribe()

	ch.Publish(channel.Item{Key: "a"})
	ch.Publish(channel.Item{Key: "b"})
	ch.Close()

	ctx := context.Background()
	for _, sub := range []*channel.Subscription{first, second} {
		for _, want := range []string{"a", "b"} {
			item, ok, err := sub.Next(ctx)
			if err != nil || !ok {
				t.Fatalf("Next = (%v, %v, %v), want item %q", item, ok, err, want)
			}
			if item.Key != want {
				t.Fatalf("got key %q, want %q", item.Key, want)
			}
		}
		if _, ok, _ := sub.Next(ctx); ok {
			t.Fatal("expected exhausted subscription")
		}
	}
}

func TestNextBlocksUntilPublish(t *testing.T) {
	ch := channel.New("contigs")
	sub := ch.Subscribe()

	done := make(chan string, 1)
	go func() {
		item, ok, err := sub.Next(context.Background())
		if err != nil || !ok {
			done <- ""
			return
		}
		done <- item.Key
	}()

	time.Sleep(10 * time.Millisecond)
	ch.Publish(channel.Item{Key: "late"})

	select {
	case got := <-done:
		if got != "late" {
			t.Fatalf("got %q, want %q", got, "late")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Next did not wake on publish")
	}
}

func TestCollectAllWaitsForClose(t *testing.T) {
	ch := channel.New("reports")
	ch.Publish(channel.Item{Key: "a"})

	done := make(chan []channel.Item, 1)
	go func() {
		batch, err := ch.CollectAll(context.Background())
		if err != nil {
			done <- nil
			return
		}
		done <- batch
	}()

	select {
	case <-done:
		t.Fatal("CollectAll returned before close")
	case <-time.After(20 * time.Millisecond):
	}

	ch.Publish(channel.Item{Key: "b"})
	ch.Close()

	select {
	case batch := <-done:
		if len(batch) != 2 {
			t.Fatalf("expected 2 items, got %d", len(batch))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("CollectAll did not return after close")
	}
}

func TestCollectAllHonorsContext(t *testing.T) {
	ch := channel.New("reports")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ch.CollectAll(ctx); err == nil {
		t.Fatal("expected context error")
	}
}

func TestPublishAfterClosePanics(t *testing.T) {
	ch := channel.New("trimmed")
	ch.Close()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on publish after close")
		}
	}()
	ch.Publish(channel.Item{Key: "x"})
}
