package sse

import (
	"fmt"
	"sync"
	"testing"
)

func TestPublishDeliversToRegisteredClients(t *testing.T) {
	s := New()

	cl := &client{userID: "oxy-1", events: make(chan Event, 4)}
	s.addClient(cl)
	defer s.removeClient(cl)

	s.Publish("oxy-1", Event{Type: EventInAppNotification, Message: "hello"})
	s.Publish("oxy-other", Event{Type: EventInAppNotification, Message: "not yours"})

	select {
	case got := <-cl.events:
		if got.Message != "hello" {
			t.Fatalf("unexpected event message: %s", got.Message)
		}
	default:
		t.Fatal("expected one buffered event")
	}

	select {
	case got := <-cl.events:
		t.Fatalf("expected no further events, got %+v", got)
	default:
	}
}

func TestPublishDropsEventsWhenBufferFull(t *testing.T) {
	s := New()

	cl := &client{userID: "oxy-1", events: make(chan Event, 1)}
	s.addClient(cl)
	defer s.removeClient(cl)

	s.Publish("oxy-1", Event{Type: EventInAppNotification, Message: "first"})
	s.Publish("oxy-1", Event{Type: EventInAppNotification, Message: "dropped"})

	got := <-cl.events
	if got.Message != "first" {
		t.Fatalf("unexpected event message: %s", got.Message)
	}
	select {
	case got := <-cl.events:
		t.Fatalf("expected overflow event dropped, got %+v", got)
	default:
	}
}

func TestRemoveClientDeletesEmptyUserEntry(t *testing.T) {
	s := New()

	a := &client{userID: "oxy-1", events: make(chan Event, 1)}
	b := &client{userID: "oxy-1", events: make(chan Event, 1)}
	s.addClient(a)
	s.addClient(b)

	s.removeClient(a)
	s.mu.RLock()
	remaining := len(s.clients["oxy-1"])
	s.mu.RUnlock()
	if remaining != 1 {
		t.Fatalf("expected 1 client left, got %d", remaining)
	}

	s.removeClient(b)
	s.mu.RLock()
	_, ok := s.clients["oxy-1"]
	s.mu.RUnlock()
	if ok {
		t.Fatal("expected user entry removed after last client disconnects")
	}

	if _, open := <-a.events; open {
		t.Fatal("expected client channel closed on removal")
	}
}

func TestPublishDuringDisconnectDoesNotPanic(t *testing.T) {
	s := New()

	const clientCount = 256
	clients := make([]*client, 0, clientCount)
	for i := 0; i < clientCount; i++ {
		cl := &client{
			userID: fmt.Sprintf("oxy-%d", i%8),
			events: make(chan Event, 1),
		}
		s.addClient(cl)
		clients = append(clients, cl)
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			s.Publish(fmt.Sprintf("oxy-%d", i%8), Event{Type: EventInAppNotification})
		}
	}()

	go func() {
		defer wg.Done()
		for _, cl := range clients {
			s.removeClient(cl)
		}
	}()

	wg.Wait()

	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.clients) != 0 {
		t.Fatalf("expected all clients removed, got %d user entries", len(s.clients))
	}
}
