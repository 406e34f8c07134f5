package queue

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/admin-api/internal/core/ports"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []ports.LoginLinkJob
	fail map[string]bool
	done chan struct{}
	want int
}

func newRecordingMailer(want int) *recordingMailer {
	return &recordingMailer{fail: map[string]bool{}, done: make(chan struct{}), want: want}
}

func (m *recordingMailer) SendLoginLink(_ context.Context, job ports.LoginLinkJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, job)
	if len(m.sent) == m.want {
		close(m.done)
	}
	if m.fail[job.Email] {
		return errors.New("smtp: 550 mailbox unavailable")
	}
	return nil
}

func (m *recordingMailer) wait(t *testing.T) []ports.LoginLinkJob {
	t.Helper()
	select {
	case <-m.done:
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %d deliveries", m.want)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.LoginLinkJob(nil), m.sent...)
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(5, newRecordingMailer(0), zerolog.Nop())
	first := d.shardIndex("ada@example.com")
	for i := 0; i < 10; i++ {
		if got := d.shardIndex("ada@example.com"); got != first {
			t.Fatalf("expected shard %d, got %d", first, got)
		}
	}
	if first < 0 || first >= 5 {
		t.Fatalf("shard out of range: %d", first)
	}
}

func TestDispatcher_DefaultWorkers(t *testing.T) {
	d := NewDispatcher(0, newRecordingMailer(0), zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
}

func TestDispatcher_PreservesOrderPerRecipient(t *testing.T) {
	const perRecipient = 20
	recipients := []string{"a@example.com", "b@example.com", "c@example.com"}
	mailer := newRecordingMailer(perRecipient * len(recipients))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d := NewDispatcher(3, mailer, zerolog.Nop())
	d.Start(ctx)

	for i := 0; i < perRecipient; i++ {
		for _, email := range recipients {
			if !d.Enqueue(ctx, ports.LoginLinkJob{Email: email, Token: strconv.Itoa(i)}) {
				t.Fatalf("job %s/%d was not queued", email, i)
			}
		}
	}

	sent := mailer.wait(t)
	next := map[string]int{}
	for _, job := range sent {
		if job.Token != strconv.Itoa(next[job.Email]) {
			t.Fatalf("%s: expected token %d, got %s", job.Email, next[job.Email], job.Token)
		}
		next[job.Email]++
	}
	for _, email := range recipients {
		if next[email] != perRecipient {
			t.Fatalf("%s: expected %d deliveries, got %d", email, perRecipient, next[email])
		}
	}
}

func TestDispatcher_FailuresDoNotStopWorker(t *testing.T) {
	mailer := newRecordingMailer(2)
	mailer.fail["broken@example.com"] = true

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d := NewDispatcher(1, mailer, zerolog.Nop())
	d.Start(ctx)

	d.Enqueue(ctx, ports.LoginLinkJob{Email: "broken@example.com", Token: "1"})
	d.Enqueue(ctx, ports.LoginLinkJob{Email: "ok@example.com", Token: "2"})

	sent := mailer.wait(t)
	if len(sent) != 2 || sent[1].Email != "ok@example.com" {
		t.Fatalf("expected worker to continue after a failure, got %+v", sent)
	}
}

func TestDispatcher_DropsWhenBufferIsFull(t *testing.T) {
	d := NewDispatcher(1, newRecordingMailer(0), zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < channelBuffer; i++ {
		if !d.Enqueue(ctx, ports.LoginLinkJob{Email: "a@example.com", Token: strconv.Itoa(i)}) {
			t.Fatalf("job %d should fit in the buffer", i)
		}
	}

	done := make(chan bool, 1)
	go func() {
		done <- d.Enqueue(ctx, ports.LoginLinkJob{Email: "a@example.com", Token: "overflow"})
	}()
	select {
	case queued := <-done:
		if queued {
			t.Fatalf("expected overflow job to be dropped")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Enqueue blocked on a full buffer")
	}
}

func TestDispatcher_DropsForCancelledRequest(t *testing.T) {
	d := NewDispatcher(1, newRecordingMailer(0), zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if d.Enqueue(ctx, ports.LoginLinkJob{Email: "a@example.com"}) {
		t.Fatalf("expected job to be dropped for a cancelled context")
	}
	if n := len(d.workers[0]); n != 0 {
		t.Fatalf("expected empty buffer, got %d", n)
	}
}

func TestDispatcher_DropsAfterShutdown(t *testing.T) {
	d := NewDispatcher(1, newRecordingMailer(0), zerolog.Nop())
	runCtx, stop := context.WithCancel(context.Background())
	d.Start(runCtx)
	stop()

	select {
	case <-d.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("dispatcher did not stop")
	}

	for i := 0; i <= channelBuffer; i++ {
		if d.Enqueue(context.Background(), ports.LoginLinkJob{Email: "a@example.com"}) {
			t.Fatalf("job %d queued after shutdown", i)
		}
	}
}
