package relay

import (
	"context"
	"encoding/json"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

func startServer(t *testing.T, handler fasthttp.RequestHandler) *fasthttputil.InmemoryListener {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{Handler: handler}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = srv.Shutdown() })
	return ln
}

func dialer(ln *fasthttputil.InmemoryListener) fasthttp.DialFunc {
	return func(string) (net.Conn, error) { return ln.Dial() }
}

func TestSendPostsJSON(t *testing.T) {
	var got Notice
	var contentType string
	ln := startServer(t, func(ctx *fasthttp.RequestCtx) {
		contentType = string(ctx.Request.Header.ContentType())
		_ = json.Unmarshal(ctx.PostBody(), &got)
		ctx.SetStatusCode(fasthttp.StatusNoContent)
	})

	c := NewClient("http://relay.test/hook", WithDial(dialer(ln)),
		WithHeaderProvider(func() map[string]string { return map[string]string{"X-Token": "t"} }))
	err := c.Send(context.Background(), Notice{SessionID: "s1", Sender: "System", Text: "Game Over: White wins!"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if contentType != "application/json" {
		t.Errorf("content type = %q", contentType)
	}
	if got.SessionID != "s1" || got.Text != "Game Over: White wins!" {
		t.Errorf("unexpected notice %+v", got)
	}
	if got.SentAt.IsZero() {
		t.Errorf("sent_at not stamped")
	}
}

func TestSendRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	ln := startServer(t, func(ctx *fasthttp.RequestCtx) {
		if calls.Add(1) < 3 {
			ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
			return
		}
		ctx.SetStatusCode(fasthttp.StatusOK)
	})

	c := NewClient("http://relay.test/hook", WithDial(dialer(ln)), WithRetry(3))
	if err := c.Send(context.Background(), Notice{Text: "x"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("calls = %d, want 3", n)
	}
}

func TestSendDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	ln := startServer(t, func(ctx *fasthttp.RequestCtx) {
		calls.Add(1)
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		ctx.SetBodyString("nope")
	})

	c := NewClient("http://relay.test/hook", WithDial(dialer(ln)))
	if err := c.Send(context.Background(), Notice{Text: "x"}); err == nil {
		t.Fatalf("expected error")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

func TestSendHonoursCancelledContext(t *testing.T) {
	c := NewClient("http://relay.test/hook", WithTimeout(time.Second))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Send(ctx, Notice{Text: "x"}); err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestBackoffDuration(t *testing.T) {
	cases := map[int]time.Duration{0: 100 * time.Millisecond, 1: 100 * time.Millisecond, 2: 200 * time.Millisecond, 3: 400 * time.Millisecond, 9: 3200 * time.Millisecond}
	for attempt, want := range cases {
		if got := backoffDuration(attempt); got != want {
			t.Errorf("backoffDuration(%d) = %s, want %s", attempt, got, want)
		}
	}
}
