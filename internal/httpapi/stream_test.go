package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Krishhhhhhhhhhhh/social-media/internal/live"
)

func newRecordedStream(rec *httptest.ResponseRecorder) *sseStream {
	return &sseStream{w: rec, rc: http.NewResponseController(rec), timeout: time.Second}
}

func TestStreamSendWritesFrame(t *testing.T) {
	rec := httptest.NewRecorder()
	st := newRecordedStream(rec)
	if err := st.Send(live.Frame{Event: live.EventMessage, Data: []byte(`{"id":"m1"}`)}); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "event: message\n") || !strings.Contains(body, `data: {"id":"m1"}`) {
		t.Fatalf("unexpected frame encoding: %q", body)
	}
}

func TestClosedStreamRejectsWrites(t *testing.T) {
	rec := httptest.NewRecorder()
	st := newRecordedStream(rec)
	if err := st.Send(live.Frame{Event: live.EventMessage, Data: []byte(`{}`)}); err != nil {
		t.Fatalf("send on open stream failed: %v", err)
	}
	before := rec.Body.Len()

	st.close()
	if err := st.Send(live.Frame{Event: live.EventMessage, Data: []byte(`{}`)}); err == nil {
		t.Fatal("expected error for send after close")
	}
	if rec.Body.Len() != before {
		t.Fatal("expected no bytes written after close")
	}
}

// A stream closed by its handler must drop out of the registry on the next
// delivery attempt instead of being written to.
func TestClosedStreamIsEvictedOnDelivery(t *testing.T) {
	rec := httptest.NewRecorder()
	st := newRecordedStream(rec)
	reg := live.NewRegistry()
	reg.Register("alice", st)

	st.close()
	if reg.DeliverIfPresent("alice", live.Frame{Event: live.EventMessage, Data: []byte(`{}`)}) {
		t.Fatal("expected delivery to a closed stream to report a miss")
	}
	if reg.Len() != 0 {
		t.Fatalf("expected closed handle evicted, got %d connections", reg.Len())
	}
}
