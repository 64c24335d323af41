package form_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-memberforms/pkg/form"
)

type recordingTransport struct {
	calls    int
	formID   string
	payloads []form.Payload
	err      error
}

func (r *recordingTransport) Send(_ context.Context, formID string, payload form.Payload) error {
	r.calls++
	r.formID = formID
	r.payloads = append(r.payloads, payload)
	return r.err
}

func TestSubmit_BlockedAttemptSkipsTransport(t *testing.T) {
	first := &form.Text{Field: form.Field{Key: "first_name", Required: true, Placeholder: "First"}}
	last := &form.Text{Field: form.Field{Key: "surname", Required: true, Placeholder: "Last"}}
	inst := mustInstance(t, []form.Widget{first, last})
	annotations := form.NewAnnotations(inst)
	engine := form.New(form.WithPresenter(annotations))
	transport := &recordingTransport{}

	report, err := engine.Submit(context.Background(), inst, transport)
	if !errors.Is(err, form.ErrRequiredFieldsMissing) {
		t.Fatalf("expected ErrRequiredFieldsMissing, got %v", err)
	}
	if !form.IsInputFailure(err) {
		t.Fatalf("expected input failure classification")
	}
	if transport.calls != 0 {
		t.Fatalf("transport contacted %d times", transport.calls)
	}
	if len(report.Failures) != 2 {
		t.Fatalf("expected two failures, got %+v", report.Failures)
	}
	if diff := cmp.Diff([]string{form.RequiredNotice}, annotations.Notices()); diff != "" {
		t.Fatalf("expected one aggregate notice (-want +got):\n%s", diff)
	}
}

func TestSubmit_SendsPayloadOnce(t *testing.T) {
	first := &form.Text{Field: form.Field{Key: "first_name", Required: true, Pattern: "^.+$"}, Value: "Ada"}
	inst, err := form.NewInstance("2", []form.Widget{first})
	if err != nil {
		t.Fatalf("new instance: %v", err)
	}
	transport := &recordingTransport{}

	if _, err := form.New().Submit(context.Background(), inst, transport); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if transport.calls != 1 || transport.formID != "2" {
		t.Fatalf("unexpected transport use: calls=%d form=%q", transport.calls, transport.formID)
	}
	var want form.Payload
	want.Set("first_name", form.ValueOf("Ada"))
	if diff := cmp.Diff(want, transport.payloads[0]); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmit_TransportFailure(t *testing.T) {
	first := &form.Text{Field: form.Field{Key: "first_name"}, Value: "Ada"}
	inst := mustInstance(t, []form.Widget{first})
	boom := errors.New("connection refused")

	_, err := form.New().Submit(context.Background(), inst, &recordingTransport{err: boom})
	if !errors.Is(err, boom) {
		t.Fatalf("expected transport error to be wrapped, got %v", err)
	}
	if form.IsInputFailure(err) {
		t.Fatalf("transport error classified as input failure")
	}
}

func TestSubmit_TransportFunc(t *testing.T) {
	inst := mustInstance(t, []form.Widget{&form.Text{Field: form.Field{Key: "k"}, Value: "v"}})
	var got form.Payload
	transport := form.TransportFunc(func(_ context.Context, _ string, payload form.Payload) error {
		got = payload
		return nil
	})
	if _, err := form.New().Submit(context.Background(), inst, transport); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got.Len() != 1 {
		t.Fatalf("expected payload delivered, got %d keys", got.Len())
	}
}

func TestSubmit_CanceledContext(t *testing.T) {
	inst := mustInstance(t, []form.Widget{&form.Text{Field: form.Field{Key: "k"}, Value: "v"}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	transport := &recordingTransport{}

	if _, err := form.New().Submit(ctx, inst, transport); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if transport.calls != 0 {
		t.Fatalf("transport contacted after cancellation")
	}
}
