package kennel_test

import (
	"errors"
	"os"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-memberforms/pkg/form"
	"github.com/goliatone/go-memberforms/pkg/kennel"
)

func TestLoadFS_Formats(t *testing.T) {
	fsys := os.DirFS("testdata")

	cases := []struct {
		name     string
		wantID   string
		wantKeys []string
	}{
		{
			name:   "1",
			wantID: "1",
			wantKeys: []string{
				"first_name", "surname", "email", "nid", "class_standing",
				"did_pay_dues", "ethics_form.interests", "experience", "ethics_form.signtime",
			},
		},
		{name: "2", wantID: "ethics", wantKeys: []string{"ethics_form.hack_others", "ucf_email"}},
		{name: "3", wantID: "3", wantKeys: []string{"shirt_size"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := kennel.LoadFS(fsys, tc.name)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if doc.ID != tc.wantID {
				t.Fatalf("id mismatch: want %q, got %q", tc.wantID, doc.ID)
			}
			if diff := cmp.Diff(tc.wantKeys, doc.Keys()); diff != "" {
				t.Fatalf("keys mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadFS_RejectsEscapingNames(t *testing.T) {
	fsys := fstest.MapFS{"1.json": {Data: []byte(`[]`)}}
	for _, name := range []string{"../1", "sub/1", `..\1`, "", ".."} {
		if _, err := kennel.LoadFS(fsys, name); !errors.Is(err, kennel.ErrPathNotAllowed) {
			t.Fatalf("%q: expected ErrPathNotAllowed, got %v", name, err)
		}
	}
	if _, err := kennel.LoadFS(fsys, "9"); !errors.Is(err, kennel.ErrFormNotFound) {
		t.Fatalf("expected ErrFormNotFound, got %v", err)
	}
}

func TestParse_Empty(t *testing.T) {
	if _, err := kennel.Parse([]byte("  \n"), "x.json"); !errors.Is(err, kennel.ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
}

func TestEncode_RoundTripsYAML(t *testing.T) {
	doc, err := kennel.LoadFile("testdata/2.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	data, err := kennel.Encode(doc, kennel.FormatYAML)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	again, err := kennel.Parse(data, "again.yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff(doc, again); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_WidgetsAndPrefill(t *testing.T) {
	doc, err := kennel.LoadFile("testdata/1.json")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	prefill := kennel.Prefill{
		"id":             "c0ffee",
		"first_name":     "Ada",
		"surname":        nil,
		"discord":        map[string]any{"email": "ada@discord.example"},
		"class_standing": "Junior",
		"did_pay_dues":   false,
		"experience":     4,
	}

	inst, err := kennel.Build(doc, prefill)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	payload, err := form.New().BuildPayload(inst)
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	got := payload.Map()
	delete(got, "ethics_form.signtime")
	want := map[string]any{
		"first_name":            "Ada",
		"surname":               nil,
		"email":                 "ada@discord.example",
		"nid":                   nil,
		"class_standing":        "Junior",
		"did_pay_dues":          "No",
		"ethics_form.interests": nil,
		"experience":            "4",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("prefilled payload mismatch (-want +got):\n%s", diff)
	}

	w, ok := inst.Widget("class_standing")
	if !ok {
		t.Fatalf("class_standing missing")
	}
	sel := w.(*form.SingleSelect)
	if first := sel.Options[0].Value; first != form.OptionDefault {
		t.Fatalf("dropdown must lead with _default, got %q", first)
	}
	if _, ok := inst.Other("class_standing"); !ok {
		t.Fatalf("dropdown with other must have a sibling")
	}
	if _, ok := inst.Other("ethics_form.interests"); !ok {
		t.Fatalf("checkbox must have a sibling")
	}

	sig, _ := inst.Widget("ethics_form.signtime")
	statement := sig.(*form.Signature).Statement
	if statement != "By submitting this form, you, Ada, agree to the above terms. This form will be time-stamped." {
		t.Fatalf("unexpected statement %q", statement)
	}
}

func TestBuild_RequiredGate(t *testing.T) {
	doc, err := kennel.LoadFile("testdata/1.json")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	inst, err := kennel.Build(doc, kennel.Prefill{
		"first_name": "Ada",
		"surname":    "Lovelace",
		"email":      "ada@example.org",
		"nid":        "AB123456",
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	report, err := form.New().ValidateRequired(inst, false)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if diff := cmp.Diff([]string{"nid", "class_standing"}, report.Keys()); diff != "" {
		t.Fatalf("failing keys mismatch (-want +got):\n%s", diff)
	}
	if !errors.Is(report.Failures[0].Err, form.ErrPatternMismatch) {
		t.Fatalf("expected uppercase NID to mismatch, got %v", report.Failures[0].Err)
	}
}

func TestBuild_EmailDomainAndPrefillOptOut(t *testing.T) {
	doc, err := kennel.LoadFile("testdata/2.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	inst, err := kennel.Build(doc, kennel.Prefill{"ucf_email": "kept@ucf.edu"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	w, _ := inst.Widget("ucf_email")
	email := w.(*form.Text)
	if email.Value != "" {
		t.Fatalf("prefill: false must not seed the input, got %q", email.Value)
	}

	engine := form.New()
	radio, _ := inst.Widget("ethics_form.hack_others")
	if err := radio.(*form.SingleSelect).Select("I promise not to"); err != nil {
		t.Fatalf("select: %v", err)
	}
	for value, ok := range map[string]bool{"knight@ucf.edu": true, "knight@gmail.com": false} {
		email.Value = value
		email.Required = true
		report, err := engine.ValidateRequired(inst, false)
		if err != nil {
			t.Fatalf("validate: %v", err)
		}
		if report.OK() != ok {
			t.Fatalf("%s: want ok=%v, got %+v", value, ok, report)
		}
	}
}

func TestBuild_UnknownInput(t *testing.T) {
	doc := kennel.Document{Elements: []kennel.Element{{Input: "hologram", Key: "x"}}}
	if _, err := kennel.Build(doc, nil); !errors.Is(err, form.ErrUnsupportedFieldKind) {
		t.Fatalf("expected ErrUnsupportedFieldKind, got %v", err)
	}

	doc = kennel.Document{Elements: []kennel.Element{{Input: kennel.InputText}}}
	if _, err := kennel.Build(doc, nil); !errors.Is(err, kennel.ErrInvalidElement) {
		t.Fatalf("expected ErrInvalidElement, got %v", err)
	}
}

func TestPrefill_Lookup(t *testing.T) {
	prefill := kennel.Prefill{
		"ethics_form": map[string]any{"signtime": 17},
		"literal.key": "direct",
	}
	if got, ok := prefill.Lookup("ethics_form.signtime"); !ok || got != 17 {
		t.Fatalf("nested lookup failed: %v %v", got, ok)
	}
	if got, ok := prefill.Lookup("literal.key"); !ok || got != "direct" {
		t.Fatalf("literal lookup failed: %v %v", got, ok)
	}
	if _, ok := prefill.Lookup("ethics_form.missing"); ok {
		t.Fatalf("expected miss")
	}
}
