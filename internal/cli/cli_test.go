package cli_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-memberforms/internal/cli"
	"github.com/goliatone/go-memberforms/pkg/form"
	"github.com/goliatone/go-memberforms/pkg/renderers/tui"
)

const adaID = "0b0f2a0e-5d1c-4c1e-9a7e-1f2d3c4b5a69"

const joinForm = `id: "1"
title: Join
elements:
  - input: text
    key: first_name
    label: First name
    required: true
  - input: dropdown
    key: class_standing
    label: Class standing
    options: [Freshman, Senior]
    other: true
    required: true
  - input: checkbox
    key: interests
    label: Interests
    options: [CTF, Talks]
  - input: signature
    key: ethics_form.signtime
`

const members = `[{"id": "` + adaID + `", "first_name": "Ada", "surname": "Lovelace", "is_full_member": true}]`

const settings = `
forms_dir = "%s"

[theme]
name = "knightsec"
tokens = { brand = "#ffc904" }
`

type fixture struct {
	dir      string
	forms    string
	members  string
	settings string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir:      dir,
		forms:    filepath.Join(dir, "forms"),
		members:  filepath.Join(dir, "members.json"),
		settings: filepath.Join(dir, "memberforms.toml"),
	}
	if err := os.MkdirAll(f.forms, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(f.forms, "1.yaml"), joinForm)
	writeFile(t, f.members, members)
	writeFile(t, f.settings, strings.Replace(settings, "%s", filepath.ToSlash(f.forms), 1))
	return f
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func run(t *testing.T, driver tui.PromptDriver, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := cli.RunWith(context.Background(), append([]string{"memberforms"}, args...), &out, driver)
	return out.String(), err
}

func TestRender_UsesSettingsRosterAndTheme(t *testing.T) {
	f := newFixture(t)
	out, err := run(t, nil, "--config", f.settings,
		"render", "--members", f.members, "--member", `"`+adaID+`"`, "/join/1")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, fragment := range []string{
		`data-form-id="1"`,
		`data-theme="knightsec"`,
		`--brand: #ffc904;`,
		`name="first_name" type="text" required value="Ada"`,
		`you, Ada Lovelace, agree`,
	} {
		if !strings.Contains(out, fragment) {
			t.Errorf("output missing %q", fragment)
		}
	}
}

func TestRender_WritesOutputFile(t *testing.T) {
	f := newFixture(t)
	target := filepath.Join(f.dir, "join.html")
	out, err := run(t, nil, "render", "--output", target, filepath.Join(f.forms, "1.yaml"))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "Written to "+target+"\n" {
		t.Fatalf("unexpected stdout %q", out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), `<form class="kennelish"`) {
		t.Fatalf("output is not a form:\n%s", data)
	}
}

func TestRender_UnknownMember(t *testing.T) {
	f := newFixture(t)
	_, err := run(t, nil, "render", "--forms-dir", f.forms, "--members", f.members,
		"--member", "11111111-2222-3333-4444-555555555555", "1")
	if err == nil || !strings.Contains(err.Error(), "member not in roster") {
		t.Fatalf("expected unknown member error, got %v", err)
	}
}

func TestValidate_ReportsFailingFields(t *testing.T) {
	f := newFixture(t)
	answers := filepath.Join(f.dir, "answers.json")
	writeFile(t, answers, `{"interests": ["CTF"]}`)

	out, err := run(t, nil, "validate", "--forms-dir", f.forms, "--answers", answers, "1")
	if !errors.Is(err, form.ErrRequiredFieldsMissing) {
		t.Fatalf("expected ErrRequiredFieldsMissing, got %v", err)
	}
	want := "FAIL first_name: required value is missing\n" +
		"FAIL class_standing: required value is missing\n" +
		"0 of 2 required fields passed\n"
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_AppliesOtherAnswers(t *testing.T) {
	f := newFixture(t)
	answers := filepath.Join(f.dir, "answers.json")
	writeFile(t, answers, `{"first_name": "Ada", "class_standing": "Graduate", "interests": ["Talks", "Robotics"]}`)

	out, err := run(t, nil, "validate", "--forms-dir", f.forms, "--answers", answers, "1")
	if err != nil {
		t.Fatalf("validate: %v\n%s", err, out)
	}
	for _, fragment := range []string{
		"2 of 2 required fields passed",
		`"class_standing": "Graduate"`,
		`"interests": "Talks, Robotics"`,
		`"ethics_form.signtime": "`,
	} {
		if !strings.Contains(out, fragment) {
			t.Errorf("output missing %q\n%s", fragment, out)
		}
	}
}

func TestValidate_BlankOrUnofferedChoiceIsMissing(t *testing.T) {
	f := newFixture(t)
	writeFile(t, filepath.Join(f.forms, "2.yaml"), `id: "2"
elements:
  - input: radio
    key: is_member
    label: Member?
    options: [Yes, No]
    required: true
  - input: slider
    key: experience
    label: Experience
    required: true
  - input: checkbox
    key: interests
    options: [CTF]
`)
	answers := filepath.Join(f.dir, "answers.json")
	writeFile(t, answers, `{"is_member": "Maybe", "experience": null, "interests": null}`)

	out, err := run(t, nil, "validate", "--forms-dir", f.forms, "--answers", answers, "2")
	if !errors.Is(err, form.ErrRequiredFieldsMissing) {
		t.Fatalf("expected ErrRequiredFieldsMissing, got %v", err)
	}
	want := "FAIL is_member: required value is missing\n" +
		"FAIL experience: required value is missing\n" +
		"0 of 2 required fields passed\n"
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestFill_DryRunPrintsPayload(t *testing.T) {
	f := newFixture(t)
	driver := &scriptedDriver{
		inputs:  []string{"Ada"},
		selects: []int{2},
		multis:  [][]int{{0}},
		confirm: true,
	}
	out, err := run(t, driver, "fill", "--forms-dir", f.forms, "--dry-run", "1")
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	for _, fragment := range []string{`"first_name": "Ada"`, `"class_standing": "Senior"`, `"interests": "CTF"`} {
		if !strings.Contains(out, fragment) {
			t.Errorf("payload missing %q\n%s", fragment, out)
		}
	}
	if diff := cmp.Diff([]string{"✓ Form submitted."}, driver.infos); diff != "" {
		t.Fatalf("infos mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckIn_PrintsStatus(t *testing.T) {
	f := newFixture(t)
	out, err := run(t, nil, "checkin", "--members", f.members, strings.ToUpper(adaID))
	if err != nil {
		t.Fatalf("checkin: %v", err)
	}
	if diff := cmp.Diff(adaID+"\tAda Lovelace\tDues-Paying Member\n", out); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestImportOpenAPI_ListsAndConverts(t *testing.T) {
	f := newFixture(t)
	apiDoc := filepath.Join(f.dir, "members.openapi.json")
	writeFile(t, apiDoc, `{
  "openapi": "3.0.3",
  "info": { "title": "Members", "version": "1.0.0" },
  "paths": {
    "/api/form/1": {
      "post": {
        "operationId": "join",
        "summary": "Join",
        "requestBody": { "content": { "application/json": { "schema": {
          "type": "object",
          "required": ["first_name"],
          "properties": { "first_name": { "type": "string" } }
        } } } },
        "responses": { "200": { "description": "ok" } }
      }
    }
  }
}`)

	out, err := run(t, nil, "import-openapi", apiDoc)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if diff := cmp.Diff("join\tPOST /api/form/1\tJoin\n", out); diff != "" {
		t.Fatalf("listing mismatch (-want +got):\n%s", diff)
	}

	out, err = run(t, nil, "import-openapi", "--operation", "join", apiDoc)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	for _, fragment := range []string{"id: join", "key: first_name", "required: true"} {
		if !strings.Contains(out, fragment) {
			t.Errorf("yaml missing %q\n%s", fragment, out)
		}
	}
}

type scriptedDriver struct {
	inputs  []string
	selects []int
	multis  [][]int
	confirm bool
	infos   []string
}

func (d *scriptedDriver) Input(context.Context, tui.InputConfig) (string, error) {
	if len(d.inputs) == 0 {
		return "", errors.New("no input scripted")
	}
	value := d.inputs[0]
	d.inputs = d.inputs[1:]
	return value, nil
}

func (d *scriptedDriver) Confirm(context.Context, tui.ConfirmConfig) (bool, error) {
	return d.confirm, nil
}

func (d *scriptedDriver) Select(context.Context, tui.SelectConfig) (int, error) {
	if len(d.selects) == 0 {
		return -1, errors.New("no select scripted")
	}
	value := d.selects[0]
	d.selects = d.selects[1:]
	return value, nil
}

func (d *scriptedDriver) MultiSelect(context.Context, tui.SelectConfig) ([]int, error) {
	if len(d.multis) == 0 {
		return nil, errors.New("no multiselect scripted")
	}
	value := d.multis[0]
	d.multis = d.multis[1:]
	return value, nil
}

func (d *scriptedDriver) Info(_ context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}
