package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-softlimit/internal/config"
	"github.com/goliatone/go-softlimit/internal/metrics"
	"github.com/goliatone/go-softlimit/pkg/authoring"
	"github.com/goliatone/go-softlimit/pkg/render"
	"github.com/goliatone/go-softlimit/pkg/validation"
)

func execute(t *testing.T, stdin string, args []string, opts ...func(*app)) (string, string, error) {
	t.Helper()
	cmd := newRootCmd(opts...)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestValidateText(t *testing.T) {
	out, _, err := execute(t, "", []string{"validate", "Keep it short. [soft-limit:50w]"})
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)
}

func TestValidateRejectsBadMarkers(t *testing.T) {
	out, _, err := execute(t, "", []string{"validate", "[soft-limit:0] and [soft-limit:5]"})
	require.ErrorIs(t, err, errFailed)
	assert.Contains(t, out, "instructions: ")
}

func TestValidateReadsStdinAsJSON(t *testing.T) {
	out, _, err := execute(t, "Bad [soft-limit:abc]\n", []string{"validate", "--json", "-"})
	require.ErrorIs(t, err, errFailed)

	var result validation.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.False(t, result.Valid)
	require.NotEmpty(t, result.Issues)
	assert.Equal(t, validation.FieldInstructions, result.Issues[0].Field)
}

func TestValidateFields(t *testing.T) {
	out, _, err := execute(t, "", []string{"validate", "--fields", "testdata/fields.yaml"})
	require.ErrorIs(t, err, errFailed)
	assert.Contains(t, out, "title: ok\n")
	assert.Contains(t, out, "notes: ok\n")
	assert.Contains(t, out, "bio: instructions: ")

	out, _, err = execute(t, "", []string{"validate", "--fields", "testdata/fields.yaml", "--handle", "title"})
	require.NoError(t, err)
	assert.Equal(t, "title: ok\n", out)

	_, _, err = execute(t, "", []string{"validate", "--fields", "testdata/fields.yaml", "--handle", "missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown field "missing"`)
}

func TestStrip(t *testing.T) {
	out, _, err := execute(t, "", []string{"strip", "Keep it   short. [soft-limit:10]"})
	require.NoError(t, err)
	assert.Equal(t, "Keep it short.\n", out)

	_, _, err = execute(t, "", []string{"strip", "--check", "no marker here"})
	require.ErrorIs(t, err, errFailed)
}

func TestRenderFields(t *testing.T) {
	out, _, err := execute(t, "", []string{"render", "--fields", "testdata/fields.yaml", "--handle", "title,notes"})
	require.NoError(t, err)
	assert.Contains(t, out, `data-soft-limit-target="title"`)
	assert.Contains(t, out, "Keep it short.")
	assert.NotContains(t, out, "[soft-limit:10]")
	assert.Equal(t, 1, strings.Count(out, render.DefaultRuntimePath))
	assert.NotContains(t, out, `data-soft-limit-target="notes"`)
}

func TestRenderJSON(t *testing.T) {
	out, _, err := execute(t, "", []string{"render", "--fields", "testdata/fields.yaml", "--handle", "title", "--json"})
	require.NoError(t, err)

	var results []render.Result
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.True(t, results[0].Counter)
	assert.Equal(t, 10, results[0].Limit)
}

func TestRenderRequiresFields(t *testing.T) {
	_, _, err := execute(t, "", []string{"render"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no field definitions")
}

func TestLintOpenAPI(t *testing.T) {
	out, _, err := execute(t, "", []string{"lint-openapi", "../../pkg/openapi/testdata/posts.yaml"})
	require.ErrorIs(t, err, errFailed)
	assert.Contains(t, out, "6 markers, 3 invalid")
	assert.Contains(t, out, "invalid  #/")
}

func TestSimulate(t *testing.T) {
	out, _, err := execute(t, "", []string{"simulate", "../../pkg/simulate/testdata/late-input.yaml"})
	require.NoError(t, err)
	assert.Contains(t, out, "12/10")
	assert.Contains(t, out, "exceeded")
	assert.NotContains(t, out, "FAIL")
}

type queuedDriver struct {
	inputs  []string
	selects []int
	texts   []string
	infos   []string
}

func (d *queuedDriver) Input(context.Context, authoring.InputConfig) (string, error) {
	v := d.inputs[0]
	d.inputs = d.inputs[1:]
	return v, nil
}

func (d *queuedDriver) Confirm(context.Context, authoring.ConfirmConfig) (bool, error) {
	return true, nil
}

func (d *queuedDriver) Select(context.Context, authoring.SelectConfig) (int, error) {
	v := d.selects[0]
	d.selects = d.selects[1:]
	return v, nil
}

func (d *queuedDriver) TextArea(context.Context, authoring.TextAreaConfig) (string, error) {
	v := d.texts[0]
	d.texts = d.texts[1:]
	return v, nil
}

func (d *queuedDriver) Info(_ context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

func TestAuthorPrintsField(t *testing.T) {
	d := &queuedDriver{
		inputs:  []string{"excerpt", "Excerpt", "40"},
		selects: []int{0, 1},
		texts:   []string{"Summarize the post."},
	}
	withDriver := func(a *app) {
		a.driver = func(io.Writer) authoring.PromptDriver { return d }
	}

	out, _, err := execute(t, "", []string{"author"}, withDriver)
	require.NoError(t, err)
	assert.Contains(t, out, "excerpt:")
	assert.Contains(t, out, "Summarize the post. [soft-limit:40w]")
	assert.Equal(t, []string{"Instructions: Summarize the post. [soft-limit:40w]"}, d.infos)
}

func TestConfigErrorsStopCommands(t *testing.T) {
	_, _, err := execute(t, "", []string{"--config", "testdata/missing.yaml", "strip", "x"})
	require.Error(t, err)

	_, _, err = execute(t, "", []string{"--log-format", "xml", "strip", "x"})
	require.Error(t, err)
}

func testApp() *app {
	return &app{cfg: config.Default(), logger: slog.New(slog.DiscardHandler)}
}

func TestServeHandler(t *testing.T) {
	m := metrics.New(nil)
	h, err := testApp().handler(m)
	require.NoError(t, err)
	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/soft-limit/strip", "application/json",
		strings.NewReader(`{"instructions":"Short. [soft-limit:5]"}`))
	require.NoError(t, err)
	var stripped struct {
		Instructions string `json:"instructions"`
		HadMarker    bool   `json:"had_marker"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stripped))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Short.", stripped.Instructions)
	assert.True(t, stripped.HadMarker)

	resp, err = http.Get(srv.URL + render.DefaultRuntimePath)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "SoftLimit")

	resp, err = http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body),
		`softlimit_http_requests_total{code="200",method="post",route="/api/soft-limit/strip"} 1`)
}

func TestListenStopsOnCancel(t *testing.T) {
	a := testApp()
	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}

	done := make(chan error, 1)
	go func() { done <- a.listen(ctx, srv) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("listen did not return after cancel")
	}
}

func TestRenderEngineFlags(t *testing.T) {
	out, _, err := execute(t, "", []string{"render", "--fields", "testdata/fields.yaml", "--handle", "title",
		"--debounce", "120ms", "--poll", "--poll-interval", "2s"})
	require.NoError(t, err)
	assert.Contains(t, out, `data-debounce-ms="120"`)
	assert.Contains(t, out, `data-poll-ms="2000"`)

	_, _, err = execute(t, "", []string{"render", "--fields", "testdata/fields.yaml", "--warning-ratio", "2"})
	require.Error(t, err)
}
