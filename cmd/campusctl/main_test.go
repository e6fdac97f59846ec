package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mkrupp/campuslink/internal/domain"
	"github.com/mkrupp/campuslink/internal/repo/database"
	"github.com/mkrupp/campuslink/internal/svc/authsvc"
	"github.com/mkrupp/campuslink/internal/svc/campus"
)

func testConfig(t *testing.T) Config {
	t.Helper()

	dir := t.TempDir()

	return Config{
		Campus: campus.Config{
			Database: database.Config{Path: filepath.Join(dir, "campuslink.db"), BusyTimeout: 5000},
			Auth:     authsvc.AuthConfig{SigningKeyFile: filepath.Join(dir, "campuslink.key"), TokenDuration: 3600},
		},
		SessionFile: filepath.Join(dir, "session"),
	}
}

// invoke runs one command and returns its output.
func invoke(t *testing.T, cfg Config, format string, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer

	out, err := newPrinter(format, &buf)
	require.NoError(t, err)

	err = run(context.Background(), cfg, out, args)

	return buf.String(), err
}

func decode[T any](t *testing.T, output string) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal([]byte(output), &v), output)

	return v
}

func TestParseArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		wantPos  []string
		wantDesc string
	}{
		{name: "flags first", args: []string{"-desc", "d", "read"}, wantPos: []string{"read"}, wantDesc: "d"},
		{name: "flags last", args: []string{"read", "chapter", "-desc", "d"}, wantPos: []string{"read", "chapter"}, wantDesc: "d"},
		{name: "no flags", args: []string{"read"}, wantPos: []string{"read"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fs := newFlagSet("test")
			desc := fs.String("desc", "", "")

			pos, err := parseArgs(fs, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPos, pos)
			assert.Equal(t, tt.wantDesc, *desc)
		})
	}

	_, err := parseArgs(newFlagSet("test"), []string{"-nope"})
	require.ErrorIs(t, err, errUsage)
}

func TestNewPrinter(t *testing.T) {
	t.Parallel()

	for _, format := range []string{formatText, formatYAML, formatJSON} {
		_, err := newPrinter(format, &bytes.Buffer{})
		require.NoError(t, err)
	}

	_, err := newPrinter("xml", &bytes.Buffer{})
	require.ErrorIs(t, err, errUnknownFormat)
}

func TestPrinterYAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	out, err := newPrinter(formatYAML, &buf)
	require.NoError(t, err)
	require.NoError(t, out.emit(domain.Task{ID: 3, OwnerID: 1, Name: "Read", DueDate: "2025-05-01"}))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "Read", got["name"])
	assert.Equal(t, "2025-05-01", got["dueDate"])
	assert.Equal(t, false, got["isCompleted"])
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "üüü...", truncate("üüüüüüüü", 6))
}

func TestSessionFile(t *testing.T) {
	t.Parallel()

	f := sessionFile(filepath.Join(t.TempDir(), "nested", "session"))

	_, err := f.load()
	require.ErrorIs(t, err, domain.ErrNoAuthToken)

	found, err := f.clear()
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, f.save("token-value"))

	token, err := f.load()
	require.NoError(t, err)
	assert.Equal(t, "token-value", token)

	found, err = f.clear()
	require.NoError(t, err)
	assert.True(t, found)
}

func TestCommands(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)

	_, err := invoke(t, cfg, formatText, "init")
	require.NoError(t, err)

	out, err := invoke(t, cfg, formatJSON, "register", "carol", "-password", "pw1")
	require.NoError(t, err)
	registered := decode[userView](t, out)
	assert.Equal(t, "carol", registered.Username)

	_, err = invoke(t, cfg, formatText, "register", "carol", "-password", "pw2")
	require.ErrorIs(t, err, domain.ErrUserAlreadyExists)

	_, err = invoke(t, cfg, formatText, "task", "list")
	require.ErrorIs(t, err, domain.ErrNoAuthToken)

	_, err = invoke(t, cfg, formatText, "login", "carol", "-password", "wrong")
	require.ErrorIs(t, err, errLoginRejected)

	out, err = invoke(t, cfg, formatJSON, "login", "-password", "pw1", "carol")
	require.NoError(t, err)
	session := decode[sessionView](t, out)
	assert.Equal(t, registered.ID, session.UserID)

	out, err = invoke(t, cfg, formatText, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "carol")

	_, err = invoke(t, cfg, formatText, "task", "add", "Submit", "form", "-due", "2025-13-01")
	require.ErrorIs(t, err, domain.ErrInvalidDueDate)

	out, err = invoke(t, cfg, formatJSON, "task", "add", "Submit", "form", "-due", "2025-05-01")
	require.NoError(t, err)
	added := decode[domain.Task](t, out)
	assert.Equal(t, "Submit form", added.Name)
	assert.False(t, added.IsCompleted)

	out, err = invoke(t, cfg, formatJSON, "task", "done", "1")
	require.NoError(t, err)
	assert.Equal(t, changeView{ID: 1, Found: true}, decode[changeView](t, out))

	out, err = invoke(t, cfg, formatJSON, "task", "list")
	require.NoError(t, err)
	tasks := decode[[]domain.Task](t, out)
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].IsCompleted)

	out, err = invoke(t, cfg, formatText, "task", "rm", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted task 1")

	out, err = invoke(t, cfg, formatText, "task", "rm", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "No task with id 1")

	out, err = invoke(t, cfg, formatJSON, "task", "list")
	require.NoError(t, err)
	assert.Empty(t, decode[[]domain.Task](t, out))

	out, err = invoke(t, cfg, formatJSON, "post", "add", "Lost keys", "blue", "lanyard")
	require.NoError(t, err)
	posted := decode[domain.Post](t, out)
	assert.Equal(t, "blue lanyard", posted.Content)

	out, err = invoke(t, cfg, formatText, "post", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Lost keys")
	assert.Contains(t, out, "by carol")

	_, err = invoke(t, cfg, formatText, "post", "rm", "abc")
	require.ErrorIs(t, err, errUsage)

	out, err = invoke(t, cfg, formatText, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")

	_, err = invoke(t, cfg, formatText, "post", "rm", "1")
	require.ErrorIs(t, err, domain.ErrNoAuthToken)
}

func TestPostDeleteByOtherUser(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)

	for _, username := range []string{"gina", "hank"} {
		_, err := invoke(t, cfg, formatText, "register", username, "-password", "pw")
		require.NoError(t, err)
	}

	_, err := invoke(t, cfg, formatText, "login", "gina", "-password", "pw")
	require.NoError(t, err)

	_, err = invoke(t, cfg, formatText, "post", "add", "Study group", "Thursday")
	require.NoError(t, err)

	_, err = invoke(t, cfg, formatText, "task", "add", "Gina only")
	require.NoError(t, err)

	_, err = invoke(t, cfg, formatText, "login", "hank", "-password", "pw")
	require.NoError(t, err)

	_, err = invoke(t, cfg, formatText, "post", "rm", "1")
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = invoke(t, cfg, formatText, "task", "done", "1")
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = invoke(t, cfg, formatText, "post", "rm", "2")
	require.ErrorIs(t, err, domain.ErrPostNotFound)

	out, err := invoke(t, cfg, formatText, "post", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Study group")
}

func TestUnknownCommand(t *testing.T) {
	t.Parallel()

	_, err := invoke(t, testConfig(t), formatText, "frobnicate")
	require.ErrorIs(t, err, errUsage)
	assert.Contains(t, err.Error(), "frobnicate")
}
