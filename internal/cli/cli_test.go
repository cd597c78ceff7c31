package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-dev-tools/dev-tools/packages/ordering/pkg/codec"
	"github.com/the-dev-tools/dev-tools/packages/ordering/pkg/ordering"
)

// run executes orderctl with a config path that never exists so that the
// user's $HOME/.orderctl.yaml does not leak into tests.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func decodedIDs(t *testing.T, data []byte, format codec.Format) ([]any, []int) {
	t.Helper()

	records, err := codec.Decode(data, format)
	require.NoError(t, err)
	acc := ordering.NewRecordAccessor(ordering.DefaultConfig())
	ids := make([]any, len(records))
	orders := make([]int, len(records))
	for i, rec := range records {
		ids[i], _ = acc.Key(rec)
		orders[i], _ = acc.Order(rec)
	}
	return ids, orders
}

func TestReorder_Golden(t *testing.T) {
	t.Parallel()

	out, _, err := run(t, "reorder", "testdata/tasks.json", "--set", "d=0")
	require.NoError(t, err)
	newGoldie(t).Assert(t, "reorder_tasks", []byte(out))
}

func TestMove_Golden(t *testing.T) {
	t.Parallel()

	out, _, err := run(t, "move", "testdata/dense.json", "--from", "0", "--to", "2")
	require.NoError(t, err)
	newGoldie(t).Assert(t, "move_dense", []byte(out))
}

func TestReorder_NumericKeysFromYAML(t *testing.T) {
	t.Parallel()

	out, _, err := run(t, "reorder", "testdata/numeric.yaml", "--set", "30=5")
	require.NoError(t, err)

	ids, orders := decodedIDs(t, []byte(out), codec.FormatYAML)
	assert.Equal(t, []any{int64(30), int64(10), int64(20)}, ids)
	assert.Equal(t, []int{5, 6, 10}, orders)
}

func TestReorder_FormatOverride(t *testing.T) {
	t.Parallel()

	out, _, err := run(t, "reorder", "testdata/dense.json", "--format", "yaml", "--set", "c=0")
	require.NoError(t, err)

	ids, orders := decodedIDs(t, []byte(out), codec.FormatYAML)
	assert.Equal(t, []any{"c", "a", "b"}, ids)
	assert.Equal(t, []int{0, 1, 2}, orders)
}

func TestReorder_OutputDirectoryWithSeveralFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out, _, err := run(t, "reorder", "testdata/tasks.json", "testdata/dense.json", "--refresh", "--output", dir)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(filepath.Join(dir, "tasks.json"))
	require.NoError(t, err)
	ids, orders := decodedIDs(t, data, codec.FormatJSON)
	assert.Equal(t, []any{"a", "b", "c", "d"}, ids)
	assert.Equal(t, []int{0, 1, 2, 3}, orders)

	data, err = os.ReadFile(filepath.Join(dir, "dense.json"))
	require.NoError(t, err)
	ids, _ = decodedIDs(t, data, codec.FormatJSON)
	assert.Equal(t, []any{"a", "b", "c"}, ids)
}

func TestReorder_StdoutWithSeveralFilesHasHeaders(t *testing.T) {
	t.Parallel()

	out, _, err := run(t, "reorder", "testdata/dense.json", "testdata/tasks.json")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "==> testdata/dense.json <==\n"))
	assert.Contains(t, out, "==> testdata/tasks.json <==\n")
}

func TestReorder_Errors(t *testing.T) {
	t.Parallel()

	_, _, err := run(t, "reorder", "testdata/dense.json", "--set", "zz=0")
	require.ErrorIs(t, err, ordering.ErrUnknownItem)

	_, _, err = run(t, "reorder", "testdata/dense.json", "--set", "a=7")
	require.ErrorIs(t, err, ordering.ErrOrderOutOfRange)

	out, _, err := run(t, "reorder", "testdata/dense.json", "--set", "a=7", "--clamp")
	require.NoError(t, err)
	ids, _ := decodedIDs(t, []byte(out), codec.FormatJSON)
	assert.Equal(t, []any{"b", "c", "a"}, ids)

	_, _, err = run(t, "reorder", "testdata/dense.json", "--set", "a")
	require.Error(t, err)

	_, _, err = run(t, "reorder", "testdata/missing.json")
	require.Error(t, err)
}

func TestMove_RequiresOrderedItems(t *testing.T) {
	t.Parallel()

	_, _, err := run(t, "move", "testdata/tasks.json", "--from", "3", "--to", "0")
	require.ErrorIs(t, err, ordering.ErrInvalidItem)
}

func TestMove_UnsortedDocument(t *testing.T) {
	t.Parallel()

	_, _, err := run(t, "check", "testdata/unsorted.json")
	require.NoError(t, err)

	out, _, err := run(t, "move", "testdata/unsorted.json", "--from", "0", "--to", "1")
	require.NoError(t, err)

	ids, orders := decodedIDs(t, []byte(out), codec.FormatJSON)
	assert.Equal(t, []any{"c", "b", "a"}, ids)
	assert.Equal(t, []int{0, 1, 2}, orders)
}

func TestMove_RejectsDuplicateOrders(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "dup.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"a","order":0},{"id":"b","order":0},{"id":"c","order":1}]`), 0o644))

	_, _, err := run(t, "move", path, "--from", "0", "--to", "2")
	require.ErrorIs(t, err, ordering.ErrInvalidItem)
}

func TestMove_WriteBack(t *testing.T) {
	t.Parallel()

	src, err := os.ReadFile("testdata/dense.json")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "dense.json")
	require.NoError(t, os.WriteFile(path, src, 0o644))

	out, _, err := run(t, "move", path, "--from", "2", "--to", "0", "-w")
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	ids, orders := decodedIDs(t, data, codec.FormatJSON)
	assert.Equal(t, []any{"c", "a", "b"}, ids)
	assert.Equal(t, []int{0, 1, 2}, orders)
}

func TestCheck(t *testing.T) {
	t.Parallel()

	out, _, err := run(t, "check", "testdata/dense.json")
	require.NoError(t, err)
	assert.Contains(t, out, "testdata/dense.json: ok")
	assert.Contains(t, out, "range:            [0, 2]")

	out, _, err = run(t, "check", "testdata/tasks.json")
	require.ErrorIs(t, err, errProblemsFound)
	assert.Contains(t, out, "problems found")
	assert.Contains(t, out, "empty orders:     d")
	assert.Contains(t, out, "duplicate orders: 1")

	out, _, err = run(t, "check", "testdata/numeric.yaml", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"file": "testdata/numeric.yaml"`)
	assert.Contains(t, out, `"start": 6`)
}

func TestConfig_FileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "orderctl.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("ordering:\n  refresh_sequence: true\n"), 0o644))
	t.Setenv("ORDERCTL_ORDERING_CLAMP_RANGE", "true")

	var stdout bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", cfgPath, "reorder", "testdata/numeric.yaml", "--set", "10=99"})
	require.NoError(t, cmd.Execute())

	ids, orders := decodedIDs(t, stdout.Bytes(), codec.FormatYAML)
	assert.Equal(t, []any{int64(20), int64(30), int64(10)}, ids)
	assert.Equal(t, []int{0, 1, 2}, orders)
}

func TestConfig_FlagOverridesFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "orderctl.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("ordering:\n  refresh_sequence: true\n"), 0o644))

	var stdout bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", cfgPath, "reorder", "testdata/numeric.yaml", "--refresh=false"})
	require.NoError(t, cmd.Execute())

	_, orders := decodedIDs(t, stdout.Bytes(), codec.FormatYAML)
	assert.Equal(t, []int{5, 9, 12}, orders)
}

func TestConfig_UnknownLogLevel(t *testing.T) {
	t.Parallel()

	_, _, err := run(t, "--log-level", "loud", "version")
	require.Error(t, err)
}

func TestList_Workflow(t *testing.T) {
	t.Parallel()

	db := filepath.Join(t.TempDir(), "lists.db")

	out, _, err := run(t, "list", "--db", db, "import", "testdata/tasks.json", "--name", "tasks")
	require.NoError(t, err)
	listID := strings.TrimSpace(out)
	require.NotEmpty(t, listID)

	out, _, err = run(t, "list", "--db", db, "ls")
	require.NoError(t, err)
	assert.Contains(t, out, listID)
	assert.Contains(t, out, "tasks")

	out, _, err = run(t, "list", "--db", db, "show", listID)
	require.NoError(t, err)
	assert.Contains(t, out, "-         d")

	out, _, err = run(t, "list", "--db", db, "reorder", listID, "--set", "d=0")
	require.NoError(t, err)
	assert.Equal(t, "POSITION  ID\n0         d\n1         a\n2         b\n3         c\n", out)

	out, _, err = run(t, "list", "--db", db, "move", listID, "--from", "0", "--to", "3")
	require.NoError(t, err)
	assert.Equal(t, "POSITION  ID\n0         a\n1         b\n2         c\n3         d\n", out)

	out, _, err = run(t, "list", "--db", db, "append", listID, "e")
	require.NoError(t, err)
	assert.Equal(t, "4\te\n", out)

	_, _, err = run(t, "list", "--db", db, "delete", listID)
	require.NoError(t, err)

	_, _, err = run(t, "list", "--db", db, "show", listID)
	require.Error(t, err)
}

func TestList_InvalidID(t *testing.T) {
	t.Parallel()

	_, _, err := run(t, "list", "--db", filepath.Join(t.TempDir(), "x.db"), "show", "not-an-id")
	require.Error(t, err)
}

func TestParseChanges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		want    []change
		wantErr bool
	}{
		{name: "empty", args: nil, want: []change{}},
		{name: "several", args: []string{"a=1", "b = 2"}, want: []change{{key: "a", order: 1}, {key: "b ", order: 2}}},
		{name: "equals in key side", args: []string{"a=b=1"}, wantErr: true},
		{name: "missing order", args: []string{"a"}, wantErr: true},
		{name: "missing key", args: []string{"=1"}, wantErr: true},
		{name: "negative", args: []string{"a=-1"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseChanges(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVersion(t *testing.T) {
	t.Parallel()

	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "orderctl "))
}
