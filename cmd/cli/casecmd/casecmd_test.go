package casecmd_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/myrjola/coldcase/cmd/cli/casecmd"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI with args. The commands are package-level so these tests must not run in parallel.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := &cobra.Command{Use: "coldcase-cli", SilenceUsage: true, SilenceErrors: true}
	root.PersistentFlags().BoolP("verbose", "v", false, "")
	root.AddGroup(casecmd.Group)
	root.AddCommand(casecmd.Validate, casecmd.Import, casecmd.List)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(t.Context())
	return out.String(), err
}

func TestValidate(t *testing.T) {
	out, err := execute(t, "validate", "testdata/orchard.yaml")
	require.NoError(t, err)
	require.Contains(t, out, `ok ("The Orchard Fire", 1 evidence, 1 people)`)

	out, err = execute(t, "validate", "testdata/orchard.yaml", "testdata/broken.json")
	require.Error(t, err)
	require.Contains(t, out, "testdata/broken.json: invalid case")
}

func TestImportAndList(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "coldcase.sqlite3")

	out, err := execute(t, "import", "--sqlite-url", dbPath, "testdata/orchard.yaml")
	require.NoError(t, err)
	require.Contains(t, out, `imported "The Orchard Fire" as case-`)

	_, err = execute(t, "import", "--sqlite-url", dbPath, "testdata/broken.json")
	require.Error(t, err)

	out, err = execute(t, "list", "--sqlite-url", dbPath)
	require.NoError(t, err)
	require.Contains(t, out, "The Orchard Fire")
	require.Contains(t, out, "Arson")
	require.NotContains(t, out, "Unsolvable")
}
