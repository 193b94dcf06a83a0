package command

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	return out.String()
}

func TestCommands_FullBootstrap(t *testing.T) {
	color.NoColor = true
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "file:"+filepath.Join(t.TempDir(), "library.db"))
	// nothing listens here; seeding runs without a cache to evict from
	t.Setenv("REDIS_URL", "redis://127.0.0.1:1")

	out := run(t, "migrate")
	assert.Contains(t, out, "Schema up to date (4 permissions created).")

	out = run(t, "migrate")
	assert.Contains(t, out, "(0 permissions created)")

	out = run(t, "create_test_users")
	assert.Contains(t, out, "Group Admins does not exist. Run create_groups first.")

	out = run(t, "create_groups")
	assert.Contains(t, out, "Created group: Admins")
	assert.Contains(t, out, "Groups and permissions setup complete.")

	out = run(t, "create_groups")
	assert.Contains(t, out, "Updated group: Viewers")

	out = run(t, "create_test_users")
	assert.Contains(t, out, "User admin_user already exists")
	assert.Contains(t, out, "Assigned viewer_user to group Viewers")
	assert.Equal(t, 3, strings.Count(out, "already exists"))
}
