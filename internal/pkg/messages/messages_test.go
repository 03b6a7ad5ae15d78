package messages

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat_Bundled(t *testing.T) {
	assert.Equal(t, "in progress", Format("status.in_progress"))
	assert.Equal(t, "Your complaint COMP-1 has reached 25 upvotes.",
		Format("upvote_milestone.message", "COMP-1", 25))
	assert.Equal(t, "no.such.key", Format("no.such.key"))
}

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"custom.yaml": {Data: []byte("NOTIFICATIONS:\n  marked_urgent.title: \"Priority raised\"\n")},
		"broken.yaml": {Data: []byte("NOTIFICATIONS: [unclosed")},
	}
	t.Cleanup(func() {
		require.NoError(t, merge("reset", bundled))
	})

	require.NoError(t, Load(fsys, "custom.yaml"))
	assert.Equal(t, "Priority raised", Format("marked_urgent.title"))
	// untouched keys keep the bundled text
	assert.Equal(t, "Complaint reopened", Format("refiled.title"))

	assert.Error(t, Load(fsys, "broken.yaml"))
	assert.Error(t, Load(fsys, "missing.yaml"))
}
