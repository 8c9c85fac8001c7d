package supabase_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"maid-cafe-backend/internal/supabase"
)

func TestBuildKey(t *testing.T) {
	client, err := supabase.NewStorageClient("https://project.supabase.co", "service-key", "cafe-images", "")
	require.NoError(t, err)

	key := client.BuildKey("menus", "omurice.jpg")
	assert.True(t, strings.HasPrefix(key, "menus/"))
	assert.True(t, strings.HasSuffix(key, "-omurice.jpg"))

	// Keys must be unique per upload even for the same filename.
	assert.NotEqual(t, key, client.BuildKey("menus", "omurice.jpg"))
}

func TestPublicURL_PassthroughWithoutBase(t *testing.T) {
	client, err := supabase.NewStorageClient("https://project.supabase.co", "service-key", "cafe-images", "")
	require.NoError(t, err)

	assert.Equal(t, "menus/omurice.jpg", client.PublicURL("menus/omurice.jpg"))
}

func TestPublicURL_WithBase(t *testing.T) {
	client, err := supabase.NewStorageClient("https://project.supabase.co", "service-key", "cafe-images", "https://cdn.example/")
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example/menus/omurice.jpg", client.PublicURL("menus/omurice.jpg"))
}
