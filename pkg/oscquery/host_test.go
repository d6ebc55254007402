package oscquery

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostServeHTTPBuildsNestedTree(t *testing.T) {
	h := NewHost("test-router")
	h.SetMethod(Method{Address: "/avatar/parameters/Chest", TypeTag: "f", Access: AccessReadWrite})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var tree rawNode
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tree))

	avatar, ok := tree.Contents["avatar"]
	require.True(t, ok)
	params, ok := avatar.Contents["parameters"]
	require.True(t, ok)
	chest, ok := params.Contents["Chest"]
	require.True(t, ok)
	assert.Equal(t, "/avatar/parameters/Chest", chest.FullPath)
	require.NotNil(t, chest.Access)
	assert.Equal(t, 3, *chest.Access)
}

func TestHostInfoQueryReturnsName(t *testing.T) {
	h := NewHost("test-router")

	req := httptest.NewRequest(http.MethodGet, "/?HOST_INFO", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var info struct {
		Name string `json:"NAME"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "test-router", info.Name)
}

func TestHostRemoveMethodDropsFromTree(t *testing.T) {
	h := NewHost("test-router")
	h.SetMethod(Method{Address: "/avatar/parameters/Chest", TypeTag: "f", Access: AccessReadWrite})
	h.RemoveMethod("/avatar/parameters/Chest")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var tree rawNode
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tree))
	assert.Empty(t, tree.Contents)
}
