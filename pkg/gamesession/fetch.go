package gamesession

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// catalogEndpoint is the remote mapping-catalog host queried after a
// successful handshake.
const catalogEndpoint = "https://sdk-apis.bhaptics.com/api/v1/haptic-devices/latest"

// catalogResponse is the outer envelope the endpoint wraps its payload in.
type catalogResponse struct {
	Status  bool        `json:"status"`
	Message GameMapping `json:"message"`
	Code    uint32      `json:"code"`
}

// GameMapping is a full bHaptics project: every haptic mapping available
// to the authenticated application.
type GameMapping struct {
	ID                string          `json:"id"`
	CreateTime        uint64          `json:"createTime"`
	Name              string          `json:"name"`
	Creator           string          `json:"creator"`
	WorkspaceID       string          `json:"workspaceId"`
	Version           int32           `json:"version"`
	DisableValidation bool            `json:"disableValidation"`
	HapticMappings    []HapticMapping `json:"hapticMappings"`
	CategoryOptions   []string        `json:"categoryOptions"`
}

// FetchCatalog retrieves the project's haptic mapping catalog keyed by the
// application's api key, app id, and requested version.
func FetchCatalog(ctx context.Context, client *http.Client, apiKey, appID string, version int32) (GameMapping, error) {
	if client == nil {
		client = http.DefaultClient
	}

	q := url.Values{}
	q.Set("latest-version", fmt.Sprintf("%d", version))
	q.Set("api-key", apiKey)
	q.Set("app-id", appID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, catalogEndpoint+"?"+q.Encode(), nil)
	if err != nil {
		return GameMapping{}, fmt.Errorf("gamesession: build catalog request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return GameMapping{}, fmt.Errorf("gamesession: fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return GameMapping{}, fmt.Errorf("gamesession: catalog fetch returned status %d", resp.StatusCode)
	}

	var body catalogResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return GameMapping{}, fmt.Errorf("gamesession: decode catalog response: %w", err)
	}
	if !body.Status {
		return GameMapping{}, fmt.Errorf("gamesession: catalog fetch reported failure status")
	}

	return body.Message, nil
}

// defaultFetchTimeout bounds how long a single catalog fetch may take.
const defaultFetchTimeout = 10 * time.Second
