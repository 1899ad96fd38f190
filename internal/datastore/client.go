package datastore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"slices"
	"time"
)

// DefaultInsertRows is the number of rows sent per insert request. Datasette
// rejects requests above its max_insert_rows setting, 100 by default.
const DefaultInsertRows = 50

// DatasetteClient writes records through the Datasette JSON write API.
type DatasetteClient struct {
	baseURL  string
	apiToken string
	client   *http.Client
	// InsertRows overrides DefaultInsertRows when positive.
	InsertRows int
}

// NewDatasetteClient returns a client for the instance at baseURL.
func NewDatasetteClient(baseURL, apiToken string) *DatasetteClient {
	return &DatasetteClient{
		baseURL:  baseURL,
		apiToken: apiToken,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

// Connect validates the base URL. No request is made.
func (c *DatasetteClient) Connect() error {
	_, err := c.insertURL("", "")
	return err
}

// CreateTable is a no-op; the insert API creates missing tables.
func (c *DatasetteClient) CreateTable(string) error {
	return nil
}

// BatchInsert posts records to {base}/{database}/{table}/-/insert in chunks,
// replacing rows with matching primary keys.
func (c *DatasetteClient) BatchInsert(database string, table string, records []map[string]any) error {
	if len(records) == 0 {
		return nil
	}

	endpoint, err := c.insertURL(database, table)
	if err != nil {
		return err
	}

	size := c.InsertRows
	if size <= 0 {
		size = DefaultInsertRows
	}
	for chunk := range slices.Chunk(records, size) {
		if err := c.post(endpoint, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (c *DatasetteClient) insertURL(database, table string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid base URL %q: scheme and host required", c.baseURL)
	}
	u.Path = path.Join(u.Path, database, table, "-/insert")
	return u.String(), nil
}

func (c *DatasetteClient) post(endpoint string, rows []map[string]any) error {
	body, err := json.Marshal(map[string]any{
		"rows":    rows,
		"replace": true,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal JSON payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	var apiErr struct {
		Errors []string `json:"errors"`
		Error  string   `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
		return fmt.Errorf("insert into %s failed with status %d", endpoint, resp.StatusCode)
	}
	msg := apiErr.Error
	if len(apiErr.Errors) > 0 {
		msg = fmt.Sprint(apiErr.Errors)
	}
	return fmt.Errorf("datasette API error (status %d): %s", resp.StatusCode, msg)
}

// Close is a no-op for the HTTP client.
func (c *DatasetteClient) Close() error {
	return nil
}
