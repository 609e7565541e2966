package dune

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrMissingAPIKey : aucune clé, le client ne peut pas être construit.
	ErrMissingAPIKey = errors.New("dune: DUNE_API_KEY not set")
	// ErrQueryTimeout : l'exécution n'a pas abouti dans le délai maximal.
	ErrQueryTimeout = errors.New("dune: query did not complete within max wait")
)

// Etats d'exécution observés sur l'API Dune. Tout autre état est
// considéré comme "encore en cours".
const (
	StateCompleted = "QUERY_STATE_COMPLETED"
	StateFailed    = "QUERY_STATE_FAILED"
	StateCancelled = "QUERY_STATE_CANCELLED"
)

type Client struct {
	APIKey       string
	BaseURL      string
	HTTPClient   *http.Client
	PollInterval time.Duration
	MaxWait      time.Duration
}

// NewClient construit un client Dune. Refuse une clé vide : c'est la seule
// erreur fatale avant tout fetch.
func NewClient(apiKey, baseURL string, pollInterval, maxWait time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if baseURL == "" {
		baseURL = "https://api.dune.com/api/v1"
	}
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	if maxWait <= 0 {
		maxWait = 120 * time.Second
	}
	return &Client{
		APIKey:       apiKey,
		BaseURL:      baseURL,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
		PollInterval: pollInterval,
		MaxWait:      maxWait,
	}, nil
}

type resultEnvelope struct {
	Result struct {
		Rows []map[string]interface{} `json:"rows"`
	} `json:"result"`
}

type executeResponse struct {
	ExecutionID string `json:"execution_id"`
}

type statusResponse struct {
	State string `json:"state"`
	Error string `json:"error"`
}

func (c *Client) do(method, url string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		j, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(j)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("x-dune-api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		bb, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("dune HTTP %d: %s", resp.StatusCode, string(bb))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// GetLatestResult relit le dernier résultat en cache d'une requête connue.
func (c *Client) GetLatestResult(queryID int) ([]map[string]interface{}, error) {
	var env resultEnvelope
	url := fmt.Sprintf("%s/query/%d/results", c.BaseURL, queryID)
	if err := c.do("GET", url, nil, &env); err != nil {
		return nil, err
	}
	return env.Result.Rows, nil
}

// ExecuteSQL soumet un SQL ad-hoc puis attend la fin de l'exécution
// (poll toutes les PollInterval, au plus MaxWait).
func (c *Client) ExecuteSQL(sql string) ([]map[string]interface{}, error) {
	var exec executeResponse
	err := c.do("POST", c.BaseURL+"/query/execute/sql", map[string]string{"query_sql": sql}, &exec)
	if err != nil {
		return nil, err
	}
	if exec.ExecutionID == "" {
		return nil, errors.New("dune: no execution_id returned")
	}

	statusURL := fmt.Sprintf("%s/execution/%s/status", c.BaseURL, exec.ExecutionID)
	resultURL := fmt.Sprintf("%s/execution/%s/results", c.BaseURL, exec.ExecutionID)

	var waited time.Duration
	for waited < c.MaxWait {
		time.Sleep(c.PollInterval)
		waited += c.PollInterval

		var st statusResponse
		if err := c.do("GET", statusURL, nil, &st); err != nil {
			return nil, err
		}
		switch st.State {
		case StateCompleted:
			var env resultEnvelope
			if err := c.do("GET", resultURL, nil, &env); err != nil {
				return nil, err
			}
			return env.Result.Rows, nil
		case StateFailed, StateCancelled:
			msg := st.Error
			if msg == "" {
				msg = "unknown error"
			}
			return nil, fmt.Errorf("dune: query %s: %s", st.State, msg)
		}
		// autre état : encore en cours
	}
	return nil, fmt.Errorf("%w (%s)", ErrQueryTimeout, c.MaxWait)
}
