package backendsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-web/core"
	"github.com/trezcool/masomo-web/core/gateway"
)

const maxErrorBody = 64 << 10

// Client is the HTTP/JSON transport to the school REST backend.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ gateway.Transport = (*Client)(nil)

func NewClient(conf *core.Config) *Client {
	return &Client{
		baseURL: conf.Backend.BaseURL,
		http:    &http.Client{Timeout: conf.Backend.Timeout},
	}
}

// Do sends req with token as bearer credential and decodes the JSON response into out.
// Network failures and non-2xx responses are returned as *gateway.Error.
func (c *Client) Do(ctx context.Context, token string, req gateway.Request, out interface{}) error {
	httpReq, err := c.newRequest(ctx, token, req)
	if err != nil {
		return &gateway.Error{Message: "invalid request", Err: err}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return &gateway.Error{Message: "backend unreachable", Err: err}
	}
	//goland:noinspection GoUnhandledErrorResult
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return &gateway.Error{Status: resp.StatusCode, Message: "malformed response", Err: errors.Wrap(err, "decoding response")}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, token string, req gateway.Request) (*http.Request, error) {
	url := c.baseURL + req.Path
	if len(req.Query) > 0 {
		url += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, errors.Wrap(err, "encoding request body")
		}
		body = bytes.NewReader(data)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	return httpReq, nil
}

// errorBody covers the error shapes of the backend: `{message}`, `{error}` and `{errors}`,
// where errors is either a field map or a list of `{field|path, message|msg}`.
type errorBody struct {
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Errors  json.RawMessage `json:"errors"`
}

type fieldIssue struct {
	Field   string `json:"field"`
	Path    string `json:"path"`
	Param   string `json:"param"`
	Message string `json:"message"`
	Msg     string `json:"msg"`
}

func decodeError(resp *http.Response) error {
	gErr := &gateway.Error{Status: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return gErr
	}

	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
			gErr.Message = strings.TrimSpace(string(data))
		}
		return gErr
	}
	gErr.Message = body.Message
	if gErr.Message == "" {
		gErr.Message = body.Error
	}
	gErr.Fields = decodeFields(body.Errors)
	return gErr
}

func decodeFields(raw json.RawMessage) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	fields := make(map[string]string)
	var byName map[string]interface{}
	if err := json.Unmarshal(raw, &byName); err == nil {
		for name, v := range byName {
			switch msg := v.(type) {
			case string:
				fields[name] = msg
			case []interface{}:
				if len(msg) > 0 {
					fields[name] = fmt.Sprint(msg[0])
				}
			}
		}
	} else {
		var issues []fieldIssue
		if err := json.Unmarshal(raw, &issues); err != nil {
			return nil
		}
		for _, issue := range issues {
			name := firstNonEmpty(issue.Field, issue.Path, issue.Param)
			msg := firstNonEmpty(issue.Message, issue.Msg)
			if _, seen := fields[name]; name != "" && !seen {
				fields[name] = msg
			}
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
