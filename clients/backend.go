package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/renproject/btctransfer/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/publicsuffix"
)

const (
	csrfCookieName = "csrftoken"
	csrfHeaderName = "X-CSRFToken"

	statusSuccess = "success"

	instructionFields = 5
)

// Paths are the backend routes, relative to the base URL.
type Paths struct {
	Send           string `yaml:"send"`
	Broadcast      string `yaml:"broadcast"`
	Confirmations  string `yaml:"confirmations"`
	Addresses      string `yaml:"addresses"`
	CreateAddress  string `yaml:"createAddress"`
	AddressDetails string `yaml:"addressDetails"`
}

// DefaultPaths returns the routes served by the reference backend.
func DefaultPaths() Paths {
	return Paths{
		Send:           "/send_bitcoin/",
		Broadcast:      "/broadcast_bitcoin/",
		Confirmations:  "/get_confirmations/",
		Addresses:      "/path/to/get_addresses_endpoint/",
		CreateAddress:  "/path/to/create_address_endpoint/",
		AddressDetails: "/api/path-to-details/",
	}
}

type Options struct {
	BaseURL string
	Timeout time.Duration
	Paths   Paths
}

type backendClient struct {
	base   *url.URL
	paths  Paths
	http   *http.Client
	logger logrus.FieldLogger
}

// NewBackendClientCore returns a ClientCore talking JSON over HTTP to the
// backend at opts.BaseURL. Unset paths fall back to DefaultPaths.
func NewBackendClientCore(opts Options, logger logrus.FieldLogger) (ClientCore, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend url %q: %w", opts.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend url %q: scheme must be http or https", opts.BaseURL)
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &backendClient{
		base:  base,
		paths: withDefaults(opts.Paths),
		http: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		logger: defaultLogger(logger),
	}, nil
}

func withDefaults(paths Paths) Paths {
	def := DefaultPaths()
	if paths.Send == "" {
		paths.Send = def.Send
	}
	if paths.Broadcast == "" {
		paths.Broadcast = def.Broadcast
	}
	if paths.Confirmations == "" {
		paths.Confirmations = def.Confirmations
	}
	if paths.Addresses == "" {
		paths.Addresses = def.Addresses
	}
	if paths.CreateAddress == "" {
		paths.CreateAddress = def.CreateAddress
	}
	if paths.AddressDetails == "" {
		paths.AddressDetails = def.AddressDetails
	}
	return paths
}

type statusResponse struct {
	Status        string          `json:"status"`
	Message       json.RawMessage `json:"message,omitempty"`
	TxDetails     json.RawMessage `json:"tx_details,omitempty"`
	Confirmations int64           `json:"confirmations"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (client *backendClient) Instructions(ctx context.Context, req SendRequest) (Instructions, error) {
	var resp statusResponse
	if err := client.postJSON(ctx, client.paths.Send, req, &resp); err != nil {
		return Instructions{}, fmt.Errorf("%w: %w", errors.ErrFundingFailed, err)
	}
	if resp.Status != statusSuccess {
		return Instructions{}, errors.NewErrFundingFailed(messageText(resp.Message))
	}

	var fields []json.RawMessage
	if err := json.Unmarshal(resp.Message, &fields); err != nil || len(fields) != instructionFields {
		return Instructions{}, errors.NewErrFundingFailed(fmt.Sprintf("malformed signing inputs: %s", resp.Message))
	}
	var ins Instructions
	targets := []interface{}{&ins.TxHash, &ins.Vout, &ins.PrevTxHex, &ins.To, &ins.Amount}
	for i, target := range targets {
		if err := json.Unmarshal(fields[i], target); err != nil {
			return Instructions{}, errors.NewErrFundingFailed(fmt.Sprintf("malformed signing input %d: %v", i, err))
		}
	}
	return ins, nil
}

func (client *backendClient) Broadcast(ctx context.Context, signedTxHex string) (string, error) {
	req := struct {
		SignedTx string `json:"signed_tx"`
	}{signedTxHex}

	var resp statusResponse
	if err := client.postJSON(ctx, client.paths.Broadcast, req, &resp); err != nil {
		return "", fmt.Errorf("%w: %w", errors.ErrBroadcastFailed, err)
	}
	if resp.Status != statusSuccess {
		return "", errors.NewErrBroadcastFailed(messageText(resp.Message))
	}
	return messageText(resp.TxDetails), nil
}

func (client *backendClient) Confirmations(ctx context.Context, txHash string) (int64, error) {
	req := struct {
		Hash string `json:"hash"`
	}{txHash}

	var resp statusResponse
	if err := client.postJSON(ctx, client.paths.Confirmations, req, &resp); err != nil {
		return 0, fmt.Errorf("%w: %w", errors.ErrConfirmationFailed, err)
	}
	if resp.Status != statusSuccess {
		return 0, errors.NewErrConfirmationFailed(messageText(resp.Message))
	}
	return resp.Confirmations, nil
}

func (client *backendClient) Addresses(ctx context.Context) ([]AddressRecord, error) {
	records := []AddressRecord{}
	if err := client.getJSON(ctx, client.paths.Addresses, &records); err != nil {
		return records, err
	}
	return records, nil
}

func (client *backendClient) CreateAddress(ctx context.Context, address string) error {
	req := AddressRecord{Address: address}
	var resp successResponse
	if err := client.postJSON(ctx, client.paths.CreateAddress, req, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%w: %s", errors.ErrAddressRejected, resp.Message)
	}
	return nil
}

func (client *backendClient) AddressDetails(ctx context.Context, address string) (AddressDetails, error) {
	var resp struct {
		AddressDetails
		Success *bool  `json:"success"`
		Message string `json:"message"`
	}
	// endpoint escapes the path when the URL is rendered.
	path := strings.TrimSuffix(client.paths.AddressDetails, "/") + "/" + address + "/"
	if err := client.getJSON(ctx, path, &resp); err != nil {
		return AddressDetails{}, err
	}
	if resp.Success != nil && !*resp.Success {
		return AddressDetails{}, fmt.Errorf("%w: %s", errors.ErrAddressRejected, resp.Message)
	}
	return resp.AddressDetails, nil
}

func (client *backendClient) postJSON(ctx context.Context, path string, body, out interface{}) error {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(body); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, client.endpoint(path), buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Referer", client.base.String())
	if token := client.csrfToken(ctx); token != "" {
		req.Header.Set(csrfHeaderName, token)
	} else {
		client.logger.WithField("path", path).Warn("no csrf token available")
	}
	return client.do(req, out)
}

func (client *backendClient) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, client.endpoint(path), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	return client.do(req, out)
}

func (client *backendClient) do(req *http.Request, out interface{}) error {
	client.logger.WithFields(logrus.Fields{
		"method": req.Method,
		"url":    req.URL.String(),
	}).Debug("calling backend")

	resp, err := client.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return errors.NewErrRequestFailed(resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("cannot decode response from %s: %w", req.URL.Path, err)
	}
	return nil
}

// csrfToken returns the csrftoken cookie held for the backend, fetching the
// base URL once to obtain it when the jar has none.
func (client *backendClient) csrfToken(ctx context.Context) string {
	if token := client.cookie(csrfCookieName); token != "" {
		return token
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, client.base.String(), nil)
	if err != nil {
		return ""
	}
	resp, err := client.http.Do(req)
	if err != nil {
		client.logger.WithError(err).Debug("cannot fetch csrf cookie")
		return ""
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return client.cookie(csrfCookieName)
}

func (client *backendClient) cookie(name string) string {
	for _, cookie := range client.http.Jar.Cookies(client.base) {
		if cookie.Name == name {
			return cookie.Value
		}
	}
	return ""
}

func (client *backendClient) endpoint(path string) string {
	ref := *client.base
	ref.Path = strings.TrimSuffix(client.base.Path, "/") + "/" + strings.TrimPrefix(path, "/")
	ref.RawPath = ""
	return ref.String()
}

// messageText renders a message field that is either a JSON string or any other
// JSON value.
func messageText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	return string(raw)
}
