/**
 * @description
 * Client for the App Store Connect Sales & Trends API. It signs each
 * request with a fresh ES256 token, fetches daily summary sales reports,
 * and decodes the base64 (optionally gzip-compressed) tab-separated
 * payload into a units total for one calendar date.
 *
 * Key features:
 * - Per-request token signing; tokens never outlive a single call.
 * - A date with no published report is reported as ErrReportUnavailable
 *   so callers can treat it as "no data yet" rather than a failure.
 * - Optional vendor access verification for diagnosing key permissions.
 *
 * @dependencies
 * - github.com/golang-jwt/jwt/v5: ES256 key parsing and token signing.
 */
package appstoreclient

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/ecdsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultBaseURL is the production App Store Connect API host.
	DefaultBaseURL = "https://api.appstoreconnect.apple.com"

	salesReportsPath = "/v1/salesReports"
	vendorsPath      = "/v1/vendors"

	defaultTimeout = 30 * time.Second
)

var (
	// ErrReportUnavailable means no usable report exists for the requested
	// date. Reports publish with a lag, so recent dates commonly return
	// this; callers treat it as absent data, not an outage.
	ErrReportUnavailable = errors.New("sales report unavailable")

	// ErrVendorForbidden means the API rejected the vendor listing with a
	// 403, which points at key permissions rather than a transient fault.
	ErrVendorForbidden = errors.New("vendor access forbidden")
)

// Config holds the settings needed to talk to the App Store Connect API.
type Config struct {
	BaseURL      string
	IssuerID     string
	KeyID        string
	PrivateKey   []byte
	VendorNumber string
	Timeout      time.Duration
}

// Client is an authenticated App Store Connect API client scoped to one
// vendor number.
type Client struct {
	baseURL      string
	issuerID     string
	keyID        string
	signingKey   *ecdsa.PrivateKey
	vendorNumber string
	httpClient   *http.Client
	logger       *slog.Logger
}

// NewClient parses the configured EC private key and returns a ready
// client. An unparseable key is a configuration fault and fails here,
// before any network activity.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	signingKey, err := jwt.ParseECPrivateKeyFromPEM(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse App Store private key: %w", err)
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:      baseURL,
		issuerID:     cfg.IssuerID,
		keyID:        cfg.KeyID,
		signingKey:   signingKey,
		vendorNumber: cfg.VendorNumber,
		httpClient:   &http.Client{Timeout: timeout},
		logger:       logger,
	}, nil
}

// salesReportResponse is the JSON envelope returned by the sales reports
// endpoint. The report itself rides in data[0].attributes.reportContent.
type salesReportResponse struct {
	Data []struct {
		Attributes struct {
			ReportContent string `json:"reportContent"`
		} `json:"attributes"`
	} `json:"data"`
}

// vendorListResponse is the JSON envelope returned by the vendors
// endpoint.
type vendorListResponse struct {
	Data []struct {
		Attributes struct {
			VendorNumber string `json:"vendorNumber"`
		} `json:"attributes"`
	} `json:"data"`
}

// FetchUnitsForDate fetches the daily summary sales report for one UTC
// calendar date and returns the total units across all rows. A date whose
// report is not published yet, or whose payload carries no usable units
// column, returns ErrReportUnavailable. Transport and decode faults come
// back as ordinary errors; callers are expected to degrade either kind to
// "no data for that date".
func (c *Client) FetchUnitsForDate(ctx context.Context, date time.Time) (int, error) {
	reportDate := date.UTC().Format("2006-01-02")

	params := url.Values{}
	params.Set("filter[frequency]", "DAILY")
	params.Set("filter[reportDate]", reportDate)
	params.Set("filter[reportSubType]", "SUMMARY")
	params.Set("filter[reportType]", "SALES")
	params.Set("filter[vendorNumber]", c.vendorNumber)
	params.Set("filter[version]", "1_0")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+salesReportsPath+"?"+params.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create sales report request: %w", err)
	}
	if err := c.authorize(req); err != nil {
		return 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("sales report request for %s failed: %w", reportDate, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.logger.Debug("no report published", "date", reportDate)
		return 0, fmt.Errorf("no report for %s: %w", reportDate, ErrReportUnavailable)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("sales report request for %s returned status %d", reportDate, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read sales report response for %s: %w", reportDate, err)
	}

	var envelope salesReportResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return 0, fmt.Errorf("failed to decode sales report envelope for %s: %w", reportDate, err)
	}
	if len(envelope.Data) == 0 || envelope.Data[0].Attributes.ReportContent == "" {
		c.logger.Debug("report envelope carried no content", "date", reportDate)
		return 0, fmt.Errorf("empty report envelope for %s: %w", reportDate, ErrReportUnavailable)
	}

	raw, err := base64.StdEncoding.DecodeString(envelope.Data[0].Attributes.ReportContent)
	if err != nil {
		return 0, fmt.Errorf("failed to decode report content for %s: %w", reportDate, err)
	}

	total, err := ParseUnitsTotal(c.decodeReportText(raw))
	if err != nil {
		c.logger.Debug("report not parseable", "date", reportDate, "error", err)
		return 0, fmt.Errorf("unusable report for %s (%v): %w", reportDate, err, ErrReportUnavailable)
	}
	return total, nil
}

// VerifyVendorAccess confirms the configured vendor number is visible to
// the signing credentials. A 403 from the API maps to ErrVendorForbidden
// so callers can tell a permissions problem from a transient failure.
func (c *Client) VerifyVendorAccess(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+vendorsPath, nil)
	if err != nil {
		return fmt.Errorf("failed to create vendor list request: %w", err)
	}
	if err := c.authorize(req); err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("vendor list request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("vendor list request rejected: %w", ErrVendorForbidden)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("vendor list request returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read vendor list response: %w", err)
	}

	var envelope vendorListResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to decode vendor list response: %w", err)
	}
	for _, item := range envelope.Data {
		if item.Attributes.VendorNumber == c.vendorNumber {
			return nil
		}
	}
	return fmt.Errorf("vendor %s not present in accessible vendor list", c.vendorNumber)
}

// authorize signs a fresh token and attaches it to the request.
func (c *Client) authorize(req *http.Request) error {
	token, err := c.signToken()
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	return nil
}

// decodeReportText turns the decoded payload bytes into report text. A
// payload starting with the gzip magic bytes is decompressed; if
// decompression fails the raw bytes are used as-is. Invalid UTF-8
// sequences are replaced rather than rejected.
func (c *Client) decodeReportText(raw []byte) string {
	if len(raw) >= 2 && raw[0] == 0x1f && raw[1] == 0x8b {
		inflated, err := gunzip(raw)
		if err != nil {
			c.logger.Warn("report payload looked gzipped but failed to decompress, using raw bytes", "error", err)
		} else {
			raw = inflated
		}
	}
	return strings.ToValidUTF8(string(raw), "�")
}

func gunzip(raw []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
