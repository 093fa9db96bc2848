// Package gsheets talks to the Google Sheets values API, just the two
// calls the publisher needs: clearing a range and bulk-writing rows.
package gsheets

import (
	"context"
	"fmt"
	"time"

	"captracker/lib/restyutil"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("lib/gsheets")

const defaultBaseUrl = "https://sheets.googleapis.com/v4/spreadsheets"

type ClientOptions struct {
	// overridable for tests, defaults to the public Sheets endpoint
	BaseUrl     string
	AccessToken string
	Timeout     time.Duration
	// optional, dumps every http exchange when set
	InstrumentOutput restyutil.InstrumentOutput
}

type Client struct {
	http    *resty.Client
	baseUrl string
}

func NewClient(opts ClientOptions) Client {
	baseUrl := opts.BaseUrl
	if baseUrl == "" {
		baseUrl = defaultBaseUrl
	}

	httpClient := resty.New()
	httpClient.SetAuthToken(opts.AccessToken)
	if opts.Timeout > 0 {
		httpClient.SetTimeout(opts.Timeout)
	}
	restyutil.InstrumentClient(httpClient, tracer, opts.InstrumentOutput)

	return Client{
		http:    httpClient,
		baseUrl: baseUrl,
	}
}

// Clear empties a range, e.g. "players_cap_hits!A1:F".
func (c Client) Clear(ctx context.Context, spreadsheetId, valueRange string) error {
	ctx, span := tracer.Start(ctx, "Clear")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		Post(fmt.Sprintf("%s/%s/values/%s:clear", c.baseUrl, spreadsheetId, valueRange))
	if err != nil {
		return &PublishError{Op: "clear", Err: err}
	}
	if res.StatusCode() != 200 {
		return &PublishError{Op: "clear", Status: res.StatusCode()}
	}
	return nil
}

type updateBody struct {
	Range          string     `json:"range"`
	MajorDimension string     `json:"majorDimension"`
	Values         [][]string `json:"values"`
}

// Update overwrites a range with the given rows using RAW input, so cell
// contents land exactly as sent.
func (c Client) Update(ctx context.Context, spreadsheetId, valueRange string, values [][]string) error {
	ctx, span := tracer.Start(ctx, "Update")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("valueInputOption", "RAW").
		SetBody(updateBody{
			Range:          valueRange,
			MajorDimension: "ROWS",
			Values:         values,
		}).
		Put(fmt.Sprintf("%s/%s/values/%s", c.baseUrl, spreadsheetId, valueRange))
	if err != nil {
		return &PublishError{Op: "update", Err: err}
	}
	if res.StatusCode() != 200 {
		return &PublishError{Op: "update", Status: res.StatusCode()}
	}
	return nil
}
