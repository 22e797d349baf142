// Package catalog talks to the remote room-availability API.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrRequestFailed covers transport-level failures (DNS, refused
	// connections, timeouts).
	ErrRequestFailed = errors.New("availability request failed")
	// ErrBadStatus is returned for any non-2xx response.
	ErrBadStatus = errors.New("availability request rejected")
	// ErrBadPayload is returned when the response body cannot be decoded.
	ErrBadPayload = errors.New("availability payload malformed")
)

// Room is one entry of the availability response. maxPax arrives as either
// a string or a number depending on the upstream version, so it gets a
// tolerant decoder.
type Room struct {
	RoomTypeName   string  `json:"roomTypeName"`
	RoomZoneNames  string  `json:"roomZoneNames"`
	MaxPax         FlexInt `json:"maxPax"`
	Price          float64 `json:"price"`
	AvailableCount int     `json:"availableCount"`
}

type listResponse struct {
	Data []Room `json:"data"`
}

type FlexInt int

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		// tolerate "2.0" style numbers
		fl, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return fmt.Errorf("maxPax %q: %w", s, err)
		}
		v = int(fl)
	}

	*f = FlexInt(v)

	return nil
}

type Client struct {
	hc      *http.Client
	baseURL string
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		hc:      &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// ListForBooking fetches the room types available at a lot for the given
// check-in time and stay duration. There is no retry: the caller surfaces
// the failure and the user re-triggers the fetch.
func (c *Client) ListForBooking(
	ctx context.Context,
	lotID int64,
	checkIn time.Time,
	durationHours int,
) ([]Room, error) {
	params := url.Values{}
	params.Set("checkInDatetime", strconv.FormatInt(checkIn.Unix(), 10))
	params.Set("duration", strconv.Itoa(durationHours))
	params.Set("lotId", strconv.FormatInt(lotID, 10))

	endpoint := c.baseURL + "/landing-page/list-for-booking/?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// upstream sometimes carries a message field worth surfacing
		var r struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(body, &r)
		if r.Message != "" {
			return nil, fmt.Errorf("%w: %s (status=%d)", ErrBadStatus, r.Message, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: status=%d", ErrBadStatus, resp.StatusCode)
	}

	var out listResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	return out.Data, nil
}
