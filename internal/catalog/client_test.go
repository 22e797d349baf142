package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListForBooking(t *testing.T) {
	checkIn := time.Date(2026, 3, 14, 22, 0, 0, 0, time.UTC)

	t.Run("decodes rooms and passes query params", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/landing-page/list-for-booking/", r.URL.Path)
			q := r.URL.Query()
			assert.Equal(t, "1773525600", q.Get("checkInDatetime"))
			assert.Equal(t, "6", q.Get("duration"))
			assert.Equal(t, "3", q.Get("lotId"))

			w.Header().Set("Content-Type", "application/json")
			// maxPax arrives as a string for one room and a number for
			// the other; both must decode.
			_, _ = w.Write([]byte(`{"data":[
				{"roomTypeName":"Female Single","roomZoneNames":"Female-Only Zone","maxPax":"1","price":155,"availableCount":4},
				{"roomTypeName":"Queen","roomZoneNames":"","maxPax":2,"price":185,"availableCount":2}
			]}`))
		}))
		defer srv.Close()

		c := New(srv.URL, time.Second)
		rooms, err := c.ListForBooking(context.Background(), 3, checkIn, 6)
		require.NoError(t, err)
		require.Len(t, rooms, 2)

		assert.Equal(t, "Female Single", rooms[0].RoomTypeName)
		assert.Equal(t, FlexInt(1), rooms[0].MaxPax)
		assert.Equal(t, 4, rooms[0].AvailableCount)
		assert.Equal(t, FlexInt(2), rooms[1].MaxPax)
		assert.InDelta(t, 185.0, rooms[1].Price, 1e-9)
	})

	t.Run("non-2xx maps to ErrBadStatus", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"message":"lot offline"}`))
		}))
		defer srv.Close()

		c := New(srv.URL, time.Second)
		_, err := c.ListForBooking(context.Background(), 1, checkIn, 3)
		require.ErrorIs(t, err, ErrBadStatus)
		assert.Contains(t, err.Error(), "lot offline")
	})

	t.Run("malformed payload maps to ErrBadPayload", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data": "not-an-array"`))
		}))
		defer srv.Close()

		c := New(srv.URL, time.Second)
		_, err := c.ListForBooking(context.Background(), 1, checkIn, 3)
		require.ErrorIs(t, err, ErrBadPayload)
	})

	t.Run("unreachable server maps to ErrRequestFailed", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		c := New(srv.URL, 100*time.Millisecond)
		_, err := c.ListForBooking(context.Background(), 1, checkIn, 3)
		require.ErrorIs(t, err, ErrRequestFailed)
	})
}

func TestFlexInt(t *testing.T) {
	var r Room

	require.NoError(t, r.MaxPax.UnmarshalJSON([]byte(`"2"`)))
	assert.Equal(t, FlexInt(2), r.MaxPax)

	require.NoError(t, r.MaxPax.UnmarshalJSON([]byte(`2.0`)))
	assert.Equal(t, FlexInt(2), r.MaxPax)

	require.NoError(t, r.MaxPax.UnmarshalJSON([]byte(`null`)))
	assert.Equal(t, FlexInt(0), r.MaxPax)

	assert.Error(t, r.MaxPax.UnmarshalJSON([]byte(`"two"`)))
}
