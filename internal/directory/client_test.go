package directory

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"ledgerchat/internal/config"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func testClient(t *testing.T, fn roundTripFunc) *Client {
	t.Helper()
	cfg, _ := config.Load()
	cfg.DirectoryAPIToken = "test"
	cfg.DirectoryAPIBaseURL = "https://example.test/api/v1"
	cfg.DirectoryRateLimitRPS = 1000

	client := NewClient(cfg)
	client.httpClient = &http.Client{Transport: fn}
	return client
}

func jsonResponse(status int, payload any) *http.Response {
	blob, _ := json.Marshal(payload)
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(string(blob))),
		Header:     make(http.Header),
	}
}

func TestContactsScrollWithRetry(t *testing.T) {
	attempt := 0
	client := testClient(t, func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/api/v1/vendors/scroll" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test" {
			t.Fatalf("authorization=%q", got)
		}
		attempt++
		switch attempt {
		case 1:
			return jsonResponse(http.StatusServiceUnavailable, map[string]any{"error": "busy"}), nil
		case 2:
			return jsonResponse(http.StatusOK, map[string]any{"success": true, "data": map[string]any{
				"vendors":  []map[string]any{{"name": "Acme", "email": "ap@acme.test"}, {"name": "", "email": "x@y"}},
				"scrollId": "abc",
			}}), nil
		case 3:
			if r.URL.Query().Get("scrollId") != "abc" {
				t.Fatalf("scrollId=%q", r.URL.Query().Get("scrollId"))
			}
			return jsonResponse(http.StatusOK, map[string]any{"success": true, "data": map[string]any{
				"vendors":  []map[string]any{{"name": "Globex", "email": "billing@globex.test", "updatedAt": "2024-02-01T00:00:00Z"}},
				"scrollId": nil,
			}}), nil
		}
		t.Fatalf("unexpected attempt %d", attempt)
		return nil, nil
	})

	contacts, err := client.Contacts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(contacts) != 2 {
		t.Fatalf("len=%d", len(contacts))
	}
	if contacts[1].Vendor != "Globex" || contacts[1].UpdatedAt == nil {
		t.Fatalf("unexpected contact %+v", contacts[1])
	}
}

func TestContactsRequiresToken(t *testing.T) {
	client := testClient(t, func(r *http.Request) (*http.Response, error) {
		t.Fatal("no request expected")
		return nil, nil
	})
	client.cfg.DirectoryAPIToken = ""

	if _, err := client.Contacts(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestContactsUnsuccessfulEnvelope(t *testing.T) {
	client := testClient(t, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, map[string]any{"success": false, "errors": []string{"denied"}}), nil
	})

	_, err := client.Contacts(context.Background())
	if err == nil || !strings.Contains(err.Error(), "denied") {
		t.Fatalf("err=%v", err)
	}
}

func TestContactsSinceSendsFilter(t *testing.T) {
	client := testClient(t, func(r *http.Request) (*http.Response, error) {
		if r.URL.Query().Get("updatedSince") != "2024-01-01T00:00:00Z" {
			t.Fatalf("query=%s", r.URL.RawQuery)
		}
		return jsonResponse(http.StatusOK, map[string]any{"success": true, "data": map[string]any{"vendors": []any{}}}), nil
	})

	contacts, err := client.ContactsSince(context.Background(), "2024-01-01T00:00:00Z")
	if err != nil {
		t.Fatal(err)
	}
	if len(contacts) != 0 {
		t.Fatalf("len=%d", len(contacts))
	}
}

func TestWaitTurnHonoursContext(t *testing.T) {
	limiter := NewRateLimiter(1)
	if err := limiter.WaitTurn(context.Background()); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := limiter.WaitTurn(ctx); err == nil {
		t.Fatal("expected context error")
	}
}
