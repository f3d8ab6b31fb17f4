package explorer_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ardanlabs/gambit/foundation/blockchain/address"
	"github.com/ardanlabs/gambit/foundation/blockchain/chain"
	"github.com/ardanlabs/gambit/foundation/blockchain/explorer"
	"github.com/ardanlabs/gambit/foundation/events"
)

const (
	success = "✓"
	failed  = "✗"
)

func newTestServer(t *testing.T) (*httptest.Server, *chain.Blockchain, *events.Events) {
	t.Helper()

	addr, err := address.FromHex("0x1000000000000000000000000000000000000001")
	if err != nil {
		t.Fatalf("building genesis address: %s", err)
	}

	bc := chain.New(1337, map[address.Address]uint64{addr: 1000})
	evt := events.New()
	reg := prometheus.NewRegistry()

	srv := explorer.New(bc, evt, reg, "*")
	return httptest.NewServer(srv), bc, evt
}

func TestHandleStatus(t *testing.T) {
	t.Log("Given a running explorer server.")
	{
		ts, bc, _ := newTestServer(t)
		defer ts.Close()

		resp, err := http.Get(ts.URL + "/v1/status")
		if err != nil {
			t.Fatalf("\t%s\tshould be able to call /v1/status: %s", failed, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("\t%s\tshould receive a 200, got %d", failed, resp.StatusCode)
		}
		t.Logf("\t%s\tshould receive a 200", success)

		var got struct {
			ChainID     uint64 `json:"chainId"`
			Height      uint64 `json:"height"`
			MempoolSize int    `json:"mempoolSize"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
			t.Fatalf("\t%s\tshould decode the response body: %s", failed, err)
		}

		if got.ChainID != bc.ChainID() {
			t.Fatalf("\t%s\tshould report the configured chain id, got %d", failed, got.ChainID)
		}
		t.Logf("\t%s\tshould report the configured chain id", success)

		if got.Height != bc.Height() {
			t.Fatalf("\t%s\tshould report the current height, got %d", failed, got.Height)
		}
		t.Logf("\t%s\tshould report the current height", success)
	}
}

func TestHandleBlockFound(t *testing.T) {
	t.Log("Given a running explorer server and an existing block.")
	{
		ts, _, _ := newTestServer(t)
		defer ts.Close()

		resp, err := http.Get(ts.URL + "/v1/blocks/0")
		if err != nil {
			t.Fatalf("\t%s\tshould be able to call /v1/blocks/0: %s", failed, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("\t%s\tshould receive a 200 for the genesis block, got %d", failed, resp.StatusCode)
		}
		t.Logf("\t%s\tshould receive a 200 for the genesis block", success)
	}
}

func TestHandleBlockNotFound(t *testing.T) {
	t.Log("Given a running explorer server and a block index that does not exist.")
	{
		ts, _, _ := newTestServer(t)
		defer ts.Close()

		resp, err := http.Get(ts.URL + "/v1/blocks/999")
		if err != nil {
			t.Fatalf("\t%s\tshould be able to call /v1/blocks/999: %s", failed, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("\t%s\tshould receive a 404, got %d", failed, resp.StatusCode)
		}
		t.Logf("\t%s\tshould receive a 404", success)
	}
}

func TestHandleBlockInvalidNumber(t *testing.T) {
	t.Log("Given a running explorer server and a non-numeric block path.")
	{
		ts, _, _ := newTestServer(t)
		defer ts.Close()

		resp, err := http.Get(ts.URL + "/v1/blocks/not-a-number")
		if err != nil {
			t.Fatalf("\t%s\tshould be able to call /v1/blocks/not-a-number: %s", failed, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("\t%s\tshould receive a 400, got %d", failed, resp.StatusCode)
		}
		t.Logf("\t%s\tshould receive a 400", success)
	}
}

func TestHandleWSReceivesEvent(t *testing.T) {
	t.Log("Given a running explorer server with a WebSocket subscriber.")
	{
		ts, _, evt := newTestServer(t)
		defer ts.Close()

		wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/ws"

		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			t.Fatalf("\t%s\tshould be able to dial the ws endpoint: %s", failed, err)
		}
		defer conn.Close()

		// Give the server a moment to register the subscriber before
		// publishing, since Acquire happens in a separate goroutine.
		time.Sleep(50 * time.Millisecond)

		evt.SendEvent("newBlock", map[string]any{"index": 1})

		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("\t%s\tshould receive the published event: %s", failed, err)
		}
		t.Logf("\t%s\tshould receive the published event", success)

		var envelope struct {
			Kind string `json:"kind"`
		}
		if err := json.Unmarshal(msg, &envelope); err != nil {
			t.Fatalf("\t%s\tshould decode the event envelope: %s", failed, err)
		}
		if envelope.Kind != "newBlock" {
			t.Fatalf("\t%s\tshould carry the event kind, got %q", failed, envelope.Kind)
		}
		t.Logf("\t%s\tshould carry the event kind", success)
	}
}

func TestCorsHeaderSet(t *testing.T) {
	t.Log("Given a running explorer server configured with a CORS origin.")
	{
		ts, _, _ := newTestServer(t)
		defer ts.Close()

		resp, err := http.Get(ts.URL + "/v1/status")
		if err != nil {
			t.Fatalf("\t%s\tshould be able to call /v1/status: %s", failed, err)
		}
		defer resp.Body.Close()

		if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
			t.Fatalf("\t%s\tshould set the configured CORS origin, got %q", failed, got)
		}
		t.Logf("\t%s\tshould set the configured CORS origin", success)
	}
}
