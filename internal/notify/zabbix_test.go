package notify

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"net"
	"strings"
	"testing"
)

// serveZabbixOnce runs a one-shot trapper endpoint that records the received
// request and answers with the given reply.
func serveZabbixOnce(t *testing.T, reply zabbixResponse) (server string, port int, recv <-chan zabbixRequest) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	ch := make(chan zabbixRequest, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()

		header := make([]byte, zabbixHeaderSize)
		if _, err := io.ReadFull(conn, header); err != nil {
			return
		}
		body := make([]byte, binary.LittleEndian.Uint64(header[5:]))
		if _, err := io.ReadFull(conn, body); err != nil {
			return
		}
		var req zabbixRequest
		_ = json.Unmarshal(body, &req)
		ch <- req

		data, _ := json.Marshal(reply)
		out := make([]byte, zabbixHeaderSize)
		copy(out[0:5], zabbixMagic[:])
		binary.LittleEndian.PutUint64(out[5:], uint64(len(data)))
		_, _ = conn.Write(out)
		_, _ = conn.Write(data)
	}()

	return "127.0.0.1", ln.Addr().(*net.TCPAddr).Port, ch
}

var zabbixOK = zabbixResponse{
	Response: "success",
	Info:     "processed: 1; failed: 0; total: 1; seconds spent: 0.000050",
}

func TestSendQuietZabbix(t *testing.T) {
	server, port, recv := serveZabbixOnce(t, zabbixOK)

	if err := SendQuietZabbix(server, port, "player01", "player.quiet", -52.3, -40); err != nil {
		t.Fatalf("SendQuietZabbix() error: %v", err)
	}

	req := <-recv
	if req.Request != "sender data" {
		t.Errorf("request = %q, want sender data", req.Request)
	}
	if len(req.Data) != 1 {
		t.Fatalf("got %d items, want 1", len(req.Data))
	}
	item := req.Data[0]
	if item.Host != "player01" || item.Key != "player.quiet" {
		t.Errorf("item host/key = %q/%q", item.Host, item.Key)
	}
	if item.Value != "event=QUIET level_db=-52.3 threshold=-40.0" {
		t.Errorf("item value = %q", item.Value)
	}
}

func TestSendRecoveryZabbix(t *testing.T) {
	server, port, recv := serveZabbixOnce(t, zabbixOK)

	if err := SendRecoveryZabbix(server, port, "player01", "player.quiet", 32000, -18.5, -40); err != nil {
		t.Fatalf("SendRecoveryZabbix() error: %v", err)
	}

	req := <-recv
	if got := req.Data[0].Value; got != "event=RECOVERY duration_ms=32000 level_db=-18.5 threshold=-40.0" {
		t.Errorf("item value = %q", got)
	}
}

func TestSendTestZabbix(t *testing.T) {
	server, port, recv := serveZabbixOnce(t, zabbixOK)

	if err := SendTestZabbix(server, port, "player01", "player.quiet"); err != nil {
		t.Fatalf("SendTestZabbix() error: %v", err)
	}

	req := <-recv
	if got := req.Data[0].Value; got != "event=TEST source=zwfm-player" {
		t.Errorf("item value = %q", got)
	}
}

func TestSendZabbixRejected(t *testing.T) {
	server, port, _ := serveZabbixOnce(t, zabbixResponse{Response: "failed", Info: "bad item"})

	err := SendTestZabbix(server, port, "player01", "player.quiet")
	if err == nil || !strings.Contains(err.Error(), "rejected") {
		t.Errorf("want rejection error, got %v", err)
	}
}

func TestSendZabbixNoItemsProcessed(t *testing.T) {
	server, port, _ := serveZabbixOnce(t, zabbixResponse{
		Response: "success",
		Info:     "processed: 0; failed: 0; total: 1; seconds spent: 0.000010",
	})

	err := SendTestZabbix(server, port, "player01", "player.quiet")
	if err == nil || !strings.Contains(err.Error(), "processed no items") {
		t.Errorf("want no-items error, got %v", err)
	}
}

func TestSendZabbixUnconfigured(t *testing.T) {
	// Missing server, host or key is a silent no-op.
	if err := SendTestZabbix("", 10051, "host", "key"); err != nil {
		t.Errorf("empty server: %v", err)
	}
	if err := SendTestZabbix("zabbix.example.com", 10051, "", "key"); err != nil {
		t.Errorf("empty host: %v", err)
	}
	if err := SendQuietZabbix("zabbix.example.com", 10051, "host", "", -50, -40); err != nil {
		t.Errorf("empty key: %v", err)
	}
}
