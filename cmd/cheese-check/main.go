package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/cheese-web/internal/adapter/presenter"
	"github.com/park285/cheese-web/pkg/chessdto"
)

func main() {
	baseURL := strings.TrimRight(os.Getenv("CHEESE_BASE_URL"), "/")
	sessionID := os.Getenv("CHEESE_SESSION_ID")

	if baseURL == "" {
		log.Fatal("CHEESE_BASE_URL is required")
	}

	client := &fasthttp.Client{ReadTimeout: 5 * time.Second, WriteTimeout: 5 * time.Second}

	var health chessdto.HealthResponse
	status, err := doJSON(client, fasthttp.MethodGet, baseURL+"/healthz", nil, &health)
	if err != nil {
		log.Printf("/healthz error: %v", err)
	} else {
		log.Printf("/healthz %d: status=%s checks=%v", status, health.Status, health.Checks)
	}

	if sessionID == "" {
		var view chessdto.SessionView
		status, err := doJSON(client, fasthttp.MethodPost, baseURL+"/api/sessions", []byte(`{}`), &view)
		if err != nil || status != fasthttp.StatusCreated {
			log.Fatalf("create session failed: status=%d err=%v", status, err)
		}
		sessionID = view.ID
		log.Printf("created session %s", sessionID)
	}

	wsURL := "ws" + strings.TrimPrefix(baseURL, "http") + "/api/sessions/" + sessionID + "/ws"
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		log.Printf("WS connect error: %v", err)
		return
	}
	defer conn.CloseNow()

	// Observe for a short window
	for {
		var frame chessdto.ServerFrame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			log.Printf("WS read ended: %v", err)
			break
		}
		switch {
		case frame.Session != nil:
			fmt.Printf("WS %s\n%s\n\n", frame.Type, presenter.Status(*frame.Session))
		case frame.Error != nil:
			fmt.Printf("WS %s: %s\n", frame.Type, frame.Error.Error())
		}
	}

	conn.Close(websocket.StatusNormalClosure, "")
}

func doJSON(client *fasthttp.Client, method, url string, body []byte, out any) (int, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(method)
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}
	if err := client.DoTimeout(req, resp, 5*time.Second); err != nil {
		return 0, err
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return resp.StatusCode(), fmt.Errorf("decoding %s: %w", url, err)
	}
	return resp.StatusCode(), nil
}
