package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"time"

	"taskmanager/internal/logger"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Logs in over HTTP, subscribes to /ws/tasks with the session cookie, creates a
// task and waits for the matching event.
func main() {
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	base := flag.String("base", "http://127.0.0.1:"+port, "server base url")
	username := flag.String("username", "manager", "manager username")
	password := flag.String("password", "manager", "manager password")
	flag.Parse()

	logger.Init("debug", false)
	defer logger.Sync()

	jar, _ := cookiejar.New(nil)
	client := &http.Client{Jar: jar, Timeout: 10 * time.Second}

	res := post(client, *base+"/auth/login", map[string]string{"username": *username, "password": *password})
	if res.StatusCode != http.StatusOK {
		logger.Fatal("login failed", zap.Int("status", res.StatusCode))
	}

	baseURL, err := url.Parse(*base)
	if err != nil {
		logger.Fatal("parse base url", zap.Error(err))
	}
	header := http.Header{}
	for _, c := range jar.Cookies(baseURL) {
		header.Add("Cookie", c.String())
	}

	wsURL := "ws://" + baseURL.Host + "/ws/tasks"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		logger.Fatal("dial", zap.String("url", wsURL), zap.Error(err))
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var ready map[string]any
	if err := conn.ReadJSON(&ready); err != nil {
		logger.Fatal("read ready", zap.Error(err))
	}
	logger.Info("stream ready", zap.Any("msg", ready))

	res = post(client, *base+"/createTask", map[string]string{
		"title":       "smoke",
		"description": "created by ws_smoke",
		"status":      "To Do",
		"priority":    "Low",
		"due_date":    time.Now().Add(24 * time.Hour).Format("2006-01-02"),
		"username":    *username,
	})
	if res.StatusCode != http.StatusCreated {
		logger.Fatal("create task failed", zap.Int("status", res.StatusCode))
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var ev map[string]any
	if err := conn.ReadJSON(&ev); err != nil {
		logger.Fatal("read event", zap.Error(err))
	}
	out, _ := json.MarshalIndent(ev, "", "  ")
	fmt.Println(string(out))
}

func post(client *http.Client, url string, body any) *http.Response {
	b, _ := json.Marshal(body)
	res, err := client.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		logger.Fatal("request failed", zap.String("url", url), zap.Error(err))
	}
	res.Body.Close()
	return res
}
