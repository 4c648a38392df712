package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

type event struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

func main() {
	var (
		url    = flag.String("url", "ws://localhost:8080/realtime", "realtime endpoint to watch")
		topics = flag.String("topics", "", "comma separated topics, empty for all")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	target := *url
	if *topics != "" {
		target += "?topics=" + *topics
	}

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, target, nil)
	if err != nil {
		log.Fatalf("dial %s: %v", target, err)
	}
	defer conn.Close()
	log.Printf("watching %s", target)

	go func() {
		<-ctx.Done()
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	}()

	for {
		var ev event
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Fatalf("read event: %v", err)
		}
		log.Printf("[%s] %s", ev.Topic, ev.Payload)
	}
}
