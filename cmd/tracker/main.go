// Command tracker follows one delivery order over the STOMP push
// channel and logs every snapshot change until the order reaches a
// terminal status.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ordertrack/internal/auth"
	"ordertrack/internal/buildinfo"
	"ordertrack/internal/config"
	"ordertrack/internal/metrics"
	"ordertrack/internal/model"
	"ordertrack/internal/store"
	"ordertrack/internal/track"
)

func main() {
	cfgPath := flag.String("config", "", "path to YAML config")
	orderPath := flag.String("order", "", "path to an order snapshot JSON file")
	fetchURL := flag.String("fetch", "", "REST URL returning an order snapshot JSON")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.BaseURL == "" {
		log.Fatal("base_url is required (config file or BASE_URL)")
	}

	src, err := auth.NewSourceFromEnv()
	if err != nil {
		log.Fatal(err)
	}
	token, err := src.Token()
	if err != nil {
		log.Fatalf("failed to read credential: %v", err)
	}

	// Store selection: Postgres when DATABASE_URL is set, memory otherwise.
	var st store.Store
	if cfg.DatabaseURL != "" {
		sp, err := store.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to open store: %v", err)
		}
		st = sp
	} else {
		st = store.NewMemory()
	}

	// Broker selection: Redis fanout when REDIS_URL is set.
	var broker track.EventBroker
	if cfg.RedisURL != "" {
		if rb, err := track.NewRedisBroker(cfg.RedisURL); err == nil {
			broker = rb
		} else {
			log.Printf("redis broker unavailable, using memory: %v", err)
			broker = track.NewBroker()
		}
	} else {
		broker = track.NewBroker()
	}

	metrics.RegisterDefault()
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(buildinfo.Info())
		})
		go func() {
			srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("metrics server error: %v", err)
			}
		}()
	}

	session := track.NewSession(track.Options{
		BaseURL:        cfg.BaseURL,
		Scope:          cfg.Scope,
		ReconnectDelay: cfg.Delay(track.DefaultReconnectDelay),
		Store:          st,
		Broker:         broker,
	})
	defer session.Close()
	session.SetCredential(token)

	snap, ok := loadSnapshot(*orderPath, *fetchURL, token)
	if ok {
		session.BeginTracking(snap)
	} else {
		// no snapshot supplied: resume whatever order was tracked last
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		session.Restore(ctx)
		cancel()
	}
	id := session.ActiveOrderID()
	if id == 0 {
		if snap := session.Snapshot(); snap != nil && snap.Status.Terminal() {
			log.Fatalf("order %d is already %s, nothing to track", snap.OrderID, snap.Status)
		}
		log.Fatal("nothing to track: supply -order or -fetch, or a previously tracked order")
	}
	log.Printf("tracking order %d (state=%s)", id, session.State())

	events := broker.Subscribe(id)
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	for {
		select {
		case evt, ok := <-events:
			if !ok {
				return
			}
			log.Printf("%s order=%d status=%s", evt.Type, evt.Snapshot.OrderID, evt.Snapshot.Status)
			if evt.Type == "order.terminal" {
				log.Printf("order %d reached %s, stopping", evt.Snapshot.OrderID, evt.Snapshot.Status)
				return
			}
		case <-sig:
			log.Print("interrupted")
			return
		}
	}
}

// loadSnapshot reads a snapshot from a file or a REST endpoint. The
// REST order-detail API is an external collaborator; its payload is
// expected to be OrderSnapshot-shaped.
func loadSnapshot(path, url, token string) (model.OrderSnapshot, bool) {
	var snap model.OrderSnapshot
	switch {
	case path != "":
		b, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("failed to read order file: %v", err)
		}
		if err := json.Unmarshal(b, &snap); err != nil {
			log.Fatalf("failed to parse order file: %v", err)
		}
		return snap, true
	case url != "":
		req, _ := http.NewRequest(http.MethodGet, url, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			log.Fatalf("failed to fetch order: %v", err)
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusOK {
			log.Fatalf("failed to fetch order: status %d", resp.StatusCode)
		}
		if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
			log.Fatalf("failed to parse order response: %v", err)
		}
		return snap, true
	}
	return snap, false
}
