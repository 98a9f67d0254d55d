// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"

	"github.com/softbear-oss/tankhub/internal/config"
	"github.com/softbear-oss/tankhub/internal/hub"
	cloudpkg "github.com/softbear-oss/tankhub/internal/hub/cloud"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: restrict to the configured domain once one exists
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func serveWs(manager *hub.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}
		manager.CreateClient(conn)
	}
}

func main() {
	var (
		cloudStage string
		statlogDir string
	)
	flag.StringVar(&cloudStage, "cloud-stage", "", "enable cloud score reporting for this deploy stage (blank disables)")
	flag.StringVar(&statlogDir, "statlog-dir", "", "directory for per-hub population CSV logs (blank disables)")
	flag.Parse()

	addr := "127.0.0.1:8080"
	if flag.NArg() > 0 {
		addr = flag.Arg(0)
	}
	configPath := "config.json"
	if flag.NArg() > 1 {
		configPath = flag.Arg(1)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal("config load error: ", err)
	}

	var cloud *cloudpkg.Cloud
	if cloudStage != "" {
		cloud, err = cloudpkg.New(cloudStage)
		if err != nil {
			log.Println("cloud error (continuing offline):", err)
			cloud = nil
		}
	}

	manager := hub.NewManager(cfg, cloud, statlogDir)

	http.HandleFunc("/", manager.ServeStatus)
	http.HandleFunc("/ws", serveWs(manager))

	srv := &http.Server{Addr: addr}
	go func() {
		log.Println("tankhub server started on", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe: ", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Println("shutting down (received signal:", sig, ")")

	// Stop accepting new connections before retiring hubs: Manager.Shutdown
	// assumes no concurrent CreateClient call is in flight.
	_ = srv.Close()
	manager.Shutdown()
}
