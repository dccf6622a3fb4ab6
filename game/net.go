package game

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/pthm-cable/sonar/config"
	"github.com/pthm-cable/sonar/netsync"
)

// SyncPath is the HTTP path peers connect to.
const SyncPath = "/sonar"

// startNet starts the sync hub when listening or joining a peer.
func (g *Game) startNet(cfg config.NetConfig, listen, connect string) error {
	if listen == "" && connect == "" {
		return nil
	}

	sonarCfg := g.sonar.Configuration()
	codec, err := netsync.NewCodec(sonarCfg.MinZoom, sonarCfg.MaxZoom)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	g.cancel = cancel
	g.hub = netsync.NewHub(codec, g.sonar, netsync.HubOptions{
		PingPeriod: seconds(cfg.PingPeriod),
		ReadWait:   seconds(cfg.ReadWait),
		Logger:     g.logger.With("component", "netsync"),
	})
	go g.hub.Run(ctx)

	if listen != "" {
		ln, err := net.Listen("tcp", listen)
		if err != nil {
			return fmt.Errorf("sync listen: %w", err)
		}
		mux := http.NewServeMux()
		mux.Handle(SyncPath, g.hub)
		g.server = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				g.logger.Error("sync server stopped", "error", err)
			}
		}()
		g.syncAddr = ln.Addr().String()
		g.logger.Info("sync hub listening", "addr", g.syncAddr, "path", SyncPath)
	}

	if connect != "" {
		dialCtx, cancelDial := context.WithTimeout(ctx, 10*time.Second)
		defer cancelDial()
		if err := g.hub.Connect(dialCtx, connect); err != nil {
			return err
		}
		g.logger.Info("joined sync peer", "url", connect)
	}
	return nil
}

// publishState sends the local configuration to peers.
func (g *Game) publishState() {
	if g.hub == nil {
		return
	}
	g.hub.Publish(netsync.StateFromConfiguration(g.sonar.Configuration()))
}

// peers returns the number of connected sync peers.
func (g *Game) peers() int {
	if g.hub == nil {
		return 0
	}
	return g.hub.Peers()
}

// SyncAddr returns the address the sync hub listens on, empty when not listening.
func (g *Game) SyncAddr() string {
	return g.syncAddr
}

// stopNet shuts the server down and disconnects peers.
func (g *Game) stopNet() {
	if g.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := g.server.Shutdown(ctx); err != nil {
			g.logger.Warn("sync server shutdown", "error", err)
		}
		cancel()
		g.server = nil
	}
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
