// Command coordinator runs component D: it waits for the configured number
// of workers to register, assigns each its region, streams the generated
// L-system word to whichever worker currently owns the turtle, and finally
// collects and prints the assembled canvas.
package main

import (
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/mwindels/turtlemesh/internal/canvas"
	"github.com/mwindels/turtlemesh/internal/coordinator"
	"github.com/mwindels/turtlemesh/internal/lsystem"
	"github.com/mwindels/turtlemesh/internal/mesh"
	"github.com/mwindels/turtlemesh/internal/netlink"
	"github.com/mwindels/turtlemesh/internal/preview"
	"github.com/mwindels/turtlemesh/internal/turtle"
)

func main() {
	var (
		listenAddr  = flag.String("listen", ":8000", "address to bind the registration/routing socket, per spec.md 6")
		numNodes    = flag.Int("nodes", 4, "number of workers the registration barrier waits for")
		width       = flag.Int("width", 40, "canvas width in cells")
		height      = flag.Int("height", 40, "canvas height in cells")
		tile        = flag.Int("tile", 20, "region tile size in cells")
		chunkSize   = flag.Int("chunk", 20, "symbols per DATA frame, reference range 1..50")
		timeout     = flag.Duration("timeout", 200*time.Millisecond, "reliable-send timeout per attempt")
		retries     = flag.Int("retries", 5, "reliable-send retry limit")
		skip        = flag.Bool("skip-unreachable", true, "skip a lost chunk instead of aborting when a worker goes dark mid-simulation")
		seedNode    = flag.Bool("seed-node", false, "ask the owning worker for a sensor-based start-coordinate override (Phase 3)")
		metricsAddr = flag.String("metrics-addr", "", "if set, serve Prometheus metrics on this address")
		previewFlag = flag.Bool("preview", false, "open an SDL2 preview window and paint the collected canvas into it")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalln("Improper parameters.  This program requires one positional parameter:\n\t(1) path to the L-system configuration file")
	}
	cfgPath := flag.Arg(0)

	cfg, err := lsystem.ParseConfigFile(cfgPath)
	if err != nil {
		log.Fatalf("Could not read configuration %q: %v.\n", cfgPath, err)
	}

	word, truncated := lsystem.Expand(cfg)
	if truncated {
		log.Printf("Warning: word generation stopped early; exceeded the %d-symbol cap.\n", lsystem.MaxSymbols)
	}
	log.Printf("Expanded axiom to %d symbols over %d iterations.\n", len(word), cfg.Iterations)

	layout := mesh.Layout{Width: *width, Height: *height, Tile: *tile}
	if layout.RegionCount() != *numNodes {
		log.Fatalf("Layout produces %d regions but -nodes=%d; these must match.\n", layout.RegionCount(), *numNodes)
	}

	udpAddr, err := net.ResolveUDPAddr("udp", *listenAddr)
	if err != nil {
		log.Fatalf("Could not resolve listen address %q: %v.\n", *listenAddr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		log.Fatalf("Could not bind %q: %v.\n", *listenAddr, err)
	}
	defer conn.Close()
	endpoint := netlink.NewEndpoint(conn)

	var metrics *coordinator.Metrics
	if *metricsAddr != "" {
		metrics = coordinator.NewMetrics()
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		go func() {
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Printf("Metrics listener stopped: %v.\n", err)
			}
		}()
	}

	router := coordinator.New(endpoint, coordinator.Config{
		Layout:              layout,
		NumNodes:            *numNodes,
		AngleDeg:            cfg.AngleDeg,
		ChunkSize:           *chunkSize,
		Timeout:             *timeout,
		Retries:             *retries,
		SkipUnreachableData: *skip,
	}, metrics)

	log.Printf("Waiting for %d workers to register on %s...\n", *numNodes, *listenAddr)
	if err := router.RegisterBarrier(); err != nil {
		log.Fatalf("Registration barrier failed: %v.\n", err)
	}

	log.Println("Assigning regions...")
	router.AssignRegions()

	startX, startY := cfg.StartX, cfg.StartY
	if *seedNode {
		startX, startY = router.SeedOrigin(startX, startY)
	}

	var view *preview.Preview
	if *previewFlag {
		view, err = preview.New("Turtle Mesh", *width, *height, 8)
		if err != nil {
			log.Printf("Preview disabled: %v.\n", err)
			view = nil
		} else {
			defer view.Close()
		}
	}

	log.Printf("Streaming %d symbols from (%.2f, %.2f)...\n", len(word), startX, startY)
	cursor := coordinator.Cursor{X: startX, Y: startY, Heading: turtle.Heading(0), Index: 0}
	final := router.StreamSimulation(word, cursor)
	log.Printf("Simulation ended at index %d/%d, cursor (%.2f, %.2f).\n", final.Index, len(word), final.X, final.Y)

	out := canvas.New(*width, *height)
	router.Collect(out)

	if view != nil {
		view.PumpEvents()
		if err := view.Draw(out); err != nil {
			log.Printf("Preview draw failed: %v.\n", err)
		}
	}

	if err := out.Render(os.Stdout); err != nil {
		log.Fatalf("Could not render canvas: %v.\n", err)
	}
}
