// Command navserver exposes a navcore.Core over a small HTTP demo surface.
// It is not part of the navigation core itself — the core stays a
// library with no wire protocol of its own — this is a supplementary
// host binary for manual testing and demos.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/azybler/navcore/pkg/mapmodel"
	"github.com/azybler/navcore/pkg/navconfig"
	"github.com/azybler/navcore/pkg/navcore"
	"github.com/azybler/navcore/pkg/navserver"
	"github.com/azybler/navcore/pkg/testmap"
)

func main() {
	port := flag.Int("port", 8090, "HTTP port")
	corsOrigin := flag.String("cors-origin", "", "CORS allowed origin (empty = same-origin)")
	configPath := flag.String("config", "", "optional navconfig YAML file")
	gridRows := flag.Int("grid-rows", 8, "demo map grid rows")
	gridCols := flag.Int("grid-cols", 8, "demo map grid cols")
	gridSpacing := flag.Int("grid-spacing-e6", 2000, "demo map grid spacing, micro-degrees")
	flag.Parse()

	cfg, err := navconfig.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// The core is a library with no map loader of its own (spec §1 excludes
	// a map database format); this demo serves a synthetic grid city rather
	// than real OSM data.
	m := testmap.NewGrid(*gridRows, *gridCols, int32(*gridSpacing), 10, 10)
	log.Printf("demo map: %dx%d grid, %d lines", *gridRows, *gridCols, m.LineCount())

	cb, sink := navserver.NewSinkCallbacks()
	core := navcore.New(m, mapmodel.EquirectMath{}, testmap.AllNavigable{}, cfg, cb)

	handlers := navserver.NewHandlers(core, m, sink)
	srvCfg := navserver.DefaultConfig(fmt.Sprintf(":%d", *port))
	srvCfg.CORSOrigin = *corsOrigin
	srv := navserver.NewServer(srvCfg, handlers)

	if err := navserver.ListenAndServe(srv); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
