package main

import (
	"flag"
	"fmt"
	"net/http"
	"time"

	"github.com/fmstephe/collision-system/pkg/geom"
	"github.com/fmstephe/collision-system/pkg/loosetree"
	"github.com/sirupsen/logrus"
)

type config struct {
	port      int
	worldSize float64
	minSize   float64
	looseness float64
}

func main() {
	cfg := initConfig()

	tree := loosetree.New[string](cfg.worldSize, geom.Vec2{}, cfg.minSize, cfg.looseness)
	app := newApp(tree)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.port),
		Handler:           app.routes(),
		ReadHeaderTimeout: 40 * time.Second,
		WriteTimeout:      60 * time.Second,
	}
	logrus.Infof("collision server listening on port %d", cfg.port)
	logrus.Fatal(server.ListenAndServe())
}

func initConfig() config {
	var cfg config
	flag.IntVar(&cfg.port, "port", 4042, "port the server listens on")
	flag.Float64Var(&cfg.worldSize, "world", 100, "initial side length of the indexed world")
	flag.Float64Var(&cfg.minSize, "min-node", 1, "smallest node side length")
	flag.Float64Var(&cfg.looseness, "looseness", 1.25, "node overlap factor, between 1 and 2")
	flag.Parse()
	return cfg
}
