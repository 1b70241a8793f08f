// Command adgraphdemo runs a small HTTP server around a char-level
// autoregressive transformer whose forward pass is built entirely out
// of graph.Graph nodes and evaluated through package rules' four
// passes, instead of the eager *Value chain
// zautner-Atomic-GPT-explorer/main.go used. Grounded on that repo's
// main.go entry point and server.go route wiring.
package main

import (
	"flag"
	"net/http"

	"github.com/golang/glog"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	flag.Parse()
	defer glog.Flush()

	s := NewServer()
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	glog.Infof("adgraphdemo: listening on %s", *addr)
	if err := http.ListenAndServe(*addr, mux); err != nil {
		glog.Fatalf("adgraphdemo: server stopped: %v", err)
	}
}
