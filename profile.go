/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"
	"net/http/pprof"

	"github.com/julienschmidt/httprouter"
)

var profileHandlers = []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"}

var profileFuncs = map[string]http.HandlerFunc{
	"cmdline": pprof.Cmdline,
	"profile": pprof.Profile,
	"symbol":  pprof.Symbol,
	"trace":   pprof.Trace,
}

func registerProfileHandlers(cfg *Config, mux *httprouter.Router) {
	mux.HandlerFunc("GET", cfg.prefix+"/pprof/", pprof.Index)

	for _, name := range profileHandlers {
		mux.Handler("GET", cfg.prefix+"/pprof/"+name, pprof.Handler(name))
	}

	for name, fn := range profileFuncs {
		mux.HandlerFunc("GET", cfg.prefix+"/pprof/"+name, fn)
	}

	logf(cfg, "SERVE: Registered pprof handlers under %s/pprof/", cfg.prefix)
}
