package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/pkg/profile"
	log "github.com/sirupsen/logrus"

	"github.com/kpfaulkner/cabac-go/binarization"
	"github.com/kpfaulkner/cabac-go/container"
	"github.com/kpfaulkner/cabac-go/ctxselect"
	"github.com/kpfaulkner/cabac-go/sequence"
	"github.com/kpfaulkner/cabac-go/testcommon"
)

type benchCase struct {
	name string
	cfg  sequence.Config
}

func main() {
	numSymbols := flag.Int("n", 1_000_000, "symbols per run")
	runs := flag.Int("runs", 5, "runs per configuration")
	mode := flag.String("profile", "cpu", "cpu, mem or none")
	flag.Parse()

	switch *mode {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileHeap, profile.ProfilePath(".")).Stop()
	}

	symbols := testcommon.GeometricSymbols(*numSymbols, 0.05, 0)

	cases := []benchCase{
		{
			name: "TU bin position",
			cfg: sequence.Config{
				Binarization: binarization.TU,
				BinParams:    binarization.Params{NumBins: binarization.DefaultNumMaxBins},
				ContextModel: ctxselect.BinPosition,
				CtxParams:    ctxselect.Params{RestPos: 10},
			},
		},
		{
			name: "EG0 symbol order 2",
			cfg: sequence.Config{
				Binarization: binarization.EGk,
				BinParams:    binarization.Params{NumBins: 24},
				ContextModel: ctxselect.SymbolOrderN,
				CtxParams:    ctxselect.Params{Order: 2, RestPos: 10, SymbolMax: 16},
			},
		},
		{
			name: "EG0 bins order 3",
			cfg: sequence.Config{
				Binarization: binarization.EGk,
				BinParams:    binarization.Params{NumBins: 24},
				ContextModel: ctxselect.BinsOrderN,
				CtxParams:    ctxselect.Params{Order: 3, RestPos: 10},
			},
		},
	}

	for _, bc := range cases {
		var encTime, decTime time.Duration
		var size int
		for count := 0; count < *runs; count++ {
			start := time.Now()
			u, err := container.Encode(symbols, bc.cfg, nil, false)
			if err != nil {
				log.Errorf("Error encoding: %v\n", err)
				return
			}
			encTime += time.Since(start)
			size = len(u.Payload)

			start = time.Now()
			if _, err := u.Decode(); err != nil {
				log.Errorf("Error decoding: %v\n", err)
				return
			}
			decTime += time.Since(start)
		}
		fmt.Printf("%s: %d bytes, %.3f bits/symbol, encode %d ms, decode %d ms\n",
			bc.name, size, float64(size*8)/float64(len(symbols)),
			encTime.Milliseconds()/int64(*runs), decTime.Milliseconds()/int64(*runs))
	}
}
