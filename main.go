package main

import (
	"flag"
	"os"

	"github.com/golang/glog"

	"github.com/samuel950/nesgo/nes"
	"github.com/samuel950/nesgo/ui"
)

var (
	pattern = flag.Bool("pattern", false, "show a pattern table bank instead of running the program")
	bank    = flag.Int("bank", 0, "pattern table bank to show, 0 or 1")
	debug   = flag.Bool("debug", false, "drive the machine from a stdin debug console, no window")
)

func main() {
	flag.Parse()
	defer glog.Flush()
	if flag.NArg() < 1 {
		glog.Exitf("Usage: %s [flags] <cartridge.nes>", os.Args[0])
	}
	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		glog.Exitf("Failed to read the cartridge: %v", err)
	}
	cartridge, err := nes.NewCartridge(data)
	if err != nil {
		glog.Exitf("Failed to load the cartridge: %v", err)
	}
	switch {
	case *debug:
		bus := nes.NewBus(cartridge, nil)
		cpu := nes.NewCPU(bus)
		nes.NewDebugConsole(cpu, bus).Run()
	case *pattern:
		err = ui.RunPatternView(cartridge, *bank)
	default:
		err = ui.Run(cartridge)
	}
	if err != nil {
		glog.Exitf("%v", err)
	}
}
