// Command tcat-general-parser decodes a binary dump of the general
// register space and prints the section table and global parameters.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/alsa-project/snd-firewire-ctl-services-sub014/tcat"
	"github.com/alsa-project/snd-firewire-ctl-services-sub014/transport"
)

func main() {
	var (
		base    = pflag.Uint64("base", tcat.BaseAddress, "bus address of the first byte of the dump")
		verbose = pflag.BoolP("verbose", "v", false, "enable debug logging")
	)
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <dump-file>\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if pflag.NArg() != 1 {
		pflag.Usage()
		os.Exit(2)
	}

	logger := newLogger(*verbose)
	defer logger.Sync()

	if err := run(pflag.Arg(0), *base, logger); err != nil {
		logger.Fatal("parse failed", zap.Error(err))
	}
}

func newLogger(verbose bool) *zap.Logger {
	config := zap.NewDevelopmentConfig()
	if !verbose {
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := config.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

func run(path string, base uint64, logger *zap.Logger) error {
	dump, err := transport.LoadDump(path, base)
	if err != nil {
		return err
	}
	logger.Debug("dump loaded", zap.String("path", path), zap.Int("size", dump.Size()))

	sections, err := tcat.ReadGeneralSections(dump, 0)
	if err != nil {
		return err
	}

	fmt.Println("section table:")
	printSection("global", sections.Global)
	printSection("tx-stream-format", sections.TxStreamFormat)
	printSection("rx-stream-format", sections.RxStreamFormat)
	printSection("ext-sync", sections.ExtSync)
	printSection("reserved", sections.Reserved)

	global, err := tcat.ReadGlobalParameters(dump, sections.Global, tcat.GlobalSpecification{}, 0)
	if err != nil {
		return err
	}

	fmt.Println("global parameters:")
	fmt.Printf("  owner:        %#012x\n", global.Owner)
	fmt.Printf("  nickname:     %q\n", global.Nickname)
	fmt.Printf("  version:      %#08x\n", global.Version)
	fmt.Printf("  clock config: rate %s, source %s\n", global.ClockConfig.Rate, global.ClockConfig.Source)
	fmt.Printf("  clock status: locked %t, rate %s\n", global.ClockStatus.SourceIsLocked, global.ClockStatus.Rate)
	fmt.Printf("  current rate: %d Hz (%s mode)\n", global.CurrentRate, tcat.RateModeFromFrequency(global.CurrentRate))
	fmt.Printf("  streaming:    %t\n", global.Enable)

	fmt.Print("  rates:       ")
	for _, rate := range global.AvailableRates {
		fmt.Printf(" %s", rate)
	}
	fmt.Println()

	fmt.Print("  sources:     ")
	for _, src := range global.AvailableSources {
		fmt.Printf(" %s", src)
	}
	fmt.Println()

	fmt.Println("  source labels:")
	for _, label := range global.ClockSourceLabels {
		fmt.Printf("    %-12s %q\n", label.Source, label.Label)
	}

	states := global.ExternalSourceStates
	if len(states.Sources) > 0 {
		fmt.Println("  external sources:")
		for i, src := range states.Sources {
			fmt.Printf("    %-12s locked %-5t slipped %t\n", src, states.Locked[i], states.Slipped[i])
		}
	}

	return nil
}

func printSection(name string, section tcat.Section) {
	fmt.Printf("  %-18s offset %#06x size %#06x\n", name, section.Offset, section.Size)
}
