// Command tcat-extension-parser decodes a binary dump of the extension
// register space and prints the section table, capability registers and
// the decoded sections the capabilities expose.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/alsa-project/snd-firewire-ctl-services-sub014/tcat"
	"github.com/alsa-project/snd-firewire-ctl-services-sub014/tcat/extension"
	"github.com/alsa-project/snd-firewire-ctl-services-sub014/tcat/tcd22xx"
	"github.com/alsa-project/snd-firewire-ctl-services-sub014/transport"
)

func main() {
	var (
		base     = pflag.Uint64("base", tcat.BaseAddress+extension.Offset, "bus address of the first byte of the dump")
		model    = pflag.String("model", "", "built-in model name for block labels")
		specFile = pflag.String("spec-file", "", "YAML topology file for block labels")
		rateName = pflag.String("rate-mode", "low", "rate mode for the applied configuration (low, middle, high)")
		verbose  = pflag.BoolP("verbose", "v", false, "enable debug logging")
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

	mode, err := parseRateMode(*rateName)
	if err != nil {
		logger.Fatal("bad flag", zap.Error(err))
	}

	spec, err := loadSpec(*model, *specFile)
	if err != nil {
		logger.Fatal("bad topology", zap.Error(err))
	}

	if err := run(pflag.Arg(0), *base, mode, spec, logger); err != nil {
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

func parseRateMode(name string) (tcat.RateMode, error) {
	switch name {
	case "low":
		return tcat.RateModeLow, nil
	case "middle":
		return tcat.RateModeMiddle, nil
	case "high":
		return tcat.RateModeHigh, nil
	default:
		return 0, fmt.Errorf("unknown rate mode %q", name)
	}
}

func loadSpec(model, specFile string) (*tcd22xx.Spec, error) {
	if model != "" && specFile != "" {
		return nil, errors.New("--model and --spec-file are exclusive")
	}
	if model != "" {
		spec, ok := tcd22xx.ModelSpec(model)
		if !ok {
			return nil, fmt.Errorf("unknown model %q, have %v", model, tcd22xx.ModelNames())
		}
		return spec, nil
	}
	if specFile != "" {
		return tcd22xx.LoadSpecFile(specFile)
	}
	return nil, nil
}

func run(path string, base uint64, mode tcat.RateMode, spec *tcd22xx.Spec, logger *zap.Logger) error {
	dump, err := transport.LoadDump(path, base)
	if err != nil {
		return err
	}
	logger.Debug("dump loaded", zap.String("path", path), zap.Int("size", dump.Size()))

	sections, err := extension.ReadSections(dump, 0)
	if err != nil {
		return err
	}

	fmt.Println("section table:")
	for _, entry := range []struct {
		name    string
		section tcat.Section
	}{
		{"caps", sections.Caps},
		{"command", sections.Cmd},
		{"mixer", sections.Mixer},
		{"peak", sections.Peak},
		{"router", sections.Router},
		{"stream-format", sections.StreamFormat},
		{"current-config", sections.CurrentConfig},
		{"standalone", sections.Standalone},
		{"application", sections.Application},
	} {
		fmt.Printf("  %-16s offset %#06x size %#06x\n", entry.name, entry.section.Offset, entry.section.Size)
	}

	caps, err := extension.ReadCaps(dump, sections, 0)
	if err != nil {
		return err
	}

	fmt.Println("capabilities:")
	fmt.Printf("  asic:   %s\n", caps.General.Asic)
	fmt.Printf("  router: exposed %t readonly %t storable %t, up to %d entries\n",
		caps.Router.IsExposed, caps.Router.IsReadonly, caps.Router.IsStorable,
		caps.Router.MaximumEntryCount)
	fmt.Printf("  mixer:  exposed %t readonly %t storable %t, %dx%d\n",
		caps.Mixer.IsExposed, caps.Mixer.IsReadonly, caps.Mixer.IsStorable,
		caps.Mixer.InputCount, caps.Mixer.OutputCount)
	fmt.Printf("  general: dynamic stream format %t, storage %t, peak %t, %d tx / %d rx streams\n",
		caps.General.DynamicStreamFormat, caps.General.StorageAvail, caps.General.PeakAvail,
		caps.General.MaxTxStreams, caps.General.MaxRxStreams)

	if caps.Router.IsExposed {
		entries, err := extension.ReadRouterEntries(dump, sections, caps, 0)
		if err != nil {
			return err
		}
		printRouterEntries("router entries", entries, spec)

		current, err := extension.ReadCurrentRouterEntries(dump, sections, caps, mode, 0)
		if err != nil {
			return err
		}
		printRouterEntries(fmt.Sprintf("applied router entries (%s)", mode), current, spec)
	}

	tx, rx, err := extension.ReadStreamFormatEntries(dump, sections, caps, 0)
	if err != nil {
		return err
	}
	printFormatEntries("tx stream formats", tx)
	printFormatEntries("rx stream formats", rx)

	standalone, err := extension.ReadStandaloneParameters(dump, sections, 0)
	if err != nil {
		return err
	}
	fmt.Println("standalone configuration:")
	fmt.Printf("  clock source:  %s\n", standalone.ClockSource)
	fmt.Printf("  AES high rate: %t\n", standalone.AesHighRate)
	fmt.Printf("  ADAT mode:     %s\n", standalone.AdatMode)
	fmt.Printf("  word clock:    %s, rate %d/%d\n", standalone.WordClock.Mode,
		standalone.WordClock.Rate.Numerator, standalone.WordClock.Rate.Denominator)
	fmt.Printf("  internal rate: %s\n", standalone.InternalRate)

	if caps.General.PeakAvail {
		peaks, err := extension.ReadPeakEntries(dump, sections, caps, 0)
		if err != nil {
			return err
		}
		fmt.Println("peak meters:")
		for _, entry := range peaks {
			if entry.Peak == 0 {
				continue
			}
			fmt.Printf("  %-20s -> %-20s %#04x\n",
				srcLabel(spec, entry.Src), dstLabel(spec, entry.Dst), entry.Peak)
		}
	}

	return nil
}

func printRouterEntries(title string, entries []extension.RouterEntry, spec *tcd22xx.Spec) {
	fmt.Printf("%s: %d\n", title, len(entries))
	for _, entry := range entries {
		fmt.Printf("  %-20s -> %s\n", srcLabel(spec, entry.Src), dstLabel(spec, entry.Dst))
	}
}

func printFormatEntries(title string, entries []extension.FormatEntry) {
	fmt.Printf("%s: %d\n", title, len(entries))
	for i, entry := range entries {
		fmt.Printf("  stream %d: %d pcm, %d midi, labels %v\n",
			i, entry.PCMCount, entry.MIDICount, entry.Labels)
	}
}

func srcLabel(spec *tcd22xx.Spec, blk extension.SrcBlk) string {
	if spec != nil {
		return spec.SrcBlkLabel(blk)
	}
	return blk.String()
}

func dstLabel(spec *tcd22xx.Spec, blk extension.DstBlk) string {
	if spec != nil {
		return spec.DstBlkLabel(blk)
	}
	return blk.String()
}
