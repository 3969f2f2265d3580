// Package dice sequences the TCAT general and extension protocols into a
// device handle: bootstrap reads the section tables, capability registers
// and global parameters, then operations serve control surfaces on top of
// the cached state. A bus reset invalidates the cache; every operation
// fails until the next successful bootstrap. Operations are synchronous
// and the caller serializes access.
package dice

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/alsa-project/snd-firewire-ctl-services-sub014/tcat"
	"github.com/alsa-project/snd-firewire-ctl-services-sub014/tcat/extension"
	"github.com/alsa-project/snd-firewire-ctl-services-sub014/tcat/tcd22xx"
)

// Device is a handle to one DICE unit on the bus.
type Device struct {
	tr     tcat.Transport
	config Config
	logger *zap.Logger

	general  *tcat.GeneralSections
	sections *extension.Sections
	caps     *extension.Caps
	global   *tcat.GlobalParameters
	avail    *tcd22xx.AvailableBlocks
	mode     tcat.RateMode
	ready    bool
}

// New creates a device handle. No transaction is issued until Bootstrap.
func New(tr tcat.Transport, opts ...Option) *Device {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return &Device{
		tr:     tr,
		config: config,
		logger: config.Logger,
	}
}

// Bootstrap reads the section tables, the global parameters and the
// capability registers, derives the rate mode from the measured sampling
// rate, and detects the available router blocks when a topology spec is
// configured.
func (d *Device) Bootstrap() error {
	d.ready = false

	general, err := tcat.ReadGeneralSections(d.tr, d.config.Timeout)
	if err != nil {
		return err
	}

	global, err := tcat.ReadGlobalParameters(d.tr, general.Global, d.config.GlobalSpec, d.config.Timeout)
	if err != nil {
		return err
	}

	sections, err := extension.ReadSections(d.tr, d.config.Timeout)
	if err != nil {
		return err
	}

	caps, err := extension.ReadCaps(d.tr, sections, d.config.Timeout)
	if err != nil {
		return err
	}

	mode := tcat.RateModeFromFrequency(global.CurrentRate)

	var avail *tcd22xx.AvailableBlocks
	if d.config.Spec != nil {
		avail, err = tcd22xx.DetectAvailableBlocks(d.tr, sections, caps, d.config.Spec, mode, d.config.Timeout)
		if err != nil {
			return err
		}
	}

	d.general = general
	d.global = global
	d.sections = sections
	d.caps = caps
	d.mode = mode
	d.avail = avail
	d.ready = true

	d.logger.Info("device bootstrapped",
		zap.String("nickname", global.Nickname),
		zap.Uint32("version", global.Version),
		zap.Uint32("rate", global.CurrentRate),
		zap.String("rate_mode", mode.String()),
		zap.String("asic", caps.General.Asic.String()),
		zap.Uint16("router_capacity", caps.Router.MaximumEntryCount),
	)

	return nil
}

// HandleBusReset invalidates the cached section tables and capability
// registers. Section layout can change across a bus reset, so every
// operation fails until the next successful Bootstrap.
func (d *Device) HandleBusReset() {
	d.ready = false
	d.logger.Info("bus reset, cached capabilities invalidated")
}

func (d *Device) checkReady() error {
	if !d.ready {
		return tcat.ErrStaleCapabilities
	}
	return nil
}

// GlobalParameters returns the global parameters cached at bootstrap.
func (d *Device) GlobalParameters() (*tcat.GlobalParameters, error) {
	if err := d.checkReady(); err != nil {
		return nil, err
	}
	return d.global, nil
}

// Caps returns the capability registers cached at bootstrap.
func (d *Device) Caps() (*extension.Caps, error) {
	if err := d.checkReady(); err != nil {
		return nil, err
	}
	return d.caps, nil
}

// RateMode returns the rate mode derived at bootstrap.
func (d *Device) RateMode() (tcat.RateMode, error) {
	if err := d.checkReady(); err != nil {
		return 0, err
	}
	return d.mode, nil
}

// AvailableBlocks returns the router blocks detected at bootstrap. A
// topology spec must be configured.
func (d *Device) AvailableBlocks() (*tcd22xx.AvailableBlocks, error) {
	if err := d.checkReady(); err != nil {
		return nil, err
	}
	if d.avail == nil {
		return nil, fmt.Errorf("no topology spec configured: %w", tcat.ErrFeatureUnavailable)
	}
	return d.avail, nil
}

// RefreshExternalSourceStates rereads the lock and slip states of the
// external clock sources into the cached global parameters.
func (d *Device) RefreshExternalSourceStates() (*tcat.ExternalSourceStates, error) {
	if err := d.checkReady(); err != nil {
		return nil, err
	}
	if err := tcat.RefreshExternalSourceStates(d.tr, d.general.Global, d.global, d.config.Timeout); err != nil {
		return nil, err
	}
	return &d.global.ExternalSourceStates, nil
}

// SetNickname writes the nickname field and updates the cache.
func (d *Device) SetNickname(nickname string) error {
	if err := d.checkReady(); err != nil {
		return err
	}
	if err := tcat.UpdateNickname(d.tr, d.general.Global, nickname, d.config.Timeout); err != nil {
		return err
	}
	d.global.Nickname = nickname
	return nil
}

// SetClockConfig writes the clock configuration. The rate and source are
// validated against the lists decoded at bootstrap before any
// transaction.
func (d *Device) SetClockConfig(config tcat.ClockConfig) error {
	if err := d.checkReady(); err != nil {
		return err
	}
	if err := tcat.UpdateClockConfig(d.tr, d.general.Global, config, d.global, d.config.Timeout); err != nil {
		return err
	}
	d.global.ClockConfig = config
	d.logger.Info("clock configured",
		zap.String("rate", config.Rate.String()),
		zap.String("source", config.Source.String()),
	)
	return nil
}

// SetStreamingEnable writes the streaming enable register.
func (d *Device) SetStreamingEnable(enable bool) error {
	if err := d.checkReady(); err != nil {
		return err
	}
	if err := tcat.UpdateStreamingEnable(d.tr, d.general.Global, enable, d.config.Timeout); err != nil {
		return err
	}
	d.global.Enable = enable
	return nil
}

// CurrentRouting reads the router configuration applied for the current
// rate mode.
func (d *Device) CurrentRouting() ([]extension.RouterEntry, error) {
	if err := d.checkReady(); err != nil {
		return nil, err
	}
	return extension.ReadCurrentRouterEntries(d.tr, d.sections, d.caps, d.mode, d.config.Timeout)
}

// ProposeRouting resolves an assignment of sources to destinations into a
// router table, writes it and initiates the load command for the current
// rate mode. Assignments whose blocks are not available are dropped and
// counted; the resolved table is returned. A topology spec must be
// configured.
func (d *Device) ProposeRouting(assignments map[extension.DstBlk]extension.SrcBlk) ([]extension.RouterEntry, int, error) {
	if err := d.checkReady(); err != nil {
		return nil, 0, err
	}
	if d.config.Spec == nil || d.avail == nil {
		return nil, 0, fmt.Errorf("no topology spec configured: %w", tcat.ErrFeatureUnavailable)
	}

	entries := make([]extension.RouterEntry, 0, len(assignments))
	for dst, src := range assignments {
		entries = append(entries, extension.RouterEntry{Dst: dst, Src: src})
	}
	// Map iteration order is random; the device table must be stable.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Dst.Value() < entries[j].Dst.Value()
	})

	applied, dropped, err := tcd22xx.UpdateRouterEntries(d.tr, d.sections, d.caps, d.config.Spec, d.avail, d.mode, entries, d.config.Timeout)
	if err != nil {
		return nil, 0, err
	}
	if dropped > 0 {
		d.logger.Warn("routing assignments dropped", zap.Int("count", dropped))
	}
	return applied, dropped, nil
}

// PeakLevels reads the peak meters per connection. The peak function must
// be reported available by the capability registers.
func (d *Device) PeakLevels() ([]extension.RouterEntry, error) {
	if err := d.checkReady(); err != nil {
		return nil, err
	}
	return extension.ReadPeakEntries(d.tr, d.sections, d.caps, d.config.Timeout)
}

// StandaloneParameters reads the configuration applied when the device
// operates without an owner.
func (d *Device) StandaloneParameters() (*extension.StandaloneParameters, error) {
	if err := d.checkReady(); err != nil {
		return nil, err
	}
	return extension.ReadStandaloneParameters(d.tr, d.sections, d.config.Timeout)
}

// SetStandaloneParameters writes the standalone configuration.
func (d *Device) SetStandaloneParameters(params *extension.StandaloneParameters) error {
	if err := d.checkReady(); err != nil {
		return err
	}
	return extension.UpdateStandaloneParameters(d.tr, d.sections, params, d.config.Timeout)
}

// MixerSaturation reads the saturation flag of each mixer output.
func (d *Device) MixerSaturation() ([]bool, error) {
	if err := d.checkReady(); err != nil {
		return nil, err
	}
	return extension.ReadMixerSaturation(d.tr, d.sections, d.caps, d.config.Timeout)
}

// MixerCoefficients reads the mixer coefficient grid.
func (d *Device) MixerCoefficients() ([][]uint16, error) {
	if err := d.checkReady(); err != nil {
		return nil, err
	}
	return extension.ReadMixerCoefficients(d.tr, d.sections, d.caps, d.config.Timeout)
}

// SetMixerCoefficients writes the coefficients which differ from prev;
// nil prev writes every coefficient.
func (d *Device) SetMixerCoefficients(coefs, prev [][]uint16) error {
	if err := d.checkReady(); err != nil {
		return err
	}
	return extension.UpdateMixerCoefficients(d.tr, d.sections, d.caps, coefs, prev, d.config.Timeout)
}

// ReadApplicationData reads model-specific bytes from the application
// section.
func (d *Device) ReadApplicationData(offset int, buf []byte) error {
	if err := d.checkReady(); err != nil {
		return err
	}
	return extension.ReadApplicationData(d.tr, d.sections, offset, buf, d.config.Timeout)
}

// WriteApplicationData writes model-specific bytes to the application
// section.
func (d *Device) WriteApplicationData(offset int, buf []byte) error {
	if err := d.checkReady(); err != nil {
		return err
	}
	return extension.WriteApplicationData(d.tr, d.sections, offset, buf, d.config.Timeout)
}

// LoadConfiguration restores all configurations from on-board flash
// memory.
func (d *Device) LoadConfiguration() error {
	if err := d.checkReady(); err != nil {
		return err
	}
	return tcd22xx.LoadConfigurationFromFlash(d.tr, d.sections, d.caps, d.config.Timeout)
}

// StoreConfiguration saves all configurations to on-board flash memory.
func (d *Device) StoreConfiguration() error {
	if err := d.checkReady(); err != nil {
		return err
	}
	return tcd22xx.StoreConfigurationToFlash(d.tr, d.sections, d.caps, d.config.Timeout)
}
