package tcd22xx

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/alsa-project/snd-firewire-ctl-services-sub014/tcat"
	"github.com/alsa-project/snd-firewire-ctl-services-sub014/tcat/extension"
)

// YAML schema for runtime-loaded topology tables. Block identifiers use
// the same names the String methods print.
type yamlSpec struct {
	Inputs  []yamlRange `yaml:"inputs"`
	Outputs []yamlRange `yaml:"outputs"`
	Fixed   []yamlBlk   `yaml:"fixed,omitempty"`
	Sources []string    `yaml:"clock-sources,omitempty"`
}

type yamlRange struct {
	Block  string `yaml:"block"`
	Offset uint8  `yaml:"offset"`
	Count  uint8  `yaml:"count"`
	Label  string `yaml:"label,omitempty"`
}

type yamlBlk struct {
	Block string `yaml:"block"`
	Ch    uint8  `yaml:"ch"`
}

var srcBlkIDNames = map[string]extension.SrcBlkID{
	"aes":           extension.SrcBlkAes,
	"adat":          extension.SrcBlkAdat,
	"mixer":         extension.SrcBlkMixer,
	"ins0":          extension.SrcBlkIns0,
	"ins1":          extension.SrcBlkIns1,
	"arm-apr-audio": extension.SrcBlkArmAprAudio,
	"avs0":          extension.SrcBlkAvs0,
	"avs1":          extension.SrcBlkAvs1,
	"mute":          extension.SrcBlkMute,
}

var dstBlkIDNames = map[string]extension.DstBlkID{
	"aes":           extension.DstBlkAes,
	"adat":          extension.DstBlkAdat,
	"mixer-tx0":     extension.DstBlkMixerTx0,
	"mixer-tx1":     extension.DstBlkMixerTx1,
	"ins0":          extension.DstBlkIns0,
	"ins1":          extension.DstBlkIns1,
	"arm-apb-audio": extension.DstBlkArmApbAudio,
	"avs0":          extension.DstBlkAvs0,
	"avs1":          extension.DstBlkAvs1,
}

var clockSourceNames = map[string]tcat.ClockSource{}

func init() {
	for src := tcat.ClockSourceAes1; src <= tcat.ClockSourceInternal; src++ {
		clockSourceNames[src.String()] = src
	}
}

// ParseSpec decodes a topology table from YAML.
func ParseSpec(data []byte) (*Spec, error) {
	var raw yamlSpec
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode topology: %w", err)
	}

	spec := &Spec{}
	for _, entry := range raw.Inputs {
		id, ok := srcBlkIDNames[entry.Block]
		if !ok {
			return nil, fmt.Errorf("unknown source block %q", entry.Block)
		}
		spec.Inputs = append(spec.Inputs, Input{
			ID: id, Offset: entry.Offset, Count: entry.Count, Label: entry.Label,
		})
	}
	for _, entry := range raw.Outputs {
		id, ok := dstBlkIDNames[entry.Block]
		if !ok {
			return nil, fmt.Errorf("unknown destination block %q", entry.Block)
		}
		spec.Outputs = append(spec.Outputs, Output{
			ID: id, Offset: entry.Offset, Count: entry.Count, Label: entry.Label,
		})
	}
	for _, blk := range raw.Fixed {
		id, ok := srcBlkIDNames[blk.Block]
		if !ok {
			return nil, fmt.Errorf("unknown source block %q", blk.Block)
		}
		spec.Fixed = append(spec.Fixed, extension.SrcBlk{ID: id, Ch: blk.Ch})
	}
	for _, name := range raw.Sources {
		src, ok := clockSourceNames[name]
		if !ok {
			return nil, fmt.Errorf("unknown clock source %q", name)
		}
		spec.AvailableSourceOverride = append(spec.AvailableSourceOverride, src)
	}

	return spec, nil
}

// EncodeSpec encodes a topology table as YAML.
func EncodeSpec(spec *Spec) ([]byte, error) {
	raw := yamlSpec{}
	for _, entry := range spec.Inputs {
		raw.Inputs = append(raw.Inputs, yamlRange{
			Block: entry.ID.String(), Offset: entry.Offset, Count: entry.Count, Label: entry.Label,
		})
	}
	for _, entry := range spec.Outputs {
		raw.Outputs = append(raw.Outputs, yamlRange{
			Block: entry.ID.String(), Offset: entry.Offset, Count: entry.Count, Label: entry.Label,
		})
	}
	for _, blk := range spec.Fixed {
		raw.Fixed = append(raw.Fixed, yamlBlk{Block: blk.ID.String(), Ch: blk.Ch})
	}
	for _, src := range spec.AvailableSourceOverride {
		raw.Sources = append(raw.Sources, src.String())
	}
	return yaml.Marshal(&raw)
}

// LoadSpecFile reads a topology table from a YAML file.
func LoadSpecFile(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSpec(data)
}
