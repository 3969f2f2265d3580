package tcd22xx

import (
	"sort"

	"github.com/alsa-project/snd-firewire-ctl-services-sub014/tcat/extension"
)

// specSPro26 describes the Focusrite Saffire Pro 26: six analog inputs,
// coaxial and optical S/PDIF pairs and one ADAT port in, six analog
// outputs, one S/PDIF pair and one ADAT port out. The analog inputs feed
// the leading router entries.
var specSPro26 = Spec{
	Inputs: []Input{
		{ID: extension.SrcBlkIns0, Offset: 0, Count: 6},
		{ID: extension.SrcBlkAes, Offset: 4, Count: 2, Label: "S/PDIF-coax"},
		{ID: extension.SrcBlkAdat, Offset: 0, Count: 8},
		{ID: extension.SrcBlkAes, Offset: 6, Count: 2, Label: "S/PDIF-opt"},
	},
	Outputs: []Output{
		{ID: extension.DstBlkIns0, Offset: 0, Count: 6},
		{ID: extension.DstBlkAes, Offset: 4, Count: 2, Label: "S/PDIF-coax"},
		{ID: extension.DstBlkAdat, Offset: 0, Count: 8},
	},
	Fixed: []extension.SrcBlk{
		{ID: extension.SrcBlkIns0, Ch: 0},
		{ID: extension.SrcBlkIns0, Ch: 1},
		{ID: extension.SrcBlkIns0, Ch: 2},
		{ID: extension.SrcBlkIns0, Ch: 3},
		{ID: extension.SrcBlkIns0, Ch: 4},
		{ID: extension.SrcBlkIns0, Ch: 5},
	},
}

var modelSpecs = map[string]*Spec{
	"spro26": &specSPro26,
}

// ModelSpec looks up the built-in topology table for a model name.
func ModelSpec(name string) (*Spec, bool) {
	spec, ok := modelSpecs[name]
	return spec, ok
}

// ModelNames lists the models with built-in topology tables.
func ModelNames() []string {
	names := make([]string, 0, len(modelSpecs))
	for name := range modelSpecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
