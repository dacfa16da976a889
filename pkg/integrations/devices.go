package integrations

import "sort"

// Device is an e-reader screen an export can be sized for.
type Device struct {
	Name      string
	Width     int // Screen width in pixels
	Height    int // Screen height in pixels
	DPI       int
	Grayscale bool // e-ink
}

// Devices are the known export targets, keyed by the id used on the command line.
var Devices = map[string]Device{
	"kindle": {
		Name:      "Kindle (10th gen)",
		Width:     600,
		Height:    800,
		DPI:       167,
		Grayscale: true,
	},
	"kindle-paperwhite": {
		Name:      "Kindle Paperwhite (11th gen)",
		Width:     1236,
		Height:    1648,
		DPI:       300,
		Grayscale: true,
	},
	"kindle-oasis": {
		Name:      "Kindle Oasis",
		Width:     1264,
		Height:    1680,
		DPI:       300,
		Grayscale: true,
	},
	"kobo-clara": {
		Name:      "Kobo Clara 2E",
		Width:     1072,
		Height:    1448,
		DPI:       300,
		Grayscale: true,
	},
	"kobo-libra": {
		Name:      "Kobo Libra 2",
		Width:     1264,
		Height:    1680,
		DPI:       300,
		Grayscale: true,
	},
	"tablet": {
		Name:   "Tablet",
		Width:  1600,
		Height: 2560,
		DPI:    320,
	},
}

// LookupDevice returns the profile registered under id.
func LookupDevice(id string) (Device, bool) {
	d, ok := Devices[id]
	return d, ok
}

// DeviceIDs lists every known device id in alphabetical order.
func DeviceIDs() []string {
	ids := make([]string, 0, len(Devices))
	for id := range Devices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Settings returns the image settings suited to the device's screen.
func (d Device) Settings() ImageSettings {
	s := ImageSettings{
		MaxWidth:  d.Width,
		MaxHeight: d.Height,
		Quality:   85,
		Grayscale: d.Grayscale,
		Contrast:  1.0,
		Gamma:     1.0,
	}
	if d.DPI >= 300 {
		s.Quality = 90
	}
	if d.Grayscale {
		// e-ink renders flat; darken slightly and push contrast
		s.Contrast = 1.1
		s.Gamma = 0.9
	}
	return s
}
