package qso

import (
	"math"
	"strconv"
	"strings"
)

// Band is an amateur band classifier.
type Band string

const (
	BandUnknown Band = ""
	Band160m    Band = "160m"
	Band80m     Band = "80m"
	Band60m     Band = "60m"
	Band40m     Band = "40m"
	Band30m     Band = "30m"
	Band20m     Band = "20m"
	Band17m     Band = "17m"
	Band15m     Band = "15m"
	Band12m     Band = "12m"
	Band10m     Band = "10m"
	Band6m      Band = "6m"
	Band4m      Band = "4m"
	Band2m      Band = "2m"
	Band125cm   Band = "1.25m"
	Band70cm    Band = "70cm"
)

type bandEdge struct {
	band     Band
	low, top int // kHz, inclusive
}

var bandEdges = []bandEdge{
	{Band160m, 1800, 2000},
	{Band80m, 3500, 4000},
	{Band60m, 5330, 5410},
	{Band40m, 7000, 7300},
	{Band30m, 10100, 10150},
	{Band20m, 14000, 14350},
	{Band17m, 18068, 18168},
	{Band15m, 21000, 21450},
	{Band12m, 24890, 24990},
	{Band10m, 28000, 29700},
	{Band6m, 50000, 54000},
	{Band4m, 70000, 71000},
	{Band2m, 144000, 148000},
	{Band125cm, 222000, 225000},
	{Band70cm, 420000, 450000},
}

// Cabrillo VHF/UHF band designators are given in MHz.
var bandDesignators = map[string]Band{
	"50":  Band6m,
	"70":  Band4m,
	"144": Band2m,
	"222": Band125cm,
	"432": Band70cm,
}

var bandsByName = func() map[string]Band {
	out := make(map[string]Band, len(bandEdges))
	for _, edge := range bandEdges {
		out[string(edge.band)] = edge.band
	}
	return out
}()

// BandFromFrequency maps a Cabrillo frequency field (kHz, or a VHF band
// designator) to its band.
func BandFromFrequency(token string) (Band, bool) {
	token = strings.TrimSpace(token)
	if band, ok := bandDesignators[token]; ok {
		return band, true
	}
	khz, err := strconv.Atoi(token)
	if err != nil {
		return BandUnknown, false
	}
	return bandForKHz(khz)
}

// ParseBand interprets a free-form band token as written by operators:
// "80m", "80", "3.5" (MHz), "3520" (kHz) or a Cabrillo designator.
func ParseBand(token string) (Band, bool) {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return BandUnknown, false
	}
	if band, ok := bandsByName[token]; ok {
		return band, true
	}
	if band, ok := bandsByName[token+"m"]; ok {
		return band, true
	}
	if band, ok := bandDesignators[token]; ok {
		return band, true
	}
	if strings.Contains(token, ".") {
		mhz, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return BandUnknown, false
		}
		return bandForKHz(int(math.Round(mhz * 1000)))
	}
	khz, err := strconv.Atoi(token)
	if err != nil {
		return BandUnknown, false
	}
	return bandForKHz(khz)
}

func bandForKHz(khz int) (Band, bool) {
	for _, edge := range bandEdges {
		if khz >= edge.low && khz <= edge.top {
			return edge.band, true
		}
	}
	return BandUnknown, false
}
