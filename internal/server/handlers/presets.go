package handlers

import (
	"net/http"

	"captureplane/pkg/api"
)

// calibrationPresets are the built-in suggested calibration frame sets.
var calibrationPresets = []api.CalibrationPreset{
	{
		Name:          "Standard Dark Set",
		Description:   "20 dark frames for each exposure time used in session",
		FrameType:     "dark",
		Count:         20,
		ExposureTimes: []string{"30s", "60s", "120s", "300s"},
	},
	{
		Name:        "Bias Frame Set",
		Description: "50 bias frames for readout noise calibration",
		FrameType:   "bias",
		Count:       50,
	},
	{
		Name:        "L Filter Flats",
		Description: "20 flat field frames for luminance filter",
		FrameType:   "flat",
		Count:       20,
		TargetADU:   30000,
	},
	{
		Name:        "RGB Filter Flats",
		Description: "15 flat frames each for R, G, B filters",
		FrameType:   "flat",
		Count:       15,
		TargetADU:   25000,
	},
}

// ListPresets handles GET /api/calibration/presets.
func (h *Handlers) ListPresets(w http.ResponseWriter, r *http.Request) {
	h.respondJson(w, http.StatusOK, api.ListPresetsResponse{Presets: calibrationPresets})
}
