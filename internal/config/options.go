package config

// RunOptions are the command line settings of a gallery run.
type RunOptions struct {
	Inputs       []string
	ConfigPath   string
	Surface      string
	Width        int
	Height       int
	FPS          int
	Frames       uint64
	Realtime     bool // headless on the wall clock instead of fixed steps
	Workers      int
	DPI          int
	MaxTexture   int
	OutputVideo  string
	Snapshot     string
	ScriptInput  string
	AudioPath    string
	Preset       string
	VideoEncoder string
	Quality      int
	Fade         float64 // seconds of video fade in and out
	ShowStats    bool
	BuildVersion string
}

// PresetSize returns the frame size of a named aspect preset.
func PresetSize(preset string, width, height int) (int, int) {
	switch preset {
	case "16:9":
		return 1280, 720
	case "9:16":
		return 720, 1280
	case "4:5":
		return 1080, 1350
	}
	return width, height
}
