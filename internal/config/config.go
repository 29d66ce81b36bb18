package config

import "time"

const (
	// Settings namespace shared by every registered key
	Namespace = "motion_tracker"

	// Scope layout
	DefaultSize        = 512.0  // Viewport edge length in pixels
	MinSize            = 256.0  // Lower layout bound (label scaling)
	MaxSize            = 1024.0 // Upper layout bound (label scaling)
	ExtraCanvasHeight  = 64.0   // Room under the scope for the distance label
	ScopeFill          = 0.8    // Fraction of the half-edge used by maxDistance
	VerticalCorrection = 0.944  // Background asset is not quite square
	AspectRatio        = 0.5    // Terminal char aspect correction (chars are ~2:1 tall)
	RingCount          = 4      // Number of concentric rings

	// Scanning
	DefaultMaxDistance    = 60.0 // Scan cutoff in scene distance units
	DefaultDefeatedStatus = "dead"
	RangeStep             = 10.0 // maxDistance change per key press
	MinRange              = 10.0
	PoolCapacity          = 20 // Blip sprites allocated once per device

	// Sweep
	DefaultSweepSpeed = 0.01 // Sweep cycles per time unit
	FrameRateBase     = 60.0 // One time unit is one frame at this rate
	TargetFPS         = 30   // Terminal frames per second

	// Audio
	DefaultVolume = 0.5

	// Demo mode
	DemoTokenMin  = 8  // Minimum wandering tokens
	DemoTokenMax  = 14 // Maximum wandering tokens
	DemoStepEvery = 100 * time.Millisecond

	// Beacon scene
	MeasuredPower   = -59.0 // RSSI at 1 meter (dBm)
	PathLossExp     = 2.5   // Path loss exponent (N)
	SmoothingAlpha  = 0.3   // EMA smoothing factor (30% new, 70% old)
	BeaconTimeout   = 30 * time.Second
	EvictInterval   = 5 * time.Second
	ClassicInterval = 20 * time.Second // Pause between hcitool inquiries
	BeaconGridPx    = 100.0            // Scene pixels per meter in the beacon scene
	BeaconSceneID   = "ble"
	BeaconSelfToken = "self"

	// App
	AppName    = "MOTION-TRACKER"
	AppVersion = "1.0"
)

// Setting keys registered under Namespace.
const (
	KeySize           = "size"
	KeyMaxDistance    = "maxDistance"
	KeySeePlayers     = "seePlayers"
	KeyMinSize        = "minSize"
	KeyMaxSize        = "maxSize"
	KeySpeed          = "speed"
	KeyVolume         = "volume"
	KeyDefeatedStatus = "defeatedStatus"
)
