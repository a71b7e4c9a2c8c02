package agent

// Config points the agent at its data directory and at the user-driven
// runtime configuration file. Live reload only applies to the runtime
// configuration.
type Config struct {
	DataDir       string `json:"dataDir"`
	RuntimeConfig string `json:"runtimeConfig"`
}

// RuntimeConfig is stored at agent.yml and re-applied on every rewrite.
type RuntimeConfig struct {
	CaptureMouseMove  bool `json:"captureMouseMove"`
	ClearInjectedFlag bool `json:"clearInjectedFlag"`
}

var DefaultRuntimeConfig = RuntimeConfig{
	CaptureMouseMove: true,
}
