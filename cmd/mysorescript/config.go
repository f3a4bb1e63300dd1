package main

import "github.com/BurntSushi/toml"

// Config is the optional TOML-decoded settings file for the `-config`
// flag.
type Config struct {
	CompileThreshold int `toml:"compile_threshold"`
}

// LoadConfig decodes path into a Config. A zero CompileThreshold means
// "use the default" and is left alone by the caller.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	return cfg, err
}
