package config

import (
	"fmt"
	"os"
	"strings"
)

// LoadChannels reads the channel list file: one channel id per line, blank
// lines and lines starting with '#' ignored. Order is preserved.
func (c *Config) LoadChannels() ([]string, error) {
	data, err := os.ReadFile(c.Paths.ChannelsFile)
	if err != nil {
		return nil, fmt.Errorf("read channels file %q: %w", c.Paths.ChannelsFile, err)
	}

	var channels []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		channels = append(channels, line)
	}
	if len(channels) == 0 {
		return nil, fmt.Errorf("channels file %q lists no channels", c.Paths.ChannelsFile)
	}
	return channels, nil
}
