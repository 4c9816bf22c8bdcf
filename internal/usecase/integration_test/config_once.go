//go:build integration

package integrationtest

import (
	"sync"

	"github.com/humanbelnik/moviematch/internal/config"
)

var (
	cfg     *config.Config
	cfgOnce sync.Once
)

func getConfig() *config.Config {
	cfgOnce.Do(func() {
		var err error
		cfg, err = config.FromEnv()
		if err != nil {
			panic(err)
		}
	})
	return cfg
}
