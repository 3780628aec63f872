package config

import (
	"github.com/fsnotify/fsnotify"
)

// StartWatch 监控已读取的配置文件，重复调用无副作用
func (c *Config) StartWatch() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.watching {
		return nil
	}
	if c.viper.ConfigFileUsed() == "" {
		return ErrConfigNotFound.WithMessage("no config file to watch")
	}

	c.viper.OnConfigChange(c.changed)
	c.viper.WatchConfig()
	c.watching = true
	return nil
}

// StopWatch 停止回调，viper 的 fsnotify watcher 无法关闭
func (c *Config) StopWatch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watching = false
}

func (c *Config) changed(e fsnotify.Event) {
	c.mu.RLock()
	fn := c.onChange
	if !c.watching {
		fn = nil
	}
	c.mu.RUnlock()

	if fn != nil && e.Has(fsnotify.Write|fsnotify.Create) {
		fn()
	}
}
