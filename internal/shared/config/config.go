package config

import (
	"bytes"
	"fmt"
	"log"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Watcher 持有一个 viper 实例；配置变更时重新解码到 out 并回调 onChange。
type Watcher struct {
	mu sync.Mutex
	v  *viper.Viper
}

// decodeHook 支持 "500ms" / "3s" 这类字符串直接解码成 time.Duration。
func decodeHook() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}

// Load 读取 configPath 并解码到 out（指针）。
func Load(configPath string, out any) error {
	if !fileExist(configPath) {
		return fmt.Errorf("config file not exist, configPath=%v", configPath)
	}
	v := viper.New()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return err
	}
	return v.Unmarshal(out, decodeHook())
}

// LoadBytes 解码内存中的配置（内嵌的默认目录表），format 为 json/yaml。
func LoadBytes(raw []byte, format string, out any) error {
	v := viper.New()
	v.SetConfigType(format)
	if err := v.ReadConfig(bytes.NewReader(raw)); err != nil {
		return err
	}
	return v.Unmarshal(out, decodeHook())
}

// Watch 读取并监听 configPath；文件变化后重新解码到 out，解码失败保留旧值。
func Watch(configPath string, out any, onChange func()) (*Watcher, error) {
	if !fileExist(configPath) {
		return nil, fmt.Errorf("config file not exist, configPath=%v", configPath)
	}
	w := &Watcher{v: viper.New()}
	w.v.SetConfigFile(configPath)
	if err := w.v.ReadInConfig(); err != nil {
		return nil, err
	}
	if err := w.v.Unmarshal(out, decodeHook()); err != nil {
		return nil, err
	}
	w.v.OnConfigChange(func(e fsnotify.Event) {
		w.mu.Lock()
		defer w.mu.Unlock()
		if err := w.v.Unmarshal(out, decodeHook()); err != nil {
			log.Printf("config reload failed, file=%s err=%v", e.Name, err)
			return
		}
		if onChange != nil {
			onChange()
		}
	})
	w.v.WatchConfig()
	return w, nil
}
