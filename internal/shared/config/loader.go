package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Locate 解析配置文件路径：
// 1) 传入 name（相对/绝对路径）优先；
// 2) 否则从当前目录向上查找 rel（例如 configs/conf.yml）。
func Locate(name, rel string) (string, error) {
	curDir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if name != "" {
		if filepath.IsAbs(name) {
			return name, nil
		}
		return filepath.Join(curDir, name), nil
	}
	return findUpward(curDir, rel)
}

func findUpward(startDir, rel string) (string, error) {
	dir := startDir
	for {
		candidate := filepath.Join(dir, rel)
		if fileExist(candidate) {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("config file not exist, searched %s from: %s", rel, startDir)
		}
		dir = parent
	}
}

func fileExist(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}
