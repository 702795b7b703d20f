package path

import (
	"os"
	"path/filepath"
	"runtime"
)

// RootPath 專案根目錄的絕對路徑。
// 以本檔位置回推：/project/utils/path/path.go 往上兩層。
func RootPath() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		panic("unable to resolve caller location")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
}

// Exists 檔案或目錄是否存在
func Exists(target string) (bool, error) {
	_, err := os.Stat(target)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
