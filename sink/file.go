package sink

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"proxyprobe/log"
	"proxyprobe/models"
	"proxyprobe/pkg/constants"
	"proxyprobe/pkg/errors"
)

// FileSink 每个协议族一个文本文件，每行一个 host:port
type FileSink struct {
	Dir string
}

// NewFileSink 创建文件输出
func NewFileSink(dir string) *FileSink {
	if dir == "" {
		dir = constants.DefaultOutputDir
	}
	return &FileSink{Dir: dir}
}

// Path 协议族对应的输出文件
func (s *FileSink) Path(family models.ProtocolFamily) string {
	return filepath.Join(s.Dir, string(family)+constants.LiveFileSuffix)
}

// Write 替换协议族的输出文件，没有存活地址时删除旧文件并返回空路径
func (s *FileSink) Write(result models.BatchResult) (string, error) {
	path := s.Path(result.Family)

	if len(result.Live) == 0 {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("%w: remove stale %s: %v", errors.ErrSinkWrite, path, err)
		}
		return "", nil
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create %s: %v", errors.ErrSinkWrite, s.Dir, err)
	}

	tmp, err := os.CreateTemp(s.Dir, "."+string(result.Family)+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrSinkWrite, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if tmpName != "" {
			_ = os.Remove(tmpName)
		}
	}()

	w := bufio.NewWriter(tmp)
	for _, endpoint := range result.Live {
		if _, err := w.WriteString(endpoint + "\n"); err != nil {
			tmp.Close()
			return "", fmt.Errorf("%w: %v", errors.ErrSinkWrite, err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("%w: %v", errors.ErrSinkWrite, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrSinkWrite, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrSinkWrite, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrSinkWrite, err)
	}
	tmpName = ""

	log.Debug("Wrote %d %s endpoints to %s", len(result.Live), result.Family, path)
	return path, nil
}
