package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// pollInterval is how often TailLog checks a followed file for new data.
const pollInterval = 100 * time.Millisecond

// TailLog copies the last n lines of path to w (all of it when n <= 0).
// With follow set it keeps copying appended data until ctx is done.
func TailLog(ctx context.Context, w io.Writer, path string, n int, follow bool) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if n > 0 {
		if err := tailSeek(file, n); err != nil {
			return fmt.Errorf("seek to tail position: %w", err)
		}
	}

	if _, err := io.Copy(w, file); err != nil {
		return err
	}
	if !follow {
		return nil
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := io.Copy(w, file); err != nil {
				return err
			}
		}
	}
}

// tailSeek positions file at the start of its last n lines.
func tailSeek(file *os.File, n int) error {
	const chunk = 4096

	stat, err := file.Stat()
	if err != nil {
		return err
	}
	size := stat.Size()

	// Walk backwards counting newlines. A trailing newline ends the last
	// line rather than starting a new one.
	var (
		offset = size
		lines  = 0
		buf    = make([]byte, chunk)
	)
	for offset > 0 {
		readSize := int64(chunk)
		if offset < readSize {
			readSize = offset
		}
		offset -= readSize
		if _, err := file.ReadAt(buf[:readSize], offset); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		for i := readSize - 1; i >= 0; i-- {
			if buf[i] != '\n' {
				continue
			}
			if offset+i == size-1 {
				continue
			}
			lines++
			if lines == n {
				_, err := file.Seek(offset+i+1, io.SeekStart)
				return err
			}
		}
	}

	_, err = file.Seek(0, io.SeekStart)
	return err
}
