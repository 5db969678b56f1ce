package store

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ReadCaptions reads one caption per line, skipping blank lines.
// Leading '#' is kept since captions often open with a hashtag.
func ReadCaptions(r io.Reader) ([]string, error) {
	var captions []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		captions = append(captions, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read captions: %w", err)
	}
	return captions, nil
}
