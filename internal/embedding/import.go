package embedding

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Import loads vectors in the plain-text word2vec/GloVe layout: one term per
// line followed by its space-separated components. A leading "<count> <dim>"
// header line is skipped. Every vector must share the first vector's dimension.
func Import(store Store, r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	imported, dim, lineNo := 0, 0, 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if lineNo == 1 && len(fields) == 2 && isInt(fields[0]) && isInt(fields[1]) {
			continue
		}
		if len(fields) < 2 {
			return imported, fmt.Errorf("line %d: term without components", lineNo)
		}

		vec := make([]float32, len(fields)-1)
		for i, f := range fields[1:] {
			x, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return imported, fmt.Errorf("line %d: component %d: %w", lineNo, i+1, err)
			}
			vec[i] = float32(x)
		}
		if dim == 0 {
			dim = len(vec)
		} else if len(vec) != dim {
			return imported, fmt.Errorf("line %d: dimension %d, expected %d", lineNo, len(vec), dim)
		}

		if err := store.Put(fields[0], vec); err != nil {
			return imported, err
		}
		imported++
	}
	if err := scanner.Err(); err != nil {
		return imported, fmt.Errorf("read vectors: %w", err)
	}
	return imported, nil
}

func isInt(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}
