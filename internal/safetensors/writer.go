package safetensors

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
)

// Entry is one tensor's dtype, shape and raw little-endian bytes.
type Entry struct {
	DType DType
	Shape []int
	Data  []byte
}

// WriteFile writes entries and metadata to path in SafeTensors format.
func WriteFile(path string, entries map[string]Entry, metadata map[string]string) error {
	//nolint:gosec // G304: output path is user-provided by design
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := Write(f, entries, metadata); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Write encodes entries to w. Tensors are laid out in sorted name order.
func Write(w io.Writer, entries map[string]Entry, metadata map[string]string) error {
	names := make([]string, 0, len(entries))
	for name := range entries {
		if name == metadataKey {
			return fmt.Errorf("tensor name %q is reserved", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	header := make(map[string]any, len(entries)+1)
	if len(metadata) > 0 {
		header[metadataKey] = metadata
	}

	var offset int64
	for _, name := range names {
		e := entries[name]
		size, err := e.DType.Size()
		if err != nil {
			return fmt.Errorf("tensor %q: %w", name, err)
		}
		info := TensorInfo{DType: e.DType, Shape: e.Shape, DataOffsets: [2]int64{offset, offset + int64(len(e.Data))}}
		numel, err := info.NumElements()
		if err != nil {
			return fmt.Errorf("tensor %q: %w", name, err)
		}
		if numel > math.MaxInt/size {
			return fmt.Errorf("tensor %q: %w: %v overflows", name, ErrInvalidShape, e.Shape)
		}
		if want := numel * size; len(e.Data) != want {
			return fmt.Errorf("%w: tensor %q has %d bytes, want %d", ErrSizeMismatch, name, len(e.Data), want)
		}
		if info.Shape == nil {
			info.Shape = []int{}
		}
		header[name] = info
		offset += int64(len(e.Data))
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	// Pad header to 8-byte alignment with spaces.
	if pad := len(headerJSON) % 8; pad != 0 {
		for range 8 - pad {
			headerJSON = append(headerJSON, ' ')
		}
	}

	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := bw.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, name := range names {
		if _, err := bw.Write(entries[name].Data); err != nil {
			return fmt.Errorf("failed to write tensor %s: %w", name, err)
		}
	}
	return bw.Flush()
}
