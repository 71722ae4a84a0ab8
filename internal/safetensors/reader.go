package safetensors

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
)

// maxHeaderSize bounds the JSON header (100MB).
const maxHeaderSize = 100 * 1024 * 1024

const metadataKey = "__metadata__"

// TensorInfo describes a tensor in the header.
type TensorInfo struct {
	DType       DType    `json:"dtype"`
	Shape       []int    `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"` // [start, end)
}

// NumElements returns the number of elements described by Shape.
func (ti TensorInfo) NumElements() (int, error) {
	return NumElements(ti.Shape)
}

// NumElements returns the element count of shape. Dimensions may be zero;
// negative dimensions and counts that overflow int are rejected.
func NumElements(shape []int) (int, error) {
	n := 1
	for i, d := range shape {
		if d < 0 {
			return 0, fmt.Errorf("%w: dimension %d is %d", ErrInvalidShape, i, d)
		}
		if d != 0 && n > math.MaxInt/d {
			return 0, fmt.Errorf("%w: %v overflows", ErrInvalidShape, shape)
		}
		n *= d
	}
	return n, nil
}

// Header is the parsed JSON header.
type Header struct {
	Metadata map[string]string
	Tensors  map[string]TensorInfo
}

// UnmarshalJSON splits __metadata__ from the tensor entries.
func (h *Header) UnmarshalJSON(data []byte) error {
	var rawMap map[string]json.RawMessage
	if err := json.Unmarshal(data, &rawMap); err != nil {
		return err
	}

	if metadataRaw, ok := rawMap[metadataKey]; ok {
		if err := json.Unmarshal(metadataRaw, &h.Metadata); err != nil {
			return fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	h.Tensors = make(map[string]TensorInfo, len(rawMap))
	for key, value := range rawMap {
		if key == metadataKey {
			continue
		}
		var info TensorInfo
		if err := json.Unmarshal(value, &info); err != nil {
			return fmt.Errorf("failed to unmarshal tensor %s: %w", key, err)
		}
		h.Tensors[key] = info
	}
	return nil
}

// Reader reads SafeTensors files.
type Reader struct {
	file       *os.File
	header     Header
	dataOffset int64 // Offset where tensor data starts
}

// Open opens a SafeTensors file and validates its header against the file size.
func Open(path string) (*Reader, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	r, err := newReader(file)
	if err != nil {
		_ = file.Close() // Best effort close on error
		return nil, err
	}
	return r, nil
}

func newReader(file *os.File) (*Reader, error) {
	var headerSize uint64
	if err := binary.Read(file, binary.LittleEndian, &headerSize); err != nil {
		return nil, fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > maxHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerSize)
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(file, headerBytes); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var header Header
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	dataOffset := int64(8 + headerSize) //nolint:gosec // G115: bounded by maxHeaderSize
	if err := validate(header, stat.Size()-dataOffset); err != nil {
		return nil, err
	}

	return &Reader{file: file, header: header, dataOffset: dataOffset}, nil
}

// validate checks every tensor's offsets against the data section and its dtype/shape.
func validate(h Header, dataSize int64) error {
	for name, info := range h.Tensors {
		start, end := info.DataOffsets[0], info.DataOffsets[1]
		if start < 0 || end < start {
			return fmt.Errorf("%w: tensor %q [%d, %d]", ErrNegativeOffset, name, start, end)
		}
		if end > dataSize {
			return fmt.Errorf("%w: tensor %q ends at %d, data section is %d bytes", ErrOutOfBounds, name, end, dataSize)
		}
		size, err := info.DType.Size()
		if err != nil {
			return fmt.Errorf("tensor %q: %w", name, err)
		}
		numel, err := info.NumElements()
		if err != nil {
			return fmt.Errorf("tensor %q: %w", name, err)
		}
		if numel > math.MaxInt/size {
			return fmt.Errorf("tensor %q: %w: %v overflows", name, ErrInvalidShape, info.Shape)
		}
		if want := int64(numel * size); end-start != want {
			return fmt.Errorf("%w: tensor %q has %d bytes, want %d", ErrSizeMismatch, name, end-start, want)
		}
	}
	return nil
}

// Close closes the file.
func (r *Reader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// Metadata returns the metadata map from the header.
func (r *Reader) Metadata() map[string]string {
	return r.header.Metadata
}

// TensorNames returns the tensor names in sorted order.
func (r *Reader) TensorNames() []string {
	names := make([]string, 0, len(r.header.Tensors))
	for name := range r.header.Tensors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TensorInfo returns information about a specific tensor.
func (r *Reader) TensorInfo(name string) (TensorInfo, error) {
	info, ok := r.header.Tensors[name]
	if !ok {
		return TensorInfo{}, fmt.Errorf("%w: %s", ErrTensorNotFound, name)
	}
	return info, nil
}

// ReadEntry reads one tensor's dtype, shape and raw bytes.
func (r *Reader) ReadEntry(name string) (Entry, error) {
	info, err := r.TensorInfo(name)
	if err != nil {
		return Entry{}, err
	}

	data := make([]byte, info.DataOffsets[1]-info.DataOffsets[0])
	if _, err := r.file.ReadAt(data, r.dataOffset+info.DataOffsets[0]); err != nil {
		return Entry{}, fmt.Errorf("failed to read tensor %s: %w", name, err)
	}

	return Entry{DType: info.DType, Shape: append([]int(nil), info.Shape...), Data: data}, nil
}

// ReadAll reads every tensor in the file.
func (r *Reader) ReadAll() (map[string]Entry, error) {
	entries := make(map[string]Entry, len(r.header.Tensors))
	for _, name := range r.TensorNames() {
		e, err := r.ReadEntry(name)
		if err != nil {
			return nil, err
		}
		entries[name] = e
	}
	return entries, nil
}
