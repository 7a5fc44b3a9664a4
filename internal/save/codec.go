package save

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// ErrCorruptSnapshot возвращается, если данные сохранения не удаётся разобрать
var ErrCorruptSnapshot = errors.New("повреждённое сохранение")

// Codec кодирует снимки сцены в JSON, сжатый zstd.
// Encoder и Decoder из klauspost/compress безопасны для конкурентного EncodeAll/DecodeAll.
type Codec struct {
	compressor   *zstd.Encoder
	decompressor *zstd.Decoder
}

// NewCodec создаёт кодек
func NewCodec() (*Codec, error) {
	compressor, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("не удалось создать компрессор: %w", err)
	}
	decompressor, err := zstd.NewReader(nil)
	if err != nil {
		compressor.Close()
		return nil, fmt.Errorf("не удалось создать декомпрессор: %w", err)
	}
	return &Codec{compressor: compressor, decompressor: decompressor}, nil
}

// Encode сериализует снимок
func (c *Codec) Encode(snap *Snapshot) ([]byte, error) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации сохранения: %w", err)
	}
	return c.compressor.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

// Decode восстанавливает снимок
func (c *Codec) Decode(data []byte) (*Snapshot, error) {
	raw, err := c.decompressor.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return &snap, nil
}

// Close освобождает ресурсы компрессора
func (c *Codec) Close() {
	c.compressor.Close()
	c.decompressor.Close()
}
