package ws

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Encoder converts report JSON to the binary wire format (Struct + Zstd).
type Encoder struct {
	zstdEncoder *zstd.Encoder
}

func NewEncoder() (*Encoder, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	return &Encoder{zstdEncoder: enc}, nil
}

// EncodeReport converts report JSON to a Zstd-compressed google.protobuf.Struct.
func (e *Encoder) EncodeReport(reportJSON []byte) ([]byte, error) {
	// 1. Parse JSON into a generic object
	var fields map[string]any
	if err := json.Unmarshal(reportJSON, &fields); err != nil {
		return nil, fmt.Errorf("unmarshal report json: %w", err)
	}

	// 2. Convert to protobuf Struct
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("convert report to struct: %w", err)
	}

	// 3. Serialize to protobuf bytes
	pbData, err := proto.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("marshal protobuf: %w", err)
	}

	// 4. Compress with Zstd
	return e.zstdEncoder.EncodeAll(pbData, nil), nil
}

// Close releases encoder resources.
func (e *Encoder) Close() {
	if e.zstdEncoder != nil {
		e.zstdEncoder.Close()
	}
}
