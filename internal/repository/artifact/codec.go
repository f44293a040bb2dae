package artifact

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/kailas-cloud/reportscore/internal/domain"
	"github.com/kailas-cloud/reportscore/internal/engine/tfidf"
)

// FormatVersion is bumped on any incompatible change to the blob layout.
const FormatVersion uint16 = 1

// maxDecodedSize caps decompression of untrusted blobs.
const maxDecodedSize = 512 << 20

var magic = [4]byte{'R', 'S', 'C', 'A'}

// header: magic(4) | version(2) | payload length(8) | xxhash64 of payload(8)
const headerSize = 4 + 2 + 8 + 8

var (
	encoder = must(zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression)))
	decoder = must(zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxDecodedSize)))
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(fmt.Sprintf("artifact: init zstd: %v", err))
	}
	return v
}

// Encode serializes a bundle into the artifact blob format. The tokenizer
// version is always stamped from the running binary.
func Encode(b Bundle) ([]byte, error) {
	if b.Vocabulary == nil || b.Model == nil {
		return nil, fmt.Errorf("encode artifact: incomplete bundle")
	}
	return encodeDTO(bundleToDTO(b))
}

func encodeDTO(dto bundleDTO) ([]byte, error) {
	raw, err := json.Marshal(dto)
	if err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}
	payload := encoder.EncodeAll(raw, nil)

	blob := make([]byte, headerSize, headerSize+len(payload))
	copy(blob[0:4], magic[:])
	binary.LittleEndian.PutUint16(blob[4:6], FormatVersion)
	binary.LittleEndian.PutUint64(blob[6:14], uint64(len(payload)))
	binary.LittleEndian.PutUint64(blob[14:22], xxhash.Sum64(payload))
	return append(blob, payload...), nil
}

// Decode validates and parses an artifact blob. Every failure wraps
// domain.ErrArtifactCorrupt.
func Decode(blob []byte) (Bundle, error) {
	if len(blob) < headerSize {
		return Bundle{}, corrupt("blob of %d bytes is shorter than the header", len(blob))
	}
	if [4]byte(blob[0:4]) != magic {
		return Bundle{}, corrupt("bad magic %q", blob[0:4])
	}
	if v := binary.LittleEndian.Uint16(blob[4:6]); v != FormatVersion {
		return Bundle{}, corrupt("format version %d, want %d", v, FormatVersion)
	}
	payload := blob[headerSize:]
	if n := binary.LittleEndian.Uint64(blob[6:14]); n != uint64(len(payload)) {
		return Bundle{}, corrupt("payload length %d, header says %d", len(payload), n)
	}
	if sum := xxhash.Sum64(payload); sum != binary.LittleEndian.Uint64(blob[14:22]) {
		return Bundle{}, corrupt("checksum mismatch")
	}

	raw, err := decoder.DecodeAll(payload, nil)
	if err != nil {
		return Bundle{}, corrupt("decompress: %v", err)
	}
	var dto bundleDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return Bundle{}, corrupt("decode: %v", err)
	}
	if dto.Meta.TokenizerVersion != tfidf.TokenizerVersion {
		return Bundle{}, corrupt("tokenizer version %d, want %d", dto.Meta.TokenizerVersion, tfidf.TokenizerVersion)
	}
	b, err := bundleFromDTO(dto)
	if err != nil {
		return Bundle{}, corrupt("%v", err)
	}
	return b, nil
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrArtifactCorrupt, fmt.Sprintf(format, args...))
}
