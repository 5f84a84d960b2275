package seizureplot

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
)

// Frames are the binary websocket messages of /ws2. Every frame is an 8 byte
// header followed by the payload:
//
//	version(1) reserved(2) type(1) payloadLength(4, LE)
//
// A SERIES payload is seriesID(4) count(4) x[count] y[count], each value a
// little-endian float64. METADATA and STREAM_END payloads are a uint32 JSON
// length followed by the JSON document.

const FrameVersion byte = 1

type FrameType byte

const (
	FrameSeries    FrameType = 0x01
	FrameMetadata  FrameType = 0x02
	FrameStreamEnd FrameType = 0x03
)

func (t FrameType) String() string {
	switch t {
	case FrameSeries:
		return "SERIES"
	case FrameMetadata:
		return "METADATA"
	case FrameStreamEnd:
		return "STREAM_END"
	default:
		return fmt.Sprintf("0x%02x", byte(t))
	}
}

const FrameHeaderSize = 8

type FrameHeader struct {
	Version  byte
	Reserved [2]byte
	Type     FrameType
	Length   uint32
}

// SeriesData carries the points of one plotted line.
type SeriesData struct {
	SeriesID uint32
	X        []float64
	Y        []float64
}

// StreamEnd is the last frame of a stream.
type StreamEnd struct {
	Error bool
	Msg   string
}

// Frame is a decoded message. Payload is a SeriesData, Metadata or StreamEnd
// depending on Header.Type.
type Frame struct {
	Header  FrameHeader
	Payload any
}

func appendFrameHeader(dst []byte, h FrameHeader) []byte {
	dst = append(dst, h.Version, h.Reserved[0], h.Reserved[1], byte(h.Type))
	return binary.LittleEndian.AppendUint32(dst, h.Length)
}

func decodeFrameHeader(buf []byte) (FrameHeader, error) {
	if len(buf) < FrameHeaderSize {
		return FrameHeader{}, fmt.Errorf("frame too short: need %d header bytes, got %d", FrameHeaderSize, len(buf))
	}

	return FrameHeader{
		Version:  buf[0],
		Reserved: [2]byte{buf[1], buf[2]},
		Type:     FrameType(buf[3]),
		Length:   binary.LittleEndian.Uint32(buf[4:8]),
	}, nil
}

func encodeSeries(s SeriesData) ([]byte, error) {
	if len(s.X) != len(s.Y) {
		return nil, fmt.Errorf("series %d: %d x values but %d y values", s.SeriesID, len(s.X), len(s.Y))
	}

	buf := make([]byte, 0, 8+16*len(s.X))
	buf = binary.LittleEndian.AppendUint32(buf, s.SeriesID)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s.X)))
	for _, x := range s.X {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(x))
	}
	for _, y := range s.Y {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(y))
	}
	return buf, nil
}

func decodeSeries(buf []byte) (SeriesData, error) {
	if len(buf) < 8 {
		return SeriesData{}, fmt.Errorf("series payload too short: need 8 bytes, got %d", len(buf))
	}

	s := SeriesData{SeriesID: binary.LittleEndian.Uint32(buf[0:4])}
	count := int(binary.LittleEndian.Uint32(buf[4:8]))
	if want := 8 + 16*count; len(buf) != want {
		return SeriesData{}, fmt.Errorf("series payload size mismatch: %d points need %d bytes, got %d", count, want, len(buf))
	}

	values := make([]float64, 2*count)
	for i := range values {
		offset := 8 + 8*i
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[offset : offset+8]))
	}
	s.X = values[:count:count]
	s.Y = values[count:]
	return s, nil
}

func encodeJSON(v any) ([]byte, error) {
	doc, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, 4+len(doc))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(doc)))
	return append(buf, doc...), nil
}

func decodeJSON(buf []byte, v any) error {
	if len(buf) < 4 {
		return fmt.Errorf("json payload too short: need 4 bytes, got %d", len(buf))
	}

	length := binary.LittleEndian.Uint32(buf[0:4])
	if uint64(len(buf)) != 4+uint64(length) {
		return fmt.Errorf("json payload size mismatch: expected %d bytes, got %d", 4+uint64(length), len(buf))
	}

	return json.Unmarshal(buf[4:], v)
}

// EncodeFrame wraps payload, which must be a SeriesData, Metadata or
// StreamEnd, into a complete frame.
func EncodeFrame(payload any) ([]byte, error) {
	var (
		frameType FrameType
		body      []byte
		err       error
	)

	switch p := payload.(type) {
	case SeriesData:
		frameType = FrameSeries
		body, err = encodeSeries(p)
	case Metadata:
		frameType = FrameMetadata
		body, err = encodeJSON(p)
	case StreamEnd:
		frameType = FrameStreamEnd
		body, err = encodeJSON(p)
	default:
		return nil, fmt.Errorf("cannot encode %T as a frame", payload)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", frameType, err)
	}

	header := FrameHeader{
		Version: FrameVersion,
		Type:    frameType,
		Length:  uint32(len(body)),
	}

	buf := make([]byte, 0, FrameHeaderSize+len(body))
	buf = appendFrameHeader(buf, header)
	return append(buf, body...), nil
}

// DecodeFrame parses one complete frame. Bytes after the declared payload are
// ignored.
func DecodeFrame(buf []byte) (Frame, error) {
	header, err := decodeFrameHeader(buf)
	if err != nil {
		return Frame{}, err
	}

	if header.Version != FrameVersion {
		return Frame{}, fmt.Errorf("unsupported frame version %d", header.Version)
	}

	end := uint64(FrameHeaderSize) + uint64(header.Length)
	if uint64(len(buf)) < end {
		return Frame{}, fmt.Errorf("frame too short: header declares %d payload bytes, got %d", header.Length, len(buf)-FrameHeaderSize)
	}
	body := buf[FrameHeaderSize:end]

	frame := Frame{Header: header}
	switch header.Type {
	case FrameSeries:
		frame.Payload, err = decodeSeries(body)
	case FrameMetadata:
		var metadata Metadata
		err = decodeJSON(body, &metadata)
		frame.Payload = metadata
	case FrameStreamEnd:
		var streamEnd StreamEnd
		err = decodeJSON(body, &streamEnd)
		frame.Payload = streamEnd
	default:
		return Frame{}, fmt.Errorf("unknown frame type %s", header.Type)
	}
	if err != nil {
		return Frame{}, fmt.Errorf("decode %s frame: %w", header.Type, err)
	}

	return frame, nil
}
